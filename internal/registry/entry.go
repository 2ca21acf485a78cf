package registry

import (
	"context"
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	contextType  = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	ctyValueType = reflect.TypeOf(cty.Value{})
)

// entryPoint is the normalized form of a native callable: its real arity,
// its cty signature and a way to run it.
type entryPoint struct {
	arity  int
	params []cty.Type
	ret    cty.Type

	// native is set for cty functions; the remaining fields describe a Go func.
	native   *function.Function
	goFunc   reflect.Value
	takesCtx bool
	hasErr   bool
	noResult bool
}

func newEntryPoint(entry any) (*entryPoint, error) {
	switch fn := entry.(type) {
	case function.Function:
		return fromCtyFunction(fn)
	case *function.Function:
		if fn == nil {
			return nil, fmt.Errorf("%w: nil function", ErrInvalidEntryPoint)
		}
		return fromCtyFunction(*fn)
	default:
		return fromGoFunc(entry)
	}
}

// fromCtyFunction adapts a prebuilt cty function. The zero function.Function
// has no spec and panics on every accessor, so that panic is reported as an
// invalid entry point.
func fromCtyFunction(fn function.Function) (ep *entryPoint, err error) {
	defer func() {
		if r := recover(); r != nil {
			ep, err = nil, fmt.Errorf("%w: function has no spec: %v", ErrInvalidEntryPoint, r)
		}
	}()

	if fn.VarParam() != nil {
		return nil, fmt.Errorf("%w: variadic functions have no fixed arity", ErrInvalidEntryPoint)
	}

	params := fn.Params()
	types := make([]cty.Type, len(params))
	for i, p := range params {
		types[i] = p.Type
	}

	ret, err := fn.ReturnType(types)
	if err != nil {
		// Return types that depend on argument values are only known per call.
		ret = cty.DynamicPseudoType
	}

	return &entryPoint{
		arity:  len(params),
		params: types,
		ret:    ret,
		native: &fn,
	}, nil
}

// fromGoFunc derives the cty signature of a Go func. Every parameter and the
// value result must have an implied cty type; cty.Value itself is accepted
// as a dynamically typed slot.
func fromGoFunc(entry any) (*entryPoint, error) {
	fv := reflect.ValueOf(entry)
	if !fv.IsValid() || fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, fmt.Errorf("%w: want a non-nil func, got %T", ErrInvalidEntryPoint, entry)
	}

	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic functions have no fixed arity", ErrInvalidEntryPoint)
	}

	ep := &entryPoint{goFunc: fv}

	first := 0
	if ft.NumIn() > 0 && ft.In(0) == contextType {
		ep.takesCtx = true
		first = 1
	}

	for i := first; i < ft.NumIn(); i++ {
		ty, err := impliedType(ft.In(i))
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %d: %v", ErrInvalidEntryPoint, i-first+1, err)
		}
		ep.params = append(ep.params, ty)
	}
	ep.arity = len(ep.params)

	outs := ft.NumOut()
	if outs > 0 && ft.Out(outs-1) == errorType {
		ep.hasErr = true
		outs--
	}
	switch outs {
	case 0:
		ep.noResult = true
		ep.ret = cty.DynamicPseudoType
	case 1:
		ty, err := impliedType(ft.Out(0))
		if err != nil {
			return nil, fmt.Errorf("%w: result: %v", ErrInvalidEntryPoint, err)
		}
		ep.ret = ty
	default:
		return nil, fmt.Errorf("%w: at most one value result is supported, got %d", ErrInvalidEntryPoint, outs)
	}

	return ep, nil
}

func impliedType(t reflect.Type) (cty.Type, error) {
	if t == ctyValueType {
		return cty.DynamicPseudoType, nil
	}
	if t.Kind() == reflect.Interface || t.Kind() == reflect.Func || t.Kind() == reflect.Chan {
		return cty.NilType, fmt.Errorf("go type %s has no cty equivalent", t)
	}
	return gocty.ImpliedType(reflect.Zero(t).Interface())
}

func (ep *entryPoint) function(ctx context.Context) function.Function {
	if ep.native != nil {
		return *ep.native
	}

	params := make([]function.Parameter, len(ep.params))
	for i, ty := range ep.params {
		params[i] = function.Parameter{
			Name: fmt.Sprintf("arg%d", i+1),
			Type: ty,
		}
	}

	return function.New(&function.Spec{
		Params: params,
		Type:   function.StaticReturnType(ep.ret),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return ep.invoke(ctx, args)
		},
	})
}

func (ep *entryPoint) invoke(ctx context.Context, args []cty.Value) (cty.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ft := ep.goFunc.Type()
	in := make([]reflect.Value, 0, ft.NumIn())
	first := 0
	if ep.takesCtx {
		in = append(in, reflect.ValueOf(ctx))
		first = 1
	}

	for i, arg := range args {
		pt := ft.In(i + first)
		if pt == ctyValueType {
			in = append(in, reflect.ValueOf(arg))
			continue
		}
		target := reflect.New(pt)
		if err := gocty.FromCtyValue(arg, target.Interface()); err != nil {
			return cty.NilVal, function.NewArgError(i, err)
		}
		in = append(in, target.Elem())
	}

	out := ep.goFunc.Call(in)

	if ep.hasErr {
		if errV := out[len(out)-1]; !errV.IsNil() {
			return cty.NilVal, errV.Interface().(error)
		}
	}
	if ep.noResult {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}

	result := out[0]
	if result.Type() == ctyValueType {
		return result.Interface().(cty.Value), nil
	}
	return gocty.ToCtyValue(result.Interface(), ep.ret)
}
