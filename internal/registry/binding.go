package registry

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Binding is a native callable attached to a namespace node under a
// host-visible name and a fixed arity. It is immutable once created.
type Binding struct {
	name  string
	arity int
	owner *Node
	entry *entryPoint
}

// BindFunction attaches entry to node under name. arity must equal the
// number of parameters entry accepts, not counting a leading
// context.Context.
//
// entry is either a Go func whose parameters and first result can be
// represented as cty values (optionally followed by an error result), or a
// cty function.Function without a variadic parameter.
func BindFunction(node *Node, name string, arity int, entry any) error {
	if node == nil {
		return &Error{Op: OpBind, Name: name, Err: fmt.Errorf("%w: nil namespace", ErrNotFound)}
	}

	fail := func(err error) error {
		return &Error{Op: OpBind, Path: node.Path(), Name: name, Err: err}
	}

	if !ValidName(name) {
		return fail(ErrInvalidName)
	}
	if arity < 0 {
		return fail(fmt.Errorf("%w: negative arity %d", ErrArityMismatch, arity))
	}
	if node.sealed {
		return fail(ErrSealed)
	}
	if _, exists := node.bindings[name]; exists {
		return fail(ErrDuplicateBinding)
	}

	ep, err := newEntryPoint(entry)
	if err != nil {
		return fail(err)
	}
	if ep.arity != arity {
		return fail(fmt.Errorf("%w: declared %d, entry point takes %d", ErrArityMismatch, arity, ep.arity))
	}

	node.bindings[name] = &Binding{
		name:  name,
		arity: arity,
		owner: node,
		entry: ep,
	}
	node.log().Debug("Bound function.", "path", JoinPath(node.Path()), "name", name, "arity", arity)
	return nil
}

// Name returns the exported name.
func (b *Binding) Name() string { return b.name }

// Arity returns the fixed argument count.
func (b *Binding) Arity() int { return b.arity }

// Namespace returns the node the binding is attached to.
func (b *Binding) Namespace() *Node { return b.owner }

// Path returns the full path of the binding, ending with its name.
func (b *Binding) Path() []string {
	return append(b.owner.Path(), b.name)
}

// Params returns the cty types of the parameters, in order.
func (b *Binding) Params() []cty.Type {
	out := make([]cty.Type, len(b.entry.params))
	copy(out, b.entry.params)
	return out
}

// ReturnType returns the cty type of the result.
func (b *Binding) ReturnType() cty.Type { return b.entry.ret }

// Function returns the binding as a cty function whose invocations run
// with ctx. Argument conversion to the parameter types is done by cty.
func (b *Binding) Function(ctx context.Context) function.Function {
	return b.entry.function(ctx)
}

// Call invokes the entry point with args. A call with any argument count
// other than Arity is rejected before the entry point runs.
func (b *Binding) Call(ctx context.Context, args ...cty.Value) (cty.Value, error) {
	if len(args) != b.arity {
		return cty.NilVal, &Error{
			Op:   OpCall,
			Path: b.owner.Path(),
			Name: b.name,
			Err:  fmt.Errorf("%w: want %d, got %d", ErrArgumentCount, b.arity, len(args)),
		}
	}

	v, err := b.Function(ctx).Call(args)
	if err != nil {
		return cty.NilVal, &Error{Op: OpCall, Path: b.owner.Path(), Name: b.name, Err: err}
	}
	return v, nil
}
