package registry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/extbind/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

func newNode(t *testing.T, path ...string) *registry.Node {
	t.Helper()
	node, err := registry.DeclareNamespace(registry.NewRoot(), path...)
	require.NoError(t, err)
	return node
}

func TestBindFunction_ResolveAndCall(t *testing.T) {
	node := newNode(t, "Servactory", "HelloRust")

	hello := func(name string) string { return fmt.Sprintf("Hello from Rust, %s!", name) }
	require.NoError(t, registry.BindFunction(node, "hello", 1, hello))

	b, ok := node.Binding("hello")
	require.True(t, ok)
	assert.Equal(t, "hello", b.Name())
	assert.Equal(t, 1, b.Arity())
	assert.Equal(t, []string{"Servactory", "HelloRust", "hello"}, b.Path())
	assert.Same(t, node, b.Namespace())
	require.Len(t, b.Params(), 1)
	assert.True(t, b.Params()[0].Equals(cty.String))
	assert.True(t, b.ReturnType().Equals(cty.String))

	got, err := b.Call(context.Background(), cty.StringVal("World"))
	require.NoError(t, err)
	assert.Equal(t, "Hello from Rust, World!", got.AsString())
}

func TestBindFunction_DuplicateName(t *testing.T) {
	node := newNode(t, "Outer")
	require.NoError(t, registry.BindFunction(node, "hello", 0, func() string { return "first" }))

	err := registry.BindFunction(node, "hello", 0, func() string { return "second" })
	require.Error(t, err)
	assert.True(t, errors.Is(err, registry.ErrDuplicateBinding))

	var regErr *registry.Error
	require.True(t, errors.As(err, &regErr))
	assert.Equal(t, registry.OpBind, regErr.Op)
	assert.Equal(t, []string{"Outer"}, regErr.Path)
	assert.Equal(t, "hello", regErr.Name)

	b, _ := node.Binding("hello")
	got, err := b.Call(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", got.AsString(), "the original binding must be untouched")
	assert.Len(t, node.Bindings(), 1)
}

func TestBindFunction_ArityMismatch(t *testing.T) {
	node := newNode(t, "Outer")

	testCases := []struct {
		name  string
		arity int
		entry any
	}{
		{name: "declared too many", arity: 2, entry: func(s string) string { return s }},
		{name: "declared too few", arity: 0, entry: func(s string) string { return s }},
		{name: "negative", arity: -1, entry: func() string { return "" }},
		{name: "context not counted", arity: 2, entry: func(ctx context.Context, s string) string { return s }},
		{
			name:  "cty function",
			arity: 2,
			entry: function.New(&function.Spec{
				Params: []function.Parameter{{Name: "a", Type: cty.String}},
				Type:   function.StaticReturnType(cty.String),
				Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
					return args[0], nil
				},
			}),
		},
	}

	for i, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			name := fmt.Sprintf("f%d", i)
			err := registry.BindFunction(node, name, tc.arity, tc.entry)
			require.Error(t, err)
			assert.True(t, errors.Is(err, registry.ErrArityMismatch), "got %v", err)
			_, ok := node.Binding(name)
			assert.False(t, ok)
		})
	}
}

func TestBindFunction_InvalidEntryPoints(t *testing.T) {
	node := newNode(t, "Outer")

	var nilFunc func(string) string

	testCases := []struct {
		name  string
		entry any
	}{
		{name: "nil", entry: nil},
		{name: "nil func", entry: nilFunc},
		{name: "not a func", entry: "hello"},
		{name: "variadic", entry: func(parts ...string) string { return "" }},
		{name: "interface param", entry: func(v any) string { return "" }},
		{name: "two values", entry: func() (string, string) { return "", "" }},
		{name: "chan result", entry: func() chan int { return nil }},
		{name: "zero cty function", entry: function.Function{}},
		{name: "pointer to zero cty function", entry: &function.Function{}},
		{
			name: "variadic cty function",
			entry: function.New(&function.Spec{
				VarParam: &function.Parameter{Name: "xs", Type: cty.String},
				Type:     function.StaticReturnType(cty.String),
				Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
					return cty.StringVal(""), nil
				},
			}),
		},
	}

	for i, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := registry.BindFunction(node, fmt.Sprintf("f%d", i), 0, tc.entry)
			require.Error(t, err)
			assert.True(t, errors.Is(err, registry.ErrInvalidEntryPoint), "got %v", err)
		})
	}
}

func TestBindFunction_InvalidName(t *testing.T) {
	node := newNode(t, "Outer")
	err := registry.BindFunction(node, "", 0, func() string { return "" })
	assert.True(t, errors.Is(err, registry.ErrInvalidName))

	err = registry.BindFunction(nil, "f", 0, func() string { return "" })
	assert.True(t, errors.Is(err, registry.ErrNotFound))
}

func TestBinding_CallRejectsWrongArgCountBeforeEntry(t *testing.T) {
	node := newNode(t, "Outer")

	calls := 0
	entry := func(a, b string) string {
		calls++
		return a + b
	}
	require.NoError(t, registry.BindFunction(node, "concat", 2, entry))
	b, _ := node.Binding("concat")

	for _, args := range [][]cty.Value{
		{},
		{cty.StringVal("a")},
		{cty.StringVal("a"), cty.StringVal("b"), cty.StringVal("c")},
	} {
		_, err := b.Call(context.Background(), args...)
		require.Error(t, err)
		assert.True(t, errors.Is(err, registry.ErrArgumentCount), "got %v", err)
	}
	assert.Zero(t, calls, "entry point must not run on an arity violation")

	got, err := b.Call(context.Background(), cty.StringVal("a"), cty.StringVal("b"))
	require.NoError(t, err)
	assert.Equal(t, "ab", got.AsString())
	assert.Equal(t, 1, calls)
}

type ctxKey struct{}

func TestBinding_ContextAndErrors(t *testing.T) {
	node := newNode(t, "Outer")

	entry := func(ctx context.Context, n int) (string, error) {
		if n < 0 {
			return "", errors.New("negative input")
		}
		return fmt.Sprintf("%v:%d", ctx.Value(ctxKey{}), n), nil
	}
	require.NoError(t, registry.BindFunction(node, "tag", 1, entry))
	b, _ := node.Binding("tag")
	assert.True(t, b.Params()[0].Equals(cty.Number))

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	got, err := b.Call(ctx, cty.NumberIntVal(7))
	require.NoError(t, err)
	assert.Equal(t, "req-1:7", got.AsString())

	_, err = b.Call(ctx, cty.NumberIntVal(-1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative input")

	_, err = b.Call(ctx, cty.StringVal("not a number"))
	require.Error(t, err, "cty must reject arguments it cannot convert")
}

func TestBinding_DynamicAndVoidEntries(t *testing.T) {
	node := newNode(t, "Outer")

	require.NoError(t, registry.BindFunction(node, "echo", 1, func(v cty.Value) cty.Value { return v }))
	require.NoError(t, registry.BindFunction(node, "noop", 0, func() {}))

	echo, _ := node.Binding("echo")
	assert.True(t, echo.Params()[0].Equals(cty.DynamicPseudoType))
	got, err := echo.Call(context.Background(), cty.ListVal([]cty.Value{cty.True}))
	require.NoError(t, err)
	assert.True(t, got.RawEquals(cty.ListVal([]cty.Value{cty.True})))

	noop, _ := node.Binding("noop")
	got, err = noop.Call(context.Background())
	require.NoError(t, err)
	assert.True(t, got.IsNull())
}

func TestBindFunction_CtyFunctionEntry(t *testing.T) {
	node := newNode(t, "Strings")

	upper := function.New(&function.Spec{
		Params: []function.Parameter{{Name: "s", Type: cty.String}},
		Type:   function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.StringVal("<" + args[0].AsString() + ">"), nil
		},
	})
	require.NoError(t, registry.BindFunction(node, "wrap", 1, upper))
	require.NoError(t, registry.BindFunction(node, "wrap_ptr", 1, &upper))

	for _, name := range []string{"wrap", "wrap_ptr"} {
		b, ok := node.Binding(name)
		require.True(t, ok)
		assert.True(t, b.ReturnType().Equals(cty.String))
		got, err := b.Call(context.Background(), cty.StringVal("x"))
		require.NoError(t, err)
		assert.Equal(t, "<x>", got.AsString())
	}
}

func TestBindings_UniquenessAcrossManyRegistrations(t *testing.T) {
	node := newNode(t, "Outer")
	names := []string{"a", "b", "a", "c", "b", "d"}

	var dup int
	for _, name := range names {
		err := registry.BindFunction(node, name, 0, func() string { return name })
		if errors.Is(err, registry.ErrDuplicateBinding) {
			dup++
			continue
		}
		require.NoError(t, err)
	}

	assert.Equal(t, 2, dup)
	var got []string
	for _, b := range node.Bindings() {
		got = append(got, b.Name())
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}
