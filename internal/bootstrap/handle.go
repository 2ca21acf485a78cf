package bootstrap

import (
	"context"

	"github.com/vk/extbind/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Handle grants read access to a sealed namespace tree. Handles are only
// produced by a successful Initialize.
type Handle struct {
	root *registry.Node
}

// ExportKind classifies an entry of the export table.
type ExportKind string

const (
	KindNamespace ExportKind = "namespace"
	KindFunction  ExportKind = "function"
	KindConstant  ExportKind = "constant"
)

// Export is one row of the flat export table.
type Export struct {
	Path    []string
	Kind    ExportKind
	Arity   int
	Params  []cty.Type
	Returns cty.Type
	Value   cty.Value
}

// Name renders the export path as "A::B::name".
func (e Export) Name() string { return registry.JoinPath(e.Path) }

// Root returns the sealed root node.
func (h *Handle) Root() *registry.Node { return h.root }

// Namespace looks up a namespace node by path.
func (h *Handle) Namespace(path ...string) (*registry.Node, bool) {
	return h.root.Lookup(path...)
}

// Resolve finds the binding addressed by path, written as "A.B.fn" or
// "A::B::fn".
func (h *Handle) Resolve(path string) (*registry.Binding, error) {
	segments, err := registry.ParsePath(path)
	if err != nil {
		return nil, &registry.Error{Op: registry.OpResolve, Err: err}
	}

	nsPath, name := segments[:len(segments)-1], segments[len(segments)-1]
	node, ok := h.root.Lookup(nsPath...)
	if !ok {
		return nil, &registry.Error{Op: registry.OpResolve, Path: nsPath, Name: name, Err: registry.ErrNotFound}
	}
	b, ok := node.Binding(name)
	if !ok {
		return nil, &registry.Error{Op: registry.OpResolve, Path: nsPath, Name: name, Err: registry.ErrNotFound}
	}
	return b, nil
}

// Call resolves path and invokes the binding with args.
func (h *Handle) Call(ctx context.Context, path string, args ...cty.Value) (cty.Value, error) {
	b, err := h.Resolve(path)
	if err != nil {
		return cty.NilVal, err
	}
	return b.Call(ctx, args...)
}

// Exports lists every namespace, constant and function in the tree, depth
// first with names sorted at each level.
func (h *Handle) Exports() []Export {
	var out []Export
	_ = h.root.Walk(func(n *registry.Node) error {
		path := n.Path()
		if !n.IsRoot() {
			out = append(out, Export{Path: path, Kind: KindNamespace})
		}
		for _, name := range n.ConstantNames() {
			v, _ := n.Constant(name)
			out = append(out, Export{
				Path:    append(append([]string(nil), path...), name),
				Kind:    KindConstant,
				Returns: v.Type(),
				Value:   v,
			})
		}
		for _, b := range n.Bindings() {
			out = append(out, Export{
				Path:    b.Path(),
				Kind:    KindFunction,
				Arity:   b.Arity(),
				Params:  b.Params(),
				Returns: b.ReturnType(),
			})
		}
		return nil
	})
	return out
}
