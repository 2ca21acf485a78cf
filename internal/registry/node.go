package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Node is a named container in the namespace tree. It holds child
// namespaces, bound functions and constants.
//
// A Node is mutated only through DeclareNamespace, BindFunction and
// SetConstant, and only until the tree is sealed.
type Node struct {
	name      string
	parent    *Node
	children  map[string]*Node
	bindings  map[string]*Binding
	constants map[string]cty.Value
	sealed    bool
	logger    *slog.Logger // shared by the whole tree; nil means slog.Default()
}

// NewRoot creates an empty, unnamed root node that logs to slog.Default().
func NewRoot() *Node {
	return NewRootWithLogger(nil)
}

// NewRootWithLogger creates an empty root node whose tree reports
// registrations to logger.
func NewRootWithLogger(logger *slog.Logger) *Node {
	root := newNode("", nil)
	root.logger = logger
	return root
}

func newNode(name string, parent *Node) *Node {
	n := &Node{
		name:      name,
		parent:    parent,
		children:  make(map[string]*Node),
		bindings:  make(map[string]*Binding),
		constants: make(map[string]cty.Value),
	}
	if parent != nil {
		n.logger = parent.logger
	}
	return n
}

func (n *Node) log() *slog.Logger {
	if n.logger != nil {
		return n.logger
	}
	return slog.Default()
}

// DeclareNamespace walks path from root, creating every missing segment, and
// returns the leaf node. Declaring the same path twice returns the same node.
func DeclareNamespace(root *Node, path ...string) (*Node, error) {
	if root == nil {
		return nil, &Error{Op: OpDeclare, Path: path, Err: fmt.Errorf("%w: nil root", ErrNotFound)}
	}
	if len(path) == 0 {
		return nil, &Error{Op: OpDeclare, Path: root.Path(), Err: fmt.Errorf("%w: empty namespace path", ErrInvalidName)}
	}

	node := root
	for _, segment := range path {
		if !ValidName(segment) {
			return nil, &Error{Op: OpDeclare, Path: node.Path(), Name: segment, Err: ErrInvalidName}
		}
		if child, ok := node.children[segment]; ok {
			node = child
			continue
		}
		if _, ok := node.constants[segment]; ok {
			return nil, &Error{
				Op:   OpDeclare,
				Path: node.Path(),
				Name: segment,
				Err:  fmt.Errorf("%w: %q is a constant, not a namespace", ErrNamespaceConflict, segment),
			}
		}
		if node.sealed {
			return nil, &Error{Op: OpDeclare, Path: node.Path(), Name: segment, Err: ErrSealed}
		}

		child := newNode(segment, node)
		node.children[segment] = child
		child.log().Debug("Declared namespace.", "path", JoinPath(child.Path()))
		node = child
	}
	return node, nil
}

// SetConstant attaches a non-container value to node. The name shares the
// member table with child namespaces.
func SetConstant(node *Node, name string, value cty.Value) error {
	if node == nil {
		return &Error{Op: OpConstant, Name: name, Err: fmt.Errorf("%w: nil namespace", ErrNotFound)}
	}
	if !ValidName(name) {
		return &Error{Op: OpConstant, Path: node.Path(), Name: name, Err: ErrInvalidName}
	}
	if node.sealed {
		return &Error{Op: OpConstant, Path: node.Path(), Name: name, Err: ErrSealed}
	}
	if _, ok := node.children[name]; ok {
		return &Error{
			Op:   OpConstant,
			Path: node.Path(),
			Name: name,
			Err:  fmt.Errorf("%w: %q is already a namespace", ErrNamespaceConflict, name),
		}
	}
	if _, ok := node.constants[name]; ok {
		return &Error{Op: OpConstant, Path: node.Path(), Name: name, Err: ErrDuplicateConstant}
	}

	node.constants[name] = value
	node.log().Debug("Set constant.", "path", JoinPath(node.Path()), "name", name, "type", value.Type().FriendlyName())
	return nil
}

// Name returns the segment name; the root's name is empty.
func (n *Node) Name() string { return n.name }

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// Path returns the segments from the root down to n. The root's path is empty.
func (n *Node) Path() []string {
	var path []string
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		path = append(path, cur.name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Child returns the direct child namespace called name.
func (n *Node) Child(name string) (*Node, bool) {
	child, ok := n.children[name]
	return child, ok
}

// Lookup descends path without creating anything.
func (n *Node) Lookup(path ...string) (*Node, bool) {
	node := n
	for _, segment := range path {
		child, ok := node.children[segment]
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

// Binding returns the function bound under name on n.
func (n *Node) Binding(name string) (*Binding, bool) {
	b, ok := n.bindings[name]
	return b, ok
}

// Constant returns the constant called name on n.
func (n *Node) Constant(name string) (cty.Value, bool) {
	v, ok := n.constants[name]
	return v, ok
}

// Children returns the child namespaces sorted by name.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, child := range n.children {
		out = append(out, child)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Bindings returns the bound functions sorted by exported name.
func (n *Node) Bindings() []*Binding {
	out := make([]*Binding, 0, len(n.bindings))
	for _, b := range n.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// ConstantNames returns the constant names sorted.
func (n *Node) ConstantNames() []string {
	out := make([]string, 0, len(n.constants))
	for name := range n.constants {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Sealed reports whether the subtree rooted at n is read-only.
func (n *Node) Sealed() bool { return n.sealed }

// Seal makes n and all of its descendants read-only.
func (n *Node) Seal() {
	_ = n.Walk(func(node *Node) error {
		node.sealed = true
		return nil
	})
}

// Walk visits n and its descendants depth-first, children in name order.
// A non-nil error from fn stops the walk and is returned.
func (n *Node) Walk(fn func(*Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, child := range n.Children() {
		if err := child.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}
