package bootstrap

import "github.com/vk/extbind/internal/registry"

// Module is one step of a registration program. Register receives the root
// of the namespace tree and must return the first registry error it hits.
type Module interface {
	Name() string
	Register(root *registry.Node) error
}

type moduleFunc struct {
	name string
	fn   func(root *registry.Node) error
}

// ModuleFunc adapts a plain function to the Module interface.
func ModuleFunc(name string, fn func(root *registry.Node) error) Module {
	return &moduleFunc{name: name, fn: fn}
}

func (m *moduleFunc) Name() string { return m.name }

func (m *moduleFunc) Register(root *registry.Node) error { return m.fn(root) }
