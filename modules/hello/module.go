package hello

import (
	"fmt"

	"github.com/vk/extbind/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Version is exported to the host as Servactory.HelloRust.VERSION.
const Version = "0.1.0"

// Module implements the bootstrap.Module interface for this package.
type Module struct{}

// Hello is the native entry point bound as Servactory::HelloRust::hello.
func Hello(name string) string {
	return fmt.Sprintf("Hello from Rust, %s!", name)
}

// Name identifies the module in load diagnostics.
func (m *Module) Name() string { return "hello" }

// Register declares Servactory::HelloRust and binds hello to it.
func (m *Module) Register(root *registry.Node) error {
	node, err := registry.DeclareNamespace(root, "Servactory", "HelloRust")
	if err != nil {
		return err
	}
	if err := registry.SetConstant(node, "VERSION", cty.StringVal(Version)); err != nil {
		return err
	}
	return registry.BindFunction(node, "hello", 1, Hello)
}
