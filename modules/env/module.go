package env

import (
	"os"
	"sort"
	"strings"

	"github.com/vk/extbind/internal/registry"
)

// Module implements the bootstrap.Module interface for this package.
type Module struct{}

// Get returns the value of the environment variable name, or "" if unset.
func Get(name string) string {
	return os.Getenv(name)
}

// Has reports whether the environment variable name is set.
func Has(name string) bool {
	_, ok := os.LookupEnv(name)
	return ok
}

// All returns every environment variable as a map.
func All() map[string]string {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap
}

// Names returns the sorted names of all environment variables.
func Names() []string {
	names := make([]string, 0)
	for name := range All() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Name identifies the module in load diagnostics.
func (m *Module) Name() string { return "env" }

// Register declares System::Env and binds its functions.
func (m *Module) Register(root *registry.Node) error {
	node, err := registry.DeclareNamespace(root, "System", "Env")
	if err != nil {
		return err
	}

	bindings := []struct {
		name  string
		arity int
		fn    any
	}{
		{"get", 1, Get},
		{"has", 1, Has},
		{"all", 0, All},
		{"names", 0, Names},
	}
	for _, b := range bindings {
		if err := registry.BindFunction(node, b.name, b.arity, b.fn); err != nil {
			return err
		}
	}
	return nil
}
