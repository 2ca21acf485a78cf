package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// --- Extension Manifest Schemas ---

// FunctionDefinition declares one exported function of a namespace.
// Params is a tuple of type expressions, e.g. `[string, number]`.
type FunctionDefinition struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Params      hcl.Expression `hcl:"params,optional"`
	Returns     hcl.Expression `hcl:"returns,optional"`
}

// ConstantDefinition declares one exported constant of a namespace.
type ConstantDefinition struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Type        hcl.Expression `hcl:"type,optional"`
}

// NamespaceDefinition declares a namespace path, written "A::B", and the
// members it is expected to export.
type NamespaceDefinition struct {
	Path        string                `hcl:"path,label"`
	Description string                `hcl:"description,optional"`
	Functions   []*FunctionDefinition `hcl:"function,block"`
	Constants   []*ConstantDefinition `hcl:"constant,block"`
}

// ManifestConfig represents the top-level structure of a manifest file.
type ManifestConfig struct {
	Namespaces []*NamespaceDefinition `hcl:"namespace,block"`
}
