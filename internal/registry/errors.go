package registry

import (
	"errors"
	"fmt"
)

var (
	ErrNamespaceConflict = errors.New("namespace conflict")
	ErrDuplicateBinding  = errors.New("duplicate binding")
	ErrArityMismatch     = errors.New("arity mismatch")
	ErrDuplicateConstant = errors.New("duplicate constant")
	ErrInvalidName       = errors.New("invalid name")
	ErrInvalidEntryPoint = errors.New("invalid entry point")
	ErrSealed            = errors.New("namespace tree is sealed")
	ErrNotFound          = errors.New("not found")
	ErrArgumentCount     = errors.New("wrong number of arguments")
)

// Operations reported in Error.Op.
const (
	OpDeclare  = "declare"
	OpBind     = "bind"
	OpConstant = "constant"
	OpCall     = "call"
	OpResolve  = "resolve"
)

// Error describes a failed registry operation together with the namespace
// path and member name it was applied to.
type Error struct {
	Op   string
	Path []string
	Name string
	Err  error
}

func (e *Error) Error() string {
	where := JoinPath(e.Path)
	switch {
	case e.Name != "" && where != "":
		return fmt.Sprintf("registry: %s %q in %s: %v", e.Op, e.Name, where, e.Err)
	case e.Name != "":
		return fmt.Sprintf("registry: %s %q: %v", e.Op, e.Name, e.Err)
	case where != "":
		return fmt.Sprintf("registry: %s %s: %v", e.Op, where, e.Err)
	default:
		return fmt.Sprintf("registry: %s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }
