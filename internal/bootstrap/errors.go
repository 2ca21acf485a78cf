package bootstrap

import (
	"errors"
	"fmt"

	"github.com/vk/extbind/internal/registry"
)

var (
	ErrReentrant   = errors.New("initialization already in progress")
	ErrModulePanic = errors.New("module panicked during registration")
	ErrNilModule   = errors.New("nil module")
	ErrNotReady    = errors.New("extension is not ready")
)

// errorKinds lists the sentinels Kind reports, most specific first.
var errorKinds = []error{
	registry.ErrNamespaceConflict,
	registry.ErrDuplicateBinding,
	registry.ErrArityMismatch,
	registry.ErrDuplicateConstant,
	registry.ErrInvalidName,
	registry.ErrInvalidEntryPoint,
	registry.ErrSealed,
	registry.ErrNotFound,
	ErrReentrant,
	ErrModulePanic,
	ErrNilModule,
}

// InitError reports the registration step that stopped initialization.
type InitError struct {
	Module string
	Step   int
	Err    error
}

func (e *InitError) Error() string {
	if e.Module == "" {
		return fmt.Sprintf("extension init failed at step %d: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("extension init failed in module %q (step %d): %v", e.Module, e.Step, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Kind returns the sentinel error that classifies e, or nil if the failure
// came from a module-specific error.
func (e *InitError) Kind() error {
	for _, kind := range errorKinds {
		if errors.Is(e.Err, kind) {
			return kind
		}
	}
	return nil
}
