package bootstrap

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/vk/extbind/internal/ctxlog"
	"github.com/vk/extbind/internal/registry"
)

// State is the lifecycle position of a Sequencer.
type State int32

const (
	Uninitialized State = iota
	Initializing
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Sequencer runs a fixed registration program exactly once.
type Sequencer struct {
	modules []Module

	// handle and err are written before state leaves Initializing, so any
	// reader that observes a terminal state also observes them.
	state  atomic.Int32
	handle *Handle
	err    error
}

// New creates a Sequencer for the given modules, which run in order.
func New(modules ...Module) *Sequencer {
	return &Sequencer{modules: modules}
}

// State returns the current lifecycle state.
func (s *Sequencer) State() State {
	return State(s.state.Load())
}

// Handle returns the published root handle. It fails with ErrNotReady unless
// Initialize has reached Ready.
func (s *Sequencer) Handle() (*Handle, error) {
	if s.State() != Ready {
		return nil, ErrNotReady
	}
	return s.handle, nil
}

// Initialize runs the registration program. The first call decides the
// outcome; later calls return the cached handle or error.
//
// Callers are not queued. Any call made while the program is still running
// is rejected with ErrReentrant, whether it comes from a module or from
// another goroutine. Hosts that initialize from several goroutines must
// serialize the first call themselves (a sync.Once works) or retry once
// State reports a terminal state.
func (s *Sequencer) Initialize(ctx context.Context) (*Handle, error) {
	if !s.state.CompareAndSwap(int32(Uninitialized), int32(Initializing)) {
		switch s.State() {
		case Ready:
			return s.handle, nil
		case Failed:
			return nil, s.err
		default:
			return nil, &InitError{Step: -1, Err: ErrReentrant}
		}
	}

	handle, err := s.run(ctx)
	s.handle, s.err = handle, err
	if err != nil {
		s.state.Store(int32(Failed))
		return nil, err
	}
	s.state.Store(int32(Ready))
	return handle, nil
}

func (s *Sequencer) run(ctx context.Context) (*Handle, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting extension registration.", "modules", len(s.modules))

	// Sealed on every exit, failures included.
	root := registry.NewRootWithLogger(logger)
	defer root.Seal()

	for i, mod := range s.modules {
		if mod == nil {
			err := &InitError{Step: i, Err: ErrNilModule}
			logger.Error("Extension failed to load.", "step", i, "error", err)
			return nil, err
		}

		name := mod.Name()
		logger.Debug("Registering module.", "module", name, "step", i)
		if err := register(mod, root); err != nil {
			initErr := &InitError{Module: name, Step: i, Err: err}
			logger.Error("Extension failed to load.", "module", name, "step", i, "error", err)
			return nil, initErr
		}
	}

	root.Seal()
	handle := &Handle{root: root}
	logger.Info("Extension loaded.", "modules", len(s.modules), "exports", len(handle.Exports()))
	return handle, nil
}

// register shields the sequencer from panicking modules.
func register(mod Module, root *registry.Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrModulePanic, r)
		}
	}()
	return mod.Register(root)
}
