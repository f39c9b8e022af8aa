package actor

import (
	"context"
	"fmt"

	coreerrors "github.com/drozhkov/actor-framework/errors"
	"github.com/drozhkov/actor-framework/internal/xsync"
	"github.com/drozhkov/actor-framework/log"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// ActorSystem is the root that owns a flat namespace of actors and the
// deadletter sink actors fall back to when a message goes unhandled. It is
// intentionally small: no clustering, no remoting, no supervision-directive
// tree beyond watch/down, since those live outside this module's scope.
type ActorSystem struct {
	name   string
	logger log.Logger

	registry    *xsync.Registry[*PID]
	deadLetters *deadLetterSink

	running atomic.Bool
}

// Option configures an ActorSystem at construction time.
type Option interface {
	Apply(sys *ActorSystem)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc adapts a plain function into an Option.
type OptionFunc func(*ActorSystem)

func (f OptionFunc) Apply(sys *ActorSystem) { f(sys) }

// WithLogger overrides the default logger.
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(sys *ActorSystem) { sys.logger = logger })
}

// WithDeadLetterCapacity bounds how many unhandled messages are retained
// for inspection before the oldest ones are evicted.
func WithDeadLetterCapacity(capacity int) Option {
	return OptionFunc(func(sys *ActorSystem) { sys.deadLetters = newDeadLetterSink(capacity) })
}

// NewActorSystem returns a ready-to-use, running ActorSystem.
func NewActorSystem(name string, opts ...Option) (*ActorSystem, error) {
	if name == "" {
		return nil, coreerrors.ErrNameRequired
	}

	sys := &ActorSystem{
		name:        name,
		logger:      log.DefaultLogger,
		registry:    xsync.NewRegistry[*PID](),
		deadLetters: newDeadLetterSink(defaultDeadLetterCapacity),
	}
	for _, opt := range opts {
		opt.Apply(sys)
	}
	sys.running.Store(true)
	return sys, nil
}

// Name returns the system's name.
func (sys *ActorSystem) Name() string { return sys.name }

// Logger returns the system's logger.
func (sys *ActorSystem) Logger() log.Logger { return sys.logger }

// NumActors returns the number of actors currently registered.
func (sys *ActorSystem) NumActors() int { return sys.registry.Len() }

// selfBinder is implemented by actors that need their own PID before
// PreStart runs, such as Pool, which spawns and watches workers during
// PreStart. It is an internal protocol, not part of the public Actor
// contract, because most actors never need it.
type selfBinder interface {
	bindSelf(pid *PID)
}

// Spawn starts act under name, registers its PID, and returns it once
// PreStart has completed successfully.
func (sys *ActorSystem) Spawn(ctx context.Context, name string, act Actor, opts ...SpawnOption) (*PID, error) {
	if !sys.running.Load() {
		return nil, coreerrors.ErrSystemNotRunning
	}
	if name == "" {
		return nil, coreerrors.ErrNameRequired
	}

	addr := NewAddress(name)
	pid := newPID(addr, act, sys)
	for _, opt := range opts {
		opt.applySpawn(pid)
	}
	if binder, ok := act.(selfBinder); ok {
		binder.bindSelf(pid)
	}
	if err := pid.start(ctx); err != nil {
		return nil, fmt.Errorf("spawn %s: %w", addr, err)
	}

	sys.registry.Store(addr.String(), pid)
	return pid, nil
}

// Lookup resolves a previously spawned actor by its full address string.
func (sys *ActorSystem) Lookup(address string) (*PID, bool) {
	return sys.registry.Load(address)
}

// Tell resolves address and sends it msg, without requiring the caller to
// hold a PID. It is the entry point for code that only has a name to go on,
// such as a message handler deserializing a target from configuration.
func (sys *ActorSystem) Tell(address string, msg any) error {
	pid, ok := sys.registry.Load(address)
	if !ok {
		return coreerrors.ErrUndefinedActor
	}
	return pid.Tell(msg)
}

func (sys *ActorSystem) unregister(pid *PID) {
	sys.registry.Delete(pid.address.String())
}

// recordDeadLetter is the sink ReceiveContext.Unhandled funnels into.
func (sys *ActorSystem) recordDeadLetter(sender, receiver *PID, payload any) {
	sys.deadLetters.record(sender, receiver, payload)
	sys.logger.Debugf("deadletter receiver=%s type=%T", receiver, payload)
}

// DeadLetters returns a snapshot of the most recently recorded deadletters,
// newest last.
func (sys *ActorSystem) DeadLetters() []DeadLetter {
	return sys.deadLetters.snapshot()
}

// Shutdown stops every registered actor concurrently and waits for all of
// them to drain, aggregating whatever errors come back.
func (sys *ActorSystem) Shutdown(ctx context.Context) error {
	if !sys.running.CompareAndSwap(true, false) {
		return nil
	}

	var pids []*PID
	sys.registry.Range(func(_ string, pid *PID) { pids = append(pids, pid) })

	errs := make([]error, len(pids))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, pid := range pids {
		i, pid := i, pid
		group.Go(func() error {
			errs[i] = pid.Stop(groupCtx)
			return errs[i]
		})
	}

	_ = group.Wait()
	return multierr.Combine(errs...)
}
