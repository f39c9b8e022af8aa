package actor

import "context"

// Actor is a unit of computation that owns a mailbox and processes exactly
// one message at a time. Implementations should keep state private and
// mutate it only from within Receive, since Receive is the only method the
// runtime calls concurrently-safe by construction (one goroutine per PID).
type Actor interface {
	// PreStart runs once before the actor's loop begins consuming its inbox.
	// A non-nil error aborts the spawn.
	PreStart(ctx context.Context) error
	// Receive handles a single message pulled from the mailbox.
	Receive(ctx *ReceiveContext)
	// PostStop runs once after the actor's loop has drained and exited,
	// whatever the reason. It always runs, even if PreStart never completed
	// or Receive panicked.
	PostStop(ctx context.Context) error
}

// FuncActor adapts a plain function into an Actor, for workers whose whole
// job is "do this with every message" and don't need PreStart/PostStop
// hooks or private state beyond a closure.
type FuncActor struct {
	receive func(ctx *ReceiveContext)
}

// enforce compilation error
var _ Actor = (*FuncActor)(nil)

// NewFuncActor wraps receive as an Actor.
func NewFuncActor(receive func(ctx *ReceiveContext)) *FuncActor {
	return &FuncActor{receive: receive}
}

func (f *FuncActor) PreStart(context.Context) error { return nil }

func (f *FuncActor) Receive(ctx *ReceiveContext) { f.receive(ctx) }

func (f *FuncActor) PostStop(context.Context) error { return nil }
