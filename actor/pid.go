package actor

import (
	"context"
	"fmt"
	"sync"
	"time"

	coreerrors "github.com/drozhkov/actor-framework/errors"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// PID is a handle to a running actor: its address, its mailbox, and the
// goroutine draining that mailbox. Callers never see the Actor value
// itself, only the PID, which is what keeps Tell/Ask safe to call from any
// goroutine while Receive only ever runs on the actor's own loop.
type PID struct {
	address Address
	actor   Actor
	mailbox Mailbox
	system  *ActorSystem

	running atomic.Bool
	done    chan struct{}
	stopErr error

	mu       sync.Mutex
	watchers map[*PID]struct{}
	watchees map[*PID]struct{}
}

func newPID(address Address, act Actor, system *ActorSystem) *PID {
	return &PID{
		address:  address,
		actor:    act,
		mailbox:  NewLifoMailbox(),
		system:   system,
		done:     make(chan struct{}),
		watchers: make(map[*PID]struct{}),
		watchees: make(map[*PID]struct{}),
	}
}

// Address returns the actor's address.
func (pid *PID) Address() Address { return pid.address }

// String implements fmt.Stringer.
func (pid *PID) String() string { return pid.address.String() }

// IsRunning reports whether the actor's loop is still consuming its inbox.
func (pid *PID) IsRunning() bool { return pid.running.Load() }

func (pid *PID) enqueueFrom(sender *PID, mid MessageID, payload any) error {
	if !pid.IsRunning() {
		return coreerrors.ErrDead
	}
	return pid.mailbox.Enqueue(newMailboxElement(sender, mid, payload))
}

// Tell sends msg to pid without waiting for a reply. The sender seen by the
// receiving actor is nil: there is no PID representing code outside the
// actor system.
func (pid *PID) Tell(msg any) error {
	return pid.enqueueFrom(nil, NewMessageID(), msg)
}

// Ask sends msg to pid and blocks until a reply arrives, ctx is done, or
// timeout elapses, whichever comes first. It is implemented the way the
// rest of the system would implement any other actor talking to pid: by
// spawning a short-lived actor to stand in as the sender.
func (pid *PID) Ask(ctx context.Context, msg any, timeout time.Duration) (any, error) {
	if !pid.IsRunning() {
		return nil, coreerrors.ErrDead
	}

	replies := make(chan any, 1)
	askName := fmt.Sprintf("ask-%s", uuid.NewString())
	asker := NewFuncActor(func(rc *ReceiveContext) {
		select {
		case replies <- rc.Message():
		default:
		}
		rc.Self().stopAsync(coreerrors.ReasonNormal)
	})

	replyPID, err := pid.system.Spawn(ctx, askName, asker)
	if err != nil {
		return nil, err
	}

	req := NewRequestID()
	if err := pid.enqueueFrom(replyPID, req, msg); err != nil {
		_ = replyPID.shutdown(ctx, coreerrors.ReasonNormal)
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-replies:
		return reply, nil
	case <-timer.C:
		_ = replyPID.shutdown(context.Background(), coreerrors.ReasonNormal)
		return nil, coreerrors.ErrRequestTimeout
	case <-ctx.Done():
		_ = replyPID.shutdown(context.Background(), coreerrors.ReasonNormal)
		return nil, coreerrors.ErrRequestCanceled
	}
}

// Watch registers pid to receive a DownMessage when cid terminates.
func (pid *PID) Watch(cid *PID) {
	cid.mu.Lock()
	cid.watchers[pid] = struct{}{}
	cid.mu.Unlock()

	pid.mu.Lock()
	pid.watchees[cid] = struct{}{}
	pid.mu.Unlock()
}

// UnWatch reverses a prior Watch of cid.
func (pid *PID) UnWatch(cid *PID) {
	cid.mu.Lock()
	delete(cid.watchers, pid)
	cid.mu.Unlock()

	pid.mu.Lock()
	delete(pid.watchees, cid)
	pid.mu.Unlock()
}

// Stop requests a graceful shutdown with the normal exit reason.
func (pid *PID) Stop(ctx context.Context) error {
	return pid.shutdown(ctx, coreerrors.ReasonNormal)
}

// SendExit delivers an ExitMessage with the given reason through pid's
// mailbox rather than stopping it out of band, so the exit is ordered
// against whatever else is already queued ahead of it. Actors that
// implement exitHandler (Pool, notably) get to react before terminating;
// everything else terminates with reason as soon as the message is
// delivered.
func (pid *PID) SendExit(reason error) error {
	return pid.enqueueFrom(nil, NewMessageID(), &ExitMessage{Reason: reason})
}

// Kill forcibly marks pid stopped with ReasonUnreachable and disposes its
// mailbox without waiting for the loop to drain, for a supervisor that can
// no longer confirm the actor is making progress and needs to reclaim its
// slot now rather than wait on a hung Receive.
func (pid *PID) Kill() {
	pid.stopAsync(coreerrors.ReasonUnreachable)
}

func (pid *PID) shutdown(ctx context.Context, reason error) error {
	if !pid.running.CompareAndSwap(true, false) {
		return nil
	}
	pid.mailbox.Dispose()
	select {
	case <-pid.done:
	case <-ctx.Done():
		return coreerrors.ErrUnreachable
	}
	return pid.stopErr
}

// stopAsync transitions pid to stopped without waiting for its loop to
// drain, for use from inside the actor's own Receive, where waiting would
// deadlock against the very goroutine doing the waiting.
func (pid *PID) stopAsync(reason error) {
	if !pid.running.CompareAndSwap(true, false) {
		return
	}
	pid.stopErr = reason
	pid.mailbox.Dispose()
}

func (pid *PID) start(ctx context.Context) error {
	if err := pid.actor.PreStart(ctx); err != nil {
		_ = pid.actor.PostStop(ctx)
		close(pid.done)
		return err
	}
	pid.running.Store(true)
	go pid.run(ctx)
	return nil
}

func (pid *PID) run(parent context.Context) {
	defer close(pid.done)
	defer pid.cleanup(parent)

	for {
		if !pid.mailbox.Await() {
			return
		}
		elem := pid.mailbox.Dequeue()
		if elem == nil {
			if !pid.running.Load() {
				return
			}
			continue
		}
		pid.deliver(parent, elem)
	}
}

// exitHandler lets an actor intercept its own ExitMessage instead of being
// unconditionally terminated by it, the way Pool needs to forward the exit
// to its workers before (and regardless of) stopping itself. Most actors
// don't implement it and get the default behavior below.
type exitHandler interface {
	HandleExit(ctx *ReceiveContext)
}

func (pid *PID) deliver(parent context.Context, elem *mailboxElement) {
	defer func() {
		if r := recover(); r != nil {
			pid.stopErr = fmt.Errorf("actor %s panicked: %v", pid.address, r)
			pid.running.Store(false)
			pid.mailbox.Dispose()
		}
	}()

	switch msg := elem.payload.(type) {
	case *ExitMessage:
		if eh, ok := pid.actor.(exitHandler); ok {
			rc := &ReceiveContext{ctx: parent, self: pid, sender: elem.sender, mid: elem.mid, payload: msg}
			eh.HandleExit(rc)
			return
		}
		pid.stopErr = msg.Reason
		pid.running.Store(false)
		pid.mailbox.Dispose()
		return
	default:
		rc := &ReceiveContext{ctx: parent, self: pid, sender: elem.sender, mid: elem.mid, payload: msg}
		pid.actor.Receive(rc)
	}
}

func (pid *PID) cleanup(parent context.Context) {
	pid.running.Store(false)
	_ = pid.actor.PostStop(parent)

	reason := pid.stopErr
	if reason == nil {
		reason = coreerrors.ReasonNormal
	}

	pid.mu.Lock()
	watchers := make([]*PID, 0, len(pid.watchers))
	for w := range pid.watchers {
		watchers = append(watchers, w)
	}
	watchees := make([]*PID, 0, len(pid.watchees))
	for w := range pid.watchees {
		watchees = append(watchees, w)
	}
	pid.mu.Unlock()

	for _, watchee := range watchees {
		pid.UnWatch(watchee)
	}
	for _, watcher := range watchers {
		if watcher.IsRunning() {
			_ = watcher.enqueueFrom(pid, NewMessageID(), &DownMessage{Subject: pid, Reason: reason})
		}
	}

	if pid.system != nil {
		pid.system.unregister(pid)
	}
}
