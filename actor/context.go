package actor

import "context"

// ReceiveContext wraps a single mailbox element with the helpers an Actor
// needs while handling it: who sent it, what message id to answer under,
// and a couple of reply conveniences.
type ReceiveContext struct {
	ctx     context.Context
	self    *PID
	sender  *PID
	mid     MessageID
	payload any
}

// Context returns the context the enclosing actor system was asked to run
// under. Long operations inside Receive should respect its cancellation.
func (r *ReceiveContext) Context() context.Context { return r.ctx }

// Self returns the PID of the actor handling this message.
func (r *ReceiveContext) Self() *PID { return r.self }

// Sender returns the PID that sent this message, or nil for an anonymous
// send (no reply is possible in that case).
func (r *ReceiveContext) Sender() *PID { return r.sender }

// Message returns the opaque payload carried by this element.
func (r *ReceiveContext) Message() any { return r.payload }

// MessageID returns the message id this element was stamped with.
func (r *ReceiveContext) MessageID() MessageID { return r.mid }

// IsRequest reports whether the sender is waiting for a reply.
func (r *ReceiveContext) IsRequest() bool { return r.mid.IsRequest }

// Response sends reply back to Sender() at the response id derived from
// this message's id. It is a no-op if there is no sender to reply to.
func (r *ReceiveContext) Response(reply any) {
	if r.sender == nil {
		return
	}
	r.sender.enqueueFrom(r.self, r.mid.ResponseID(), reply)
}

// Tell sends msg to to as a fire-and-forget message from Self().
func (r *ReceiveContext) Tell(to *PID, msg any) {
	if to == nil {
		return
	}
	to.enqueueFrom(r.self, NewMessageID(), msg)
}

// Unhandled is the escape hatch for messages an actor's Receive does not
// recognize. It records the message in the owning ActorSystem's deadletter
// sink (see ActorSystem.DeadLetters); it is a no-op for a PID with no
// system.
func (r *ReceiveContext) Unhandled() {
	if r.self != nil && r.self.system != nil {
		r.self.system.recordDeadLetter(r.sender, r.self, r.payload)
	}
}
