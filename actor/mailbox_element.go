package actor

import "go.uber.org/atomic"

// mailToken hands out monotonically increasing correlation tokens for
// MessageID. A single global counter is enough: tokens only need to be
// unique per sender, and collisions across senders are harmless because a
// response is always routed back through a specific sender's Ask call, not
// looked up globally.
var mailToken atomic.Uint64

// MessageID identifies a single message and, for request/response pairs,
// correlates a reply with the request that triggered it.
//
// IsRequest distinguishes a fire-and-forget Tell (false) from an Ask that
// expects a reply (true). ResponseID derives the paired identifier a
// responder uses to answer a request; it carries the same Token with
// IsRequest cleared.
type MessageID struct {
	Token     uint64
	IsRequest bool
}

// NewMessageID returns a fresh, non-request message identifier.
func NewMessageID() MessageID {
	return MessageID{Token: mailToken.Inc()}
}

// NewRequestID returns a fresh identifier marked as a request.
func NewRequestID() MessageID {
	return MessageID{Token: mailToken.Inc(), IsRequest: true}
}

// ResponseID returns the identifier a responder should stamp on its reply.
func (m MessageID) ResponseID() MessageID {
	return MessageID{Token: m.Token, IsRequest: false}
}

// link is the intrusive mixin every value placed into a LIFO inbox carries.
// While a node is linked into an inbox, next is owned and mutated by the
// inbox's lock-free push/take discipline; once unlinked (handed back to a
// caller via takeHead/close), ownership of next reverts to whoever holds
// the node, which by convention does not read it again.
type link struct {
	next *mailboxElement
}

// mailboxElement is the value carried by the inbox: a sender handle for
// reply routing, a message id, the opaque payload, and the intrusive next
// pointer used only while the element is linked into an inbox.
type mailboxElement struct {
	link
	sender  *PID
	mid     MessageID
	payload any
}

// newMailboxElement allocates an unlinked element ready to be pushed.
func newMailboxElement(sender *PID, mid MessageID, payload any) *mailboxElement {
	return &mailboxElement{sender: sender, mid: mid, payload: payload}
}

// promote converts a raw intrusive-link pointer obtained while walking a
// privately-held chain back into an owned mailboxElement. In CAF this casts
// across the singly_linked mixin; in Go the mixin already is the element, so
// promote is the identity function kept for readability at call sites that
// mirror the original algorithm.
func promote(n *mailboxElement) *mailboxElement { return n }

// reverseChain walks a chain as returned by takeHead (LIFO: most-recently
// pushed first) and returns a slice in push order (oldest first), the order
// a single producer expects its own messages to be processed in.
func reverseChain(head *mailboxElement) []*mailboxElement {
	var out []*mailboxElement
	for n := head; n != nil; n = n.next {
		out = append(out, n)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	for _, n := range out {
		n.next = nil
	}
	return out
}
