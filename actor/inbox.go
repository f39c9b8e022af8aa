package actor

import (
	"sync"
	"sync/atomic"
	"time"
)

// PushResult reports what happened when pushing into an inbox.
type PushResult int

const (
	// PushSuccess means the element was linked in and the inbox was already
	// non-empty, or the reader was not waiting.
	PushSuccess PushResult = iota
	// PushUnblockedReader means the element was linked in and the reader had
	// called tryBlock and may be asleep on a condition variable; the caller
	// MUST notify that condition variable for the reader to resume promptly.
	PushUnblockedReader
	// PushQueueClosed means the inbox is closed; the caller retains
	// ownership of whatever it tried to push.
	PushQueueClosed
)

// cacheLinePad prevents false sharing between the head word and whatever
// follows it in a struct, the way a producer hammering CompareAndSwap on
// head would otherwise bleed cache traffic into an unrelated neighboring
// field.
type cacheLinePad [64]byte

// inbox is a lock-free, unbounded, LIFO (stack-ordered) multi-producer,
// single-consumer message queue. A single atomic word, head, encodes three
// states in addition to "points at the top element":
//
//   - nil:        empty, no consumer waiting
//   - blockedHead: empty, the consumer has committed to waiting on a cv
//   - closedHead:  terminal; no further pushes are accepted
//
// The zero value is a valid, empty, open inbox.
type inbox struct {
	head atomic.Pointer[mailboxElement]
	_    cacheLinePad
}

// blockedHead and closedHead are distinguished sentinel addresses, never
// returned from a real allocation, used to tag the otherwise-pointer-typed
// head word with the "blocked" and "closed" states.
var (
	blockedHead = &mailboxElement{}
	closedHead  = &mailboxElement{}
)

// newInbox returns a ready-to-use, open, empty inbox.
func newInbox() *inbox {
	return &inbox{}
}

// pushFront links n at the top of the stack. Ownership of n transfers to the
// inbox unless PushQueueClosed is returned.
func (ib *inbox) pushFront(n *mailboxElement) PushResult {
	for {
		head := ib.head.Load()
		if head == closedHead {
			return PushQueueClosed
		}
		if head == blockedHead {
			n.next = nil
		} else {
			n.next = head
		}
		if ib.head.CompareAndSwap(head, n) {
			if head == blockedHead {
				return PushUnblockedReader
			}
			return PushSuccess
		}
	}
}

// tryBlock transitions an empty-unblocked head to blocked. It succeeds only
// when the inbox was empty and not already blocked or closed. The unique
// consumer must call this before waiting on a condition variable.
func (ib *inbox) tryBlock() bool {
	return ib.head.CompareAndSwap(nil, blockedHead)
}

// tryUnblock transitions blocked back to empty-unblocked, aborting a planned
// wait. It is a no-op (returns false) if the head is not currently blocked.
func (ib *inbox) tryUnblock() bool {
	return ib.head.CompareAndSwap(blockedHead, nil)
}

// takeHead atomically swaps a non-empty head out for empty-unblocked and
// returns the prior head as a privately-owned chain, most-recently-pushed
// first. It returns nil if the inbox is empty. Calling takeHead on a closed
// inbox is a caller error; it is treated as empty rather than panicking,
// since the inbox never raises faults for its own sake.
func (ib *inbox) takeHead() *mailboxElement {
	for {
		head := ib.head.Load()
		switch head {
		case closedHead, blockedHead, nil:
			return nil
		default:
			if ib.head.CompareAndSwap(head, nil) {
				return head
			}
		}
	}
}

// close transitions the inbox to closed exactly once. Whatever was linked in
// at the moment of the transition is drained and handed to fn, element by
// element, for disposal. Later calls are no-ops.
func (ib *inbox) close(fn func(*mailboxElement)) {
	for {
		head := ib.head.Load()
		if head == closedHead {
			return
		}
		if !ib.head.CompareAndSwap(head, closedHead) {
			continue
		}
		if head == nil || head == blockedHead {
			return
		}
		for n := head; n != nil; {
			next := n.next
			n.next = nil
			if fn != nil {
				fn(n)
			}
			n = next
		}
		return
	}
}

// isClosed reports whether close has run to completion.
func (ib *inbox) isClosed() bool {
	return ib.head.Load() == closedHead
}

// isEmpty reports whether the inbox is open and currently holds no elements.
// A closed inbox reports non-empty, so a waiter woken by close returns true
// from synchronizedAwait; callers that need to tell the two apart use
// isClosed.
func (ib *inbox) isEmpty() bool {
	h := ib.head.Load()
	return h == nil || h == blockedHead
}

// synchronizedEmplaceFront constructs a mailboxElement and pushes it. If the
// push observed a blocked reader, it acquires mx and notifies cv under the
// lock so the sleeping consumer is guaranteed to observe the wakeup.
func (ib *inbox) synchronizedEmplaceFront(mx *sync.Mutex, cv *sync.Cond, sender *PID, mid MessageID, payload any) PushResult {
	res := ib.pushFront(newMailboxElement(sender, mid, payload))
	if res == PushUnblockedReader {
		mx.Lock()
		cv.Broadcast()
		mx.Unlock()
	}
	return res
}

// synchronizedAwait is the consumer-side protocol: if the inbox already has
// something, return true immediately. Otherwise commit to waiting via
// tryBlock and sleep on cv (optionally bounded by a deadline) until the head
// is no longer blocked. On deadline expiry it aborts the wait with
// tryUnblock. It returns true iff the inbox is non-empty when it returns.
//
// mx must be the Locker backing cv, and must not be held by the caller on
// entry.
func (ib *inbox) synchronizedAwait(mx *sync.Mutex, cv *sync.Cond, deadline ...time.Time) bool {
	if !ib.isEmpty() {
		return true
	}
	if !ib.tryBlock() {
		// A concurrent pusher or consumer already changed the state; resolve
		// from current state rather than waiting.
		return !ib.isEmpty()
	}

	mx.Lock()
	defer mx.Unlock()

	if len(deadline) == 0 || deadline[0].IsZero() {
		for ib.head.Load() == blockedHead {
			cv.Wait()
		}
	} else {
		dl := deadline[0]
		if !dl.After(time.Now()) {
			ib.tryUnblock()
			return !ib.isEmpty()
		}
		timer := time.AfterFunc(time.Until(dl), func() {
			mx.Lock()
			cv.Broadcast()
			mx.Unlock()
		})
		defer timer.Stop()
		for ib.head.Load() == blockedHead && time.Now().Before(dl) {
			cv.Wait()
		}
	}

	if ib.head.Load() == blockedHead {
		ib.tryUnblock()
	}
	return !ib.isEmpty()
}
