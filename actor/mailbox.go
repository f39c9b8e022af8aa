package actor

import "time"

// Mailbox defines the contract for an actor's message queue.
//
// Concurrency and ordering
//   - Implementations MUST be thread-safe for multiple concurrent producers
//     calling Enqueue.
//   - The actor runtime consumes from a single goroutine per actor, so
//     implementations SHOULD optimize for a single consumer (MPSC).
//   - The default mailbox in this package is LIFO at the storage layer: a
//     push always lands at the head. Await/Dequeue present messages back to
//     the consumer in a per-drain-reversed order so that, barring interleaved
//     producers, a single sender's messages are processed in send order. See
//     LifoMailbox for the exact contract.
//
// Blocking behavior
//   - Enqueue never returns an error except after Dispose. It is non-blocking
//     for the default LifoMailbox; BoundedMailbox blocks while it is full.
//   - Await blocks the calling goroutine until a message is available, the
//     mailbox is disposed, or an optional deadline elapses.
//
// Resource management
//   - Dispose releases resources and wakes any goroutine blocked in Await.
//     After Dispose, Enqueue fails and Dequeue always returns nil.
type Mailbox interface {
	// Enqueue pushes an element into the mailbox. Ownership of elem transfers
	// to the mailbox unless an error is returned.
	Enqueue(elem *mailboxElement) error
	// Dequeue fetches the next element from the mailbox, or nil if empty.
	Dequeue() *mailboxElement
	// Await blocks until Dequeue would return a non-nil element, the mailbox
	// is disposed, or deadline (if non-zero) elapses. It returns false only
	// on a deadline elapsing with nothing pending; once disposed it always
	// returns true, so the consumer loop drains whatever is left and learns
	// of the closure from Dequeue returning nil rather than from Await.
	Await(deadline ...time.Time) bool
	// IsEmpty reports whether the mailbox currently has no messages.
	IsEmpty() bool
	// Len returns an approximate count of messages currently queued.
	Len() int64
	// Dispose releases resources and unblocks any waiter. The mailbox MUST
	// NOT be used after Dispose returns, beyond further Dequeue/IsEmpty calls
	// which are safe and will report empty.
	Dispose()
}
