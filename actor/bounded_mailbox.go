package actor

import (
	"time"

	gods "github.com/Workiva/go-datastructures/queue"

	coreerrors "github.com/drozhkov/actor-framework/errors"
)

// BoundedMailbox is a fixed-capacity Mailbox backed by a ring buffer: FIFO
// order, and Enqueue applies backpressure by blocking once the buffer is
// full rather than growing without bound the way LifoMailbox does. Pick it
// for actors that should exert backpressure on fast producers instead of
// letting their inbox grow forever.
type BoundedMailbox struct {
	underlying *gods.RingBuffer
}

// enforce compilation error
var _ Mailbox = (*BoundedMailbox)(nil)

// NewBoundedMailbox returns a BoundedMailbox with room for capacity
// elements. capacity must be positive.
func NewBoundedMailbox(capacity int) *BoundedMailbox {
	return &BoundedMailbox{underlying: gods.NewRingBuffer(uint64(capacity))}
}

// Enqueue implements Mailbox. It blocks while the buffer is full and
// returns ErrQueueClosed once the mailbox has been disposed.
func (mailbox *BoundedMailbox) Enqueue(elem *mailboxElement) error {
	if err := mailbox.underlying.Put(elem); err != nil {
		return coreerrors.ErrQueueClosed
	}
	return nil
}

// Dequeue implements Mailbox, returning nil if the buffer is empty or has
// been disposed.
func (mailbox *BoundedMailbox) Dequeue() *mailboxElement {
	if mailbox.underlying.Len() == 0 {
		return nil
	}
	item, err := mailbox.underlying.Get()
	if err != nil {
		return nil
	}
	elem, _ := item.(*mailboxElement)
	return elem
}

// Await implements Mailbox by polling the ring buffer, since it offers no
// peek-and-wait primitive of its own. The poll interval is short enough
// that a consumer notices new work promptly without spinning hot.
func (mailbox *BoundedMailbox) Await(deadline ...time.Time) bool {
	const pollInterval = 2 * time.Millisecond

	for {
		if mailbox.underlying.Len() > 0 || mailbox.underlying.IsDisposed() {
			return true
		}
		if len(deadline) > 0 && !deadline[0].IsZero() && !time.Now().Before(deadline[0]) {
			return false
		}
		time.Sleep(pollInterval)
	}
}

// IsEmpty implements Mailbox. The result is a snapshot.
func (mailbox *BoundedMailbox) IsEmpty() bool {
	return mailbox.underlying.IsDisposed() || mailbox.underlying.Len() == 0
}

// Len implements Mailbox. The result is a snapshot.
func (mailbox *BoundedMailbox) Len() int64 {
	return int64(mailbox.underlying.Len())
}

// Dispose implements Mailbox.
func (mailbox *BoundedMailbox) Dispose() {
	mailbox.underlying.Dispose()
}
