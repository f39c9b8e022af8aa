package actor

import (
	"sync"
	"time"

	coreerrors "github.com/drozhkov/actor-framework/errors"
)

// LifoMailbox is the default Mailbox: a lock-free LIFO inbox on the hot
// path, with a mutex/condition-variable pair used only for the block/wake
// handshake when the single consumer has nothing to do.
//
// Dequeue never exposes raw LIFO order to callers: each time the internal
// buffer runs dry, it pulls the whole current stack out with one CAS and
// reverses it, so a burst of messages from one producer comes back out in
// the order that producer sent them. Interleavings between distinct
// producers remain arbitrary, per the inbox's own ordering contract.
type LifoMailbox struct {
	ib    *inbox
	mx    sync.Mutex
	cv    *sync.Cond
	batch []*mailboxElement
	pos   int
}

// enforce compilation error
var _ Mailbox = (*LifoMailbox)(nil)

// NewLifoMailbox returns a ready-to-use LifoMailbox.
func NewLifoMailbox() *LifoMailbox {
	m := &LifoMailbox{ib: newInbox()}
	m.cv = sync.NewCond(&m.mx)
	return m
}

// enqueueElement pushes an already-constructed element and, if the push found
// the consumer blocked, wakes it through the condition variable.
func (m *LifoMailbox) enqueueElement(elem *mailboxElement) error {
	switch m.ib.pushFront(elem) {
	case PushQueueClosed:
		return coreerrors.ErrQueueClosed
	case PushUnblockedReader:
		m.mx.Lock()
		m.cv.Broadcast()
		m.mx.Unlock()
	}
	return nil
}

// Enqueue implements Mailbox.
func (m *LifoMailbox) Enqueue(elem *mailboxElement) error {
	return m.enqueueElement(elem)
}

// Dequeue implements Mailbox.
func (m *LifoMailbox) Dequeue() *mailboxElement {
	if m.ib.isClosed() {
		m.batch, m.pos = nil, 0
		return nil
	}
	if m.pos < len(m.batch) {
		e := m.batch[m.pos]
		m.pos++
		return e
	}
	head := m.ib.takeHead()
	if head == nil {
		m.batch, m.pos = nil, 0
		return nil
	}
	m.batch = reverseChain(head)
	m.pos = 0
	e := m.batch[m.pos]
	m.pos++
	return e
}

// Await implements Mailbox.
func (m *LifoMailbox) Await(deadline ...time.Time) bool {
	if m.pos < len(m.batch) {
		return true
	}
	return m.ib.synchronizedAwait(&m.mx, m.cv, deadline...)
}

// IsEmpty implements Mailbox.
func (m *LifoMailbox) IsEmpty() bool {
	if m.ib.isClosed() {
		return true
	}
	return m.pos >= len(m.batch) && m.ib.isEmpty()
}

// Len implements Mailbox. It is approximate: the buffered, already-taken
// batch is counted exactly, the still-linked stack is not (doing so would
// require walking it, defeating the point of O(1) takeHead).
func (m *LifoMailbox) Len() int64 {
	pending := int64(len(m.batch) - m.pos)
	if pending < 0 {
		pending = 0
	}
	if !m.ib.isEmpty() {
		pending++
	}
	return pending
}

// Dispose implements Mailbox.
func (m *LifoMailbox) Dispose() {
	m.ib.close(nil)
	m.mx.Lock()
	m.cv.Broadcast()
	m.mx.Unlock()
}
