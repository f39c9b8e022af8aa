package actor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fetchAll(ib *inbox) []int {
	var out []int
	head := ib.takeHead()
	for n := head; n != nil; n = n.next {
		out = append(out, n.payload.(int))
	}
	return out
}

func closeAndFetch(ib *inbox) []int {
	var out []int
	ib.close(func(n *mailboxElement) {
		out = append(out, n.payload.(int))
	})
	return out
}

func push(t *testing.T, ib *inbox, v int) PushResult {
	t.Helper()
	return ib.pushFront(newMailboxElement(nil, NewMessageID(), v))
}

func TestInboxDefaultEmpty(t *testing.T) {
	ib := newInbox()
	require.True(t, ib.isEmpty())
	require.False(t, ib.isClosed())
}

func TestInboxLifoDrain(t *testing.T) {
	ib := newInbox()
	push(t, ib, 1)
	push(t, ib, 2)
	push(t, ib, 3)
	require.Equal(t, []int{3, 2, 1}, closeAndFetch(ib))
	require.True(t, ib.isClosed())
}

func TestInboxPushAfterClose(t *testing.T) {
	ib := newInbox()
	ib.close(nil)
	n := newMailboxElement(nil, NewMessageID(), 0)
	res := ib.pushFront(n)
	require.Equal(t, PushQueueClosed, res)
	require.Nil(t, n.next)
}

func TestInboxBlockUnblockHandshake(t *testing.T) {
	ib := newInbox()
	require.True(t, ib.tryBlock())
	res := push(t, ib, 1)
	require.Equal(t, PushUnblockedReader, res)
	res = push(t, ib, 2)
	require.Equal(t, PushSuccess, res)
	require.Equal(t, []int{2, 1}, closeAndFetch(ib))
}

func TestInboxTryBlockFailsWhenNonEmpty(t *testing.T) {
	ib := newInbox()
	push(t, ib, 1)
	require.False(t, ib.tryBlock())
}

func TestInboxAwaitableWakeup(t *testing.T) {
	ib := newInbox()
	var mx sync.Mutex
	cv := sync.NewCond(&mx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ib.synchronizedEmplaceFront(&mx, cv, nil, NewMessageID(), 1)
	}()

	ok := ib.synchronizedAwait(&mx, cv)
	require.True(t, ok)
	require.Equal(t, []int{1}, closeAndFetch(ib))
	wg.Wait()
}

func TestInboxTimedAwait(t *testing.T) {
	ib := newInbox()
	var mx sync.Mutex
	cv := sync.NewCond(&mx)

	near := time.Now().Add(time.Microsecond)
	res := ib.synchronizedAwait(&mx, cv, near)
	require.False(t, res)

	push(t, ib, 1)
	res = ib.synchronizedAwait(&mx, cv, near)
	require.True(t, res)
	require.Equal(t, []int{1}, fetchAll(ib))

	far := time.Now().Add(time.Hour)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		ib.synchronizedEmplaceFront(&mx, cv, nil, NewMessageID(), 2)
	}()
	res = ib.synchronizedAwait(&mx, cv, far)
	require.True(t, res)
	require.Equal(t, []int{2}, closeAndFetch(ib))
	wg.Wait()
}

func TestInboxNoElementLost(t *testing.T) {
	ib := newInbox()
	const producers = 8
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				push(t, ib, base+i)
			}
		}(p * perProducer)
	}
	wg.Wait()

	seen := make(map[int]bool)
	ib.close(func(n *mailboxElement) {
		seen[n.payload.(int)] = true
	})
	require.Len(t, seen, producers*perProducer)
}
