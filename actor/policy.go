package actor

import (
	"math/rand/v2"

	coreerrors "github.com/drozhkov/actor-framework/errors"
)

// Policy selects which worker(s) of an actor pool handle an incoming
// message. The three policies mirror the dispatch strategies a classic
// actor-pool supervisor offers: spread evenly, spread randomly, or fan out
// to everyone.
type Policy int

const (
	// RoundRobin cycles through workers in order, one per message.
	RoundRobin Policy = iota
	// Random selects a worker uniformly at random for each message.
	Random
	// Broadcast forwards every message to all current workers.
	Broadcast
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case RoundRobin:
		return "round-robin"
	case Random:
		return "random"
	case Broadcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

// dispatcher is the internal shape a Policy compiles down to: given the
// current worker list and an inbound element, deliver it and report any
// failure. Round-robin keeps state (its counter) across calls; that state
// lives on the Pool (roundRobinIdx), which is why the pool is passed in.
type dispatcher func(pool *Pool, workers []*PID, elem *mailboxElement) error

func dispatcherFor(p Policy) dispatcher {
	switch p {
	case Random:
		return dispatchRandom
	case Broadcast:
		return dispatchBroadcast
	default:
		return dispatchRoundRobin
	}
}

func dispatchRoundRobin(pool *Pool, workers []*PID, elem *mailboxElement) error {
	if len(workers) == 0 {
		return coreerrors.ErrOutOfWorkers
	}
	idx := pool.roundRobinIdx.Add(1) % uint64(len(workers))
	return workers[idx].enqueueFrom(elem.sender, elem.mid, elem.payload)
}

func dispatchRandom(pool *Pool, workers []*PID, elem *mailboxElement) error {
	if len(workers) == 0 {
		return coreerrors.ErrOutOfWorkers
	}
	idx := rand.IntN(len(workers))
	return workers[idx].enqueueFrom(elem.sender, elem.mid, elem.payload)
}

func dispatchBroadcast(pool *Pool, workers []*PID, elem *mailboxElement) error {
	if len(workers) == 0 {
		return coreerrors.ErrOutOfWorkers
	}
	var firstErr error
	for _, w := range workers {
		if err := w.enqueueFrom(elem.sender, elem.mid, elem.payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
