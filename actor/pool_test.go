package actor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	coreerrors "github.com/drozhkov/actor-framework/errors"
)

// countingWorker records which instance (by index) handled which message,
// so dispatch policies can be asserted against.
type countingWorker struct {
	id int
	mu *sync.Mutex
	hits *[]int
}

func (w *countingWorker) PreStart(context.Context) error { return nil }

func (w *countingWorker) Receive(ctx *ReceiveContext) {
	w.mu.Lock()
	*w.hits = append(*w.hits, w.id)
	w.mu.Unlock()
	if ctx.IsRequest() {
		ctx.Response(w.id)
	}
}

func (w *countingWorker) PostStop(context.Context) error { return nil }

func newCountingFactory(mu *sync.Mutex, hits *[]int) (PoolFactory, *int) {
	next := 0
	factory := func() Actor {
		w := &countingWorker{id: next, mu: mu, hits: hits}
		next++
		return w
	}
	return factory, &next
}

func spawnPool(t *testing.T, sys *ActorSystem, name string, size int, policy Policy, factory PoolFactory) *PID {
	t.Helper()
	pool, err := NewPool(size, factory, policy)
	require.NoError(t, err)
	pid, err := sys.Spawn(context.Background(), name, pool)
	require.NoError(t, err)
	return pid
}

func TestPoolRoundRobinDistributesEvenly(t *testing.T) {
	sys := newTestSystem(t)
	var mu sync.Mutex
	var hits []int
	factory, _ := newCountingFactory(&mu, &hits)

	pool := spawnPool(t, sys, "rr-pool", 3, RoundRobin, factory)

	for i := 0; i < 9; i++ {
		require.NoError(t, pool.Tell("work"))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(hits) == 9
	}, time.Second, time.Millisecond)

	mu.Lock()
	counts := map[int]int{}
	for _, h := range hits {
		counts[h]++
	}
	mu.Unlock()
	require.Len(t, counts, 3)
	for _, c := range counts {
		require.Equal(t, 3, c)
	}
}

func TestPoolBroadcastReachesAllWorkers(t *testing.T) {
	sys := newTestSystem(t)
	var mu sync.Mutex
	var hits []int
	factory, _ := newCountingFactory(&mu, &hits)

	pool := spawnPool(t, sys, "bcast-pool", 4, Broadcast, factory)
	require.NoError(t, pool.Tell("everyone"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(hits) == 4
	}, time.Second, time.Millisecond)
}

func TestPoolRandomReachesSomeWorker(t *testing.T) {
	sys := newTestSystem(t)
	var mu sync.Mutex
	var hits []int
	factory, _ := newCountingFactory(&mu, &hits)

	pool := spawnPool(t, sys, "rand-pool", 5, Random, factory)
	for i := 0; i < 20; i++ {
		require.NoError(t, pool.Tell("work"))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(hits) == 20
	}, time.Second, time.Millisecond)
}

func TestPoolGetReturnsCurrentWorkers(t *testing.T) {
	sys := newTestSystem(t)
	var mu sync.Mutex
	var hits []int
	factory, _ := newCountingFactory(&mu, &hits)

	pool := spawnPool(t, sys, "get-pool", 2, RoundRobin, factory)

	reply, err := pool.Ask(context.Background(), PoolGet{}, time.Second)
	require.NoError(t, err)
	workers, ok := reply.(PoolWorkers)
	require.True(t, ok)
	require.Len(t, workers.Workers, 2)
}

func TestPoolPutGrowsMembership(t *testing.T) {
	sys := newTestSystem(t)
	var mu sync.Mutex
	var hits []int
	factory, _ := newCountingFactory(&mu, &hits)

	pool := spawnPool(t, sys, "put-pool", 1, RoundRobin, factory)
	extra, err := sys.Spawn(context.Background(), "extra-worker", &countingWorker{id: 99, mu: &mu, hits: &hits})
	require.NoError(t, err)

	require.NoError(t, pool.Tell(PoolPut{Worker: extra}))

	require.Eventually(t, func() bool {
		reply, err := pool.Ask(context.Background(), PoolGet{}, time.Second)
		return err == nil && len(reply.(PoolWorkers).Workers) == 2
	}, time.Second, time.Millisecond)
}

func TestPoolDeleteShrinksMembership(t *testing.T) {
	sys := newTestSystem(t)
	var mu sync.Mutex
	var hits []int
	factory, _ := newCountingFactory(&mu, &hits)

	pool := spawnPool(t, sys, "delete-pool", 2, RoundRobin, factory)
	reply, err := pool.Ask(context.Background(), PoolGet{}, time.Second)
	require.NoError(t, err)
	victim := reply.(PoolWorkers).Workers[0]

	require.NoError(t, pool.Tell(PoolDelete{Worker: victim}))

	require.Eventually(t, func() bool {
		reply, err := pool.Ask(context.Background(), PoolGet{}, time.Second)
		return err == nil && len(reply.(PoolWorkers).Workers) == 1
	}, time.Second, time.Millisecond)
}

func TestPoolExitsWhenLastWorkerDies(t *testing.T) {
	sys := newTestSystem(t)
	var mu sync.Mutex
	var hits []int
	factory, _ := newCountingFactory(&mu, &hits)

	pool := spawnPool(t, sys, "drain-pool", 1, RoundRobin, factory)
	reply, err := pool.Ask(context.Background(), PoolGet{}, time.Second)
	require.NoError(t, err)
	worker := reply.(PoolWorkers).Workers[0]

	require.NoError(t, worker.Stop(context.Background()))

	require.Eventually(t, func() bool {
		return !pool.IsRunning()
	}, time.Second, time.Millisecond)
}

func TestPoolEmptyPoolAnswersRequestWithEmptyReply(t *testing.T) {
	sys := newTestSystem(t)
	factory, _ := newCountingFactory(&sync.Mutex{}, &[]int{})

	pool := spawnPool(t, sys, "empty-pool", 0, RoundRobin, factory)

	reply, err := pool.Ask(context.Background(), "anyone-home", time.Second)
	require.NoError(t, err)
	require.IsType(t, PoolEmpty{}, reply)
}

func TestPoolEmptyPoolDropsFireAndForget(t *testing.T) {
	sys := newTestSystem(t)
	factory, _ := newCountingFactory(&sync.Mutex{}, &[]int{})

	pool := spawnPool(t, sys, "empty-pool-2", 0, RoundRobin, factory)
	require.NoError(t, pool.Tell("nobody-home"))

	require.Never(t, func() bool {
		return len(sys.DeadLetters()) > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestPoolExitForwardsToEveryWorker(t *testing.T) {
	sys := newTestSystem(t)
	var mu sync.Mutex
	var hits []int
	factory, _ := newCountingFactory(&mu, &hits)

	pool := spawnPool(t, sys, "exit-pool", 3, RoundRobin, factory)
	reply, err := pool.Ask(context.Background(), PoolGet{}, time.Second)
	require.NoError(t, err)
	workers := reply.(PoolWorkers).Workers
	require.Len(t, workers, 3)

	require.NoError(t, pool.SendExit(coreerrors.ReasonNormal))

	require.Eventually(t, func() bool {
		for _, w := range workers {
			if w.IsRunning() {
				return false
			}
		}
		return !pool.IsRunning()
	}, time.Second, time.Millisecond)
}

func TestPoolDeleteAllStopsEveryWorker(t *testing.T) {
	sys := newTestSystem(t)
	var mu sync.Mutex
	var hits []int
	factory, _ := newCountingFactory(&mu, &hits)

	pool := spawnPool(t, sys, "deleteall-pool", 3, RoundRobin, factory)
	require.NoError(t, pool.Tell(PoolDeleteAll{}))

	require.Eventually(t, func() bool {
		reply, err := pool.Ask(context.Background(), PoolGet{}, time.Second)
		return err == nil && len(reply.(PoolWorkers).Workers) == 0
	}, time.Second, time.Millisecond)
}
