package actor

import (
	"context"
	"fmt"
	"sync"

	goset "github.com/deckarep/golang-set/v2"
	"go.uber.org/atomic"

	coreerrors "github.com/drozhkov/actor-framework/errors"
	"github.com/drozhkov/actor-framework/log"
)

// PoolGet requests the pool's current worker list. Send it with Ask.
type PoolGet struct{}

// PoolWorkers is the reply to PoolGet.
type PoolWorkers struct {
	Workers []*PID
}

// PoolPut adds Worker to the pool's dispatch set.
type PoolPut struct {
	Worker *PID
}

// PoolDelete removes Worker from the pool's dispatch set and stops it.
type PoolDelete struct {
	Worker *PID
}

// PoolDeleteAll removes and stops every current worker. The pool itself
// keeps running, now with zero workers, until new ones are put or it is
// stopped.
type PoolDeleteAll struct{}

// PoolEmpty is the reply a request receives when it reaches a pool with no
// workers: enough to close out the request without pretending a worker
// handled it.
type PoolEmpty struct{}

// PoolFactory builds one fresh worker Actor. The pool calls it once per
// initial worker, during PreStart. PoolPut attaches an existing PID and does
// not call the factory.
type PoolFactory func() Actor

// Pool is a supervisor actor that owns a set of worker actors and forwards
// whatever it receives to one or more of them according to its Policy. It
// watches every worker it spawns: a worker's death produces a DownMessage
// the pool's own Receive handles by evicting that worker, and, once no
// workers remain, by stopping itself with ReasonOutOfWorkers.
//
// Pool's own mailbox sees only: PoolGet/PoolPut/PoolDelete/PoolDeleteAll,
// DownMessage from a dead worker, and anything else, which is dispatched to
// the worker set per Policy. This mirrors the control-message-versus-user-
// message split of a classic actor pool's filter function.
type Pool struct {
	system      *ActorSystem
	factory     PoolFactory
	policy      Policy
	dispatch    dispatcher
	initialSize int

	roundRobinIdx atomic.Uint64
	workerSeq     atomic.Uint64

	mu      sync.RWMutex
	workers []*PID
	members goset.Set[*PID]

	self   *PID
	logger log.Logger
}

// enforce compilation error
var _ Actor = (*Pool)(nil)
var _ selfBinder = (*Pool)(nil)
var _ exitHandler = (*Pool)(nil)

// NewPool returns a Pool ready to be spawned with size initial workers
// built by factory, dispatching per policy. size may be zero: an empty
// pool still handles PoolGet and PoolPut, answers an ordinary request with
// PoolEmpty and silently drops an ordinary fire-and-forget message until a
// worker is put. A negative size is rejected.
func NewPool(size int, factory PoolFactory, policy Policy) (*Pool, error) {
	if size < 0 {
		return nil, coreerrors.ErrInvalidPoolSize
	}
	return &Pool{
		factory:     factory,
		policy:      policy,
		dispatch:    dispatcherFor(policy),
		members:     goset.NewThreadUnsafeSet[*PID](),
		initialSize: size,
	}, nil
}

// Policy returns the dispatch policy this pool was constructed with.
func (p *Pool) Policy() Policy { return p.policy }

func (p *Pool) bindSelf(pid *PID) {
	p.self = pid
	p.system = pid.system
	p.logger = pid.system.Logger()
}

// PreStart spawns the pool's initial workers.
func (p *Pool) PreStart(ctx context.Context) error {
	for i := 0; i < p.initialSize; i++ {
		if err := p.spawnWorker(ctx); err != nil {
			return fmt.Errorf("pool prestart: %w", err)
		}
	}
	return nil
}

func (p *Pool) spawnWorker(ctx context.Context) error {
	name := fmt.Sprintf("%s-worker-%d", p.self.address.Name, p.workerSeq.Add(1))
	worker, err := p.system.Spawn(ctx, name, p.factory())
	if err != nil {
		return err
	}
	p.self.Watch(worker)
	p.addWorker(worker)
	return nil
}

func (p *Pool) addWorker(worker *PID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.members.Contains(worker) {
		return
	}
	p.members.Add(worker)
	p.workers = append(p.workers, worker)
}

func (p *Pool) removeWorker(worker *PID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.members.Contains(worker) {
		return
	}
	p.members.Remove(worker)
	for i, w := range p.workers {
		if w == worker {
			p.workers = append(p.workers[:i], p.workers[i+1:]...)
			break
		}
	}
}

func (p *Pool) snapshotWorkers() []*PID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*PID, len(p.workers))
	copy(out, p.workers)
	return out
}

// Receive implements Actor. It is the pool's filter: control messages are
// handled directly, a DownMessage evicts the worker that sent it, and
// anything else is dispatched to the worker set per Policy.
func (p *Pool) Receive(ctx *ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case PoolGet:
		ctx.Response(PoolWorkers{Workers: p.snapshotWorkers()})
	case PoolPut:
		p.self.Watch(msg.Worker)
		p.addWorker(msg.Worker)
	case PoolDelete:
		p.removeWorker(msg.Worker)
		p.self.UnWatch(msg.Worker)
		_ = msg.Worker.Stop(ctx.Context())
	case PoolDeleteAll:
		p.deleteAll(ctx.Context())
	case *DownMessage:
		p.removeWorker(msg.Subject)
		if len(p.snapshotWorkers()) == 0 {
			p.self.stopAsync(coreerrors.ReasonOutOfWorkers)
		}
	default:
		p.route(ctx)
	}
}

// HandleExit implements exitHandler. It forwards the exit to every worker
// present at the moment it arrives, regardless of policy, then stops the
// pool itself with the same reason. Forwarding is fire-and-forget: it does
// not wait for a worker to actually finish draining before the pool does.
func (p *Pool) HandleExit(ctx *ReceiveContext) {
	msg, ok := ctx.Message().(*ExitMessage)
	if !ok {
		return
	}

	workers := p.snapshotWorkers()
	p.mu.Lock()
	p.workers = nil
	p.members = goset.NewThreadUnsafeSet[*PID]()
	p.mu.Unlock()

	for _, w := range workers {
		p.self.UnWatch(w)
		_ = w.enqueueFrom(nil, NewMessageID(), &ExitMessage{Reason: msg.Reason})
	}

	p.self.stopAsync(msg.Reason)
}

// route implements the filter table's last two rows: an empty worker
// vector closes out a pending request with an empty reply and silently
// absorbs anything else, while a non-empty vector falls through to the
// configured Policy.
func (p *Pool) route(ctx *ReceiveContext) {
	workers := p.snapshotWorkers()
	if len(workers) == 0 {
		if ctx.IsRequest() {
			ctx.Response(PoolEmpty{})
		}
		return
	}

	elem := newMailboxElement(ctx.Sender(), ctx.MessageID(), ctx.Message())
	if err := p.dispatch(p, workers, elem); err != nil {
		p.logger.Errorf("pool %s: %s", p.self.address, err)
		ctx.Unhandled()
	}
}

func (p *Pool) deleteAll(ctx context.Context) {
	workers := p.snapshotWorkers()
	p.mu.Lock()
	p.workers = nil
	p.members = goset.NewThreadUnsafeSet[*PID]()
	p.mu.Unlock()

	for _, w := range workers {
		p.self.UnWatch(w)
		_ = w.Stop(ctx)
	}
}

// PostStop stops every remaining worker.
func (p *Pool) PostStop(ctx context.Context) error {
	p.deleteAll(ctx)
	return nil
}
