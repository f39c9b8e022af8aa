package actor

// SpawnOption configures a single Spawn call, as opposed to Option, which
// configures the whole ActorSystem.
type SpawnOption interface {
	applySpawn(pid *PID)
}

// enforce compilation error
var _ SpawnOption = spawnOptionFunc(nil)

type spawnOptionFunc func(*PID)

func (f spawnOptionFunc) applySpawn(pid *PID) { f(pid) }

// WithMailbox overrides the default LifoMailbox for this one actor, for
// example to use a BoundedMailbox where backpressure is preferable to an
// unbounded LIFO inbox.
func WithMailbox(mailbox Mailbox) SpawnOption {
	return spawnOptionFunc(func(pid *PID) { pid.mailbox = mailbox })
}
