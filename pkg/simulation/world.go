package simulation

import (
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
)

// WorldSnapshot is what the viewer draws, a copy detached from the flock.
type WorldSnapshot struct {
	Agents []flock.AgentState
	Tick   uint64
	Stats  flock.Stats
}

// TickMessage asks the world for one simulation step of delta.
func TickMessage(delta time.Duration) *durationpb.Duration {
	return durationpb.New(delta)
}

// ResetMessage asks the world to respawn the flock from the next seed.
func ResetMessage() *emptypb.Empty {
	return &emptypb.Empty{}
}

// WorldActor owns the authoritative flock. The mailbox serialises ticks and
// resets, so the flock itself needs no locking.
type WorldActor struct {
	flock *flock.Flock
	seed  uint64
	// Communication with UI
	snapshotCh chan<- *WorldSnapshot
	// --- Benchmark Stats ---
	tickCount   int
	tickTime    time.Duration
	dropped     int
	lastLogTime time.Time
}

var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor wraps an already built flock; seed is the one it was spawned
// from. snapshotCh may be nil when nobody watches.
func NewWorldActor(snapshotCh chan<- *WorldSnapshot, f *flock.Flock, seed uint64) *WorldActor {
	return &WorldActor{
		flock:       f,
		seed:        seed,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is starting with %d boids", w.flock.Len())
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		b := w.flock.Bounds()
		ctx.Logger().Infof("World started: %d boids in %gx%gx%g", w.flock.Len(), b.Width, b.Height, b.Depth)
		w.pushSnapshot()

	case *durationpb.Duration:
		if err := msg.CheckValid(); err != nil {
			ctx.Logger().Warnf("ignoring tick: %v", err)
			return
		}
		w.step(msg.AsDuration())
		w.logBenchmarks(ctx)
		w.pushSnapshot()

	case *emptypb.Empty:
		w.seed++
		w.flock.Reset(w.seed)
		ctx.Logger().Infof("World reset with seed %d", w.seed)
		w.pushSnapshot()

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) step(delta time.Duration) {
	w.flock.Tick(delta)
	w.tickCount++
	w.tickTime += w.flock.Stats().LastTickDuration
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) < time.Second {
		return
	}
	var avg time.Duration
	if w.tickCount > 0 {
		avg = w.tickTime / time.Duration(w.tickCount)
	}
	stats := w.flock.Stats()
	ctx.Logger().Infof("📊 TICK RATE: %d/sec (avg %s) | Boids: %d | Dropped frames: %d | Query failures: %d",
		w.tickCount, avg, w.flock.Len(), w.dropped, stats.QueryFailures)
	w.tickCount = 0
	w.tickTime = 0
	w.dropped = 0
	w.lastLogTime = time.Now()
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- w.buildSnapshot():
	default:
		// UI busy, skip frame
		w.dropped++
	}
}

func (w *WorldActor) buildSnapshot() *WorldSnapshot {
	stats := w.flock.Stats()
	return &WorldSnapshot{
		Agents: w.flock.Snapshot(),
		Tick:   stats.Ticks,
		Stats:  stats,
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("World is shutdown...")
	return nil
}
