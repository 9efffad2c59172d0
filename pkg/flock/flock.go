package flock

import (
	"math/rand/v2"
	"time"

	"github.com/tochemey/goakt/v3/log"
	"golang.org/x/sync/errgroup"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Stats are cumulative counters of a Flock.
type Stats struct {
	Ticks            uint64        `json:"ticks"`
	SimulatedTime    time.Duration `json:"simulatedTime"`
	QueryFailures    uint64        `json:"queryFailures"`
	LastTickDuration time.Duration `json:"lastTickDuration"`
}

// Flock owns the ordered set of agents and advances it one tick at a time.
// A Flock is not safe for concurrent use; Tick parallelises internally.
type Flock struct {
	agents []*Agent
	bounds Bounds
	tuning Tuning
	seed   uint64

	obstacles    ObstacleProvider
	query        IntersectionQuery
	neighborhood Neighborhood
	workers      int
	logger       log.Logger

	deltas []geometry.Vector3D
	errs   []error
	stats  Stats
}

// Option configures a Flock.
type Option func(*Flock)

// WithTuning sets the tuning shared by every agent.
func WithTuning(t Tuning) Option {
	return func(f *Flock) { f.tuning = t }
}

// WithSeed makes spawning reproducible.
func WithSeed(seed uint64) Option {
	return func(f *Flock) { f.seed = seed }
}

// WithObstacles enables obstacle avoidance.
func WithObstacles(provider ObstacleProvider, query IntersectionQuery) Option {
	return func(f *Flock) {
		f.obstacles = provider
		f.query = query
	}
}

// WithNeighborhood replaces the default brute force neighbor scan.
func WithNeighborhood(n Neighborhood) Option {
	return func(f *Flock) {
		if n != nil {
			f.neighborhood = n
		}
	}
}

// WithWorkers sets how many goroutines compute forces; 0 or 1 keeps the tick
// single threaded.
func WithWorkers(n int) Option {
	return func(f *Flock) { f.workers = n }
}

// WithLogger sets the logger, discarded by default.
func WithLogger(l log.Logger) Option {
	return func(f *Flock) {
		if l != nil {
			f.logger = l
		}
	}
}

// New spawns count agents inside bounds.
func New(bounds Bounds, count int, opts ...Option) *Flock {
	f := &Flock{
		bounds:       bounds,
		tuning:       DefaultTuning(),
		neighborhood: NewBruteForce(),
		logger:       log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(f)
	}
	if count < 0 {
		count = 0
	}
	f.spawn(count, f.seed)
	return f
}

func (f *Flock) spawn(count int, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	f.agents = make([]*Agent, count)
	for i := range f.agents {
		f.agents[i] = NewAgent(i, f.bounds, f.tuning, rng)
	}
	f.deltas = make([]geometry.Vector3D, count)
	f.errs = make([]error, count)
}

// Reset respawns the same number of agents from a new seed and clears the stats.
func (f *Flock) Reset(seed uint64) {
	f.seed = seed
	f.spawn(len(f.agents), seed)
	f.stats = Stats{}
}

// Tick advances the simulation by one step.
// Forces are computed for every agent against the state of the previous tick,
// then committed. delta only accounts simulated time, integration is one step
// per tick.
func (f *Flock) Tick(delta time.Duration) {
	start := time.Now()

	f.computeForces()
	f.commit()

	f.stats.Ticks++
	f.stats.SimulatedTime += delta
	f.stats.LastTickDuration = time.Since(start)
}

// computeForces is the read phase: it never mutates an agent.
func (f *Flock) computeForces() {
	if len(f.agents) == 0 {
		return
	}
	f.neighborhood.Rebuild(f.agents)

	var obstacles []Obstacle
	if f.obstacles != nil {
		obstacles = f.obstacles.Obstacles()
	}

	if f.workers <= 1 {
		for i := range f.agents {
			f.computeAgent(i, obstacles)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(f.workers)
	for i := range f.agents {
		g.Go(func() error {
			f.computeAgent(i, obstacles)
			return nil
		})
	}
	// barrier: no agent moves before every force is known
	_ = g.Wait()
}

func (f *Flock) computeAgent(i int, obstacles []Obstacle) {
	me := f.agents[i]
	steering := ComputeSteering(me, f.neighborhood.Candidates(me))
	avoidance, err := computeAvoidance(me, obstacles, f.query)
	f.deltas[i] = steering.Add(avoidance)
	f.errs[i] = err
}

// commit is the write phase: integrate and constrain each agent.
func (f *Flock) commit() {
	for i, a := range f.agents {
		if err := f.errs[i]; err != nil {
			f.stats.QueryFailures++
			f.logger.Debugf("avoidance skipped: %v", err)
			f.errs[i] = nil
		}
		a.Acceleration = a.Acceleration.Add(f.deltas[i])
		integrate(a)
		Constrain(a, f.bounds)
	}
}

// integrate moves with the current velocity, then accelerates.
func integrate(a *Agent) {
	a.Position = a.Position.Add(a.Velocity)
	a.Velocity = a.Velocity.Add(a.Acceleration).ClampLen(a.tuning.MaxSpeed)
	a.Acceleration = geometry.Zero
}

// Len is the number of agents.
func (f *Flock) Len() int {
	return len(f.agents)
}

// Snapshot copies the renderer-facing state of every agent.
func (f *Flock) Snapshot() []AgentState {
	states := make([]AgentState, len(f.agents))
	for i, a := range f.agents {
		states[i] = a.State()
	}
	return states
}

// Bounds returns the volume the flock lives in.
func (f *Flock) Bounds() Bounds {
	return f.bounds
}

// Tuning returns the tuning agents are spawned with.
func (f *Flock) Tuning() Tuning {
	return f.tuning
}

// Stats returns the cumulative counters.
func (f *Flock) Stats() Stats {
	return f.stats
}
