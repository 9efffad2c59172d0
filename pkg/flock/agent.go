// Package flock is the steering core of the simulation: boid kinematics,
// the separation/alignment/cohesion rules, obstacle avoidance through an
// external ray query, and the boundary policy of the swimming volume.
//
// It is deliberately free of any rendering dependency. Renderers read
// AgentState snapshots, obstacle geometry is reached only through the
// IntersectionQuery interface.
package flock

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// ClusterSize is how many boids share a spawn cluster.
const ClusterSize = 10

// Tuning holds the per-agent constants, fixed at creation.
type Tuning struct {
	MaxSpeed         float64 `json:"maxSpeed"`
	MaxForce         float64 `json:"maxForce"`
	PerceptionRadius float64 `json:"perceptionRadius"` // neighbor sensing range
	AvoidanceRadius  float64 `json:"avoidanceRadius"`  // forward look-ahead for obstacles
	MinHeight        float64 `json:"minHeight"`        // floor of the vertical axis
}

// DefaultTuning returns the reference fish tuning.
func DefaultTuning() Tuning {
	return Tuning{
		MaxSpeed:         0.15,
		MaxForce:         0.003,
		PerceptionRadius: 10.0,
		AvoidanceRadius:  4.0,
		MinHeight:        2.0,
	}
}

// Agent is a single boid.
// A Flock never hands its agents out, callers get AgentState copies from
// Snapshot. Standalone agents fed to ComputeSteering or Constrain are the
// caller's own.
type Agent struct {
	ID           int
	Position     geometry.Vector3D
	Velocity     geometry.Vector3D
	Acceleration geometry.Vector3D

	tuning Tuning
}

// AgentState is the read-only view handed to renderers.
type AgentState struct {
	ID       int               `json:"id"`
	Position geometry.Vector3D `json:"position"`
	Velocity geometry.Vector3D `json:"velocity"`
}

// NewAgent creates the boid with the given index.
// Boids are spawned in clusters of ClusterSize around a center derived from a
// hash of the cluster index, plus a little noise per boid. The initial heading
// is random and mostly horizontal, at a tenth of a unit per tick.
// rng may be nil, the global source is used then.
func NewAgent(index int, bounds Bounds, tuning Tuning, rng *rand.Rand) *Agent {
	random := rand.Float64
	if rng != nil {
		random = rng.Float64
	}

	cluster := float64(index / ClusterSize)
	center := geometry.Vector3D{
		X: math.Sin(cluster*12.9898) * 0.5 * (bounds.Width - 10),
		Y: tuning.MinHeight + math.Abs(math.Sin(cluster))*(bounds.Height/2),
		Z: math.Cos(cluster*78.233) * 0.5 * (bounds.Depth - 10),
	}

	a := &Agent{
		ID: index,
		Position: center.Add(geometry.Vector3D{
			X: (random() - 0.5) * 10.0,
			Y: (random() - 0.5) * 5.0,
			Z: (random() - 0.5) * 10.0,
		}),
		Velocity: geometry.Vector3D{
			X: random() - 0.5,
			Y: (random() - 0.5) * 0.1,
			Z: random() - 0.5,
		}.SetLen(0.1),
		tuning: tuning,
	}
	Constrain(a, bounds)
	return a
}

// Tuning returns the constants the agent was created with.
func (a *Agent) Tuning() Tuning {
	return a.tuning
}

// State returns a copy of the renderer-facing state.
func (a *Agent) State() AgentState {
	return AgentState{ID: a.ID, Position: a.Position, Velocity: a.Velocity}
}

// Heading returns the unit direction of travel.
// ok is false when the boid is nearly still, callers should keep the
// previous orientation then.
func (s AgentState) Heading() (dir geometry.Vector3D, ok bool) {
	if s.Velocity.LenSqr() <= 0.0001 {
		return geometry.Zero, false
	}
	return s.Velocity.Normalize(), true
}
