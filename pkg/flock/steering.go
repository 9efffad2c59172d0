package flock

import (
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Rule weights. Separation keeps boids from colliding, cohesion shapes the
// school. Changing them changes the emergent flock, not just the speed.
const (
	SeparationWeight = 1.5
	AlignmentWeight  = 1.0
	CohesionWeight   = 2.0
)

// Forces are the three steering contributions for one agent, unweighted.
// Each one is clamped to the agent MaxForce.
type Forces struct {
	Separation geometry.Vector3D
	Alignment  geometry.Vector3D
	Cohesion   geometry.Vector3D
	Neighbors  int
}

// Weighted returns the acceleration delta: the weighted sum of the rules.
func (f Forces) Weighted() geometry.Vector3D {
	return f.Separation.Mul(SeparationWeight).
		Add(f.Alignment.Mul(AlignmentWeight)).
		Add(f.Cohesion.Mul(CohesionWeight))
}

// ComputeSteering returns the flocking acceleration delta of me against flock.
// The caller adds it to the agent acceleration.
func ComputeSteering(me *Agent, flock []*Agent) geometry.Vector3D {
	return SteeringForces(me, flock).Weighted()
}

// SteeringForces scans flock for neighbors of me and returns the three rules.
// flock may contain me, it is skipped since its distance is zero.
func SteeringForces(me *Agent, flock []*Agent) Forces {
	var (
		separation geometry.Vector3D
		alignment  geometry.Vector3D
		cohesion   geometry.Vector3D
		total      int
	)
	radiusSq := me.tuning.PerceptionRadius * me.tuning.PerceptionRadius

	for _, other := range flock {
		if other == me {
			continue
		}
		dSq := me.Position.DistanceSquaredTo(other.Position)
		if dSq == 0 || dSq >= radiusSq {
			continue
		}
		// repulsion falls off with the squared distance
		separation = separation.Add(me.Position.Sub(other.Position).Mul(1 / dSq))
		alignment = alignment.Add(other.Velocity)
		cohesion = cohesion.Add(other.Position)
		total++
	}

	if total == 0 {
		return Forces{}
	}

	n := 1 / float64(total)
	f := Forces{Neighbors: total}

	separation = separation.Mul(n)
	if separation.LenSqr() > 0 {
		f.Separation = me.steer(separation)
	}
	f.Alignment = me.steer(alignment.Mul(n))
	f.Cohesion = me.steer(cohesion.Mul(n).Sub(me.Position))
	return f
}

// steer turns a desired direction into a steering force: full speed along
// desired, minus the current velocity, clamped to MaxForce.
func (a *Agent) steer(desired geometry.Vector3D) geometry.Vector3D {
	return desired.SetLen(a.tuning.MaxSpeed).
		Sub(a.Velocity).
		ClampLen(a.tuning.MaxForce)
}
