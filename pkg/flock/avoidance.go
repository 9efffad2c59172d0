package flock

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// AvoidancePriority multiplies MaxForce for the avoidance push so it can
// override flocking close to a wall. The result is intentionally not clamped.
const AvoidancePriority = 10.0

// Obstacle is an opaque geometry handle. The core only passes it to an
// IntersectionQuery.
type Obstacle any

// Ray is a bounded query ray. Direction is unit length, hits are only
// reported for distances in [Near, Far].
type Ray struct {
	Origin    geometry.Vector3D
	Direction geometry.Vector3D
	Near      float64
	Far       float64
}

// Hit is the nearest intersection along a Ray.
type Hit struct {
	Distance float64
	Normal   geometry.Vector3D // outward surface normal
}

// IntersectionQuery finds the nearest hit of ray against obstacles.
// Implementations must descend into composite obstacles.
type IntersectionQuery interface {
	Nearest(ray Ray, obstacles []Obstacle) (Hit, bool, error)
}

// ObstacleProvider supplies the current collidable geometry, possibly none.
type ObstacleProvider interface {
	Obstacles() []Obstacle
}

// ComputeAvoidance returns the obstacle avoidance delta of me.
// A failing query counts as no hit.
func ComputeAvoidance(me *Agent, obstacles []Obstacle, query IntersectionQuery) geometry.Vector3D {
	delta, _ := computeAvoidance(me, obstacles, query)
	return delta
}

// computeAvoidance is ComputeAvoidance that also hands back the swallowed
// query error so the Flock can log it.
func computeAvoidance(me *Agent, obstacles []Obstacle, query IntersectionQuery) (geometry.Vector3D, error) {
	if len(obstacles) == 0 || query == nil || me.Velocity.IsZero() {
		return geometry.Zero, nil
	}
	radius := me.tuning.AvoidanceRadius
	if radius <= 0 {
		return geometry.Zero, nil
	}

	ray := Ray{
		Origin:    me.Position,
		Direction: me.Velocity.Normalize(),
		Near:      0,
		Far:       radius,
	}
	hit, ok, err := query.Nearest(ray, obstacles)
	if err != nil {
		return geometry.Zero, fmt.Errorf("obstacle query for agent %d at %s: %w", me.ID, me.Position, err)
	}
	if !ok {
		return geometry.Zero, nil
	}

	return hit.Normal.Mul(me.tuning.MaxForce * avoidanceWeight(hit.Distance, radius) * AvoidancePriority), nil
}

// avoidanceWeight falls off linearly from 1 at the agent to 0 at radius.
func avoidanceWeight(distance, radius float64) float64 {
	w := 1 - distance/radius
	switch {
	case w < 0:
		return 0
	case w > 1:
		return 1
	}
	return w
}
