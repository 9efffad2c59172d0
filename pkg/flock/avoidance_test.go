package flock

import (
	"errors"
	"testing"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// fakeQuery records the last ray and answers with a canned hit.
type fakeQuery struct {
	hit   Hit
	ok    bool
	err   error
	calls int
	ray   Ray
}

func (q *fakeQuery) Nearest(ray Ray, _ []Obstacle) (Hit, bool, error) {
	q.calls++
	q.ray = ray
	return q.hit, q.ok, q.err
}

var someObstacles = []Obstacle{"rock"}

func TestComputeAvoidance_NoOp(t *testing.T) {
	moving := newTestAgent(0, geometry.Vector3D{Y: 5}, geometry.Vector3D{X: 0.1})
	still := newTestAgent(1, geometry.Vector3D{Y: 5}, geometry.Vector3D{})
	hit := Hit{Distance: 1, Normal: geometry.Vector3D{X: -1}}

	tests := []struct {
		name      string
		agent     *Agent
		obstacles []Obstacle
		query     IntersectionQuery
	}{
		{"no obstacles", moving, nil, &fakeQuery{hit: hit, ok: true}},
		{"empty obstacles", moving, []Obstacle{}, &fakeQuery{hit: hit, ok: true}},
		{"zero velocity", still, someObstacles, &fakeQuery{hit: hit, ok: true}},
		{"nil query", moving, someObstacles, nil},
		{"no hit", moving, someObstacles, &fakeQuery{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeAvoidance(tt.agent, tt.obstacles, tt.query); !got.IsZero() {
				t.Errorf("ComputeAvoidance = %s; want zero", got)
			}
		})
	}
}

func TestComputeAvoidance_SkipsQueryWhenStill(t *testing.T) {
	q := &fakeQuery{ok: true, hit: Hit{Normal: geometry.Vector3D{X: 1}}}
	ComputeAvoidance(newTestAgent(0, geometry.Vector3D{}, geometry.Vector3D{}), someObstacles, q)
	ComputeAvoidance(newTestAgent(0, geometry.Vector3D{}, geometry.Vector3D{X: 1}), nil, q)
	if q.calls != 0 {
		t.Errorf("query called %d times; want 0", q.calls)
	}
}

func TestComputeAvoidance_RayAlongVelocity(t *testing.T) {
	me := newTestAgent(0, geometry.Vector3D{X: 1, Y: 5, Z: 2}, geometry.Vector3D{X: 0.03, Z: 0.04})
	q := &fakeQuery{}
	ComputeAvoidance(me, someObstacles, q)

	if q.calls != 1 {
		t.Fatalf("query called %d times; want 1", q.calls)
	}
	if q.ray.Origin != me.Position {
		t.Errorf("ray origin = %s; want %s", q.ray.Origin, me.Position)
	}
	if !q.ray.Direction.Eq(geometry.Vector3D{X: 0.6, Z: 0.8}) {
		t.Errorf("ray direction = %s; want (0.6, 0, 0.8)", q.ray.Direction)
	}
	if q.ray.Near != 0 || q.ray.Far != me.tuning.AvoidanceRadius {
		t.Errorf("ray window = [%f, %f]; want [0, %f]", q.ray.Near, q.ray.Far, me.tuning.AvoidanceRadius)
	}
}

func TestComputeAvoidance_Weight(t *testing.T) {
	tuning := DefaultTuning()
	normal := geometry.Vector3D{Z: -1}
	maxPush := tuning.MaxForce * AvoidancePriority

	tests := []struct {
		name     string
		distance float64
		want     geometry.Vector3D
	}{
		{"touching", 0, normal.Mul(maxPush)},
		{"halfway", tuning.AvoidanceRadius / 2, normal.Mul(maxPush / 2)},
		{"at the radius", tuning.AvoidanceRadius, geometry.Zero},
		{"beyond the radius", tuning.AvoidanceRadius * 2, geometry.Zero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			me := newTestAgent(0, geometry.Vector3D{Y: 5}, geometry.Vector3D{Z: 0.1})
			q := &fakeQuery{ok: true, hit: Hit{Distance: tt.distance, Normal: normal}}
			if got := ComputeAvoidance(me, someObstacles, q); !got.Eq(tt.want) {
				t.Errorf("ComputeAvoidance = %s; want %s", got, tt.want)
			}
		})
	}
}

func TestAvoidanceWeight(t *testing.T) {
	if w := avoidanceWeight(0, 4); w != 1 {
		t.Errorf("weight at 0 = %f; want 1", w)
	}
	if w := avoidanceWeight(4, 4); w != 0 {
		t.Errorf("weight at radius = %f; want 0", w)
	}
	if w := avoidanceWeight(1, 4); w != 0.75 {
		t.Errorf("weight at 1/4 = %f; want 0.75", w)
	}
}

func TestComputeAvoidance_NotClampedToMaxForce(t *testing.T) {
	me := newTestAgent(0, geometry.Vector3D{Y: 5}, geometry.Vector3D{X: 0.1})
	q := &fakeQuery{ok: true, hit: Hit{Distance: 0.4, Normal: geometry.Vector3D{X: -1}}}
	got := ComputeAvoidance(me, someObstacles, q)
	if got.Len() <= me.tuning.MaxForce {
		t.Errorf("avoidance magnitude %f should exceed MaxForce %f near a wall", got.Len(), me.tuning.MaxForce)
	}
}

func TestComputeAvoidance_QueryErrorIsNoHit(t *testing.T) {
	boom := errors.New("malformed geometry")
	me := newTestAgent(3, geometry.Vector3D{Y: 5}, geometry.Vector3D{X: 0.1})
	q := &fakeQuery{ok: true, hit: Hit{Normal: geometry.Vector3D{X: -1}}, err: boom}

	if got := ComputeAvoidance(me, someObstacles, q); !got.IsZero() {
		t.Errorf("ComputeAvoidance = %s; want zero on query error", got)
	}
	delta, err := computeAvoidance(me, someObstacles, q)
	if !delta.IsZero() {
		t.Errorf("computeAvoidance delta = %s; want zero", delta)
	}
	if !errors.Is(err, boom) {
		t.Errorf("computeAvoidance err = %v; want wrapped %v", err, boom)
	}
}
