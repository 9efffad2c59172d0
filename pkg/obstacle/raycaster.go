package obstacle

import (
	"fmt"

	"cogentcore.org/core/math32"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
)

var (
	_ flock.IntersectionQuery = (*Raycaster)(nil)
	_ flock.ObstacleProvider  = (*Static)(nil)
)

// Raycaster answers nearest-hit queries against Box, Mesh and Group
// obstacles. It holds no state and is safe for concurrent use.
type Raycaster struct{}

// NewRaycaster returns a Raycaster.
func NewRaycaster() *Raycaster {
	return &Raycaster{}
}

// candidate is a hit in the float32 space of the geometry.
type candidate struct {
	dist   float32
	normal math32.Vector3
}

// Nearest returns the closest hit within [ray.Near, ray.Far].
// Any malformed obstacle aborts the query with an error.
func (r *Raycaster) Nearest(ray flock.Ray, obstacles []flock.Obstacle) (flock.Hit, bool, error) {
	q := query{
		ray:  math32.Ray{Origin: toVec3(ray.Origin), Dir: toVec3(ray.Direction)},
		near: float32(ray.Near),
		far:  float32(ray.Far),
	}
	for _, o := range obstacles {
		if err := q.visit(o); err != nil {
			return flock.Hit{}, false, err
		}
	}
	if !q.found {
		return flock.Hit{}, false, nil
	}
	return flock.Hit{Distance: float64(q.best.dist), Normal: fromVec3(q.best.normal)}, true, nil
}

// query is the state of one Nearest call.
type query struct {
	ray       math32.Ray
	near, far float32
	best      candidate
	found     bool
}

func (q *query) offer(c candidate) {
	if c.dist < q.near || c.dist > q.far {
		return
	}
	if !q.found || c.dist < q.best.dist {
		q.best = c
		q.found = true
	}
}

// reachable prunes boxes that are behind the search window.
func (q *query) reachable(bb math32.Box3) bool {
	if bb.IsEmpty() {
		return false
	}
	if bb.DistanceToPoint(q.ray.Origin) > q.far {
		return false
	}
	if bb.ContainsPoint(q.ray.Origin) {
		return true
	}
	_, ok := q.ray.IntersectBox(bb)
	return ok
}

func (q *query) visit(o flock.Obstacle) error {
	switch ob := o.(type) {
	case *Group:
		if !q.reachable(ob.bbox) {
			return nil
		}
		for _, c := range ob.children {
			if err := q.visit(c); err != nil {
				return fmt.Errorf("group %q: %w", ob.Name, err)
			}
		}
		return nil
	case *Box:
		q.visitBox(ob)
		return nil
	case *Mesh:
		if err := q.visitMesh(ob); err != nil {
			return fmt.Errorf("mesh %q: %w", ob.Name, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %T", ErrUnsupportedObstacle, o)
}

func (q *query) visitBox(b *Box) {
	pt, ok := q.ray.IntersectBox(b.Bounds)
	if !ok {
		return
	}
	q.offer(candidate{
		dist:   pt.Sub(q.ray.Origin).Length(),
		normal: boxNormal(b.Bounds, pt),
	})
}

func (q *query) visitMesh(m *Mesh) error {
	if !q.reachable(m.bbox) {
		return nil
	}
	for i, t := range m.triangles {
		n := math32.Normal(t.A, t.B, t.C)
		if n.LengthSquared() == 0 {
			return fmt.Errorf("%w: face %d", ErrDegenerateTriangle, i)
		}
		pt, ok := q.ray.IntersectTriangle(t.A, t.B, t.C, false)
		if !ok {
			continue
		}
		// two-sided: report the side facing the ray
		if n.Dot(q.ray.Dir) > 0 {
			n = n.MulScalar(-1)
		}
		q.offer(candidate{dist: pt.Sub(q.ray.Origin).Length(), normal: n})
	}
	return nil
}

// boxNormal returns the outward normal of the face closest to pt.
func boxNormal(b math32.Box3, pt math32.Vector3) math32.Vector3 {
	faces := [6]struct {
		gap    float32
		normal math32.Vector3
	}{
		{math32.Abs(pt.X - b.Min.X), math32.Vec3(-1, 0, 0)},
		{math32.Abs(pt.X - b.Max.X), math32.Vec3(1, 0, 0)},
		{math32.Abs(pt.Y - b.Min.Y), math32.Vec3(0, -1, 0)},
		{math32.Abs(pt.Y - b.Max.Y), math32.Vec3(0, 1, 0)},
		{math32.Abs(pt.Z - b.Min.Z), math32.Vec3(0, 0, -1)},
		{math32.Abs(pt.Z - b.Max.Z), math32.Vec3(0, 0, 1)},
	}
	best := 0
	for i := 1; i < len(faces); i++ {
		if faces[i].gap < faces[best].gap {
			best = i
		}
	}
	return faces[best].normal
}
