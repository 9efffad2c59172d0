// Package obstacle provides static collision geometry for the flock and a
// ray caster answering the flock's nearest-hit queries.
//
// Geometry is kept in float32 math32 types, the way scene graphs store it;
// the flock core only ever sees flock.Obstacle handles and flock.Hit results.
package obstacle

import (
	"errors"
	"fmt"

	"cogentcore.org/core/math32"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

var (
	// ErrUnsupportedObstacle is returned for handles the Raycaster cannot walk.
	ErrUnsupportedObstacle = errors.New("unsupported obstacle")
	// ErrDegenerateTriangle is returned for zero-area mesh triangles.
	ErrDegenerateTriangle = errors.New("degenerate triangle")
)

// Box is an axis aligned solid block.
type Box struct {
	Name   string
	Bounds math32.Box3
}

// NewBox returns a box spanning min to max.
func NewBox(name string, min, max geometry.Vector3D) *Box {
	return &Box{Name: name, Bounds: math32.Box3{Min: toVec3(min), Max: toVec3(max)}}
}

// Mesh is a triangle soup, hit from either side.
type Mesh struct {
	Name      string
	triangles []math32.Triangle
	bbox      math32.Box3
}

// NewMesh computes the bounding box once, meshes are immutable afterwards so
// concurrent queries need no locking.
func NewMesh(name string, triangles []math32.Triangle) *Mesh {
	m := &Mesh{Name: name, triangles: triangles}
	m.bbox.SetEmpty()
	for _, t := range triangles {
		m.bbox.ExpandByPoint(t.A)
		m.bbox.ExpandByPoint(t.B)
		m.bbox.ExpandByPoint(t.C)
	}
	return m
}

// Triangles returns the mesh faces.
func (m *Mesh) Triangles() []math32.Triangle {
	return m.triangles
}

// BBox returns the box enclosing every face.
func (m *Mesh) BBox() math32.Box3 {
	return m.bbox
}

// Group is a composite obstacle, its box is the union of its children and is
// used to skip whole subtrees.
type Group struct {
	Name     string
	children []flock.Obstacle
	bbox     math32.Box3
}

// NewGroup builds a group from already built children.
// Children may be *Box, *Mesh or *Group.
func NewGroup(name string, children ...flock.Obstacle) (*Group, error) {
	g := &Group{Name: name, children: children}
	g.bbox.SetEmpty()
	for i, c := range children {
		bb, err := boundsOf(c)
		if err != nil {
			return nil, fmt.Errorf("group %q child %d: %w", name, i, err)
		}
		if !bb.IsEmpty() {
			g.bbox.ExpandByBox(bb)
		}
	}
	return g, nil
}

// Children returns the direct children.
func (g *Group) Children() []flock.Obstacle {
	return g.children
}

// BBox returns the union of the children boxes.
func (g *Group) BBox() math32.Box3 {
	return g.bbox
}

func boundsOf(o flock.Obstacle) (math32.Box3, error) {
	switch ob := o.(type) {
	case *Box:
		return ob.Bounds, nil
	case *Mesh:
		return ob.bbox, nil
	case *Group:
		return ob.bbox, nil
	}
	return math32.Box3{}, fmt.Errorf("%w: %T", ErrUnsupportedObstacle, o)
}

// Static is a fixed obstacle set.
type Static struct {
	obstacles []flock.Obstacle
}

// NewStatic returns a provider always handing out obstacles.
func NewStatic(obstacles ...flock.Obstacle) *Static {
	return &Static{obstacles: obstacles}
}

func (s *Static) Obstacles() []flock.Obstacle {
	return s.obstacles
}

func toVec3(v geometry.Vector3D) math32.Vector3 {
	return math32.Vec3(float32(v.X), float32(v.Y), float32(v.Z))
}

func fromVec3(v math32.Vector3) geometry.Vector3D {
	return geometry.Vector3D{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}
