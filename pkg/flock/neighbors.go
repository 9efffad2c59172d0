package flock

import (
	"cmp"
	"slices"

	"github.com/dhconnelly/rtreego"
)

// Neighborhood narrows the candidate set for the flocking rules.
// Rebuild is called once per tick before any Candidates call, Candidates may
// then be called concurrently. The distance test of SteeringForces still
// decides who is a neighbor, an index only has to return a superset.
type Neighborhood interface {
	Rebuild(agents []*Agent)
	Candidates(me *Agent) []*Agent
}

// BruteForce returns the whole flock as candidates, the O(n²) scan that is
// fine for tens to low hundreds of boids.
type BruteForce struct {
	agents []*Agent
}

// NewBruteForce returns an empty BruteForce neighborhood.
func NewBruteForce() *BruteForce {
	return &BruteForce{}
}

func (b *BruteForce) Rebuild(agents []*Agent) {
	b.agents = agents
}

func (b *BruteForce) Candidates(*Agent) []*Agent {
	return b.agents
}

// R-tree node fan-out.
const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
	pointTolerance   = 0.005
)

// RTreeIndex is a 3D R-tree over boid positions, rebuilt every tick.
type RTreeIndex struct {
	tree *rtreego.Rtree
}

// NewRTreeIndex returns an empty index.
func NewRTreeIndex() *RTreeIndex {
	return &RTreeIndex{tree: rtreego.NewTree(3, rtreeMinChildren, rtreeMaxChildren)}
}

// indexedAgent adapts an Agent to rtreego.Spatial.
type indexedAgent struct {
	agent *Agent
	rect  rtreego.Rect
}

func (ia *indexedAgent) Bounds() rtreego.Rect {
	return ia.rect
}

func (r *RTreeIndex) Rebuild(agents []*Agent) {
	spatials := make([]rtreego.Spatial, len(agents))
	for i, a := range agents {
		p := rtreego.Point{a.Position.X, a.Position.Y, a.Position.Z}
		spatials[i] = &indexedAgent{agent: a, rect: p.ToRect(pointTolerance)}
	}
	// bulk loading is faster than inserting one by one
	r.tree = rtreego.NewTree(3, rtreeMinChildren, rtreeMaxChildren, spatials...)
}

func (r *RTreeIndex) Candidates(me *Agent) []*Agent {
	radius := me.tuning.PerceptionRadius
	if radius <= 0 {
		return nil
	}
	corner := rtreego.Point{
		me.Position.X - radius,
		me.Position.Y - radius,
		me.Position.Z - radius,
	}
	side := 2 * radius
	bb, err := rtreego.NewRect(corner, []float64{side, side, side})
	if err != nil {
		return nil
	}

	found := r.tree.SearchIntersect(bb)
	candidates := make([]*Agent, 0, len(found))
	for _, s := range found {
		candidates = append(candidates, s.(*indexedAgent).agent)
	}
	// flock order, so sums match the brute force scan bit for bit
	slices.SortFunc(candidates, func(a, b *Agent) int { return cmp.Compare(a.ID, b.ID) })
	return candidates
}
