package obstacle

import (
	"fmt"
	"math"
	"math/rand/v2"

	"cogentcore.org/core/math32"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// ReefConfig describes the procedural seabed.
type ReefConfig struct {
	Rocks          int     `json:"rocks"`
	RockSize       float64 `json:"rockSize"`
	FloorThickness float64 `json:"floorThickness"`
	Pillar         bool    `json:"pillar"`
}

// DefaultReefConfig returns a seabed with a few rocks and a central pillar.
func DefaultReefConfig() ReefConfig {
	return ReefConfig{
		Rocks:          12,
		RockSize:       4,
		FloorThickness: 1,
		Pillar:         true,
	}
}

// Reef builds the seabed: a floor slab just under floorTop, rocks resting on
// it and an optional hexagonal pillar reaching the ceiling.
// The same seed always gives the same reef.
func Reef(cfg ReefConfig, bounds flock.Bounds, floorTop float64, seed uint64) (*Group, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(seed, seed+1))
	halfW, halfD, top := bounds.Width/2, bounds.Depth/2, bounds.Height/2

	var children []flock.Obstacle
	if cfg.FloorThickness > 0 {
		children = append(children, NewBox("floor",
			geometry.Vector3D{X: -halfW, Y: floorTop - cfg.FloorThickness, Z: -halfD},
			geometry.Vector3D{X: halfW, Y: floorTop, Z: halfD},
		))
	}

	rocks := make([]flock.Obstacle, 0, cfg.Rocks)
	for i := 0; i < cfg.Rocks; i++ {
		size := cfg.RockSize * (0.5 + rng.Float64())
		height := size * (0.75 + rng.Float64())
		x := (rng.Float64() - 0.5) * (bounds.Width - size)
		z := (rng.Float64() - 0.5) * (bounds.Depth - size)
		rocks = append(rocks, NewBox(fmt.Sprintf("rock-%02d", i),
			geometry.Vector3D{X: x - size/2, Y: floorTop, Z: z - size/2},
			geometry.Vector3D{X: x + size/2, Y: floorTop + height, Z: z + size/2},
		))
	}
	if len(rocks) > 0 {
		g, err := NewGroup("rocks", rocks...)
		if err != nil {
			return nil, err
		}
		children = append(children, g)
	}

	if cfg.Pillar {
		radius := math.Max(cfg.RockSize/2, 1)
		children = append(children, Prism("pillar", geometry.Vector3D{Y: floorTop}, radius, top-floorTop, 6))
	}

	return NewGroup("reef", children...)
}

// Prism builds the side walls of a vertical regular prism standing on base.
func Prism(name string, base geometry.Vector3D, radius, height float64, sides int) *Mesh {
	if sides < 3 {
		sides = 3
	}
	ring := func(i int, y float64) math32.Vector3 {
		a := 2 * math.Pi * float64(i%sides) / float64(sides)
		return toVec3(geometry.Vector3D{
			X: base.X + radius*math.Cos(a),
			Y: y,
			Z: base.Z + radius*math.Sin(a),
		})
	}
	bottom, top := base.Y, base.Y+height

	tris := make([]math32.Triangle, 0, 2*sides)
	for i := 0; i < sides; i++ {
		b0, b1 := ring(i, bottom), ring(i+1, bottom)
		t0, t1 := ring(i, top), ring(i+1, top)
		tris = append(tris,
			math32.NewTriangle(b0, t0, b1),
			math32.NewTriangle(b1, t0, t1),
		)
	}
	return NewMesh(name, tris)
}
