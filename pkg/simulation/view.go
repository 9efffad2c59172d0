package simulation

import (
	"image/color"
	"math"

	"cogentcore.org/core/math32"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/obstacle"
)

// viewport maps the X/Z plane of the world onto a screen area, looking down
// the Y axis.
type viewport struct {
	left, top float64 // screen position of the world's -X/-Z corner
	scale     float64 // pixels per world unit
	bounds    flock.Bounds
}

// newViewport fits bounds into the w x h area at (x, y), keeping the aspect.
func newViewport(bounds flock.Bounds, x, y, w, h float64) viewport {
	scale := math.Min(w/bounds.Width, h/bounds.Depth)
	return viewport{
		left:   x + (w-bounds.Width*scale)/2,
		top:    y + (h-bounds.Depth*scale)/2,
		scale:  scale,
		bounds: bounds,
	}
}

func (v viewport) project(p geometry.Vector3D) (float64, float64) {
	return v.left + (p.X+v.bounds.Width/2)*v.scale,
		v.top + (p.Z+v.bounds.Depth/2)*v.scale
}

// footprint is the screen rectangle covered by a box seen from above.
func (v viewport) footprint(b math32.Box3) (x, y, w, h float64) {
	x, y = v.project(geometry.Vector3D{X: float64(b.Min.X), Z: float64(b.Min.Z)})
	w = float64(b.Max.X-b.Min.X) * v.scale
	h = float64(b.Max.Z-b.Min.Z) * v.scale
	return x, y, w, h
}

// fishTriangle returns the tip, right and left corners of a fish of the given
// size pointing at angle, in screen space.
func fishTriangle(cx, cy, angle, size float64) [3][2]float64 {
	return [3][2]float64{
		{cx + math.Cos(angle)*size, cy + math.Sin(angle)*size},
		{cx + math.Cos(angle+2.5)*size*0.8, cy + math.Sin(angle+2.5)*size*0.8},
		{cx + math.Cos(angle-2.5)*size*0.8, cy + math.Sin(angle-2.5)*size*0.8},
	}
}

var (
	deepColor    = color.RGBA{R: 20, G: 60, B: 160, A: 255}
	shallowColor = color.RGBA{R: 150, G: 240, B: 255, A: 255}
)

// depthShade colors a fish by altitude, dark near the floor and light near
// the surface.
func depthShade(y, floor, ceiling float64) color.RGBA {
	t := 0.0
	if ceiling > floor {
		t = math.Max(0, math.Min(1, (y-floor)/(ceiling-floor)))
	}
	rgb := rgbVector(deepColor).Lerp(rgbVector(shallowColor), t)
	return color.RGBA{
		R: uint8(math.Round(rgb.X)),
		G: uint8(math.Round(rgb.Y)),
		B: uint8(math.Round(rgb.Z)),
		A: 255,
	}
}

func rgbVector(c color.RGBA) geometry.Vector3D {
	return geometry.Vector3D{X: float64(c.R), Y: float64(c.G), Z: float64(c.B)}
}

// headings remembers the last drawable direction of every fish, a fish that
// stops keeps facing where it went.
type headings []float64

func (h *headings) update(agents []flock.AgentState) {
	if len(*h) != len(agents) {
		*h = make(headings, len(agents))
	}
	for i, a := range agents {
		if dir, ok := a.Heading(); ok && (dir.X != 0 || dir.Z != 0) {
			(*h)[i] = math.Atan2(dir.Z, dir.X)
		}
	}
}

// outline is one obstacle footprint to draw.
type outline struct {
	box  math32.Box3
	mesh bool
}

// outlines flattens the obstacle tree into leaf footprints.
func outlines(root *obstacle.Group) []outline {
	var out []outline
	var walk func(flock.Obstacle)
	walk = func(o flock.Obstacle) {
		switch ob := o.(type) {
		case *obstacle.Group:
			for _, c := range ob.Children() {
				walk(c)
			}
		case *obstacle.Box:
			out = append(out, outline{box: ob.Bounds})
		case *obstacle.Mesh:
			out = append(out, outline{box: ob.BBox(), mesh: true})
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}
