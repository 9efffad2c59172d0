package obstacle

import (
	"testing"
	"time"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

const tol = 1e-4

var (
	up      = geometry.Vector3D{Y: 1}
	forward = geometry.Vector3D{Z: 1}
)

func rayAt(origin, dir geometry.Vector3D, far float64) flock.Ray {
	return flock.Ray{Origin: origin, Direction: dir, Near: 0, Far: far}
}

func unitBox(name string, center geometry.Vector3D) *Box {
	half := geometry.Vector3D{X: 1, Y: 1, Z: 1}
	return NewBox(name, center.Sub(half), center.Add(half))
}

func TestRaycaster_Box(t *testing.T) {
	rc := NewRaycaster()
	box := unitBox("box", geometry.Vector3D{Z: 5})

	hit, ok, err := rc.Nearest(rayAt(geometry.Vector3D{}, forward, 10), []flock.Obstacle{box})
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 4, hit.Distance, tol)
	assert.True(t, hit.Normal.Eq(geometry.Vector3D{Z: -1}), "normal %s", hit.Normal)
}

func TestRaycaster_BoxFaces(t *testing.T) {
	rc := NewRaycaster()
	box := unitBox("box", geometry.Vector3D{})
	tests := []struct {
		name   string
		origin geometry.Vector3D
		dir    geometry.Vector3D
		normal geometry.Vector3D
	}{
		{"from -X", geometry.Vector3D{X: -3}, geometry.Vector3D{X: 1}, geometry.Vector3D{X: -1}},
		{"from +X", geometry.Vector3D{X: 3}, geometry.Vector3D{X: -1}, geometry.Vector3D{X: 1}},
		{"from above", geometry.Vector3D{Y: 3}, geometry.Vector3D{Y: -1}, up},
		{"from below", geometry.Vector3D{Y: -3}, up, geometry.Vector3D{Y: -1}},
		{"from +Z", geometry.Vector3D{Z: 3}, geometry.Vector3D{Z: -1}, forward},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok, err := rc.Nearest(rayAt(tt.origin, tt.dir, 4), []flock.Obstacle{box})
			require.NoError(t, err)
			require.True(t, ok)
			assert.InDelta(t, 2, hit.Distance, tol)
			assert.True(t, hit.Normal.Eq(tt.normal), "normal %s, want %s", hit.Normal, tt.normal)
		})
	}
}

func TestRaycaster_Window(t *testing.T) {
	rc := NewRaycaster()
	box := unitBox("box", geometry.Vector3D{Z: 5})

	_, ok, err := rc.Nearest(rayAt(geometry.Vector3D{}, forward, 3), []flock.Obstacle{box})
	require.NoError(t, err)
	assert.False(t, ok, "box beyond Far must not be reported")

	_, ok, err = rc.Nearest(rayAt(geometry.Vector3D{}, forward.Mul(-1), 10), []flock.Obstacle{box})
	require.NoError(t, err)
	assert.False(t, ok, "box behind the ray must not be reported")

	_, ok, err = rc.Nearest(rayAt(geometry.Vector3D{}, forward, 10), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRaycaster_NearestWins(t *testing.T) {
	rc := NewRaycaster()
	far := unitBox("far", geometry.Vector3D{Z: 8})
	near := unitBox("near", geometry.Vector3D{Z: 3})

	hit, ok, err := rc.Nearest(rayAt(geometry.Vector3D{}, forward, 10), []flock.Obstacle{far, near})
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 2, hit.Distance, tol)
}

func TestRaycaster_NestedGroups(t *testing.T) {
	rc := NewRaycaster()
	inner, err := NewGroup("inner", unitBox("deep", geometry.Vector3D{Z: 4}))
	require.NoError(t, err)
	side := unitBox("side", geometry.Vector3D{X: 20})
	outer, err := NewGroup("outer", side, inner)
	require.NoError(t, err)

	bb := outer.BBox()
	assert.Equal(t, float32(-1), bb.Min.X)
	assert.Equal(t, float32(21), bb.Max.X)
	assert.Len(t, outer.Children(), 2)

	hit, ok, err := rc.Nearest(rayAt(geometry.Vector3D{}, forward, 10), []flock.Obstacle{outer})
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 3, hit.Distance, tol)
	assert.True(t, hit.Normal.Eq(geometry.Vector3D{Z: -1}))

	// the whole group is out of reach
	_, ok, err = rc.Nearest(rayAt(geometry.Vector3D{Y: 50}, forward, 10), []flock.Obstacle{outer})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRaycaster_MeshTwoSided(t *testing.T) {
	rc := NewRaycaster()
	tri := math32.NewTriangle(math32.Vec3(-1, -1, 5), math32.Vec3(1, -1, 5), math32.Vec3(0, 1, 5))
	mesh := NewMesh("sheet", []math32.Triangle{tri})

	hit, ok, err := rc.Nearest(rayAt(geometry.Vector3D{}, forward, 10), []flock.Obstacle{mesh})
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 5, hit.Distance, tol)
	assert.True(t, hit.Normal.Eq(geometry.Vector3D{Z: -1}), "normal %s should face the ray", hit.Normal)

	hit, ok, err = rc.Nearest(rayAt(geometry.Vector3D{Z: 10}, forward.Mul(-1), 10), []flock.Obstacle{mesh})
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 5, hit.Distance, tol)
	assert.True(t, hit.Normal.Eq(forward), "normal %s should face the ray", hit.Normal)
}

func TestRaycaster_Prism(t *testing.T) {
	rc := NewRaycaster()
	pillar := Prism("pillar", geometry.Vector3D{}, 2, 10, 6)
	assert.Len(t, pillar.Triangles(), 12)

	hit, ok, err := rc.Nearest(rayAt(geometry.Vector3D{Y: 5, Z: -10}, forward, 10), []flock.Obstacle{pillar})
	require.NoError(t, err)
	require.True(t, ok)
	// the flat side of a hexagon sits at radius*cos(30°)
	assert.InDelta(t, 10-2*0.8660254, hit.Distance, tol)
	assert.InDelta(t, -1, hit.Normal.Z, tol)
}

func TestRaycaster_Errors(t *testing.T) {
	rc := NewRaycaster()

	_, _, err := rc.Nearest(rayAt(geometry.Vector3D{}, forward, 10), []flock.Obstacle{"not geometry"})
	assert.ErrorIs(t, err, ErrUnsupportedObstacle)

	flat := math32.NewTriangle(math32.Vec3(0, 0, 5), math32.Vec3(0, 0, 5), math32.Vec3(1, 1, 6))
	bad := NewMesh("bad", []math32.Triangle{flat})
	g, err := NewGroup("wrapper", bad)
	require.NoError(t, err)
	_, ok, err := rc.Nearest(rayAt(geometry.Vector3D{X: 0.5, Y: 0.5}, forward, 10), []flock.Obstacle{g})
	assert.ErrorIs(t, err, ErrDegenerateTriangle)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), `mesh "bad"`)
}

func TestNewGroup_RejectsUnknownChildren(t *testing.T) {
	_, err := NewGroup("broken", 42)
	assert.ErrorIs(t, err, ErrUnsupportedObstacle)
}

func TestStatic(t *testing.T) {
	box := unitBox("box", geometry.Vector3D{})
	s := NewStatic(box)
	assert.Equal(t, []flock.Obstacle{box}, s.Obstacles())
	assert.Empty(t, NewStatic().Obstacles())
}

func TestReef(t *testing.T) {
	bounds := flock.Bounds{Width: 60, Height: 30, Depth: 60}
	cfg := DefaultReefConfig()

	reef, err := Reef(cfg, bounds, 0, 42)
	require.NoError(t, err)
	assert.Len(t, reef.Children(), 3, "floor, rocks and pillar")

	again, err := Reef(cfg, bounds, 0, 42)
	require.NoError(t, err)
	assert.Equal(t, reef.BBox(), again.BBox(), "same seed, same reef")

	// looking straight down from mid water always lands on something flat
	rc := NewRaycaster()
	hit, ok, err := rc.Nearest(rayAt(geometry.Vector3D{X: 20, Y: 5, Z: 20}, up.Mul(-1), 10), []flock.Obstacle{reef})
	require.NoError(t, err)
	require.True(t, ok)
	assert.LessOrEqual(t, hit.Distance, 5.0+tol)
	assert.True(t, hit.Normal.Eq(up), "normal %s", hit.Normal)

	_, err = Reef(cfg, flock.Bounds{}, 0, 1)
	assert.ErrorIs(t, err, flock.ErrInvalidBounds)
}

func TestReef_DrivesFlockAvoidance(t *testing.T) {
	bounds := flock.Bounds{Width: 60, Height: 30, Depth: 60}
	tuning := flock.DefaultTuning()
	reef, err := Reef(DefaultReefConfig(), bounds, tuning.MinHeight-0.5, 7)
	require.NoError(t, err)

	f := flock.New(bounds, 100,
		flock.WithSeed(3),
		flock.WithWorkers(4),
		flock.WithObstacles(NewStatic(reef), NewRaycaster()),
	)
	for i := 0; i < 100; i++ {
		f.Tick(16 * time.Millisecond)
	}
	assert.Zero(t, f.Stats().QueryFailures)
	for _, a := range f.Snapshot() {
		assert.LessOrEqual(t, a.Velocity.Len(), tuning.MaxSpeed+1e-12)
	}
}
