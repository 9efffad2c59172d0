package flock

import (
	"errors"
	"testing"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

func TestConstrain_WrapHorizontal(t *testing.T) {
	vel := geometry.Vector3D{X: 0.1, Y: 0.01, Z: -0.1}
	tests := []struct {
		name string
		pos  geometry.Vector3D
		want geometry.Vector3D
	}{
		{"inside untouched", geometry.Vector3D{X: 10, Y: 5, Z: -10}, geometry.Vector3D{X: 10, Y: 5, Z: -10}},
		{"on the edge untouched", geometry.Vector3D{X: 30, Y: 5, Z: -30}, geometry.Vector3D{X: 30, Y: 5, Z: -30}},
		{"past +X", geometry.Vector3D{X: 30.5, Y: 5, Z: 0}, geometry.Vector3D{X: -29.5, Y: 5, Z: 0}},
		{"past -X", geometry.Vector3D{X: -30.25, Y: 5, Z: 0}, geometry.Vector3D{X: 29.75, Y: 5, Z: 0}},
		{"past +Z", geometry.Vector3D{X: 0, Y: 5, Z: 30.125}, geometry.Vector3D{X: 0, Y: 5, Z: -29.875}},
		{"past -Z", geometry.Vector3D{X: 0, Y: 5, Z: -31}, geometry.Vector3D{X: 0, Y: 5, Z: 29}},
		{"far past +X pinned", geometry.Vector3D{X: 100, Y: 5, Z: 0}, geometry.Vector3D{X: -30, Y: 5, Z: 0}},
		{"far past -Z pinned", geometry.Vector3D{X: 0, Y: 5, Z: -100}, geometry.Vector3D{X: 0, Y: 5, Z: 30}},
		{"far past both pinned", geometry.Vector3D{X: 100, Y: 5, Z: -100}, geometry.Vector3D{X: -30, Y: 5, Z: 30}},
		{"one extent past +X", geometry.Vector3D{X: 90, Y: 5, Z: 0}, geometry.Vector3D{X: 30, Y: 5, Z: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAgent(0, tt.pos, vel)
			Constrain(a, testBounds)
			if !a.Position.Eq(tt.want) {
				t.Errorf("Constrain(%s) position = %s; want %s", tt.pos, a.Position, tt.want)
			}
			if a.Velocity != vel {
				t.Errorf("Constrain(%s) changed velocity to %s; want %s", tt.pos, a.Velocity, vel)
			}
		})
	}
}

func TestConstrain_NarrowWorldStaysInside(t *testing.T) {
	narrow := Bounds{Width: 4, Height: 30, Depth: 4}
	for _, x := range []float64{-1000, -7.5, -2.01, 2.01, 3.9, 6, 7.5, 1000} {
		a := newTestAgent(0, geometry.Vector3D{X: x, Y: 5, Z: -x}, geometry.Vector3D{})
		Constrain(a, narrow)
		assertInside(t, a, narrow)
	}
}

func TestConstrain_BounceVertical(t *testing.T) {
	tests := []struct {
		name    string
		y, vy   float64
		wantY   float64
		wantVy  float64
		wantVxz geometry.Vector3D
	}{
		{"below floor", 1, -0.1, 2, 0.05, geometry.Vector3D{X: 0.1, Z: 0.1}},
		{"far below floor", -50, -0.08, 2, 0.04, geometry.Vector3D{X: 0.1, Z: 0.1}},
		{"above ceiling", 16, 0.1, 15, -0.05, geometry.Vector3D{X: 0.1, Z: 0.1}},
		{"inside", 10, 0.1, 10, 0.1, geometry.Vector3D{X: 0.1, Z: 0.1}},
		{"on the floor", 2, -0.1, 2, -0.1, geometry.Vector3D{X: 0.1, Z: 0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAgent(0, geometry.Vector3D{Y: tt.y}, geometry.Vector3D{X: 0.1, Y: tt.vy, Z: 0.1})
			Constrain(a, testBounds)
			if !floatNear(a.Position.Y, tt.wantY, geometry.Epsilon) {
				t.Errorf("Y = %f; want %f", a.Position.Y, tt.wantY)
			}
			if !floatNear(a.Velocity.Y, tt.wantVy, geometry.Epsilon) {
				t.Errorf("vY = %f; want %f", a.Velocity.Y, tt.wantVy)
			}
			if a.Velocity.X != tt.wantVxz.X || a.Velocity.Z != tt.wantVxz.Z {
				t.Errorf("horizontal velocity changed to %s", a.Velocity)
			}
		})
	}
}

func TestConstrain_UsesAgentMinHeight(t *testing.T) {
	a := newTestAgent(0, geometry.Vector3D{Y: 4}, geometry.Vector3D{Y: -0.1})
	a.tuning.MinHeight = 5
	Constrain(a, testBounds)
	if a.Position.Y != 5 {
		t.Errorf("Y = %f; want pinned to agent MinHeight 5", a.Position.Y)
	}
}

func TestBounds_Validate(t *testing.T) {
	if err := testBounds.Validate(); err != nil {
		t.Errorf("Validate() on %+v = %v; want nil", testBounds, err)
	}
	bad := Bounds{Width: 60, Height: 0, Depth: 60}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("Validate() on %+v = %v; want ErrInvalidBounds", bad, err)
	}
}
