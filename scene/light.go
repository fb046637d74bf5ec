package scene

import "github.com/go-gl/mathgl/mgl32"

// Light is the single directional light of the viewer. Direction points from
// the surface towards the light, in world space.
type Light struct {
	Direction  mgl32.Vec3
	Intensity  mgl32.Vec3 // RGB
	FromCamera bool
}

func DefaultLight() Light {
	return Light{
		Direction: mgl32.Vec3{1, 1, 1},
		Intensity: mgl32.Vec3{1, 1, 1},
	}
}

// ViewDirection returns the normalized direction in view space. A light
// attached to the camera always faces +Z.
func (l Light) ViewDirection(view mgl32.Mat4) mgl32.Vec3 {
	if l.FromCamera {
		return mgl32.Vec3{0, 0, 1}
	}
	d := view.Mul4x1(l.Direction.Vec4(0)).Vec3()
	if d.Len() == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	return d.Normalize()
}
