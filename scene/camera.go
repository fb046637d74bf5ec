package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultFovY        = 70 // degrees
	DefaultMaxDistance = 100
)

// Camera is a look-at camera.
type Camera struct {
	Eye    mgl32.Vec3
	Center mgl32.Vec3
	Up     mgl32.Vec3
}

// DefaultCamera sits at the origin looking down -Z.
func DefaultCamera() Camera {
	return Camera{
		Eye:    mgl32.Vec3{0, 0, 0},
		Center: mgl32.Vec3{0, 0, -1},
		Up:     mgl32.Vec3{0, 1, 0},
	}
}

func (c Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Center, c.Up)
}

func (c Camera) Front() mgl32.Vec3 {
	return normalizeOrZero(c.Center.Sub(c.Eye))
}

func (c Camera) Left() mgl32.Vec3 {
	return normalizeOrZero(c.Up.Cross(c.Front()))
}

// LookAtArgs formats the camera as a --lookat flag that ParseLookAt reads back.
func (c Camera) LookAtArgs() string {
	parts := make([]string, 0, 9)
	for _, v := range []mgl32.Vec3{c.Eye, c.Center, c.Up} {
		for _, f := range v {
			parts = append(parts, strconv.FormatFloat(float64(f), 'g', -1, 32))
		}
	}
	return "--lookat " + strings.Join(parts, ",")
}

// ParseLookAt reads "ex,ey,ez,cx,cy,cz,ux,uy,uz". A leading "--lookat " is
// accepted.
func ParseLookAt(s string) (Camera, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "--lookat"))
	fields := strings.Split(s, ",")
	if len(fields) != 9 {
		return Camera{}, fmt.Errorf("lookat: want 9 comma separated values, got %d", len(fields))
	}
	vals := make([]float32, 9)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return Camera{}, fmt.Errorf("lookat: value %d: %w", i, err)
		}
		vals[i] = float32(v)
	}
	return CameraFromValues(vals)
}

// CameraFromValues builds a camera from eye, center and up packed in order.
func CameraFromValues(v []float32) (Camera, error) {
	if len(v) != 9 {
		return Camera{}, fmt.Errorf("lookat: want 9 values, got %d", len(v))
	}
	return Camera{
		Eye:    mgl32.Vec3{v[0], v[1], v[2]},
		Center: mgl32.Vec3{v[3], v[4], v[5]},
		Up:     mgl32.Vec3{v[6], v[7], v[8]},
	}, nil
}

// CameraFromBounds frames the bounding box. The eye is placed one diagonal
// away from the center, or sideways when the scene is flat in Z.
func CameraFromBounds(b Bounds, up mgl32.Vec3) Camera {
	if !b.Valid() {
		return DefaultCamera()
	}
	center := b.Center()
	diag := b.Diagonal()
	eye := center.Add(diag)
	if diag.Z() <= 0 {
		eye = center.Add(diag.Cross(up).Mul(2))
	}
	if eye == center {
		eye = center.Add(mgl32.Vec3{0, 0, 1})
	}
	return Camera{Eye: eye, Center: center, Up: up}
}

// MaxDistance is the length of the diagonal, or DefaultMaxDistance for an
// empty or degenerate scene.
func MaxDistance(b Bounds) float32 {
	if !b.Valid() {
		return DefaultMaxDistance
	}
	d := b.Diagonal().Len()
	if d <= 0 || math32.IsNaN(d) || math32.IsInf(d, 0) {
		return DefaultMaxDistance
	}
	return d
}

// Projection returns the perspective matrix sized to the scene extent.
func Projection(fovYDeg, aspect, maxDistance float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(fovYDeg), aspect, 0.001*maxDistance, 1.5*maxDistance)
}

func normalizeOrZero(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() == 0 {
		return mgl32.Vec3{}
	}
	return v.Normalize()
}
