package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookAtArgs_RoundTrip(t *testing.T) {
	cam := Camera{
		Eye:    mgl32.Vec3{1.5, -2, 3.25},
		Center: mgl32.Vec3{0, 0, 0},
		Up:     mgl32.Vec3{0, 1, 0},
	}
	args := cam.LookAtArgs()
	assert.Equal(t, "--lookat 1.5,-2,3.25,0,0,0,0,1,0", args)

	parsed, err := ParseLookAt(args)
	require.NoError(t, err)
	assert.Equal(t, cam, parsed)

	parsed, err = ParseLookAt("1.5, -2, 3.25, 0,0,0, 0,1,0")
	require.NoError(t, err)
	assert.Equal(t, cam, parsed)
}

func TestParseLookAt_Errors(t *testing.T) {
	_, err := ParseLookAt("1,2,3")
	assert.Error(t, err)

	_, err = ParseLookAt("1,2,3,4,5,6,7,8,x")
	assert.Error(t, err)
}

func TestCamera_FrontLeft(t *testing.T) {
	cam := DefaultCamera()
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, cam.Front())
	assert.Equal(t, mgl32.Vec3{-1, 0, 0}, cam.Left())

	cam.Center = cam.Eye
	assert.Equal(t, mgl32.Vec3{}, cam.Front())
}

func TestCameraFromBounds(t *testing.T) {
	up := mgl32.Vec3{0, 1, 0}

	box := Bounds{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	cam := CameraFromBounds(box, up)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, cam.Center)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, cam.Eye)

	flat := Bounds{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{2, 2, 0}}
	cam = CameraFromBounds(flat, up)
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, cam.Center)
	// diag x up = (2,2,0) x (0,1,0) = (0,0,2)
	assert.Equal(t, mgl32.Vec3{1, 1, 4}, cam.Eye)

	assert.Equal(t, DefaultCamera(), CameraFromBounds(EmptyBounds(), up))
}

func TestMaxDistance(t *testing.T) {
	assert.Equal(t, float32(DefaultMaxDistance), MaxDistance(EmptyBounds()))
	point := Bounds{Min: mgl32.Vec3{1, 1, 1}, Max: mgl32.Vec3{1, 1, 1}}
	assert.Equal(t, float32(DefaultMaxDistance), MaxDistance(point))
	box := Bounds{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{3, 4, 0}}
	assert.Equal(t, float32(5), MaxDistance(box))
}
