package scene

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Bounds is an axis aligned box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBounds is inverted so that the first Extend sets both corners.
func EmptyBounds() Bounds {
	inf := math32.Inf(1)
	return Bounds{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

func (b Bounds) Valid() bool {
	return b.Min.X() <= b.Max.X() && b.Min.Y() <= b.Max.Y() && b.Min.Z() <= b.Max.Z()
}

func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Bounds) Diagonal() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b *Bounds) Extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
}

// ComputeBounds returns the world space box of every POSITION accessor drawn
// by the active scene. Accessor min/max are used when declared, otherwise the
// positions are read.
func ComputeBounds(a *Asset) (Bounds, error) {
	b := EmptyBounds()
	var err error
	Walk(a, func(_ int, node *gltf.Node, world mgl32.Mat4) {
		if err != nil || node.Mesh == nil {
			return
		}
		if *node.Mesh < 0 || *node.Mesh >= len(a.Doc.Meshes) {
			err = fmt.Errorf("bounds: mesh %d out of range", *node.Mesh)
			return
		}
		for _, prim := range a.Doc.Meshes[*node.Mesh].Primitives {
			accIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			if accIdx < 0 || accIdx >= len(a.Doc.Accessors) {
				err = fmt.Errorf("bounds: accessor %d out of range", accIdx)
				return
			}
			if err = extendAccessor(&b, a.Doc, a.Doc.Accessors[accIdx], world); err != nil {
				return
			}
		}
	})
	return b, err
}

func extendAccessor(b *Bounds, doc *gltf.Document, acc *gltf.Accessor, world mgl32.Mat4) error {
	if len(acc.Min) >= 3 && len(acc.Max) >= 3 {
		lo := mgl32.Vec3{float32(acc.Min[0]), float32(acc.Min[1]), float32(acc.Min[2])}
		hi := mgl32.Vec3{float32(acc.Max[0]), float32(acc.Max[1]), float32(acc.Max[2])}
		for corner := 0; corner < 8; corner++ {
			p := lo
			for axis := 0; axis < 3; axis++ {
				if corner&(1<<axis) != 0 {
					p[axis] = hi[axis]
				}
			}
			b.Extend(mgl32.TransformCoordinate(p, world))
		}
		return nil
	}
	positions, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return fmt.Errorf("bounds: %w", err)
	}
	for _, p := range positions {
		b.Extend(mgl32.TransformCoordinate(mgl32.Vec3(p), world))
	}
	return nil
}
