package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// LocalMatrix returns the node's transform relative to its parent. An explicit
// matrix wins, otherwise M = T * R * S with glTF defaults for empty fields.
func LocalMatrix(n *gltf.Node) mgl32.Mat4 {
	if mat := n.MatrixOrDefault(); mat != gltf.DefaultMatrix {
		var m mgl32.Mat4
		for i, v := range mat {
			m[i] = float32(v)
		}
		return m
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// LocalToWorld composes parent * local.
func LocalToWorld(n *gltf.Node, parent mgl32.Mat4) mgl32.Mat4 {
	return parent.Mul4(LocalMatrix(n))
}

// VisitFunc receives each reachable node with its world matrix.
type VisitFunc func(index int, node *gltf.Node, world mgl32.Mat4)

// Walk visits the active scene depth first, a node before its children,
// roots with an identity parent. Nothing is visited without an active scene.
func Walk(a *Asset, visit VisitFunc) {
	sc, ok := a.ActiveScene()
	if !ok {
		return
	}
	for _, root := range sc.Nodes {
		walkNode(a.Doc, root, mgl32.Ident4(), visit)
	}
}

func walkNode(doc *gltf.Document, idx int, parent mgl32.Mat4, visit VisitFunc) {
	if idx < 0 || idx >= len(doc.Nodes) {
		return
	}
	node := doc.Nodes[idx]
	world := LocalToWorld(node, parent)
	visit(idx, node, world)
	for _, child := range node.Children {
		walkNode(doc, child, world, visit)
	}
}

// WorldMatrices returns the world matrix of every node reachable from the
// active scene.
func WorldMatrices(a *Asset) map[int]mgl32.Mat4 {
	out := make(map[int]mgl32.Mat4)
	Walk(a, func(index int, _ *gltf.Node, world mgl32.Mat4) {
		out[index] = world
	})
	return out
}
