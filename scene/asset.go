package scene

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/qmuntal/gltf"
)

type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// Asset is a parsed glTF document plus the location it was read from.
// It is not mutated after Load.
type Asset struct {
	ID   AssetId
	Path string
	Dir  string
	Doc  *gltf.Document
}

// Load parses a .gltf or .glb file. Relative image URIs resolve against the
// file's directory.
func Load(path string) (*Asset, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return NewAsset(doc, path), nil
}

// NewAsset wraps an in-memory document. path may be empty, in which case
// relative URIs resolve against the working directory.
func NewAsset(doc *gltf.Document, path string) *Asset {
	dir := "."
	if path != "" {
		dir = filepath.Dir(path)
	}
	return &Asset{
		ID:   makeAssetId(),
		Path: path,
		Dir:  dir,
		Doc:  doc,
	}
}

// ActiveScene returns the document's default scene. An unset or out of range
// scene index reports false and nothing is drawn.
func (a *Asset) ActiveScene() (*gltf.Scene, bool) {
	if a.Doc.Scene == nil {
		return nil, false
	}
	idx := *a.Doc.Scene
	if idx < 0 || idx >= len(a.Doc.Scenes) {
		return nil, false
	}
	return a.Doc.Scenes[idx], true
}

// Warnings lists document features the viewer loads but does not honor.
func (a *Asset) Warnings() []string {
	var out []string
	if a.Doc.Scene == nil {
		out = append(out, "document has no default scene, nothing will be drawn")
	} else if _, ok := a.ActiveScene(); !ok {
		out = append(out, fmt.Sprintf("default scene %d is out of range", *a.Doc.Scene))
	}
	for _, ext := range a.Doc.ExtensionsRequired {
		out = append(out, fmt.Sprintf("required extension %s is not supported", ext))
	}
	if len(a.Doc.Animations) > 0 {
		out = append(out, fmt.Sprintf("%d animations ignored", len(a.Doc.Animations)))
	}
	if len(a.Doc.Skins) > 0 {
		out = append(out, fmt.Sprintf("%d skins ignored", len(a.Doc.Skins)))
	}
	return out
}
