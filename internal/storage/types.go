package storage

import (
	"github.com/OCharnyshevich/worldgen/internal/worldgen"
	"github.com/OCharnyshevich/worldgen/pkg/skeleton"
	"github.com/OCharnyshevich/worldgen/pkg/vegetation"
)

// TreeData is the serializable representation of one tree skeleton.
type TreeData struct {
	ID        string               `json:"id"`
	Generator string               `json:"generator"`
	Steps     int                  `json:"steps"`
	Placement vegetation.Placement `json:"placement"`
	Nodes     []skeleton.Node      `json:"nodes"`
	Segments  []skeleton.Segment   `json:"segments"`
}

// TreeDataFromTree converts a grown tree into its serializable form.
func TreeDataFromTree(t worldgen.Tree) *TreeData {
	return &TreeData{
		ID:        t.ID.String(),
		Generator: t.Generator,
		Steps:     t.Steps,
		Placement: t.Placement,
		Nodes:     t.Skeleton.Nodes(),
		Segments:  t.Skeleton.Segments(),
	}
}

// Manifest indexes the files of one saved world. Paths are relative to the
// storage root.
type Manifest struct {
	Seed       int64       `json:"seed"`
	Terrain    MeshEntry   `json:"terrain"`
	Trees      []TreeEntry `json:"trees"`
	Grass      string      `json:"grass,omitempty"`
	GrassBlade *MeshEntry  `json:"grass_blade,omitempty"`
}

// MeshEntry describes one OBJ file.
type MeshEntry struct {
	Path      string `json:"path"`
	Vertices  int    `json:"vertices"`
	Triangles int    `json:"triangles"`
}

// TreeEntry describes one tree file.
type TreeEntry struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Nodes int    `json:"nodes"`
}
