package scenes

import (
	"fmt"

	"github.com/Faultbox/projection-scenes/pkg/math"
)

// DefaultArity is the polygon size of quad meshes.
const DefaultArity = 4

// FaceSpan records the contiguous run of vertices one face contributed.
type FaceSpan struct {
	ID    int // face id
	First int // index of the first vertex in the buffers
	Count int // number of vertices
	Scene int // scene ordinal, 0 for the root's scene
}

// FlattenedMesh holds the segmentation result as parallel per-vertex
// buffers ready for upload. Entry i of Positions, Colors, Normals and
// Indices all describe the same vertex; Indices groups vertices into
// polygons of Arity vertices each.
type FlattenedMesh struct {
	Positions []math.Vec3
	Colors    []Color
	Normals   []math.Vec3
	Indices   []uint32
	Arity     int

	// Faces lists the flattened faces in traversal order.
	Faces []FaceSpan
	// SceneColors holds the color of each scene that received faces,
	// indexed by scene ordinal.
	SceneColors []Color
}

// VertexCount returns the number of vertices.
func (m *FlattenedMesh) VertexCount() int {
	return len(m.Positions)
}

// PolygonCount returns the number of polygons.
func (m *FlattenedMesh) PolygonCount() int {
	if m.Arity == 0 {
		return 0
	}
	return len(m.Indices) / m.Arity
}

// SceneCount returns the number of scenes.
func (m *FlattenedMesh) SceneCount() int {
	return len(m.SceneColors)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *FlattenedMesh) IsEmpty() bool {
	return len(m.Positions) == 0
}

// Validate checks the buffer invariants: equal lengths and whole polygons.
func (m *FlattenedMesh) Validate() error {
	n := len(m.Positions)
	if len(m.Colors) != n || len(m.Normals) != n || len(m.Indices) != n {
		return fmt.Errorf("buffer length mismatch: positions=%d colors=%d normals=%d indices=%d",
			n, len(m.Colors), len(m.Normals), len(m.Indices))
	}
	if m.Arity <= 0 {
		return fmt.Errorf("invalid arity %d", m.Arity)
	}
	if len(m.Indices)%m.Arity != 0 {
		return fmt.Errorf("index count %d is not a multiple of arity %d", len(m.Indices), m.Arity)
	}
	return nil
}

// SceneSummary describes one scene of a segmentation.
type SceneSummary struct {
	Scene    int
	Color    Color
	Faces    []int // face ids in traversal order
	Vertices int
}

// Scenes groups the flattened faces by scene, ordered by scene ordinal.
// Scenes whose color was drawn but that ended up with no faces are omitted.
func (m *FlattenedMesh) Scenes() []SceneSummary {
	byScene := make([]*SceneSummary, len(m.SceneColors))
	for _, span := range m.Faces {
		s := byScene[span.Scene]
		if s == nil {
			s = &SceneSummary{Scene: span.Scene, Color: m.SceneColors[span.Scene]}
			byScene[span.Scene] = s
		}
		s.Faces = append(s.Faces, span.ID)
		s.Vertices += span.Count
	}

	out := make([]SceneSummary, 0, len(byScene))
	for _, s := range byScene {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}
