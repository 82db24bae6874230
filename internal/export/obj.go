package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Faultbox/projection-scenes/internal/scenes"
)

// WriteOBJ writes m as Wavefront OBJ. Vertex colors use the common
// "v x y z r g b" extension, every vertex gets its own "vn", and faces are
// grouped per scene ("g scene_N") in traversal order. m must pass
// Validate; Write checks that before dispatching here.
func WriteOBJ(w io.Writer, m *scenes.FlattenedMesh) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# projection scenes: %d vertices, %d polygons, %d scenes\n",
		m.VertexCount(), m.PolygonCount(), m.SceneCount())

	for i, p := range m.Positions {
		c := m.Colors[i]
		fmt.Fprintf(bw, "v %g %g %g %g %g %g\n", p.X, p.Y, p.Z, c.R, c.G, c.B)
	}
	for _, n := range m.Normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
	}

	if len(m.Faces) == 0 {
		// No traversal record, emit the polygons ungrouped.
		for start := 0; start < len(m.Indices); start += m.Arity {
			writeFace(bw, m.Indices[start:start+m.Arity])
		}
		return bw.Flush()
	}

	scene := -1
	for _, span := range m.Faces {
		if span.Scene != scene {
			scene = span.Scene
			fmt.Fprintf(bw, "g scene_%d\n", scene)
		}
		for start := span.First; start+m.Arity <= span.First+span.Count; start += m.Arity {
			writeFace(bw, m.Indices[start:start+m.Arity])
		}
	}

	return bw.Flush()
}

// writeFace writes one "f" line. OBJ indices are 1-based.
func writeFace(bw *bufio.Writer, indices []uint32) {
	bw.WriteString("f")
	for _, idx := range indices {
		fmt.Fprintf(bw, " %d//%d", idx+1, idx+1)
	}
	bw.WriteString("\n")
}
