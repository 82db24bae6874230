package scenes

import (
	"errors"
	gomath "math"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/projection-scenes/internal/logger"
	"github.com/Faultbox/projection-scenes/pkg/math"
	"github.com/Faultbox/projection-scenes/pkg/unfolding"
)

var (
	up    = math.Vec3{X: 0, Y: 1, Z: 0}
	right = math.Vec3{X: 1, Y: 0, Z: 0}
)

// tilted returns up rotated by deg degrees around the X axis.
func tilted(deg float64) math.Vec3 {
	rad := deg * gomath.Pi / 180
	return math.Vec3{X: 0, Y: float32(gomath.Cos(rad)), Z: float32(gomath.Sin(rad))}
}

// quad creates a unit quad face offset by its id so every vertex is unique.
func quad(id int, normal math.Vec3, neighbors ...int) unfolding.Face {
	o := float32(id) * 10
	return unfolding.Face{
		ID:     id,
		Normal: normal,
		Vertices: []math.Vec3{
			{X: o, Y: 0, Z: 0},
			{X: o + 1, Y: 0, Z: 0},
			{X: o + 1, Y: 0, Z: 1},
			{X: o, Y: 0, Z: 1},
		},
		Neighbors: neighbors,
	}
}

func mustGraph(t *testing.T, faces ...unfolding.Face) *unfolding.FaceGraph {
	t.Helper()
	g, err := unfolding.NewFaceGraph(faces)
	if err != nil {
		t.Fatalf("NewFaceGraph failed: %v", err)
	}
	return g
}

// counterColors returns a generator yielding (1,0,0), (2,0,0), ... so every
// drawn color is distinct and identifies the draw.
func counterColors() ColorGenerator {
	n := 0
	return ColorGeneratorFunc(func() Color {
		n++
		return Color{R: float32(n), A: 1}
	})
}

func segment(t *testing.T, g *unfolding.FaceGraph, root int, threshold float64) *FlattenedMesh {
	t.Helper()
	m, err := Segment(g, Options{Threshold: threshold, RootID: root, Colors: counterColors()})
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("invalid mesh: %v", err)
	}
	return m
}

func faceOrder(m *FlattenedMesh) []int {
	ids := make([]int, len(m.Faces))
	for i, f := range m.Faces {
		ids[i] = f.ID
	}
	return ids
}

func sceneOf(t *testing.T, m *FlattenedMesh, id int) int {
	t.Helper()
	for _, f := range m.Faces {
		if f.ID == id {
			return f.Scene
		}
	}
	t.Fatalf("face %d not in mesh", id)
	return -1
}

func TestSegment_SingleFace(t *testing.T) {
	g := mustGraph(t, quad(0, up))
	m := segment(t, g, 0, 15)

	if m.VertexCount() != 4 {
		t.Errorf("expected 4 vertices, got %d", m.VertexCount())
	}
	if m.SceneCount() != 1 {
		t.Errorf("expected 1 scene, got %d", m.SceneCount())
	}
	if m.PolygonCount() != 1 {
		t.Errorf("expected 1 polygon, got %d", m.PolygonCount())
	}
	for i := 0; i < 4; i++ {
		if m.Colors[i] != m.Colors[0] {
			t.Errorf("vertex %d: expected single color, got %v", i, m.Colors[i])
		}
		if m.Normals[i] != up {
			t.Errorf("vertex %d: expected normal %v, got %v", i, up, m.Normals[i])
		}
		if m.Indices[i] != uint32(i) {
			t.Errorf("vertex %d: expected index %d, got %d", i, i, m.Indices[i])
		}
	}
	if m.Positions[2] != (math.Vec3{X: 1, Y: 0, Z: 1}) {
		t.Errorf("expected vertex order preserved, got %v", m.Positions)
	}
}

func TestSegment_TwoFacesThreshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		scenes    int
	}{
		{"below threshold", 15, 1},
		{"above threshold", 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGraph(t, quad(0, up, 1), quad(1, tilted(10), 0))
			m := segment(t, g, 0, tt.threshold)

			if m.VertexCount() != 8 {
				t.Errorf("expected 8 vertices, got %d", m.VertexCount())
			}
			if m.SceneCount() != tt.scenes {
				t.Errorf("expected %d scenes, got %d", tt.scenes, m.SceneCount())
			}

			sameColor := m.Colors[0] == m.Colors[4]
			if sameColor != (tt.scenes == 1) {
				t.Errorf("expected same color = %v, colors %v and %v", tt.scenes == 1, m.Colors[0], m.Colors[4])
			}
		})
	}
}

func TestSegment_ThresholdIsStrict(t *testing.T) {
	// Parallel normals never exceed a zero threshold.
	g := mustGraph(t, quad(0, up, 1), quad(1, up, 0))
	m := segment(t, g, 0, 0)
	if m.SceneCount() != 1 {
		t.Errorf("angle equal to threshold must not split, got %d scenes", m.SceneCount())
	}

	g = mustGraph(t, quad(0, up, 1), quad(1, tilted(1), 0))
	m = segment(t, g, 0, 0)
	if m.SceneCount() != 2 {
		t.Errorf("expected split for a 1 degree fold, got %d scenes", m.SceneCount())
	}
}

func TestSegment_Cycle(t *testing.T) {
	g := mustGraph(t,
		quad(0, up, 1),
		quad(1, up, 2),
		quad(2, up, 0),
	)
	m := segment(t, g, 0, 15)

	if got := faceOrder(m); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("expected faces [0 1 2], got %v", got)
	}
	if m.VertexCount() != 12 {
		t.Errorf("expected 12 vertices, got %d", m.VertexCount())
	}
}

func TestSegment_SelfReference(t *testing.T) {
	g := mustGraph(t, quad(0, up, 0))
	m := segment(t, g, 0, 0)

	if len(m.Faces) != 1 || m.SceneCount() != 1 {
		t.Errorf("expected one face in one scene, got %d faces, %d scenes", len(m.Faces), m.SceneCount())
	}
}

func TestSegment_DepthFirstOrder(t *testing.T) {
	//   0
	//  / \
	// 1   2
	// |
	// 3
	g := mustGraph(t,
		quad(0, up, 1, 2),
		quad(1, up, 0, 3),
		quad(2, up, 0),
		quad(3, up, 1),
	)
	m := segment(t, g, 0, 15)

	if got := faceOrder(m); !reflect.DeepEqual(got, []int{0, 1, 3, 2}) {
		t.Errorf("expected depth-first order [0 1 3 2], got %v", got)
	}

	// Each face is one contiguous run in that order.
	for i, span := range m.Faces {
		if span.First != i*4 || span.Count != 4 {
			t.Errorf("face %d: expected run [%d,+4), got [%d,+%d)", span.ID, i*4, span.First, span.Count)
		}
		f, _ := g.Face(span.ID)
		for j := 0; j < span.Count; j++ {
			if m.Positions[span.First+j] != f.Vertices[j] {
				t.Errorf("face %d vertex %d: position mismatch", span.ID, j)
			}
		}
	}
}

func TestSegment_NewColorAppliesToBranchOnly(t *testing.T) {
	// Root has a steep neighbor 1 followed by a flat neighbor 2. Face 3
	// continues flat from 1.
	g := mustGraph(t,
		quad(0, up, 1, 2),
		quad(1, right, 0, 3),
		quad(2, up, 0),
		quad(3, right, 1),
	)
	m := segment(t, g, 0, 15)

	if m.SceneCount() != 2 {
		t.Fatalf("expected 2 scenes, got %d", m.SceneCount())
	}
	if s := sceneOf(t, m, 1); s != 1 {
		t.Errorf("face 1: expected scene 1, got %d", s)
	}
	if s := sceneOf(t, m, 3); s != 1 {
		t.Errorf("face 3: expected to inherit scene 1, got %d", s)
	}
	if s := sceneOf(t, m, 2); s != 0 {
		t.Errorf("face 2: expected root scene 0, got %d", s)
	}
	if m.Colors[len(m.Colors)-1] != m.SceneColors[0] {
		t.Errorf("face 2 should carry the root color %v, got %v", m.SceneColors[0], m.Colors[len(m.Colors)-1])
	}
}

func TestSegment_FirstReachWins(t *testing.T) {
	// 2 is steep relative to 0 but flat relative to 1. The traversal
	// reaches it through 1 first, so it joins 1's scene and the later
	// 0 -> 2 edge changes nothing.
	g := mustGraph(t,
		quad(0, up, 1, 2),
		quad(1, right, 2),
		quad(2, right, 0),
	)
	m := segment(t, g, 0, 15)

	if s := sceneOf(t, m, 2); s != sceneOf(t, m, 1) {
		t.Errorf("face 2: expected scene of face 1, got %d", s)
	}
	if m.SceneCount() != 2 {
		t.Errorf("expected 2 scenes, got %d", m.SceneCount())
	}
}

func TestSegment_ChainOfSmallSteps(t *testing.T) {
	// 0 and 2 differ by 20 degrees but are linked through 10 degree steps.
	g := mustGraph(t,
		quad(0, tilted(0), 1),
		quad(1, tilted(10), 2),
		quad(2, tilted(20)),
	)
	m := segment(t, g, 0, 15)

	if m.SceneCount() != 1 {
		t.Errorf("expected 1 scene, got %d", m.SceneCount())
	}
}

func TestSegment_ColorDrawsOnBackEdges(t *testing.T) {
	// The steep edge 1 -> 0 leads back to a processed face. It still
	// consumes a color, so face 2 gets the fourth draw.
	g := mustGraph(t,
		quad(0, up, 1, 2),
		quad(1, right, 0),
		quad(2, right),
	)

	draws := 0
	colors := ColorGeneratorFunc(func() Color {
		draws++
		return Color{R: float32(draws), A: 1}
	})
	m, err := Segment(g, Options{Threshold: 15, Colors: colors})
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if draws != 4 {
		t.Errorf("expected 4 color draws, got %d", draws)
	}

	want := map[int]float32{0: 1, 1: 2, 2: 4}
	for _, span := range m.Faces {
		if got := m.Colors[span.First].R; got != want[span.ID] {
			t.Errorf("face %d: expected color R=%v, got R=%v", span.ID, want[span.ID], got)
		}
	}

	// The discarded draw does not become a scene.
	if m.SceneCount() != 3 {
		t.Errorf("expected 3 scenes, got %d", m.SceneCount())
	}
	wantScenes := []Color{{R: 1, A: 1}, {R: 2, A: 1}, {R: 4, A: 1}}
	if !reflect.DeepEqual(m.SceneColors, wantScenes) {
		t.Errorf("expected scene colors %v, got %v", wantScenes, m.SceneColors)
	}
}

// cube returns the six faces of a cube, every face adjacent to the four
// faces it shares an edge with.
func cube() []unfolding.Face {
	// 0 +Y, 1 -Y, 2 +X, 3 -X, 4 +Z, 5 -Z
	return []unfolding.Face{
		quad(0, math.Vec3{X: 0, Y: 1, Z: 0}, 2, 3, 4, 5),
		quad(1, math.Vec3{X: 0, Y: -1, Z: 0}, 2, 3, 4, 5),
		quad(2, math.Vec3{X: 1, Y: 0, Z: 0}, 0, 1, 4, 5),
		quad(3, math.Vec3{X: -1, Y: 0, Z: 0}, 0, 1, 4, 5),
		quad(4, math.Vec3{X: 0, Y: 0, Z: 1}, 0, 1, 2, 3),
		quad(5, math.Vec3{X: 0, Y: 0, Z: -1}, 0, 1, 2, 3),
	}
}

func TestSegment_ThresholdExtremes(t *testing.T) {
	g := mustGraph(t, cube()...)

	m := segment(t, g, 0, 180)
	if m.SceneCount() != 1 {
		t.Errorf("threshold 180: expected 1 scene, got %d", m.SceneCount())
	}
	for i, c := range m.Colors {
		if c != m.Colors[0] {
			t.Fatalf("threshold 180: vertex %d has color %v, want %v", i, c, m.Colors[0])
		}
	}

	// Every edge the traversal enters is a 90 degree fold.
	m = segment(t, g, 0, 0)
	if m.SceneCount() != 6 {
		t.Errorf("threshold 0: expected 6 scenes, got %d", m.SceneCount())
	}
	if len(m.Faces) != 6 {
		t.Errorf("expected all 6 faces, got %d", len(m.Faces))
	}
}

func TestSegment_UnreachableOmitted(t *testing.T) {
	g := mustGraph(t,
		quad(0, up, 1),
		quad(1, up),
		quad(2, up, 0), // points at the root, nothing points at it
		quad(3, up),
	)
	m := segment(t, g, 0, 15)

	if got := faceOrder(m); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("expected faces [0 1], got %v", got)
	}
	if m.VertexCount() != 8 {
		t.Errorf("expected 8 vertices, got %d", m.VertexCount())
	}
	for _, p := range m.Positions {
		if p.X >= 20 {
			t.Errorf("found vertex %v of an unreachable face", p)
		}
	}
}

func TestSegment_Deterministic(t *testing.T) {
	g := mustGraph(t, cube()...)

	a := segment(t, g, 3, 30)
	b := segment(t, g, 3, 30)
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical output for identical input")
	}

	seeded := func() *FlattenedMesh {
		m, err := Segment(g, Options{Threshold: 30, RootID: 3, Colors: NewRandomHSV(42)})
		if err != nil {
			t.Fatalf("Segment failed: %v", err)
		}
		return m
	}
	if !reflect.DeepEqual(seeded(), seeded()) {
		t.Error("expected identical output for the same color seed")
	}
}

func TestSegment_Errors(t *testing.T) {
	g := mustGraph(t,
		quad(0, up, 1),
		unfolding.Face{ID: 1, Normal: up, Vertices: []math.Vec3{{}, {}, {}}},
	)

	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"missing root", Options{RootID: 9, Threshold: 15}, ErrRootNotFound},
		{"negative threshold", Options{Threshold: -1}, ErrInvalidThreshold},
		{"NaN threshold", Options{Threshold: gomath.NaN()}, ErrInvalidThreshold},
		{"bad arity", Options{Threshold: 15, Arity: 2}, ErrInvalidArity},
		{"triangle among quads", Options{Threshold: 15}, ErrArityMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Colors = counterColors()
			m, err := Segment(g, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if m != nil {
				t.Error("expected no mesh on error")
			}
		})
	}
}

func TestSegment_Triangles(t *testing.T) {
	tri := func(id int, neighbors ...int) unfolding.Face {
		return unfolding.Face{
			ID:        id,
			Normal:    up,
			Vertices:  []math.Vec3{{X: 0}, {X: 1}, {Z: 1}},
			Neighbors: neighbors,
		}
	}
	g := mustGraph(t, tri(0, 1), tri(1, 0))

	m, err := Segment(g, Options{Threshold: 15, Arity: 3, Colors: counterColors()})
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if m.PolygonCount() != 2 {
		t.Errorf("expected 2 triangles, got %d", m.PolygonCount())
	}
	if err := m.Validate(); err != nil {
		t.Errorf("invalid mesh: %v", err)
	}
}

func TestSegment_DefaultColors(t *testing.T) {
	g := mustGraph(t, quad(0, up))
	m, err := Segment(g, Options{Threshold: 15})
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if m.Colors[0].A != 1 {
		t.Errorf("expected opaque color, got %v", m.Colors[0])
	}
}

func TestSegment_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	defer logger.SetLogger(zap.New(core))()

	g := mustGraph(t, quad(0, up, 1), quad(1, right, 0))
	segment(t, g, 0, 15)

	if n := logs.FilterMessage("processing face").Len(); n != 2 {
		t.Errorf("expected 2 'processing face' entries, got %d", n)
	}

	// Both directions of the edge are measured, the way back included.
	angles := logs.FilterMessage("neighbor angle").All()
	if len(angles) != 2 {
		t.Fatalf("expected 2 'neighbor angle' entries, got %d", len(angles))
	}
	for _, e := range angles {
		if a := e.ContextMap()["angle"].(float64); gomath.Abs(a-90) > 1e-6 {
			t.Errorf("expected logged angle 90, got %v", a)
		}
	}

	ready := logs.FilterMessage("unfolding mesh ready").All()
	if len(ready) != 1 {
		t.Fatalf("expected summary entry, got %d", len(ready))
	}
	if v := ready[0].ContextMap()["vertices"]; v != int64(8) {
		t.Errorf("expected vertices=8 in summary, got %v", v)
	}
}
