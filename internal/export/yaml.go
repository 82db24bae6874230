package export

import (
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/projection-scenes/internal/scenes"
	"github.com/Faultbox/projection-scenes/pkg/math"
)

// meshDocument is the YAML layout of an exported mesh.
type meshDocument struct {
	Arity     int          `yaml:"arity"`
	Vertices  int          `yaml:"vertices"`
	Scenes    []sceneEntry `yaml:"scenes"`
	Positions []vec3       `yaml:"positions"`
	Colors    []rgba       `yaml:"colors"`
	Normals   []vec3       `yaml:"normals"`
	Indices   []uint32     `yaml:"indices,flow"`
}

type sceneEntry struct {
	Scene    int    `yaml:"scene"`
	Color    string `yaml:"color"`
	Faces    []int  `yaml:"faces,flow"`
	Vertices int    `yaml:"vertices"`
}

type vec3 math.Vec3

// MarshalYAML implements yaml.Marshaler.
func (v vec3) MarshalYAML() (interface{}, error) {
	return flowFloats(v.X, v.Y, v.Z), nil
}

type rgba scenes.Color

// MarshalYAML implements yaml.Marshaler.
func (c rgba) MarshalYAML() (interface{}, error) {
	return flowFloats(c.R, c.G, c.B, c.A), nil
}

// flowFloats renders values as a single-line sequence.
func flowFloats(vals ...float32) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range vals {
		n.Content = append(n.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: strconv.FormatFloat(float64(v), 'g', -1, 32),
		})
	}
	return n
}

// WriteYAML writes m as a YAML document with a scene summary followed by
// the four vertex buffers.
func WriteYAML(w io.Writer, m *scenes.FlattenedMesh) error {
	if err := m.Validate(); err != nil {
		return err
	}

	doc := meshDocument{
		Arity:     m.Arity,
		Vertices:  m.VertexCount(),
		Positions: make([]vec3, len(m.Positions)),
		Colors:    make([]rgba, len(m.Colors)),
		Normals:   make([]vec3, len(m.Normals)),
		Indices:   m.Indices,
	}
	for _, s := range m.Scenes() {
		doc.Scenes = append(doc.Scenes, sceneEntry{
			Scene:    s.Scene,
			Color:    s.Color.Hex(),
			Faces:    s.Faces,
			Vertices: s.Vertices,
		})
	}
	for i := range m.Positions {
		doc.Positions[i] = vec3(m.Positions[i])
		doc.Colors[i] = rgba(m.Colors[i])
		doc.Normals[i] = vec3(m.Normals[i])
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}
