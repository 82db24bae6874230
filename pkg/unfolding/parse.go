package unfolding

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/projection-scenes/pkg/math"
)

// faceRecord mirrors a face entry of the document. Pointer fields tell a
// missing key apart from a zero value.
type faceRecord struct {
	ID        *int           `yaml:"id"`
	Normal    *vector        `yaml:"normal"`
	Vertices  *[]*vector     `yaml:"vtx"`
	Neighbors *[]neighborRef `yaml:"neighbors"`
}

type neighborRef struct {
	ID *int `yaml:"id"`
}

// vector decodes either {x, y, z} or [x, y, z].
type vector math.Vec3

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *vector) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		var m struct {
			X *float32 `yaml:"x"`
			Y *float32 `yaml:"y"`
			Z *float32 `yaml:"z"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		if m.X == nil || m.Y == nil || m.Z == nil {
			return fmt.Errorf("line %d: vector needs x, y and z", node.Line)
		}
		*v = vector{X: *m.X, Y: *m.Y, Z: *m.Z}

	case yaml.SequenceNode:
		var s []float32
		if err := node.Decode(&s); err != nil {
			return err
		}
		if len(s) != 3 {
			return fmt.Errorf("line %d: vector needs 3 components, got %d", node.Line, len(s))
		}
		*v = vector{X: s[0], Y: s[1], Z: s[2]}

	default:
		return fmt.Errorf("line %d: expected vector, got %q", node.Line, node.Value)
	}

	if !math.Vec3(*v).IsFinite() {
		return fmt.Errorf("line %d: vector has non-finite component", node.Line)
	}
	return nil
}

// Parse parses an unfolding document from raw bytes.
// Any structural problem fails the whole load with ErrMalformedInput.
func Parse(data []byte) (*FaceGraph, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedInput)
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: top level must be a mapping", ErrMalformedInput, doc.Line)
	}

	facesNode := lookup(doc, "faces")
	if facesNode == nil {
		return nil, fmt.Errorf("%w: missing \"faces\"", ErrMalformedInput)
	}
	if facesNode.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: line %d: \"faces\" must be a list", ErrMalformedInput, facesNode.Line)
	}

	faces := make([]Face, 0, len(facesNode.Content))
	for i, node := range facesNode.Content {
		face, err := parseFace(node)
		if err != nil {
			return nil, fmt.Errorf("%w: face #%d (line %d): %v", ErrMalformedInput, i, node.Line, err)
		}
		faces = append(faces, face)
	}

	return NewFaceGraph(faces)
}

// parseFace decodes and checks a single face entry.
func parseFace(node *yaml.Node) (Face, error) {
	if node.Kind != yaml.MappingNode {
		return Face{}, errors.New("face entry must be a mapping")
	}

	var rec faceRecord
	if err := node.Decode(&rec); err != nil {
		return Face{}, err
	}

	switch {
	case rec.ID == nil:
		return Face{}, errors.New("missing \"id\"")
	case rec.Normal == nil:
		return Face{}, fmt.Errorf("face %d: missing \"normal\"", *rec.ID)
	case rec.Vertices == nil:
		return Face{}, fmt.Errorf("face %d: missing \"vtx\"", *rec.ID)
	case rec.Neighbors == nil:
		return Face{}, fmt.Errorf("face %d: missing \"neighbors\"", *rec.ID)
	}

	face := Face{
		ID:        *rec.ID,
		Normal:    math.Vec3(*rec.Normal),
		Vertices:  make([]math.Vec3, 0, len(*rec.Vertices)),
		Neighbors: make([]int, 0, len(*rec.Neighbors)),
	}

	for i, v := range *rec.Vertices {
		if v == nil {
			return Face{}, fmt.Errorf("face %d: vertex %d is null", face.ID, i)
		}
		face.Vertices = append(face.Vertices, math.Vec3(*v))
	}

	for i, n := range *rec.Neighbors {
		if n.ID == nil {
			return Face{}, fmt.Errorf("face %d: neighbor %d missing \"id\"", face.ID, i)
		}
		face.Neighbors = append(face.Neighbors, *n.ID)
	}

	return face, nil
}

// lookup returns the value node for key in a mapping node.
func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// ParseFile parses an unfolding document from disk.
// A missing file is reported as ErrInputNotFound.
func ParseFile(path string) (*FaceGraph, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading unfolding file: %w", err)
	}
	return Parse(data)
}
