// Package unfolding loads face graphs of unfolded meshes.
//
// An unfolding document lists the faces of a polyhedral mesh together with
// their polygon vertices, face normal and edge-adjacent neighbor faces:
//
//	{"faces": [
//	  {"id": 0, "normal": {"x": 0, "y": 1, "z": 0},
//	   "vtx": [{"x": 0, "y": 0, "z": 0}, ...],
//	   "neighbors": [{"id": 1}, ...]},
//	  ...
//	]}
//
// Documents may be written as JSON or YAML. Vectors are accepted either as
// {x, y, z} mappings or as [x, y, z] sequences.
package unfolding

import (
	"errors"
	"fmt"

	"github.com/Faultbox/projection-scenes/pkg/math"
)

// Unfolding data errors.
var (
	ErrMalformedInput = errors.New("malformed unfolding data")
	ErrInputNotFound  = errors.New("unfolding data not found")
)

// Face is a single polygon of the mesh.
type Face struct {
	ID        int
	Vertices  []math.Vec3 // polygon corners in document order
	Normal    math.Vec3
	Neighbors []int // ids of edge-adjacent faces, in document order
}

// FaceGraph maps face ids to faces. It is immutable once built; faces
// returned by its accessors must not be modified.
type FaceGraph struct {
	faces map[int]*Face
	order []int
}

// NewFaceGraph builds a graph from faces and checks referential integrity:
// ids must be unique and every neighbor id must name a face in the set.
// Neighbors may reference faces that appear later in the slice.
func NewFaceGraph(faces []Face) (*FaceGraph, error) {
	g := &FaceGraph{
		faces: make(map[int]*Face, len(faces)),
		order: make([]int, 0, len(faces)),
	}

	for i := range faces {
		f := faces[i]
		if _, dup := g.faces[f.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate face id %d", ErrMalformedInput, f.ID)
		}
		g.faces[f.ID] = &f
		g.order = append(g.order, f.ID)
	}

	// Second pass: all ids are known now.
	for _, id := range g.order {
		for _, n := range g.faces[id].Neighbors {
			if _, ok := g.faces[n]; !ok {
				return nil, fmt.Errorf("%w: face %d references unknown neighbor %d", ErrMalformedInput, id, n)
			}
		}
	}

	return g, nil
}

// Face returns the face with the given id.
func (g *FaceGraph) Face(id int) (*Face, bool) {
	f, ok := g.faces[id]
	return f, ok
}

// Contains reports whether id is a face of the graph.
func (g *FaceGraph) Contains(id int) bool {
	_, ok := g.faces[id]
	return ok
}

// Len returns the number of faces.
func (g *FaceGraph) Len() int {
	return len(g.faces)
}

// IDs returns the face ids in document order.
func (g *FaceGraph) IDs() []int {
	ids := make([]int, len(g.order))
	copy(ids, g.order)
	return ids
}

// EdgeCount returns the number of neighbor references over all faces.
// A shared edge listed by both of its faces counts twice.
func (g *FaceGraph) EdgeCount() int {
	n := 0
	for _, f := range g.faces {
		n += len(f.Neighbors)
	}
	return n
}

// VertexCount returns the total number of polygon corners over all faces.
func (g *FaceGraph) VertexCount() int {
	n := 0
	for _, f := range g.faces {
		n += len(f.Vertices)
	}
	return n
}

// Reachable returns the ids of all faces reachable from root through
// neighbor references, root included, in breadth-first order.
// Returns nil if root is not in the graph.
func (g *FaceGraph) Reachable(root int) []int {
	if !g.Contains(root) {
		return nil
	}

	seen := map[int]bool{root: true}
	queue := []int{root}
	for i := 0; i < len(queue); i++ {
		for _, n := range g.faces[queue[i]].Neighbors {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return queue
}

// Unreachable returns the ids of faces with no path from root, in
// document order.
func (g *FaceGraph) Unreachable(root int) []int {
	seen := make(map[int]bool)
	for _, id := range g.Reachable(root) {
		seen[id] = true
	}

	var out []int
	for _, id := range g.order {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}
