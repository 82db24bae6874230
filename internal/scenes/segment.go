// Package scenes segments an unfolded mesh into scenes: connected regions
// of faces whose neighboring normals stay within an angle threshold. The
// result is flattened into per-vertex buffers colored by scene.
package scenes

import (
	"errors"
	"fmt"
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/projection-scenes/internal/logger"
	"github.com/Faultbox/projection-scenes/pkg/unfolding"
)

// Segmentation errors.
var (
	ErrRootNotFound     = errors.New("root face not found")
	ErrArityMismatch    = errors.New("face vertex count does not match polygon arity")
	ErrInvalidThreshold = errors.New("invalid scene threshold")
	ErrInvalidArity     = errors.New("invalid polygon arity")
)

// Options configures a segmentation run.
type Options struct {
	// Threshold is the largest angle in degrees between neighboring face
	// normals that still continues the current scene.
	Threshold float64
	// RootID is the face the traversal starts from.
	RootID int
	// Colors supplies scene colors. Nil means a time-seeded RandomHSV.
	Colors ColorGenerator
	// Arity is the vertex count of every face. Zero means DefaultArity.
	Arity int
}

// frame is one level of the depth-first traversal.
type frame struct {
	face  *unfolding.Face
	color Color
	scene int
	next  int // index into face.Neighbors of the next neighbor to explore
}

type segmenter struct {
	graph     *unfolding.FaceGraph
	opts      Options
	processed map[int]bool
	mesh      *FlattenedMesh
	stack     []frame
}

// Segment walks the graph depth-first from the root face and flattens
// every reachable face into a mesh.
//
// A face keeps the color of the path that first reaches it. Entering a
// neighbor whose normal differs from the current face's by more than the
// threshold starts a new scene with a fresh color; that color applies to the
// entered branch only, siblings explored later still inherit the current
// face's color. Faces unreachable from the root are omitted.
func Segment(g *unfolding.FaceGraph, opts Options) (*FlattenedMesh, error) {
	if gomath.IsNaN(opts.Threshold) || opts.Threshold < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, opts.Threshold)
	}
	if opts.Arity == 0 {
		opts.Arity = DefaultArity
	}
	if opts.Arity < 3 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidArity, opts.Arity)
	}
	if opts.Colors == nil {
		opts.Colors = NewRandomHSV(uint64(time.Now().UnixNano()))
	}

	root, ok := g.Face(opts.RootID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRootNotFound, opts.RootID)
	}

	s := &segmenter{
		graph:     g,
		opts:      opts,
		processed: make(map[int]bool, g.Len()),
		mesh:      &FlattenedMesh{Arity: opts.Arity},
	}
	for _, id := range g.IDs() {
		s.processed[id] = false
	}

	if err := s.run(root); err != nil {
		return nil, err
	}

	logger.Info("unfolding mesh ready",
		zap.Int("vertices", s.mesh.VertexCount()),
		zap.Int("faces", len(s.mesh.Faces)),
		zap.Int("scenes", s.mesh.SceneCount()),
		zap.Int("omitted", g.Len()-len(s.mesh.Faces)))

	return s.mesh, nil
}

// run performs the traversal with an explicit stack. Popping a frame only
// once all of its neighbors were explored reproduces recursive
// depth-first order exactly.
//
// Every neighbor edge is measured and, when steeper than the threshold,
// draws a color before the processed check, so the color source sees the
// same sequence of requests as a recursive walk. A color drawn for an
// already processed face is discarded without a scene ordinal.
func (s *segmenter) run(root *unfolding.Face) error {
	color := s.opts.Colors.Next()
	if err := s.enter(root, color, s.addScene(color)); err != nil {
		return err
	}

	for len(s.stack) > 0 {
		top := &s.stack[len(s.stack)-1]
		if top.next == len(top.face.Neighbors) {
			s.stack = s.stack[:len(s.stack)-1]
			continue
		}

		id := top.face.Neighbors[top.next]
		top.next++

		neighbor, _ := s.graph.Face(id)
		angle := top.face.Normal.Angle(neighbor.Normal)
		logger.Debug("neighbor angle",
			zap.Int("face", top.face.ID),
			zap.Int("neighbor", id),
			zap.Float64("angle", angle))

		color, scene := top.color, top.scene
		split := angle > s.opts.Threshold
		if split {
			color = s.opts.Colors.Next()
		}
		if s.processed[id] {
			continue
		}
		if split {
			scene = s.addScene(color)
		}

		if err := s.enter(neighbor, color, scene); err != nil {
			return err
		}
	}
	return nil
}

// addScene registers color as a new scene and returns its ordinal.
func (s *segmenter) addScene(c Color) int {
	s.mesh.SceneColors = append(s.mesh.SceneColors, c)
	return len(s.mesh.SceneColors) - 1
}

// enter marks a face processed, appends its vertices and pushes its frame.
func (s *segmenter) enter(f *unfolding.Face, color Color, scene int) error {
	if len(f.Vertices) != s.opts.Arity {
		return fmt.Errorf("%w: face %d has %d vertices, arity is %d",
			ErrArityMismatch, f.ID, len(f.Vertices), s.opts.Arity)
	}

	s.processed[f.ID] = true
	logger.Debug("processing face", zap.Int("face", f.ID), zap.Int("scene", scene))

	m := s.mesh
	first := len(m.Positions)
	for _, v := range f.Vertices {
		m.Positions = append(m.Positions, v)
		m.Indices = append(m.Indices, uint32(len(m.Indices)))
		m.Colors = append(m.Colors, color)
		m.Normals = append(m.Normals, f.Normal)
	}
	m.Faces = append(m.Faces, FaceSpan{ID: f.ID, First: first, Count: len(f.Vertices), Scene: scene})

	s.stack = append(s.stack, frame{face: f, color: color, scene: scene})
	return nil
}
