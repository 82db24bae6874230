// Package export writes flattened scene meshes for external viewers.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/projection-scenes/internal/scenes"
)

// Supported formats.
const (
	FormatOBJ  = "obj"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned for an unsupported export format.
var ErrUnknownFormat = errors.New("unknown export format")

// Write encodes m to w in the given format.
func Write(w io.Writer, format string, m *scenes.FlattenedMesh) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("refusing to export: %w", err)
	}

	switch format {
	case FormatOBJ:
		return WriteOBJ(w, m)
	case FormatYAML:
		return WriteYAML(w, m)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile encodes m to path, creating parent directories as needed.
func WriteFile(path, format string, m *scenes.FlattenedMesh) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(f, format, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
