// Package config handles segmentation settings loading and management.
package config

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/Faultbox/projection-scenes/internal/export"
)

// Color modes.
const (
	ColorsRandom  = "random"
	ColorsPalette = "palette"
)

// Config holds all settings.
type Config struct {
	Segment SegmentConfig `yaml:"segment"`
	Data    DataConfig    `yaml:"data"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// SegmentConfig holds scene segmentation settings.
type SegmentConfig struct {
	Threshold float64 `yaml:"threshold"`  // Max neighbor normal angle within a scene, degrees
	RootFace  int     `yaml:"root_face"`  // Face the traversal starts from
	Arity     int     `yaml:"arity"`      // Vertices per face (4 = quads)
	Colors    string  `yaml:"colors"`     // "random" or "palette"
	ColorSeed uint64  `yaml:"color_seed"` // 0 = seed from the clock
}

// DataConfig holds input file settings.
type DataConfig struct {
	BaseDir       string `yaml:"base_dir"`       // Directory relative file names resolve against
	UnfoldingFile string `yaml:"unfolding_file"` // Unfolding document
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Format string `yaml:"format"` // "obj" or "yaml"
	Path   string `yaml:"path"`   // Empty writes to stdout
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Segment: SegmentConfig{
			Threshold: 15,
			RootFace:  0,
			Arity:     4,
			Colors:    ColorsRandom,
			ColorSeed: 0,
		},
		Data: DataConfig{
			BaseDir:       ".",
			UnfoldingFile: "unfolding.json",
		},
		Output: OutputConfig{
			Format: export.FormatOBJ,
			Path:   "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// UnfoldingPath returns the unfolding file resolved against BaseDir.
// Absolute file names are returned unchanged.
func (d DataConfig) UnfoldingPath() string {
	if d.UnfoldingFile == "" || filepath.IsAbs(d.UnfoldingFile) {
		return d.UnfoldingFile
	}
	return filepath.Join(d.BaseDir, d.UnfoldingFile)
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	s := c.Segment
	if math.IsNaN(s.Threshold) || s.Threshold < 0 {
		return fmt.Errorf("segment.threshold must be >= 0, got %v", s.Threshold)
	}
	if s.Threshold > 180 {
		return fmt.Errorf("segment.threshold must be <= 180 degrees, got %v", s.Threshold)
	}
	if s.Arity < 3 {
		return fmt.Errorf("segment.arity must be >= 3, got %d", s.Arity)
	}
	switch s.Colors {
	case ColorsRandom, ColorsPalette:
	default:
		return fmt.Errorf("segment.colors must be %q or %q, got %q", ColorsRandom, ColorsPalette, s.Colors)
	}
	switch c.Output.Format {
	case export.FormatOBJ, export.FormatYAML:
	default:
		return fmt.Errorf("output.format must be %q or %q, got %q", export.FormatOBJ, export.FormatYAML, c.Output.Format)
	}
	return nil
}
