// sceneseg segments unfolded meshes into flat scenes and exports the
// colored result.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/projection-scenes/internal/config"
	"github.com/Faultbox/projection-scenes/internal/export"
	"github.com/Faultbox/projection-scenes/internal/logger"
	"github.com/Faultbox/projection-scenes/internal/scenes"
	"github.com/Faultbox/projection-scenes/pkg/unfolding"
)

// maxListed caps the face ids printed per line by info and segment.
const maxListed = 12

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	command := args[0]
	rest := args[1:]

	var cmdErr error
	switch command {
	case "info":
		cmdErr = cmdInfo(cfg, rest)
	case "segment", "seg":
		cmdErr = cmdSegment(cfg, rest)
	case "export", "x":
		cmdErr = cmdExport(cfg, rest)
	case "config":
		cmdErr = cmdConfig(cfg, rest)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if cmdErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cmdErr)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`sceneseg - segment unfolded meshes into flat scenes

Usage:
  sceneseg [flags] <command> [file]

Commands:
  info [file]         Show face graph statistics
  segment [file]      Segment and list scenes
  export [file]       Segment and write the colored mesh (obj or yaml)
  config [save]       Print the effective config, or save it

Flags:
  -config <path>      Config file (default ./sceneseg.yaml, then user config dir)
  -threshold <deg>    Scene threshold in degrees
  -root <id>          Root face id
  -arity <n>          Vertices per face (default 4)
  -colors <mode>      random or palette
  -seed <n>           Random color seed
  -format <fmt>       obj or yaml
  -out <path>         Export path (default stdout)
  -debug              Debug logging

Examples:
  sceneseg info unfolding.json
  sceneseg -threshold 20 segment unfolding.json
  sceneseg -colors palette -out scenes.obj export unfolding.json`)
}

// inputPath returns the file named on the command line, or the configured
// unfolding file.
func inputPath(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Data.UnfoldingPath()
}

func loadGraph(cfg *config.Config, args []string) (*unfolding.FaceGraph, error) {
	path := inputPath(cfg, args)
	logger.Debug("loading unfolding data", zap.String("path", path))

	g, err := unfolding.ParseFile(path)
	if errors.Is(err, unfolding.ErrInputNotFound) {
		logger.Error("cannot load unfolding data", zap.String("path", path))
	}
	if err != nil {
		return nil, err
	}

	logger.Info("unfolding data loaded",
		zap.String("path", path),
		zap.Int("faces", g.Len()))
	return g, nil
}

// colorGenerator builds the scene color source selected by the config.
func colorGenerator(cfg *config.Config) scenes.ColorGenerator {
	if cfg.Segment.Colors == config.ColorsPalette {
		return scenes.NewPalette(0)
	}
	seed := cfg.Segment.ColorSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return scenes.NewRandomHSV(seed)
}

func runSegment(cfg *config.Config, g *unfolding.FaceGraph) (*scenes.FlattenedMesh, error) {
	return scenes.Segment(g, scenes.Options{
		Threshold: cfg.Segment.Threshold,
		RootID:    cfg.Segment.RootFace,
		Colors:    colorGenerator(cfg),
		Arity:     cfg.Segment.Arity,
	})
}

func cmdInfo(cfg *config.Config, args []string) error {
	g, err := loadGraph(cfg, args)
	if err != nil {
		return err
	}

	root := cfg.Segment.RootFace
	fmt.Printf("File:       %s\n", inputPath(cfg, args))
	fmt.Printf("Faces:      %d\n", g.Len())
	fmt.Printf("Vertices:   %d\n", g.VertexCount())
	fmt.Printf("Neighbors:  %d references\n", g.EdgeCount())

	if !g.Contains(root) {
		fmt.Printf("Root:       %d (not in graph)\n", root)
		return nil
	}

	unreachable := g.Unreachable(root)
	fmt.Printf("Root:       %d\n", root)
	fmt.Printf("Reachable:  %d\n", g.Len()-len(unreachable))
	if len(unreachable) > 0 {
		logger.Warn("faces unreachable from root",
			zap.Int("root", root),
			zap.Int("count", len(unreachable)))
		fmt.Printf("Unreachable: %s\n", formatIDs(unreachable))
	}
	return nil
}

func cmdSegment(cfg *config.Config, args []string) error {
	g, err := loadGraph(cfg, args)
	if err != nil {
		return err
	}

	m, err := runSegment(cfg, g)
	if err != nil {
		return err
	}

	fmt.Printf("Threshold: %g deg, root face %d\n", cfg.Segment.Threshold, cfg.Segment.RootFace)
	fmt.Printf("Scenes:    %d\n", m.SceneCount())
	fmt.Printf("Faces:     %d of %d\n", len(m.Faces), g.Len())
	fmt.Printf("Vertices:  %d\n", m.VertexCount())
	fmt.Println()

	for _, s := range m.Scenes() {
		fmt.Printf("  scene %-4d %s  %4d faces  %5d vertices  %s\n",
			s.Scene, s.Color.Hex(), len(s.Faces), s.Vertices, formatIDs(s.Faces))
	}
	return nil
}

func cmdExport(cfg *config.Config, args []string) error {
	g, err := loadGraph(cfg, args)
	if err != nil {
		return err
	}

	m, err := runSegment(cfg, g)
	if err != nil {
		return err
	}

	if cfg.Output.Path == "" {
		return export.Write(os.Stdout, cfg.Output.Format, m)
	}

	if err := export.WriteFile(cfg.Output.Path, cfg.Output.Format, m); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Exported: %s (%d vertices, %d scenes)\n",
		cfg.Output.Path, m.VertexCount(), m.SceneCount())
	return nil
}

func cmdConfig(cfg *config.Config, args []string) error {
	if len(args) > 0 && args[0] == "save" {
		path, err := cfg.Save()
		if err != nil {
			return err
		}
		fmt.Printf("Saved: %s\n", path)
		return nil
	}
	return cfg.Encode(os.Stdout)
}

// formatIDs prints up to maxListed ids followed by a count of the rest.
func formatIDs(ids []int) string {
	if len(ids) <= maxListed {
		return fmt.Sprint(ids)
	}
	return fmt.Sprintf("%v ... (+%d more)", ids[:maxListed], len(ids)-maxListed)
}
