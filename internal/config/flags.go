package config

import "flag"

// cliFlags holds the command-line overrides.
type cliFlags struct {
	config    *string
	debug     *bool
	input     *string
	threshold *float64
	root      *int
	arity     *int
	colors    *string
	seed      *uint64
	format    *string
	out       *string
}

var cmdFlags = registerFlags(flag.CommandLine)

// registerFlags defines the overrides on fs. Defaults are only shown in
// the usage text; a flag changes the config only when given explicitly.
func registerFlags(fs *flag.FlagSet) *cliFlags {
	d := Default()
	return &cliFlags{
		config:    fs.String("config", "", "Path to config file"),
		debug:     fs.Bool("debug", false, "Enable debug logging"),
		input:     fs.String("input", "", "Unfolding file (overrides data.unfolding_file)"),
		threshold: fs.Float64("threshold", d.Segment.Threshold, "Scene threshold in degrees"),
		root:      fs.Int("root", d.Segment.RootFace, "Root face id"),
		arity:     fs.Int("arity", d.Segment.Arity, "Vertices per face"),
		colors:    fs.String("colors", d.Segment.Colors, "Color mode: random or palette"),
		seed:      fs.Uint64("seed", 0, "Random color seed (0 = clock)"),
		format:    fs.String("format", d.Output.Format, "Export format: obj or yaml"),
		out:       fs.String("out", "", "Export path (default stdout)"),
	}
}

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *cmdFlags.config
}

// apply copies every flag that was set on fs into cfg.
func (f *cliFlags) apply(cfg *Config, fs *flag.FlagSet) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "debug":
			if *f.debug {
				cfg.Logging.Level = "debug"
			}
		case "input":
			cfg.Data.UnfoldingFile = *f.input
		case "threshold":
			cfg.Segment.Threshold = *f.threshold
		case "root":
			cfg.Segment.RootFace = *f.root
		case "arity":
			cfg.Segment.Arity = *f.arity
		case "colors":
			cfg.Segment.Colors = *f.colors
		case "seed":
			cfg.Segment.ColorSeed = *f.seed
		case "format":
			cfg.Output.Format = *f.format
		case "out":
			cfg.Output.Path = *f.out
		}
	})
}
