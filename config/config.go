// Package config provides configuration loading and access for the backdrop.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/backdrop/field"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Environment overrides.
const (
	EnvReducedMotion   = "BACKDROP_REDUCED_MOTION"
	EnvContactEndpoint = "CONTACT_ENDPOINT"
)

// Config holds all backdrop configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Field     FieldConfig     `yaml:"field"`
	Motion    MotionConfig    `yaml:"motion"`
	Terminal  TerminalConfig  `yaml:"terminal"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Contact   ContactConfig   `yaml:"contact"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds window settings for the graphical hosts.
type ScreenConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	TargetFPS  int    `yaml:"target_fps"`
	HighDPI    bool   `yaml:"high_dpi"`
	Background string `yaml:"background"` // page color behind the field
}

// FieldConfig holds the particle field constants.
type FieldConfig struct {
	Cap             int     `yaml:"cap"`
	Divisor         float64 `yaml:"divisor"`          // logical px of width per particle
	ConnectDistance float64 `yaml:"connect_distance"` // logical px, scaled by DPR
	SizeMin         float64 `yaml:"size_min"`
	SizeMax         float64 `yaml:"size_max"`
	Speed           float64 `yaml:"speed"`
	Fill            string  `yaml:"fill"`
	FillAlpha       float64 `yaml:"fill_alpha"`
	Line            string  `yaml:"line"`
	LineAlpha       float64 `yaml:"line_alpha"` // opacity at distance 0
	LineWidth       float64 `yaml:"line_width"`
	FrameIntervalMS float64 `yaml:"frame_interval_ms"`
}

// MotionConfig holds the accessibility preference hosts report.
type MotionConfig struct {
	ReducedMotion bool `yaml:"reduced_motion"`
}

// TerminalConfig holds settings for the tcell host.
type TerminalConfig struct {
	CellWidth  float64 `yaml:"cell_width"`  // logical px per column
	CellHeight float64 `yaml:"cell_height"` // logical px per row
	Background string  `yaml:"background"`
	PollMS     int     `yaml:"poll_ms"` // frame tick
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds per frame window
	PerfWindow  int     `yaml:"perf_window"`  // frames in the rolling perf average
}

// ContactConfig holds the contact form endpoint.
type ContactConfig struct {
	Endpoint   string  `yaml:"endpoint"`
	TimeoutSec float64 `yaml:"timeout_sec"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Fill               color.NRGBA   // Field.Fill with FillAlpha applied
	Line               color.NRGBA   // Field.Line, opaque
	Background         color.NRGBA   // Screen.Background
	TerminalBackground color.NRGBA   // Terminal.Background
	FrameInterval      time.Duration // Field.FrameIntervalMS
	ContactTimeout     time.Duration // Contact.TimeoutSec
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. Environment overrides
// are applied last.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}

	if err := cfg.FieldParams().Validate(); err != nil {
		return nil, fmt.Errorf("invalid field config: %w", err)
	}
	if err := cfg.Terminal.validate(); err != nil {
		return nil, fmt.Errorf("invalid terminal config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// applyEnv overlays environment variables on the loaded values.
func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvReducedMotion); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvReducedMotion, err)
		}
		c.Motion.ReducedMotion = b
	}
	if v := os.Getenv(EnvContactEndpoint); v != "" {
		c.Contact.Endpoint = v
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	var err error
	if c.Derived.Fill, err = ParseColor(c.Field.Fill, c.Field.FillAlpha); err != nil {
		return fmt.Errorf("field.fill: %w", err)
	}
	if c.Derived.Line, err = ParseColor(c.Field.Line, 1); err != nil {
		return fmt.Errorf("field.line: %w", err)
	}
	if c.Derived.Background, err = ParseColor(c.Screen.Background, 1); err != nil {
		return fmt.Errorf("screen.background: %w", err)
	}
	if c.Derived.TerminalBackground, err = ParseColor(c.Terminal.Background, 1); err != nil {
		return fmt.Errorf("terminal.background: %w", err)
	}

	c.Derived.FrameInterval = time.Duration(math.Round(c.Field.FrameIntervalMS * float64(time.Millisecond)))
	c.Derived.ContactTimeout = time.Duration(math.Round(c.Contact.TimeoutSec * float64(time.Second)))
	return nil
}

// validate rejects cell and tick sizes the terminal host cannot divide by.
func (t TerminalConfig) validate() error {
	var errs []error
	if !(t.CellWidth > 0) {
		errs = append(errs, fmt.Errorf("cell_width must be > 0, got %v", t.CellWidth))
	}
	if !(t.CellHeight > 0) {
		errs = append(errs, fmt.Errorf("cell_height must be > 0, got %v", t.CellHeight))
	}
	if t.PollMS <= 0 {
		errs = append(errs, fmt.Errorf("poll_ms must be > 0, got %d", t.PollMS))
	}
	return errors.Join(errs...)
}

// ParseColor parses a hex color ("#rrggbb" or "#rgb") and applies alpha in [0, 1].
func ParseColor(hex string, alpha float64) (color.NRGBA, error) {
	col, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parsing color %q: %w", hex, err)
	}
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	r, g, b := col.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}, nil
}

// HexColor formats c as "#rrggbb", dropping alpha.
func HexColor(c color.NRGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// FieldParams converts the field section into simulator constants.
func (c *Config) FieldParams() field.Params {
	return field.Params{
		Cap:             c.Field.Cap,
		Divisor:         c.Field.Divisor,
		ConnectDistance: c.Field.ConnectDistance,
		SizeMin:         c.Field.SizeMin,
		SizeMax:         c.Field.SizeMax,
		Speed:           c.Field.Speed,
		Fill:            c.Derived.Fill,
		Line:            c.Derived.Line,
		LineAlpha:       c.Field.LineAlpha,
		LineWidth:       c.Field.LineWidth,
		FrameInterval:   c.Derived.FrameInterval,
	}
}

// SetFieldParams writes simulator constants back into the field section,
// so WriteYAML records what a tuning session settled on.
func (c *Config) SetFieldParams(p field.Params) {
	c.Field.Cap = p.Cap
	c.Field.Divisor = p.Divisor
	c.Field.ConnectDistance = p.ConnectDistance
	c.Field.SizeMin = p.SizeMin
	c.Field.SizeMax = p.SizeMax
	c.Field.Speed = p.Speed
	c.Field.Fill = HexColor(p.Fill)
	c.Field.FillAlpha = float64(p.Fill.A) / 255
	c.Field.Line = HexColor(p.Line)
	c.Field.LineAlpha = p.LineAlpha
	c.Field.LineWidth = p.LineWidth
	c.Field.FrameIntervalMS = float64(p.FrameInterval) / float64(time.Millisecond)

	c.Derived.Fill = p.Fill
	c.Derived.Line = p.Line
	c.Derived.FrameInterval = p.FrameInterval
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
