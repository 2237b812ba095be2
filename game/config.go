package game

// Options holds configuration for game initialization.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	SnapshotDir    string // saves a snapshot on every bookmark when set
	Snapshot       string // snapshot file restored after setup
	Headless       bool
	ReducedMotion  bool // forces reduced motion on top of config

	// Headless viewport; zero values fall back to the screen config
	Width, Height int
	DPR           float64

	// Headless frames advanced per UpdateHeadless call
	StepsPerUpdate int
}

// Screen defaults used when the config leaves a size unset.
const (
	DefaultWidth  = 1280
	DefaultHeight = 800
	DefaultFPS    = 60
)
