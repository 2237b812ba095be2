package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/backdrop/field"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds a field's batch and the conditions it ran under, so a
// bookmarked moment can be replayed.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	ViewportW float64 `json:"viewport_w"`
	ViewportH float64 `json:"viewport_h"`
	DPR       float64 `json:"dpr"`

	WindowEndSec float64 `json:"window_end_sec"`

	Particles []ParticleState `json:"particles"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ParticleState holds one particle in backing pixels.
type ParticleState struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VelX float64 `json:"vel_x"`
	VelY float64 `json:"vel_y"`
	Size float64 `json:"size"`
}

// NewSnapshot captures f's current batch.
func NewSnapshot(f *field.Field, seed int64, windowEndSec float64, bm *Bookmark) *Snapshot {
	v := f.Viewport()
	s := &Snapshot{
		Version:      SnapshotVersion,
		RNGSeed:      seed,
		ViewportW:    v.W,
		ViewportH:    v.H,
		DPR:          v.Scale,
		WindowEndSec: windowEndSec,
		Bookmark:     bm,
	}
	for _, p := range f.Particles() {
		s.Particles = append(s.Particles, ParticleState{
			X: p.Pos.X, Y: p.Pos.Y,
			VelX: p.Vel.X, VelY: p.Vel.Y,
			Size: p.Size,
		})
	}
	return s
}

// FieldParticles converts the saved batch for field.Restore.
func (s *Snapshot) FieldParticles() []field.Particle {
	ps := make([]field.Particle, len(s.Particles))
	for i, p := range s.Particles {
		ps[i] = field.Particle{
			Pos:  r2.Vec{X: p.X, Y: p.Y},
			Vel:  r2.Vec{X: p.VelX, Y: p.VelY},
			Size: p.Size,
		}
	}
	return ps
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename from the window end in milliseconds
	name := fmt.Sprintf("snapshot_%d", int64(snapshot.WindowEndSec*1000))
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("%s_%s", name, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
