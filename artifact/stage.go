package artifact

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Marker is the file whose presence means a stage directory is complete.
const Marker = "complete.txt"

// ManifestFile is written next to the marker.
const ManifestFile = "manifest.yaml"

// Stage is one output directory guarded by a completion marker.
type Stage struct {
	Dir string
}

// Done reports whether the stage finished on an earlier run.
func (s Stage) Done() bool {
	_, err := os.Stat(filepath.Join(s.Dir, Marker))
	return err == nil
}

// Reset removes any partial output and recreates the directory.
func (s Stage) Reset() error {
	if err := os.RemoveAll(s.Dir); err != nil {
		return errors.Wrapf(err, "reset %s", s.Dir)
	}
	return os.MkdirAll(s.Dir, 0o755)
}

// Finish writes the manifest and then the marker.
func (s Stage) Finish(m *Manifest) error {
	if m != nil {
		m.Finished = time.Now().UTC()
		if err := m.Save(filepath.Join(s.Dir, ManifestFile)); err != nil {
			return err
		}
	}
	f, err := create(filepath.Join(s.Dir, Marker))
	if err != nil {
		return err
	}
	return f.Close()
}

// Manifest records what a stage produced.
type Manifest struct {
	RunID      string    `yaml:"run_id"`
	Corpus     string    `yaml:"corpus"`
	Stage      string    `yaml:"stage"`
	Partition  string    `yaml:"partition"`
	Label      string    `yaml:"label,omitempty"`
	Normalize  string    `yaml:"normalize,omitempty"`
	Utterances int       `yaml:"utterances"`
	Frames     int       `yaml:"frames,omitempty"`
	Vocabulary int       `yaml:"vocabulary,omitempty"`
	OOVRate    float64   `yaml:"oov_rate,omitempty"`
	Skipped    int       `yaml:"skipped,omitempty"`
	Started    time.Time `yaml:"started"`
	Finished   time.Time `yaml:"finished"`
}

// NewRunID returns a fresh identifier shared by every manifest of a run.
func NewRunID() string { return uuid.NewString() }

// Save writes the manifest as YAML.
func (m *Manifest) Save(path string) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		f.Close()
		return errors.Wrapf(err, "write manifest %s", path)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadManifest reads a manifest written by Save.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "parse manifest %s", path)
	}
	return &m, nil
}
