package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/ieee0824/corpusprep/feature"
	"github.com/ieee0824/corpusprep/normalize"
)

func TestDefaults(t *testing.T) {
	v, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	v.Set("data-path", "/data/csj")
	v.Set("out-path", "/tmp/out")
	c, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if c.Tool != feature.ToolHTK || c.Normalize != string(normalize.Global) || c.SilDuration != 50 {
		t.Errorf("config = %+v", c)
	}
	if c.Feature != feature.DefaultConfig() {
		t.Errorf("feature = %+v, want defaults", c.Feature)
	}
	if c.AudioExt() != ".htk" {
		t.Errorf("AudioExt = %q", c.AudioExt())
	}
}

func TestFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpusprep.yaml")
	yaml := `data-path: /data/timit
out-path: /tmp/timit
tool: wav
normalize: speaker
feature:
  type: mfcc
  channels: 26
speaker-lists:
  dev: /data/timit/dev_spk.txt
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CORPUSPREP_SIL_DURATION", "20")
	t.Setenv("CORPUSPREP_FEATURE_SAMPLE_RATE", "8000")

	v, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	c, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if c.Tool != feature.ToolWAV || c.Normalize != "speaker" || c.Feature.Type != feature.TypeMFCC || c.Feature.Channels != 26 {
		t.Errorf("config = %+v", c)
	}
	if c.SilDuration != 20 || c.Feature.SampleRate != 8000 {
		t.Errorf("env overrides not applied: sil=%d rate=%d", c.SilDuration, c.Feature.SampleRate)
	}
	if c.Partitions()["dev"] != "/data/timit/dev_spk.txt" {
		t.Errorf("speaker lists = %v", c.SpeakerLists)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		DataPath:  "/d",
		OutPath:   "/o",
		Tool:      feature.ToolHTK,
		Normalize: "utterance",
		Feature:   feature.DefaultConfig(),
		LogLevel:  "debug",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		cause  error
	}{
		{"no data path", func(c *Config) { c.DataPath = "" }, nil},
		{"unknown tool", func(c *Config) { c.Tool = "librosa" }, feature.ErrUnknownTool},
		{"unknown scheme", func(c *Config) { c.Normalize = "cmvn" }, normalize.ErrUnknownScheme},
		{"negative sil", func(c *Config) { c.SilDuration = -1 }, nil},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, nil},
		{"bad feature", func(c *Config) { c.Tool = feature.ToolWAV; c.Feature.Channels = 0 }, nil},
		{"slide off frame rate", func(c *Config) { c.Tool = feature.ToolWAV; c.Feature.SlideMs = 20 }, feature.ErrFrameShift},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.cause != nil && errors.Cause(err) != tt.cause {
				t.Errorf("cause = %v, want %v", errors.Cause(err), tt.cause)
			}
		})
	}
}
