package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	path := writeFile(t, "seq.yaml", `
dataset:
  train: data/train.txt
  test: data/test.txt
  filter: 'size(fields) >= 2'
sequence:
  window_length: 4
  compact_test: true
output:
  dir: out
vocab:
  backend: redis
  db: 2
`)

	cfg, err := LoadFromYAML(path)
	require.NoError(t, err)

	assert.Equal(t, "data/train.txt", cfg.Dataset.Train)
	assert.Equal(t, "data/test.txt", cfg.Dataset.Test)
	assert.Equal(t, "size(fields) >= 2", cfg.Dataset.Filter)
	assert.Equal(t, 4, cfg.Sequence.WindowLength)
	assert.Equal(t, DefaultTargetLength, cfg.Sequence.TargetLength)
	assert.True(t, cfg.Sequence.CompactTest)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, VocabBackendRedis, cfg.Vocab.Backend)
	assert.Equal(t, "127.0.0.1:6379", cfg.Vocab.Addr)
	assert.Equal(t, 2, cfg.Vocab.DB)
	assert.Equal(t, []string{StageLoad, StageWindow, StageExport, StageVocab}, cfg.Stages)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromJSON(t *testing.T) {
	path := writeFile(t, "seq.json", `{
  "dataset": {"train": "t.txt"},
  "sequence": {"window_length": 2, "target_length": 1},
  "stages": ["load", "window"]
}`)

	cfg, err := LoadFromJSON(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Sequence.WindowLength)
	assert.Equal(t, 1, cfg.Sequence.TargetLength)
	assert.Equal(t, VocabBackendNone, cfg.Vocab.Backend)
	assert.Equal(t, []string{"load", "window"}, cfg.Stages)
}

func TestLoadFromYAML_Errors(t *testing.T) {
	_, err := LoadFromYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFromYAML(writeFile(t, "bad.yaml", "dataset: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_ExplicitZeroLengthsRejected(t *testing.T) {
	tests := []struct {
		name string
		load func(string) (*Config, error)
		file string
		body string
	}{
		{"yaml window", LoadFromYAML, "seq.yaml", "dataset:\n  train: t.txt\nsequence:\n  window_length: 0\n"},
		{"yaml target", LoadFromYAML, "seq.yaml", "dataset:\n  train: t.txt\nsequence:\n  target_length: 0\n"},
		{"yaml both", LoadFromYAML, "seq.yaml", "dataset:\n  train: t.txt\nsequence:\n  window_length: 0\n  target_length: 0\n"},
		{"json window", LoadFromJSON, "seq.json", `{"dataset": {"train": "t.txt"}, "sequence": {"window_length": 0}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.load(writeFile(t, tt.file, tt.body))
			require.NoError(t, err)

			err = cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestLoadFromYAML_OmittedLengthsDefault(t *testing.T) {
	cfg, err := LoadFromYAML(writeFile(t, "seq.yaml", "dataset:\n  train: t.txt\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultWindowLength, cfg.Sequence.WindowLength)
	assert.Equal(t, DefaultTargetLength, cfg.Sequence.TargetLength)
	assert.NoError(t, cfg.Validate())

	cfg.Sequence.WindowLength = 0
	cfg.ApplyDefaults()
	assert.Equal(t, 0, cfg.Sequence.WindowLength)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing train", func(c *Config) { c.Dataset.Train = "" }},
		{"zero window", func(c *Config) { c.Sequence.WindowLength = 0 }},
		{"zero target", func(c *Config) { c.Sequence.TargetLength = 0 }},
		{"negative window", func(c *Config) { c.Sequence.WindowLength = -1 }},
		{"negative target", func(c *Config) { c.Sequence.TargetLength = -3 }},
		{"bad backend", func(c *Config) { c.Vocab.Backend = "etcd" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Dataset.Train = "train.txt"
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestStageFactory_Unknown(t *testing.T) {
	f := NewStageFactory()
	_, err := f.Build("nope", DefaultConfig(), Deps{})
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Stages = []string{"nope"}
	_, err = cfg.BuildPipeline(f, Deps{})
	assert.Error(t, err)
}
