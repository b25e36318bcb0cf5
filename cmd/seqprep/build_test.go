package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/seqkit/pipeline"
)

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	train := filepath.Join(dir, "train.txt")
	require.NoError(t, os.WriteFile(train, []byte("u1 a\nu1 b\nu1 c\nu2 a\n"), 0o644))
	cfgPath := filepath.Join(dir, "seq.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("sequence:\n  window_length: 9\n  target_length: 1\n"), 0o644))
	out := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{
		"build",
		"--config", cfgPath,
		"--train", train,
		"--window", "2",
		"--out", out,
		"--log-level", "error",
	})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, stdout.String(), "Users:         2")
	assert.Contains(t, stdout.String(), "Items:         4 (incl. padding)")
	assert.Contains(t, stdout.String(), "Train rows:    2 (L=2, T=1)")
	_, err := os.Stat(filepath.Join(out, "train.json"))
	assert.NoError(t, err)
}

func TestApplyFlags_ZeroLengthsReachValidate(t *testing.T) {
	tests := []struct {
		flag  string
		check func(*pipeline.Config) int
	}{
		{"window", func(c *pipeline.Config) int { return c.Sequence.WindowLength }},
		{"target", func(c *pipeline.Config) int { return c.Sequence.TargetLength }},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flags := buildCmd.Flags()
			require.NoError(t, flags.Set(tt.flag, "0"))
			t.Cleanup(func() {
				// 恢复为合法值，避免影响同包其它用例
				_ = flags.Set(tt.flag, "1")
			})

			cfg := pipeline.DefaultConfig()
			cfg.Dataset.Train = "train.txt"
			applyFlags(buildCmd, cfg)

			assert.Equal(t, 0, tt.check(cfg))
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, pipeline.ErrInvalidConfig))
		})
	}
}
