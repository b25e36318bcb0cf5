package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rushteam/seqkit/config"
	"github.com/rushteam/seqkit/pipeline"
	"github.com/rushteam/seqkit/pkg/logging"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the interaction matrix and train/test sequences",
	Long: `Load a whitespace-separated "user item ..." log, assign dense codes,
slide fixed-length windows over every user's history and optionally write
the results as JSON and persist the vocabularies.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

var buildFlags struct {
	config    string
	train     string
	test      string
	filter    string
	window    int
	target    int
	out       string
	compact   bool
	backend   string
	addr      string
	logLevel  string
	logFormat string
}

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&buildFlags.config, "config", "c", "", "YAML or JSON config file")
	f.StringVar(&buildFlags.train, "train", "", "training interactions file")
	f.StringVar(&buildFlags.test, "test", "", "test interactions file (shares codes with --train)")
	f.StringVar(&buildFlags.filter, "filter", "", "CEL expression selecting lines to keep")
	f.IntVarP(&buildFlags.window, "window", "L", 0, "input window length")
	f.IntVarP(&buildFlags.target, "target", "T", 0, "target window length")
	f.StringVarP(&buildFlags.out, "out", "o", "", "output directory for JSON artifacts")
	f.BoolVar(&buildFlags.compact, "compact-test", false, "drop test rows of users without interactions")
	f.StringVar(&buildFlags.backend, "vocab", "", "vocabulary store: none, memory or redis")
	f.StringVar(&buildFlags.addr, "redis-addr", "", "redis address for --vocab=redis")
	f.StringVar(&buildFlags.logLevel, "log-level", "", "log level")
	f.StringVar(&buildFlags.logFormat, "log-format", "", "log format: json or console")

	rootCmd.AddCommand(buildCmd)
}

func loadConfig(path string) (*pipeline.Config, error) {
	switch {
	case path == "":
		return pipeline.DefaultConfig(), nil
	case strings.HasSuffix(path, ".json"):
		return pipeline.LoadFromJSON(path)
	default:
		return pipeline.LoadFromYAML(path)
	}
}

// applyFlags 用显式设置的命令行参数覆盖配置文件。
func applyFlags(cmd *cobra.Command, cfg *pipeline.Config) {
	flags := cmd.Flags()
	if flags.Changed("train") {
		cfg.Dataset.Train = buildFlags.train
	}
	if flags.Changed("test") {
		cfg.Dataset.Test = buildFlags.test
	}
	if flags.Changed("filter") {
		cfg.Dataset.Filter = buildFlags.filter
	}
	if flags.Changed("window") {
		cfg.Sequence.WindowLength = buildFlags.window
	}
	if flags.Changed("target") {
		cfg.Sequence.TargetLength = buildFlags.target
	}
	if flags.Changed("out") {
		cfg.Output.Dir = buildFlags.out
	}
	if flags.Changed("compact-test") {
		cfg.Sequence.CompactTest = buildFlags.compact
	}
	if flags.Changed("vocab") {
		cfg.Vocab.Backend = buildFlags.backend
	}
	if flags.Changed("redis-addr") {
		cfg.Vocab.Addr = buildFlags.addr
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = buildFlags.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = buildFlags.logFormat
	}
	cfg.ApplyDefaults()
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(buildFlags.config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(cmd, cfg)

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})

	kv, err := config.OpenVocabStore(cfg.Vocab)
	if err != nil {
		return err
	}
	if kv != nil {
		defer kv.Close()
	}

	p, err := config.BuildPipeline(cfg, pipeline.Deps{KV: kv})
	if err != nil {
		return err
	}
	st, err := p.Run(cmd.Context(), nil)
	if err != nil {
		return err
	}

	printSummary(cmd, st)
	return nil
}

func printSummary(cmd *cobra.Command, st *pipeline.State) {
	if st.Train == nil {
		return
	}
	cmd.Printf("Users:         %d\n", st.Train.NumUsers)
	if st.Train.SequenceEncoded() {
		cmd.Printf("Items:         %d (incl. padding)\n", st.Train.NumItems)
	} else {
		cmd.Printf("Items:         %d\n", st.Train.NumItems)
	}
	cmd.Printf("Interactions:  %d\n", st.Train.Len())
	if st.TrainSequences != nil {
		cmd.Printf("Train rows:    %d (L=%d, T=%d)\n", st.TrainSequences.Len(), st.TrainSequences.L, st.TrainSequences.T)
		cmd.Printf("Test rows:     %d\n", st.TestSequences.Len())
	}
	if st.Test != nil {
		cmd.Printf("Test interactions: %d\n", st.Test.Len())
	}
	for _, f := range st.Files {
		cmd.Printf("  wrote %s\n", f)
	}
}
