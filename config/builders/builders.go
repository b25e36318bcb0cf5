package builders

import (
	"fmt"

	"github.com/rushteam/seqkit/config"
	"github.com/rushteam/seqkit/pipeline"
	"github.com/rushteam/seqkit/pkg/dsl"
	"github.com/rushteam/seqkit/store"
)

func init() {
	config.Register(pipeline.StageLoad, BuildLoadStage)
	config.Register(pipeline.StageWindow, BuildWindowStage)
	config.Register(pipeline.StageExport, BuildExportStage)
	config.Register(pipeline.StageVocab, BuildVocabStage)
}

func vocab(cfg *pipeline.Config, deps pipeline.Deps) *store.Vocab {
	if deps.KV == nil {
		return nil
	}
	return &store.Vocab{KV: deps.KV, Prefix: cfg.Vocab.Prefix}
}

func BuildLoadStage(cfg *pipeline.Config, deps pipeline.Deps) (pipeline.Stage, error) {
	filter, err := dsl.NewLineFilter(cfg.Dataset.Filter)
	if err != nil {
		return nil, fmt.Errorf("dataset.filter: %w", err)
	}
	return &pipeline.LoadStage{
		TrainPath: cfg.Dataset.Train,
		TestPath:  cfg.Dataset.Test,
		Filter:    filter,
		Vocab:     vocab(cfg, deps),
	}, nil
}

func BuildWindowStage(cfg *pipeline.Config, _ pipeline.Deps) (pipeline.Stage, error) {
	return &pipeline.WindowStage{
		WindowLength: cfg.Sequence.WindowLength,
		TargetLength: cfg.Sequence.TargetLength,
		CompactTest:  cfg.Sequence.CompactTest,
	}, nil
}

// BuildExportStage 未配置 output.dir 时返回 nil，跳过导出。
func BuildExportStage(cfg *pipeline.Config, _ pipeline.Deps) (pipeline.Stage, error) {
	if cfg.Output.Dir == "" {
		return nil, nil
	}
	return &pipeline.ExportStage{Dir: cfg.Output.Dir}, nil
}

// BuildVocabStage 没有词表存储时返回 nil，跳过持久化。
func BuildVocabStage(cfg *pipeline.Config, deps pipeline.Deps) (pipeline.Stage, error) {
	v := vocab(cfg, deps)
	if v == nil {
		return nil, nil
	}
	return &pipeline.VocabStage{Vocab: v}, nil
}
