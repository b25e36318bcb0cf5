package config

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rushteam/seqkit/pipeline"
)

// 内置的 load / window / export / vocab 四个阶段由 config/builders 在 init 中登记，
// cmd/seqprep 以空白导入的方式引入它；配置里的 stages 列表按名字在这里查找构建器。

type StageBuilder = pipeline.StageBuilder

var (
	defaultBuilders   = make(map[string]StageBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 以阶段名登记构建器；同名重复登记时后者覆盖前者。
func Register(typeName string, builder StageBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回已登记的阶段名，按字典序排列。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 把当前登记表复制成一个独立的 StageFactory。
func DefaultFactory() *pipeline.StageFactory {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	f := pipeline.NewStageFactory()
	for typeName, builder := range defaultBuilders {
		f.Register(typeName, builder)
	}
	return f
}

// ValidatePipelineConfig 先做 Config.Validate（训练集路径、窗口长度、词表后端），
// 再确认 stages 中每个阶段名都有构建器。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	defaultBuildersMu.RLock()
	var unknown []string
	for _, typ := range cfg.Stages {
		if _, ok := defaultBuilders[typ]; !ok {
			unknown = append(unknown, typ)
		}
	}
	defaultBuildersMu.RUnlock()

	if len(unknown) > 0 {
		return fmt.Errorf("unknown stages %s (supported: %s): %w",
			strings.Join(unknown, ", "), strings.Join(SupportedTypes(), ", "), pipeline.ErrInvalidConfig)
	}
	return nil
}

// BuildPipeline 是 seqprep build 的入口：校验通过后按 stages 顺序组装预处理流水线。
func BuildPipeline(cfg *pipeline.Config, deps pipeline.Deps) (*pipeline.Pipeline, error) {
	if err := ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	return cfg.BuildPipeline(DefaultFactory(), deps)
}
