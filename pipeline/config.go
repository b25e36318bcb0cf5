package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/seqkit/core"
)

// 默认值
const (
	DefaultWindowLength = 5
	DefaultTargetLength = 3
)

// 词表存储后端
const (
	VocabBackendNone   = "none"
	VocabBackendMemory = "memory"
	VocabBackendRedis  = "redis"
)

// Config 是预处理的配置结构（支持 YAML/JSON）。
type Config struct {
	Dataset  DatasetConfig  `yaml:"dataset" json:"dataset"`
	Sequence SequenceConfig `yaml:"sequence" json:"sequence"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Vocab    VocabConfig    `yaml:"vocab" json:"vocab"`
	Log      LogConfig      `yaml:"log" json:"log"`

	// Stages 是按顺序执行的阶段类型；为空时使用 load / window / export / vocab
	Stages []string `yaml:"stages" json:"stages"`
}

type DatasetConfig struct {
	Train  string `yaml:"train" json:"train"`   // 训练交互日志，必填
	Test   string `yaml:"test" json:"test"`     // 测试交互日志，可选，与训练集共享词表
	Filter string `yaml:"filter" json:"filter"` // CEL 行过滤表达式，可选
}

type SequenceConfig struct {
	WindowLength int `yaml:"window_length" json:"window_length"`
	TargetLength int `yaml:"target_length" json:"target_length"`
	// CompactTest 为 true 时去掉测试集中没有任何交互的用户行
	CompactTest bool `yaml:"compact_test" json:"compact_test"`
}

type OutputConfig struct {
	Dir string `yaml:"dir" json:"dir"` // 为空时不写文件
}

type VocabConfig struct {
	Backend string `yaml:"backend" json:"backend"` // none / memory / redis
	Addr    string `yaml:"addr" json:"addr"`
	DB      int    `yaml:"db" json:"db"`
	Prefix  string `yaml:"prefix" json:"prefix"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// LoadFromYAML 从 YAML 文件加载配置并补齐默认值。
// 文件解码到 DefaultConfig 之上：未出现的字段保留默认值，显式写出的 0 原样保留交给 Validate。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// LoadFromJSON 从 JSON 文件加载配置并补齐默认值。
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// DefaultConfig 返回只含默认值的配置。
func DefaultConfig() *Config {
	cfg := &Config{
		Sequence: SequenceConfig{
			WindowLength: DefaultWindowLength,
			TargetLength: DefaultTargetLength,
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults 为空字符串与空列表字段填充默认值。
// 窗口长度不在此处理：0 是非法取值而不是"未设置"，由 DefaultConfig 预填默认值。
func (c *Config) ApplyDefaults() {
	if c.Vocab.Backend == "" {
		c.Vocab.Backend = VocabBackendNone
	}
	if c.Vocab.Backend == VocabBackendRedis && c.Vocab.Addr == "" {
		c.Vocab.Addr = "127.0.0.1:6379"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Stages) == 0 {
		c.Stages = []string{StageLoad, StageWindow, StageExport, StageVocab}
	}
}

// ErrInvalidConfig 表示配置校验失败
var ErrInvalidConfig = core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "config: invalid")

// Validate 在分配任何数组之前校验配置。
func (c *Config) Validate() error {
	if c.Dataset.Train == "" {
		return fmt.Errorf("dataset.train is required: %w", ErrInvalidConfig)
	}
	if c.Sequence.WindowLength < 1 {
		return fmt.Errorf("sequence.window_length must be >= 1, got %d: %w", c.Sequence.WindowLength, ErrInvalidConfig)
	}
	if c.Sequence.TargetLength < 1 {
		return fmt.Errorf("sequence.target_length must be >= 1, got %d: %w", c.Sequence.TargetLength, ErrInvalidConfig)
	}
	switch c.Vocab.Backend {
	case VocabBackendNone, VocabBackendMemory, VocabBackendRedis:
	default:
		return fmt.Errorf("unknown vocab.backend %q: %w", c.Vocab.Backend, ErrInvalidConfig)
	}
	return nil
}

// StageFactory 用于根据类型名构建 Stage 实例。
type StageFactory struct {
	builders map[string]StageBuilder
}

// StageBuilder 根据配置与依赖构建一个 Stage。
type StageBuilder func(cfg *Config, deps Deps) (Stage, error)

func NewStageFactory() *StageFactory {
	return &StageFactory{
		builders: make(map[string]StageBuilder),
	}
}

// Register 注册 Stage 构建器。
func (f *StageFactory) Register(stageType string, builder StageBuilder) {
	f.builders[stageType] = builder
}

// Build 根据类型构建 Stage。
func (f *StageFactory) Build(stageType string, cfg *Config, deps Deps) (Stage, error) {
	builder, ok := f.builders[stageType]
	if !ok {
		return nil, fmt.Errorf("unknown stage type: %s", stageType)
	}
	return builder(cfg, deps)
}

// BuildPipeline 根据 cfg.Stages 构建 Pipeline。
// 构建器返回 nil Stage 表示该阶段在当前配置下无事可做（如未配置输出目录），直接跳过。
func (c *Config) BuildPipeline(factory *StageFactory, deps Deps) (*Pipeline, error) {
	stages := make([]Stage, 0, len(c.Stages))
	for _, typ := range c.Stages {
		stage, err := factory.Build(typ, c, deps)
		if err != nil {
			return nil, fmt.Errorf("build stage %s: %w", typ, err)
		}
		if stage != nil {
			stages = append(stages, stage)
		}
	}
	return &Pipeline{Stages: stages}, nil
}
