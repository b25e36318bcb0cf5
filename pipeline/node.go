package pipeline

import (
	"context"

	"github.com/rushteam/seqkit/core"
	"github.com/rushteam/seqkit/dataset"
	"github.com/rushteam/seqkit/sequence"
)

// Kind 用于标记 Stage 类型，方便日志按阶段打点。
type Kind string

const (
	KindLoad    Kind = "load"    // 读取交互日志、分配编码
	KindWindow  Kind = "window"  // 序列编码并切分窗口
	KindExport  Kind = "export"  // 写出产物文件
	KindPersist Kind = "persist" // 持久化词表
)

// 内置 Stage 的类型名（配置中 stages 字段使用）
const (
	StageLoad   = "load"
	StageWindow = "window"
	StageExport = "export"
	StageVocab  = "vocab"
)

// Stage 是 Pipeline 的最小可扩展单元：读取并补充 State。
type Stage interface {
	Name() string
	Kind() Kind

	Process(ctx context.Context, st *State) error
}

// Deps 是构建 Stage 所需的外部依赖。
type Deps struct {
	// KV 为词表存储；为 nil 时不加载也不保存词表
	KV core.KeyValueStore
}

// State 在 Stage 之间传递，承载交互表、词表与生成的序列。
type State struct {
	Users *dataset.Registry
	Items *dataset.Registry

	Train *dataset.Interactions
	Test  *dataset.Interactions // 未配置测试集时为 nil

	TrainSequences *sequence.Container
	TestSequences  *sequence.Container

	// Files 是 export 阶段写出的文件
	Files []string
}
