// Package seqkit 把原始 user-item 交互日志转换为序列推荐模型的训练数据。
//
// 设计要点：
// - 稠密编码：user / item 原始 ID 按首次出现顺序映射为从 0 开始的连续整数，可跨批次共享
// - 填充位保留：序列编码把 item 编码整体 +1，0 作为 PaddingCode 专用于左侧填充
// - 滑动窗口：每个用户从最近一次交互向前滑动长度 L+T 的窗口，拆成输入与目标；
//   最近窗口的后 L 个 item 作为该用户的测试输入
// - Stage 可扩展：预处理由 Stage 串联（load → window → export → vocab），可通过配置驱动
package seqkit

import (
	"github.com/rushteam/seqkit/dataset"
	"github.com/rushteam/seqkit/sequence"
)

// 轻量 facade：便于用户直接 import "seqkit" 使用核心抽象。
type (
	Registry     = dataset.Registry
	Interactions = dataset.Interactions
	Container    = sequence.Container
)

const PaddingCode = dataset.PaddingCode

var (
	NewRegistry = dataset.NewRegistry
	Load        = dataset.Load
	LoadReader  = dataset.LoadReader
	Build       = sequence.Build
)
