package sequence

import (
	"fmt"

	"github.com/rushteam/seqkit/dataset"
)

// Container 是序列模型的输入数组：按行对齐的 user 编码、输入窗口、可选的目标窗口。
//
// 带 Targets 的容器是训练样本（一个用户通常有多行）；
// Targets 为 nil 的容器是测试集（每个用户一行）。
// L / T 分别是输入窗口与目标窗口的长度，测试集 T 为 0。
type Container struct {
	UserIDs   []int
	Sequences [][]int
	Targets   [][]int
	L         int
	T         int
}

// NewContainer 根据数组构建容器，L / T 取自第一行。
// 空数组请使用 NewEmptyContainer 以保留窗口长度。
func NewContainer(users []int, sequences, targets [][]int) *Container {
	c := &Container{UserIDs: users, Sequences: sequences, Targets: targets}
	if len(sequences) > 0 {
		c.L = len(sequences[0])
	}
	if len(targets) > 0 {
		c.T = len(targets[0])
	}
	return c
}

// NewEmptyContainer 创建 n 行、窗口长度为 l（以及目标长度 t，t 为 0 表示无目标）的容器，
// 所有窗口填充为 PaddingCode。
func NewEmptyContainer(n, l, t int) *Container {
	c := &Container{
		UserIDs:   make([]int, n),
		Sequences: newMatrix(n, l),
		L:         l,
		T:         t,
	}
	if t > 0 {
		c.Targets = newMatrix(n, t)
	}
	return c
}

// newMatrix 分配 n×cols 的矩阵，所有行共享一块连续内存。
func newMatrix(n, cols int) [][]int {
	backing := make([]int, n*cols)
	m := make([][]int, n)
	for i := range m {
		m[i] = backing[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return m
}

// Len 返回行数。
func (c *Container) Len() int {
	return len(c.UserIDs)
}

// HasTargets 报告容器是否为训练样本。
func (c *Container) HasTargets() bool {
	return c.Targets != nil
}

// Observed 报告第 i 行输入窗口是否含有真实 item（而非全部为 PaddingCode）。
func (c *Container) Observed(i int) bool {
	for _, code := range c.Sequences[i] {
		if code != dataset.PaddingCode {
			return true
		}
	}
	return false
}

// Compact 返回去掉全填充行后的副本。
func (c *Container) Compact() *Container {
	out := &Container{L: c.L, T: c.T}
	for i := range c.UserIDs {
		if !c.Observed(i) {
			continue
		}
		out.UserIDs = append(out.UserIDs, c.UserIDs[i])
		out.Sequences = append(out.Sequences, append([]int(nil), c.Sequences[i]...))
		if c.Targets != nil {
			out.Targets = append(out.Targets, append([]int(nil), c.Targets[i]...))
		}
	}
	if out.UserIDs == nil {
		out.UserIDs = []int{}
		out.Sequences = [][]int{}
		if c.Targets != nil {
			out.Targets = [][]int{}
		}
	}
	return out
}

// Validate 检查三个数组行数一致、每行长度与 L / T 一致。
func (c *Container) Validate() error {
	n := len(c.UserIDs)
	if len(c.Sequences) != n {
		return fmt.Errorf("sequences has %d rows, want %d", len(c.Sequences), n)
	}
	if c.Targets != nil && len(c.Targets) != n {
		return fmt.Errorf("targets has %d rows, want %d", len(c.Targets), n)
	}
	for i, row := range c.Sequences {
		if len(row) != c.L {
			return fmt.Errorf("sequence row %d has length %d, want %d", i, len(row), c.L)
		}
	}
	for i, row := range c.Targets {
		if len(row) != c.T {
			return fmt.Errorf("target row %d has length %d, want %d", i, len(row), c.T)
		}
	}
	return nil
}
