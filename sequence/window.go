// Package sequence 把交互表切分为序列模型的训练样本与测试窗口。
//
// 每个用户的 item 序列（保持文件顺序）用长度为 span = L + T 的窗口从最近一次交互向前滑动，
// 每个窗口拆成前 L 个 item 的输入与后 T 个 item 的目标；历史不足 span 的用户只产生一个
// 左侧填充 PaddingCode 的窗口。每个用户最近的窗口另外提供测试输入（窗口的后 L 个 item）。
package sequence

import (
	"fmt"
	"sort"

	"github.com/rushteam/seqkit/core"
	"github.com/rushteam/seqkit/dataset"
	"github.com/rushteam/seqkit/pkg/logging"
)

// ErrInvalidWindow 表示窗口或目标长度非法（必须 >= 1）。
var ErrInvalidWindow = core.NewDomainError(core.ModuleSequence, core.ErrorCodeInvalidInput, "sequence: window and target length must be >= 1")

// ValidateLengths 校验窗口长度与目标长度。
func ValidateLengths(windowLength, targetLength int) error {
	if windowLength < 1 || targetLength < 1 {
		return fmt.Errorf("window_length=%d target_length=%d: %w", windowLength, targetLength, ErrInvalidWindow)
	}
	return nil
}

// Build 生成训练容器与测试容器。
//
// 调用前若 table 尚未序列编码，会先执行 EncodeSequence（修改 table）。
// 训练容器每个窗口一行；测试容器共 NumUsers 行，第 u 行属于用户 u，
// 没有任何交互的用户保留全 PaddingCode 的行（可用 Container.Compact 去除）。
func Build(table *dataset.Interactions, windowLength, targetLength int) (train, test *Container, err error) {
	if err := ValidateLengths(windowLength, targetLength); err != nil {
		return nil, nil, err
	}
	table.EncodeSequence()

	span := windowLength + targetLength
	groups := groupByUser(table)

	numWindows := 0
	for _, g := range groups {
		numWindows += windowCount(len(g.items), span)
	}

	train = NewEmptyContainer(numWindows, windowLength, targetLength)
	test = NewEmptyContainer(table.NumUsers, windowLength, 0)
	for u := range test.UserIDs {
		test.UserIDs[u] = u
	}

	row := 0
	window := make([]int, span)
	for _, g := range groups {
		n := windowCount(len(g.items), span)
		for k := 0; k < n; k++ {
			fillWindow(window, g.items, k)
			if k == 0 {
				copy(test.Sequences[g.user], window[span-windowLength:])
			}
			train.UserIDs[row] = g.user
			copy(train.Sequences[row], window[:windowLength])
			copy(train.Targets[row], window[span-targetLength:])
			row++
		}
	}

	logging.Debug().
		Int("users", len(groups)).
		Int("train_rows", train.Len()).
		Int("test_rows", test.Len()).
		Int("span", span).
		Msg("sequences built")
	return train, test, nil
}

type userGroup struct {
	user  int
	items []int
}

// groupByUser 按 user 编码稳定排序，组内保持原始文件顺序。
func groupByUser(table *dataset.Interactions) []userGroup {
	order := make([]int, table.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return table.UserIDs[order[a]] < table.UserIDs[order[b]]
	})

	var groups []userGroup
	for _, idx := range order {
		u := table.UserIDs[idx]
		if len(groups) == 0 || groups[len(groups)-1].user != u {
			groups = append(groups, userGroup{user: u})
		}
		last := &groups[len(groups)-1]
		last.items = append(last.items, table.ItemIDs[idx])
	}
	return groups
}

// windowCount 返回长度为 c 的序列产生的窗口数。
func windowCount(c, span int) int {
	if c >= span {
		return c - span + 1
	}
	return 1
}

// fillWindow 把第 k 个窗口（k=0 为最近的窗口）写入 dst。
// 序列长度 >= span 时窗口为 items[c-k-span : c-k]；否则只有 k=0，左侧填充 PaddingCode。
func fillWindow(dst, items []int, k int) {
	span, c := len(dst), len(items)
	if c >= span {
		end := c - k
		copy(dst, items[end-span:end])
		return
	}
	pad := span - c
	for i := 0; i < pad; i++ {
		dst[i] = dataset.PaddingCode
	}
	copy(dst[pad:], items)
}
