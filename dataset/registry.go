package dataset

import (
	"fmt"
	"sort"

	"github.com/rushteam/seqkit/core"
)

// PaddingCode 是序列编码后 item 空间中保留的填充值。
// 序列编码（EncodeSequence）把所有 item 编码整体 +1，0 从此不再分配给任何真实 item。
const PaddingCode = 0

// Registry 是原始 ID（字符串）与稠密编码（从 0 开始的整数）之间的双向映射。
//
// 编码按首次出现顺序连续分配，一经分配不再变化；唯一的例外是 ShiftAll，
// 它把全部编码一次性 +1 为 PaddingCode 让位，并由 shifted 标记保证只执行一次。
// 移位后新分配的编码从 Len()+1 开始，不会占用 PaddingCode。
//
// Registry 不是并发安全的；需要在多次加载之间共享词表时由调用方显式传入。
type Registry struct {
	codes   map[string]int
	raws    []string // raws[i] 是编码 i+offset 对应的原始 ID
	shifted bool
}

// NewRegistry 创建空的 Registry。
func NewRegistry() *Registry {
	return &Registry{codes: make(map[string]int)}
}

// ErrInvalidRegistry 表示外部映射不能作为 Registry 的初始内容
var ErrInvalidRegistry = core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput, "dataset: registry codes must be unique and contiguous")

// NewRegistryFrom 用外部已有的映射初始化 Registry，所有编码原样保留。
//
// 编码必须互不相同，且构成 [0, n) 或 [1, n] 的连续区间；
// 后者（不含 0）视为已经完成过 ShiftAll，填充位已保留。
// 其它映射（重复、负数、有空洞）返回 ErrInvalidRegistry。
func NewRegistryFrom(m map[string]int) (*Registry, error) {
	r := NewRegistry()
	if len(m) == 0 {
		return r, nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] < m[keys[j]]
		}
		return keys[i] < keys[j]
	})

	base := m[keys[0]]
	if base != 0 && base != 1 {
		return nil, fmt.Errorf("lowest code is %d: %w", base, ErrInvalidRegistry)
	}
	for i, k := range keys {
		if m[k] != base+i {
			return nil, fmt.Errorf("code %d of %q, want %d: %w", m[k], k, base+i, ErrInvalidRegistry)
		}
	}

	r.shifted = base == 1
	for _, k := range keys {
		r.Encode(k)
	}
	return r, nil
}

func (r *Registry) offset() int {
	if r.shifted {
		return 1
	}
	return 0
}

// Encode 返回 raw 的编码；raw 尚未登记时分配下一个编码。
func (r *Registry) Encode(raw string) int {
	if code, ok := r.codes[raw]; ok {
		return code
	}
	code := len(r.raws) + r.offset()
	r.codes[raw] = code
	r.raws = append(r.raws, raw)
	return code
}

// Lookup 只查询，不分配。
func (r *Registry) Lookup(raw string) (int, bool) {
	code, ok := r.codes[raw]
	return code, ok
}

// Decode 返回编码对应的原始 ID；PaddingCode（移位后）与越界编码返回 false。
func (r *Registry) Decode(code int) (string, bool) {
	i := code - r.offset()
	if i < 0 || i >= len(r.raws) {
		return "", false
	}
	return r.raws[i], true
}

// Len 返回已登记的原始 ID 个数。
func (r *Registry) Len() int {
	return len(r.raws)
}

// Size 返回编码空间宽度，即下一个将被分配的编码；移位后包含填充位。
func (r *Registry) Size() int {
	return len(r.raws) + r.offset()
}

// Shifted 报告 ShiftAll 是否已经执行过。
func (r *Registry) Shifted() bool {
	return r.shifted
}

// ShiftAll 把所有编码 +1，为 PaddingCode 让位。只在第一次调用时生效，返回是否发生了移位。
func (r *Registry) ShiftAll() bool {
	if r.shifted {
		return false
	}
	for k, v := range r.codes {
		r.codes[k] = v + 1
	}
	r.shifted = true
	return true
}

// Map 返回 raw -> code 映射的副本。
func (r *Registry) Map() map[string]int {
	out := make(map[string]int, len(r.codes))
	for k, v := range r.codes {
		out[k] = v
	}
	return out
}

// Keys 按编码顺序返回原始 ID。
func (r *Registry) Keys() []string {
	out := make([]string, len(r.raws))
	copy(out, r.raws)
	return out
}
