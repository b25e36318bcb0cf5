package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rushteam/seqkit/core"
	"github.com/rushteam/seqkit/dataset"
)

// DefaultVocabPrefix 是词表 Hash key 的默认前缀
const DefaultVocabPrefix = "seqkit:vocab"

// ErrVocabNotFound 表示指定名称的词表尚未保存
var ErrVocabNotFound = core.NewDomainError(core.ModuleVocab, core.ErrorCodeNotFound, "vocab: not found")

// Vocab 把 dataset.Registry 保存为 Hash：key 为 {Prefix}:{name}，field 为原始 ID，value 为编码。
// 用于让不同进程、不同批次的预处理共享同一套编码。
type Vocab struct {
	KV     core.KeyValueStore
	Prefix string
}

func (v *Vocab) key(name string) string {
	prefix := v.Prefix
	if prefix == "" {
		prefix = DefaultVocabPrefix
	}
	return prefix + ":" + name
}

// Save 写入整个词表。已保存的字段会被覆盖（序列编码移位后编码整体变化）。
func (v *Vocab) Save(ctx context.Context, name string, reg *dataset.Registry) error {
	m := reg.Map()
	fields := make(map[string][]byte, len(m))
	for raw, code := range m {
		fields[raw] = []byte(strconv.Itoa(code))
	}
	if err := v.KV.HMSet(ctx, v.key(name), fields); err != nil {
		return fmt.Errorf("save vocab %s to %s: %w", name, v.KV.Name(), err)
	}
	return nil
}

// Load 读取词表并恢复为 Registry；词表不存在时返回 ErrVocabNotFound。
func (v *Vocab) Load(ctx context.Context, name string) (*dataset.Registry, error) {
	fields, err := v.KV.HGetAll(ctx, v.key(name))
	if err != nil {
		return nil, fmt.Errorf("load vocab %s from %s: %w", name, v.KV.Name(), err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("vocab %s: %w", name, ErrVocabNotFound)
	}

	m := make(map[string]int, len(fields))
	for raw, b := range fields {
		code, err := strconv.Atoi(string(b))
		if err != nil {
			return nil, fmt.Errorf("vocab %s: bad code %q for %q: %w", name, b, raw, err)
		}
		m[raw] = code
	}
	reg, err := dataset.NewRegistryFrom(m)
	if err != nil {
		return nil, fmt.Errorf("vocab %s: %w", name, err)
	}
	return reg, nil
}

// Delete 删除词表。
func (v *Vocab) Delete(ctx context.Context, name string) error {
	return v.KV.Delete(ctx, v.key(name))
}
