package config

import (
	"fmt"

	"github.com/rushteam/seqkit/core"
	"github.com/rushteam/seqkit/pipeline"
	"github.com/rushteam/seqkit/store"
)

// OpenVocabStore 按配置打开词表存储；backend 为 none 时返回 (nil, nil)。
// 调用方负责 Close。
func OpenVocabStore(cfg pipeline.VocabConfig) (core.KeyValueStore, error) {
	switch cfg.Backend {
	case "", pipeline.VocabBackendNone:
		return nil, nil
	case pipeline.VocabBackendMemory:
		return store.NewMemoryStore(), nil
	case pipeline.VocabBackendRedis:
		s, err := store.NewRedisStore(cfg.Addr, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown vocab backend %q", cfg.Backend)
	}
}
