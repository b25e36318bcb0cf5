// Package store 提供 core.KeyValueStore 的实现，以及基于它的词表持久化（Vocab）。
//
// 注意：接口定义在 core 包。
//
// 示例：
//
//	var kv core.KeyValueStore = NewMemoryStore()
//	vocab := &Vocab{KV: kv, Prefix: "seqkit:vocab"}
//	_ = vocab.Save(ctx, "items", table.Items)
package store
