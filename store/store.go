// Package store 提供 core 中存储接口的实现：
//   - KV：MemoryStore、RedisStore（交互流水、喜欢列表）
//   - 目录：MemoryCatalog、SQLiteCatalog（商品目录与用户商品）
//   - BreakerCatalog：为任意目录实现加熔断
//
// 示例：
//
//	var kv core.KeyValueStore = store.NewMemoryStore()
//	var catalog core.CatalogStore = store.NewMemoryCatalog(rows, listings)
package store

import "github.com/rushteam/vitrine/core"

func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return core.Unavailable(core.ModuleStore, op, err)
}
