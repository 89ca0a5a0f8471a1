package rerank

import (
	"context"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/pipeline"
)

// DedupNode 按 ID 去重，保留首次出现的物品。
// 相似扩展、亲和排序与用户商品合并后可能出现同一 ID，截断前必须去重。
// Key 可选，返回空串的物品总是保留（例如按类目打散时没有类目的商品）。
type DedupNode struct {
	Key func(it *core.Item) string
}

func (n *DedupNode) Name() string {
	return "rerank.dedup"
}

func (n *DedupNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *DedupNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	return Dedup(items, n.Key), nil
}

// Dedup 去重，key 为空时按 ID。
func Dedup(items []*core.Item, key func(it *core.Item) string) []*core.Item {
	if len(items) == 0 {
		return items
	}
	if key == nil {
		key = func(it *core.Item) string { return it.ID }
	}

	seen := make(map[string]bool, len(items))
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		k := key(it)
		if k == "" {
			out = append(out, it)
			continue
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}
