package rerank

import (
	"context"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/pipeline"
)

// TopNNode 截取前 N 个物品，通常是 Pipeline 的最后一个重排节点。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.AffinityNode{},
//	        &rerank.ShuffleNode{Head: 5, Rand: rng},
//	        &rerank.DedupNode{},
//	        &rerank.TopNNode{N: pageSize},
//	    },
//	}
type TopNNode struct {
	// N <= 0 时不截断；N 为 0 且 FromContext 为 true 时使用 rctx.PageSize
	N           int
	FromContext bool
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && n.FromContext && rctx != nil {
		limit = rctx.PageSize
	}
	return Truncate(items, limit), nil
}

// Truncate 截取前 n 个，n <= 0 时不截断。
func Truncate(items []*core.Item, n int) []*core.Item {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
