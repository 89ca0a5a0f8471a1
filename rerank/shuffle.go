package rerank

import (
	"context"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/pipeline"
	"github.com/rushteam/vitrine/pkg/utils"
)

// DefaultShuffleHead 是局部打散的窗口大小
const DefaultShuffleHead = 5

// ShuffleNode 打散列表头部，避免重复请求时总是看到相同的前几个商品。
// Head < 0 表示整体打散（冷启动路径），0 使用 DefaultShuffleHead。
type ShuffleNode struct {
	Head int
	Rand utils.Rand
}

func (n *ShuffleNode) Name() string {
	return "rerank.shuffle"
}

func (n *ShuffleNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *ShuffleNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Rand == nil {
		return items, nil
	}
	switch {
	case n.Head < 0:
		Shuffle(items, n.Rand)
	case n.Head == 0:
		PartialShuffle(items, DefaultShuffleHead, n.Rand)
	default:
		PartialShuffle(items, n.Head, n.Rand)
	}
	return items, nil
}

// PartialShuffle 对前 min(head, len) 个元素做 Fisher–Yates，其余保持原顺序。
func PartialShuffle(items []*core.Item, head int, rng utils.Rand) {
	n := head
	if n > len(items) {
		n = len(items)
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Shuffle 整体打散。
func Shuffle(items []*core.Item, rng utils.Rand) {
	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}
