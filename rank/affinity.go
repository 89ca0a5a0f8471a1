package rank

import (
	"context"
	"sort"
	"strconv"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/pipeline"
	"github.com/rushteam/vitrine/pkg/utils"
)

// AffinityNode 按类目亲和度排序。
//   - 分数：候选所属类目的亲和度（无记录为 0）；有问卷偏好时按 StyleScorer 混合
//   - 排序：分数降序，评分作为次序键
//   - 相似扩展的商品（带 similar_to label）整体置于前面，内部保持召回顺序
//   - 写入 labels：rank_score
type AffinityNode struct {
	Style *StyleScorer
}

func (n *AffinityNode) Name() string        { return "rank.affinity" }
func (n *AffinityNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *AffinityNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	var (
		pinned []*core.Item
		rest   = make([]*core.Item, 0, len(items))
	)
	for _, it := range items {
		if it == nil {
			continue
		}
		if it.Label("similar_to") != "" {
			pinned = append(pinned, it)
			continue
		}
		rest = append(rest, it)
	}

	for _, it := range rest {
		aff := rctx.AffinityOf(it.CategoryName())
		if rctx != nil && rctx.Style != nil && n.Style != nil {
			it.Score = n.Style.Blend(aff, rctx.Style, it)
		} else {
			it.Score = aff
		}
		it.PutLabel("rank_score", utils.Label{Value: strconv.FormatFloat(it.Score, 'f', 2, 64), Source: "rank"})
	}
	sortByScore(rest)

	return append(pinned, rest...), nil
}

// Rank 是不经过 Pipeline 的排序入口：按亲和度分数降序、评分次序。
func Rank(items []*core.Item, affinities []core.CategoryAffinity) []*core.Item {
	rctx := &core.RecommendContext{Affinities: affinities}
	for _, it := range items {
		it.Score = rctx.AffinityOf(it.CategoryName())
	}
	sortByScore(items)
	return items
}

func sortByScore(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Product.Rating > items[j].Product.Rating
	})
}
