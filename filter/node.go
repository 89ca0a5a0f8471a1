package filter

import (
	"context"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/pipeline"
	"github.com/rushteam/vitrine/pkg/utils"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该物品就会被过滤掉。
type FilterNode struct {
	Filters []Filter

	// OnResult 在每次 Process 结束时回调（进入数、保留数、各过滤器剔除数），可为空
	OnResult func(rctx *core.RecommendContext, in, kept int, rejected map[string]int)
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	rejected := make(map[string]int)

	for _, item := range items {
		if item == nil {
			continue
		}

		shouldFilter := false
		filterReason := ""

		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				// 过滤器出错时剔除该物品，宁缺毋滥
				ok = true
			}
			if ok {
				shouldFilter = true
				filterReason = f.Name()
				break
			}
		}

		if shouldFilter {
			rejected[filterReason]++
			item.PutLabel("filtered", utils.Label{
				Value:  "true",
				Source: filterReason,
			})
			continue
		}

		out = append(out, item)
	}

	if n.OnResult != nil {
		n.OnResult(rctx, len(items), len(out), rejected)
	}
	return out, nil
}
