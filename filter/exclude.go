package filter

import (
	"context"

	"github.com/rushteam/vitrine/core"
)

// ExcludeFilter 是 ID 排除过滤器。
type ExcludeFilter struct {
	// IDs 是固定排除的物品 ID
	IDs []string

	// Purchased 为 true 时排除 rctx.Purchased 中的物品
	Purchased bool

	set map[string]struct{}
}

// NewExcludeFilter 创建一个排除过滤器。
func NewExcludeFilter(ids []string, purchased bool) *ExcludeFilter {
	f := &ExcludeFilter{IDs: ids, Purchased: purchased}
	f.set = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		f.set[id] = struct{}{}
	}
	return f
}

func (f *ExcludeFilter) Name() string {
	return "filter.exclude"
}

func (f *ExcludeFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.set != nil {
		if _, ok := f.set[item.ID]; ok {
			return true, nil
		}
	} else {
		for _, id := range f.IDs {
			if item.ID == id {
				return true, nil
			}
		}
	}

	if !f.Purchased || rctx == nil {
		return false, nil
	}
	for _, id := range rctx.Purchased {
		if item.ID == id {
			return true, nil
		}
	}
	return false, nil
}
