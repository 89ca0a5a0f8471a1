package filter

import (
	"context"

	"github.com/rushteam/vitrine/core"
)

// ListingFilter 过滤已删除或状态不可展示的用户商品；目录商品不受影响。
type ListingFilter struct{}

func (f *ListingFilter) Name() string {
	return "filter.listing"
}

func (f *ListingFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	l := item.Listing
	if l == nil {
		return false, nil
	}
	if l.Deleted {
		return true, nil
	}
	for _, s := range core.VisibleStatuses(l.Market) {
		if l.Status == s {
			return false, nil
		}
	}
	return true, nil
}
