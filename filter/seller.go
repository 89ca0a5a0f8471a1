package filter

import (
	"context"

	"github.com/rushteam/vitrine/core"
)

// SellerFilter 过滤掉请求用户（或 Seller 指定用户）自己发布的商品。
type SellerFilter struct {
	// Seller 非空时优先使用，否则使用 rctx.UserID
	Seller string
}

func (f *SellerFilter) Name() string {
	return "filter.seller"
}

func (f *SellerFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || item.Listing == nil {
		return false, nil
	}
	seller := f.Seller
	if seller == "" && rctx != nil {
		seller = rctx.UserID
	}
	if seller == "" {
		return false, nil
	}
	return item.Listing.SellerID == seller, nil
}
