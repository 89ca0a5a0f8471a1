package recall

import (
	"context"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/pipeline"
)

// Listings 是用户发布商品召回，按发布时间倒序分页读取。
// 只用于混合 feed；请求用户自己的商品在存储层排除。
type Listings struct {
	Store core.ListingStore

	// Limit 是本页用户商品的配额
	Limit int
}

func (l *Listings) Name() string        { return "recall.listings" }
func (l *Listings) Kind() pipeline.Kind { return pipeline.KindRecall }

func (l *Listings) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return l.Recall(ctx, rctx)
}

// Recall 实现 Source 接口；非混合 feed 返回空。
func (l *Listings) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil {
		return nil, nil
	}
	feed, ok := rctx.Feed.(core.BlendedFeed)
	if !ok || l.Limit <= 0 {
		return nil, nil
	}
	seller := feed.ExcludeSeller
	if seller == "" {
		seller = rctx.UserID
	}
	return l.Fetch(ctx, feed.Market, seller, rctx.Page, l.Limit)
}

// Fetch 读取某市场中可展示的用户商品，窗口为 [page×limit, (page+1)×limit)。
func (l *Listings) Fetch(ctx context.Context, market core.Market, excludeSeller string, page, limit int) ([]*core.Item, error) {
	rows, err := l.Store.Listings(ctx, core.ListingQuery{
		Market:        market,
		Statuses:      core.VisibleStatuses(market),
		ExcludeSeller: excludeSeller,
		Offset:        page * limit,
		Limit:         limit,
	})
	if err != nil {
		return nil, err
	}
	items := make([]*core.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, core.NewListingItem(row))
	}
	return items, nil
}
