package recall

import (
	"context"
	"fmt"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/pipeline"
	"github.com/rushteam/vitrine/pkg/utils"
)

// Window 是一种取数模式的超取参数。
type Window struct {
	Multiplier int // 每页超取倍数 M
	Jitter     int // 随机抖动上界，抖动取 [0, Jitter)；0 表示不抖动
}

// 默认窗口：个性化 10×/500，冷启动 8×/1000，非个性化 5×/0
var (
	WarmWindow  = Window{Multiplier: 10, Jitter: 500}
	ColdWindow  = Window{Multiplier: 8, Jitter: 1000}
	PlainWindow = Window{Multiplier: 5}
)

// OverFetch 是评分窗口召回：因为类目白名单在取数之后才过滤，
// 每页从目录读取 pageSize × M 行，窗口起点为
//
//	page × (pageSize × M) + jitter
//
// 行按评分降序。抖动让重复的“加载更多”看起来更新鲜，代价是可能出现跳页或重复。
type OverFetch struct {
	Catalog core.CatalogStore
	Window  Window
	Rand    utils.Rand

	// ExcludePurchased 为 true 时排除 rctx.Purchased
	ExcludePurchased bool

	// Tag 用于区分同一 Pipeline 中的多个实例，默认 "recall.overfetch"
	Tag string
}

func (r *OverFetch) Name() string {
	if r.Tag != "" {
		return r.Tag
	}
	return "recall.overfetch"
}

func (r *OverFetch) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *OverFetch) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *OverFetch) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || rctx.Feed == nil {
		return nil, core.InvalidInput(core.ModuleEngine, "overfetch: feed is required")
	}
	var exclude []string
	if r.ExcludePurchased {
		exclude = rctx.Purchased
	}
	return r.Fetch(ctx, rctx.Feed, rctx.Page, rctx.PageSize, exclude)
}

// Offset 计算窗口起点与大小；jitter 由随机源决定。
func (r *OverFetch) Offset(page, pageSize int) (offset, limit, jitter int) {
	m := r.Window.Multiplier
	if m <= 0 {
		m = 1
	}
	limit = pageSize * m
	if r.Window.Jitter > 0 && r.Rand != nil {
		jitter = r.Rand.Intn(r.Window.Jitter)
	}
	return page*limit + jitter, limit, jitter
}

// Fetch 读取一个窗口的原始行（未经过滤）。
// 抖动后的窗口为空时，回退读取一次不带抖动的窗口，避免小目录在首页被整体跳过；
// 仍为空时返回 EMPTY_UPSTREAM。
func (r *OverFetch) Fetch(ctx context.Context, feed core.FeedContext, page, pageSize int, exclude []string) ([]*core.Item, error) {
	if page < 0 || pageSize <= 0 {
		return nil, core.InvalidInput(core.ModuleEngine, "overfetch: invalid page window")
	}
	c := feed.Constraint()
	offset, limit, jitter := r.Offset(page, pageSize)
	q := core.CatalogQuery{
		Genders:      c.Genders,
		PriceCeiling: c.PriceCeiling,
		ExcludeIDs:   exclude,
		Offset:       offset,
		Limit:        limit,
	}

	rows, err := r.Catalog.Window(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 && jitter > 0 {
		q.Offset = offset - jitter
		if rows, err = r.Catalog.Window(ctx, q); err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 {
		return nil, core.EmptyUpstream(core.ModuleCatalog, fmt.Sprintf("overfetch: no rows at page %d", page))
	}

	items := make([]*core.Item, 0, len(rows))
	for _, row := range rows {
		it := core.NewItem(row)
		it.Score = row.Rating
		items = append(items, it)
	}
	return items, nil
}
