// Package engine 是取页入口：根据亲和度选择个性化、冷启动或非个性化路径，
// 合并用户商品，并把结果装饰成展示视图。
//
// 降级顺序：个性化 → 冷启动 → 空页（has_more=false）。只有入参错误会返回 error。
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/display"
	"github.com/rushteam/vitrine/filter"
	"github.com/rushteam/vitrine/ledger"
	"github.com/rushteam/vitrine/likes"
	"github.com/rushteam/vitrine/logging"
	"github.com/rushteam/vitrine/metrics"
	"github.com/rushteam/vitrine/pkg/utils"
	"github.com/rushteam/vitrine/preference"
	"github.com/rushteam/vitrine/price"
	"github.com/rushteam/vitrine/recall"
	"github.com/rushteam/vitrine/rerank"
)

// Options 是引擎的可调参数，零值字段使用默认值。
type Options struct {
	Warm  recall.Window
	Cold  recall.Window
	Plain recall.Window

	// ShuffleHead 是个性化结果头部打散的窗口
	ShuffleHead int

	// TopPurchases 是参与相似扩展的最近购买数
	TopPurchases int

	// PurchaseWindow 是查找最近购买的时间窗口
	PurchaseWindow time.Duration

	// Timeout 限制单次取页的全部 I/O，同时是个性化路径每个召回源的上限；
	// 0 表示只使用调用方的 context
	Timeout time.Duration
}

// DefaultOptions 返回默认参数。
func DefaultOptions() Options {
	return Options{
		Warm:           recall.WarmWindow,
		Cold:           recall.ColdWindow,
		Plain:          recall.PlainWindow,
		ShuffleHead:    rerank.DefaultShuffleHead,
		TopPurchases:   recall.DefaultMaxPurchases,
		PurchaseWindow: preference.DefaultWindow,
	}
}

func (o *Options) applyDefaults() {
	d := DefaultOptions()
	if o.Warm.Multiplier <= 0 {
		o.Warm = d.Warm
	}
	if o.Cold.Multiplier <= 0 {
		o.Cold = d.Cold
	}
	if o.Plain.Multiplier <= 0 {
		o.Plain = d.Plain
	}
	if o.ShuffleHead <= 0 {
		o.ShuffleHead = d.ShuffleHead
	}
	if o.TopPurchases <= 0 {
		o.TopPurchases = d.TopPurchases
	}
	if o.PurchaseWindow <= 0 {
		o.PurchaseWindow = d.PurchaseWindow
	}
}

// Deps 是引擎依赖的协作者。Catalog、Listings、Ledger、Likes 必填。
type Deps struct {
	Catalog  core.CatalogStore
	Listings core.ListingStore
	Ledger   *ledger.Ledger
	Recorder *ledger.Recorder
	Likes    *likes.Store

	Gate       *filter.TaxonomyGate
	Admission  *filter.ExprFilter
	Aggregator *preference.Aggregator
	Deriver    *price.Deriver
	Rand       utils.Rand
	Logger     zerolog.Logger
}

// Engine 是无状态的取页引擎，可并发使用。
type Engine struct {
	catalog    core.CatalogStore
	listings   core.ListingStore
	ledger     *ledger.Ledger
	recorder   *ledger.Recorder
	likes      *likes.Store
	gate       *filter.TaxonomyGate
	admission  *filter.ExprFilter
	aggregator *preference.Aggregator
	decorator  *display.Decorator
	rand       utils.Rand
	opts       Options
	log        zerolog.Logger
}

// New 组装引擎；缺省的 Gate、准入规则、聚合器、价格推导器与随机源使用默认实现。
//
//nolint:gocritic // Deps is a one-off construction bag
func New(deps Deps, opts Options) (*Engine, error) {
	if deps.Catalog == nil || deps.Listings == nil || deps.Ledger == nil || deps.Likes == nil {
		return nil, errors.New("engine: catalog, listings, ledger and likes are required")
	}
	opts.applyDefaults()

	if deps.Gate == nil {
		deps.Gate = filter.NewTaxonomyGate(nil)
	}
	if deps.Admission == nil {
		adm, err := filter.NewExprFilter("")
		if err != nil {
			return nil, err
		}
		deps.Admission = adm
	}
	if deps.Aggregator == nil {
		deps.Aggregator = preference.NewAggregator(deps.Ledger, deps.Catalog, deps.Gate)
	}
	if deps.Rand == nil {
		deps.Rand = utils.NewTimeRand()
	}

	return &Engine{
		catalog:    deps.Catalog,
		listings:   deps.Listings,
		ledger:     deps.Ledger,
		recorder:   deps.Recorder,
		likes:      deps.Likes,
		gate:       deps.Gate,
		admission:  deps.Admission,
		aggregator: deps.Aggregator,
		decorator:  display.New(deps.Deriver, deps.Rand),
		rand:       deps.Rand,
		opts:       opts,
		log:        logging.WithComponent(deps.Logger, "engine"),
	}, nil
}

// Gate 返回引擎使用的类目白名单。
func (e *Engine) Gate() *filter.TaxonomyGate { return e.gate }

// Decorator 返回引擎使用的展示装饰器。
func (e *Engine) Decorator() *display.Decorator { return e.decorator }

// NextPage 是 GetPage 的便捷形式。
func (e *Engine) NextPage(ctx context.Context, userID string, feed core.FeedContext, page, pageSize int) (core.RetrievalResult, error) {
	return e.GetPage(ctx, core.RetrievalRequest{UserID: userID, Feed: feed, Page: page, PageSize: pageSize})
}

// GetPage 返回一页展示商品。has_more 是启发式信号：本页非空即为 true。
//
//nolint:gocritic // RetrievalRequest is passed by value as the public request type
func (e *Engine) GetPage(ctx context.Context, req core.RetrievalRequest) (core.RetrievalResult, error) {
	if err := req.Validate(); err != nil {
		return core.RetrievalResult{}, err
	}
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	feedName := req.Feed.Provenance()

	var (
		items []*core.Item
		path  string
	)
	if blended, ok := req.Feed.(core.BlendedFeed); ok {
		items, path = e.blended(ctx, req, blended)
	} else {
		items, path = e.catalogPage(ctx, req, req.PageSize)
	}

	c := req.Feed.Constraint()
	res := core.RetrievalResult{
		Items: e.decorator.Decorate(items, display.Options{
			Source: feedName,
			Rental: c.Rental,
			Style:  req.Style,
		}),
		Path: path,
	}
	res.HasMore = core.ContinueIf(len(res.Items))

	metrics.PageDuration.WithLabelValues(feedName, path).Observe(time.Since(start).Seconds())
	metrics.PagesTotal.WithLabelValues(feedName, path).Inc()
	metrics.PageItems.WithLabelValues(feedName).Observe(float64(len(res.Items)))
	logging.Ctx(ctx, e.log).Debug().
		Str("user_id", req.UserID).
		Str("feed", feedName).
		Int("page", req.Page).
		Str("path", path).
		Int("returned", len(res.Items)).
		Dur("elapsed", time.Since(start)).
		Msg("page served")
	return res, nil
}

// catalogPage 读取目录商品，按降级顺序尝试各路径。size 是本页目录商品的配额。
//
//nolint:gocritic // RetrievalRequest is passed by value as the public request type
func (e *Engine) catalogPage(ctx context.Context, req core.RetrievalRequest, size int) ([]*core.Item, string) {
	feedName := req.Feed.Provenance()
	log := logging.Ctx(ctx, e.log).With().
		Str("user_id", req.UserID).
		Str("feed", feedName).
		Int("page", req.Page).
		Logger()

	if req.Plain {
		items, err := e.runPlain(ctx, req, size)
		if err != nil {
			e.fallback(&log, feedName, core.PathPlain, core.PathEmpty, err)
			return nil, core.PathEmpty
		}
		return items, core.PathPlain
	}

	if req.UserID != "" {
		items, err := e.runWarm(ctx, req, size)
		switch {
		case err == nil && len(items) > 0:
			return items, core.PathPersonalized
		case err != nil:
			e.fallback(&log, feedName, core.PathPersonalized, core.PathCold, err)
		}
	}

	items, err := e.runCold(ctx, req, size)
	if err != nil {
		e.fallback(&log, feedName, core.PathCold, core.PathEmpty, err)
		return nil, core.PathEmpty
	}
	if len(items) == 0 {
		return nil, core.PathEmpty
	}
	return items, core.PathCold
}

// blended 并发读取目录配额与用户商品配额，合并后截断。
// 任一侧失败只影响该侧，另一侧照常返回。
//
//nolint:gocritic // RetrievalRequest is passed by value as the public request type
func (e *Engine) blended(ctx context.Context, req core.RetrievalRequest, feed core.BlendedFeed) ([]*core.Item, string) {
	catalogQuota, userQuota := rerank.Quota(req.PageSize, feed.Ratio)

	var (
		catalogItems, userItems []*core.Item
		path                    = core.PathEmpty
		eg, gctx                = errgroup.WithContext(ctx)
	)
	if catalogQuota > 0 {
		eg.Go(func() error {
			catalogItems, path = e.catalogPage(gctx, req, catalogQuota)
			return nil
		})
	}
	if userQuota > 0 {
		eg.Go(func() error {
			userItems = e.userListings(gctx, req, feed, userQuota)
			return nil
		})
	}
	_ = eg.Wait()

	merged := rerank.Blend(catalogItems, userItems, req.PageSize, e.rand)
	if len(merged) == 0 {
		return nil, core.PathEmpty
	}
	if path == core.PathEmpty {
		path = core.PathListings
	}
	return merged, path
}

func (e *Engine) fallback(log *zerolog.Logger, feed, from, to string, err error) {
	reason := "error"
	switch {
	case core.IsEmptyUpstream(err):
		// 分页读尽，属于正常结束
		metrics.FallbacksTotal.WithLabelValues(feed, from, to, "empty_upstream").Inc()
		log.Debug().Err(err).Str("from", from).Str("to", to).Msg("upstream window empty")
		return
	case core.IsUnavailable(err):
		reason = "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		reason = "timeout"
	case core.IsInvalidInput(err):
		reason = "invalid_input"
	}
	metrics.FallbacksTotal.WithLabelValues(feed, from, to, reason).Inc()
	log.Warn().Err(err).Str("from", from).Str("to", to).Str("reason", reason).Msg("retrieval fallback")
}
