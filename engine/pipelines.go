package engine

import (
	"context"
	"time"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/filter"
	"github.com/rushteam/vitrine/metrics"
	"github.com/rushteam/vitrine/pipeline"
	"github.com/rushteam/vitrine/pkg/utils"
	"github.com/rushteam/vitrine/rank"
	"github.com/rushteam/vitrine/recall"
	"github.com/rushteam/vitrine/rerank"
)

// 相似扩展召回源的名字，失败时整个个性化路径降级
const similarSource = "recall.similar"

func (e *Engine) newContext(req core.RetrievalRequest, size int) *core.RecommendContext {
	rctx := &core.RecommendContext{
		UserID:   req.UserID,
		Feed:     req.Feed,
		Page:     req.Page,
		PageSize: size,
		Style:    req.Style,
		Params:   map[string]any{},
	}
	return rctx
}

func (e *Engine) hooks() []pipeline.Hook {
	return []pipeline.Hook{
		func(node pipeline.Node, _, _ int, elapsed time.Duration, _ error) {
			metrics.NodeDuration.WithLabelValues(node.Name(), string(node.Kind())).Observe(elapsed.Seconds())
		},
	}
}

// gateNode 是目录商品的过滤阶段：类目白名单 + 准入规则 + 额外过滤器。
func (e *Engine) gateNode(feed string, extra ...filter.Filter) *filter.FilterNode {
	filters := append([]filter.Filter{
		&filter.TaxonomyFilter{Gate: e.gate},
		e.admission,
	}, extra...)
	return &filter.FilterNode{
		Filters:  filters,
		OnResult: e.observeFilter(feed),
	}
}

func (e *Engine) observeFilter(feed string) func(rctx *core.RecommendContext, in, kept int, rejected map[string]int) {
	return func(rctx *core.RecommendContext, in, kept int, rejected map[string]int) {
		metrics.FilterRows.WithLabelValues(feed, "kept").Add(float64(kept))
		metrics.FilterRows.WithLabelValues(feed, "rejected").Add(float64(in - kept))
		for name, n := range rejected {
			metrics.FilterRejections.WithLabelValues(name).Add(float64(n))
		}
		if in > 0 {
			e.log.Debug().
				Str("user_id", rctx.UserID).
				Str("feed", feed).
				Int("page", rctx.Page).
				Int("fetched", in).
				Int("kept", kept).
				Msg("filter stage")
		}
	}
}

// runWarm 是个性化路径：相似扩展 + 排除已购的评分窗口 → 过滤 → 亲和度排序 → 头部打散。
// 没有亲和度时返回 (nil, nil)，由调用方走冷启动。
//
//nolint:gocritic // RetrievalRequest is passed by value as the public request type
func (e *Engine) runWarm(ctx context.Context, req core.RetrievalRequest, size int) ([]*core.Item, error) {
	affinities, err := e.aggregator.Affinity(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if len(affinities) == 0 {
		return nil, nil
	}
	purchases, err := e.ledger.RecentPurchases(ctx, req.UserID, e.ledger.Now().Add(-e.opts.PurchaseWindow), e.opts.TopPurchases)
	if err != nil {
		return nil, err
	}
	purchased, err := e.ledger.RecentPurchases(ctx, req.UserID, time.Time{}, 0)
	if err != nil {
		return nil, err
	}

	rctx := e.newContext(req, size)
	rctx.Affinities = affinities
	rctx.Purchases = purchases
	rctx.Purchased = purchased
	rctx.PutLabel("path", utils.Label{Value: core.PathPersonalized, Source: "engine"})

	feed := req.Feed.Provenance()
	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.Fanout{
				Sources: []recall.Source{
					&recall.Similar{Catalog: e.catalog, MaxPurchases: e.opts.TopPurchases},
					&recall.OverFetch{Catalog: e.catalog, Window: e.opts.Warm, Rand: e.rand, ExcludePurchased: true},
				},
				Dedup:    true,
				Timeout:  e.opts.Timeout,
				Critical: []string{similarSource, "recall.overfetch"},
				OnError: func(source string, err error) {
					metrics.RecallSourceErrors.WithLabelValues(source).Inc()
				},
			},
			e.gateNode(feed, filter.NewExcludeFilter(nil, true)),
			&rank.AffinityNode{Style: &rank.StyleScorer{}},
			&rerank.ShuffleNode{Head: e.opts.ShuffleHead, Rand: e.rand},
			&rerank.DedupNode{},
			&rerank.TopNNode{FromContext: true},
		},
		Hooks: e.hooks(),
	}
	return p.Run(ctx, rctx, nil)
}

// runCold 是冷启动路径：更大的抖动窗口 → 过滤 → 整体打散，不做打分。
//
//nolint:gocritic // RetrievalRequest is passed by value as the public request type
func (e *Engine) runCold(ctx context.Context, req core.RetrievalRequest, size int) ([]*core.Item, error) {
	rctx := e.newContext(req, size)
	rctx.PutLabel("path", utils.Label{Value: core.PathCold, Source: "engine"})

	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.OverFetch{Catalog: e.catalog, Window: e.opts.Cold, Rand: e.rand},
			e.gateNode(req.Feed.Provenance()),
			&rerank.ShuffleNode{Head: -1, Rand: e.rand},
			&rerank.TopNNode{FromContext: true},
		},
		Hooks: e.hooks(),
	}
	return p.Run(ctx, rctx, nil)
}

// runPlain 是非个性化分页：固定窗口、不抖动、不打散，保持评分顺序。
//
//nolint:gocritic // RetrievalRequest is passed by value as the public request type
func (e *Engine) runPlain(ctx context.Context, req core.RetrievalRequest, size int) ([]*core.Item, error) {
	rctx := e.newContext(req, size)
	rctx.PutLabel("path", utils.Label{Value: core.PathPlain, Source: "engine"})

	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.OverFetch{Catalog: e.catalog, Window: e.opts.Plain},
			e.gateNode(req.Feed.Provenance()),
			&rerank.TopNNode{FromContext: true},
		},
		Hooks: e.hooks(),
	}
	return p.Run(ctx, rctx, nil)
}

// userListings 读取混合 feed 的用户商品配额；失败时返回空。
//
//nolint:gocritic // RetrievalRequest is passed by value as the public request type
func (e *Engine) userListings(ctx context.Context, req core.RetrievalRequest, feed core.BlendedFeed, quota int) []*core.Item {
	rctx := e.newContext(req, quota)

	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.Listings{Store: e.listings, Limit: quota},
			&filter.FilterNode{
				Filters: []filter.Filter{
					&filter.ListingFilter{},
					&filter.SellerFilter{Seller: feed.ExcludeSeller},
					&filter.TaxonomyFilter{Gate: e.gate},
				},
				OnResult: e.observeFilter(feed.Name),
			},
		},
		Hooks: e.hooks(),
	}
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		e.fallback(&e.log, feed.Name, core.PathListings, core.PathEmpty, err)
		return nil
	}
	return items
}
