package store

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/vitrine/core"
)

// BreakerSettings 是熔断器参数。
type BreakerSettings struct {
	Name         string
	MaxRequests  uint32        // 半开状态允许的并发请求数
	Interval     time.Duration // 关闭状态下计数重置周期
	Timeout      time.Duration // 打开后多久进入半开
	MinRequests  uint32        // 触发熔断所需的最少请求数
	FailureRatio float64       // 触发熔断的失败率

	// OnStateChange 状态变化回调，可为空
	OnStateChange func(name, from, to string)
}

// DefaultBreakerSettings 半开放 3 个请求，1 分钟窗口，30 秒恢复，≥10 次请求且失败率 ≥ 60% 时打开。
func DefaultBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{
		Name:         name,
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// BreakerCatalog 为目录与用户商品存储加熔断：打开状态下直接返回 UNAVAILABLE，
// 上游据此走降级路径，不再等待超时。
type BreakerCatalog struct {
	catalog  core.CatalogStore
	listings core.ListingStore
	cb       *gobreaker.CircuitBreaker[any]
	name     string
}

// NewBreakerCatalog 包装 catalog 与 listings（listings 可为空）。
func NewBreakerCatalog(catalog core.CatalogStore, listings core.ListingStore, s BreakerSettings) *BreakerCatalog {
	if s.Name == "" {
		s.Name = "catalog"
	}
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		// 调用方取消不算上游故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if s.OnStateChange != nil {
				s.OnStateChange(name, from.String(), to.String())
			}
		},
	})
	return &BreakerCatalog{catalog: catalog, listings: listings, cb: cb, name: s.Name}
}

// State 返回当前熔断状态（closed / half-open / open）。
func (b *BreakerCatalog) State() string { return b.cb.State().String() }

func execute[T any](b *BreakerCatalog, op string, fn func() (T, error)) (T, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, core.Unavailable(core.ModuleCatalog, b.name+": "+op+": circuit open", err)
		}
		return zero, err
	}
	typed, _ := res.(T)
	return typed, nil
}

func (b *BreakerCatalog) Window(ctx context.Context, q core.CatalogQuery) ([]core.CatalogItem, error) {
	return execute(b, "window", func() ([]core.CatalogItem, error) { return b.catalog.Window(ctx, q) })
}

func (b *BreakerCatalog) ByIDs(ctx context.Context, ids []string) ([]core.CatalogItem, error) {
	return execute(b, "by_ids", func() ([]core.CatalogItem, error) { return b.catalog.ByIDs(ctx, ids) })
}

func (b *BreakerCatalog) Search(ctx context.Context, terms []string, limit int) ([]core.CatalogItem, error) {
	return execute(b, "search", func() ([]core.CatalogItem, error) { return b.catalog.Search(ctx, terms, limit) })
}

func (b *BreakerCatalog) Listings(ctx context.Context, q core.ListingQuery) ([]core.Listing, error) {
	if b.listings == nil {
		return nil, core.ErrStoreNotSupported
	}
	return execute(b, "listings", func() ([]core.Listing, error) { return b.listings.Listings(ctx, q) })
}

func (b *BreakerCatalog) SearchListings(ctx context.Context, terms []string, limit int) ([]core.Listing, error) {
	if b.listings == nil {
		return nil, core.ErrStoreNotSupported
	}
	return execute(b, "search_listings", func() ([]core.Listing, error) { return b.listings.SearchListings(ctx, terms, limit) })
}

var (
	_ core.CatalogStore = (*BreakerCatalog)(nil)
	_ core.ListingStore = (*BreakerCatalog)(nil)
)
