// Package search 是关键词搜索：不做超取补偿与亲和度混合，按词覆盖度打分。
package search

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/display"
	"github.com/rushteam/vitrine/filter"
	"github.com/rushteam/vitrine/logging"
)

// 每个来源的候选上限
const (
	DefaultCatalogLimit = 30
	DefaultListingLimit = 20

	// DefaultProvenance 是目录搜索结果的来源标识
	DefaultProvenance = "home"
)

// Searcher 在目录与用户商品中搜索，合并后按分数降序。
type Searcher struct {
	Catalog   core.CatalogStore
	Listings  core.ListingStore
	Gate      *filter.TaxonomyGate
	Decorator *display.Decorator

	CatalogLimit int
	ListingLimit int
	Provenance   string

	Logger zerolog.Logger
}

// New 创建 Searcher。
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(catalog core.CatalogStore, listings core.ListingStore, gate *filter.TaxonomyGate, d *display.Decorator, logger zerolog.Logger) *Searcher {
	return &Searcher{
		Catalog:      catalog,
		Listings:     listings,
		Gate:         gate,
		Decorator:    d,
		CatalogLimit: DefaultCatalogLimit,
		ListingLimit: DefaultListingLimit,
		Provenance:   DefaultProvenance,
		Logger:       logging.WithComponent(logger, "search"),
	}
}

// Terms 把查询按空白切分并转成小写。
func Terms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

type hit struct {
	item  *core.Item
	score int
}

// Search 返回按分数降序的展示商品。空查询返回空结果。
// 某个来源失败时只记日志；两个来源都失败才返回 UNAVAILABLE。
func (s *Searcher) Search(ctx context.Context, query string) ([]core.DisplayItem, error) {
	terms := Terms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	var (
		catalogHits, listingHits []hit
		catalogErr, listingErr   error
		eg, gctx                 = errgroup.WithContext(ctx)
	)
	eg.Go(func() error {
		catalogHits, catalogErr = s.searchCatalog(gctx, terms)
		return nil
	})
	if s.Listings != nil {
		eg.Go(func() error {
			listingHits, listingErr = s.searchListings(gctx, terms)
			return nil
		})
	}
	_ = eg.Wait()

	log := logging.Ctx(ctx, s.Logger)
	if catalogErr != nil {
		log.Warn().Err(catalogErr).Str("query", query).Msg("catalog search failed")
	}
	if listingErr != nil {
		log.Warn().Err(listingErr).Str("query", query).Msg("listing search failed")
	}
	if catalogErr != nil && (listingErr != nil || s.Listings == nil) {
		return nil, core.Unavailable(core.ModuleSearch, "search", catalogErr)
	}

	hits := append(catalogHits, listingHits...)
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]core.DisplayItem, 0, len(hits))
	for _, h := range hits {
		opts := display.Options{Source: s.Provenance}
		if h.item.IsListing() {
			opts.Source = string(h.item.Listing.Market)
		}
		out = append(out, s.Decorator.Item(h.item, opts))
	}
	return out, nil
}

func (s *Searcher) searchCatalog(ctx context.Context, terms []string) ([]hit, error) {
	rows, err := s.Catalog.Search(ctx, terms, s.CatalogLimit)
	if err != nil {
		return nil, err
	}
	hits := make([]hit, 0, len(rows))
	for _, row := range rows {
		if !s.Gate.IsDisplayable(row.Category) {
			continue
		}
		hits = append(hits, hit{item: core.NewItem(row), score: CatalogScore(row, terms)})
	}
	return hits, nil
}

func (s *Searcher) searchListings(ctx context.Context, terms []string) ([]hit, error) {
	rows, err := s.Listings.SearchListings(ctx, terms, s.ListingLimit)
	if err != nil {
		return nil, err
	}
	hits := make([]hit, 0, len(rows))
	for _, l := range rows {
		if l.Deleted || !s.Gate.IsDisplayable(l.Category) {
			continue
		}
		hits = append(hits, hit{item: core.NewListingItem(l), score: ListingScore(l, terms)})
	}
	return hits, nil
}

// CatalogScore 对每个出现在商品文本中的词：+1，名称包含 +2，品牌包含 +1，
// 主色或性别完全相等各 +1。
func CatalogScore(row core.CatalogItem, terms []string) int {
	name := strings.ToLower(row.Name)
	brand := strings.ToLower(row.Brand)
	color := strings.ToLower(row.BaseColor)
	gender := strings.ToLower(row.Gender)
	text := strings.Join([]string{name, brand, gender, color}, " ")

	score := 0
	for _, t := range terms {
		if !strings.Contains(text, t) {
			continue
		}
		score++
		if strings.Contains(name, t) {
			score += 2
		}
		if strings.Contains(brand, t) {
			score++
		}
		if color == t {
			score++
		}
		if gender == t {
			score++
		}
	}
	return score
}

// ListingScore 与 CatalogScore 类似，文本为名称/描述/品牌/类目，类目完全相等 +1。
func ListingScore(l core.Listing, terms []string) int {
	name := strings.ToLower(l.Name)
	brand := strings.ToLower(l.Brand)
	category := ""
	if l.Category != nil {
		category = strings.ToLower(l.Category.TypeName)
	}
	text := strings.Join([]string{name, strings.ToLower(l.Description), brand, category}, " ")

	score := 0
	for _, t := range terms {
		if !strings.Contains(text, t) {
			continue
		}
		score++
		if strings.Contains(name, t) {
			score += 2
		}
		if strings.Contains(brand, t) {
			score++
		}
		if category == t {
			score++
		}
	}
	return score
}
