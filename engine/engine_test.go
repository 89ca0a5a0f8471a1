package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/filter"
	"github.com/rushteam/vitrine/ledger"
	"github.com/rushteam/vitrine/likes"
	"github.com/rushteam/vitrine/metrics"
	"github.com/rushteam/vitrine/pkg/utils"
	"github.com/rushteam/vitrine/store"
)

// zeroRand 固定抖动为 0、不打散，便于断言窗口。
type zeroRand struct{}

func (zeroRand) Intn(int) int                { return 0 }
func (zeroRand) Float64() float64            { return 0 }
func (zeroRand) Shuffle(int, func(i, j int)) {}

// failingScanKV 让流水读取失败。
type failingScanKV struct {
	*store.MemoryStore
}

func (failingScanKV) ZRangeByScore(context.Context, string, float64, float64) ([]string, error) {
	return nil, errors.New("ledger down")
}

type fixture struct {
	engine   *Engine
	catalog  *store.MemoryCatalog
	ledger   *ledger.Ledger
	recorder *ledger.Recorder
	kv       *store.MemoryStore
}

func row(id, category, gender string, rating, price float64) core.CatalogItem {
	return core.CatalogItem{
		ID: id, Name: category + " " + id, Brand: "Acme", Price: price, Rating: rating,
		BaseColor: "Blue", Gender: gender, Category: &core.Category{TypeName: category}, Image: id + ".jpg",
	}
}

// mixedCatalog 返回 n 个可展示商品，每隔一个插入一个不可展示的商品。
func mixedCatalog(n int) []core.CatalogItem {
	var rows []core.CatalogItem
	for i := 0; i < n; i++ {
		cat := "Shirts"
		if i%2 == 1 {
			cat = "Jeans"
		}
		rows = append(rows, row(fmt.Sprintf("c%02d", i), cat, "Men", 5-float64(i)*0.01, 100+float64(i)*100))
		rows = append(rows, row(fmt.Sprintf("x%02d", i), "Lip Care", "Women", 5-float64(i)*0.01, 100))
	}
	return rows
}

func newFixture(t *testing.T, rows []core.CatalogItem, listings []core.Listing, rng utils.Rand, kv core.KeyValueStore) *fixture {
	t.Helper()
	mem := store.NewMemoryStore()
	t.Cleanup(func() { _ = mem.Close() })
	if kv == nil {
		kv = mem
	}
	cat := store.NewMemoryCatalog(rows, listings)
	l := ledger.New(kv)
	rec := ledger.NewRecorder(l, 16, time.Second, zerolog.Nop())
	t.Cleanup(func() { _ = rec.Close() })

	e, err := New(Deps{
		Catalog:  cat,
		Listings: cat,
		Ledger:   l,
		Recorder: rec,
		Likes:    likes.New(mem),
		Rand:     rng,
		Logger:   zerolog.Nop(),
	}, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &fixture{engine: e, catalog: cat, ledger: l, recorder: rec, kv: mem}
}

func assertGated(t *testing.T, items []core.DisplayItem) {
	t.Helper()
	gate := filter.NewTaxonomyGate(nil)
	for _, it := range items {
		c := it.Category
		if !gate.IsDisplayable(&c) {
			t.Errorf("item %s with category %q leaked through the gate", it.ID, c.TypeName)
		}
	}
}

func TestGetPageInvalidInput(t *testing.T) {
	f := newFixture(t, mixedCatalog(4), nil, zeroRand{}, nil)
	home := core.CatalogFeed{Name: "home"}

	tests := []struct {
		name string
		req  core.RetrievalRequest
	}{
		{"negative page", core.RetrievalRequest{Feed: home, Page: -1, PageSize: 10}},
		{"zero page size", core.RetrievalRequest{Feed: home, PageSize: 0}},
		{"nil feed", core.RetrievalRequest{PageSize: 10}},
		{"bad ceiling", core.RetrievalRequest{Feed: core.PriceCappedFeed{Name: "offers"}, PageSize: 10}},
		{"bad ratio", core.RetrievalRequest{Feed: core.BlendedFeed{Name: "p2p", Ratio: 1.5, Market: core.MarketP2P}, PageSize: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.GetPage(context.Background(), tt.req)
			if !core.IsInvalidInput(err) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestColdStartReturnsItems(t *testing.T) {
	f := newFixture(t, mixedCatalog(30), nil, utils.NewRand(11), nil)

	res, err := f.engine.NextPage(context.Background(), "new-user", core.CatalogFeed{Name: "home"}, 0, 10)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if len(res.Items) == 0 {
		t.Fatal("cold start returned no items")
	}
	if res.Path != core.PathCold {
		t.Errorf("Path = %q, want cold", res.Path)
	}
	if !res.HasMore.MayHaveMore() {
		t.Error("non-empty page should signal more")
	}
	assertGated(t, res.Items)
	for _, it := range res.Items {
		if it.Source != "home" {
			t.Errorf("Source = %q, want home", it.Source)
		}
	}
}

func TestPaginationTerminates(t *testing.T) {
	const pageSize = 5
	f := newFixture(t, mixedCatalog(pageSize), nil, zeroRand{}, nil)
	feed := core.CatalogFeed{Name: "home-terminates"}
	emptied := metrics.FallbacksTotal.WithLabelValues(feed.Name, core.PathCold, core.PathEmpty, "empty_upstream")
	before := testutil.ToFloat64(emptied)

	first, err := f.engine.NextPage(context.Background(), "u1", feed, 0, pageSize)
	if err != nil {
		t.Fatalf("page 0: %v", err)
	}
	if len(first.Items) != pageSize {
		t.Fatalf("page 0 len = %d, want %d", len(first.Items), pageSize)
	}

	second, err := f.engine.NextPage(context.Background(), "u1", feed, 1, pageSize)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(second.Items) != 0 || second.HasMore.MayHaveMore() {
		t.Fatalf("page 1 = %d items, has_more=%v; want 0,false", len(second.Items), second.HasMore.MayHaveMore())
	}
	if second.Path != core.PathEmpty {
		t.Errorf("Path = %q, want empty", second.Path)
	}
	if delta := testutil.ToFloat64(emptied) - before; delta != 1 {
		t.Errorf("empty_upstream fallback delta = %v, want 1", delta)
	}
}

func TestPersonalizedPath(t *testing.T) {
	rows := mixedCatalog(20)
	f := newFixture(t, rows, nil, zeroRand{}, nil)
	ctx := context.Background()

	// c00 是 Shirts，购买后 Shirts 获得亲和度
	for _, rec := range []core.InteractionRecord{
		{UserID: "u1", ItemID: "c00", Kind: core.InteractionPurchase},
		{UserID: "u1", ItemID: "c02", Kind: core.InteractionLike},
	} {
		if _, err := f.ledger.Append(ctx, rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	res, err := f.engine.GetPage(ctx, core.RetrievalRequest{UserID: "u1", Feed: core.CatalogFeed{Name: "home"}, PageSize: 6})
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if res.Path != core.PathPersonalized {
		t.Fatalf("Path = %q, want personalized", res.Path)
	}
	if len(res.Items) != 6 {
		t.Fatalf("len = %d, want 6", len(res.Items))
	}
	seen := map[string]bool{}
	shirts := 0
	for _, it := range res.Items {
		if it.ID == "c00" {
			t.Error("purchased item returned")
		}
		if seen[it.ID] {
			t.Errorf("duplicate item %s", it.ID)
		}
		seen[it.ID] = true
		if it.Category.TypeName == "Shirts" {
			shirts++
		}
	}
	if shirts < 3 {
		t.Errorf("only %d shirts in a Shirts-affine page", shirts)
	}
	assertGated(t, res.Items)
}

func TestPersonalizedRespectsFeedConstraints(t *testing.T) {
	rows := mixedCatalog(20)
	for i := 0; i < 4; i++ {
		rows = append(rows, row(fmt.Sprintf("w%02d", i), "Shirts", "Women", 4.9, 100))
	}
	f := newFixture(t, rows, nil, zeroRand{}, nil)
	ctx := context.Background()

	// c00 是 Men Shirts，价格 100；相似扩展会找到更贵的 Men Shirts
	if _, err := f.ledger.Append(ctx, core.InteractionRecord{UserID: "u1", ItemID: "c00", Kind: core.InteractionPurchase}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	offers, err := f.engine.NextPage(ctx, "u1", core.PriceCappedFeed{Name: "offers", Ceiling: 500}, 0, 6)
	if err != nil {
		t.Fatalf("offers: %v", err)
	}
	if len(offers.Items) == 0 {
		t.Fatal("offers returned no items")
	}
	for _, it := range offers.Items {
		if it.ListPrice >= 500 {
			t.Errorf("offers: item %s list price %v not under ceiling", it.ID, it.ListPrice)
		}
	}

	women, err := f.engine.NextPage(ctx, "u1", core.CatalogFeed{Name: "ai", Genders: []string{"Women"}}, 0, 6)
	if err != nil {
		t.Fatalf("ai: %v", err)
	}
	if len(women.Items) == 0 {
		t.Fatal("Women feed returned no items")
	}
	for _, it := range women.Items {
		if it.Gender != "Women" {
			t.Errorf("Women feed: item %s has gender %s", it.ID, it.Gender)
		}
	}
}

func TestPaginationTerminatesForPurchasingUser(t *testing.T) {
	const pageSize = 5
	f := newFixture(t, mixedCatalog(6), nil, zeroRand{}, nil)
	ctx := context.Background()
	feed := core.CatalogFeed{Name: "home-purchaser"}

	if _, err := f.ledger.Append(ctx, core.InteractionRecord{UserID: "u1", ItemID: "c00", Kind: core.InteractionPurchase}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	first, err := f.engine.NextPage(ctx, "u1", feed, 0, pageSize)
	if err != nil {
		t.Fatalf("page 0: %v", err)
	}
	if first.Path != core.PathPersonalized || len(first.Items) == 0 {
		t.Fatalf("page 0: path = %q len = %d, want personalized items", first.Path, len(first.Items))
	}

	exhausted := -1
	for page := 1; page < 5; page++ {
		res, err := f.engine.NextPage(ctx, "u1", feed, page, pageSize)
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if !res.HasMore.MayHaveMore() {
			exhausted = page
			break
		}
	}
	if exhausted < 0 {
		t.Fatal("has_more never became false for a purchasing user")
	}
}

func TestPersonalizedExcludesAllPurchases(t *testing.T) {
	f := newFixture(t, mixedCatalog(10), nil, zeroRand{}, nil)
	ctx := context.Background()

	// 5 次购买，超过参与相似扩展的最近购买数
	bought := []string{"c00", "c01", "c02", "c03", "c04"}
	base := time.Now().Add(-time.Hour)
	for i, id := range bought {
		rec := core.InteractionRecord{UserID: "u1", ItemID: id, Kind: core.InteractionPurchase, At: base.Add(time.Duration(i) * time.Minute)}
		if _, err := f.ledger.Append(ctx, rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	res, err := f.engine.NextPage(ctx, "u1", core.CatalogFeed{Name: "home"}, 0, 10)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if res.Path != core.PathPersonalized {
		t.Fatalf("Path = %q, want personalized", res.Path)
	}
	purchased := map[string]bool{}
	for _, id := range bought {
		purchased[id] = true
	}
	for _, it := range res.Items {
		if purchased[it.ID] {
			t.Errorf("purchased item %s returned", it.ID)
		}
	}
}

func TestLedgerFailureFallsBackToCold(t *testing.T) {
	kv := failingScanKV{store.NewMemoryStore()}
	defer kv.Close()
	f := newFixture(t, mixedCatalog(10), nil, zeroRand{}, kv)

	before := testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("fallback-home", core.PathPersonalized, core.PathCold, "unavailable"))
	res, err := f.engine.NextPage(context.Background(), "u1", core.CatalogFeed{Name: "fallback-home"}, 0, 5)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if res.Path != core.PathCold || len(res.Items) == 0 {
		t.Fatalf("Path = %q, len = %d; want cold with items", res.Path, len(res.Items))
	}
	after := testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("fallback-home", core.PathPersonalized, core.PathCold, "unavailable"))
	if after-before != 1 {
		t.Errorf("fallback counter delta = %v, want 1", after-before)
	}
}

func TestCatalogFailureReturnsEmptyPage(t *testing.T) {
	f := newFixture(t, mixedCatalog(10), nil, zeroRand{}, nil)
	f.catalog.SetError(errors.New("catalog down"))

	res, err := f.engine.NextPage(context.Background(), "u1", core.CatalogFeed{Name: "home"}, 0, 5)
	if err != nil {
		t.Fatalf("store failure must not surface: %v", err)
	}
	if len(res.Items) != 0 || res.HasMore.MayHaveMore() || res.Path != core.PathEmpty {
		t.Errorf("result = %+v, want empty page", res)
	}
}

func TestPriceCappedAndRentalFeeds(t *testing.T) {
	f := newFixture(t, mixedCatalog(20), nil, zeroRand{}, nil)
	ctx := context.Background()

	res, err := f.engine.NextPage(ctx, "", core.PriceCappedFeed{Name: "offers", Ceiling: 500}, 0, 10)
	if err != nil {
		t.Fatalf("offers: %v", err)
	}
	if len(res.Items) == 0 {
		t.Fatal("offers returned no items")
	}
	for _, it := range res.Items {
		if it.ListPrice >= 500 {
			t.Errorf("item %s list price %v not under ceiling", it.ID, it.ListPrice)
		}
	}

	res, err = f.engine.NextPage(ctx, "", core.RentalFeed{Name: "rent"}, 0, 4)
	if err != nil {
		t.Fatalf("rent: %v", err)
	}
	for _, it := range res.Items {
		if !it.Rental || it.RentalPrice == nil {
			t.Errorf("item %s missing rental price", it.ID)
		}
	}
}

func TestBlendedFeed(t *testing.T) {
	now := time.Now()
	var listings []core.Listing
	for i := 0; i < 6; i++ {
		seller := "u2"
		if i%3 == 0 {
			seller = "me"
		}
		listings = append(listings, core.Listing{
			ID: fmt.Sprintf("l%d", i), SellerID: seller, Name: "Jacket", Price: 40,
			Category: &core.Category{TypeName: "Jackets"}, Market: core.MarketP2P,
			Status: core.ListingActive, CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	listings = append(listings, core.Listing{
		ID: "gated", SellerID: "u2", Name: "Lipstick", Price: 10,
		Category: &core.Category{TypeName: "Lipstick"}, Market: core.MarketP2P,
		Status: core.ListingActive, CreatedAt: now.Add(time.Minute),
	})
	f := newFixture(t, mixedCatalog(20), listings, utils.NewRand(5), nil)

	feed := core.BlendedFeed{Name: "p2p", Ratio: 0.7, Market: core.MarketP2P}
	res, err := f.engine.NextPage(context.Background(), "me", feed, 0, 10)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if len(res.Items) > 10 {
		t.Fatalf("len = %d, want <= 10", len(res.Items))
	}
	var catalog, user int
	for _, it := range res.Items {
		if it.UserItem {
			user++
			if it.SellerID == "me" {
				t.Errorf("own listing %s returned", it.ID)
			}
			continue
		}
		catalog++
	}
	if catalog < 6 || user < 2 {
		t.Errorf("catalog=%d user=%d, want roughly 7/3", catalog, user)
	}
	assertGated(t, res.Items)
}

func TestLikeReportsInteraction(t *testing.T) {
	f := newFixture(t, mixedCatalog(4), nil, zeroRand{}, nil)
	ctx := context.Background()

	created, err := f.engine.Like(ctx, "u1", "c01", "p2p")
	if err != nil || !created {
		t.Fatalf("Like = %v, %v", created, err)
	}
	if created, _ := f.engine.Like(ctx, "u1", "c01", "p2p"); created {
		t.Error("second Like should report already liked")
	}
	if liked, _ := f.engine.IsLiked(ctx, "u1", "c01"); !liked {
		t.Error("IsLiked = false after Like")
	}

	_ = f.recorder.Close()
	recs, err := f.ledger.Scan(ctx, "u1", time.Time{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(recs) != 1 || recs[0].Kind != core.InteractionLike {
		t.Errorf("ledger = %+v, want one like", recs)
	}

	res, err := f.engine.Liked(ctx, "u1", 0, 10)
	if err != nil {
		t.Fatalf("Liked: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Source != "p2p" {
		t.Errorf("Liked = %+v", res.Items)
	}

	if err := f.engine.Unlike(ctx, "u1", "c01"); err != nil {
		t.Fatalf("Unlike: %v", err)
	}
	if liked, _ := f.engine.IsLiked(ctx, "u1", "c01"); liked {
		t.Error("IsLiked = true after Unlike")
	}
}

func TestRecordInteraction(t *testing.T) {
	f := newFixture(t, mixedCatalog(2), nil, zeroRand{}, nil)
	if err := f.engine.RecordInteraction(context.Background(), "u1", "c00", "poke"); !core.IsInvalidInput(err) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
	if err := f.engine.RecordInteraction(context.Background(), "u1", "c00", "view"); err != nil {
		t.Errorf("RecordInteraction: %v", err)
	}
}
