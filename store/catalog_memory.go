package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rushteam/vitrine/core"
)

// MemoryCatalog 是内存实现的目录与用户商品存储，用于测试/开发。
type MemoryCatalog struct {
	mu       sync.RWMutex
	rows     []core.CatalogItem
	listings []core.Listing
	err      error
	calls    int
}

// NewMemoryCatalog 创建内存目录；rows 会被复制。
func NewMemoryCatalog(rows []core.CatalogItem, listings []core.Listing) *MemoryCatalog {
	c := &MemoryCatalog{
		rows:     append([]core.CatalogItem(nil), rows...),
		listings: append([]core.Listing(nil), listings...),
	}
	// 评分降序，同分保持插入顺序
	sort.SliceStable(c.rows, func(i, j int) bool { return c.rows[i].Rating > c.rows[j].Rating })
	sort.SliceStable(c.listings, func(i, j int) bool { return c.listings[i].CreatedAt.After(c.listings[j].CreatedAt) })
	return c
}

// SetError 使后续所有读取返回 err（nil 恢复），用于故障注入。
func (c *MemoryCatalog) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Calls 返回累计调用次数。
func (c *MemoryCatalog) Calls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calls
}

func (c *MemoryCatalog) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return unavailable("memory catalog", c.err)
	}
	return nil
}

func (c *MemoryCatalog) Window(ctx context.Context, q core.CatalogQuery) ([]core.CatalogItem, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	exclude := toSet(q.ExcludeIDs)
	genders := toSet(q.Genders)
	matched := make([]core.CatalogItem, 0, len(c.rows))
	for _, r := range c.rows {
		if _, ok := exclude[r.ID]; ok {
			continue
		}
		if len(genders) > 0 {
			if _, ok := genders[r.Gender]; !ok {
				continue
			}
		}
		if q.PriceCeiling != nil && !(r.Price < *q.PriceCeiling) {
			continue
		}
		if q.Category != "" && (r.Category == nil || r.Category.TypeName != q.Category) {
			continue
		}
		matched = append(matched, r)
	}
	return page(matched, q.Offset, q.Limit), nil
}

func (c *MemoryCatalog) ByIDs(ctx context.Context, ids []string) ([]core.CatalogItem, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	want := toSet(ids)
	var out []core.CatalogItem
	for _, r := range c.rows {
		if _, ok := want[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *MemoryCatalog) Search(ctx context.Context, terms []string, limit int) ([]core.CatalogItem, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []core.CatalogItem
	for _, r := range c.rows {
		if containsAny(terms, r.Name, r.Brand, r.Gender, r.BaseColor) {
			out = append(out, r)
		}
	}
	return page(out, 0, limit), nil
}

func (c *MemoryCatalog) Listings(ctx context.Context, q core.ListingQuery) ([]core.Listing, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	statuses := make(map[core.ListingStatus]struct{}, len(q.Statuses))
	for _, s := range q.Statuses {
		statuses[s] = struct{}{}
	}
	var out []core.Listing
	for _, l := range c.listings {
		if l.Deleted || (q.Market != "" && l.Market != q.Market) {
			continue
		}
		if q.ExcludeSeller != "" && l.SellerID == q.ExcludeSeller {
			continue
		}
		if len(statuses) > 0 {
			if _, ok := statuses[l.Status]; !ok {
				continue
			}
		}
		out = append(out, l)
	}
	return page(out, q.Offset, q.Limit), nil
}

func (c *MemoryCatalog) SearchListings(ctx context.Context, terms []string, limit int) ([]core.Listing, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []core.Listing
	for _, l := range c.listings {
		if l.Deleted {
			continue
		}
		cat := ""
		if l.Category != nil {
			cat = l.Category.TypeName
		}
		if containsAny(terms, l.Name, l.Description, l.Brand, cat) {
			out = append(out, l)
		}
	}
	return page(out, 0, limit), nil
}

var (
	_ core.CatalogStore = (*MemoryCatalog)(nil)
	_ core.ListingStore = (*MemoryCatalog)(nil)
)

func page[T any](rows []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func containsAny(terms []string, fields ...string) bool {
	for _, f := range fields {
		lf := strings.ToLower(f)
		for _, t := range terms {
			if t != "" && strings.Contains(lf, strings.ToLower(t)) {
				return true
			}
		}
	}
	return false
}
