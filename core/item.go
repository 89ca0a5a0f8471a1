package core

import "github.com/rushteam/vitrine/pkg/utils"

// Item 是推荐链路中的统一承载结构：原始行、分数、元信息、标签。
// Labels 用于解释与来源追踪；Score 用于排序决策。
type Item struct {
	ID    string
	Score float64

	// Product 是目录行（用户发布的商品会投影成同样的结构）
	Product CatalogItem

	// Listing 非空表示该 Item 来自用户发布的商品
	Listing *Listing

	Meta   map[string]any
	Labels map[string]utils.Label
}

// NewItem 用一条目录行构建 Item。
func NewItem(p CatalogItem) *Item {
	return &Item{
		ID:      p.ID,
		Product: p,
		Meta:    make(map[string]any),
		Labels:  make(map[string]utils.Label),
	}
}

// NewListingItem 用一条用户发布的商品构建 Item。
func NewListingItem(l Listing) *Item {
	it := NewItem(l.Product())
	lc := l
	it.Listing = &lc
	return it
}

// IsListing 判断是否为用户发布的商品。
func (it *Item) IsListing() bool { return it.Listing != nil }

// CategoryName 返回类目名（类目缺失时为空串）。
func (it *Item) CategoryName() string {
	if it.Product.Category == nil {
		return ""
	}
	return it.Product.Category.TypeName
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Label 返回 Label 的值，不存在时返回空串。
func (it *Item) Label(key string) string {
	if it.Labels == nil {
		return ""
	}
	return it.Labels[key].Value
}
