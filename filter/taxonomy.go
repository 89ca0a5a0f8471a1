package filter

import (
	"context"

	"github.com/rushteam/vitrine/core"
)

// DefaultAllowList 是可展示的类目白名单（服饰/鞋/配饰/首饰的具体子类）。
func DefaultAllowList() []string {
	return []string{
		// 上装
		"Shirts", "Tshirts", "Tops", "Kurtas", "Kurtis", "Tunics",
		"Blazers", "Jackets", "Sweaters", "Sweatshirts", "Kurta Sets",
		// 下装
		"Jeans", "Trousers", "Shorts", "Track Pants", "Capris", "Leggings", "Skirts",
		// 连体
		"Dresses", "Jumpsuit", "Tracksuits", "Sarees",
		// 鞋
		"Casual Shoes", "Formal Shoes", "Sports Shoes", "Sandals", "Sports Sandals",
		"Heels", "Flats", "Flip Flops",
		// 配饰
		"Watches", "Belts", "Wallets", "Handbags", "Backpacks", "Clutches",
		"Sunglasses", "Caps", "Mufflers", "Scarves", "Dupatta", "Ties",
		// 首饰
		"Earrings", "Necklace and Chains", "Bracelet", "Ring", "Pendant", "Jewellery Set",
		// 包袋
		"Duffel Bag", "Laptop Bag", "Messenger Bag", "Travel Accessory",
	}
}

// TaxonomyGate 判断类目是否允许展示。白名单在构造时注入，之后不可变，
// 因此不同 feed 可以持有不同的 Gate。
type TaxonomyGate struct {
	allowed map[string]struct{}
}

// NewTaxonomyGate 用白名单构建 Gate；allow 为空时使用 DefaultAllowList。
func NewTaxonomyGate(allow []string) *TaxonomyGate {
	if len(allow) == 0 {
		allow = DefaultAllowList()
	}
	g := &TaxonomyGate{allowed: make(map[string]struct{}, len(allow))}
	for _, a := range allow {
		g.allowed[a] = struct{}{}
	}
	return g
}

// IsDisplayable 类目缺失、没有 TypeName 或不在白名单中时返回 false。
func (g *TaxonomyGate) IsDisplayable(c *core.Category) bool {
	if g == nil || c == nil || c.TypeName == "" {
		return false
	}
	_, ok := g.allowed[c.TypeName]
	return ok
}

// Allowed 返回白名单副本。
func (g *TaxonomyGate) Allowed() []string {
	out := make([]string, 0, len(g.allowed))
	for k := range g.allowed {
		out = append(out, k)
	}
	return out
}

// TaxonomyFilter 把 TaxonomyGate 适配为 Filter。
type TaxonomyFilter struct {
	Gate *TaxonomyGate
}

func (f *TaxonomyFilter) Name() string {
	return "filter.taxonomy"
}

func (f *TaxonomyFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return !f.Gate.IsDisplayable(item.Product.Category), nil
}
