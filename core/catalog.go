package core

import (
	"context"
	"time"
)

// Category 是目录返回的类目对象，至少包含 TypeName。
type Category struct {
	TypeName    string `json:"typeName" yaml:"type_name"`
	DisplayName string `json:"displayName,omitempty" yaml:"display_name"`
}

// CatalogItem 是外部目录中的一行商品，引擎只读不写。
type CatalogItem struct {
	ID              string    `json:"id"`
	Name            string    `json:"product_display_name"`
	Brand           string    `json:"brand_name"`
	Price           float64   `json:"price"`
	DiscountedPrice *float64  `json:"discounted_price,omitempty"`
	Rating          float64   `json:"rating"`
	BaseColor       string    `json:"base_colour"`
	Color1          string    `json:"colour1,omitempty"`
	Color2          string    `json:"colour2,omitempty"`
	Gender          string    `json:"gender"`
	Category        *Category `json:"article_type,omitempty"`
	Image           string    `json:"image_url"`
}

// Market 是用户发布商品所在的市场。
type Market string

const (
	MarketP2P  Market = "p2p"
	MarketRent Market = "rent"
)

// Valid 判断市场是否合法。
func (m Market) Valid() bool {
	return m == MarketP2P || m == MarketRent
}

// ListingStatus 是用户发布商品的状态。
type ListingStatus string

const (
	ListingActive ListingStatus = "active"
	ListingSold   ListingStatus = "active-sold"
	ListingRented ListingStatus = "active-rented"
)

// VisibleStatuses 返回某个市场中可展示的状态集合（已售/已租的商品仍然展示）。
func VisibleStatuses(m Market) []ListingStatus {
	if m == MarketRent {
		return []ListingStatus{ListingActive, ListingRented}
	}
	return []ListingStatus{ListingActive, ListingSold}
}

// Listing 是用户发布的二手/出租商品。
type Listing struct {
	ID           string        `json:"id"`
	SellerID     string        `json:"seller_id"`
	Name         string        `json:"name"`
	Brand        string        `json:"brand,omitempty"`
	Description  string        `json:"description,omitempty"`
	Price        float64       `json:"price"`
	Colors       []string      `json:"colors,omitempty"`
	Category     *Category     `json:"category,omitempty"`
	Sizes        []string      `json:"sizes,omitempty"`
	Images       []string      `json:"image_urls,omitempty"`
	Market       Market        `json:"market"`
	Status       ListingStatus `json:"status"`
	Deleted      bool          `json:"deleted"`
	QuantitySold int           `json:"quantity_sold,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// 用户商品缺省展示值
const (
	ListingDefaultBrand  = "User Item"
	ListingDefaultColor  = "Multi"
	ListingDefaultGender = "Unisex"
	ListingDefaultRating = 4.0
)

// Product 把用户商品投影成目录行结构，缺失字段使用缺省值。
func (l Listing) Product() CatalogItem {
	p := CatalogItem{
		ID:        l.ID,
		Name:      l.Name,
		Brand:     l.Brand,
		Price:     l.Price,
		Rating:    ListingDefaultRating,
		BaseColor: ListingDefaultColor,
		Gender:    ListingDefaultGender,
		Category:  l.Category,
	}
	if p.Brand == "" {
		p.Brand = ListingDefaultBrand
	}
	if len(l.Colors) > 0 {
		p.BaseColor = l.Colors[0]
	}
	if len(l.Colors) > 1 {
		p.Color1 = l.Colors[1]
	}
	if len(l.Colors) > 2 {
		p.Color2 = l.Colors[2]
	}
	if len(l.Images) > 0 {
		p.Image = l.Images[0]
	}
	return p
}

// CatalogQuery 描述一次目录窗口查询。结果总是按评分降序，再应用 Offset/Limit。
type CatalogQuery struct {
	Genders      []string // 为空表示不限
	PriceCeiling *float64 // 源币种价格上限（严格小于）
	Category     string   // 非空时只取该类目
	ExcludeIDs   []string
	Offset       int
	Limit        int
}

// CatalogStore 是外部商品目录的领域接口。
//
// 实现：
//   - store.MemoryCatalog（测试/开发）
//   - store.SQLiteCatalog（关系型目录）
//   - store.BreakerCatalog（熔断包装）
type CatalogStore interface {
	// Window 读取一个评分降序的窗口
	Window(ctx context.Context, q CatalogQuery) ([]CatalogItem, error)

	// ByIDs 批量读取，结果顺序不保证
	ByIDs(ctx context.Context, ids []string) ([]CatalogItem, error)

	// Search 按词在名称/品牌/性别/颜色中做包含匹配
	Search(ctx context.Context, terms []string, limit int) ([]CatalogItem, error)
}

// ListingQuery 描述一次用户商品查询，结果按发布时间降序。
type ListingQuery struct {
	Market        Market
	Statuses      []ListingStatus
	ExcludeSeller string
	Offset        int
	Limit         int
}

// ListingStore 是用户发布商品的领域接口。已删除的商品永远不会返回。
type ListingStore interface {
	Listings(ctx context.Context, q ListingQuery) ([]Listing, error)
	SearchListings(ctx context.Context, terms []string, limit int) ([]Listing, error)
}
