// Package display 把链路中的 Item 装饰成展示视图：价格换算、尺码、来源与用户商品状态。
package display

import (
	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/pkg/utils"
	"github.com/rushteam/vitrine/price"
)

// RandomSizes 是没有问卷尺码时随机分配的尺码
var RandomSizes = []string{"XS", "S", "M", "L", "XL"}

// PreferredSizeRatio 是按问卷尺码展示的概率，其余展示相邻尺码
const PreferredSizeRatio = 0.7

// Decorator 构建 DisplayItem。
type Decorator struct {
	Deriver *price.Deriver
	Rand    utils.Rand
}

// New 创建 Decorator。
func New(d *price.Deriver, rng utils.Rand) *Decorator {
	if d == nil {
		d = price.NewDeriver(price.DefaultRate, price.DefaultRentalFraction)
	}
	if rng == nil {
		rng = utils.NewTimeRand()
	}
	return &Decorator{Deriver: d, Rand: rng}
}

// Options 是一次装饰的场景参数。
type Options struct {
	Source string // 来源标识（feed 名）
	Rental bool   // 目录商品是否展示租赁价
	Style  *core.StyleProfile
}

// Decorate 装饰一组 Item，顺序不变。
func (d *Decorator) Decorate(items []*core.Item, opts Options) []core.DisplayItem {
	out := make([]core.DisplayItem, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, d.Item(it, opts))
	}
	return out
}

// Item 装饰单个 Item。
func (d *Decorator) Item(it *core.Item, opts Options) core.DisplayItem {
	p := it.Product
	di := core.DisplayItem{
		ID:              p.ID,
		Name:            p.Name,
		Brand:           p.Brand,
		ListPrice:       p.Price,
		DiscountedPrice: p.DiscountedPrice,
		Rating:          p.Rating,
		BaseColor:       p.BaseColor,
		Color1:          p.Color1,
		Color2:          p.Color2,
		Gender:          p.Gender,
		Image:           p.Image,
		Source:          opts.Source,
	}
	if p.Category != nil {
		di.Category = *p.Category
	}

	if it.Listing != nil {
		d.listing(&di, it.Listing, opts)
		return di
	}

	prices := d.Deriver.Derive(p.Price, p.DiscountedPrice, opts.Rental)
	di.Price = prices.Display
	di.OriginalPrice = prices.Original
	if opts.Rental {
		di.Rental = true
		di.RentalPrice = prices.Rental
	}
	di.Size = d.size(opts.Style)
	return di
}

// 用户商品价格本身即展示币种；出租市场的商品展示租赁价，原价为发布价。
func (d *Decorator) listing(di *core.DisplayItem, l *core.Listing, opts Options) {
	di.UserItem = true
	di.SellerID = l.SellerID
	di.Status = l.Status
	di.Sold = l.Status == core.ListingSold
	di.Rented = l.Status == core.ListingRented
	di.Description = l.Description
	if di.Source == "" {
		di.Source = string(l.Market)
	}

	if l.Market == core.MarketRent {
		r := d.Deriver.ListingRental(l.Price)
		orig := l.Price
		di.Rental = true
		di.Price = r
		di.RentalPrice = &r
		di.OriginalPrice = &orig
	} else {
		di.Price = l.Price
	}

	if len(l.Sizes) > 0 {
		di.Size = l.Sizes[0]
	} else {
		di.Size = d.size(opts.Style)
	}
}

func (d *Decorator) size(style *core.StyleProfile) string {
	if style != nil && style.Size != "" {
		return SmartSize(style.Size, d.Rand)
	}
	return RandomSizes[d.Rand.Intn(len(RandomSizes))]
}

// SmartSize 大多数时候返回偏好尺码，其余返回相邻尺码；非标准尺码原样返回。
func SmartSize(preferred string, rng utils.Rand) string {
	idx := core.SizeIndex(preferred)
	if idx < 0 {
		return preferred
	}
	if rng.Float64() < PreferredSizeRatio {
		return preferred
	}
	var adjacent []string
	if idx > 0 {
		adjacent = append(adjacent, core.SizeOrder[idx-1])
	}
	if idx < len(core.SizeOrder)-1 {
		adjacent = append(adjacent, core.SizeOrder[idx+1])
	}
	return adjacent[rng.Intn(len(adjacent))]
}
