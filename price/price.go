// Package price 负责币种换算与派生价格（折扣原价、租赁价）。
package price

import (
	"github.com/shopspring/decimal"

	"github.com/rushteam/vitrine/core"
)

const (
	// DefaultRate 是源币种到展示币种的默认汇率（INR → MYR）
	DefaultRate = 0.055

	// DefaultRentalFraction 是租赁价占换算后标价的比例
	DefaultRentalFraction = 0.20
)

// Deriver 把源币种价格换算成展示价格。所有金额保留两位小数，四舍五入（half-up）。
type Deriver struct {
	rate           decimal.Decimal
	rentalFraction decimal.Decimal
}

// NewDeriver 创建价格推导器；rate/rentalFraction 非正时使用默认值。
func NewDeriver(rate, rentalFraction float64) *Deriver {
	if rate <= 0 {
		rate = DefaultRate
	}
	if rentalFraction <= 0 {
		rentalFraction = DefaultRentalFraction
	}
	return &Deriver{
		rate:           decimal.NewFromFloat(rate),
		rentalFraction: decimal.NewFromFloat(rentalFraction),
	}
}

// Convert 换算单个金额。
func (d *Deriver) Convert(amount float64) float64 {
	return toFloat(d.convert(amount))
}

func (d *Deriver) convert(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Mul(d.rate).Round(2)
}

// Derive 推导展示价、原价与租赁价：
//   - 展示价 = 换算(折扣价)，当折扣价存在且低于标价；否则换算(标价)
//   - 原价在折扣价存在且与标价不同时给出
//   - 租赁价 = round(换算(标价) × rentalFraction, 2)，仅在 rental 为 true 时给出
func (d *Deriver) Derive(list float64, discounted *float64, rental bool) core.Prices {
	listConv := d.convert(list)

	var p core.Prices
	if discounted != nil && *discounted < list {
		p.Display = toFloat(d.convert(*discounted))
	} else {
		p.Display = toFloat(listConv)
	}
	if discounted != nil && *discounted != list {
		orig := toFloat(listConv)
		p.Original = &orig
	}

	if rental {
		r := toFloat(listConv.Mul(d.rentalFraction).Round(2))
		p.Rental = &r
	}
	return p
}

// ListingRental 是用户出租商品的租赁价：round(price × rentalFraction, 2)，价格本身已是展示币种。
func (d *Deriver) ListingRental(price float64) float64 {
	return toFloat(decimal.NewFromFloat(price).Mul(d.rentalFraction).Round(2))
}

func toFloat(v decimal.Decimal) float64 {
	f, _ := v.Float64()
	return f
}
