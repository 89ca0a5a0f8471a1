package core

import "fmt"

// FeedKind 是 FeedContext 的变体标识。
type FeedKind string

const (
	FeedCatalog     FeedKind = "catalog"
	FeedPriceCapped FeedKind = "price_capped"
	FeedRental      FeedKind = "rental"
	FeedBlended     FeedKind = "blended"
)

// FeedContext 描述一次取数的场景约束，是封闭的联合类型：
// 只有本包中的 CatalogFeed / PriceCappedFeed / RentalFeed / BlendedFeed 可以实现它。
type FeedContext interface {
	Kind() FeedKind

	// Provenance 是展示商品的来源标识（解析该商品的 feed 名）
	Provenance() string

	// Constraint 返回目录查询约束
	Constraint() Constraint

	Validate() error

	sealed()
}

// Constraint 是各变体共同下推到目录查询的约束。
type Constraint struct {
	Genders      []string
	PriceCeiling *float64
	Rental       bool
}

// CatalogFeed 只读目录，可选性别约束。
type CatalogFeed struct {
	Name    string
	Genders []string
}

func (f CatalogFeed) Kind() FeedKind         { return FeedCatalog }
func (f CatalogFeed) Provenance() string     { return f.Name }
func (f CatalogFeed) Constraint() Constraint { return Constraint{Genders: f.Genders} }
func (f CatalogFeed) Validate() error        { return validateName(f.Name) }
func (CatalogFeed) sealed()                  {}

// PriceCappedFeed 只展示源币种价格严格低于 Ceiling 的目录商品。
type PriceCappedFeed struct {
	Name    string
	Genders []string
	Ceiling float64
}

func (f PriceCappedFeed) Kind() FeedKind     { return FeedPriceCapped }
func (f PriceCappedFeed) Provenance() string { return f.Name }
func (f PriceCappedFeed) Constraint() Constraint {
	c := f.Ceiling
	return Constraint{Genders: f.Genders, PriceCeiling: &c}
}
func (f PriceCappedFeed) Validate() error {
	if err := validateName(f.Name); err != nil {
		return err
	}
	if f.Ceiling <= 0 {
		return InvalidInput(ModuleEngine, fmt.Sprintf("feed %q: price ceiling must be positive", f.Name))
	}
	return nil
}
func (PriceCappedFeed) sealed() {}

// RentalFeed 只读目录，按租赁价展示。
type RentalFeed struct {
	Name    string
	Genders []string
}

func (f RentalFeed) Kind() FeedKind         { return FeedRental }
func (f RentalFeed) Provenance() string     { return f.Name }
func (f RentalFeed) Constraint() Constraint { return Constraint{Genders: f.Genders, Rental: true} }
func (f RentalFeed) Validate() error        { return validateName(f.Name) }
func (RentalFeed) sealed()                  {}

// BlendedFeed 把目录商品与用户发布的商品按 Ratio 混合。
// Ratio 是目录商品的目标占比；ExcludeSeller 为空时排除请求用户自己的商品。
type BlendedFeed struct {
	Name          string
	Genders       []string
	Ratio         float64
	Market        Market
	Rental        bool
	ExcludeSeller string
}

func (f BlendedFeed) Kind() FeedKind     { return FeedBlended }
func (f BlendedFeed) Provenance() string { return f.Name }
func (f BlendedFeed) Constraint() Constraint {
	return Constraint{Genders: f.Genders, Rental: f.Rental}
}
func (f BlendedFeed) Validate() error {
	if err := validateName(f.Name); err != nil {
		return err
	}
	if f.Ratio < 0 || f.Ratio > 1 {
		return InvalidInput(ModuleEngine, fmt.Sprintf("feed %q: blend ratio %v out of [0,1]", f.Name, f.Ratio))
	}
	if !f.Market.Valid() {
		return InvalidInput(ModuleEngine, fmt.Sprintf("feed %q: unknown market %q", f.Name, f.Market))
	}
	return nil
}
func (BlendedFeed) sealed() {}

func validateName(name string) error {
	if name == "" {
		return InvalidInput(ModuleEngine, "feed: empty name")
	}
	return nil
}
