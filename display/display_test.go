package display

import (
	"testing"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/price"
)

// scriptedRand 按顺序返回预设的 Float64，Intn 总是 0。
type scriptedRand struct {
	floats []float64
	i      int
}

func (r *scriptedRand) Intn(int) int { return 0 }
func (r *scriptedRand) Float64() float64 {
	v := r.floats[r.i%len(r.floats)]
	r.i++
	return v
}
func (r *scriptedRand) Shuffle(int, func(i, j int)) {}

func ptr(v float64) *float64 { return &v }

func TestDecorateCatalogItem(t *testing.T) {
	d := New(price.NewDeriver(0.055, 0.2), &scriptedRand{floats: []float64{0}})
	it := core.NewItem(core.CatalogItem{
		ID: "1", Name: "Blue Cotton Shirt", Price: 100, DiscountedPrice: ptr(80),
		Category: &core.Category{TypeName: "Shirts"},
	})

	tests := []struct {
		name       string
		opts       Options
		wantRental *float64
	}{
		{"catalog", Options{Source: "home"}, nil},
		{"rental", Options{Source: "rent", Rental: true}, ptr(1.10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			di := d.Item(it, tt.opts)
			if di.Price != 4.40 {
				t.Errorf("Price = %v, want 4.40", di.Price)
			}
			if di.OriginalPrice == nil || *di.OriginalPrice != 5.50 {
				t.Errorf("OriginalPrice = %v, want 5.50", di.OriginalPrice)
			}
			if di.Source != tt.opts.Source {
				t.Errorf("Source = %q", di.Source)
			}
			if di.Category.TypeName != "Shirts" {
				t.Errorf("Category = %+v", di.Category)
			}
			if di.Size != "XS" {
				t.Errorf("Size = %q, want first random size", di.Size)
			}
			switch {
			case tt.wantRental == nil && di.RentalPrice != nil:
				t.Errorf("unexpected rental price %v", *di.RentalPrice)
			case tt.wantRental != nil && (di.RentalPrice == nil || *di.RentalPrice != *tt.wantRental):
				t.Errorf("RentalPrice = %v, want %v", di.RentalPrice, *tt.wantRental)
			}
		})
	}
}

func TestDecorateListing(t *testing.T) {
	d := New(price.NewDeriver(0.055, 0.2), &scriptedRand{floats: []float64{0}})

	sold := core.NewListingItem(core.Listing{ID: "l1", SellerID: "u2", Name: "Jacket", Price: 50, Market: core.MarketP2P, Status: core.ListingSold, Sizes: []string{"L"}})
	di := d.Item(sold, Options{Source: "p2p"})
	if !di.UserItem || !di.Sold || di.Rented || di.SellerID != "u2" {
		t.Errorf("listing flags = %+v", di)
	}
	if di.Price != 50 || di.OriginalPrice != nil || di.Size != "L" {
		t.Errorf("p2p listing price/size = %v/%v/%q", di.Price, di.OriginalPrice, di.Size)
	}

	rent := core.NewListingItem(core.Listing{ID: "l2", SellerID: "u3", Name: "Saree", Price: 87.5, Market: core.MarketRent, Status: core.ListingRented})
	di = d.Item(rent, Options{})
	if !di.Rented || !di.Rental {
		t.Errorf("rent flags = %+v", di)
	}
	if di.Price != 17.5 || di.OriginalPrice == nil || *di.OriginalPrice != 87.5 {
		t.Errorf("rent price = %v original = %v", di.Price, di.OriginalPrice)
	}
	if di.Source != "rent" {
		t.Errorf("Source = %q, want market fallback", di.Source)
	}
}

func TestSmartSize(t *testing.T) {
	tests := []struct {
		name      string
		preferred string
		floats    []float64
		want      []string
	}{
		{"preferred", "M", []float64{0.1}, []string{"M"}},
		{"adjacent", "M", []float64{0.9}, []string{"S"}},
		{"smallest", "XS", []float64{0.9}, []string{"S"}},
		{"largest", "XXXL", []float64{0.9}, []string{"XXL"}},
		{"non standard", "42", []float64{0.9}, []string{"42"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SmartSize(tt.preferred, &scriptedRand{floats: tt.floats})
			if got != tt.want[0] {
				t.Errorf("SmartSize(%q) = %q, want %q", tt.preferred, got, tt.want[0])
			}
		})
	}
}
