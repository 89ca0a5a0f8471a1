package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestFeedValidate(t *testing.T) {
	tests := []struct {
		name    string
		feed    FeedContext
		wantErr bool
	}{
		{"catalog", CatalogFeed{Name: "home"}, false},
		{"empty name", CatalogFeed{}, true},
		{"price capped", PriceCappedFeed{Name: "offers", Ceiling: 500}, false},
		{"zero ceiling", PriceCappedFeed{Name: "offers"}, true},
		{"rental", RentalFeed{Name: "rent"}, false},
		{"blended", BlendedFeed{Name: "p2p", Ratio: 0.7, Market: MarketP2P}, false},
		{"ratio above one", BlendedFeed{Name: "p2p", Ratio: 1.2, Market: MarketP2P}, true},
		{"unknown market", BlendedFeed{Name: "p2p", Ratio: 0.5, Market: "swap"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.feed.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsInvalidInput(err) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestConstraint(t *testing.T) {
	c := PriceCappedFeed{Name: "offers", Genders: []string{"Men"}, Ceiling: 500}.Constraint()
	if c.PriceCeiling == nil || *c.PriceCeiling != 500 || c.Rental {
		t.Errorf("price capped constraint = %+v", c)
	}
	if !(RentalFeed{Name: "rent"}).Constraint().Rental {
		t.Error("rental feed should request rental pricing")
	}
	if (CatalogFeed{Name: "home"}).Constraint().PriceCeiling != nil {
		t.Error("catalog feed should have no ceiling")
	}
}

func TestRetrievalRequestValidate(t *testing.T) {
	ok := RetrievalRequest{Feed: CatalogFeed{Name: "home"}, PageSize: 10}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	bad := ok
	bad.Page = -1
	if !IsInvalidInput(bad.Validate()) {
		t.Error("negative page should be INVALID_INPUT")
	}
}

func TestContinuationSignalJSON(t *testing.T) {
	tests := []struct {
		returned int
		want     string
	}{
		{0, `"has_more":false`},
		{3, `"has_more":true`},
	}
	for _, tt := range tests {
		res := RetrievalResult{HasMore: ContinueIf(tt.returned), Path: PathCold}
		data, err := json.Marshal(res)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !strings.Contains(string(data), tt.want) {
			t.Errorf("ContinueIf(%d) json = %s, want %s", tt.returned, data, tt.want)
		}
	}
}

func TestListingProductDefaults(t *testing.T) {
	l := Listing{ID: "l1", Name: "Denim Jacket", Price: 80, Colors: []string{"Blue", "Black"}, Images: []string{"a.jpg", "b.jpg"}}
	p := l.Product()
	if p.Brand != ListingDefaultBrand || p.Gender != ListingDefaultGender || p.Rating != ListingDefaultRating {
		t.Errorf("defaults not applied: %+v", p)
	}
	if p.BaseColor != "Blue" || p.Color1 != "Black" || p.Color2 != "" || p.Image != "a.jpg" {
		t.Errorf("colors/images = %+v", p)
	}
	if got := (Listing{ID: "l2"}).Product().BaseColor; got != ListingDefaultColor {
		t.Errorf("BaseColor = %q, want %q", got, ListingDefaultColor)
	}

	it := NewListingItem(l)
	if !it.IsListing() || it.Listing.ID != "l1" || it.ID != "l1" {
		t.Errorf("listing item = %+v", it)
	}
}

func TestVisibleStatuses(t *testing.T) {
	rent := VisibleStatuses(MarketRent)
	if len(rent) != 2 || rent[1] != ListingRented {
		t.Errorf("rent statuses = %v", rent)
	}
	p2p := VisibleStatuses(MarketP2P)
	if len(p2p) != 2 || p2p[1] != ListingSold {
		t.Errorf("p2p statuses = %v", p2p)
	}
}

func TestInteractionKind(t *testing.T) {
	for kind, want := range map[string]int{"view": 1, "like": 2, "purchase": 3, "share": 4} {
		k, err := ParseInteractionKind(kind)
		if err != nil {
			t.Fatalf("ParseInteractionKind(%q): %v", kind, err)
		}
		if k.Weight() != want {
			t.Errorf("%s weight = %d, want %d", kind, k.Weight(), want)
		}
	}
	if _, err := ParseInteractionKind("poke"); !IsInvalidInput(err) {
		t.Errorf("unknown kind err = %v", err)
	}
}

func TestStyleProfileGender(t *testing.T) {
	tests := []struct {
		gender string
		item   string
		want   bool
	}{
		{"Male", "Men", true},
		{"Male", "Women", false},
		{"Female", "Women", true},
		{"Non-binary", "Unisex", true},
		{"Prefer not to say", "Men", true},
		{"", "Women", true},
	}
	for _, tt := range tests {
		p := &StyleProfile{Gender: tt.gender}
		if got := p.MatchesGender(tt.item); got != tt.want {
			t.Errorf("MatchesGender(%q, %q) = %v, want %v", tt.gender, tt.item, got, tt.want)
		}
	}
	if f := (&StyleProfile{Gender: "Female"}).GenderFilter(); len(f) != 1 || f[0] != "Women" {
		t.Errorf("GenderFilter = %v", f)
	}
	var nilProfile *StyleProfile
	if !nilProfile.MatchesGender("Men") || nilProfile.GenderFilter() != nil {
		t.Error("nil profile should not constrain")
	}
}

func TestStyleKeywords(t *testing.T) {
	if kws := (&StyleProfile{Style: "Sporty"}).StyleKeywords(); !ContainsAnyFold("Athletic Shorts", kws) {
		t.Errorf("Sporty keywords %v should match Athletic", kws)
	}
	if kws := (&StyleProfile{Style: "Grunge"}).StyleKeywords(); len(kws) != 1 || kws[0] != "Grunge" {
		t.Errorf("unknown style keywords = %v", kws)
	}
	if SizeIndex("M") != 2 || SizeIndex("XXS") != -1 {
		t.Error("SizeIndex mismatch")
	}
}

func TestAffinityOf(t *testing.T) {
	rctx := &RecommendContext{Affinities: []CategoryAffinity{{Category: "Shirts", Score: 40}}}
	if rctx.AffinityOf("Shirts") != 40 || rctx.AffinityOf("Jeans") != 0 {
		t.Error("AffinityOf mismatch")
	}
	rctx.Affinities = append(rctx.Affinities, CategoryAffinity{Category: "Jeans", Score: 10})
	if rctx.AffinityOf("Jeans") != 10 {
		t.Error("index should refresh after affinities change")
	}
}

func TestDomainErrorChain(t *testing.T) {
	base := errors.New("connection refused")
	err := fmt.Errorf("window: %w", Unavailable(ModuleCatalog, "sqlite: query", base))
	if !IsUnavailable(err) || IsInvalidInput(err) {
		t.Errorf("classification failed for %v", err)
	}
	if !errors.Is(err, base) {
		t.Error("underlying error should be reachable")
	}
	if de := GetDomainError(err); de == nil || de.Module != ModuleCatalog {
		t.Errorf("GetDomainError = %+v", de)
	}
	if !IsStoreNotFound(ErrStoreNotFound) {
		t.Error("ErrStoreNotFound should be recognised")
	}
}
