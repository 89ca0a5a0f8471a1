package rank

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/pkg/utils"
)

func item(id, category string, rating float64) *core.Item {
	return core.NewItem(core.CatalogItem{
		ID: id, Name: id, Rating: rating, Gender: "Men",
		Category: &core.Category{TypeName: category},
	})
}

func ids(items []*core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestRank(t *testing.T) {
	affinities := []core.CategoryAffinity{
		{Category: "Shirts", Score: 30},
		{Category: "Jeans", Score: 10},
	}
	items := []*core.Item{
		item("sock", "Socks", 5),
		item("jean", "Jeans", 4),
		item("shirt-low", "Shirts", 3),
		item("shirt-high", "Shirts", 4.5),
	}
	got := ids(Rank(items, affinities))
	want := []string{"shirt-high", "shirt-low", "jean", "sock"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Rank = %v, want %v", got, want)
		}
	}
}

func TestAffinityNodePinsSimilarItems(t *testing.T) {
	sim := item("sim", "Socks", 1)
	sim.PutLabel("similar_to", utils.Label{Value: "p1", Source: "recall"})
	items := []*core.Item{item("a", "Shirts", 4), sim, item("b", "Jeans", 4)}
	rctx := &core.RecommendContext{Affinities: []core.CategoryAffinity{{Category: "Jeans", Score: 50}}}

	out, err := (&AffinityNode{}).Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	got := ids(out)
	want := []string{"sim", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if out[1].Label("rank_score") != "50.00" {
		t.Errorf("rank_score = %q", out[1].Label("rank_score"))
	}
}

func TestStyleBlend(t *testing.T) {
	s := &StyleScorer{}
	p := &core.StyleProfile{Gender: "Male", Style: "Casual", Occasion: "Everyday wear"}

	match := core.NewItem(core.CatalogItem{
		Name: "Everyday Casual Shirt", Gender: "Men", Rating: 4,
		Category: &core.Category{TypeName: "Shirts", DisplayName: "Casual Shirts"},
	})
	// q = 30 + 20 + 10 = 60 → 0.7·10 + 0.3·60 + 2·4 = 33
	if got := s.Blend(10, p, match); math.Abs(got-33) > 1e-9 {
		t.Errorf("Blend(match) = %v, want 33", got)
	}

	miss := core.NewItem(core.CatalogItem{Name: "Silk Gown", Gender: "Women", Rating: 4})
	// q = −50 → 0.3·−50 + 8 = −7
	if got := s.Blend(0, p, miss); math.Abs(got-(-7)) > 1e-9 {
		t.Errorf("Blend(miss) = %v, want -7", got)
	}
}

func TestStyleNeutralGender(t *testing.T) {
	s := &StyleScorer{}
	for _, g := range []string{"", "Prefer not to say"} {
		p := &core.StyleProfile{Gender: g}
		it := core.NewItem(core.CatalogItem{Name: "Gown", Gender: "Women"})
		if q := s.Questionnaire(p, it); q != genderMatchBonus {
			t.Errorf("gender %q: q = %v, want %d", g, q, genderMatchBonus)
		}
	}
}

func TestSizeScore(t *testing.T) {
	tests := []struct {
		item, pref string
		want       int
	}{
		{"M", "M", 25},
		{"S", "M", 20},
		{"XL", "M", 10},
		{"XXXL", "M", 0},
		{"42", "M", 0},
		{"M", "", 0},
	}
	for _, tt := range tests {
		if got := SizeScore(tt.item, tt.pref); got != tt.want {
			t.Errorf("SizeScore(%q,%q) = %d, want %d", tt.item, tt.pref, got, tt.want)
		}
	}
}

func TestStyleUsesListingSizes(t *testing.T) {
	s := &StyleScorer{}
	p := &core.StyleProfile{Size: "M"}
	it := core.NewListingItem(core.Listing{ID: "l", Name: "Coat", Sizes: []string{"XS", "L"}})
	// 性别不限 +30，最接近尺码 L 相邻 +20
	if q := s.Questionnaire(p, it); q != 50 {
		t.Errorf("q = %v, want 50", q)
	}
}
