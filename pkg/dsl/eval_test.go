package dsl

import (
	"testing"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/pkg/utils"
)

func TestEval(t *testing.T) {
	it := core.NewItem(core.CatalogItem{
		ID: "s1", Name: "Oxford Shirt", Price: 1200, Gender: "Men", Image: "s1.jpg",
		Category: &core.Category{TypeName: "Shirts"},
	})
	it.PutLabel("recall_source", utils.Label{Value: "recall.similar", Source: "recall"})
	rctx := &core.RecommendContext{UserID: "u1", Feed: core.CatalogFeed{Name: "offers"}, Page: 2}

	tests := []struct {
		expr string
		want bool
	}{
		{"", true},
		{`item.image != "" && item.price > 0.0`, true},
		{`item.category in ["Shirts", "Jeans"]`, true},
		{`item.gender == "Women"`, false},
		{`label.recall_source == "recall.similar"`, true},
		{`rctx.feed == "offers" && rctx.page == 2`, true},
		{`item.is_listing`, false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			got, err := p.Eval(it, rctx)
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}
			if got != tt.want {
				t.Errorf("Eval(%s) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	if _, err := Compile(`item.price >`); err == nil {
		t.Error("syntax error should fail to compile")
	}

	p := MustCompile(`item.price`)
	if _, err := p.Eval(core.NewItem(core.CatalogItem{Price: 1}), nil); err == nil {
		t.Error("non-boolean result should be an error")
	}
}
