package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rushteam/vitrine/core"
)

type funcNode struct {
	name string
	kind Kind
	fn   func([]*core.Item) ([]*core.Item, error)
}

func (n funcNode) Name() string { return n.name }
func (n funcNode) Kind() Kind   { return n.kind }
func (n funcNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	return n.fn(items)
}

func items(ids ...string) []*core.Item {
	out := make([]*core.Item, len(ids))
	for i, id := range ids {
		out[i] = core.NewItem(core.CatalogItem{ID: id})
	}
	return out
}

func TestRunChainsNodesAndHooks(t *testing.T) {
	type call struct {
		node    string
		in, out int
	}
	var calls []call

	p := &Pipeline{
		Nodes: []Node{
			funcNode{"recall", KindRecall, func([]*core.Item) ([]*core.Item, error) { return items("a", "b", "c"), nil }},
			funcNode{"drop-first", KindFilter, func(in []*core.Item) ([]*core.Item, error) { return in[1:], nil }},
		},
		Hooks: []Hook{func(n Node, in, out int, _ time.Duration, _ error) {
			calls = append(calls, call{n.Name(), in, out})
		}},
	}

	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 2 || out[0].ID != "b" {
		t.Errorf("out = %d items, first %q", len(out), out[0].ID)
	}
	want := []call{{"recall", 0, 3}, {"drop-first", 3, 2}}
	if len(calls) != len(want) {
		t.Fatalf("hook calls = %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("hook call %d = %+v, want %+v", i, calls[i], want[i])
		}
	}
}

func TestRunStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	reached := false
	p := &Pipeline{Nodes: []Node{
		funcNode{"fail", KindRecall, func([]*core.Item) ([]*core.Item, error) { return nil, boom }},
		funcNode{"after", KindRank, func(in []*core.Item) ([]*core.Item, error) { reached = true; return in, nil }},
	}}
	if _, err := p.Run(context.Background(), nil, nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if reached {
		t.Error("nodes after a failure should not run")
	}
}

func TestRunHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pipeline{Nodes: []Node{
		funcNode{"recall", KindRecall, func([]*core.Item) ([]*core.Item, error) { return items("a"), nil }},
	}}
	if _, err := p.Run(ctx, nil, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
