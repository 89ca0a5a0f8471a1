package likes

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/store"
)

func TestLikeLifecycle(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()
	s := New(kv)

	created, err := s.Like(ctx, "u1", "i1", "home")
	if err != nil || !created {
		t.Fatalf("Like = %v, %v; want true, nil", created, err)
	}
	created, err = s.Like(ctx, "u1", "i1", "p2p")
	if err != nil || created {
		t.Fatalf("second Like = %v, %v; want already liked", created, err)
	}

	liked, err := s.IsLiked(ctx, "u1", "i1")
	if err != nil || !liked {
		t.Fatalf("IsLiked = %v, %v", liked, err)
	}
	if liked, _ := s.IsLiked(ctx, "u2", "i1"); liked {
		t.Error("like leaked to another user")
	}

	entries, err := s.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].FeedOrigin != "home" {
		t.Fatalf("entries = %+v, want original origin kept", entries)
	}

	if err := s.Unlike(ctx, "u1", "i1"); err != nil {
		t.Fatalf("Unlike: %v", err)
	}
	if liked, _ := s.IsLiked(ctx, "u1", "i1"); liked {
		t.Error("still liked after Unlike")
	}
	if err := s.Unlike(ctx, "u1", "i1"); err != nil {
		t.Errorf("Unlike twice: %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(kv, WithClock(func() time.Time { return now }))
	for i, id := range []string{"a", "b", "c"} {
		now = now.Add(time.Duration(i+1) * time.Minute)
		if _, err := s.Like(ctx, "u1", id, "home"); err != nil {
			t.Fatalf("Like %s: %v", id, err)
		}
	}
	entries, err := s.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"c", "b", "a"}
	for i, id := range want {
		if entries[i].ItemID != id {
			t.Fatalf("entries[%d] = %s, want %s", i, entries[i].ItemID, id)
		}
	}
}

func TestInvalidInput(t *testing.T) {
	s := New(store.NewMemoryStore())
	if _, err := s.Like(context.Background(), "", "i1", "home"); !core.IsInvalidInput(err) {
		t.Errorf("Like err = %v, want INVALID_INPUT", err)
	}
	if _, err := s.IsLiked(context.Background(), "u1", ""); !core.IsInvalidInput(err) {
		t.Errorf("IsLiked err = %v, want INVALID_INPUT", err)
	}
}
