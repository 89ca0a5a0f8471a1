// Package likes 保存用户喜欢的商品：每个用户一个 Hash，field 为商品 ID。
package likes

import (
	"context"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/vitrine/core"
)

// KeyPrefix 是喜欢列表在 KV 中的 key 前缀
const KeyPrefix = "likes:"

// Entry 是一条喜欢记录。
type Entry struct {
	ItemID     string    `json:"-"`
	FeedOrigin string    `json:"feed_origin"`
	LikedAt    time.Time `json:"liked_at"`
}

// Store 是基于 KeyValueStore 的喜欢列表。
type Store struct {
	kv  core.KeyValueStore
	now func() time.Time
}

// Option 配置 Store。
type Option func(*Store)

// WithClock 替换时钟，用于测试。
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(kv core.KeyValueStore, opts ...Option) *Store {
	s := &Store{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func key(userID string) string { return KeyPrefix + userID }

func validate(userID, itemID string) error {
	if userID == "" || itemID == "" {
		return core.InvalidInput(core.ModuleLikes, "user id and item id are required")
	}
	return nil
}

// Like 记录喜欢。返回 false 表示之前已经喜欢过（不覆盖原记录）。
func (s *Store) Like(ctx context.Context, userID, itemID, feedOrigin string) (bool, error) {
	if err := validate(userID, itemID); err != nil {
		return false, err
	}
	liked, err := s.IsLiked(ctx, userID, itemID)
	if err != nil {
		return false, err
	}
	if liked {
		return false, nil
	}

	data, err := json.Marshal(Entry{FeedOrigin: feedOrigin, LikedAt: s.now().UTC()})
	if err != nil {
		return false, core.WrapDomainError(core.ModuleLikes, core.ErrorCodeInternalError, "likes: encode", err)
	}
	if err := s.kv.HSet(ctx, key(userID), itemID, data); err != nil {
		return false, err
	}
	return true, nil
}

// Unlike 取消喜欢，未喜欢过也视为成功。
func (s *Store) Unlike(ctx context.Context, userID, itemID string) error {
	if err := validate(userID, itemID); err != nil {
		return err
	}
	_, err := s.kv.HDel(ctx, key(userID), itemID)
	return err
}

// IsLiked 判断是否喜欢过。
func (s *Store) IsLiked(ctx context.Context, userID, itemID string) (bool, error) {
	if err := validate(userID, itemID); err != nil {
		return false, err
	}
	_, err := s.kv.HGet(ctx, key(userID), itemID)
	if core.IsStoreNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List 返回用户的全部喜欢记录，新到旧。无法解码的记录被跳过。
func (s *Store) List(ctx context.Context, userID string) ([]Entry, error) {
	if userID == "" {
		return nil, core.InvalidInput(core.ModuleLikes, "user id is required")
	}
	raw, err := s.kv.HGetAll(ctx, key(userID))
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(raw))
	for itemID, data := range raw {
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			continue
		}
		e.ItemID = itemID
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LikedAt.Equal(out[j].LikedAt) {
			return out[i].LikedAt.After(out[j].LikedAt)
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out, nil
}
