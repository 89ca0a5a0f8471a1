// Package ledger 是交互流水：按用户追加行为记录，只读扫描，不修改、不删除。
//
// 存储布局（core.KeyValueStore）：
//
//	interactions:{user_id}  有序集合，score = 毫秒时间戳，member = JSON 记录
package ledger

import (
	"context"
	"math"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/rushteam/vitrine/core"
)

// KeyPrefix 是交互流水的 key 前缀。
const KeyPrefix = "interactions:"

// Ledger 基于 KeyValueStore 的交互流水。
type Ledger struct {
	kv  core.KeyValueStore
	now func() time.Time
}

// Option 配置 Ledger。
type Option func(*Ledger)

// WithClock 替换时钟，用于测试。
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(kv core.KeyValueStore, opts ...Option) *Ledger {
	l := &Ledger{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func key(userID string) string { return KeyPrefix + userID }

// Append 追加一条记录；ID、Weight、At 为空时自动补齐。
func (l *Ledger) Append(ctx context.Context, rec core.InteractionRecord) (core.InteractionRecord, error) {
	if rec.UserID == "" || rec.ItemID == "" {
		return rec, core.InvalidInput(core.ModuleLedger, "user id and item id are required")
	}
	w := rec.Kind.Weight()
	if w == 0 {
		return rec, core.InvalidInput(core.ModuleLedger, "unknown interaction kind "+string(rec.Kind))
	}
	rec.Weight = w
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.At.IsZero() {
		rec.At = l.now()
	}

	member, err := json.Marshal(rec)
	if err != nil {
		return rec, core.WrapDomainError(core.ModuleLedger, core.ErrorCodeInternalError, "encode record", err)
	}
	if err := l.kv.ZAdd(ctx, key(rec.UserID), float64(rec.At.UnixMilli()), string(member)); err != nil {
		return rec, core.Unavailable(core.ModuleLedger, "append", err)
	}
	return rec, nil
}

// Scan 返回 since 之后（含）的记录，按时间升序。无法解码的成员被跳过。
func (l *Ledger) Scan(ctx context.Context, userID string, since time.Time) ([]core.InteractionRecord, error) {
	if userID == "" {
		return nil, core.InvalidInput(core.ModuleLedger, "user id is required")
	}
	members, err := l.kv.ZRangeByScore(ctx, key(userID), float64(since.UnixMilli()), math.Inf(1))
	if err != nil {
		return nil, core.Unavailable(core.ModuleLedger, "scan", err)
	}

	out := make([]core.InteractionRecord, 0, len(members))
	for _, m := range members {
		var rec core.InteractionRecord
		if err := json.Unmarshal([]byte(m), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// RecentPurchases 返回窗口内最近购买的至多 n 个不同商品，新到旧。
func (l *Ledger) RecentPurchases(ctx context.Context, userID string, since time.Time, n int) ([]string, error) {
	recs, err := l.Scan(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for i := len(recs) - 1; i >= 0 && (n <= 0 || len(out) < n); i-- {
		r := recs[i]
		if r.Kind != core.InteractionPurchase {
			continue
		}
		if _, ok := seen[r.ItemID]; ok {
			continue
		}
		seen[r.ItemID] = struct{}{}
		out = append(out, r.ItemID)
	}
	return out, nil
}

// Now 返回 Ledger 的当前时间。
func (l *Ledger) Now() time.Time { return l.now() }
