// Package preference 把用户近期交互聚合成类目亲和度。
package preference

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/filter"
)

const (
	// DefaultWindow 是扫描窗口（30 天）
	DefaultWindow = 30 * 24 * time.Hour

	// ScoreScale 是累积权重到亲和度的放大倍数
	ScoreScale = 10

	// MaxScore 是亲和度上限
	MaxScore = 100
)

// InteractionSource 是交互流水的只读视图。
type InteractionSource interface {
	Scan(ctx context.Context, userID string, since time.Time) ([]core.InteractionRecord, error)
}

// Aggregator 计算类目亲和度：
//
//	score(category) = min(100, 10 × Σ weight)
//
// 交互对应的商品类目通过一次批量查询解析，类目不可展示的交互被忽略。
type Aggregator struct {
	source  InteractionSource
	catalog core.CatalogStore
	gate    *filter.TaxonomyGate
	window  time.Duration
	now     func() time.Time
}

// Option 配置 Aggregator。
type Option func(*Aggregator)

// WithWindow 设置扫描窗口。
func WithWindow(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.window = d
		}
	}
}

// WithClock 替换时钟，用于测试。
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func NewAggregator(source InteractionSource, catalog core.CatalogStore, gate *filter.TaxonomyGate, opts ...Option) *Aggregator {
	a := &Aggregator{
		source:  source,
		catalog: catalog,
		gate:    gate,
		window:  DefaultWindow,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Affinity 返回按分数降序的亲和度；没有有效交互时返回空列表（冷启动）。
// 同分时依次按交互次数、最近交互时间降序，再按类目名升序，保证结果稳定。
func (a *Aggregator) Affinity(ctx context.Context, userID string) ([]core.CategoryAffinity, error) {
	if userID == "" {
		return nil, core.InvalidInput(core.ModulePreference, "user id is required")
	}

	recs, err := a.source.Scan(ctx, userID, a.now().Add(-a.window))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		if _, ok := seen[r.ItemID]; ok {
			continue
		}
		seen[r.ItemID] = struct{}{}
		ids = append(ids, r.ItemID)
	}

	rows, err := a.catalog.ByIDs(ctx, ids)
	if err != nil {
		return nil, core.Unavailable(core.ModulePreference, "resolve categories", err)
	}
	categoryOf := make(map[string]string, len(rows))
	for _, row := range rows {
		if a.gate.IsDisplayable(row.Category) {
			categoryOf[row.ID] = row.Category.TypeName
		}
	}

	type acc struct {
		weight int
		count  int
		latest time.Time
	}
	byCat := make(map[string]*acc)
	for _, r := range recs {
		cat, ok := categoryOf[r.ItemID]
		if !ok {
			continue
		}
		w := r.Weight
		if w == 0 {
			w = r.Kind.Weight()
		}
		c := byCat[cat]
		if c == nil {
			c = &acc{}
			byCat[cat] = c
		}
		c.weight += w
		c.count++
		if r.At.After(c.latest) {
			c.latest = r.At
		}
	}

	out := make([]core.CategoryAffinity, 0, len(byCat))
	for cat, c := range byCat {
		out = append(out, core.CategoryAffinity{
			UserID:          userID,
			Category:        cat,
			Score:           math.Min(MaxScore, float64(c.weight*ScoreScale)),
			Count:           c.count,
			LastInteraction: c.latest,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if !out[i].LastInteraction.Equal(out[j].LastInteraction) {
			return out[i].LastInteraction.After(out[j].LastInteraction)
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}
