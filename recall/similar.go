package recall

import (
	"context"
	"slices"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/pkg/utils"
)

// 相似度加权
const (
	SameBrandBonus = 0.3
	SameColorBonus = 0.5
	MaxRating      = 5.0

	// DefaultMaxPurchases 是参与扩展的最近购买数
	DefaultMaxPurchases = 3
)

// Similar 是相似扩展召回：对参考商品取同类目同性别的商品，按
//
//	score = 0.3·同品牌 + 0.5·同主色 + rating/5
//
// 降序返回。作为 Source 使用时，对 rctx.Purchases 中最近的若干购买逐一扩展，
// 每个购买取 pageSize/2 个；候选窗口随页码后移，受 feed 的性别与价格约束，
// 并排除 rctx.Purchased。
type Similar struct {
	Catalog      core.CatalogStore
	MaxPurchases int
}

func (s *Similar) Name() string { return "recall.similar" }

// SimilarTo 返回与参考商品相似的至多 limit 个商品（不含参考商品本身），不加 feed 约束。
func (s *Similar) SimilarTo(ctx context.Context, refID string, limit int) ([]*core.Item, error) {
	return s.SimilarWithin(ctx, refID, core.Constraint{}, nil, 0, limit)
}

// SimilarWithin 在约束 c 下扩展参考商品的第 page 页，exclude 中的商品不参与。
// 每页读取评分窗口 [page×2·limit, (page+1)×2·limit)，按相似分取前 limit 个，
// 窗口读尽后返回空。c 限定了性别且不含参考商品的性别时不扩展。
func (s *Similar) SimilarWithin(ctx context.Context, refID string, c core.Constraint, exclude []string, page, limit int) ([]*core.Item, error) {
	if refID == "" || limit <= 0 || page < 0 {
		return nil, core.InvalidInput(core.ModuleCatalog, "similar: reference id, page and positive limit required")
	}
	refs, err := s.Catalog.ByIDs(ctx, []string{refID})
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound, "similar: reference "+refID+" not found")
	}
	ref := refs[0]
	if ref.Category == nil || ref.Category.TypeName == "" {
		return nil, nil
	}

	genders := c.Genders
	if ref.Gender != "" {
		if len(c.Genders) > 0 && !slices.Contains(c.Genders, ref.Gender) {
			return nil, nil
		}
		genders = []string{ref.Gender}
	}
	window := limit * 2
	rows, err := s.Catalog.Window(ctx, core.CatalogQuery{
		Genders:      genders,
		PriceCeiling: c.PriceCeiling,
		Category:     ref.Category.TypeName,
		ExcludeIDs:   append([]string{ref.ID}, exclude...),
		Offset:       page * window,
		Limit:        window,
	})
	if err != nil {
		return nil, err
	}

	items := make([]*core.Item, 0, len(rows))
	for _, row := range rows {
		if row.ID == ref.ID {
			continue
		}
		it := core.NewItem(row)
		it.Score = Similarity(ref, row)
		it.PutLabel("similar_to", utils.Label{Value: ref.ID, Source: "recall"})
		items = append(items, it)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Similarity 计算候选相对参考商品的相似分。
func Similarity(ref, cand core.CatalogItem) float64 {
	score := cand.Rating / MaxRating
	if ref.Brand != "" && cand.Brand == ref.Brand {
		score += SameBrandBonus
	}
	if ref.BaseColor != "" && cand.BaseColor == ref.BaseColor {
		score += SameColorBonus
	}
	return score
}

// Recall 实现 Source 接口：并发扩展最近的购买，结果按购买顺序拼接。
// 参考商品已下架（NOT_FOUND）时跳过，其余错误返回。
func (s *Similar) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || len(rctx.Purchases) == 0 {
		return nil, nil
	}
	maxP := s.MaxPurchases
	if maxP <= 0 {
		maxP = DefaultMaxPurchases
	}
	purchases := rctx.Purchases
	if len(purchases) > maxP {
		purchases = purchases[:maxP]
	}
	per := rctx.PageSize / 2
	if per < 1 {
		per = 1
	}
	var c core.Constraint
	if rctx.Feed != nil {
		c = rctx.Feed.Constraint()
	}

	var (
		mu       sync.Mutex
		results  = make([][]*core.Item, len(purchases))
		eg, gctx = errgroup.WithContext(ctx)
	)
	for i, id := range purchases {
		i, id := i, id
		eg.Go(func() error {
			items, err := s.SimilarWithin(gctx, id, c, rctx.Purchased, rctx.Page, per)
			if err != nil {
				if core.IsNotFound(err) {
					return nil
				}
				return err
			}
			mu.Lock()
			results[i] = items
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []*core.Item
	for _, items := range results {
		out = append(out, items...)
	}
	return out, nil
}
