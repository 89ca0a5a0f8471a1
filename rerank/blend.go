package rerank

import (
	"github.com/shopspring/decimal"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/pkg/utils"
)

// DefaultBlendRatio 是混合 feed 中目录商品的默认占比
const DefaultBlendRatio = 0.7

// Quota 返回一页中目录商品与用户商品各自的取数配额（均向上取整）。
// 两者之和可能比 pageSize 多 1，合并后由 Blend 截断。
func Quota(pageSize int, ratio float64) (catalog, user int) {
	if pageSize <= 0 {
		return 0, 0
	}
	// 十进制计算，避免 10×(1−0.7) 得到 3.0000000000000004 后向上取整成 4
	size := decimal.NewFromInt(int64(pageSize))
	r := decimal.NewFromFloat(ratio)
	catalog = int(size.Mul(r).Ceil().IntPart())
	user = int(size.Mul(decimal.NewFromInt(1).Sub(r)).Ceil().IntPart())
	return catalog, user
}

// Blend 合并两种来源：拼接、整体打散、按 ID 去重，最后截断到 pageSize。
// 来源写入 label blend_source=catalog|listing。
func Blend(catalog, user []*core.Item, pageSize int, rng utils.Rand) []*core.Item {
	merged := make([]*core.Item, 0, len(catalog)+len(user))
	for _, it := range catalog {
		if it == nil {
			continue
		}
		it.PutLabel("blend_source", utils.Label{Value: "catalog", Source: "blend"})
		merged = append(merged, it)
	}
	for _, it := range user {
		if it == nil {
			continue
		}
		it.PutLabel("blend_source", utils.Label{Value: "listing", Source: "blend"})
		merged = append(merged, it)
	}
	if rng != nil {
		Shuffle(merged, rng)
	}
	return Truncate(Dedup(merged, nil), pageSize)
}
