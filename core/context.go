package core

import "github.com/rushteam/vitrine/pkg/utils"

// RecommendContext 承载用户/场景信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID   string
	Feed     FeedContext
	Page     int
	PageSize int

	// Affinities 是按分数降序的类目亲和度（冷启动时为空）
	Affinities []CategoryAffinity

	// Purchases 是窗口内最近购买的商品 ID，新到旧，用于相似扩展
	Purchases []string

	// Purchased 是用户全部已购商品 ID，用于排除
	Purchased []string

	// Style 是问卷偏好，可为空
	Style *StyleProfile

	// Labels 是请求级标签，例如 path=cold
	Labels map[string]utils.Label

	// Params 请求级参数
	Params map[string]any

	affinityIndex map[string]float64
}

// AffinityOf 返回类目亲和度，未记录的类目为 0。
func (rctx *RecommendContext) AffinityOf(category string) float64 {
	if rctx == nil || category == "" {
		return 0
	}
	if rctx.affinityIndex == nil || len(rctx.affinityIndex) != len(rctx.Affinities) {
		rctx.affinityIndex = make(map[string]float64, len(rctx.Affinities))
		for _, a := range rctx.Affinities {
			rctx.affinityIndex[a.Category] = a.Score
		}
	}
	return rctx.affinityIndex[category]
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// Provenance 返回 feed 来源标识，无 feed 时为空。
func (rctx *RecommendContext) Provenance() string {
	if rctx == nil || rctx.Feed == nil {
		return ""
	}
	return rctx.Feed.Provenance()
}
