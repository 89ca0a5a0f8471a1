package rank

import (
	"github.com/rushteam/vitrine/core"
)

// 问卷混合权重
const (
	AffinityWeight      = 0.7
	QuestionnaireWeight = 0.3
	RatingWeight        = 2.0

	genderMatchBonus   = 30
	genderMismatchCost = 50
	styleMatchBonus    = 20
	occasionBonus      = 10
)

// StyleScorer 把问卷偏好与交互亲和度混合：
//
//	score = 0.7·affinity + 0.3·questionnaire + 2·rating
type StyleScorer struct{}

// Blend 计算混合后的排序分。
func (s *StyleScorer) Blend(affinity float64, p *core.StyleProfile, it *core.Item) float64 {
	return AffinityWeight*affinity + QuestionnaireWeight*s.Questionnaire(p, it) + RatingWeight*it.Product.Rating
}

// Questionnaire 计算问卷分：性别匹配 +30（不匹配 −50），风格模糊匹配 +20，
// 尺码接近度 25/20/10/0，场合关键词 +10。
func (s *StyleScorer) Questionnaire(p *core.StyleProfile, it *core.Item) float64 {
	if p == nil || it == nil {
		return 0
	}
	var q float64

	if p.MatchesGender(it.Product.Gender) {
		q += genderMatchBonus
	} else {
		q -= genderMismatchCost
	}

	styleText := it.Product.Name
	if c := it.Product.Category; c != nil && c.DisplayName != "" {
		styleText = c.DisplayName
	}
	if core.ContainsAnyFold(styleText, p.StyleKeywords()) {
		q += styleMatchBonus
	}

	if p.Size != "" {
		q += float64(bestSizeScore(itemSizes(it), p.Size))
	}

	if kws := p.OccasionKeywords(); len(kws) > 0 && core.ContainsAnyFold(it.Product.Name, kws) {
		q += occasionBonus
	}
	return q
}

// SizeScore 按与偏好尺码的距离打分：相同 25，相邻 20，隔一档 10，其他或未知 0。
func SizeScore(itemSize, preferred string) int {
	pi, ii := core.SizeIndex(preferred), core.SizeIndex(itemSize)
	if pi < 0 || ii < 0 {
		return 0
	}
	d := pi - ii
	if d < 0 {
		d = -d
	}
	switch d {
	case 0:
		return 25
	case 1:
		return 20
	case 2:
		return 10
	}
	return 0
}

func bestSizeScore(sizes []string, preferred string) int {
	best := 0
	for _, sz := range sizes {
		if v := SizeScore(sz, preferred); v > best {
			best = v
		}
	}
	return best
}

// 目录商品没有尺码；用户商品取其发布的尺码。
func itemSizes(it *core.Item) []string {
	if it.Listing != nil {
		return it.Listing.Sizes
	}
	if v, ok := it.Meta["size"].(string); ok && v != "" {
		return []string{v}
	}
	return nil
}
