package core

import "strings"

// StyleProfile 是用户在风格问卷中填写的偏好。
//
// 它不替代交互亲和度，而是在排序时与亲和度按比例混合：
//
//	score = 0.7·affinity + 0.3·questionnaire + 2·rating
type StyleProfile struct {
	Gender   string `json:"gender" validate:"omitempty,oneof=Male Female Non-binary 'Prefer not to say'"`
	Size     string `json:"size" validate:"omitempty,oneof=XS S M L XL XXL XXXL"`
	Style    string `json:"style"`
	Occasion string `json:"occasion"`
}

// SizeOrder 是标准尺码的顺序。
var SizeOrder = []string{"XS", "S", "M", "L", "XL", "XXL", "XXXL"}

// SizeIndex 返回尺码在 SizeOrder 中的位置，未知尺码返回 -1。
func SizeIndex(size string) int {
	for i, s := range SizeOrder {
		if s == size {
			return i
		}
	}
	return -1
}

// GenderFilter 把问卷性别映射成目录中的性别取值；不限时返回 nil。
func (p *StyleProfile) GenderFilter() []string {
	if p == nil {
		return nil
	}
	switch p.Gender {
	case "Male":
		return []string{"Men"}
	case "Female":
		return []string{"Women"}
	case "Non-binary":
		return []string{"Unisex"}
	}
	return nil
}

// MatchesGender 严格匹配商品性别；"Prefer not to say" 与空值匹配一切。
func (p *StyleProfile) MatchesGender(itemGender string) bool {
	if p == nil {
		return true
	}
	switch p.Gender {
	case "Male":
		return itemGender == "Men"
	case "Female":
		return itemGender == "Women"
	case "Non-binary":
		return itemGender == "Unisex"
	case "", "Prefer not to say":
		return true
	}
	return false
}

var styleSynonyms = map[string][]string{
	"Casual":     {"Casual", "Smart Casual", "Relaxed", "Everyday"},
	"Formal":     {"Formal", "Semi-Formal", "Business", "Professional", "Elegant"},
	"Sporty":     {"Sporty", "Athletic", "Active", "Gym", "Sports"},
	"Trendy":     {"Trendy", "Fashion", "Contemporary", "Modern", "Stylish"},
	"Classic":    {"Classic", "Traditional", "Timeless", "Vintage", "Conservative"},
	"Bohemian":   {"Bohemian", "Boho", "Ethnic", "Hippie", "Free-spirited"},
	"Minimalist": {"Minimalist", "Simple", "Clean", "Basic", "Understated"},
}

// StyleKeywords 返回风格的模糊匹配词（含自身）。
func (p *StyleProfile) StyleKeywords() []string {
	if p == nil || p.Style == "" {
		return nil
	}
	if kws, ok := styleSynonyms[p.Style]; ok {
		return kws
	}
	return []string{p.Style}
}

var occasionKeywords = map[string][]string{
	"Everyday wear":   {"casual", "everyday", "daily", "regular"},
	"Work attire":     {"formal", "business", "office", "professional"},
	"Party/Night out": {"party", "evening", "night", "cocktail"},
	"Gym/Sports":      {"sports", "gym", "athletic", "active", "workout"},
	"Special events":  {"special", "occasion", "event", "celebration"},
}

// OccasionKeywords 返回场合对应的商品名关键词（小写）。
func (p *StyleProfile) OccasionKeywords() []string {
	if p == nil {
		return nil
	}
	return occasionKeywords[p.Occasion]
}

// ContainsAnyFold 判断 s 是否（忽略大小写）包含 words 中任一词。
func ContainsAnyFold(s string, words []string) bool {
	ls := strings.ToLower(s)
	for _, w := range words {
		if w != "" && strings.Contains(ls, strings.ToLower(w)) {
			return true
		}
	}
	return false
}
