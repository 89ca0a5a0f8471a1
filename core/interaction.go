package core

import (
	"fmt"
	"time"
)

// InteractionKind 是用户对商品的行为类型，每种行为携带固定权重。
type InteractionKind string

const (
	InteractionView     InteractionKind = "view"
	InteractionLike     InteractionKind = "like"
	InteractionPurchase InteractionKind = "purchase"
	InteractionShare    InteractionKind = "share"
)

// Weight 返回行为权重：view=1, like=2, purchase=3, share=4；未知行为为 0。
func (k InteractionKind) Weight() int {
	switch k {
	case InteractionView:
		return 1
	case InteractionLike:
		return 2
	case InteractionPurchase:
		return 3
	case InteractionShare:
		return 4
	}
	return 0
}

// ParseInteractionKind 解析行为类型。
func ParseInteractionKind(s string) (InteractionKind, error) {
	k := InteractionKind(s)
	if k.Weight() == 0 {
		return "", InvalidInput(ModuleLedger, fmt.Sprintf("unknown interaction kind %q", s))
	}
	return k, nil
}

// InteractionRecord 是交互流水中的一条记录，只追加、不修改。
type InteractionRecord struct {
	ID     string          `json:"id"`
	UserID string          `json:"user_id"`
	ItemID string          `json:"item_id"`
	Kind   InteractionKind `json:"kind"`
	Weight int             `json:"weight"`
	At     time.Time       `json:"at"`
}

// CategoryAffinity 是某用户对某类目的亲和度，按需从流水计算，不落库。
type CategoryAffinity struct {
	UserID          string    `json:"user_id"`
	Category        string    `json:"category"`
	Score           float64   `json:"score"`
	Count           int       `json:"count"`
	LastInteraction time.Time `json:"last_interaction"`
}
