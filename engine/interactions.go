package engine

import (
	"context"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/display"
	"github.com/rushteam/vitrine/logging"
)

// RecordInteraction 异步记录一次交互。只有入参错误会返回 error，写入失败只记日志。
func (e *Engine) RecordInteraction(ctx context.Context, userID, itemID, kind string) error {
	k, err := core.ParseInteractionKind(kind)
	if err != nil {
		return err
	}
	if e.recorder == nil {
		logging.Ctx(ctx, e.log).Warn().Str("user_id", userID).Str("item_id", itemID).Msg("no recorder configured, interaction dropped")
		return nil
	}
	return e.recorder.Record(userID, itemID, k)
}

// Like 记录喜欢并上报一次 like 交互。返回 false 表示之前已经喜欢过。
func (e *Engine) Like(ctx context.Context, userID, itemID, feedOrigin string) (bool, error) {
	created, err := e.likes.Like(ctx, userID, itemID, feedOrigin)
	if err != nil || !created {
		return created, err
	}
	if err := e.RecordInteraction(ctx, userID, itemID, string(core.InteractionLike)); err != nil {
		logging.Ctx(ctx, e.log).Warn().Err(err).Str("user_id", userID).Str("item_id", itemID).Msg("report like interaction")
	}
	return true, nil
}

// Unlike 取消喜欢。
func (e *Engine) Unlike(ctx context.Context, userID, itemID string) error {
	return e.likes.Unlike(ctx, userID, itemID)
}

// IsLiked 判断是否喜欢过。
func (e *Engine) IsLiked(ctx context.Context, userID, itemID string) (bool, error) {
	return e.likes.IsLiked(ctx, userID, itemID)
}

// Liked 分页返回用户喜欢的目录商品，新到旧；来源为喜欢时所在的 feed。
// 已下架或类目不可展示的商品被跳过。
func (e *Engine) Liked(ctx context.Context, userID string, page, pageSize int) (core.RetrievalResult, error) {
	if page < 0 || pageSize <= 0 {
		return core.RetrievalResult{}, core.InvalidInput(core.ModuleLikes, "invalid page window")
	}
	entries, err := e.likes.List(ctx, userID)
	if err != nil {
		return core.RetrievalResult{}, err
	}

	start := page * pageSize
	if start >= len(entries) {
		return core.RetrievalResult{Path: core.PathEmpty}, nil
	}
	end := start + pageSize
	if end > len(entries) {
		end = len(entries)
	}
	entries = entries[start:end]

	ids := make([]string, len(entries))
	for i, en := range entries {
		ids[i] = en.ItemID
	}
	rows, err := e.catalog.ByIDs(ctx, ids)
	if err != nil {
		return core.RetrievalResult{}, err
	}
	byID := make(map[string]core.CatalogItem, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}

	out := make([]core.DisplayItem, 0, len(entries))
	for _, en := range entries {
		row, ok := byID[en.ItemID]
		if !ok || !e.gate.IsDisplayable(row.Category) {
			continue
		}
		out = append(out, e.decorator.Item(core.NewItem(row), display.Options{Source: en.FeedOrigin}))
	}
	return core.RetrievalResult{
		Items:   out,
		HasMore: core.ContinueIf(len(out)),
		Path:    core.PathPlain,
	}, nil
}
