package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/rushteam/vitrine/core"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// InteractionRequest 是 POST /interactions 的请求体。
type InteractionRequest struct {
	UserID string `json:"user_id" validate:"required"`
	ItemID string `json:"item_id" validate:"required"`
	Kind   string `json:"kind" validate:"required,oneof=view like purchase share"`
}

// LikeRequest 是 POST /likes 的请求体。Feed 是喜欢时所在的 feed。
type LikeRequest struct {
	UserID string `json:"user_id" validate:"required"`
	ItemID string `json:"item_id" validate:"required"`
	Feed   string `json:"feed"`
}

// LikeResponse 报告是否新建了喜欢。
type LikeResponse struct {
	Created bool `json:"created"`
}

// LikedResponse 是 GET /likes/{user}/{item} 的响应。
type LikedResponse struct {
	Liked bool `json:"liked"`
}

// SearchResponse 是 GET /search 的响应。
type SearchResponse struct {
	Query string             `json:"query"`
	Items []core.DisplayItem `json:"items"`
}

// FeedsResponse 列出可用的 feed。
type FeedsResponse struct {
	Feeds []string `json:"feeds"`
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return core.InvalidInput(core.ModuleAPI, fmt.Sprintf("malformed body: %v", err))
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return core.InvalidInput(core.ModuleAPI, fmt.Sprintf("field %s failed %s", verrs[0].Field(), verrs[0].Tag()))
		}
		return core.InvalidInput(core.ModuleAPI, err.Error())
	}
	return nil
}

// intParam 读取整数查询参数，缺省时返回 def。
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.InvalidInput(core.ModuleAPI, fmt.Sprintf("%s must be an integer", name))
	}
	return v, nil
}

func (h *Handler) pageWindow(r *http.Request, defSize int) (int, int, error) {
	page, err := intParam(r, "page", 0)
	if err != nil {
		return 0, 0, err
	}
	size, err := intParam(r, "size", defSize)
	if err != nil {
		return 0, 0, err
	}
	if size > h.maxPageSize {
		return 0, 0, core.InvalidInput(core.ModuleAPI, fmt.Sprintf("size must be <= %d", h.maxPageSize))
	}
	return page, size, nil
}

// styleFromQuery 读取可选的风格问卷参数；全部为空时返回 nil。
func styleFromQuery(r *http.Request) (*core.StyleProfile, error) {
	q := r.URL.Query()
	p := &core.StyleProfile{
		Gender:   q.Get("style_gender"),
		Size:     q.Get("style_size"),
		Style:    q.Get("style"),
		Occasion: q.Get("occasion"),
	}
	if *p == (core.StyleProfile{}) {
		return nil, nil
	}
	if err := validate.Struct(p); err != nil {
		return nil, core.InvalidInput(core.ModuleAPI, "invalid style profile")
	}
	return p, nil
}

// Health 是存活探针。
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Feeds 列出已配置的 feed。
func (h *Handler) Feeds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, FeedsResponse{Feeds: h.feeds.Names()})
}

// Page 处理 GET /feeds/{feed}/page?user_id=&page=&size=&plain=。
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	feed, err := h.feeds.Get(chi.URLParam(r, "feed"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	page, size, err := h.pageWindow(r, 20)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	style, err := styleFromQuery(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	plain, _ := strconv.ParseBool(r.URL.Query().Get("plain"))

	res, err := h.engine.GetPage(r.Context(), core.RetrievalRequest{
		UserID:   r.URL.Query().Get("user_id"),
		Feed:     feed,
		Page:     page,
		PageSize: size,
		Style:    style,
		Plain:    plain,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RecordInteraction 处理 POST /interactions。写入是异步的，成功入队即返回 202。
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req InteractionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.engine.RecordInteraction(r.Context(), req.UserID, req.ItemID, req.Kind); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Like 处理 POST /likes。新建返回 201，已经喜欢过返回 200。
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	var req LikeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	created, err := h.engine.Like(r.Context(), req.UserID, req.ItemID, req.Feed)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, LikeResponse{Created: created})
}

// Unlike 处理 DELETE /likes/{user}/{item}，幂等。
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Unlike(r.Context(), chi.URLParam(r, "user"), chi.URLParam(r, "item")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// IsLiked 处理 GET /likes/{user}/{item}。
func (h *Handler) IsLiked(w http.ResponseWriter, r *http.Request) {
	liked, err := h.engine.IsLiked(r.Context(), chi.URLParam(r, "user"), chi.URLParam(r, "item"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, LikedResponse{Liked: liked})
}

// Liked 处理 GET /likes/{user}?page=&size=。
func (h *Handler) Liked(w http.ResponseWriter, r *http.Request) {
	page, size, err := h.pageWindow(r, 20)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	res, err := h.engine.Liked(r.Context(), chi.URLParam(r, "user"), page, size)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Search 处理 GET /search?q=。
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	items, err := h.searcher.Search(r.Context(), q)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if items == nil {
		items = []core.DisplayItem{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: q, Items: items})
}
