// Package api 把取页、交互、喜欢与搜索入口暴露为 HTTP 接口（chi）。
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rushteam/vitrine/config"
	"github.com/rushteam/vitrine/engine"
	"github.com/rushteam/vitrine/logging"
	"github.com/rushteam/vitrine/search"
)

// DefaultMaxPageSize 是未配置时允许的最大页大小。
const DefaultMaxPageSize = 100

// Handler 持有 HTTP 处理器依赖。
type Handler struct {
	engine      *engine.Engine
	searcher    *search.Searcher
	feeds       *config.Registry
	maxPageSize int
	log         zerolog.Logger
}

// New 创建 Handler；maxPageSize <= 0 时使用 DefaultMaxPageSize。
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(e *engine.Engine, s *search.Searcher, feeds *config.Registry, maxPageSize int, logger zerolog.Logger) *Handler {
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	return &Handler{
		engine:      e,
		searcher:    s,
		feeds:       feeds,
		maxPageSize: maxPageSize,
		log:         logging.WithComponent(logger, "api"),
	}
}

// Routes 构建路由。
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(Metrics)

		r.Get("/feeds", h.Feeds)
		r.Get("/feeds/{feed}/page", h.Page)
		r.Get("/search", h.Search)
		r.Post("/interactions", h.RecordInteraction)

		r.Route("/likes", func(r chi.Router) {
			r.Post("/", h.Like)
			r.Get("/{user}", h.Liked)
			r.Get("/{user}/{item}", h.IsLiked)
			r.Delete("/{user}/{item}", h.Unlike)
		})
	})
	return r
}
