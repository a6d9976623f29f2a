// Package api serves read-only JSON views over the stored history.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/warera-analytics/market-history/internal/history"
	"github.com/warera-analytics/market-history/internal/market"
	"github.com/warera-analytics/market-history/internal/monitoring"
	"github.com/warera-analytics/market-history/internal/store"
)

// HistoryReader is the store surface the API needs.
type HistoryReader interface {
	store.Reader
	Ping(ctx context.Context) error
}

// Option configures the handler.
type Option func(*server)

// WithClock overrides the reference time for windows.
func WithClock(now func() time.Time) Option {
	return func(s *server) {
		s.now = now
	}
}

// WithCORSOrigins sets the allowed origins. Defaults to "*".
func WithCORSOrigins(origins []string) Option {
	return func(s *server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

type server struct {
	reader  HistoryReader
	now     func() time.Time
	origins []string
}

// NewHandler builds the router.
func NewHandler(reader HistoryReader, opts ...Option) http.Handler {
	s := &server{
		reader:  reader,
		now:     time.Now,
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/market", s.marketHistory)
		r.Get("/market/latest", s.latestMarket)
		r.Get("/profit", s.profitHistory)
		r.Get("/profit/ranking", s.profitRanking)
		r.Get("/status", s.status)
	})
	return r
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.reader.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type seriesResponse struct {
	Window history.Window   `json:"window"`
	Series []history.Series `json:"series"`
}

func (s *server) marketHistory(w http.ResponseWriter, r *http.Request) {
	filter, window, ok := s.parseFilter(w, r)
	if !ok {
		return
	}
	if filter.Product != "" {
		if _, valid := market.ParseExtendedProduct(filter.Product); !valid {
			writeError(w, http.StatusBadRequest, "unknown product "+filter.Product)
			return
		}
	}

	rows, err := s.reader.ListMarketHistory(r.Context(), filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seriesResponse{Window: window, Series: nonNil(history.MarketSeries(rows))})
}

func (s *server) profitHistory(w http.ResponseWriter, r *http.Request) {
	filter, window, ok := s.parseFilter(w, r)
	if !ok {
		return
	}
	if filter.Product != "" {
		if _, valid := market.ParseProduct(filter.Product); !valid {
			writeError(w, http.StatusBadRequest, "unknown product "+filter.Product)
			return
		}
	}

	rows, err := s.reader.ListProfitHistory(r.Context(), filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seriesResponse{Window: window, Series: nonNil(history.ProfitSeries(rows))})
}

func (s *server) latestMarket(w http.ResponseWriter, r *http.Request) {
	rows, err := s.reader.LatestMarket(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	var ts int64
	if len(rows) > 0 {
		ts = rows[0].Timestamp
	}
	writeJSON(w, http.StatusOK, map[string]any{"timestamp": ts, "rows": nonNil(rows)})
}

func (s *server) profitRanking(w http.ResponseWriter, r *http.Request) {
	rows, err := s.reader.LatestProfits(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	var ts int64
	if len(rows) > 0 {
		ts = rows[0].Timestamp
	}
	writeJSON(w, http.StatusOK, map[string]any{"timestamp": ts, "ranking": nonNil(history.RankProfits(rows))})
}

func (s *server) status(w http.ResponseWriter, r *http.Request) {
	snap, err := monitoring.NewCollector(s.reader).Collect(r.Context(), 24)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) parseFilter(w http.ResponseWriter, r *http.Request) (store.HistoryFilter, history.Window, bool) {
	window, err := history.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return store.HistoryFilter{}, "", false
	}
	filter := window.Filter(s.now())
	filter.Product = r.URL.Query().Get("product")
	return filter, window, true
}

// helpers

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zap.L().Error("api: request failed",
		zap.String("component", "api"),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("component", "api"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
