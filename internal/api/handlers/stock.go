package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hyunwoo/stockgrid/internal/contracts"
	"github.com/hyunwoo/stockgrid/internal/grid"
	"github.com/hyunwoo/stockgrid/pkg/logger"
	"github.com/hyunwoo/stockgrid/pkg/redis"
)

// StockHandler handles the stock grid API endpoints
// ⭐ SSOT: 주가 그리드 API 핸들러는 이 구조체에서만
type StockHandler struct {
	builder  *grid.Builder
	cache    *redis.Cache
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(builder *grid.Builder, cache *redis.Cache, cacheTTL time.Duration, log *logger.Logger) *StockHandler {
	return &StockHandler{
		builder:  builder,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// GetAllData returns the unfiltered window view, ranked by percent change.
// GET /api/stock/data?tsCode=&tradeDate=&pageNum=1
func (h *StockHandler) GetAllData(w http.ResponseWriter, r *http.Request) {
	h.serveGrid(w, r, grid.ViewAllData)
}

// GetLimitUp returns instruments that hit the daily up-limit on the anchor date.
// GET /api/stock/limit-up
func (h *StockHandler) GetLimitUp(w http.ResponseWriter, r *http.Request) {
	h.serveGrid(w, r, grid.ViewLimitUp)
}

// GetLimitDown returns instruments that hit the daily down-limit on the anchor date.
// GET /api/stock/limit-down
func (h *StockHandler) GetLimitDown(w http.ResponseWriter, r *http.Request) {
	h.serveGrid(w, r, grid.ViewLimitDown)
}

// GetHalfYearLine returns instruments with a defined 120-day moving average.
// GET /api/stock/half-year-line
func (h *StockHandler) GetHalfYearLine(w http.ResponseWriter, r *http.Request) {
	h.serveGrid(w, r, grid.ViewHalfYearLine)
}

// GetYearLine returns instruments with a defined 250-day moving average.
// GET /api/stock/year-line
func (h *StockHandler) GetYearLine(w http.ResponseWriter, r *http.Request) {
	h.serveGrid(w, r, grid.ViewYearLine)
}

// serveGrid runs one grid query: parse params, consult the response cache,
// build, map errors to status codes.
func (h *StockHandler) serveGrid(w http.ResponseWriter, r *http.Request, view grid.View) {
	ctx := r.Context()

	tsCode := r.URL.Query().Get("tsCode")
	tradeDate := r.URL.Query().Get("tradeDate")

	pageNum := 1
	if pageStr := r.URL.Query().Get("pageNum"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil {
			pageNum = p
		}
	}

	cacheKey := fmt.Sprintf("%s:%s:%s:%d", view, tsCode, tradeDate, pageNum)
	var cached grid.Response
	if hit, err := h.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		respondJSON(w, http.StatusOK, &cached)
		return
	}

	resp, err := h.builder.Build(ctx, view, tsCode, tradeDate, pageNum)
	if err != nil {
		if errors.Is(err, contracts.ErrInvalidDateFormat) {
			respondError(w, http.StatusBadRequest, "Invalid tradeDate (expected YYYY-MM-DD)")
			return
		}

		h.logger.WithError(err).WithFields(map[string]interface{}{
			"view":       view.String(),
			"ts_code":    tsCode,
			"trade_date": tradeDate,
		}).Error("Failed to build stock grid")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve stock data")
		return
	}

	if err := h.cache.Set(ctx, cacheKey, resp, h.cacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache stock grid response")
	}

	respondJSON(w, http.StatusOK, resp)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
