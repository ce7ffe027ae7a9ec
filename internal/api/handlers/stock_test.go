package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunwoo/stockgrid/internal/contracts"
	"github.com/hyunwoo/stockgrid/internal/grid"
	"github.com/hyunwoo/stockgrid/internal/query"
	"github.com/hyunwoo/stockgrid/pkg/config"
	"github.com/hyunwoo/stockgrid/pkg/logger"
	"github.com/hyunwoo/stockgrid/pkg/redis"
)

// stubStore serves a fixed row set for every view
type stubStore struct {
	rows  []contracts.StockRow
	count int
	err   error
}

func (s *stubStore) result() ([]contracts.StockRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *stubStore) FetchWindow(ctx context.Context, tsCode string, anchor time.Time, limit, offset int) ([]contracts.StockRow, error) {
	return s.result()
}

func (s *stubStore) FetchLimitUp(ctx context.Context, tsCode string, anchor time.Time, limit, offset int) ([]contracts.StockRow, error) {
	return s.result()
}

func (s *stubStore) FetchLimitDown(ctx context.Context, tsCode string, anchor time.Time, limit, offset int) ([]contracts.StockRow, error) {
	return s.result()
}

func (s *stubStore) FetchHalfYearLine(ctx context.Context, tsCode string, anchor time.Time, limit, offset int) ([]contracts.StockRow, error) {
	return s.result()
}

func (s *stubStore) FetchYearLine(ctx context.Context, tsCode string, anchor time.Time, limit, offset int) ([]contracts.StockRow, error) {
	return s.result()
}

func (s *stubStore) CountWindow(ctx context.Context, tsCode string, anchor time.Time) (int, error) {
	return s.count, s.err
}

func (s *stubStore) CountLimitUp(ctx context.Context, tsCode string, anchor time.Time) (int, error) {
	return s.count, s.err
}

func (s *stubStore) CountLimitDown(ctx context.Context, tsCode string, anchor time.Time) (int, error) {
	return s.count, s.err
}

func (s *stubStore) CountHalfYearLine(ctx context.Context, tsCode string, anchor time.Time) (int, error) {
	return s.count, s.err
}

func (s *stubStore) CountYearLine(ctx context.Context, tsCode string, anchor time.Time) (int, error) {
	return s.count, s.err
}

func (s *stubStore) MinDate(ctx context.Context) (time.Time, error) { return time.Time{}, nil }

func (s *stubStore) MaxDate(ctx context.Context) (time.Time, error) {
	return time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC), s.err
}

func (s *stubStore) NthTradingDateBefore(ctx context.Context, date time.Time, n int) (time.Time, error) {
	return time.Time{}, nil
}

func (s *stubStore) NthTradingDateAfter(ctx context.Context, date time.Time, n int) (time.Time, error) {
	return time.Time{}, nil
}

func newTestHandler(t *testing.T, s *stubStore) *StockHandler {
	t.Helper()

	cfg := &config.Config{Env: "development", LogLevel: "error", LogFormat: "json"}
	log := logger.New(cfg)

	// Disabled Redis: the cache is a no-op
	client, err := redis.New(cfg)
	require.NoError(t, err)
	cache := redis.NewCache(client, "stockgrid-test")

	planner := query.NewPlanner(s, 10)
	builder := grid.NewBuilder(planner, s)
	return NewStockHandler(builder, cache, time.Minute, log)
}

func TestGetAllData(t *testing.T) {
	ma120 := 10.1
	s := &stubStore{
		rows: []contracts.StockRow{
			{
				TsCode:    "000001.SZ",
				TradeDate: time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
				Close:     10.8,
				PctChg:    5.0,
				MA120:     &ma120,
				// MA250 absent
			},
		},
		count: 1,
	}
	h := newTestHandler(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/stock/data?tradeDate=2023-01-05&pageNum=1", nil)
	rec := httptest.NewRecorder()
	h.GetAllData(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		ColumnNames []string          `json:"column_names"`
		Date        string            `json:"date"`
		GridData    [][][]interface{} `json:"grid_data"`
		Page        int               `json:"page"`
		StockCount  int               `json:"stock_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Len(t, resp.ColumnNames, 15)
	assert.Equal(t, "2023-01-05", resp.Date)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 1, resp.StockCount)

	require.Len(t, resp.GridData, 1)
	require.Len(t, resp.GridData[0], 1)
	values := resp.GridData[0][0]
	require.Len(t, values, 15)
	assert.Equal(t, "000001.SZ", values[0])
	assert.Equal(t, 10.1, values[13])
	assert.Nil(t, values[14], "absent ma250 must be null, not 0")
}

func TestGetAllDataEmptyResult(t *testing.T) {
	h := newTestHandler(t, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/stock/data?tradeDate=2023-01-05", nil)
	rec := httptest.NewRecorder()
	h.GetAllData(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "2023-01-05", resp["date"])
	assert.Equal(t, float64(0), resp["stock_count"])
	assert.Equal(t, []interface{}{}, resp["grid_data"])
}

func TestGetAllDataInvalidDate(t *testing.T) {
	h := newTestHandler(t, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/stock/data?tradeDate=not-a-date", nil)
	rec := httptest.NewRecorder()
	h.GetAllData(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAllDataStoreFailure(t *testing.T) {
	h := newTestHandler(t, &stubStore{err: contracts.ErrStoreUnavailable})

	req := httptest.NewRequest(http.MethodGet, "/api/stock/data?tradeDate=2023-01-05", nil)
	rec := httptest.NewRecorder()
	h.GetAllData(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAllViewsShareResponseShape(t *testing.T) {
	s := &stubStore{
		rows: []contracts.StockRow{
			{TsCode: "600000.SH", TradeDate: time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), PctChg: 10.0},
		},
		count: 1,
	}
	h := newTestHandler(t, s)

	endpoints := []func(http.ResponseWriter, *http.Request){
		h.GetAllData, h.GetLimitUp, h.GetLimitDown, h.GetHalfYearLine, h.GetYearLine,
	}

	for _, serve := range endpoints {
		req := httptest.NewRequest(http.MethodGet, "/?tradeDate=2023-01-05", nil)
		rec := httptest.NewRecorder()
		serve(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		for _, key := range []string{"column_names", "date", "grid_data", "page", "stock_count"} {
			assert.Contains(t, resp, key)
		}
	}
}
