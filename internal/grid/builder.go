package grid

import (
	"context"
	"time"

	"github.com/hyunwoo/stockgrid/internal/contracts"
	"github.com/hyunwoo/stockgrid/internal/query"
)

// Response is the wire format shared by all five endpoints. grid_data is a
// 3-level nested structure: instruments (ranked) → rows (ascending date) →
// 15 column values in ColumnNames order.
type Response struct {
	ColumnNames []string          `json:"column_names"`
	Date        string            `json:"date"`
	GridData    [][][]interface{} `json:"grid_data"`
	Page        int               `json:"page"`
	StockCount  int               `json:"stock_count"`
}

// View identifies one of the five query variants.
type View int

const (
	ViewAllData View = iota
	ViewLimitUp
	ViewLimitDown
	ViewHalfYearLine
	ViewYearLine
)

// String returns the view name used in logs and cache keys
func (v View) String() string {
	switch v {
	case ViewAllData:
		return "all_data"
	case ViewLimitUp:
		return "limit_up"
	case ViewLimitDown:
		return "limit_down"
	case ViewHalfYearLine:
		return "half_year_line"
	case ViewYearLine:
		return "year_line"
	default:
		return "unknown"
	}
}

// viewOps is the per-view dispatch: fetch operation, count operation and
// ranking mode. The five views share the whole assembly path and differ
// only here.
type viewOps struct {
	mode  RankingMode
	fetch func(contracts.RowStore, context.Context, string, time.Time, int, int) ([]contracts.StockRow, error)
	count func(contracts.RowStore, context.Context, string, time.Time) (int, error)
}

var views = map[View]viewOps{
	ViewAllData: {
		mode:  RankByChange,
		fetch: contracts.RowStore.FetchWindow,
		count: contracts.RowStore.CountWindow,
	},
	ViewLimitUp: {
		mode:  KeepStoreOrder,
		fetch: contracts.RowStore.FetchLimitUp,
		count: contracts.RowStore.CountLimitUp,
	},
	ViewLimitDown: {
		mode:  KeepStoreOrder,
		fetch: contracts.RowStore.FetchLimitDown,
		count: contracts.RowStore.CountLimitDown,
	},
	ViewHalfYearLine: {
		mode:  KeepStoreOrder,
		fetch: contracts.RowStore.FetchHalfYearLine,
		count: contracts.RowStore.CountHalfYearLine,
	},
	ViewYearLine: {
		mode:  KeepStoreOrder,
		fetch: contracts.RowStore.FetchYearLine,
		count: contracts.RowStore.CountYearLine,
	},
}

// Builder composes planner, row store and assembler into the final grid
// response. Stateless per request; safe for concurrent use.
// ⭐ SSOT: 그리드 응답 조립은 여기서만
type Builder struct {
	planner *query.Planner
	store   contracts.RowStore
}

// NewBuilder creates a new response builder
func NewBuilder(planner *query.Planner, store contracts.RowStore) *Builder {
	return &Builder{
		planner: planner,
		store:   store,
	}
}

// Build executes one view query: resolve the anchor, fetch the page of rows
// and the total instrument count, assemble and serialize. Store errors
// propagate unchanged; an empty fetch yields the canonical empty response.
func (b *Builder) Build(ctx context.Context, view View, tsCode, tradeDate string, pageNum int) (*Response, error) {
	ops := views[view]

	anchor, err := b.planner.ResolveAnchor(ctx, tradeDate)
	if err != nil {
		return nil, err
	}

	offset := b.planner.Offset(pageNum)
	if pageNum < 1 {
		pageNum = 1
	}

	rows, err := ops.fetch(b.store, ctx, tsCode, anchor, b.planner.PageSize(), offset)
	if err != nil {
		return nil, err
	}

	// No matching rows is a well-defined zero-data response, not a failure.
	if len(rows) == 0 {
		return emptyResponse(anchor, tradeDate, pageNum), nil
	}

	stockCount, err := ops.count(b.store, ctx, tsCode, anchor)
	if err != nil {
		return nil, err
	}

	groups := Assemble(rows, ops.mode, anchor)

	gridData := make([][][]interface{}, 0, len(groups))
	for _, g := range groups {
		rowList := make([][]interface{}, 0, len(g.Rows))
		for _, row := range g.Rows {
			rowList = append(rowList, RowValues(row))
		}
		gridData = append(gridData, rowList)
	}

	return &Response{
		ColumnNames: ColumnNames,
		Date:        echoDate(anchor, tradeDate),
		GridData:    gridData,
		Page:        pageNum,
		StockCount:  stockCount,
	}, nil
}

// emptyResponse is the canonical "no data" contract, identical across all
// five views: fixed columns, echoed date and page, zero grid, zero count.
func emptyResponse(anchor time.Time, tradeDate string, pageNum int) *Response {
	return &Response{
		ColumnNames: ColumnNames,
		Date:        echoDate(anchor, tradeDate),
		GridData:    make([][][]interface{}, 0),
		Page:        pageNum,
		StockCount:  0,
	}
}

// echoDate returns the requested date string when present, else the
// resolved anchor.
func echoDate(anchor time.Time, tradeDate string) string {
	if tradeDate != "" {
		return tradeDate
	}
	return anchor.Format(query.DateFormat)
}
