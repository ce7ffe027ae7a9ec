package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: 주가 데이터 타입과 저장소 인터페이스 정의는 여기서만

// StockRow is one instrument on one trading day. (TsCode, TradeDate) uniquely
// identifies a row; rows are a read-only view over the store and are never
// mutated after fetch.
type StockRow struct {
	TsCode       string
	TradeDate    time.Time
	Open         float64
	High         float64
	Low          float64
	Close        float64
	PreClose     float64
	PctChg       float64
	Vol          float64
	Amount       float64
	TurnoverRate float64

	// Moving averages are precomputed upstream. nil means insufficient
	// history (e.g. fewer than 250 sessions for MA250).
	MA5   *float64
	MA10  *float64
	MA120 *float64
	MA250 *float64
}

// RowStore fetches daily stock rows under the view-specific filters.
// tsCode may be empty, meaning all instruments. Pagination (limit/offset)
// applies to distinct instruments, not rows. Every fetch has a matching
// count operation returning the number of distinct instruments satisfying
// the same predicate.
type RowStore interface {
	// FetchWindow returns rows inside the store-defined trading-day window
	// around anchor (±20 sessions).
	FetchWindow(ctx context.Context, tsCode string, anchor time.Time, limit, offset int) ([]StockRow, error)

	// FetchLimitUp returns rows flagged limit-up on the anchor date,
	// ordered by the store (pct_chg descending).
	FetchLimitUp(ctx context.Context, tsCode string, anchor time.Time, limit, offset int) ([]StockRow, error)

	// FetchLimitDown returns rows flagged limit-down on the anchor date,
	// ordered by the store (pct_chg ascending).
	FetchLimitDown(ctx context.Context, tsCode string, anchor time.Time, limit, offset int) ([]StockRow, error)

	// FetchHalfYearLine returns rows from the anchor forward where ma120 is defined.
	FetchHalfYearLine(ctx context.Context, tsCode string, anchor time.Time, limit, offset int) ([]StockRow, error)

	// FetchYearLine returns rows from the anchor forward where ma250 is defined.
	FetchYearLine(ctx context.Context, tsCode string, anchor time.Time, limit, offset int) ([]StockRow, error)

	CountWindow(ctx context.Context, tsCode string, anchor time.Time) (int, error)
	CountLimitUp(ctx context.Context, tsCode string, anchor time.Time) (int, error)
	CountLimitDown(ctx context.Context, tsCode string, anchor time.Time) (int, error)
	CountHalfYearLine(ctx context.Context, tsCode string, anchor time.Time) (int, error)
	CountYearLine(ctx context.Context, tsCode string, anchor time.Time) (int, error)
}

// TradingCalendar answers calendar questions against the store's known
// trading days.
type TradingCalendar interface {
	// MinDate returns the earliest trade date known to the store.
	MinDate(ctx context.Context) (time.Time, error)

	// MaxDate returns the latest trade date known to the store, treated
	// as "the most recent trading day".
	MaxDate(ctx context.Context) (time.Time, error)

	// NthTradingDateBefore returns the n-th distinct trading date strictly
	// before date. Returns the zero time when no such date exists.
	NthTradingDateBefore(ctx context.Context, date time.Time, n int) (time.Time, error)

	// NthTradingDateAfter returns the n-th distinct trading date strictly
	// after date. Returns the zero time when no such date exists.
	NthTradingDateAfter(ctx context.Context, date time.Time, n int) (time.Time, error)
}
