package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hyunwoo/stockgrid/internal/contracts"
)

// windowSessions is the store-defined span of the date window around the
// anchor, in trading sessions on each side.
const windowSessions = 20

// rowColumns is the SELECT list shared by every fetch query, in scan order.
const rowColumns = `ts_code, trade_date, open, high, low, close, pre_close,
	pct_chg, vol, amount, turnover_rate, ma5, ma10, ma120, ma250`

// StockRepository implements contracts.RowStore and contracts.TradingCalendar
// over the all_stocks_days table.
// ⭐ SSOT: 주가 데이터 조회는 여기서만
type StockRepository struct {
	pool *pgxpool.Pool
}

// NewStockRepository creates a new stock repository
func NewStockRepository(pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{pool: pool}
}

// FetchWindow returns rows for a page of instruments inside the trading-day
// window around the anchor. The window falls back to the store's min/max
// dates when fewer than windowSessions sessions exist on either side.
func (r *StockRepository) FetchWindow(ctx context.Context, tsCode string, anchor time.Time, limit, offset int) ([]contracts.StockRow, error) {
	start, end, err := r.windowBounds(ctx, anchor)
	if err != nil {
		return nil, err
	}

	// Instruments are paged first (ordered by anchor-date pct_chg so pages
	// are deterministic), then all of their rows in the window are fetched.
	query := `
		WITH page_codes AS (
			SELECT ts_code
			FROM all_stocks_days
			WHERE trade_date BETWEEN $1 AND $2
			  AND ($3 = '' OR ts_code = $3)
			GROUP BY ts_code
			ORDER BY MAX(pct_chg) FILTER (WHERE trade_date = $4) DESC NULLS LAST, ts_code
			LIMIT $5 OFFSET $6
		)
		SELECT ` + rowColumns + `
		FROM all_stocks_days s
		JOIN page_codes p USING (ts_code)
		WHERE s.trade_date BETWEEN $1 AND $2
		ORDER BY s.ts_code, s.trade_date
	`

	return r.fetchRows(ctx, "fetch window", query, start, end, tsCode, anchor, limit, offset)
}

// FetchLimitUp returns rows flagged limit-up on the anchor date, largest
// gain first.
func (r *StockRepository) FetchLimitUp(ctx context.Context, tsCode string, anchor time.Time, limit, offset int) ([]contracts.StockRow, error) {
	query := `
		SELECT ` + rowColumns + `
		FROM all_stocks_days
		WHERE trade_date = $1
		  AND is_limit_up
		  AND ($2 = '' OR ts_code = $2)
		ORDER BY pct_chg DESC, ts_code
		LIMIT $3 OFFSET $4
	`

	return r.fetchRows(ctx, "fetch limit-up", query, anchor, tsCode, limit, offset)
}

// FetchLimitDown returns rows flagged limit-down on the anchor date, largest
// loss first.
func (r *StockRepository) FetchLimitDown(ctx context.Context, tsCode string, anchor time.Time, limit, offset int) ([]contracts.StockRow, error) {
	query := `
		SELECT ` + rowColumns + `
		FROM all_stocks_days
		WHERE trade_date = $1
		  AND is_limit_down
		  AND ($2 = '' OR ts_code = $2)
		ORDER BY pct_chg ASC, ts_code
		LIMIT $3 OFFSET $4
	`

	return r.fetchRows(ctx, "fetch limit-down", query, anchor, tsCode, limit, offset)
}

// FetchHalfYearLine returns rows from the anchor forward where ma120 is defined.
func (r *StockRepository) FetchHalfYearLine(ctx context.Context, tsCode string, anchor time.Time, limit, offset int) ([]contracts.StockRow, error) {
	return r.fetchMaLine(ctx, "fetch half-year-line", "ma120", tsCode, anchor, limit, offset)
}

// FetchYearLine returns rows from the anchor forward where ma250 is defined.
func (r *StockRepository) FetchYearLine(ctx context.Context, tsCode string, anchor time.Time, limit, offset int) ([]contracts.StockRow, error) {
	return r.fetchMaLine(ctx, "fetch year-line", "ma250", tsCode, anchor, limit, offset)
}

// fetchMaLine pages instruments whose given moving average is present from
// the anchor date forward. maColumn is one of the fixed schema columns,
// never caller input.
func (r *StockRepository) fetchMaLine(ctx context.Context, op, maColumn, tsCode string, anchor time.Time, limit, offset int) ([]contracts.StockRow, error) {
	query := fmt.Sprintf(`
		WITH page_codes AS (
			SELECT DISTINCT ts_code
			FROM all_stocks_days
			WHERE trade_date >= $1
			  AND %[1]s IS NOT NULL
			  AND ($2 = '' OR ts_code = $2)
			ORDER BY ts_code
			LIMIT $3 OFFSET $4
		)
		SELECT `+rowColumns+`
		FROM all_stocks_days s
		JOIN page_codes p USING (ts_code)
		WHERE s.trade_date >= $1
		  AND s.%[1]s IS NOT NULL
		ORDER BY s.ts_code, s.trade_date
	`, maColumn)

	return r.fetchRows(ctx, op, query, anchor, tsCode, limit, offset)
}

// CountWindow counts distinct instruments with rows inside the window.
func (r *StockRepository) CountWindow(ctx context.Context, tsCode string, anchor time.Time) (int, error) {
	start, end, err := r.windowBounds(ctx, anchor)
	if err != nil {
		return 0, err
	}

	query := `
		SELECT COUNT(DISTINCT ts_code)
		FROM all_stocks_days
		WHERE trade_date BETWEEN $1 AND $2
		  AND ($3 = '' OR ts_code = $3)
	`

	return r.countStocks(ctx, "count window", query, start, end, tsCode)
}

// CountLimitUp counts distinct instruments flagged limit-up on the anchor date.
func (r *StockRepository) CountLimitUp(ctx context.Context, tsCode string, anchor time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT ts_code)
		FROM all_stocks_days
		WHERE trade_date = $1
		  AND is_limit_up
		  AND ($2 = '' OR ts_code = $2)
	`

	return r.countStocks(ctx, "count limit-up", query, anchor, tsCode)
}

// CountLimitDown counts distinct instruments flagged limit-down on the anchor date.
func (r *StockRepository) CountLimitDown(ctx context.Context, tsCode string, anchor time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT ts_code)
		FROM all_stocks_days
		WHERE trade_date = $1
		  AND is_limit_down
		  AND ($2 = '' OR ts_code = $2)
	`

	return r.countStocks(ctx, "count limit-down", query, anchor, tsCode)
}

// CountHalfYearLine counts distinct instruments with ma120 defined from the
// anchor forward.
func (r *StockRepository) CountHalfYearLine(ctx context.Context, tsCode string, anchor time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT ts_code)
		FROM all_stocks_days
		WHERE trade_date >= $1
		  AND ma120 IS NOT NULL
		  AND ($2 = '' OR ts_code = $2)
	`

	return r.countStocks(ctx, "count half-year-line", query, anchor, tsCode)
}

// CountYearLine counts distinct instruments with ma250 defined from the
// anchor forward.
func (r *StockRepository) CountYearLine(ctx context.Context, tsCode string, anchor time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT ts_code)
		FROM all_stocks_days
		WHERE trade_date >= $1
		  AND ma250 IS NOT NULL
		  AND ($2 = '' OR ts_code = $2)
	`

	return r.countStocks(ctx, "count year-line", query, anchor, tsCode)
}

// windowBounds derives the trading-day window around the anchor, falling
// back to the store's overall bounds when not enough sessions exist.
func (r *StockRepository) windowBounds(ctx context.Context, anchor time.Time) (time.Time, time.Time, error) {
	start, err := r.NthTradingDateBefore(ctx, anchor, windowSessions)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start.IsZero() {
		if start, err = r.MinDate(ctx); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	end, err := r.NthTradingDateAfter(ctx, anchor, windowSessions)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.IsZero() {
		if end, err = r.MaxDate(ctx); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	return start, end, nil
}

// fetchRows runs a row query and scans the fixed column set.
func (r *StockRepository) fetchRows(ctx context.Context, op, query string, args ...interface{}) ([]contracts.StockRow, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	var result []contracts.StockRow
	for rows.Next() {
		var row contracts.StockRow
		if err := rows.Scan(
			&row.TsCode, &row.TradeDate, &row.Open, &row.High, &row.Low,
			&row.Close, &row.PreClose, &row.PctChg, &row.Vol, &row.Amount,
			&row.TurnoverRate, &row.MA5, &row.MA10, &row.MA120, &row.MA250,
		); err != nil {
			return nil, storeErr(op, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}

	return result, nil
}

// countStocks runs a distinct-instrument count query.
func (r *StockRepository) countStocks(ctx context.Context, op, query string, args ...interface{}) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, storeErr(op, err)
	}
	return count, nil
}

// storeErr classifies any pgx failure as ErrStoreUnavailable so callers can
// map it to a server-side failure without inspecting driver errors.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", contracts.ErrStoreUnavailable, op, err)
}
