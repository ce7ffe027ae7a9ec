package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// Calendar helpers for StockRepository, backed by the distinct trade dates
// present in all_stocks_days. Implements contracts.TradingCalendar.

// MinDate returns the earliest trade date known to the store.
func (r *StockRepository) MinDate(ctx context.Context) (time.Time, error) {
	return r.scanDate(ctx, "find min date",
		`SELECT MIN(trade_date) FROM all_stocks_days`)
}

// MaxDate returns the latest trade date known to the store.
func (r *StockRepository) MaxDate(ctx context.Context) (time.Time, error) {
	return r.scanDate(ctx, "find max date",
		`SELECT MAX(trade_date) FROM all_stocks_days`)
}

// NthTradingDateBefore returns the n-th distinct trading date strictly
// before date, or the zero time when fewer than n sessions precede it.
func (r *StockRepository) NthTradingDateBefore(ctx context.Context, date time.Time, n int) (time.Time, error) {
	query := `
		SELECT trade_date FROM (
			SELECT DISTINCT trade_date
			FROM all_stocks_days
			WHERE trade_date < $1
			ORDER BY trade_date DESC
			LIMIT 1 OFFSET $2
		) t
	`

	return r.scanDate(ctx, "find nth trading date before", query, date, n-1)
}

// NthTradingDateAfter returns the n-th distinct trading date strictly after
// date, or the zero time when fewer than n sessions follow it.
func (r *StockRepository) NthTradingDateAfter(ctx context.Context, date time.Time, n int) (time.Time, error) {
	query := `
		SELECT trade_date FROM (
			SELECT DISTINCT trade_date
			FROM all_stocks_days
			WHERE trade_date > $1
			ORDER BY trade_date ASC
			LIMIT 1 OFFSET $2
		) t
	`

	return r.scanDate(ctx, "find nth trading date after", query, date, n-1)
}

// scanDate runs a single-date query. Missing dates (no rows, or a NULL
// aggregate over an empty table) come back as the zero time, not an error.
func (r *StockRepository) scanDate(ctx context.Context, op, query string, args ...interface{}) (time.Time, error) {
	var date *time.Time
	err := r.pool.QueryRow(ctx, query, args...).Scan(&date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, storeErr(op, err)
	}
	if date == nil {
		return time.Time{}, nil
	}
	return *date, nil
}
