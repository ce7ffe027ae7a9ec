package query

import (
	"context"
	"fmt"
	"time"

	"github.com/hyunwoo/stockgrid/internal/contracts"
)

// DateFormat is the wire format for trade dates (ISO, dash-separated).
const DateFormat = "2006-01-02"

// Planner resolves the effective anchor date and pagination offset from
// request input. Page size is fixed at construction and shared by every
// endpoint in one deployment.
// ⭐ SSOT: 쿼리 앵커/오프셋 계산은 여기서만
type Planner struct {
	calendar contracts.TradingCalendar
	pageSize int
}

// NewPlanner creates a new query planner
func NewPlanner(calendar contracts.TradingCalendar, pageSize int) *Planner {
	return &Planner{
		calendar: calendar,
		pageSize: pageSize,
	}
}

// ResolveAnchor resolves the anchor trade date from the requested date
// string. An empty input falls back to the latest trading day known to the
// calendar; a malformed non-empty input fails with ErrInvalidDateFormat and
// is never silently defaulted.
func (p *Planner) ResolveAnchor(ctx context.Context, dateStr string) (time.Time, error) {
	if dateStr == "" {
		maxDate, err := p.calendar.MaxDate(ctx)
		if err != nil {
			return time.Time{}, err
		}
		return maxDate, nil
	}

	anchor, err := time.Parse(DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", contracts.ErrInvalidDateFormat, dateStr)
	}
	return anchor, nil
}

// Offset converts a 1-based page number into a row-store offset.
// Zero or negative page numbers are treated as page 1.
func (p *Planner) Offset(pageNum int) int {
	if pageNum < 1 {
		pageNum = 1
	}
	return (pageNum - 1) * p.pageSize
}

// PageSize returns the fixed page size
func (p *Planner) PageSize() int {
	return p.pageSize
}
