package grid

import (
	"sort"
	"time"

	"github.com/hyunwoo/stockgrid/internal/contracts"
	"github.com/hyunwoo/stockgrid/internal/query"
)

// ColumnNames is the fixed 15-column schema shared by every endpoint.
// Row values are emitted in exactly this order.
// ⭐ SSOT: 그리드 컬럼 스키마는 여기서만
var ColumnNames = []string{
	"ts_code", "trade_date", "open", "high",
	"low", "close", "pre_close", "pct_chg", "vol", "amount",
	"turnover_rate", "ma5", "ma10", "ma120", "ma250",
}

// RankingMode selects how instrument groups are ordered in the grid.
type RankingMode int

const (
	// RankByChange orders instruments descending by the pct_chg of the row
	// closest to the anchor date (unfiltered view).
	RankByChange RankingMode = iota

	// KeepStoreOrder preserves the store's row order when establishing
	// group iteration order (limit-up/down and moving-average views, where
	// the store has already ordered qualifying instruments).
	KeepStoreOrder
)

// Group is one instrument's rows, ascending by trade date.
type Group struct {
	TsCode string
	Rows   []contracts.StockRow
}

// Assemble groups rows by instrument, orders the groups according to mode,
// and sorts each group's rows ascending by trade date. The input is assumed
// non-empty; the caller short-circuits empty results before assembly.
func Assemble(rows []contracts.StockRow, mode RankingMode, anchor time.Time) []Group {
	// Group by ts_code preserving first-encounter order. Encounter order is
	// the store's row order, which KeepStoreOrder relies on.
	index := make(map[string]int, len(rows))
	groups := make([]Group, 0)
	for _, row := range rows {
		i, ok := index[row.TsCode]
		if !ok {
			i = len(groups)
			index[row.TsCode] = i
			groups = append(groups, Group{TsCode: row.TsCode})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}

	// Ascending trade dates within a group. Stable, though ties cannot
	// occur: (ts_code, trade_date) is unique.
	for i := range groups {
		g := groups[i].Rows
		sort.SliceStable(g, func(a, b int) bool {
			return g[a].TradeDate.Before(g[b].TradeDate)
		})
	}

	if mode == RankByChange {
		keys := rankingKeys(rows, anchor)
		sort.SliceStable(groups, func(a, b int) bool {
			return keys[groups[a].TsCode] > keys[groups[b].TsCode]
		})
	}

	return groups
}

// rankingKeys computes, in a single pass, each instrument's ranking key: the
// pct_chg of its row closest (by absolute day distance) to the anchor date.
// When two rows are equidistant the first in input order wins. Instruments
// with no qualifying row keep the zero key.
func rankingKeys(rows []contracts.StockRow, anchor time.Time) map[string]float64 {
	keys := make(map[string]float64)
	best := make(map[string]int64)

	for _, row := range rows {
		dist := dayDistance(row.TradeDate, anchor)
		if prev, ok := best[row.TsCode]; ok && dist >= prev {
			continue
		}
		best[row.TsCode] = dist
		keys[row.TsCode] = row.PctChg
	}

	return keys
}

// dayDistance returns the absolute distance between two dates in days.
func dayDistance(a, b time.Time) int64 {
	d := a.Unix()/86400 - b.Unix()/86400
	if d < 0 {
		d = -d
	}
	return d
}

// RowValues serializes one row into column order. Absent moving averages
// stay nil and marshal as JSON null, never a numeric placeholder.
func RowValues(r contracts.StockRow) []interface{} {
	return []interface{}{
		r.TsCode,
		r.TradeDate.Format(query.DateFormat),
		r.Open,
		r.High,
		r.Low,
		r.Close,
		r.PreClose,
		r.PctChg,
		r.Vol,
		r.Amount,
		r.TurnoverRate,
		r.MA5,
		r.MA10,
		r.MA120,
		r.MA250,
	}
}
