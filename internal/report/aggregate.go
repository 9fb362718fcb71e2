// Package report turns a user's transactions into period aggregates and the
// chat-facing report reply, delegating chart rendering to the reporting
// service.
package report

import (
	"sort"
	"time"

	"github.com/dimasprakoso/catatduit/types"
)

type Range struct {
	Start time.Time
	End   time.Time
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type TrendPoint struct {
	Date    string  `json:"date"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

type Aggregated struct {
	Period            types.ReportPeriod `json:"period"`
	IncomeTotal       float64            `json:"incomeTotal"`
	ExpenseTotal      float64            `json:"expenseTotal"`
	CategoryBreakdown []CategoryTotal    `json:"categoryBreakdown"`
	Trend             []TrendPoint       `json:"trend"`
}

// PeriodRange resolves a report period against now, all in UTC: daily from
// midnight, weekly from midnight six days back, monthly from the first of the
// month. The end of the range is always now.
func PeriodRange(period types.ReportPeriod, now time.Time) Range {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var start time.Time
	switch period {
	case types.PeriodDaily:
		start = midnight
	case types.PeriodWeekly:
		start = midnight.AddDate(0, 0, -6)
	default:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return Range{Start: start, End: now}
}

func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Aggregate computes income/expense totals, the expense-only category
// breakdown (descending by amount, ties keep first-seen order) and a per-day
// trend covering every calendar day in the range, including zero-activity
// days.
func Aggregate(transactions []types.Transaction, r Range, period types.ReportPeriod) Aggregated {
	out := Aggregated{
		Period:            period,
		CategoryBreakdown: []CategoryTotal{},
		Trend:             []TrendPoint{},
	}

	trendIndex := make(map[string]int)
	for cursor := r.Start.UTC(); !cursor.After(r.End); cursor = cursor.AddDate(0, 0, 1) {
		key := dateKey(cursor)
		trendIndex[key] = len(out.Trend)
		out.Trend = append(out.Trend, TrendPoint{Date: key})
	}

	categoryIndex := make(map[string]int)
	for _, tx := range transactions {
		if tx.Type == types.TransactionIncome {
			out.IncomeTotal += tx.Amount
		} else {
			out.ExpenseTotal += tx.Amount
			idx, ok := categoryIndex[tx.Category]
			if !ok {
				idx = len(out.CategoryBreakdown)
				categoryIndex[tx.Category] = idx
				out.CategoryBreakdown = append(out.CategoryBreakdown, CategoryTotal{Category: tx.Category})
			}
			out.CategoryBreakdown[idx].Total += tx.Amount
		}

		if idx, ok := trendIndex[dateKey(tx.OccurredAt)]; ok {
			if tx.Type == types.TransactionIncome {
				out.Trend[idx].Income += tx.Amount
			} else {
				out.Trend[idx].Expense += tx.Amount
			}
		}
	}

	sort.SliceStable(out.CategoryBreakdown, func(i, j int) bool {
		return out.CategoryBreakdown[i].Total > out.CategoryBreakdown[j].Total
	})
	sort.Slice(out.Trend, func(i, j int) bool {
		return out.Trend[i].Date < out.Trend[j].Date
	})

	return out
}
