// Package budget manages per-category monthly spending limits and the alert
// that fires when a category crosses its limit.
package budget

import (
	"context"
	"time"

	"github.com/dimasprakoso/catatduit/internal/messages"
	"github.com/dimasprakoso/catatduit/types"
)

type Service struct {
	budgets      types.BudgetStore
	transactions types.TransactionStore
	now          func() time.Time
}

func NewService(budgets types.BudgetStore, transactions types.TransactionStore) *Service {
	return &Service{budgets: budgets, transactions: transactions, now: time.Now}
}

// MonthRange returns the UTC calendar month containing now, inclusive of the
// month's last millisecond.
func MonthRange(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end
}

// Set upserts the category limit and replies with the limit, the amount
// already spent this month and the remainder.
func (s *Service) Set(ctx context.Context, userID, category string, monthlyLimit float64) (string, error) {
	b, err := s.budgets.UpsertBudget(ctx, userID, category, monthlyLimit)
	if err != nil {
		return "", err
	}

	start, end := MonthRange(s.now())
	spent, err := s.transactions.SumCategoryExpensesInRange(ctx, userID, b.Category, start, end)
	if err != nil {
		return "", err
	}
	return messages.BudgetSaved(b.Category, b.MonthlyLimit, spent, b.MonthlyLimit-spent), nil
}

// CheckAlert returns the over-budget alert line for the category in the
// month containing at, or empty when no budget exists or spending is still
// at or under the limit.
func (s *Service) CheckAlert(ctx context.Context, userID, category string, at time.Time) (string, error) {
	b, err := s.budgets.GetBudget(ctx, userID, category)
	if err != nil {
		return "", err
	}
	if b == nil {
		return "", nil
	}

	start, end := MonthRange(at)
	spent, err := s.transactions.SumCategoryExpensesInRange(ctx, userID, b.Category, start, end)
	if err != nil {
		return "", err
	}
	if spent <= b.MonthlyLimit {
		return "", nil
	}
	return messages.BudgetAlert(b.Category, b.MonthlyLimit, spent), nil
}
