package budget

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dimasprakoso/catatduit/types"
)

type mockBudgetStore struct {
	budget *types.Budget
}

func (m *mockBudgetStore) UpsertBudget(_ context.Context, userID, category string, limit float64) (*types.Budget, error) {
	m.budget = &types.Budget{UserID: userID, Category: category, MonthlyLimit: limit}
	return m.budget, nil
}

func (m *mockBudgetStore) GetBudget(context.Context, string, string) (*types.Budget, error) {
	return m.budget, nil
}

func (m *mockBudgetStore) ListBudgets(context.Context, string) ([]types.Budget, error) {
	if m.budget == nil {
		return nil, nil
	}
	return []types.Budget{*m.budget}, nil
}

type mockTxStore struct {
	types.TransactionStore
	spent float64
}

func (m *mockTxStore) SumCategoryExpensesInRange(context.Context, string, string, time.Time, time.Time) (float64, error) {
	return m.spent, nil
}

func TestMonthRange(t *testing.T) {
	now := time.Date(2026, 2, 15, 10, 30, 0, 0, time.UTC)
	start, end := MonthRange(now)
	if !start.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start)
	}
	if end.Month() != time.February || end.Day() != 28 {
		t.Fatalf("end = %v, want last day of February", end)
	}
}

func TestSetReportsSpentAndRemaining(t *testing.T) {
	svc := NewService(&mockBudgetStore{}, &mockTxStore{spent: 300000})
	svc.now = func() time.Time { return time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC) }

	reply, err := svc.Set(context.Background(), "u1", "makan luar", 1500000)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "1500000.00") || !strings.Contains(reply, "300000.00") || !strings.Contains(reply, "1200000.00") {
		t.Fatalf("reply missing limit/spent/remaining: %q", reply)
	}
}

func TestCheckAlert(t *testing.T) {
	budgets := &mockBudgetStore{budget: &types.Budget{Category: "makan", MonthlyLimit: 500000}}
	txs := &mockTxStore{spent: 500000}
	svc := NewService(budgets, txs)
	at := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	// Spending equal to the limit is not over budget.
	alert, err := svc.CheckAlert(context.Background(), "u1", "makan", at)
	if err != nil {
		t.Fatal(err)
	}
	if alert != "" {
		t.Fatalf("alert at limit = %q, want none", alert)
	}

	txs.spent = 500001
	alert, err = svc.CheckAlert(context.Background(), "u1", "makan", at)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(alert, "terlampaui") {
		t.Fatalf("alert over limit = %q", alert)
	}

	none := NewService(&mockBudgetStore{}, txs)
	alert, err = none.CheckAlert(context.Background(), "u1", "makan", at)
	if err != nil || alert != "" {
		t.Fatalf("no budget should mean no alert, got %q, %v", alert, err)
	}
}
