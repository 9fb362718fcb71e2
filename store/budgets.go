package store

import (
	"context"
	"errors"
	"strings"

	"github.com/dimasprakoso/catatduit/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const budgetColumns = `id, user_id, category, monthly_limit, created_at, updated_at`

func normalizeCategory(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func (s *PostgresStore) UpsertBudget(ctx context.Context, userID, category string, monthlyLimit float64) (*types.Budget, error) {
	var b types.Budget
	err := s.pool.QueryRow(ctx, `
INSERT INTO budgets (id, user_id, category, monthly_limit)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, category) DO UPDATE SET
  monthly_limit = EXCLUDED.monthly_limit,
  updated_at = NOW()
RETURNING `+budgetColumns+`
`, uuid.NewString(), userID, normalizeCategory(category), monthlyLimit).
		Scan(&b.ID, &b.UserID, &b.Category, &b.MonthlyLimit, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBudget returns (nil, nil) when no budget exists for the category.
func (s *PostgresStore) GetBudget(ctx context.Context, userID, category string) (*types.Budget, error) {
	var b types.Budget
	err := s.pool.QueryRow(ctx, `
SELECT `+budgetColumns+`
FROM budgets
WHERE user_id = $1 AND category = $2
`, userID, normalizeCategory(category)).
		Scan(&b.ID, &b.UserID, &b.Category, &b.MonthlyLimit, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PostgresStore) ListBudgets(ctx context.Context, userID string) ([]types.Budget, error) {
	rows, err := s.pool.Query(ctx, `
SELECT `+budgetColumns+`
FROM budgets
WHERE user_id = $1
ORDER BY category ASC
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Budget
	for rows.Next() {
		var b types.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.MonthlyLimit, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpsertGoalProgress(ctx context.Context, userID string, progress float64) (*types.SavingsGoal, error) {
	return s.upsertGoal(ctx, `
INSERT INTO savings_goals (id, user_id, target_amount, current_progress)
VALUES ($1, $2, 0, $3)
ON CONFLICT (user_id) DO UPDATE SET
  current_progress = EXCLUDED.current_progress,
  updated_at = NOW()
RETURNING id, user_id, target_amount, current_progress, created_at, updated_at
`, uuid.NewString(), userID, progress)
}

func (s *PostgresStore) UpsertGoalTarget(ctx context.Context, userID string, target, progress float64) (*types.SavingsGoal, error) {
	return s.upsertGoal(ctx, `
INSERT INTO savings_goals (id, user_id, target_amount, current_progress)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE SET
  target_amount = EXCLUDED.target_amount,
  current_progress = EXCLUDED.current_progress,
  updated_at = NOW()
RETURNING id, user_id, target_amount, current_progress, created_at, updated_at
`, uuid.NewString(), userID, target, progress)
}

func (s *PostgresStore) upsertGoal(ctx context.Context, sql string, args ...any) (*types.SavingsGoal, error) {
	var g types.SavingsGoal
	err := s.pool.QueryRow(ctx, sql, args...).
		Scan(&g.ID, &g.UserID, &g.TargetAmount, &g.CurrentProgress, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
