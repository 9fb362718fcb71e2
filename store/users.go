package store

import (
	"context"
	"errors"
	"strings"

	"github.com/dimasprakoso/catatduit/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, wa_number, name, currency, monthly_budget, registration_status, onboarding_step, onboarding_completed_at, created_at, updated_at`

func scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	err := row.Scan(&u.ID, &u.WaNumber, &u.Name, &u.Currency, &u.MonthlyBudget,
		&u.RegistrationStatus, &u.OnboardingStep, &u.OnboardingCompletedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindOrCreateUserByWaNumber bootstraps a new user together with an INACTIVE
// subscription and a zero savings goal in one transaction.
func (s *PostgresStore) FindOrCreateUserByWaNumber(ctx context.Context, waNumber string) (*types.User, bool, error) {
	normalized := strings.Join(strings.Fields(waNumber), "")

	u, err := scanUser(s.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE wa_number = $1
`, normalized))
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	userID := uuid.NewString()
	u, err = scanUser(tx.QueryRow(ctx, `
INSERT INTO users (id, wa_number)
VALUES ($1, $2)
ON CONFLICT (wa_number) DO UPDATE SET updated_at = NOW()
RETURNING `+userColumns+`
`, userID, normalized))
	if err != nil {
		return nil, false, err
	}

	// The ON CONFLICT branch means another request won the insert race; the
	// bootstrap rows already exist in that case.
	isNew := u.ID == userID
	if isNew {
		_, err = tx.Exec(ctx, `
INSERT INTO subscriptions (id, user_id, status)
VALUES ($1, $2, 'INACTIVE')
`, uuid.NewString(), u.ID)
		if err != nil {
			return nil, false, err
		}
		_, err = tx.Exec(ctx, `
INSERT INTO savings_goals (id, user_id, target_amount, current_progress)
VALUES ($1, $2, 0, 0)
ON CONFLICT (user_id) DO NOTHING
`, uuid.NewString(), u.ID)
		if err != nil {
			return nil, false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return u, isNew, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*types.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = $1
`, id))
}

func (s *PostgresStore) SetOnboardingName(ctx context.Context, userID, name string, next types.OnboardingStep) error {
	_, err := s.pool.Exec(ctx, `
UPDATE users
SET name = $2, onboarding_step = $3, updated_at = NOW()
WHERE id = $1
`, userID, strings.TrimSpace(name), next)
	return err
}

func (s *PostgresStore) SetOnboardingCurrency(ctx context.Context, userID, currency string, next types.OnboardingStep) error {
	_, err := s.pool.Exec(ctx, `
UPDATE users
SET currency = $2, onboarding_step = $3, updated_at = NOW()
WHERE id = $1
`, userID, currency, next)
	return err
}

func (s *PostgresStore) SetOnboardingMonthlyBudget(ctx context.Context, userID string, amount float64, next types.OnboardingStep) error {
	_, err := s.pool.Exec(ctx, `
UPDATE users
SET monthly_budget = $2, onboarding_step = $3, updated_at = NOW()
WHERE id = $1
`, userID, amount, next)
	return err
}

func (s *PostgresStore) AdvanceOnboardingStep(ctx context.Context, userID string, next types.OnboardingStep) error {
	_, err := s.pool.Exec(ctx, `
UPDATE users
SET onboarding_step = $2, updated_at = NOW()
WHERE id = $1
`, userID, next)
	return err
}

// CompleteRegistration commits the terminal onboarding step as one unit:
// registration status, step, completion timestamp and the goal target.
func (s *PostgresStore) CompleteRegistration(ctx context.Context, userID string, savingsTarget float64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
UPDATE users
SET registration_status = 'COMPLETED',
    onboarding_step = 'COMPLETED',
    onboarding_completed_at = NOW(),
    updated_at = NOW()
WHERE id = $1
`, userID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
INSERT INTO savings_goals (id, user_id, target_amount, current_progress)
VALUES ($1, $2, $3, 0)
ON CONFLICT (user_id) DO UPDATE SET
  target_amount = EXCLUDED.target_amount,
  updated_at = NOW()
`, uuid.NewString(), userID, savingsTarget)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
