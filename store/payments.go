package store

import (
	"context"
	"errors"
	"strings"

	"github.com/dimasprakoso/catatduit/internal/messages"
	"github.com/dimasprakoso/catatduit/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `id, user_id, token, amount, status, paid_at, created_at`

func newPaymentToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func scanPaymentSession(row pgx.Row) (*types.PaymentSession, error) {
	var p types.PaymentSession
	err := row.Scan(&p.ID, &p.UserID, &p.Token, &p.Amount, &p.Status, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) CreateOrGetPendingPaymentSession(ctx context.Context, userID string, amount float64) (*types.PaymentSession, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The row lock serializes concurrent requests for the same user so only
	// one PENDING session can ever be created.
	p, err := scanPaymentSession(tx.QueryRow(ctx, `
SELECT `+paymentColumns+`
FROM payment_sessions
WHERE user_id = $1 AND status = 'PENDING'
ORDER BY created_at DESC
LIMIT 1
FOR UPDATE
`, userID))
	if err == nil {
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	p, err = scanPaymentSession(tx.QueryRow(ctx, `
INSERT INTO payment_sessions (id, user_id, token, amount)
VALUES ($1, $2, $3, $4)
RETURNING `+paymentColumns+`
`, uuid.NewString(), userID, newPaymentToken(), amount))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresStore) GetPaymentSessionByToken(ctx context.Context, token string) (*types.PaymentSession, *types.User, error) {
	p, err := scanPaymentSession(s.pool.QueryRow(ctx, `
SELECT `+paymentColumns+`
FROM payment_sessions
WHERE token = $1
`, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrPaymentSessionNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	u, err := s.GetUserByID(ctx, p.UserID)
	if err != nil {
		return nil, nil, err
	}
	return p, u, nil
}

// ConfirmPaymentByToken transitions the session PENDING->PAID, activates the
// user's latest subscription and enqueues the confirmation outbound message,
// all in one transaction. Confirming an already-PAID token returns the session
// unchanged with no side effects.
func (s *PostgresStore) ConfirmPaymentByToken(ctx context.Context, token string) (*types.PaymentSession, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := scanPaymentSession(tx.QueryRow(ctx, `
SELECT `+paymentColumns+`
FROM payment_sessions
WHERE token = $1
FOR UPDATE
`, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPaymentSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	if p.Status == types.PaymentPaid {
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return p, nil
	}
	if p.Status != types.PaymentPending {
		return nil, ErrPaymentNotPayable
	}

	p, err = scanPaymentSession(tx.QueryRow(ctx, `
UPDATE payment_sessions
SET status = 'PAID', paid_at = NOW()
WHERE id = $1
RETURNING `+paymentColumns+`
`, p.ID))
	if err != nil {
		return nil, err
	}

	var subID string
	err = tx.QueryRow(ctx, `
SELECT id
FROM subscriptions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT 1
`, p.UserID).Scan(&subID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		_, err = tx.Exec(ctx, `
INSERT INTO subscriptions (id, user_id, status)
VALUES ($1, $2, 'ACTIVE')
`, uuid.NewString(), p.UserID)
	case err == nil:
		_, err = tx.Exec(ctx, `
UPDATE subscriptions
SET status = 'ACTIVE', updated_at = NOW()
WHERE id = $1
`, subID)
	}
	if err != nil {
		return nil, err
	}

	var waNumber string
	if err := tx.QueryRow(ctx, `SELECT wa_number FROM users WHERE id = $1`, p.UserID).Scan(&waNumber); err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
INSERT INTO outbound_messages (id, user_id, wa_number, message_text)
VALUES ($1, $2, $3, $4)
`, uuid.NewString(), p.UserID, waNumber, messages.PaymentConfirmed())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresStore) GetLatestSubscription(ctx context.Context, userID string) (*types.Subscription, error) {
	var sub types.Subscription
	err := s.pool.QueryRow(ctx, `
SELECT id, user_id, status, created_at, updated_at
FROM subscriptions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT 1
`, userID).Scan(&sub.ID, &sub.UserID, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
