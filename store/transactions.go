package store

import (
	"context"
	"strings"
	"time"

	"github.com/dimasprakoso/catatduit/types"
	"github.com/google/uuid"
)

func (s *PostgresStore) CreateTransaction(ctx context.Context, tx *types.Transaction) (*types.Transaction, error) {
	tx.ID = uuid.NewString()
	tx.Category = strings.Join(strings.Fields(tx.Category), " ")
	err := s.pool.QueryRow(ctx, `
INSERT INTO transactions (id, user_id, type, amount, category, merchant, note, occurred_at, source, raw_text)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING created_at
`, tx.ID, tx.UserID, tx.Type, tx.Amount, tx.Category, strings.TrimSpace(tx.Merchant),
		strings.TrimSpace(tx.Note), tx.OccurredAt, tx.Source, tx.RawText).Scan(&tx.CreatedAt)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *PostgresStore) ListTransactionsInRange(ctx context.Context, userID string, start, end time.Time) ([]types.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, user_id, type, amount, category, merchant, note, occurred_at, source, raw_text, created_at
FROM transactions
WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
ORDER BY occurred_at ASC
`, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Transaction
	for rows.Next() {
		var t types.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Category, &t.Merchant,
			&t.Note, &t.OccurredAt, &t.Source, &t.RawText, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SumTransactionsByType(ctx context.Context, userID string, txType types.TransactionType) (float64, error) {
	var total float64
	err := s.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(amount), 0)
FROM transactions
WHERE user_id = $1 AND type = $2
`, userID, txType).Scan(&total)
	return total, err
}

func (s *PostgresStore) SumCategoryExpensesInRange(ctx context.Context, userID, category string, start, end time.Time) (float64, error) {
	var total float64
	err := s.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(amount), 0)
FROM transactions
WHERE user_id = $1 AND type = 'EXPENSE' AND category = $2
  AND occurred_at >= $3 AND occurred_at <= $4
`, userID, category, start, end).Scan(&total)
	return total, err
}
