package store

import (
	"context"
	"errors"
	"time"

	"github.com/dimasprakoso/catatduit/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const outboundColumns = `id, user_id, wa_number, message_text, status, error_message, sent_at, created_at, updated_at`

const maxAckErrorLen = 191

func scanOutbound(row pgx.Row) (types.OutboundMessage, error) {
	var m types.OutboundMessage
	var errMsg *string
	err := row.Scan(&m.ID, &m.UserID, &m.WaNumber, &m.MessageText, &m.Status, &errMsg, &m.SentAt, &m.CreatedAt, &m.UpdatedAt)
	if errMsg != nil {
		m.ErrorMessage = *errMsg
	}
	return m, err
}

func (s *PostgresStore) QueueOutboundMessage(ctx context.Context, userID, waNumber, messageText string) (*types.OutboundMessage, error) {
	m, err := scanOutbound(s.pool.QueryRow(ctx, `
INSERT INTO outbound_messages (id, user_id, wa_number, message_text)
VALUES ($1, $2, $3, $4)
RETURNING `+outboundColumns+`
`, uuid.NewString(), userID, waNumber, messageText))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ClaimPendingOutboundMessages reserves up to limit oldest PENDING rows by
// flipping them to PROCESSING in a single statement. SKIP LOCKED guarantees
// two concurrent claims never see the same row.
func (s *PostgresStore) ClaimPendingOutboundMessages(ctx context.Context, limit int) ([]types.OutboundMessage, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 20 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx, `
WITH picked AS (
  SELECT id
  FROM outbound_messages
  WHERE status = 'PENDING'
  ORDER BY created_at ASC
  LIMIT $1
  FOR UPDATE SKIP LOCKED
)
UPDATE outbound_messages om
SET status = 'PROCESSING', updated_at = NOW()
FROM picked
WHERE om.id = picked.id
RETURNING om.id, om.user_id, om.wa_number, om.message_text, om.status, om.error_message, om.sent_at, om.created_at, om.updated_at
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.OutboundMessage
	for rows.Next() {
		m, err := scanOutbound(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// RETURNING does not preserve the CTE ordering.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].CreatedAt.Before(out[j-1].CreatedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

// AckOutboundMessage records the terminal delivery outcome. Re-acking a row
// that is already SENT or FAILED is a no-op success.
func (s *PostgresStore) AckOutboundMessage(ctx context.Context, id string, status types.OutboundStatus, errorMessage string) error {
	if status != types.OutboundSent && status != types.OutboundFailed {
		return errors.New("ack status must be SENT or FAILED")
	}

	var errMsg any
	var sentAt any
	if status == types.OutboundSent {
		sentAt = time.Now().UTC()
	} else {
		if errorMessage == "" {
			errorMessage = "Unknown send error"
		}
		if len(errorMessage) > maxAckErrorLen {
			errorMessage = errorMessage[:maxAckErrorLen]
		}
		errMsg = errorMessage
	}

	tag, err := s.pool.Exec(ctx, `
UPDATE outbound_messages
SET status = $2, error_message = $3, sent_at = $4, updated_at = NOW()
WHERE id = $1 AND status IN ('PENDING', 'PROCESSING')
`, id, status, errMsg, sentAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current types.OutboundStatus
	err = s.pool.QueryRow(ctx, `SELECT status FROM outbound_messages WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOutboundNotFound
	}
	if err != nil {
		return err
	}
	// Already terminal; the first ack won.
	return nil
}

// RequeueStaleProcessing returns PROCESSING rows older than the cutoff to
// PENDING so a crashed consumer cannot strand them forever.
func (s *PostgresStore) RequeueStaleProcessing(ctx context.Context, olderThan time.Duration) (int, error) {
	tag, err := s.pool.Exec(ctx, `
UPDATE outbound_messages
SET status = 'PENDING', updated_at = NOW()
WHERE status = 'PROCESSING' AND updated_at < NOW() - make_interval(secs => $1)
`, olderThan.Seconds())
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
