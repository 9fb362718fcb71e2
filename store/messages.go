package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dimasprakoso/catatduit/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *PostgresStore) CreateMessageLog(ctx context.Context, log *types.MessageLog) (*types.MessageLog, error) {
	log.ID = uuid.NewString()
	if log.SentAt.IsZero() {
		log.SentAt = time.Now().UTC()
	}
	err := s.pool.QueryRow(ctx, `
INSERT INTO message_logs (id, user_id, message_type, content_or_caption, media_ref, sent_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at
`, log.ID, log.UserID, log.MessageType, log.ContentOrCaption, log.MediaRef, log.SentAt).Scan(&log.CreatedAt)
	if err != nil {
		return nil, err
	}
	return log, nil
}

func (s *PostgresStore) CreateAIAnalysisLog(ctx context.Context, userID, messageID string, analysisType types.AnalysisType, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	var msgID any
	if messageID != "" {
		msgID = messageID
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO ai_analysis_logs (id, user_id, message_id, analysis_type, payload_json)
VALUES ($1, $2, $3, $4, $5)
`, uuid.NewString(), userID, msgID, analysisType, raw)
	return err
}

func (s *PostgresStore) UpsertHeartbeat(ctx context.Context, serviceName string) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO system_heartbeats (service_name, last_seen_at)
VALUES ($1, NOW())
ON CONFLICT (service_name) DO UPDATE SET last_seen_at = NOW()
`, serviceName)
	return err
}

// GetHeartbeat returns nil when the service has never reported, so callers can
// distinguish "no heartbeat yet" from a real read failure.
func (s *PostgresStore) GetHeartbeat(ctx context.Context, serviceName string) (*types.Heartbeat, error) {
	var hb types.Heartbeat
	err := s.pool.QueryRow(ctx, `
SELECT service_name, last_seen_at
FROM system_heartbeats
WHERE service_name = $1
`, serviceName).Scan(&hb.ServiceName, &hb.LastSeenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &hb, nil
}
