package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	messaging "servihub/internal/pkg/messaging/application/domain"
	repository "servihub/internal/pkg/messaging/persistence/repository/port"
)

// PgMessageRepository persists direct messages in Postgres.
type PgMessageRepository struct {
	pool *pgxpool.Pool
}

var _ repository.MessageRepository = (*PgMessageRepository)(nil)

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) SaveMessage(ctx context.Context, m messaging.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgMessageRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messaging.message (sender_id, receiver_id, body, seen, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5)
		RETURNING id::text
	`, m.SenderID, m.ReceiverID, m.Text, m.Seen, m.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgMessageRepository) ListBetween(ctx context.Context, userID, partnerID string, limit, offset int) ([]messaging.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, sender_id::text, receiver_id::text, body, seen, created_at
		FROM messaging.message
		WHERE (sender_id = $1::uuid AND receiver_id = $2::uuid)
		   OR (sender_id = $2::uuid AND receiver_id = $1::uuid)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, userID, partnerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []messaging.Message
	for rows.Next() {
		var m messaging.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Seen, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

func (r *PgMessageRepository) ListConversations(ctx context.Context, userID string) ([]messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		WITH partners AS (
			SELECT CASE WHEN sender_id = $1::uuid THEN receiver_id ELSE sender_id END AS partner_id,
			       MAX(created_at) AS last_at
			FROM messaging.message
			WHERE sender_id = $1::uuid OR receiver_id = $1::uuid
			GROUP BY 1
		)
		SELECT p.partner_id::text,
		       m.id::text, m.sender_id::text, m.receiver_id::text, m.body, m.seen, m.created_at,
		       (SELECT COUNT(*) FROM messaging.message u
		         WHERE u.receiver_id = $1::uuid AND u.sender_id = p.partner_id AND u.seen = FALSE)
		FROM partners p
		JOIN LATERAL (
			SELECT * FROM messaging.message lm
			WHERE (lm.sender_id = $1::uuid AND lm.receiver_id = p.partner_id)
			   OR (lm.sender_id = p.partner_id AND lm.receiver_id = $1::uuid)
			ORDER BY lm.created_at DESC
			LIMIT 1
		) m ON TRUE
		ORDER BY m.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []messaging.Conversation
	for rows.Next() {
		var (
			c    messaging.Conversation
			last messaging.Message
		)
		if err := rows.Scan(&c.PartnerID, &last.ID, &last.SenderID, &last.ReceiverID, &last.Text, &last.Seen, &last.CreatedAt, &c.UnreadCount); err != nil {
			return nil, err
		}
		c.LastMessage = &last
		convs = append(convs, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return convs, nil
}

func (r *PgMessageRepository) MarkRead(ctx context.Context, userID, partnerID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessageRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE messaging.message
		SET seen = TRUE
		WHERE receiver_id = $1::uuid AND sender_id = $2::uuid AND seen = FALSE
	`, userID, partnerID)
	return err
}
