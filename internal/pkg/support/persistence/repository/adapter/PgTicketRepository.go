package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	support "servihub/internal/pkg/support/application/domain"
	repository "servihub/internal/pkg/support/persistence/repository/port"
)

// PgTicketRepository persists support tickets in Postgres. The claim and close
// guards are single conditional UPDATEs; RowsAffected is the compare-and-set
// result that upholds the single-claim guarantee under concurrent admins.
type PgTicketRepository struct {
	pool *pgxpool.Pool
}

var _ repository.TicketRepository = (*PgTicketRepository)(nil)

func NewPgTicketRepository(pool *pgxpool.Pool) *PgTicketRepository {
	return &PgTicketRepository{pool: pool}
}

func (r *PgTicketRepository) CreateTicket(ctx context.Context, requesterID string) (*support.Ticket, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgTicketRepository: nil pool")
	}
	t := support.Ticket{RequesterID: requesterID, Status: support.StatusOpen}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO support.ticket (requester_id, status)
		VALUES ($1::uuid, $2)
		RETURNING id::text, created_at
	`, requesterID, support.StatusOpen).Scan(&t.ID, &t.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// Partial unique index on active tickets: the requester already has one.
		return nil, support.ErrActiveTicketExists
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PgTicketRepository) GetTicket(ctx context.Context, id string) (*support.Ticket, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgTicketRepository: nil pool")
	}
	var t support.Ticket
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, requester_id::text, status, assigned_admin_id::text, created_at, closed_at
		FROM support.ticket
		WHERE id = $1::uuid
	`, id).Scan(&t.ID, &t.RequesterID, &t.Status, &t.AssignedAdminID, &t.CreatedAt, &t.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, support.ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PgTicketRepository) FindActiveByRequester(ctx context.Context, requesterID string) (*support.Ticket, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgTicketRepository: nil pool")
	}
	var t support.Ticket
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, requester_id::text, status, assigned_admin_id::text, created_at, closed_at
		FROM support.ticket
		WHERE requester_id = $1::uuid AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`, requesterID, support.StatusOpen, support.StatusAssigned).Scan(&t.ID, &t.RequesterID, &t.Status, &t.AssignedAdminID, &t.CreatedAt, &t.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PgTicketRepository) Claim(ctx context.Context, ticketID, adminID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgTicketRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE support.ticket
		SET status = $3, assigned_admin_id = $2::uuid
		WHERE id = $1::uuid AND status = $4
	`, ticketID, adminID, support.StatusAssigned, support.StatusOpen)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (r *PgTicketRepository) Close(ctx context.Context, ticketID, adminID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgTicketRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE support.ticket
		SET status = $3, closed_at = NOW()
		WHERE id = $1::uuid AND status = $4 AND assigned_admin_id = $2::uuid
	`, ticketID, adminID, support.StatusClosed, support.StatusAssigned)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (r *PgTicketRepository) SaveMessage(ctx context.Context, m support.TicketMessage) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgTicketRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO support.ticket_message (ticket_id, sender_id, sender_role, body, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5)
		RETURNING id::text
	`, m.TicketID, m.SenderID, m.SenderRole, m.Text, m.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgTicketRepository) ListOpen(ctx context.Context) ([]support.Ticket, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgTicketRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, requester_id::text, status, assigned_admin_id::text, created_at, closed_at
		FROM support.ticket
		WHERE status = $1
		ORDER BY created_at ASC
	`, support.StatusOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []support.Ticket
	for rows.Next() {
		var t support.Ticket
		if err := rows.Scan(&t.ID, &t.RequesterID, &t.Status, &t.AssignedAdminID, &t.CreatedAt, &t.ClosedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return tickets, nil
}

func (r *PgTicketRepository) ListMessages(ctx context.Context, ticketID string, limit, offset int) ([]support.TicketMessage, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgTicketRepository: nil pool")
	}
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, ticket_id::text, sender_id::text, sender_role, body, created_at
		FROM support.ticket_message
		WHERE ticket_id = $1::uuid
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []support.TicketMessage
	for rows.Next() {
		var m support.TicketMessage
		if err := rows.Scan(&m.ID, &m.TicketID, &m.SenderID, &m.SenderRole, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}
