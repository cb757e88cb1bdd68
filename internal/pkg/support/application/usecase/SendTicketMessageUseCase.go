package usecase

import (
	"context"
	"fmt"

	"servihub/internal/pkg/identity"
	support "servihub/internal/pkg/support/application/domain"
	repository "servihub/internal/pkg/support/persistence/repository/port"
)

// SendTicketMessageInput carries the data needed to append to a ticket thread.
type SendTicketMessageInput struct {
	TicketID   string
	SenderID   string
	SenderRole identity.Role
	Text       string
}

// SendTicketMessageUseCase appends a message to a ticket, enforcing the
// state-machine guards against the durable record at call time:
//   - a closed ticket rejects every message, regardless of sender role;
//   - an admin may not reply to an open ticket; the claim must be recorded
//     before any agent engagement.
type SendTicketMessageUseCase struct {
	Repo repository.TicketRepository
	Emit Emitter
}

func NewSendTicketMessageUseCase(repo repository.TicketRepository, emit Emitter) *SendTicketMessageUseCase {
	return &SendTicketMessageUseCase{Repo: repo, Emit: emit}
}

func (uc *SendTicketMessageUseCase) Execute(ctx context.Context, in SendTicketMessageInput) (*support.TicketMessage, error) {
	m, err := support.NewTicketMessage(in.TicketID, in.SenderID, in.SenderRole, in.Text)
	if err != nil {
		return nil, err
	}

	t, err := uc.Repo.GetTicket(ctx, in.TicketID)
	if err == support.ErrTicketNotFound {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if t.Status == support.StatusClosed {
		return nil, support.ErrTicketClosed
	}
	if t.Status == support.StatusOpen && in.SenderRole.IsAdmin() {
		return nil, support.ErrUnclaimedReply
	}
	if !in.SenderRole.IsAdmin() && t.RequesterID != in.SenderID {
		return nil, support.ErrForbidden
	}

	id, err := uc.Repo.SaveMessage(ctx, *m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	m.ID = id

	// Requester always hears it (echo included for multi-device sync); the
	// counterpart is the assigned admin once claimed, or the whole admin group
	// while the ticket is still open.
	event := toTicketMessageEvent(*m)
	uc.Emit.Emit(t.RequesterID, EventSupportMessageReceived, event)
	if t.AssignedAdminID != nil {
		uc.Emit.Emit(*t.AssignedAdminID, EventSupportMessageReceived, event)
	} else {
		uc.Emit.EmitToRole(identity.RoleAdmin, EventSupportMessageReceived, event)
	}

	return m, nil
}
