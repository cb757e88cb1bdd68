package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"servihub/internal/infrastructure/realtime"
	"servihub/internal/pkg/identity"
	messaging "servihub/internal/pkg/messaging/application/domain"
	msgusecase "servihub/internal/pkg/messaging/application/usecase"
	support "servihub/internal/pkg/support/application/domain"
	supusecase "servihub/internal/pkg/support/application/usecase"
)

// SocketController owns the websocket endpoint every client speaks through.
// Inbound frames arrive at-least-once and unordered; each one is handled as an
// independent task against the durable store, and every typed rejection goes
// back only to the originating connection.
type SocketController struct {
	registry *realtime.Registry
	agg      *msgusecase.ConversationAggregator

	createTicketUC  *supusecase.CreateTicketUseCase
	claimTicketUC   *supusecase.ClaimTicketUseCase
	sendTicketMsgUC *supusecase.SendTicketMessageUseCase
	closeTicketUC   *supusecase.CloseTicketUseCase

	inflightTimeout time.Duration
	log             zerolog.Logger
}

func NewSocketController(
	registry *realtime.Registry,
	agg *msgusecase.ConversationAggregator,
	createTicketUC *supusecase.CreateTicketUseCase,
	claimTicketUC *supusecase.ClaimTicketUseCase,
	sendTicketMsgUC *supusecase.SendTicketMessageUseCase,
	closeTicketUC *supusecase.CloseTicketUseCase,
	log zerolog.Logger,
) *SocketController {
	return &SocketController{
		registry:        registry,
		agg:             agg,
		createTicketUC:  createTicketUC,
		claimTicketUC:   claimTicketUC,
		sendTicketMsgUC: sendTicketMsgUC,
		closeTicketUC:   closeTicketUC,
		inflightTimeout: 5 * time.Second,
		log:             log,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Identity is asserted upstream; origin policy lives at the edge.
		return true
	},
}

type inboundFrame struct {
	Type       string `json:"type"`
	ReceiverID string `json:"receiver_id,omitempty"`
	PartnerID  string `json:"partner_id,omitempty"`
	TicketID   string `json:"ticket_id,omitempty"`
	Text       string `json:"text,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades the HTTP connection and processes frames until the client
// disconnects. The authenticated user id and role come from the identity
// provider via trusted headers (query parameters as a fallback for tooling);
// the same user may connect any number of times.
func (ctl *SocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role := identity.FromRequest(c.Request)
		if userID == "" || !role.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user id and a valid role are required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		conn := realtime.NewConnection(userID, role, ws)
		ctl.registry.Register(conn)
		conn.Start()
		defer func() {
			ctl.registry.Unregister(conn.ID)
			ctl.agg.OnConversationClosed(userID)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		ctl.reply(conn, ackFrame{Type: "connected"})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "validation_error", "read error")
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "validation_error", "invalid payload")
				continue
			}

			ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
			ctl.dispatch(ctx, conn, userID, role, frame)
			cancel()
		}
	}
}

func (ctl *SocketController) dispatch(ctx context.Context, conn *realtime.Connection, userID string, role identity.Role, frame inboundFrame) {
	switch frame.Type {
	case "send_message":
		ctl.handleSendMessage(ctx, conn, userID, frame)
	case "open_conversation":
		ctl.handleOpenConversation(ctx, conn, userID, frame)
	case "close_conversation":
		ctl.agg.OnConversationClosed(userID)
		ctl.reply(conn, ackFrame{Type: "conversation_closed"})
	case "typing":
		ctl.agg.Typing(userID, frame.ReceiverID)
	case "create_ticket":
		ctl.handleCreateTicket(ctx, conn, userID, role)
	case "claim_ticket":
		ctl.handleClaimTicket(ctx, conn, userID, role, frame)
	case "send_support_message":
		ctl.handleSendSupportMessage(ctx, conn, userID, role, frame)
	case "close_ticket":
		ctl.handleCloseTicket(ctx, conn, userID, role, frame)
	default:
		ctl.replyError(conn, "validation_error", "unknown frame type")
	}
}

func (ctl *SocketController) handleSendMessage(ctx context.Context, conn *realtime.Connection, userID string, frame inboundFrame) {
	if _, err := ctl.agg.OnMessageSent(ctx, userID, frame.ReceiverID, frame.Text); err != nil {
		ctl.replyDomainError(conn, err)
	}
	// No explicit ack: the sender's own connections receive the message echo.
}

func (ctl *SocketController) handleOpenConversation(ctx context.Context, conn *realtime.Connection, userID string, frame inboundFrame) {
	if err := ctl.agg.OnConversationOpened(ctx, userID, frame.PartnerID); err != nil {
		ctl.replyDomainError(conn, err)
		return
	}
	ctl.reply(conn, ackFrame{Type: "conversation_opened"})
}

func (ctl *SocketController) handleCreateTicket(ctx context.Context, conn *realtime.Connection, userID string, role identity.Role) {
	t, err := ctl.createTicketUC.Execute(ctx, userID, role)
	if err != nil {
		ctl.replyDomainError(conn, err)
		return
	}
	ctl.reply(conn, ackFrame{Type: "ticket_created", Data: ticketBody(t)})
}

func (ctl *SocketController) handleClaimTicket(ctx context.Context, conn *realtime.Connection, userID string, role identity.Role, frame inboundFrame) {
	if !role.IsAdmin() {
		ctl.replyError(conn, "validation_error", "admin role required")
		return
	}
	_, err := ctl.claimTicketUC.Execute(ctx, frame.TicketID, userID)
	if err == nil {
		// The winner hears about it through the admin-wide ticket_assigned emit.
		return
	}
	switch {
	case errors.Is(err, support.ErrAlreadyAssigned):
		ctl.reply(conn, ackFrame{Type: supusecase.EventTicketClaimRejected, Data: supusecase.ClaimRejectedEvent{TicketID: frame.TicketID, Reason: "already_assigned"}})
	case errors.Is(err, support.ErrTicketClosed):
		ctl.reply(conn, ackFrame{Type: supusecase.EventTicketClaimRejected, Data: supusecase.ClaimRejectedEvent{TicketID: frame.TicketID, Reason: "closed"}})
	default:
		ctl.replyDomainError(conn, err)
	}
}

func (ctl *SocketController) handleSendSupportMessage(ctx context.Context, conn *realtime.Connection, userID string, role identity.Role, frame inboundFrame) {
	_, err := ctl.sendTicketMsgUC.Execute(ctx, supusecase.SendTicketMessageInput{
		TicketID:   frame.TicketID,
		SenderID:   userID,
		SenderRole: role,
		Text:       frame.Text,
	})
	if err != nil {
		ctl.replyDomainError(conn, err)
	}
}

func (ctl *SocketController) handleCloseTicket(ctx context.Context, conn *realtime.Connection, userID string, role identity.Role, frame inboundFrame) {
	if !role.IsAdmin() {
		ctl.replyError(conn, "validation_error", "admin role required")
		return
	}
	if _, err := ctl.closeTicketUC.Execute(ctx, frame.TicketID, userID); err != nil {
		ctl.replyDomainError(conn, err)
	}
}

// replyDomainError maps the error taxonomy onto frame codes: validation and
// state-conflict rejections go back synchronously to the originating
// connection only; transient store failures surface as internal_error for
// client-driven retry.
func (ctl *SocketController) replyDomainError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, msgusecase.ErrPersistence), errors.Is(err, supusecase.ErrPersistence):
		ctl.replyError(conn, "internal_error", "durable store unavailable, retry")
	case errors.Is(err, support.ErrTicketNotFound):
		ctl.replyError(conn, "not_found", err.Error())
	case errors.Is(err, support.ErrTicketClosed),
		errors.Is(err, support.ErrAlreadyAssigned),
		errors.Is(err, support.ErrNotAssigned),
		errors.Is(err, support.ErrUnclaimedReply),
		errors.Is(err, support.ErrForbidden):
		ctl.replyError(conn, "state_conflict", err.Error())
	case errors.Is(err, messaging.ErrSelfMessage),
		errors.Is(err, messaging.ErrEmptyMessage),
		errors.Is(err, messaging.ErrMissingParties),
		errors.Is(err, support.ErrEmptyMessage),
		errors.Is(err, support.ErrMissingSender),
		errors.Is(err, support.ErrAdminRequester):
		ctl.replyError(conn, "validation_error", err.Error())
	default:
		ctl.replyError(conn, "validation_error", err.Error())
	}
}

func (ctl *SocketController) replyError(conn *realtime.Connection, code string, message string) {
	ctl.reply(conn, errorFrame{Type: "error", Code: code, Error: message})
}

func (ctl *SocketController) reply(conn *realtime.Connection, frame interface{}) {
	payload, err := json.Marshal(frame)
	if err != nil {
		ctl.log.Error().Err(err).Msg("socket: encode reply")
		return
	}
	_ = conn.Send(payload)
}

func ticketBody(t *support.Ticket) gin.H {
	return gin.H{
		"id":                t.ID,
		"requester_id":      t.RequesterID,
		"status":            t.Status,
		"assigned_admin_id": t.AssignedAdminID,
		"created_at":        t.CreatedAt,
		"closed_at":         t.ClosedAt,
	}
}
