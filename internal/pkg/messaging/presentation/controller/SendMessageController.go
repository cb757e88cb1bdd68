package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"servihub/internal/pkg/identity"
	messaging "servihub/internal/pkg/messaging/application/domain"
	"servihub/internal/pkg/messaging/application/usecase"
)

// SendMessageController handles the HTTP send path (one controller per
// endpoint). It runs the same aggregator path as the websocket frame, so
// unread counters and fan-out behave identically regardless of transport.
type SendMessageController struct {
	Agg *usecase.ConversationAggregator
}

func NewSendMessageController(agg *usecase.ConversationAggregator) *SendMessageController {
	return &SendMessageController{Agg: agg}
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		senderID, role := identity.FromRequest(c.Request)
		if senderID == "" || !role.Valid() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user id and a valid role are required"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		m, err := h.Agg.OnMessageSent(ctx, senderID, req.ReceiverID, req.Text)
		if err != nil {
			status := http.StatusBadRequest
			switch {
			case errors.Is(err, usecase.ErrPersistence):
				status = http.StatusInternalServerError
			case errors.Is(err, messaging.ErrSelfMessage),
				errors.Is(err, messaging.ErrEmptyMessage),
				errors.Is(err, messaging.ErrMissingParties):
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":          m.ID,
			"sender_id":   m.SenderID,
			"receiver_id": m.ReceiverID,
			"text":        m.Text,
			"created_at":  m.CreatedAt,
		})
	}
}
