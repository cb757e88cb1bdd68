package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"servihub/internal/pkg/identity"
	"servihub/internal/pkg/support/application/usecase"
)

// SendTicketMessageController appends a message to a ticket thread.
type SendTicketMessageController struct {
	UC *usecase.SendTicketMessageUseCase
}

func NewSendTicketMessageController(uc *usecase.SendTicketMessageUseCase) *SendTicketMessageController {
	return &SendTicketMessageController{UC: uc}
}

type sendTicketMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *SendTicketMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role := identity.FromRequest(c.Request)
		if userID == "" || !role.Valid() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user id and a valid role are required"})
			return
		}

		ticketID := c.Param("ticketId")
		if ticketID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ticketId is required"})
			return
		}

		var req sendTicketMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		m, err := h.UC.Execute(ctx, usecase.SendTicketMessageInput{
			TicketID:   ticketID,
			SenderID:   userID,
			SenderRole: role,
			Text:       req.Text,
		})
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":          m.ID,
			"ticket_id":   m.TicketID,
			"sender_id":   m.SenderID,
			"sender_role": m.SenderRole,
			"text":        m.Text,
			"created_at":  m.CreatedAt,
		})
	}
}
