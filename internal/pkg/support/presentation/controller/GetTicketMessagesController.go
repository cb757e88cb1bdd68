package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"servihub/internal/pkg/identity"
	"servihub/internal/pkg/support/application/usecase"
)

// GetTicketMessagesController returns a ticket thread for its requester or an
// admin.
type GetTicketMessagesController struct {
	UC *usecase.GetTicketMessagesUseCase
}

func NewGetTicketMessagesController(uc *usecase.GetTicketMessagesUseCase) *GetTicketMessagesController {
	return &GetTicketMessagesController{UC: uc}
}

func (h *GetTicketMessagesController) Handle() gin.HandlerFunc {
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

		limit := 100
		offset := 0
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, usecase.GetTicketMessagesInput{
			TicketID: ticketID,
			UserID:   userID,
			Role:     role,
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, gin.H{
				"id":          m.ID,
				"ticket_id":   m.TicketID,
				"sender_id":   m.SenderID,
				"sender_role": m.SenderRole,
				"text":        m.Text,
				"created_at":  m.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"messages": out,
			"limit":    limit,
			"offset":   offset,
			"count":    len(out),
		})
	}
}
