package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"servihub/internal/pkg/identity"
	"servihub/internal/pkg/messaging/application/usecase"
)

// GetHistoryController fetches the message history with a partner. Fetching
// history opens the conversation, which resets the unread count for the pair
// no matter how many connections the user has.
type GetHistoryController struct {
	UC *usecase.GetHistoryUseCase
}

func NewGetHistoryController(uc *usecase.GetHistoryUseCase) *GetHistoryController {
	return &GetHistoryController{UC: uc}
}

func (h *GetHistoryController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role := identity.FromRequest(c.Request)
		if userID == "" || !role.Valid() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user id and a valid role are required"})
			return
		}

		partnerID := c.Param("partnerId")
		if partnerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "partnerId is required"})
			return
		}

		limit := 50
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

		msgs, err := h.UC.Execute(ctx, usecase.GetHistoryInput{
			UserID:    userID,
			PartnerID: partnerID,
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, gin.H{
				"id":          m.ID,
				"sender_id":   m.SenderID,
				"receiver_id": m.ReceiverID,
				"text":        m.Text,
				"seen":        m.Seen,
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
