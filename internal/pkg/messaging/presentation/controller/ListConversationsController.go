package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"servihub/internal/pkg/identity"
	"servihub/internal/pkg/messaging/application/usecase"
)

// ListConversationsController serves the conversation list with authoritative
// unread counts, the reconciliation endpoint clients hit on reconnect.
type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(uc *usecase.ListConversationsUseCase) *ListConversationsController {
	return &ListConversationsController{UC: uc}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role := identity.FromRequest(c.Request)
		if userID == "" || !role.Valid() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user id and a valid role are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		convs, err := h.UC.Execute(ctx, userID)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"conversations": convs,
			"count":         len(convs),
		})
	}
}
