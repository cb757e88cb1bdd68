package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"servihub/internal/pkg/identity"
	support "servihub/internal/pkg/support/application/domain"
	"servihub/internal/pkg/support/application/usecase"
)

// CloseTicketController closes an assigned ticket; only the assigned admin may
// do so.
type CloseTicketController struct {
	UC *usecase.CloseTicketUseCase
}

func NewCloseTicketController(uc *usecase.CloseTicketUseCase) *CloseTicketController {
	return &CloseTicketController{UC: uc}
}

func (h *CloseTicketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, role := identity.FromRequest(c.Request)
		if adminID == "" || !role.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}

		ticketID := c.Param("ticketId")
		if ticketID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ticketId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		t, err := h.UC.Execute(ctx, ticketID, adminID)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, ticketBody(t))
	}
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
