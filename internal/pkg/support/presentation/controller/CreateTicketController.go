package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"servihub/internal/pkg/identity"
	"servihub/internal/pkg/support/application/usecase"
)

// CreateTicketController opens (or idempotently returns) the requester's
// active support ticket.
type CreateTicketController struct {
	UC *usecase.CreateTicketUseCase
}

func NewCreateTicketController(uc *usecase.CreateTicketUseCase) *CreateTicketController {
	return &CreateTicketController{UC: uc}
}

func (h *CreateTicketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role := identity.FromRequest(c.Request)
		if userID == "" || !role.Valid() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user id and a valid role are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		t, err := h.UC.Execute(ctx, userID, role)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, ticketBody(t))
	}
}
