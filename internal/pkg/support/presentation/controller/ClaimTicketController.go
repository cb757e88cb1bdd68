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

// ClaimTicketController lets an admin claim an open ticket. Exactly one
// concurrent claimer wins; the rest get 409 and refresh their open-ticket list.
type ClaimTicketController struct {
	UC *usecase.ClaimTicketUseCase
}

func NewClaimTicketController(uc *usecase.ClaimTicketUseCase) *ClaimTicketController {
	return &ClaimTicketController{UC: uc}
}

func (h *ClaimTicketController) Handle() gin.HandlerFunc {
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
			body := gin.H{"error": err.Error()}
			if err == support.ErrAlreadyAssigned {
				body["reason"] = "already_assigned"
			}
			c.JSON(statusFor(err), body)
			return
		}

		c.JSON(http.StatusOK, ticketBody(t))
	}
}
