package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"servihub/internal/pkg/identity"
	"servihub/internal/pkg/support/application/usecase"
)

// ListOpenTicketsController returns the unclaimed ticket queue (admin only).
type ListOpenTicketsController struct {
	UC *usecase.ListOpenTicketsUseCase
}

func NewListOpenTicketsController(uc *usecase.ListOpenTicketsUseCase) *ListOpenTicketsController {
	return &ListOpenTicketsController{UC: uc}
}

func (h *ListOpenTicketsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, role := identity.FromRequest(c.Request)
		if adminID == "" || !role.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		tickets, err := h.UC.Execute(ctx)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(tickets))
		for i := range tickets {
			out = append(out, ticketBody(&tickets[i]))
		}

		c.JSON(http.StatusOK, gin.H{
			"tickets": out,
			"count":   len(out),
		})
	}
}
