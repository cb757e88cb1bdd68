package http

import (
	"github.com/gin-gonic/gin"

	"servihub/internal/pkg/support/application/usecase"
	"servihub/internal/pkg/support/presentation/controller"
)

// Deps bundles the support use cases the HTTP layer binds to routes.
type Deps struct {
	Create      *usecase.CreateTicketUseCase
	Claim       *usecase.ClaimTicketUseCase
	SendMessage *usecase.SendTicketMessageUseCase
	Close       *usecase.CloseTicketUseCase
	ListOpen    *usecase.ListOpenTicketsUseCase
	GetMessages *usecase.GetTicketMessagesUseCase
}

// RegisterRoutes registers the support-ticket HTTP endpoints under the given
// router group, one controller per endpoint.
func RegisterRoutes(g *gin.RouterGroup, d Deps) {
	createCtl := controller.NewCreateTicketController(d.Create)
	claimCtl := controller.NewClaimTicketController(d.Claim)
	sendCtl := controller.NewSendTicketMessageController(d.SendMessage)
	closeCtl := controller.NewCloseTicketController(d.Close)
	listCtl := controller.NewListOpenTicketsController(d.ListOpen)
	messagesCtl := controller.NewGetTicketMessagesController(d.GetMessages)

	// POST /api/v1/support/tickets -> open (or return) the requester's ticket
	g.POST("/support/tickets", createCtl.Handle())

	// GET /api/v1/support/tickets -> open-ticket queue (admin only)
	g.GET("/support/tickets", listCtl.Handle())

	// POST /api/v1/support/tickets/:ticketId/claim -> claim (admin only)
	g.POST("/support/tickets/:ticketId/claim", claimCtl.Handle())

	// POST /api/v1/support/tickets/:ticketId/close -> close (assigned admin only)
	g.POST("/support/tickets/:ticketId/close", closeCtl.Handle())

	// POST /api/v1/support/tickets/:ticketId/messages -> append to the thread
	g.POST("/support/tickets/:ticketId/messages", sendCtl.Handle())

	// GET /api/v1/support/tickets/:ticketId/messages -> fetch the thread
	g.GET("/support/tickets/:ticketId/messages", messagesCtl.Handle())
}
