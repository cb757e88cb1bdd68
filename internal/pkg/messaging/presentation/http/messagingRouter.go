package http

import (
	"github.com/gin-gonic/gin"

	"servihub/internal/pkg/messaging/application/usecase"
	"servihub/internal/pkg/messaging/presentation/controller"
)

// RegisterRoutes registers the direct-messaging HTTP endpoints under the given
// router group. It constructs per-endpoint controllers and binds them directly
// to routes.
func RegisterRoutes(g *gin.RouterGroup, agg *usecase.ConversationAggregator, listUC *usecase.ListConversationsUseCase, historyUC *usecase.GetHistoryUseCase) {
	sendCtl := controller.NewSendMessageController(agg)
	listCtl := controller.NewListConversationsController(listUC)
	historyCtl := controller.NewGetHistoryController(historyUC)

	// POST /api/v1/messages -> send a direct message
	g.POST("/messages", sendCtl.Handle())

	// GET /api/v1/conversations -> conversation list with authoritative unread counts
	g.GET("/conversations", listCtl.Handle())

	// GET /api/v1/conversations/:partnerId/messages -> history; resets unread
	g.GET("/conversations/:partnerId/messages", historyCtl.Handle())
}
