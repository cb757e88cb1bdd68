package v1

import (
	"github.com/gin-gonic/gin"

	gwcontroller "servihub/internal/pkg/gateway/presentation/controller"
	gatewayhttp "servihub/internal/pkg/gateway/presentation/http"
	msgusecase "servihub/internal/pkg/messaging/application/usecase"
	messaginghttp "servihub/internal/pkg/messaging/presentation/http"
	supporthttp "servihub/internal/pkg/support/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1: the messaging
// and support read/write endpoints plus the realtime websocket gateway.
func RegisterRoutes(
	r *gin.Engine,
	agg *msgusecase.ConversationAggregator,
	listUC *msgusecase.ListConversationsUseCase,
	historyUC *msgusecase.GetHistoryUseCase,
	supportDeps supporthttp.Deps,
	socketCtl *gwcontroller.SocketController,
) {
	v1 := r.Group("/api/v1")
	messaginghttp.RegisterRoutes(v1, agg, listUC, historyUC)
	supporthttp.RegisterRoutes(v1, supportDeps)
	gatewayhttp.RegisterRoutes(v1, socketCtl)
}
