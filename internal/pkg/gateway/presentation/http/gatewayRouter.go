package http

import (
	"github.com/gin-gonic/gin"

	"servihub/internal/pkg/gateway/presentation/controller"
)

// RegisterRoutes mounts the realtime websocket endpoint.
func RegisterRoutes(g *gin.RouterGroup, socketCtl *controller.SocketController) {
	// GET /api/v1/ws -> websocket endpoint for all realtime traffic
	g.GET("/ws", socketCtl.Handle())
}
