package live

import "github.com/gin-gonic/gin"

func RegisterRoutes(r gin.IRouter, h *WSHandler) {
	r.GET("/ws/operators", h.HandleWebSocket)
}
