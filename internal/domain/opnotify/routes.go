package opnotify

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts both notification groups on a group that already
// requires an operator token.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, adminOnly, superOnly gin.HandlerFunc) {
	ops := r.Group("/operator-notifications")
	{
		ops.GET("", h.List)
		ops.PATCH("/:id", adminOnly, h.MarkDone)
		ops.DELETE("/:id", h.Delete)
	}

	supers := r.Group("/super-admin-notifications", superOnly)
	{
		supers.POST("", h.Broadcast)
		supers.GET("/unread-count", h.UnreadCount)
		supers.PATCH("/:id", h.MarkRead)
	}
}
