package reminder

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts reminder routes on a group that already requires an
// operator token. superOnly guards the manual run.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, superOnly gin.HandlerFunc) {
	g := r.Group("/admin-reminders")
	{
		g.GET("", h.List)
		g.GET("/unread", h.ListUnread)
		g.GET("/unread-count", h.UnreadCount)
		g.PUT("/read-all", h.MarkAllRead)
		g.PUT("/:id/read", h.MarkRead)
		g.POST("/run", superOnly, h.RunNow)
	}
}
