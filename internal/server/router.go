package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"travelagency/internal/config"
	"travelagency/internal/domain/live"
	"travelagency/internal/domain/opnotify"
	"travelagency/internal/domain/reminder"
	"travelagency/internal/middleware"
	"travelagency/internal/pkg/response"
)

func newRouter(cfg *config.Config, db *gorm.DB, app *App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database is not reachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	live.RegisterRoutes(r, live.NewWSHandler(app.Hub, app.JWT, cfg.CORSAllowedOrigins))

	v1 := r.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(app.JWT), middleware.AnyOperator())
	{
		reminder.RegisterRoutes(protected, reminder.NewHandler(app.Reminders, app.Scheduler), middleware.SuperAdminOnly())
		opnotify.RegisterRoutes(protected, opnotify.NewHandler(app.Notifications), middleware.AdminOnly(), middleware.SuperAdminOnly())
	}

	return r
}
