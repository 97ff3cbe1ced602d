package live

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"travelagency/internal/domain/admin"
	"travelagency/internal/pkg/jwt"
	"travelagency/internal/pkg/response"
)

type WSHandler struct {
	hub        *Hub
	jwtService *jwt.Service
	upgrader   websocket.Upgrader
}

// NewWSHandler accepts sockets from allowedOrigins. An empty list allows
// any origin, which is only meant for local development.
func NewWSHandler(hub *Hub, jwtService *jwt.Service, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WSHandler{
		hub:        hub,
		jwtService: jwtService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// HandleWebSocket streams live events to an operator.
//
// Endpoint: GET /ws/operators?token=JWT
//
// Browsers cannot set headers on a websocket handshake, so the token comes
// from the query string.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_TOKEN_MISSING", "Token is required. Use ?token=YOUR_JWT_TOKEN")
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}
	if !admin.ValidRole(claims.Role) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Operator role required")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("live_upgrade_failed operator_id=%s err=%v", claims.OperatorID, err)
		return
	}

	log.Printf("live_connected operator_id=%s role=%s", claims.OperatorID, claims.Role)
	h.hub.serve(conn, claims.OperatorID, claims.Role)
	log.Printf("live_disconnected operator_id=%s", claims.OperatorID)
}
