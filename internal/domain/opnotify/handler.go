package opnotify

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"travelagency/internal/domain/admin"
	"travelagency/internal/pkg/response"
	"travelagency/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func callerOf(c *gin.Context) Caller {
	return Caller{ID: c.GetString("operator_id"), Role: c.GetString("role")}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only completed notifications can be deleted")
	case errors.Is(err, ErrNoAdmins):
		response.Error(c, http.StatusBadRequest, "NO_ADMINS", "At least one target admin is required")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrPersistenceFailure):
		log.Printf("operator_notification_persistence_failure path=%s err=%v", c.Request.URL.Path, err)
		response.Error(c, http.StatusInternalServerError, "PERSISTENCE_FAILURE", "Failed to save notification, please retry")
	default:
		log.Printf("operator_notification_error path=%s err=%v", c.Request.URL.Path, err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// List godoc
// @Summary  Merged operator notifications, newest first
// @Tags     Operator notifications
// @Security BearerAuth
// @Param    role   query string false "admin | superadmin: which side to list"
// @Param    status query string false "pending | done"
// @Param    search query string false "matches message, action or sections"
// @Router   /operator-notifications [GET]
func (h *Handler) List(c *gin.Context) {
	f := Filter{
		Status: Status(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		Search: c.Query("search"),
	}
	switch strings.ToLower(strings.TrimSpace(c.Query("role"))) {
	case "":
	case admin.RoleAdmin:
		f.Kind = KindAdminFacing
	case admin.RoleSuperAdmin:
		f.Kind = KindSuperAdminFacing
	default:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "role must be admin or superadmin")
		return
	}

	list, err := h.service.List(c.Request.Context(), callerOf(c), f)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, NotificationListResponse{Notifications: list})
}

// MarkDone godoc
// @Summary  Admin resolves a request; it is forwarded to the super-admin
// @Tags     Operator notifications
// @Security BearerAuth
// @Param    id path int true "request id"
// @Router   /operator-notifications/{id} [PATCH]
func (h *Handler) MarkDone(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	res, err := h.service.MarkDone(c.Request.Context(), c.GetString("operator_id"), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Delete godoc
// @Summary  Delete a completed notification
// @Tags     Operator notifications
// @Security BearerAuth
// @Param    id path int true "notification id"
// @Router   /operator-notifications/{id} [DELETE]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), callerOf(c), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

// Broadcast godoc
// @Summary  Super-admin raises a request against one or more admins
// @Tags     Super-admin notifications
// @Security BearerAuth
// @Param    body body BroadcastRequest true "request"
// @Router   /super-admin-notifications [POST]
func (h *Handler) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	list, err := h.service.Broadcast(c.Request.Context(), c.GetString("operator_id"), req.toInput())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, NotificationListResponse{Notifications: list})
}

// MarkRead godoc
// @Summary  Super-admin marks a forwarded record as read
// @Tags     Super-admin notifications
// @Security BearerAuth
// @Param    id path int true "forwarded record id"
// @Router   /super-admin-notifications/{id} [PATCH]
func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	n, err := h.service.MarkRead(c.Request.Context(), c.GetString("operator_id"), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, NotificationResponse{Notification: n})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.service.UnreadCount(c.Request.Context(), c.GetString("operator_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, UnreadCountResponse{UnreadCount: n})
}
