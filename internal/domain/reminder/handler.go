package reminder

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"travelagency/internal/pkg/response"
)

// Ticker runs one guarded reminder tick.
type Ticker interface {
	Tick(ctx context.Context) TickReport
}

type Handler struct {
	service *Service
	ticker  Ticker
}

func NewHandler(service *Service, ticker Ticker) *Handler {
	return &Handler{service: service, ticker: ticker}
}

// ListUnread godoc
// @Summary  Unread booking reminders, newest first
// @Tags     Reminders
// @Security BearerAuth
// @Router   /admin-reminders/unread [GET]
func (h *Handler) ListUnread(c *gin.Context) {
	list, err := h.service.ListUnread(c.Request.Context())
	if err != nil {
		log.Printf("reminder_list_unread_failed err=%v", err)
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get reminders")
		return
	}
	if list == nil {
		list = []AdminReminder{}
	}
	response.Success(c, http.StatusOK, UnreadRemindersResponse{Reminders: list})
}

// List godoc
// @Summary  All booking reminders with pagination
// @Tags     Reminders
// @Security BearerAuth
// @Param    limit  query int false "page size (default 20, max 100)"
// @Param    offset query int false "offset"
// @Router   /admin-reminders [GET]
func (h *Handler) List(c *gin.Context) {
	limit := 20
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = min(v, 100)
		}
	}
	offset := 0
	if s := c.Query("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	list, unread, total, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		log.Printf("reminder_list_failed err=%v", err)
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get reminders")
		return
	}
	if list == nil {
		list = []AdminReminder{}
	}
	response.Success(c, http.StatusOK, ReminderListResponse{Reminders: list, UnreadCount: unread, Total: total})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.service.UnreadCount(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get unread count")
		return
	}
	response.Success(c, http.StatusOK, UnreadCountResponse{UnreadCount: n})
}

// MarkRead godoc
// @Summary  Mark a reminder as read
// @Tags     Reminders
// @Security BearerAuth
// @Param    id path int true "reminder id"
// @Router   /admin-reminders/{id}/read [PUT]
func (h *Handler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid reminder ID")
		return
	}

	rem, err := h.service.MarkRead(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Reminder not found")
			return
		}
		log.Printf("reminder_mark_read_failed id=%d err=%v", id, err)
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to mark as read")
		return
	}
	response.Success(c, http.StatusOK, ReminderResponse{Reminder: rem})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	n, err := h.service.MarkAllRead(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to mark all as read")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "read", "updated": n})
}

// RunNow godoc
// @Summary  Run the reminder pipeline immediately
// @Tags     Reminders
// @Security BearerAuth
// @Router   /admin-reminders/run [POST]
func (h *Handler) RunNow(c *gin.Context) {
	report := h.ticker.Tick(c.Request.Context())
	if report.Skipped {
		response.Error(c, http.StatusConflict, "TICK_IN_PROGRESS", "A reminder run is already in progress")
		return
	}
	log.Printf("reminder_run_manual operator_id=%s created=%d", c.GetString("operator_id"), report.Created)
	response.Success(c, http.StatusOK, report)
}
