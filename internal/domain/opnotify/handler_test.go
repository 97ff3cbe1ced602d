package opnotify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != role {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, _, _ := newTestService(t, Options{})
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-Operator"); id != "" {
			c.Set("operator_id", id)
			c.Set("role", c.GetHeader("X-Test-Role"))
		}
		c.Next()
	})
	RegisterRoutes(r.Group("/api/v1"), NewHandler(svc), requireRole("admin"), requireRole("superadmin"))
	return r
}

func doJSON(r http.Handler, method, path, operatorID, role string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Operator", operatorID)
	req.Header.Set("X-Test-Role", role)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var env envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	return rr, env
}

func TestNotificationEndpoints_FullFlow(t *testing.T) {
	r := setupTestRouter(t)

	// broadcast with no targets
	rr, env := doJSON(r, http.MethodPost, "/api/v1/super-admin-notifications", superID, "superadmin",
		map[string]any{"message": "hi", "target_admin_ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "NO_ADMINS", env.Error.Code)

	// an empty body still reports the missing targets
	rr, env = doJSON(r, http.MethodPost, "/api/v1/super-admin-notifications", superID, "superadmin", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "NO_ADMINS", env.Error.Code)

	// invalid priority
	rr, env = doJSON(r, http.MethodPost, "/api/v1/super-admin-notifications", superID, "superadmin",
		map[string]any{"message": "hi", "priority": "meh", "target_admin_ids": []string{"a1"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	// admins cannot broadcast
	rr, _ = doJSON(r, http.MethodPost, "/api/v1/super-admin-notifications", adminA1, "admin",
		map[string]any{"message": "hi", "target_admin_ids": []string{"a2"}})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, env = doJSON(r, http.MethodPost, "/api/v1/super-admin-notifications", superID, "superadmin",
		map[string]any{"sections": []string{"Blog"}, "action": "update", "message": "Refresh banner", "target_admin_ids": []string{"a1", "a2"}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created NotificationListResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Len(t, created.Notifications, 2)
	reqID := created.Notifications[0].ID

	// pending record cannot be deleted
	rr, env = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/operator-notifications/%d", reqID), adminA1, "admin", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	// other admin cannot resolve it
	rr, env = doJSON(r, http.MethodPatch, fmt.Sprintf("/api/v1/operator-notifications/%d", reqID), adminA2, "admin", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rr, env = doJSON(r, http.MethodPatch, fmt.Sprintf("/api/v1/operator-notifications/%d", reqID), adminA1, "admin", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var done MarkDoneResult
	require.NoError(t, json.Unmarshal(env.Data, &done))
	assert.Equal(t, StatusDone, done.Notification.Status)
	require.NotNil(t, done.Forwarded)

	rr, env = doJSON(r, http.MethodGet, "/api/v1/super-admin-notifications/unread-count", superID, "superadmin", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var unread UnreadCountResponse
	require.NoError(t, json.Unmarshal(env.Data, &unread))
	assert.EqualValues(t, 1, unread.UnreadCount)

	rr, env = doJSON(r, http.MethodPatch, fmt.Sprintf("/api/v1/super-admin-notifications/%d", done.Forwarded.ID), superID, "superadmin", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var read NotificationResponse
	require.NoError(t, json.Unmarshal(env.Data, &read))
	assert.True(t, read.Notification.ReadBySuperAdmin)

	rr, env = doJSON(r, http.MethodGet, "/api/v1/operator-notifications?role=superadmin", superID, "superadmin", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var listed NotificationListResponse
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed.Notifications, 1)
	assert.Equal(t, KindSuperAdminFacing, listed.Notifications[0].Kind)

	rr, _ = doJSON(r, http.MethodGet, "/api/v1/operator-notifications?role=owner", superID, "superadmin", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/operator-notifications/%d", reqID), adminA1, "admin", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, env = doJSON(r, http.MethodDelete, "/api/v1/operator-notifications/abc", adminA1, "admin", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_ID", env.Error.Code)
}
