package live

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagency/internal/events"
	"travelagency/internal/pkg/jwt"
)

func fakeConn(operatorID, role string) *connection {
	return &connection{operatorID: operatorID, role: role, send: make(chan []byte, 4)}
}

func received(c *connection) []string {
	var types []string
	for {
		select {
		case msg := <-c.send:
			var ev events.Event
			_ = json.Unmarshal(msg, &ev)
			types = append(types, ev.Type)
		default:
			return types
		}
	}
}

func TestHub_PublishRoutesByAudience(t *testing.T) {
	h := NewHub()
	a1 := fakeConn("a1", "admin")
	a1Tab := fakeConn("a1", "admin")
	a2 := fakeConn("a2", "admin")
	s1 := fakeConn("s1", "superadmin")
	for _, c := range []*connection{a1, a1Tab, a2, s1} {
		h.register(c)
	}
	ctx := context.Background()

	h.Publish(ctx, events.New(events.TypeReminderCreated, events.Audience{Role: "admin"}, nil))
	h.Publish(ctx, events.New(events.TypeNotificationCreated, events.Audience{Role: "admin", OperatorID: "a1"}, nil))
	h.Publish(ctx, events.New(events.TypeNotificationForward, events.Audience{Role: "superadmin", OperatorID: "s1"}, nil))
	h.Publish(ctx, events.New("system.notice", events.Audience{}, nil))

	assert.Equal(t, []string{events.TypeReminderCreated, events.TypeNotificationCreated, "system.notice"}, received(a1))
	assert.Equal(t, []string{events.TypeReminderCreated, events.TypeNotificationCreated, "system.notice"}, received(a1Tab))
	assert.Equal(t, []string{events.TypeReminderCreated, "system.notice"}, received(a2))
	assert.Equal(t, []string{events.TypeNotificationForward, "system.notice"}, received(s1))
}

func TestHub_SlowClientDoesNotBlock(t *testing.T) {
	h := NewHub()
	c := &connection{operatorID: "a1", role: "admin", send: make(chan []byte)}
	h.register(c)

	done := make(chan struct{})
	go func() {
		h.Publish(context.Background(), events.New(events.TypeReminderCreated, events.Audience{}, nil))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow client")
	}
}

func TestHub_UnregisterRemovesOnlyThatSocket(t *testing.T) {
	h := NewHub()
	first := fakeConn("a1", "admin")
	second := fakeConn("a1", "admin")
	h.register(first)
	h.register(second)
	require.Equal(t, 2, h.Count())

	h.unregister(first)
	h.unregister(first)
	assert.Equal(t, 1, h.Count())

	h.unregister(second)
	assert.Zero(t, h.Count())
}

func TestWSHandler_StreamsEventsToOperator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtService := jwt.New("ws-secret", time.Hour)
	hub := NewHub()

	r := gin.New()
	RegisterRoutes(r, NewWSHandler(hub, jwtService, nil))
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/operators"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)

	token, err := jwtService.GenerateToken("a1", "admin")
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(context.Background(), events.New(events.TypeNotificationCreated,
		events.Audience{Role: "admin", OperatorID: "a1"}, map[string]any{"id": 7}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev events.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, events.TypeNotificationCreated, ev.Type)
	assert.Equal(t, "a1", ev.Audience.OperatorID)
}
