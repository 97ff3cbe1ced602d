package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPublishing(t *testing.T) {
	now := time.Date(2026, 10, 15, 14, 0, 0, 0, time.FixedZone("ALMT", 5*3600))

	msg, err := buildPublishing("reminder.created", map[string]string{"booking_id": "b1"}, now, "m-1")
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "m-1", msg.MessageId)
	assert.Equal(t, "reminder.created", msg.Type)
	assert.Equal(t, "travelagency", msg.AppId)
	assert.Equal(t, time.UTC, msg.Timestamp.Location())
	assert.True(t, now.Equal(msg.Timestamp))

	var body map[string]string
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "b1", body["booking_id"])
}

func TestBuildPublishing_EncodeError(t *testing.T) {
	_, err := buildPublishing("reminder.created", make(chan int), time.Now(), "m-1")
	assert.Error(t, err)
}

func TestPublishJSON_AfterCloseReturnsErrClosed(t *testing.T) {
	p := &Publisher{exchange: "travel.events"}
	require.NoError(t, p.Close())

	err := p.PublishJSON(context.Background(), "reminder.created", map[string]string{})
	assert.ErrorIs(t, err, ErrClosed)
}
