package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const appID = "travelagency"

var ErrClosed = errors.New("mq: publisher closed")

// Publisher writes operator events to a durable topic exchange, routed by
// event type. One channel is shared, so publishes are serialised.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	closed   chan *amqp.Error
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		closed:   ch.NotifyClose(make(chan *amqp.Error, 1)),
	}, nil
}

// buildPublishing encodes v as a persistent JSON message. Type repeats the
// routing key.
func buildPublishing(key string, v any, now time.Time, id string) (amqp.Publishing, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode %s: %w", key, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    id,
		Timestamp:    now.UTC(),
		Type:         key,
		AppId:        appID,
		Body:         body,
	}, nil
}

func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
	msg, err := buildPublishing(key, v, time.Now(), uuid.NewString())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case amqpErr, ok := <-p.closed:
		if ok {
			log.Printf("mq_channel_closed exchange=%s err=%v", p.exchange, amqpErr)
		}
		p.closed = nil
		p.ch = nil
	default:
	}
	if p.ch == nil {
		return ErrClosed
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg)
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}
