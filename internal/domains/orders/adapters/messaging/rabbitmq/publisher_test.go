package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	declared   []string
	published  []published
	publishErr error
	closed     bool
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp091.Table) error {
	c.declared = append(c.declared, name+":"+kind)
	return nil
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestPublisher_PublishStatusChanged(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisher(ch, WithExchange("orders.test"))
	require.NoError(t, err)
	require.Equal(t, []string{"orders.test:topic"}, ch.declared)

	at := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	event := domain.StatusChanged{
		OrderID:     "ord-1",
		OrderNumber: "ORD-1",
		CustomerID:  "cust-1",
		From:        domain.StatusAwaitingApproval,
		To:          domain.StatusConfirmed,
		Kind:        domain.KindApproval,
		Actor:       domain.Actor{ID: "admin-1", Role: domain.RoleAdmin},
		Note:        "Order approved",
		Version:     2,
		Timestamp:   at,
	}
	require.NoError(t, p.PublishStatusChanged(context.Background(), event))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	require.Equal(t, "orders.test", got.exchange)
	require.Equal(t, "orders.status.confirmed", got.key)
	require.Equal(t, "application/json", got.msg.ContentType)
	require.Equal(t, amqp091.Persistent, got.msg.DeliveryMode)
	require.Equal(t, "ord-1:2", got.msg.MessageId)
	require.Equal(t, domain.EventOrderStatusChanged, got.msg.Type)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	require.Equal(t, "awaiting_approval", body["from"])
	require.Equal(t, "confirmed", body["to"])
	require.Equal(t, "approval", body["kind"])
	require.Equal(t, map[string]any{"id": "admin-1", "role": "admin"}, body["actor"])
}

func TestPublisher_PlacementHasNoFrom(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisher(ch)
	require.NoError(t, err)

	require.NoError(t, p.PublishStatusChanged(context.Background(), domain.StatusChanged{OrderID: "ord-1", To: domain.StatusAwaitingApproval}))
	got := ch.published[0]
	require.Equal(t, DefaultExchange, got.exchange)
	require.Equal(t, domain.EventOrderPlaced, got.msg.Type)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	_, hasFrom := body["from"]
	require.False(t, hasFrom)
}

func TestPublisher_PublishFailure(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := NewPublisher(ch)
	require.NoError(t, err)

	err = p.PublishStatusChanged(context.Background(), domain.StatusChanged{OrderID: "ord-1", To: domain.StatusCancelled})
	require.ErrorContains(t, err, "channel closed")

	require.NoError(t, p.Close())
	require.True(t, ch.closed)
}

func TestNewPublisher_NilChannel(t *testing.T) {
	_, err := NewPublisher(nil)
	require.Error(t, err)
}
