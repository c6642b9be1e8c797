package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
	deadline bool
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	_, ok := ctx.Deadline()
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg, deadline: ok})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisherRoutesEvents(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{ch: ch, exchange: "skillcred.events", logger: log.New(&bytes.Buffer{}, "", 0)}
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, p.AttemptGraded(ctx, AttemptGraded{AttemptID: "a1", UserID: "u1", Score: 100, Passed: true, CompletedAt: now}))
	require.NoError(t, p.BadgeAwarded(ctx, BadgeAwarded{BadgeID: "b1", UserID: "u1", Tier: "EXPERT", IssuedAt: now}))
	require.NoError(t, p.BadgeAwarded(ctx, BadgeAwarded{BadgeID: "b1", UserID: "u1", Tier: "EXPERT", PreviousTier: "ADVANCED", IssuedAt: now}))

	require.Len(t, ch.sent, 3)
	assert.Equal(t, []string{KeyAttemptGraded, KeyBadgeIssued, KeyBadgeUpgraded},
		[]string{ch.sent[0].key, ch.sent[1].key, ch.sent[2].key})

	first := ch.sent[0]
	assert.Equal(t, "skillcred.events", first.exchange)
	assert.Equal(t, "application/json", first.msg.ContentType)
	assert.Equal(t, amqp.Persistent, first.msg.DeliveryMode)
	assert.NotEmpty(t, first.msg.MessageId)
	assert.True(t, first.deadline)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(first.msg.Body, &body))
	assert.Equal(t, "a1", body["attemptId"])
	assert.Equal(t, float64(100), body["score"])

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisherWrapsChannelErrors(t *testing.T) {
	boom := errors.New("channel closed")
	p := &AMQPPublisher{ch: &fakeChannel{err: boom}, exchange: "x", logger: log.New(&bytes.Buffer{}, "", 0)}

	err := p.AttemptGraded(context.Background(), AttemptGraded{AttemptID: "a1"})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), KeyAttemptGraded)
}

func TestEmptyURLDisablesPublishing(t *testing.T) {
	var out bytes.Buffer
	p, err := NewAMQPPublisher("", "skillcred.events", log.New(&out, "", 0))
	require.NoError(t, err)
	assert.IsType(t, Nop{}, p)
	assert.Contains(t, out.String(), "disabled")
	assert.NoError(t, p.AttemptGraded(context.Background(), AttemptGraded{}))
	assert.NoError(t, p.Close())
}
