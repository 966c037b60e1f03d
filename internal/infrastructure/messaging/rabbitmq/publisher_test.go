package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPublishEvent_Validation(t *testing.T) {
	p := &Publisher{}

	t.Run("missing_routing_key", func(t *testing.T) {
		err := p.PublishEvent(context.Background(), " ", "msg-1", nil)
		assert.EqualError(t, err, "missing routingKey")
	})

	t.Run("missing_message_id", func(t *testing.T) {
		err := p.PublishEvent(context.Background(), "event.published", "", nil)
		assert.EqualError(t, err, "missing messageID")
	})

	t.Run("not_connected", func(t *testing.T) {
		err := p.PublishEvent(context.Background(), "event.published", "msg-1", nil)
		assert.ErrorIs(t, err, ErrNotReady)
	})
}

func startRabbit(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	rabbitC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3-management",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForLog("Server startup complete").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping: rabbitmq container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = rabbitC.Terminate(ctx) })

	host, err := rabbitC.Host(ctx)
	require.NoError(t, err)
	port, err := rabbitC.MappedPort(ctx, "5672")
	require.NoError(t, err)
	return "amqp://guest:guest@" + host + ":" + port.Port() + "/"
}

func TestPublisher_Integration(t *testing.T) {
	url := startRabbit(t)
	ctx := context.Background()

	p, err := NewPublisher(url, "test.listing")
	require.NoError(t, err)
	defer p.Close()

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	defer conn.Close()
	ch, err := conn.Channel()
	require.NoError(t, err)
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "request.*", "test.listing", false, nil))
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	t.Run("routed_message_is_confirmed", func(t *testing.T) {
		err := p.PublishEvent(ctx, "request.created", "msg-1", []byte(`{"version":1}`))
		require.NoError(t, err)

		select {
		case d := <-deliveries:
			assert.Equal(t, "msg-1", d.MessageId)
			assert.Equal(t, "application/json", d.ContentType)
			assert.JSONEq(t, `{"version":1}`, string(d.Body))
		case <-time.After(5 * time.Second):
			t.Fatal("message not delivered")
		}
	})

	t.Run("unroutable_message_is_returned", func(t *testing.T) {
		err := p.PublishEvent(ctx, "event.published", "msg-2", []byte(`{}`))
		assert.True(t, errors.Is(err, ErrNoRoute), "got %v", err)
	})

	t.Run("next_publish_after_return_succeeds", func(t *testing.T) {
		require.NoError(t, p.PublishEvent(ctx, "request.canceled", "msg-3", []byte(`{}`)))
		<-deliveries
	})
}
