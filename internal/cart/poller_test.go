package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/fjod/go_storefront/internal/events"
	"github.com/fjod/go_storefront/pkg/logger"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"gotest.tools/v3/assert"
)

func setupKafka(t *testing.T) string {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")
	return brokers[0]
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestPoller_ClearsCartOnOrderPlaced(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka container test in short mode")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := setupKafka(t)
	topic := "order-placed"
	createTopic(t, broker, topic)

	store, _, _ := newTestStore()
	_, _, err := store.Add(ctx, "session-123", product("p1", "a"))
	require.NoError(t, err)
	lines, err := store.Lines(ctx, "session-123")
	require.NoError(t, err)
	assert.Equal(t, 1, len(lines))

	poller := NewPoller(store, logger.Discard(), topic, "cart-test", broker)
	defer poller.Close()

	w := &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafkaGo.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	payload, err := json.Marshal(events.OrderPlaced{OrderID: "o1", SessionID: "session-123"})
	require.NoError(t, err)
	require.NoError(t, w.WriteMessages(ctx, kafkaGo.Message{Key: []byte("o1"), Value: payload}))
	w.Close()

	go poller.Run(ctx)

	require.Eventually(t, func() bool {
		lines, err := store.Lines(ctx, "session-123")
		return err == nil && len(lines) == 0
	}, 30*time.Second, 500*time.Millisecond)
}
