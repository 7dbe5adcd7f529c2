package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/nguyentranbao-ct/message-core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisher(t *testing.T) {
	msg := &models.Message{ID: models.NewObjectID(), ConversationID: "conv-1"}
	event := models.NewMessageEvent(models.EventReactionAdded, msg, "user-1", map[string]any{"reaction": "like"})

	t.Run("publishes json keyed by conversation", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, nil)
		producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(pm *sarama.ProducerMessage) error {
			key, err := pm.Key.Encode()
			if err != nil {
				return err
			}
			if string(key) != "conv-1" {
				return errors.New("unexpected key " + string(key))
			}

			value, err := pm.Value.Encode()
			if err != nil {
				return err
			}
			var got models.MessageEvent
			if err := json.Unmarshal(value, &got); err != nil {
				return err
			}
			if got.Type != models.EventReactionAdded || got.MessageID != msg.ID.String() {
				return errors.New("unexpected payload " + string(value))
			}
			if len(pm.Headers) != 0 {
				return fmt.Errorf("unexpected headers %v", pm.Headers)
			}
			return nil
		})

		publisher, err := newKafkaPublisher(producer, "message-events")
		require.NoError(t, err)

		require.NoError(t, publisher.Publish(t.Context(), event))
		require.NoError(t, producer.Close())
	})

	t.Run("forwards request id as a header", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, nil)
		producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(pm *sarama.ProducerMessage) error {
			if len(pm.Headers) != 1 {
				return fmt.Errorf("unexpected headers %v", pm.Headers)
			}
			h := pm.Headers[0]
			if string(h.Key) != models.HeaderRequestID || string(h.Value) != "req-42" {
				return fmt.Errorf("unexpected header %s=%s", h.Key, h.Value)
			}
			return nil
		})

		publisher, err := newKafkaPublisher(producer, "message-events")
		require.NoError(t, err)

		ctx := models.WithRequestID(t.Context(), "req-42")
		require.NoError(t, publisher.Publish(ctx, event))
		require.NoError(t, producer.Close())
	})

	t.Run("returns producer errors", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, nil)
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

		publisher, err := newKafkaPublisher(producer, "message-events")
		require.NoError(t, err)

		err = publisher.Publish(t.Context(), event)
		assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
		require.NoError(t, producer.Close())
	})
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, (&noopPublisher{}).Publish(t.Context(), models.MessageEvent{}))
}
