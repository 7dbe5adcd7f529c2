package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/nguyentranbao-ct/message-core/internal/config"
	"github.com/nguyentranbao-ct/message-core/internal/models"
	"github.com/nguyentranbao-ct/message-core/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Publisher announces applied message mutations to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event models.MessageEvent) error
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	metrics  *prometheus.HistogramVec
}

// NewPublisher creates a Kafka publisher, or a no-op one when Kafka is disabled.
func NewPublisher(lc fx.Lifecycle, cfg *config.Config) (Publisher, error) {
	if !cfg.Kafka.Enabled {
		return &noopPublisher{}, nil
	}

	conf := sarama.NewConfig()
	conf.ClientID = cfg.Kafka.ClientID
	conf.Producer.RequiredAcks = sarama.WaitForAll
	conf.Producer.Return.Successes = true
	conf.Producer.Retry.Max = 3
	conf.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, conf)
	if err != nil {
		return nil, fmt.Errorf("new sync producer: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Infow(ctx, "Closing Kafka producer", "topic", cfg.Kafka.Topic)
			return producer.Close()
		},
	})

	return newKafkaPublisher(producer, cfg.Kafka.Topic)
}

func newKafkaPublisher(producer sarama.SyncProducer, topic string) (*kafkaPublisher, error) {
	metrics, err := util.GetHistogramVec("kafka_messages_published", "status", "topic")
	if err != nil {
		return nil, fmt.Errorf("get histogram vec: %w", err)
	}
	return &kafkaPublisher{
		producer: producer,
		topic:    topic,
		metrics:  metrics,
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, event models.MessageEvent) error {
	start := time.Now()
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Key()),
		Value: sarama.ByteEncoder(payload),
	}
	requestID := models.RequestIDFromContext(ctx)
	if requestID != "" {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{
			Key:   []byte(models.HeaderRequestID),
			Value: []byte(requestID),
		})
	}

	partition, offset, err := p.producer.SendMessage(msg)
	status := "success"
	if err != nil {
		status = "error"
	}
	p.metrics.WithLabelValues(status, p.topic).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	log.Debugw(ctx, "Published message event",
		"type", event.Type,
		"message_id", event.MessageID,
		"request_id", requestID,
		"partition", partition,
		"offset", offset)
	return nil
}

// noopPublisher is used when Kafka is disabled
type noopPublisher struct{}

func (n *noopPublisher) Publish(ctx context.Context, event models.MessageEvent) error {
	return nil
}
