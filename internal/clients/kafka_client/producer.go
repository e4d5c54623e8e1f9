package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/reviewpulse/config"
	"github.com/spacesedan/reviewpulse/internal/models"
	"github.com/spacesedan/reviewpulse/internal/utils"
)

// Message is a key/value pair ready to be produced.
type Message struct {
	Key   []byte
	Value []byte
}

// KafkaPublisher publishes finished analyses to the results topic.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaPublisher(cfg config.KafkaConfig) (*KafkaPublisher, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...", slog.String("broker", cfg.Broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Broker,
		"security.protocol":  "PLAINTEXT",
		"enable.idempotence": true,
		"acks":               "all",
		"message.timeout.ms": MESSAGE_TIMEOUT_MS,
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	topic := cfg.Topic
	if topic == "" {
		topic = KAFKA_TOPIC_SENTIMENT_RESULTS
	}

	slog.Info("[KafkaClient] Kafka Producer initialized successfully", slog.String("topic", topic))
	return &KafkaPublisher{producer: p, topic: topic}, nil
}

func (k *KafkaPublisher) Close() {
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := k.producer.Flush(FLUSH_TIMEOUT_MS); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	k.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}

// PublishAnalysis sends the event header followed by its detail rows in
// batches, all keyed by run id so they land on one partition in order.
func (k *KafkaPublisher) PublishAnalysis(ctx context.Context, event models.AnalysisEvent) error {
	messages, err := BuildMessages(event, DETAIL_BATCH_SIZE)
	if err != nil {
		return err
	}

	for _, msg := range messages {
		if err := k.produce(ctx, msg); err != nil {
			return err
		}
	}

	slog.Info("[KafkaClient] Published analysis",
		slog.String("run_id", event.RunID),
		slog.String("topic", k.topic),
		slog.Int("messages", len(messages)))
	return nil
}

func (k *KafkaPublisher) produce(ctx context.Context, m Message) error {
	var err error
	for i := 0; i < MAX_RETRIES; i++ {
		err = k.produceOnce(ctx, m)
		if err == nil {
			return nil
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(RETRY_DELAY):
		}
	}
	return fmt.Errorf("[KafkaClient] failed to produce after %d attempts: %w", MAX_RETRIES, err)
}

func (k *KafkaPublisher) produceOnce(ctx context.Context, m Message) error {
	delivery := make(chan kafka.Event, 1)
	err := k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
		Key:            m.Key,
		Value:          m.Value,
	}, delivery)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-delivery:
		msg, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %v", e)
		}
		return msg.TopicPartition.Error
	}
}

// BuildMessages serializes an event into its header message (without detail
// rows) and one message per batch of detail rows.
func BuildMessages(event models.AnalysisEvent, batchSize int) ([]Message, error) {
	key := []byte(event.RunID)

	header := event
	header.Details = nil
	value, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] failed to marshal event: %w", err)
	}
	messages := []Message{{Key: key, Value: value}}

	seq := 0
	appendBatch := func(rows []models.DetailRow) error {
		value, err := json.Marshal(models.DetailBatch{RunID: event.RunID, Seq: seq, Rows: rows})
		if err != nil {
			return fmt.Errorf("[KafkaClient] failed to marshal detail batch: %w", err)
		}
		messages = append(messages, Message{Key: key, Value: value})
		seq++
		return nil
	}

	buffer := utils.NewBatchBuffer[models.DetailRow](batchSize)
	for _, row := range event.Details {
		if buffer.Add(row) {
			if err := appendBatch(buffer.GetAndClear()); err != nil {
				return nil, err
			}
		}
	}
	if buffer.HasData() {
		if err := appendBatch(buffer.GetAndClear()); err != nil {
			return nil, err
		}
	}

	return messages, nil
}
