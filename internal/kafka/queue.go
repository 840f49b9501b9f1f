package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/internal/fulfillment"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkaGo.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

// FulfillmentQueue публикует задачи исполнения в Kafka
type FulfillmentQueue struct {
	writer messageWriter
	topic  string
	log    *logger.Logger
}

var _ fulfillment.Queue = (*FulfillmentQueue)(nil)

// NewFulfillmentQueue создает и настраивает новую очередь исполнения поверх Kafka Writer.
func NewFulfillmentQueue(cfg *Config, log *logger.Logger) (*FulfillmentQueue, error) {
	// Проверяем, что список брокеров не пуст
	if len(cfg.Brokers) == 0 {
		log.Errorw("Kafka brokers list is empty in config, cannot create fulfillment queue")
		return nil, errors.New("kafka brokers are not configured")
	}

	writer := &kafkaGo.Writer{
		Addr:         kafkaGo.TCP(cfg.Brokers...),
		Topic:        cfg.FulfillmentTopic,
		Balancer:     &kafkaGo.Hash{}, // один заказ всегда в одной партиции
		RequiredAcks: kafkaGo.RequireAll,
		BatchSize:    1,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	log.Infow("Kafka fulfillment queue initialized", "brokers", cfg.Brokers, "topic", cfg.FulfillmentTopic)
	return &FulfillmentQueue{writer: writer, topic: cfg.FulfillmentTopic, log: log}, nil
}

// Enqueue сериализует запрос в JSON и отправляет его с ID заказа в качестве ключа
func (q *FulfillmentQueue) Enqueue(ctx context.Context, req domain.FulfillmentRequest) error {
	messageValue, err := json.Marshal(req)
	if err != nil {
		q.log.Errorw("Failed to marshal fulfillment request", "error", err, "orderID", req.OrderID)
		return fmt.Errorf("kafka: failed to marshal message data: %w", err)
	}

	message := kafkaGo.Message{
		Key:   []byte(req.OrderID),
		Value: messageValue,
		Time:  time.Now(),
	}

	writeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := q.writer.WriteMessages(writeCtx, message); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			q.log.Errorw("Kafka write timeout exceeded", "error", err, "topic", q.topic, "orderID", req.OrderID)
			return fmt.Errorf("kafka: write timeout: %w", err)
		}
		q.log.Errorw("Failed to write message to Kafka", "error", err, "topic", q.topic, "orderID", req.OrderID)
		return fmt.Errorf("kafka: failed to write message: %w", err)
	}

	q.log.Infow("Fulfillment request enqueued", "topic", q.topic, "orderID", req.OrderID)
	return nil
}

// Close закрывает соединение Kafka Writer.
func (q *FulfillmentQueue) Close() error {
	q.log.Infow("Closing Kafka fulfillment queue writer...")
	if err := q.writer.Close(); err != nil {
		q.log.Errorw("Failed to close Kafka writer", "error", err)
		return fmt.Errorf("kafka: failed to close writer: %w", err)
	}
	return nil
}

// FulfillmentConsumer читает задачи исполнения из Kafka и передает их обработчику
type FulfillmentConsumer struct {
	reader  messageReader
	handler fulfillment.Handler
	log     *logger.Logger
}

// NewFulfillmentConsumer создает консьюмер группы для топика исполнения
func NewFulfillmentConsumer(cfg *Config, handler fulfillment.Handler, log *logger.Logger) *FulfillmentConsumer {
	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.Consumer.Group,
		Topic:          cfg.FulfillmentTopic,
		MinBytes:       cfg.Consumer.MinBytes,
		MaxBytes:       cfg.Consumer.MaxBytes,
		MaxWait:        cfg.Consumer.MaxWait,
		CommitInterval: cfg.Consumer.CommitInterval,
		StartOffset:    kafkaGo.FirstOffset,
	})
	return &FulfillmentConsumer{reader: reader, handler: handler, log: log}
}

// Run читает сообщения до отмены ctx.
// Смещение фиксируется после обработки независимо от результата: задание печати не повторяется.
func (c *FulfillmentConsumer) Run(ctx context.Context) error {
	c.log.Info("Fulfillment consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				c.log.Info("Fulfillment consumer stopped")
				return nil
			}
			return fmt.Errorf("kafka: failed to fetch message: %w", err)
		}

		var req domain.FulfillmentRequest
		if err := json.Unmarshal(msg.Value, &req); err != nil {
			c.log.Errorw("Skipping malformed fulfillment message", "offset", msg.Offset, "partition", msg.Partition, "error", err)
		} else if err := c.handler(ctx, req); err != nil {
			c.log.Debugw("Fulfillment task finished with error", "orderID", req.OrderID, "error", err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.Errorw("Failed to commit fulfillment message", "offset", msg.Offset, "error", err)
		}
	}
}

// Close закрывает Kafka Reader
func (c *FulfillmentConsumer) Close() error {
	return c.reader.Close()
}
