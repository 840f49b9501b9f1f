package producer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

// Topics топики событий заказов; имя топика совпадает с типом события
var Topics = []string{
	string(domain.OrderEventPaid),
	string(domain.OrderEventFulfillmentDigital),
	string(domain.OrderEventFulfillmentPhysical),
	string(domain.OrderEventFulfillmentFailed),
}

// OrderEventProducer отправляет события заказов в Kafka
type OrderEventProducer interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
	Close() error
}

type kafkaOrderEventProducer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
}

// NewKafkaOrderEventProducer создает новый продюсер событий заказов
func NewKafkaOrderEventProducer(producer sarama.SyncProducer, log *logger.Logger) OrderEventProducer {
	return &kafkaOrderEventProducer{
		producer: producer,
		log:      log,
	}
}

// PublishOrderEvent публикует событие в топик, совпадающий с его типом.
// Ключ сообщения - ID заказа, чтобы события одного заказа шли в одну партицию.
func (p *kafkaOrderEventProducer) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	topic := string(event.Type)
	messageValue, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.OrderID),
		Value: sarama.ByteEncoder(messageValue),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("event_type"),
				Value: []byte(topic),
			},
		},
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	p.log.Info("Published order event to topic %s: order=%s partition=%d offset=%d",
		topic, event.OrderID, partition, offset)

	return nil
}

// Close закрывает продюсер
func (p *kafkaOrderEventProducer) Close() error {
	return p.producer.Close()
}
