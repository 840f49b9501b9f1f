package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

const (
	// TopicFulfillmentRequests очередь задач исполнения оплаченных заказов
	TopicFulfillmentRequests = "fulfillment.requests"
)

// Config конфигурация для Kafka
type Config struct {
	Brokers          []string
	FulfillmentTopic string
	Producer         ProducerConfig
	Consumer         ConsumerConfig
}

// ProducerConfig конфигурация для продюсера событий заказов
type ProducerConfig struct {
	MaxMessageBytes  int
	Compression      sarama.CompressionCodec
	RequiredAcks     sarama.RequiredAcks
	FlushMaxMessages int
}

// ConsumerConfig конфигурация для консьюмера очереди исполнения
type ConsumerConfig struct {
	Group          string
	MinBytes       int
	MaxBytes       int
	MaxWait        time.Duration
	CommitInterval time.Duration
}

// NewConfig создает новую конфигурацию Kafka
func NewConfig(brokers []string, fulfillmentTopic, group string) *Config {
	if fulfillmentTopic == "" {
		fulfillmentTopic = TopicFulfillmentRequests
	}
	return &Config{
		Brokers:          brokers,
		FulfillmentTopic: fulfillmentTopic,
		Producer: ProducerConfig{
			MaxMessageBytes:  1000000,
			Compression:      sarama.CompressionSnappy,
			RequiredAcks:     sarama.WaitForAll,
			FlushMaxMessages: 100,
		},
		Consumer: ConsumerConfig{
			Group:          group,
			MinBytes:       1,
			MaxBytes:       10e6,
			MaxWait:        250 * time.Millisecond,
			CommitInterval: 0,
		},
	}
}

// NewSaramaConfig создает новую конфигурацию Sarama для синхронного продюсера
func NewSaramaConfig(cfg *Config) *sarama.Config {
	saramaConfig := sarama.NewConfig()

	// Версия Kafka
	saramaConfig.Version = sarama.V3_3_0_0

	// Настройки продюсера
	saramaConfig.Producer.MaxMessageBytes = cfg.Producer.MaxMessageBytes
	saramaConfig.Producer.Compression = cfg.Producer.Compression
	saramaConfig.Producer.RequiredAcks = cfg.Producer.RequiredAcks
	saramaConfig.Producer.Flush.MaxMessages = cfg.Producer.FlushMaxMessages
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true

	return saramaConfig
}
