package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config структура конфигурации приложения
type Config struct {
	Server      ServerConfig
	GRPC        GRPCConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Stripe      StripeConfig
	Lulu        LuluConfig
	Storefront  StorefrontConfig
	Auth        AuthConfig
	Logging     LoggingConfig
	Fulfillment FulfillmentConfig
}

// ServerConfig конфигурация HTTP сервера
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// GRPCConfig конфигурация gRPC сервера проверки здоровья.
// Пустой Port отключает сервер.
type GRPCConfig struct {
	Host     string
	Port     string
	UseTLS   bool
	CertFile string
	KeyFile  string
}

// DatabaseConfig конфигурация базы данных.
// Пустой DSN означает хранение заказов в памяти.
type DatabaseConfig struct {
	DSN            string
	MaxConns       int32
	MigrateOnStart bool
}

// RedisConfig конфигурация Redis для дедупликации событий.
// Пустой Addr означает дедупликацию в памяти.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	EventTTL time.Duration
}

// KafkaConfig конфигурация брокеров.
// Без брокеров используется очередь в памяти и события не публикуются.
type KafkaConfig struct {
	Brokers          []string
	FulfillmentTopic string
	ConsumerGroup    string
}

// Enabled сообщает, настроены ли брокеры
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// StripeConfig конфигурация Stripe
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
}

// LuluConfig конфигурация print-on-demand API
type LuluConfig struct {
	APIURL       string
	ClientID     string
	ClientSecret string
	ContactEmail string
	Timeout      time.Duration
}

// StorefrontConfig адреса витрины.
// BaseURL используется для success/cancel URL, PublicURL для ссылок на документы книги.
type StorefrontConfig struct {
	BaseURL   string
	PublicURL string
}

// AuthConfig конфигурация административного доступа
type AuthConfig struct {
	JWTSecret string
}

// LoggingConfig конфигурация логгера
type LoggingConfig struct {
	Level string
}

// FulfillmentConfig конфигурация обработчиков выполнения заказов
type FulfillmentConfig struct {
	Workers   int
	QueueSize int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", "9090")
	v.SetDefault("grpc.use_tls", false)
	v.SetDefault("grpc.cert_file", "")
	v.SetDefault("grpc.key_file", "")

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.migrate_on_start", true)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.event_ttl", 72*time.Hour)

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.fulfillment_topic", "fulfillment.requests")
	v.SetDefault("kafka.consumer_group", "personalized-gospels-fulfillment")

	v.SetDefault("stripe.api_key", "")
	v.SetDefault("stripe.webhook_secret", "")

	v.SetDefault("lulu.api_url", "https://api.sandbox.lulu.com")
	v.SetDefault("lulu.client_id", "")
	v.SetDefault("lulu.client_secret", "")
	v.SetDefault("lulu.contact_email", "orders@calledbyname.com")
	v.SetDefault("lulu.timeout", 30*time.Second)

	v.SetDefault("storefront.base_url", "http://localhost:3000")
	v.SetDefault("storefront.public_url", "https://calledbyname.vercel.app")

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("logging.level", "INFO")

	v.SetDefault("fulfillment.workers", 4)
	v.SetDefault("fulfillment.queue_size", 100)
}

// Load загружает конфигурацию из переменных окружения.
// Ключ server.port читается из SERVER_PORT, lulu.client_id из LULU_CLIENT_ID и т.д.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// привычные имена из окружения витрины
	aliases := map[string]string{
		"server.port":           "PORT",
		"database.dsn":          "DATABASE_URL",
		"stripe.api_key":        "STRIPE_SECRET_KEY",
		"stripe.webhook_secret": "STRIPE_WEBHOOK_SECRET",
		"storefront.base_url":   "FRONTEND_URL",
	}
	for key, env := range aliases {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		GRPC: GRPCConfig{
			Host:     v.GetString("grpc.host"),
			Port:     v.GetString("grpc.port"),
			UseTLS:   v.GetBool("grpc.use_tls"),
			CertFile: v.GetString("grpc.cert_file"),
			KeyFile:  v.GetString("grpc.key_file"),
		},
		Database: DatabaseConfig{
			DSN:            v.GetString("database.dsn"),
			MaxConns:       v.GetInt32("database.max_conns"),
			MigrateOnStart: v.GetBool("database.migrate_on_start"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			EventTTL: v.GetDuration("redis.event_ttl"),
		},
		Kafka: KafkaConfig{
			Brokers:          splitList(v.GetString("kafka.brokers")),
			FulfillmentTopic: v.GetString("kafka.fulfillment_topic"),
			ConsumerGroup:    v.GetString("kafka.consumer_group"),
		},
		Stripe: StripeConfig{
			APIKey:        v.GetString("stripe.api_key"),
			WebhookSecret: v.GetString("stripe.webhook_secret"),
		},
		Lulu: LuluConfig{
			APIURL:       strings.TrimRight(v.GetString("lulu.api_url"), "/"),
			ClientID:     v.GetString("lulu.client_id"),
			ClientSecret: v.GetString("lulu.client_secret"),
			ContactEmail: v.GetString("lulu.contact_email"),
			Timeout:      v.GetDuration("lulu.timeout"),
		},
		Storefront: StorefrontConfig{
			BaseURL:   strings.TrimRight(v.GetString("storefront.base_url"), "/"),
			PublicURL: strings.TrimRight(v.GetString("storefront.public_url"), "/"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("logging.level"),
		},
		Fulfillment: FulfillmentConfig{
			Workers:   v.GetInt("fulfillment.workers"),
			QueueSize: v.GetInt("fulfillment.queue_size"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, без которых сервис не может работать
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("config: server port is required")
	}
	if c.Fulfillment.Workers < 1 {
		return fmt.Errorf("config: fulfillment workers must be positive, got %d", c.Fulfillment.Workers)
	}
	if c.GRPC.UseTLS && (c.GRPC.CertFile == "" || c.GRPC.KeyFile == "") {
		return fmt.Errorf("config: grpc tls requires cert and key files")
	}
	if c.Lulu.Timeout <= 0 {
		return fmt.Errorf("config: lulu timeout must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
