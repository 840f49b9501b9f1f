package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

const (
	webhookEventKeyPrefix = "webhook_event:"

	// DefaultEventTTL время, в течение которого повтор события считается дубликатом
	DefaultEventTTL = 72 * time.Hour
)

// EventDeduplicator отмечает обработанные webhook-события
type EventDeduplicator interface {
	// MarkProcessed возвращает true, если событие встречено впервые
	MarkProcessed(ctx context.Context, eventID string) (bool, error)

	// Forget снимает отметку, чтобы повторная доставка обработала событие заново
	Forget(ctx context.Context, eventID string) error
}

// RedisEventDeduplicator дедуплицирует события через Redis SETNX
type RedisEventDeduplicator struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisEventDeduplicator создает дедупликатор и проверяет соединение с Redis
func NewRedisEventDeduplicator(ctx context.Context, opts *redis.Options, ttl time.Duration, log *logger.Logger) (*RedisEventDeduplicator, error) {
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Errorw("Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultEventTTL
	}

	log.Infow("Connected to Redis successfully", "addr", opts.Addr)
	return &RedisEventDeduplicator{
		client: client,
		ttl:    ttl,
		log:    log,
	}, nil
}

// MarkProcessed атомарно отмечает событие
func (d *RedisEventDeduplicator) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, webhookEventKeyPrefix+eventID, time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
	if err != nil {
		d.log.Errorw("Failed to mark webhook event", "eventID", eventID, "error", err)
		return false, fmt.Errorf("failed to mark event %s: %w", eventID, err)
	}
	return ok, nil
}

// Forget удаляет отметку события
func (d *RedisEventDeduplicator) Forget(ctx context.Context, eventID string) error {
	if err := d.client.Del(ctx, webhookEventKeyPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("failed to forget event %s: %w", eventID, err)
	}
	return nil
}

// Close закрывает соединение с Redis
func (d *RedisEventDeduplicator) Close() error {
	return d.client.Close()
}

// InMemoryEventDeduplicator дедуплицирует события в памяти процесса
type InMemoryEventDeduplicator struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewInMemoryEventDeduplicator создает дедупликатор в памяти
func NewInMemoryEventDeduplicator(ttl time.Duration) *InMemoryEventDeduplicator {
	if ttl <= 0 {
		ttl = DefaultEventTTL
	}
	return &InMemoryEventDeduplicator{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// MarkProcessed отмечает событие; просроченные отметки удаляются
func (d *InMemoryEventDeduplicator) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, expires := range d.seen {
		if now.After(expires) {
			delete(d.seen, id)
		}
	}

	if _, ok := d.seen[eventID]; ok {
		return false, nil
	}
	d.seen[eventID] = now.Add(d.ttl)
	return true, nil
}

// Forget удаляет отметку события
func (d *InMemoryEventDeduplicator) Forget(_ context.Context, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.seen, eventID)
	return nil
}
