package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

func testOrder() domain.Order {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.Order{
		ID:            domain.OrderID("cs_test_abc123"),
		SessionID:     "cs_test_abc123",
		CustomerName:  "Maria",
		CustomerEmail: "maria@example.com",
		Personalization: domain.Personalization{
			Name:         "Maria",
			Gender:       domain.GenderFemale,
			BibleVersion: domain.BibleVersionWEB,
		},
		Format:     domain.FormatSoftcover,
		PriceCents: 3999,
		Status:     domain.OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestInMemoryOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryOrderRepository(logger.NewNop())
	order := testOrder()

	require.NoError(t, repo.Create(ctx, order))
	assert.ErrorIs(t, repo.Create(ctx, order), domain.ErrDuplicate)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order, got)

	require.NoError(t, got.TransitionTo(domain.OrderStatusProcessing, got.UpdatedAt.Add(time.Minute)))
	got.PrintJobID = "12345"
	require.NoError(t, repo.Update(ctx, got))

	updated, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)
	assert.Equal(t, "12345", updated.PrintJobID)

	_, err = repo.GetByID(ctx, "WN-MISSING")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, domain.Order{ID: "WN-MISSING"}), domain.ErrNotFound)
}

func TestRedisEventDeduplicator(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	dedup, err := NewRedisEventDeduplicator(ctx, &redis.Options{Addr: mr.Addr()}, time.Hour, logger.NewNop())
	require.NoError(t, err)
	defer dedup.Close()

	first, err := dedup.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := dedup.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, again)
	assert.True(t, mr.Exists(webhookEventKeyPrefix+"evt_1"))

	mr.FastForward(2 * time.Hour)
	expired, err := dedup.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, expired)

	require.NoError(t, dedup.Forget(ctx, "evt_1"))
	afterForget, err := dedup.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, afterForget)
}

func TestRedisEventDeduplicator_Unreachable(t *testing.T) {
	_, err := NewRedisEventDeduplicator(context.Background(), &redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}, time.Hour, logger.NewNop())
	assert.Error(t, err)
}

func TestInMemoryEventDeduplicator(t *testing.T) {
	ctx := context.Background()
	dedup := NewInMemoryEventDeduplicator(time.Hour)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	dedup.now = func() time.Time { return now }

	first, _ := dedup.MarkProcessed(ctx, "evt_1")
	second, _ := dedup.MarkProcessed(ctx, "evt_1")
	other, _ := dedup.MarkProcessed(ctx, "evt_2")
	assert.True(t, first)
	assert.False(t, second)
	assert.True(t, other)

	now = now.Add(2 * time.Hour)
	expired, _ := dedup.MarkProcessed(ctx, "evt_1")
	assert.True(t, expired)

	require.NoError(t, dedup.Forget(ctx, "evt_2"))
	forgotten, _ := dedup.MarkProcessed(ctx, "evt_2")
	assert.True(t, forgotten)
}

func TestInMemoryWebhookEventLog(t *testing.T) {
	ctx := context.Background()
	l := NewInMemoryWebhookEventLog()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, l.Record(ctx, domain.WebhookEvent{ID: "evt_2", Type: domain.WebhookEventCheckoutCompleted, Status: domain.WebhookEventStatusDuplicate, OrderID: "WN-ABC123", ReceivedAt: base.Add(time.Minute)}))
	require.NoError(t, l.Record(ctx, domain.WebhookEvent{ID: "evt_1", Type: domain.WebhookEventCheckoutCompleted, Status: domain.WebhookEventStatusEnqueued, OrderID: "WN-ABC123", ReceivedAt: base}))
	require.NoError(t, l.Record(ctx, domain.WebhookEvent{ID: "evt_3", Type: domain.WebhookEventPaymentSucceeded, Status: domain.WebhookEventStatusLogged, ReceivedAt: base}))

	events, err := l.ListByOrder(ctx, "WN-ABC123")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "evt_1", events[0].ID)
	assert.Equal(t, domain.WebhookEventStatusDuplicate, events[1].Status)

	events, err = l.ListByOrder(ctx, "WN-NONE00")
	require.NoError(t, err)
	assert.Empty(t, events)
}
