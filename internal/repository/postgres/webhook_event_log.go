package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

type webhookEventRow struct {
	ID         string    `db:"id"`
	Type       string    `db:"type"`
	Status     string    `db:"status"`
	OrderID    string    `db:"order_id"`
	ReceivedAt time.Time `db:"received_at"`
}

// WebhookEventLog журнал webhook-событий в PostgreSQL
type WebhookEventLog struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewWebhookEventLog создает журнал поверх пула соединений
func NewWebhookEventLog(pool *pgxpool.Pool, log *logger.Logger) *WebhookEventLog {
	return NewWebhookEventLogDB(sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"), log)
}

// NewWebhookEventLogDB создает журнал поверх готового *sqlx.DB
func NewWebhookEventLogDB(db *sqlx.DB, log *logger.Logger) *WebhookEventLog {
	return &WebhookEventLog{db: db, log: log}
}

// Record сохраняет событие
func (l *WebhookEventLog) Record(ctx context.Context, event domain.WebhookEvent) error {
	query := `
		INSERT INTO webhook_events (id, type, status, order_id, received_at)
		VALUES (:id, :type, :status, :order_id, :received_at)
		ON CONFLICT DO NOTHING
	`

	row := webhookEventRow{
		ID:         event.ID,
		Type:       string(event.Type),
		Status:     string(event.Status),
		OrderID:    event.OrderID,
		ReceivedAt: event.ReceivedAt,
	}
	if _, err := l.db.NamedExecContext(ctx, query, row); err != nil {
		l.log.Errorw("Failed to record webhook event", "eventID", event.ID, "error", err)
		return fmt.Errorf("failed to record webhook event: %w", err)
	}
	return nil
}

// ListByOrder возвращает события заказа в порядке получения
func (l *WebhookEventLog) ListByOrder(ctx context.Context, orderID string) ([]domain.WebhookEvent, error) {
	query := `
		SELECT id, type, status, order_id, received_at
		FROM webhook_events
		WHERE order_id = $1
		ORDER BY received_at
	`

	var rows []webhookEventRow
	if err := l.db.SelectContext(ctx, &rows, query, orderID); err != nil {
		return nil, fmt.Errorf("failed to list webhook events: %w", err)
	}

	events := make([]domain.WebhookEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, domain.WebhookEvent{
			ID:         r.ID,
			Type:       domain.WebhookEventType(r.Type),
			Status:     domain.WebhookEventStatus(r.Status),
			OrderID:    r.OrderID,
			ReceivedAt: r.ReceivedAt,
		})
	}
	return events, nil
}

// Close закрывает обертку database/sql; пул соединений закрывается отдельно
func (l *WebhookEventLog) Close() error {
	return l.db.Close()
}
