package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

const uniqueViolation = "23505"

// PostgresOrderRepository реализация репозитория заказов через PostgreSQL
type PostgresOrderRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresOrderRepository создает новый репозиторий заказов через PostgreSQL
func NewPostgresOrderRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db:  db,
		log: log,
	}
}

// Create создает новый заказ
func (r *PostgresOrderRepository) Create(ctx context.Context, order domain.Order) error {
	query := `
		INSERT INTO orders (id, session_id, customer_name, customer_email, display_name, gender,
			bible_version, format, price_cents, status, print_job_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		order.ID,
		order.SessionID,
		order.CustomerName,
		order.CustomerEmail,
		order.Personalization.Name,
		string(order.Personalization.Gender),
		string(order.Personalization.BibleVersion),
		string(order.Format),
		order.PriceCents,
		string(order.Status),
		order.PrintJobID,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicate
		}
		r.log.Errorw("Failed to insert order", "orderID", order.ID, "error", err)
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.log.Debugw("Order created", "orderID", order.ID)
	return nil
}

// GetByID возвращает заказ по ID
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (domain.Order, error) {
	query := `
		SELECT id, session_id, customer_name, customer_email, display_name, gender,
			bible_version, format, price_cents, status, print_job_id, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var (
		order                         domain.Order
		gender, version, format, stat string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.SessionID,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.Personalization.Name,
		&gender,
		&version,
		&format,
		&order.PriceCents,
		&stat,
		&order.PrintJobID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.NewNotFoundError("order", id)
		}
		return domain.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	order.Personalization.Gender = domain.Gender(gender)
	order.Personalization.BibleVersion = domain.BibleVersion(version)
	order.Format = domain.ProductFormat(format)
	order.Status = domain.OrderStatus(stat)
	return order, nil
}

// Update обновляет статус заказа и ID задания печати
func (r *PostgresOrderRepository) Update(ctx context.Context, order domain.Order) error {
	query := `
		UPDATE orders
		SET status = $2, print_job_id = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, order.ID, string(order.Status), order.PrintJobID, order.UpdatedAt)
	if err != nil {
		r.log.Errorw("Failed to update order", "orderID", order.ID, "error", err)
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("order", order.ID)
	}
	return nil
}
