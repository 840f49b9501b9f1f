package fulfillment

import (
	"context"
	"errors"
	"time"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/internal/metrics"
	"github.com/Dhoini/personalized-gospels/internal/repository"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

// EventPublisher публикует события заказов
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
}

// Dispatcher обрабатывает задачи очереди: вызывает маршрутизатор, обновляет заказ,
// пишет метрики и публикует событие результата.
type Dispatcher struct {
	router  *Router
	orders  repository.OrderRepository
	events  EventPublisher
	metrics metrics.StoreMetrics
	log     *logger.Logger
	now     func() time.Time
}

// NewDispatcher создает новый обработчик задач исполнения
func NewDispatcher(router *Router, orders repository.OrderRepository, events EventPublisher, m metrics.StoreMetrics, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		router:  router,
		orders:  orders,
		events:  events,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// Handle исполняет один запрос. Ошибка исполнения логируется и публикуется,
// задание печати повторно не отправляется.
func (d *Dispatcher) Handle(ctx context.Context, req domain.FulfillmentRequest) error {
	outcome, err := d.router.Route(ctx, req)
	if err != nil {
		d.fail(ctx, req, err)
		return err
	}

	d.metrics.IncFulfillment(string(outcome.Type), "success")

	eventType := domain.OrderEventFulfillmentDigital
	if outcome.Type == domain.FulfillmentPhysical {
		eventType = domain.OrderEventFulfillmentPhysical
		d.recordPrintJob(ctx, outcome)
	}

	event := domain.NewOrderEvent(eventType, req, d.now())
	event.PrintJobID = outcome.PrintJobID
	event.PrintJobStatus = outcome.PrintJobStatus
	d.publish(ctx, event)

	d.log.Infow("Order fulfilled",
		"orderID", req.OrderID,
		"type", outcome.Type,
		"action", outcome.Action,
		"printJobID", outcome.PrintJobID,
	)
	return nil
}

func (d *Dispatcher) fail(ctx context.Context, req domain.FulfillmentRequest, err error) {
	fields := []any{"orderID", req.OrderID, "format", req.Format, "error", err}

	var fe *domain.FulfillmentError
	var ae *domain.AuthenticationError
	switch {
	case errors.As(err, &fe):
		fields = append(fields, "provider", fe.Provider, "status", fe.StatusCode, "body", fe.Body)
	case errors.As(err, &ae):
		fields = append(fields, "provider", ae.Provider)
	}
	d.log.Errorw("Order fulfillment failed", fields...)

	fulfillmentType := domain.FulfillmentDigital
	if req.Format.IsPhysical() {
		fulfillmentType = domain.FulfillmentPhysical
	}
	d.metrics.IncFulfillment(string(fulfillmentType), "failed")

	event := domain.NewOrderEvent(domain.OrderEventFulfillmentFailed, req, d.now())
	event.Error = err.Error()
	d.publish(ctx, event)
}

func (d *Dispatcher) recordPrintJob(ctx context.Context, outcome domain.FulfillmentOutcome) {
	order, err := d.orders.GetByID(ctx, outcome.OrderID)
	if err != nil {
		d.log.Warnw("Order not found for print job", "orderID", outcome.OrderID, "printJobID", outcome.PrintJobID, "error", err)
		return
	}

	order.PrintJobID = outcome.PrintJobID
	order.UpdatedAt = d.now().UTC()
	if err := d.orders.Update(ctx, order); err != nil {
		d.log.Errorw("Failed to store print job id", "orderID", order.ID, "printJobID", outcome.PrintJobID, "error", err)
	}
}

func (d *Dispatcher) publish(ctx context.Context, event domain.OrderEvent) {
	if err := d.events.PublishOrderEvent(ctx, event); err != nil {
		d.log.Errorw("Failed to publish order event", "orderID", event.OrderID, "type", event.Type, "error", err)
	}
}

// LogPublisher пишет события в лог; используется без брокеров
type LogPublisher struct {
	Log *logger.Logger
}

// PublishOrderEvent пишет событие в лог
func (p LogPublisher) PublishOrderEvent(_ context.Context, event domain.OrderEvent) error {
	p.Log.Infow("Order event", "type", event.Type, "orderID", event.OrderID, "printJobID", event.PrintJobID)
	return nil
}
