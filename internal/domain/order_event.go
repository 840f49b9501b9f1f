package domain

import "time"

// OrderEventType тип события заказа, публикуемого во внешние системы
type OrderEventType string

const (
	OrderEventPaid                OrderEventType = "order.paid"
	OrderEventFulfillmentDigital  OrderEventType = "order.fulfillment.digital"
	OrderEventFulfillmentPhysical OrderEventType = "order.fulfillment.physical"
	OrderEventFulfillmentFailed   OrderEventType = "order.fulfillment.failed"
)

// OrderEvent событие заказа.
// Событие order.fulfillment.digital служит сигналом внешнему сервису рассылки.
type OrderEvent struct {
	Type            OrderEventType  `json:"type"`
	OrderID         string          `json:"orderId"`
	CustomerEmail   string          `json:"customerEmail,omitempty"`
	CustomerName    string          `json:"customerName,omitempty"`
	Personalization Personalization `json:"personalization"`
	Format          ProductFormat   `json:"format"`
	PrintJobID      string          `json:"printJobId,omitempty"`
	PrintJobStatus  string          `json:"printJobStatus,omitempty"`
	Error           string          `json:"error,omitempty"`
	OccurredAt      time.Time       `json:"occurredAt"`
}

// NewOrderEvent создает событие из запроса на исполнение
func NewOrderEvent(t OrderEventType, req FulfillmentRequest, now time.Time) OrderEvent {
	return OrderEvent{
		Type:            t,
		OrderID:         req.OrderID,
		CustomerEmail:   req.CustomerEmail,
		CustomerName:    req.CustomerName,
		Personalization: req.Personalization,
		Format:          req.Format,
		OccurredAt:      now.UTC(),
	}
}
