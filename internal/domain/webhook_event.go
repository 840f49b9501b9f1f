package domain

import "time"

// WebhookEventType тип события Stripe
type WebhookEventType string

const (
	WebhookEventCheckoutCompleted WebhookEventType = "checkout.session.completed"
	WebhookEventPaymentSucceeded  WebhookEventType = "payment_intent.succeeded"
	WebhookEventPaymentFailed     WebhookEventType = "payment_intent.payment_failed"
)

// WebhookEventStatus результат обработки события
type WebhookEventStatus string

const (
	WebhookEventStatusEnqueued  WebhookEventStatus = "enqueued"
	WebhookEventStatusLogged    WebhookEventStatus = "logged"
	WebhookEventStatusDuplicate WebhookEventStatus = "duplicate"
	WebhookEventStatusIgnored   WebhookEventStatus = "ignored"
	WebhookEventStatusFailed    WebhookEventStatus = "failed"
)

// CheckoutMetadata четыре поля персонализации, сохраняемые в метаданных сессии
type CheckoutMetadata struct {
	CustomerName string        `json:"customerName"`
	Gender       Gender        `json:"gender"`
	Format       ProductFormat `json:"format"`
	BibleVersion BibleVersion  `json:"bibleVersion"`
}

const (
	MetadataCustomerName = "customerName"
	MetadataGender       = "gender"
	MetadataFormat       = "format"
	MetadataBibleVersion = "bibleVersion"
)

// Map возвращает метаданные в виде, пригодном для Stripe
func (m CheckoutMetadata) Map() map[string]string {
	return map[string]string{
		MetadataCustomerName: m.CustomerName,
		MetadataGender:       string(m.Gender),
		MetadataFormat:       string(m.Format),
		MetadataBibleVersion: string(m.BibleVersion),
	}
}

// MetadataFromMap читает метаданные сессии
func MetadataFromMap(md map[string]string) CheckoutMetadata {
	return CheckoutMetadata{
		CustomerName: md[MetadataCustomerName],
		Gender:       Gender(md[MetadataGender]),
		Format:       ProductFormat(md[MetadataFormat]),
		BibleVersion: BibleVersion(md[MetadataBibleVersion]),
	}
}

// CompletedCheckout данные завершенной checkout-сессии, извлеченные из события
type CompletedCheckout struct {
	EventID         string
	SessionID       string
	CustomerEmail   string
	CustomerName    string
	AmountTotal     int64
	Metadata        CheckoutMetadata
	ShippingAddress *ShippingAddress
}

// PaymentConfirmation ответ страницы подтверждения
type PaymentConfirmation struct {
	OrderID       string        `json:"orderId"`
	CustomerEmail string        `json:"customerEmail"`
	CustomerName  string        `json:"customerName"`
	Gender        Gender        `json:"gender"`
	Format        ProductFormat `json:"format"`
	BibleVersion  BibleVersion  `json:"bibleVersion"`
	AmountTotal   int64         `json:"amountTotal"`
	PaymentStatus string        `json:"paymentStatus"`
}

// WebhookEvent запись о полученном событии
type WebhookEvent struct {
	ID         string             `json:"id"`
	Type       WebhookEventType   `json:"type"`
	Status     WebhookEventStatus `json:"status"`
	OrderID    string             `json:"order_id,omitempty"`
	ReceivedAt time.Time          `json:"received_at"`
}
