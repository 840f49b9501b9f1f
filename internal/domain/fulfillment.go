package domain

import "strings"

// ShippingAddress адрес доставки физического заказа
type ShippingAddress struct {
	Name       string `json:"name"`
	Street1    string `json:"street1"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Validate проверяет обязательные поля адреса
func (a ShippingAddress) Validate() error {
	var errs ValidationErrors
	a.collect(&errs)
	if errs.HasErrors() {
		return errs
	}
	return nil
}

func (a ShippingAddress) collect(errs *ValidationErrors) {
	if strings.TrimSpace(a.Name) == "" {
		errs.Add("shippingAddress.name", "is required")
	}
	if strings.TrimSpace(a.Street1) == "" {
		errs.Add("shippingAddress.street1", "is required")
	}
	if strings.TrimSpace(a.City) == "" {
		errs.Add("shippingAddress.city", "is required")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		errs.Add("shippingAddress.postalCode", "is required")
	}
}

// FulfillmentRequest запрос на исполнение оплаченного заказа.
// ShippingAddress равен nil ровно тогда, когда формат digital.
type FulfillmentRequest struct {
	OrderID         string           `json:"orderId"`
	CustomerEmail   string           `json:"customerEmail"`
	CustomerName    string           `json:"customerName"`
	Personalization Personalization  `json:"personalization"`
	Format          ProductFormat    `json:"format"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
}

// NewFulfillmentRequest строит запрос из заказа. Адрес отбрасывается для digital.
func NewFulfillmentRequest(order Order, address *ShippingAddress) FulfillmentRequest {
	req := FulfillmentRequest{
		OrderID:         order.ID,
		CustomerEmail:   order.CustomerEmail,
		CustomerName:    order.CustomerName,
		Personalization: order.Personalization,
		Format:          order.Format,
	}
	if order.Format.IsPhysical() && address != nil {
		addr := *address
		req.ShippingAddress = &addr
	}
	return req
}

// Validate проверяет поля, без которых маршрутизация невозможна
func (r FulfillmentRequest) Validate() error {
	var errs ValidationErrors
	if r.OrderID == "" {
		errs.Add("orderId", "is required")
	}
	if r.CustomerEmail == "" {
		errs.Add("customerEmail", "is required")
	}
	if r.Format == "" {
		errs.Add("format", "is required")
	}
	if r.Format.IsPhysical() && r.ShippingAddress == nil {
		errs.Add("shippingAddress", "is required for physical formats")
	}
	if r.Format == FormatDigital && r.ShippingAddress != nil {
		errs.Add("shippingAddress", "must be empty for digital format")
	}
	if r.Format.IsPhysical() && r.ShippingAddress != nil {
		r.ShippingAddress.collect(&errs)
	}
	if errs.HasErrors() {
		return &ValidationError{OrderID: r.OrderID, Errors: errs}
	}
	return nil
}

// FulfillmentType тип исполнения
type FulfillmentType string

const (
	FulfillmentDigital  FulfillmentType = "digital"
	FulfillmentPhysical FulfillmentType = "physical"
)

// FulfillmentAction действие, выполненное маршрутизатором
type FulfillmentAction string

const (
	ActionQueueEmailDelivery FulfillmentAction = "queue-for-email-delivery"
	ActionSubmitPrintJob     FulfillmentAction = "submit-print-job"
)

// PrintJobIDUnknown задание принято провайдером, но его ID не удалось прочитать
const PrintJobIDUnknown = "unknown"

// FulfillmentOutcome результат маршрутизации заказа
type FulfillmentOutcome struct {
	OrderID        string            `json:"orderId"`
	Type           FulfillmentType   `json:"type"`
	Action         FulfillmentAction `json:"action"`
	PrintJobID     string            `json:"printJobId,omitempty"`
	PrintJobStatus string            `json:"printJobStatus,omitempty"`
}
