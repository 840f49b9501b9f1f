package lulu

import "encoding/json"

// PrintJobRequest тело запроса POST /print-jobs/
type PrintJobRequest struct {
	ContactEmail    string          `json:"contact_email"`
	ExternalID      string          `json:"external_id"`
	LineItems       []LineItem      `json:"line_items"`
	ProductionDelay int             `json:"production_delay"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	ShippingLevel   string          `json:"shipping_level"`
}

// LineItem позиция задания печати
type LineItem struct {
	ExternalID             string                 `json:"external_id"`
	PrintableNormalization PrintableNormalization `json:"printable_normalization"`
	Quantity               int                    `json:"quantity"`
	Title                  string                 `json:"title"`
}

// PrintableNormalization ссылки на файлы книги и пакет печати
type PrintableNormalization struct {
	Cover        SourceFile `json:"cover"`
	Interior     SourceFile `json:"interior"`
	PodPackageID string     `json:"pod_package_id"`
}

// SourceFile файл, который Lulu скачивает по ссылке
type SourceFile struct {
	SourceURL string `json:"source_url"`
}

// ShippingAddress адрес доставки в формате Lulu
type ShippingAddress struct {
	City        string `json:"city"`
	CountryCode string `json:"country_code"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Postcode    string `json:"postcode"`
	StateCode   string `json:"state_code"`
	Street1     string `json:"street1"`
	Street2     string `json:"street2"`
}

// PrintJob ответ Lulu на создание задания
type PrintJob struct {
	ID     JobID          `json:"id"`
	Status PrintJobStatus `json:"status"`
}

// PrintJobStatus статус задания печати
type PrintJobStatus struct {
	Name string `json:"name"`
}

// JobID идентификатор задания; Lulu возвращает число, в логах и заказах он хранится строкой
type JobID string

// UnmarshalJSON принимает как число, так и строку
func (id *JobID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = JobID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*id = JobID(s)
	return nil
}

// String возвращает идентификатор строкой
func (id JobID) String() string {
	return string(id)
}

// LineItemExternalID идентификатор первой позиции заказа
func LineItemExternalID(orderID string) string {
	return orderID + "-item-1"
}
