// Package fulfillment маршрутизирует оплаченные заказы: цифровые ставятся в очередь
// на доставку по email, физические отправляются в печать.
package fulfillment

import (
	"context"
	"time"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/internal/integration/lulu"
	"github.com/Dhoini/personalized-gospels/internal/metrics"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

// BookTitle название книги в задании печати
const BookTitle = "Called by Name - Personalized Gospels"

// PrintProvider сервис печати по требованию
type PrintProvider interface {
	Name() string
	CreatePrintJob(ctx context.Context, job lulu.PrintJobRequest) (lulu.PrintJob, error)
}

var podPackages = map[domain.ProductFormat]string{
	domain.FormatSoftcover: "0600X0900BWSTDPB060UW444MNG",
	domain.FormatHardcover: "0600X0900BWSTDCW060UW444MXX",
	// отдельного кожаного пакета нет, печатается как твердый переплет
	domain.FormatLeather: "0600X0900BWSTDCW060UW444MXX",
}

// PodPackageID возвращает пакет печати для физического формата
func PodPackageID(format domain.ProductFormat) (string, error) {
	id, ok := podPackages[format]
	if !ok {
		return "", &domain.UnsupportedFormatError{Format: format}
	}
	return id, nil
}

// Router маршрутизатор исполнения заказов. Не хранит изменяемого состояния.
type Router struct {
	printer      PrintProvider
	linker       *DocumentLinker
	contactEmail string
	metrics      metrics.StoreMetrics
	log          *logger.Logger
}

// NewRouter создает новый маршрутизатор
func NewRouter(printer PrintProvider, linker *DocumentLinker, contactEmail string, m metrics.StoreMetrics, log *logger.Logger) *Router {
	return &Router{
		printer:      printer,
		linker:       linker,
		contactEmail: contactEmail,
		metrics:      m,
		log:          log,
	}
}

// Route исполняет один запрос.
// Цифровой заказ не вызывает провайдера печати. Физический заказ без адреса
// отклоняется до любого сетевого вызова.
func (r *Router) Route(ctx context.Context, req domain.FulfillmentRequest) (domain.FulfillmentOutcome, error) {
	if !req.Format.Valid() {
		return domain.FulfillmentOutcome{}, &domain.UnsupportedFormatError{Format: req.Format}
	}
	if err := req.Validate(); err != nil {
		return domain.FulfillmentOutcome{}, err
	}

	if !req.Format.IsPhysical() {
		r.log.Infow("Digital order queued for email delivery", "orderID", req.OrderID)
		return domain.FulfillmentOutcome{
			OrderID: req.OrderID,
			Type:    domain.FulfillmentDigital,
			Action:  domain.ActionQueueEmailDelivery,
		}, nil
	}

	packageID, err := PodPackageID(req.Format)
	if err != nil {
		return domain.FulfillmentOutcome{}, err
	}

	job := BuildPrintJob(req, packageID, r.linker, r.contactEmail)

	start := time.Now()
	printJob, err := r.printer.CreatePrintJob(ctx, job)
	result := "success"
	if err != nil {
		result = "failed"
	}
	r.metrics.ObserveProviderLatency(r.printer.Name(), result, time.Since(start))
	if err != nil {
		return domain.FulfillmentOutcome{}, err
	}

	printJobID := printJob.ID.String()
	if printJobID == "" {
		printJobID = domain.PrintJobIDUnknown
	}

	return domain.FulfillmentOutcome{
		OrderID:        req.OrderID,
		Type:           domain.FulfillmentPhysical,
		Action:         domain.ActionSubmitPrintJob,
		PrintJobID:     printJobID,
		PrintJobStatus: printJob.Status.Name,
	}, nil
}

// BuildPrintJob собирает задание печати из запроса с адресом
func BuildPrintJob(req domain.FulfillmentRequest, packageID string, linker *DocumentLinker, contactEmail string) lulu.PrintJobRequest {
	addr := req.ShippingAddress
	country := addr.Country
	if country == "" {
		country = "US"
	}

	return lulu.PrintJobRequest{
		ContactEmail: contactEmail,
		ExternalID:   req.OrderID,
		LineItems: []lulu.LineItem{{
			ExternalID: lulu.LineItemExternalID(req.OrderID),
			PrintableNormalization: lulu.PrintableNormalization{
				Cover:        lulu.SourceFile{SourceURL: linker.CoverURL(req.Personalization)},
				Interior:     lulu.SourceFile{SourceURL: linker.InteriorURL(req.Personalization)},
				PodPackageID: packageID,
			},
			Quantity: 1,
			Title:    BookTitle,
		}},
		ProductionDelay: lulu.ProductionDelayMinutes,
		ShippingAddress: lulu.ShippingAddress{
			City:        addr.City,
			CountryCode: country,
			Name:        addr.Name,
			PhoneNumber: addr.Phone,
			Postcode:    addr.PostalCode,
			StateCode:   addr.State,
			Street1:     addr.Street1,
			Street2:     addr.Street2,
		},
		ShippingLevel: lulu.ShippingLevelMail,
	}
}
