package fulfillment

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/internal/integration/lulu"
	"github.com/Dhoini/personalized-gospels/internal/metrics"
	"github.com/Dhoini/personalized-gospels/internal/repository"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

type fakePrinter struct {
	mu    sync.Mutex
	calls []lulu.PrintJobRequest
	job   lulu.PrintJob
	err   error
}

func (f *fakePrinter) Name() string { return "fake" }

func (f *fakePrinter) CreatePrintJob(_ context.Context, job lulu.PrintJobRequest) (lulu.PrintJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, job)
	return f.job, f.err
}

func (f *fakePrinter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, e domain.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func newTestRouter(printer PrintProvider) *Router {
	m := metrics.NewStoreMetrics(prometheus.NewRegistry(), logger.NewNop())
	return NewRouter(printer, NewDocumentLinker("https://books.example.com/"), "orders@calledbyname.com", m, logger.NewNop())
}

func personalization() domain.Personalization {
	return domain.Personalization{Name: "Maria", Gender: domain.GenderFemale, BibleVersion: domain.BibleVersionWEB}
}

func address() *domain.ShippingAddress {
	return &domain.ShippingAddress{
		Name:       "Maria Lopez",
		Street1:    "1 Main St",
		City:       "Austin",
		State:      "TX",
		PostalCode: "78701",
		Phone:      "+15125550100",
	}
}

func physicalRequest(format domain.ProductFormat) domain.FulfillmentRequest {
	return domain.FulfillmentRequest{
		OrderID:         "WN-ABC123",
		CustomerEmail:   "maria@example.com",
		CustomerName:    "Maria",
		Personalization: personalization(),
		Format:          format,
		ShippingAddress: address(),
	}
}

func TestRoute_DigitalNeverCallsPrinter(t *testing.T) {
	printer := &fakePrinter{}
	router := newTestRouter(printer)

	outcome, err := router.Route(context.Background(), domain.FulfillmentRequest{
		OrderID:         "WN-ABC123",
		CustomerEmail:   "maria@example.com",
		Personalization: personalization(),
		Format:          domain.FormatDigital,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FulfillmentDigital, outcome.Type)
	assert.Equal(t, domain.ActionQueueEmailDelivery, outcome.Action)
	assert.Equal(t, 0, printer.callCount())
}

func TestRoute_PhysicalWithoutAddress(t *testing.T) {
	for _, format := range []domain.ProductFormat{domain.FormatSoftcover, domain.FormatHardcover, domain.FormatLeather} {
		printer := &fakePrinter{}
		router := newTestRouter(printer)

		req := physicalRequest(format)
		req.ShippingAddress = nil

		_, err := router.Route(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrValidation, format)
		assert.Equal(t, 0, printer.callCount(), format)
	}
}

func TestRoute_IncompleteAddress(t *testing.T) {
	printer := &fakePrinter{}
	router := newTestRouter(printer)

	req := physicalRequest(domain.FormatHardcover)
	req.ShippingAddress.PostalCode = "  "

	_, err := router.Route(context.Background(), req)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Errors.Fields(), "shippingAddress.postalCode")
	assert.Equal(t, 0, printer.callCount())
}

func TestRoute_UnsupportedFormat(t *testing.T) {
	printer := &fakePrinter{}
	router := newTestRouter(printer)

	_, err := router.Route(context.Background(), physicalRequest("paperback"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Equal(t, 0, printer.callCount())
}

func TestRoute_SoftcoverSubmitsPrintJob(t *testing.T) {
	printer := &fakePrinter{job: lulu.PrintJob{ID: "555", Status: lulu.PrintJobStatus{Name: "CREATED"}}}
	router := newTestRouter(printer)

	outcome, err := router.Route(context.Background(), physicalRequest(domain.FormatSoftcover))
	require.NoError(t, err)
	assert.Equal(t, domain.FulfillmentPhysical, outcome.Type)
	assert.Equal(t, domain.ActionSubmitPrintJob, outcome.Action)
	assert.Equal(t, "555", outcome.PrintJobID)
	assert.Equal(t, "CREATED", outcome.PrintJobStatus)

	require.Equal(t, 1, printer.callCount())
	job := printer.calls[0]
	assert.Equal(t, "MAIL", job.ShippingLevel)
	assert.Equal(t, "WN-ABC123", job.ExternalID)
	assert.Equal(t, "orders@calledbyname.com", job.ContactEmail)
	assert.Equal(t, 120, job.ProductionDelay)
	assert.Equal(t, "US", job.ShippingAddress.CountryCode)
	assert.Equal(t, "78701", job.ShippingAddress.Postcode)
	assert.Equal(t, "TX", job.ShippingAddress.StateCode)

	require.Len(t, job.LineItems, 1)
	item := job.LineItems[0]
	assert.Equal(t, "WN-ABC123-item-1", item.ExternalID)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, BookTitle, item.Title)
	assert.Equal(t, "0600X0900BWSTDPB060UW444MNG", item.PrintableNormalization.PodPackageID)
	assert.True(t, strings.HasPrefix(item.PrintableNormalization.Cover.SourceURL, "https://books.example.com/api/v1/books/cover?"))
	assert.True(t, strings.HasPrefix(item.PrintableNormalization.Interior.SourceURL, "https://books.example.com/api/v1/books/interior?"))
}

func TestRoute_LeatherUsesHardcoverPackage(t *testing.T) {
	printer := &fakePrinter{job: lulu.PrintJob{ID: "1"}}
	router := newTestRouter(printer)

	_, err := router.Route(context.Background(), physicalRequest(domain.FormatLeather))
	require.NoError(t, err)
	hardcover, _ := PodPackageID(domain.FormatHardcover)
	assert.Equal(t, hardcover, printer.calls[0].LineItems[0].PrintableNormalization.PodPackageID)
}

func TestRoute_AcceptedJobWithoutID(t *testing.T) {
	printer := &fakePrinter{}
	router := newTestRouter(printer)

	outcome, err := router.Route(context.Background(), physicalRequest(domain.FormatHardcover))
	require.NoError(t, err)
	assert.Equal(t, domain.PrintJobIDUnknown, outcome.PrintJobID)
	assert.Equal(t, 1, printer.callCount())
}

func TestRoute_ProviderErrorPropagates(t *testing.T) {
	printer := &fakePrinter{err: &domain.FulfillmentError{Provider: "fake", OrderID: "WN-ABC123", StatusCode: 400, Body: "bad"}}
	router := newTestRouter(printer)

	_, err := router.Route(context.Background(), physicalRequest(domain.FormatHardcover))
	assert.ErrorIs(t, err, domain.ErrFulfillment)
	assert.Equal(t, 1, printer.callCount())
}

func TestDocumentLinker_EscapesName(t *testing.T) {
	linker := NewDocumentLinker("https://books.example.com")
	p := domain.Personalization{Name: "Anne-Marie & Co?", Gender: domain.GenderNeutral, BibleVersion: domain.BibleVersionKJV}

	raw := linker.InteriorURL(p)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/books/interior", u.Path)
	assert.Equal(t, "Anne-Marie & Co?", u.Query().Get("name"))
	assert.Equal(t, "neutral", u.Query().Get("gender"))
	assert.Equal(t, "kjv", u.Query().Get("version"))
	assert.NotContains(t, raw, " ")
}

func TestWorkerPool_ProcessesAndDrains(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	pool := NewWorkerPool(2, 10, func(_ context.Context, req domain.FulfillmentRequest) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, req.OrderID)
		return nil
	}, logger.NewNop())
	pool.Start(context.Background())

	for _, id := range []string{"WN-1", "WN-2", "WN-3"} {
		require.NoError(t, pool.Enqueue(context.Background(), domain.FulfillmentRequest{OrderID: id}))
	}
	pool.Stop()

	assert.ElementsMatch(t, []string{"WN-1", "WN-2", "WN-3"}, seen)
	assert.ErrorIs(t, pool.Enqueue(context.Background(), domain.FulfillmentRequest{OrderID: "WN-4"}), ErrQueueClosed)
	pool.Stop()
}

func TestWorkerPool_RecoversFromPanic(t *testing.T) {
	done := make(chan struct{}, 2)
	pool := NewWorkerPool(1, 2, func(_ context.Context, req domain.FulfillmentRequest) error {
		defer func() { done <- struct{}{} }()
		if req.OrderID == "WN-PANIC" {
			panic("boom")
		}
		return nil
	}, logger.NewNop())
	pool.Start(context.Background())

	require.NoError(t, pool.Enqueue(context.Background(), domain.FulfillmentRequest{OrderID: "WN-PANIC"}))
	require.NoError(t, pool.Enqueue(context.Background(), domain.FulfillmentRequest{OrderID: "WN-OK"}))
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("worker stopped after panic")
		}
	}
	pool.Stop()
}

func TestWorkerPool_EnqueueRespectsContext(t *testing.T) {
	pool := NewWorkerPool(1, 0, func(context.Context, domain.FulfillmentRequest) error { return nil }, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pool.Enqueue(ctx, domain.FulfillmentRequest{OrderID: "WN-1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func newDispatcher(t *testing.T, printer PrintProvider) (*Dispatcher, *repository.InMemoryOrderRepository, *recordingPublisher) {
	t.Helper()
	m := metrics.NewStoreMetrics(prometheus.NewRegistry(), logger.NewNop())
	router := NewRouter(printer, NewDocumentLinker("https://books.example.com"), "orders@calledbyname.com", m, logger.NewNop())
	orders := repository.NewInMemoryOrderRepository(logger.NewNop())
	events := &recordingPublisher{}
	return NewDispatcher(router, orders, events, m, logger.NewNop()), orders, events
}

func TestDispatcher_PhysicalStoresPrintJob(t *testing.T) {
	printer := &fakePrinter{job: lulu.PrintJob{ID: "777", Status: lulu.PrintJobStatus{Name: "CREATED"}}}
	d, orders, events := newDispatcher(t, printer)

	ctx := context.Background()
	require.NoError(t, orders.Create(ctx, domain.Order{ID: "WN-ABC123", Status: domain.OrderStatusProcessing, Format: domain.FormatSoftcover}))

	require.NoError(t, d.Handle(ctx, physicalRequest(domain.FormatSoftcover)))

	order, err := orders.GetByID(ctx, "WN-ABC123")
	require.NoError(t, err)
	assert.Equal(t, "777", order.PrintJobID)
	assert.Equal(t, domain.OrderStatusProcessing, order.Status)

	require.Len(t, events.events, 1)
	assert.Equal(t, domain.OrderEventFulfillmentPhysical, events.events[0].Type)
	assert.Equal(t, "777", events.events[0].PrintJobID)
}

func TestDispatcher_DigitalPublishesDeliveryEvent(t *testing.T) {
	printer := &fakePrinter{}
	d, _, events := newDispatcher(t, printer)

	err := d.Handle(context.Background(), domain.FulfillmentRequest{
		OrderID:         "WN-DIGI01",
		CustomerEmail:   "maria@example.com",
		Personalization: personalization(),
		Format:          domain.FormatDigital,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, printer.callCount())
	require.Len(t, events.events, 1)
	assert.Equal(t, domain.OrderEventFulfillmentDigital, events.events[0].Type)
	assert.Equal(t, "maria@example.com", events.events[0].CustomerEmail)
}

func TestDispatcher_FailurePublishesFailedEvent(t *testing.T) {
	printer := &fakePrinter{err: &domain.AuthenticationError{Provider: "fake", OrderID: "WN-ABC123", OriginalErr: errors.New("denied")}}
	d, _, events := newDispatcher(t, printer)

	err := d.Handle(context.Background(), physicalRequest(domain.FormatHardcover))
	assert.ErrorIs(t, err, domain.ErrAuthentication)
	require.Len(t, events.events, 1)
	assert.Equal(t, domain.OrderEventFulfillmentFailed, events.events[0].Type)
	assert.Contains(t, events.events[0].Error, "denied")
	assert.Equal(t, 1, printer.callCount())
}
