package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

// StoreMetrics интерфейс для метрик магазина
type StoreMetrics interface {
	IncCheckoutCreated(format string)
	IncSampleGenerated(version string)
	IncWebhookEvent(eventType, status string)
	IncFulfillment(fulfillmentType, result string)
	IncOrderStatus(status string)
	ObserveProviderLatency(provider, result string, d time.Duration)
}

type storeMetrics struct {
	log              *logger.Logger
	checkoutsCreated *prometheus.CounterVec
	samplesGenerated *prometheus.CounterVec
	webhookEvents    *prometheus.CounterVec
	fulfillments     *prometheus.CounterVec
	orderStatus      *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
}

// NewStoreMetrics создает новые метрики магазина
func NewStoreMetrics(registry prometheus.Registerer, log *logger.Logger) StoreMetrics {
	checkoutsCreated := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkouts_created_total",
			Help: "The total number of created checkout sessions",
		},
		[]string{"format"},
	)

	samplesGenerated := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "samples_generated_total",
			Help: "The total number of generated sample PDFs",
		},
		[]string{"version"},
	)

	webhookEvents := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "The total number of verified webhook events by type and handling status",
		},
		[]string{"type", "status"},
	)

	fulfillments := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillments_total",
			Help: "The total number of fulfillment attempts by type and result",
		},
		[]string{"type", "result"},
	)

	orderStatus := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_transitions_total",
			Help: "The total number of order status transitions by target status",
		},
		[]string{"status"},
	)

	providerLatency := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "print_provider_request_duration_seconds",
			Help:    "Print provider submission latency",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		},
		[]string{"provider", "result"},
	)

	return &storeMetrics{
		log:              log,
		checkoutsCreated: checkoutsCreated,
		samplesGenerated: samplesGenerated,
		webhookEvents:    webhookEvents,
		fulfillments:     fulfillments,
		orderStatus:      orderStatus,
		providerLatency:  providerLatency,
	}
}

// IncCheckoutCreated увеличивает счетчик созданных checkout-сессий
func (m *storeMetrics) IncCheckoutCreated(format string) {
	m.checkoutsCreated.WithLabelValues(format).Inc()
}

// IncSampleGenerated увеличивает счетчик образцов
func (m *storeMetrics) IncSampleGenerated(version string) {
	m.samplesGenerated.WithLabelValues(version).Inc()
}

// IncWebhookEvent увеличивает счетчик событий
func (m *storeMetrics) IncWebhookEvent(eventType, status string) {
	m.webhookEvents.WithLabelValues(eventType, status).Inc()
}

// IncFulfillment увеличивает счетчик выполнения заказов
func (m *storeMetrics) IncFulfillment(fulfillmentType, result string) {
	m.fulfillments.WithLabelValues(fulfillmentType, result).Inc()
}

// IncOrderStatus увеличивает счетчик переходов статуса
func (m *storeMetrics) IncOrderStatus(status string) {
	m.orderStatus.WithLabelValues(status).Inc()
}

// ObserveProviderLatency записывает длительность вызова провайдера печати
func (m *storeMetrics) ObserveProviderLatency(provider, result string, d time.Duration) {
	m.providerLatency.WithLabelValues(provider, result).Observe(d.Seconds())
}
