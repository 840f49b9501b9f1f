package metrics

import (
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

// DepthFunc возвращает текущее число задач в очереди
type DepthFunc func() int

// QueueMetrics интерфейс для метрик очереди выполнения заказов
type QueueMetrics interface {
	Record()
	StartRecording(interval time.Duration)
	Stop()
}

type queueMetrics struct {
	log        *logger.Logger
	depth      DepthFunc
	queueDepth prometheus.Gauge
	goroutines prometheus.Gauge
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// NewQueueMetrics создает метрики очереди; depth может быть nil для внешней очереди
func NewQueueMetrics(registry prometheus.Registerer, depth DepthFunc, log *logger.Logger) QueueMetrics {
	queueDepth := promauto.With(registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "fulfillment_queue_depth",
			Help: "Current number of fulfillment tasks waiting in the in-process queue",
		},
	)

	goroutines := promauto.With(registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "system_goroutines",
			Help: "Current number of goroutines",
		},
	)

	return &queueMetrics{
		log:        log,
		depth:      depth,
		queueDepth: queueDepth,
		goroutines: goroutines,
		stopCh:     make(chan struct{}),
	}
}

// Record снимает текущие значения
func (m *queueMetrics) Record() {
	if m.depth != nil {
		m.queueDepth.Set(float64(m.depth()))
	}
	m.goroutines.Set(float64(runtime.NumGoroutine()))
}

// StartRecording начинает запись метрик с заданным интервалом
func (m *queueMetrics) StartRecording(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.Record()
			case <-m.stopCh:
				return
			}
		}
	}()
	m.log.Info("Queue metrics recording started with interval %s", interval)
}

// Stop останавливает запись метрик
func (m *queueMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.log.Info("Queue metrics recording stopped")
	})
}
