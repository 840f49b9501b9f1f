package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

func TestStoreMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewStoreMetrics(registry, logger.NewNop()).(*storeMetrics)

	m.IncCheckoutCreated("softcover")
	m.IncCheckoutCreated("softcover")
	m.IncWebhookEvent("checkout.session.completed", "enqueued")
	m.IncFulfillment("physical", "failed")
	m.ObserveProviderLatency("lulu", "success", 300*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkoutsCreated.WithLabelValues("softcover")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.webhookEvents.WithLabelValues("checkout.session.completed", "enqueued")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fulfillments.WithLabelValues("physical", "failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.providerLatency))
}

func TestQueueMetrics_Record(t *testing.T) {
	registry := prometheus.NewRegistry()
	depth := 3
	m := NewQueueMetrics(registry, func() int { return depth }, logger.NewNop()).(*queueMetrics)

	m.Record()
	assert.Equal(t, 3.0, testutil.ToFloat64(m.queueDepth))
	assert.Greater(t, testutil.ToFloat64(m.goroutines), 0.0)

	m.StartRecording(time.Hour)
	m.Stop()
	m.Stop()
}
