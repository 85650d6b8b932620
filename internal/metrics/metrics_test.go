package metrics_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disiqueira/httpserver/internal/metrics"
)

func TestObserveStatusBucketsByClass(t *testing.T) {
	c := metrics.New()

	c.ObserveStatus(200, 5*time.Millisecond)
	c.ObserveStatus(201, 5*time.Millisecond)
	c.ObserveStatus(404, 5*time.Millisecond)
	c.ObserveStatus(500, 5*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.RequestsTotal.WithLabelValues("2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.RequestsTotal.WithLabelValues("4xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.RequestsTotal.WithLabelValues("5xx")))
	var m dto.Metric
	require.NoError(t, c.RequestDuration.Write(&m))
	assert.Equal(t, uint64(4), m.GetHistogram().GetSampleCount())
}

func TestServeShutsDownOnContextCancel(t *testing.T) {
	c := metrics.New()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- c.Serve(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}
}
