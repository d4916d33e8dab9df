package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	m.Registration("created")
	m.Registration("created")
	m.Registration("invalid")
	m.Activation("wrong_code")
	m.Reissue("queued")
	m.ActivationMail("sent")
	m.QueueDepth(3)
	m.HTTPRequest("POST", "/users", 201, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.registrations.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activations.WithLabelValues("wrong_code")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reissues.WithLabelValues("queued")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activationMail.WithLabelValues("sent")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.queueDepth))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/users", "201")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpRequestTime))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	require.Error(t, err)
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.Registration("created")
	m.Activation("activated")
	m.Reissue("dropped")
	m.ActivationMail("sent")
	m.QueueDepth(1)
	m.HTTPRequest("GET", "/healthz", 200, time.Millisecond)
}
