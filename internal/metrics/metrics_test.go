package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.FrameReceived(FrameEnvelope)
	c.FrameReceived(FrameEnvelope)
	c.FrameReceived(FramePlainText)
	c.Intent("chat", "sent")
	c.Session(SessionOpened)
	c.ConnectionState(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.framesReceived.WithLabelValues(FrameEnvelope)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.framesReceived.WithLabelValues(FramePlainText)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.intents.WithLabelValues("chat", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sessions.WithLabelValues(SessionOpened)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.connState))
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.FrameReceived(FrameUnknown)
		c.Intent("vote", "echoed")
		c.Session(SessionFailed)
		c.ConnectionState(3)
	})
}
