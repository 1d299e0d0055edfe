package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_Counters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := NewCollector("contextflow", reg, nil)

	c.ObserveCompaction(true, 1000, 300)
	c.ObserveCompaction(true, 900, 900)
	c.ObserveCompaction(false, 200, 200)
	c.ObserveSummaryDegraded()
	c.ObserveSummaryDegraded()
	c.ObserveTokenizerFallback()

	assert.Equal(t, float64(2), testutil.ToFloat64(c.compactionsTotal.WithLabelValues("true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.compactionsTotal.WithLabelValues("false")))
	assert.Equal(t, float64(700), testutil.ToFloat64(c.tokensReclaimed))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.summaryDegraded))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.tokenizerFallback))
}

func TestCollector_NilSafe(t *testing.T) {
	t.Parallel()

	var c *Collector
	c.ObserveCompaction(true, 10, 5)
	c.ObserveSummaryDegraded()
	c.ObserveTokenizerFallback()
}
