package backtest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gamma-omg/tradexchange/internal/strategy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Tick(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry(), "ETH")
	require.NoError(t, err)

	m.tick(nil, decimal.NewFromInt(100))
	m.tick([]strategy.Operation{{Type: strategy.OpBuy}}, decimal.NewFromInt(50))
	m.tick([]strategy.Operation{
		{Type: strategy.OpSell, Trigger: strategy.TriggerMargin, Profit: 3},
		{Type: strategy.OpSell, Trigger: strategy.TriggerExpiry, Profit: -1},
	}, decimal.NewFromInt(102))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.ticks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("BUY")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ops.WithLabelValues("SELL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.closes.WithLabelValues("margin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.closes.WithLabelValues("expiry")))
	assert.Equal(t, 102.0, testutil.ToFloat64(m.money))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.tradeSum))
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.tick([]strategy.Operation{{Type: strategy.OpBuy}}, decimal.Zero)
		m.finish(&Summary{})
	})
}

func TestMetrics_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := NewMetrics(reg, "ETH")
	require.NoError(t, err)
	_, err = NewMetrics(reg, "BTC")
	require.NoError(t, err)

	_, err = NewMetrics(reg, "ETH")
	assert.Error(t, err)
}

func TestMetrics_Run(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "ETH")
	require.NoError(t, err)

	s := closes(t, 100, 101, 102, 103, 104, 105, 106, 107, 108, 109)
	st := newMockStrategy()
	st.ops[0] = []strategy.Operation{{Type: strategy.OpBuy, Code: 1}}
	st.ops[5] = []strategy.Operation{{Type: strategy.OpSell, Code: 1, Trigger: strategy.TriggerMargin, Profit: 50}}

	d, err := NewDriver(discard(), s, newExchange(1000), st, Options{Metrics: m})
	require.NoError(t, err)

	_, err = d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.ticks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.closes.WithLabelValues("margin")))
	assert.Equal(t, 50.0, testutil.ToFloat64(m.tradeSum))
	assert.Equal(t, 1000.0, testutil.ToFloat64(m.money))

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, WriteMetrics(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `backtest_ticks_total{run="ETH"} 10`)
	assert.Contains(t, string(data), `backtest_closes_total{run="ETH",trigger="margin"} 1`)
}
