package backtest

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gamma-omg/tradexchange/internal/chart"
	"github.com/gamma-omg/tradexchange/internal/market"
	"github.com/gamma-omg/tradexchange/internal/platform/emulator"
	"github.com/gamma-omg/tradexchange/internal/strategy"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func closes(t *testing.T, values ...float64) *market.Series {
	t.Helper()

	candles := make([]market.Candle, len(values))
	for i, v := range values {
		candles[i] = market.Candle{Epoch: int64(i+1) * 60, Open: v, High: v + 1, Low: v - 1, Close: v, Volume: 10}
	}

	s, err := market.NewSeriesFrom(candles)
	require.NoError(t, err)
	return s
}

func flat(t *testing.T, n int) *market.Series {
	values := make([]float64, n)
	for i := range values {
		values[i] = 100
	}
	return closes(t, values...)
}

func newExchange(money float64) *emulator.Exchange {
	return emulator.NewExchange(discard(), money, 0, emulator.Options{})
}

// stepClock advances by step on every call.
func stepClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

type mockStrategy struct {
	lookback   int
	ops        map[int][]strategy.Operation
	points     []chart.Point
	err        error
	errAt      int
	onTick     func(i int)
	ticks      []int
	// sellOnlyAt is the number of ticks seen before sell-only was set.
	sellOnlyAt int
	tradeCount int
	tradeSum   float64
}

func (m *mockStrategy) OnTick(i int) ([]strategy.Operation, error) {
	m.ticks = append(m.ticks, i)
	if m.onTick != nil {
		m.onTick(i)
	}
	if m.err != nil && i == m.errAt {
		return nil, m.err
	}

	ops := m.ops[i]
	for _, op := range ops {
		if op.Type == strategy.OpSell {
			m.tradeCount++
			m.tradeSum += op.Profit
		}
	}
	return ops, nil
}

func (m *mockStrategy) OnDrawChart(i int) []chart.Point {
	return m.points
}

func (m *mockStrategy) Lookback() int {
	return m.lookback
}

func (m *mockStrategy) SetSellOnly(v bool) {
	if v && m.sellOnlyAt < 0 {
		m.sellOnlyAt = len(m.ticks)
	}
}

func (m *mockStrategy) TradeCount() int {
	return m.tradeCount
}

func (m *mockStrategy) TradeSum() float64 {
	return m.tradeSum
}

func newMockStrategy() *mockStrategy {
	return &mockStrategy{ops: map[int][]strategy.Operation{}, errAt: -1, sellOnlyAt: -1}
}
