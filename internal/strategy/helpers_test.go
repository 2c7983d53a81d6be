package strategy

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/gamma-omg/tradexchange/internal/config"
	"github.com/gamma-omg/tradexchange/internal/indicator"
	"github.com/gamma-omg/tradexchange/internal/market"
	"github.com/gamma-omg/tradexchange/internal/platform/emulator"
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

func wave(t *testing.T, n int) *market.Series {
	t.Helper()

	values := make([]float64, n)
	for i := range n {
		values[i] = 100 + 8*math.Sin(float64(i)/4) + 3*math.Sin(float64(i)/1.7)
	}
	return closes(t, values...)
}

func settings(base config.Settings, kv ...string) config.Settings {
	s := config.Settings{}
	for k, v := range base {
		s[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		s[kv[i]] = kv[i+1]
	}
	return s
}

var marginSettings = config.Settings{
	"openTradesCount":   "1",
	"buyCooldown":       "9",
	"balanceMultiplier": "1",
	"entry":             "always",
	"tradeExpiry":       "100",
	"closePolicy":       "margin",
	"marginToSell":      "5",
	"topLoss":           "-50",
}

var barrierSettings = config.Settings{
	"openTradesCount":         "3",
	"buyCooldown":             "0",
	"balanceMultiplier":       "0.5",
	"entry":                   "always",
	"tradeExpiry":             "20",
	"atrPeriod":               "14",
	"topBarrierMultiplier":    "1.5",
	"bottomBarrierMultiplier": "1",
}

type runner struct {
	engine   *Engine
	exchange *emulator.Exchange
	series   *market.Series
}

func newRunner(t *testing.T, s *market.Series, cfg config.Settings, money float64, p Predictor) *runner {
	t.Helper()
	return newRunnerWith(t, s, cfg, money, p, emulator.Options{})
}

func newRunnerWith(t *testing.T, s *market.Series, cfg config.Settings, money float64, p Predictor, opts emulator.Options) *runner {
	t.Helper()

	ex := emulator.NewExchange(discard(), money, 0, opts)
	e, err := New(discard(), cfg, indicator.NewPipeline(s), ex, p)
	require.NoError(t, err)

	return &runner{engine: e, exchange: ex, series: s}
}

func (r *runner) tick(t *testing.T, i int) []Operation {
	t.Helper()

	c := r.series.At(i)
	r.exchange.SetPrice(c.Epoch, c.Close)
	ops, err := r.engine.OnTick(i)
	require.NoError(t, err)
	return ops
}

type scriptedPredictor struct {
	buy  []float64
	sell []float64
	call int
}

func (p *scriptedPredictor) Predict(window [][]float64) (float64, float64, error) {
	i := p.call
	p.call++
	return p.buy[i], p.sell[i], nil
}

type mockExchange struct {
	money    float64
	price    float64
	buyErr   error
	sellErr  error
	minOrder float64
}

func (m *mockExchange) Buy(coins float64) (emulator.Fill, error) {
	if m.buyErr != nil {
		return emulator.Fill{}, m.buyErr
	}
	return emulator.Fill{Side: emulator.SideBuy, Price: m.price, Amount: coins}, nil
}

func (m *mockExchange) Sell(coins float64) (emulator.Fill, error) {
	if m.sellErr != nil {
		return emulator.Fill{}, m.sellErr
	}
	return emulator.Fill{Side: emulator.SideSell, Price: m.price, Amount: coins}, nil
}

func (m *mockExchange) MoneyBalance() float64 { return m.money }
func (m *mockExchange) MaxBuyAmount() float64 { return m.money / m.price }
func (m *mockExchange) MinOrder() float64     { return m.minOrder }
