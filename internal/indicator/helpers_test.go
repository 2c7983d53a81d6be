package indicator

import (
	"math"
	"testing"

	"github.com/gamma-omg/tradexchange/internal/market"
	"github.com/stretchr/testify/require"
)

func closes(t *testing.T, values ...float64) *market.Series {
	t.Helper()

	candles := make([]market.Candle, len(values))
	for i, v := range values {
		candles[i] = market.Candle{
			Epoch:  int64(i+1) * 60,
			Open:   v,
			High:   v + 1,
			Low:    v - 1,
			Close:  v,
			Volume: 10,
		}
	}

	s, err := market.NewSeriesFrom(candles)
	require.NoError(t, err)
	return s
}

func wave(t *testing.T, n int) *market.Series {
	t.Helper()

	candles := make([]market.Candle, n)
	for i := range n {
		c := 100 + 10*math.Sin(float64(i)/3) + float64(i)*0.1
		candles[i] = market.Candle{
			Epoch:  int64(i+1) * 300,
			Open:   c - math.Cos(float64(i)),
			High:   c + 2,
			Low:    c - 2,
			Close:  c,
			Volume: 100 + float64(i%7)*10,
		}
	}

	s, err := market.NewSeriesFrom(candles)
	require.NoError(t, err)
	return s
}

func valuesOf(ind Indicator, n int) []float64 {
	res := make([]float64, n)
	for i := range n {
		res[i] = ind.Value(i)
	}
	return res
}
