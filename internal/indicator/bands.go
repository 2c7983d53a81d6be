package indicator

import "github.com/gamma-omg/tradexchange/internal/market"

// NewPercentB is the position of src inside its Bollinger bands of n
// periods and k deviations. Collapsed bands yield 0.5.
func NewPercentB(src Indicator, n int, k float64) Indicator {
	mid := NewSMA(src, n)
	dev := NewStdDev(src, n)
	return newCached(src.Lookback()+n-1, func(i int) float64 {
		d := dev.Value(i) * k
		if d == 0 {
			return 0.5
		}
		low := mid.Value(i) - d
		return (src.Value(i) - low) / (2 * d)
	})
}

// NewWilliamsR ranges from -100 (close at the window low) to 0 (close at
// the window high).
func NewWilliamsR(s *market.Series, n int) Indicator {
	hi := NewHighest(NewHigh(s), n)
	lo := NewLowest(NewLow(s), n)
	return newCached(n-1, func(i int) float64 {
		h, l := hi.Value(i), lo.Value(i)
		if h == l {
			return -50
		}
		return (h - s.At(i).Close) / (h - l) * -100
	})
}

// NewROC is the percent change of src over n ticks.
func NewROC(src Indicator, n int) Indicator {
	return newCached(src.Lookback()+n, func(i int) float64 {
		prev := src.Value(max(0, i-n))
		if prev == 0 {
			return 0
		}
		return (src.Value(i) - prev) / prev * 100
	})
}
