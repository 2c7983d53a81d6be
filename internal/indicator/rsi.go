package indicator

import "github.com/gamma-omg/tradexchange/internal/market"

func NewRSI(src Indicator, n int) Indicator {
	gain := newCached(src.Lookback(), func(i int) float64 {
		if i == 0 {
			return 0
		}
		return max(0, src.Value(i)-src.Value(i-1))
	})
	loss := newCached(src.Lookback(), func(i int) float64 {
		if i == 0 {
			return 0
		}
		return max(0, src.Value(i-1)-src.Value(i))
	})

	avgGain := NewMMA(gain, n)
	avgLoss := NewMMA(loss, n)
	return newCached(src.Lookback()+n, func(i int) float64 {
		g := avgGain.Value(i)
		l := avgLoss.Value(i)
		if g == 0 && l == 0 {
			return 50
		}
		if l == 0 {
			return 100
		}
		return 100 - 100/(1+g/l)
	})
}

func NewTrueRange(s *market.Series) Indicator {
	return newCached(0, func(i int) float64 {
		c := s.At(i)
		if i == 0 {
			return c.High - c.Low
		}

		prev := s.At(i - 1).Close
		return max(c.High-c.Low, abs(c.High-prev), abs(c.Low-prev))
	})
}

func NewATR(s *market.Series, n int) Indicator {
	tr := NewMMA(NewTrueRange(s), n)
	return newCached(n, tr.Value)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
