package indicator

import "github.com/gamma-omg/tradexchange/internal/market"

// NewOBV is the on-balance volume: volume is added on up closes and
// subtracted on down closes.
func NewOBV(s *market.Series) Indicator {
	return newRecursive(0,
		func() float64 { return 0 },
		func(i int, prev float64) float64 {
			cur, last := s.At(i), s.At(i-1)
			switch {
			case cur.Close > last.Close:
				return prev + cur.Volume
			case cur.Close < last.Close:
				return prev - cur.Volume
			}
			return prev
		})
}

// NewOBVOscillator is the change of OBV over the last n ticks.
func NewOBVOscillator(s *market.Series, n int) Indicator {
	obv := NewOBV(s)
	return newCached(n, func(i int) float64 {
		return obv.Value(i) - obv.Value(max(0, i-n))
	})
}

// NewBuyPressure is the share of volume over the last n ticks carried by
// green candles.
func NewBuyPressure(s *market.Series, n int) Indicator {
	return newPressure(s, n, func(c market.Candle) bool { return c.Close > c.Open })
}

func NewSellPressure(s *market.Series, n int) Indicator {
	return newPressure(s, n, func(c market.Candle) bool { return c.Close < c.Open })
}

func newPressure(s *market.Series, n int, match func(c market.Candle) bool) Indicator {
	return newCached(n-1, func(i int) float64 {
		var part, total float64
		for j := windowStart(i, n); j <= i; j++ {
			c := s.At(j)
			total += c.Volume
			if match(c) {
				part += c.Volume
			}
		}
		if total == 0 {
			return 0
		}
		return part / total
	})
}
