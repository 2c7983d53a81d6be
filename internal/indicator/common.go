package indicator

import "github.com/gamma-omg/tradexchange/internal/market"

type cachedIndicator struct {
	lookback int
	calc     func(i int) float64
	values   []float64
	done     []bool
}

func newCached(lookback int, calc func(i int) float64) *cachedIndicator {
	return &cachedIndicator{lookback: lookback, calc: calc}
}

func (c *cachedIndicator) Value(i int) float64 {
	if i < len(c.done) && c.done[i] {
		return c.values[i]
	}

	v := c.calc(i)
	for len(c.done) <= i {
		c.values = append(c.values, 0)
		c.done = append(c.done, false)
	}
	c.values[i] = v
	c.done[i] = true
	return v
}

func (c *cachedIndicator) Lookback() int {
	return c.lookback
}

// recursiveIndicator fills values forward from the last computed index, so
// deep indices never recurse.
type recursiveIndicator struct {
	lookback int
	first    func() float64
	next     func(i int, prev float64) float64
	values   []float64
}

func newRecursive(lookback int, first func() float64, next func(i int, prev float64) float64) *recursiveIndicator {
	return &recursiveIndicator{lookback: lookback, first: first, next: next}
}

func (r *recursiveIndicator) Value(i int) float64 {
	for j := len(r.values); j <= i; j++ {
		if j == 0 {
			r.values = append(r.values, r.first())
			continue
		}
		r.values = append(r.values, r.next(j, r.values[j-1]))
	}

	return r.values[i]
}

func (r *recursiveIndicator) Lookback() int {
	return r.lookback
}

type priceIndicator struct {
	series *market.Series
	field  func(c market.Candle) float64
}

func (p *priceIndicator) Value(i int) float64 {
	return p.field(p.series.At(i))
}

func (p *priceIndicator) Lookback() int {
	return 0
}

func NewClose(s *market.Series) Indicator {
	return &priceIndicator{s, func(c market.Candle) float64 { return c.Close }}
}

func NewOpen(s *market.Series) Indicator {
	return &priceIndicator{s, func(c market.Candle) float64 { return c.Open }}
}

func NewHigh(s *market.Series) Indicator {
	return &priceIndicator{s, func(c market.Candle) float64 { return c.High }}
}

func NewLow(s *market.Series) Indicator {
	return &priceIndicator{s, func(c market.Candle) float64 { return c.Low }}
}

func NewVolume(s *market.Series) Indicator {
	return &priceIndicator{s, func(c market.Candle) float64 { return c.Volume }}
}

// NewCandleColor is positive for green candles and negative for red ones.
func NewCandleColor(s *market.Series) Indicator {
	return &priceIndicator{s, func(c market.Candle) float64 { return c.Close - c.Open }}
}

type constIndicator float64

func (c constIndicator) Value(int) float64 { return float64(c) }
func (c constIndicator) Lookback() int     { return 0 }

func NewConstant(v float64) Indicator {
	return constIndicator(v)
}

func windowStart(i, n int) int {
	return max(0, i-n+1)
}
