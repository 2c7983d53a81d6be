package indicator

import "math"

type binaryIndicator struct {
	a, b Indicator
	op   func(a, b float64) float64
}

func (c *binaryIndicator) Value(i int) float64 {
	return c.op(c.a.Value(i), c.b.Value(i))
}

func (c *binaryIndicator) Lookback() int {
	return max(c.a.Lookback(), c.b.Lookback())
}

func NewSum(a, b Indicator) Indicator {
	return &binaryIndicator{a, b, func(x, y float64) float64 { return x + y }}
}

func NewDiff(a, b Indicator) Indicator {
	return &binaryIndicator{a, b, func(x, y float64) float64 { return x - y }}
}

func NewProduct(a, b Indicator) Indicator {
	return &binaryIndicator{a, b, func(x, y float64) float64 { return x * y }}
}

// NewRatio yields 0 where b is 0.
func NewRatio(a, b Indicator) Indicator {
	return &binaryIndicator{a, b, func(x, y float64) float64 {
		if y == 0 {
			return 0
		}
		return x / y
	}}
}

type mappedIndicator struct {
	src Indicator
	fn  func(float64) float64
}

func (m *mappedIndicator) Value(i int) float64 {
	return m.fn(m.src.Value(i))
}

func (m *mappedIndicator) Lookback() int {
	return m.src.Lookback()
}

func NewAbs(src Indicator) Indicator {
	return &mappedIndicator{src, math.Abs}
}

func NewNeg(src Indicator) Indicator {
	return &mappedIndicator{src, func(v float64) float64 { return -v }}
}

// NewWeighted is the weighted mean of its children.
func NewWeighted(children []Indicator, weights []float64) Indicator {
	lb := 0
	var total float64
	for i, c := range children {
		lb = max(lb, c.Lookback())
		total += weights[i]
	}

	return newCached(lb, func(i int) float64 {
		if total == 0 {
			return 0
		}

		var v float64
		for j, c := range children {
			v += c.Value(i) * weights[j]
		}
		return v / total
	})
}
