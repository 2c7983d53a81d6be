package indicator

import "math"

// NewStdDev is the population standard deviation over the last n values.
func NewStdDev(src Indicator, n int) Indicator {
	return newCached(src.Lookback()+n-1, func(i int) float64 {
		from := windowStart(i, n)
		cnt := float64(i - from + 1)

		var sum float64
		for j := from; j <= i; j++ {
			sum += src.Value(j)
		}
		mean := sum / cnt

		var sq float64
		for j := from; j <= i; j++ {
			d := src.Value(j) - mean
			sq += d * d
		}
		return math.Sqrt(sq / cnt)
	})
}

func NewHighest(src Indicator, n int) Indicator {
	return newCached(src.Lookback()+n-1, func(i int) float64 {
		res := math.Inf(-1)
		for j := windowStart(i, n); j <= i; j++ {
			res = max(res, src.Value(j))
		}
		return res
	})
}

func NewLowest(src Indicator, n int) Indicator {
	return newCached(src.Lookback()+n-1, func(i int) float64 {
		res := math.Inf(1)
		for j := windowStart(i, n); j <= i; j++ {
			res = min(res, src.Value(j))
		}
		return res
	})
}

// NewNormalized maps src into [0,1] relative to its min and max over the
// last n values. A flat window maps to 0.5. n == 0 disables normalization.
func NewNormalized(src Indicator, n int) Indicator {
	if n == 0 {
		return src
	}

	hi := NewHighest(src, n)
	lo := NewLowest(src, n)
	return newCached(src.Lookback()+n-1, func(i int) float64 {
		h, l := hi.Value(i), lo.Value(i)
		if h == l {
			return 0.5
		}
		return (src.Value(i) - l) / (h - l)
	})
}
