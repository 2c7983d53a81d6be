package indicator

func NewSMA(src Indicator, n int) Indicator {
	return newCached(src.Lookback()+n-1, func(i int) float64 {
		from := windowStart(i, n)
		var sum float64
		for j := from; j <= i; j++ {
			sum += src.Value(j)
		}
		return sum / float64(i-from+1)
	})
}

func NewEMA(src Indicator, n int) Indicator {
	return newSmoothed(src, n, 2/(float64(n)+1))
}

// NewMMA is the Wilder moving average, an EMA with alpha 1/n.
func NewMMA(src Indicator, n int) Indicator {
	return newSmoothed(src, n, 1/float64(n))
}

func newSmoothed(src Indicator, n int, k float64) Indicator {
	return newRecursive(src.Lookback()+n-1,
		func() float64 { return src.Value(0) },
		func(i int, prev float64) float64 {
			return prev + k*(src.Value(i)-prev)
		})
}
