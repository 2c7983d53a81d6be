package indicator

// NewMACD is the difference between a short and a long EMA of src.
func NewMACD(src Indicator, short, long int) Indicator {
	fast := NewEMA(src, short)
	slow := NewEMA(src, long)
	return newCached(max(fast.Lookback(), slow.Lookback()), func(i int) float64 {
		return fast.Value(i) - slow.Value(i)
	})
}
