package market

// Resample groups candles into buckets of period seconds. Buckets are aligned
// to multiples of period and stamped with the bucket start.
func Resample(candles []Candle, period int64) []Candle {
	if period <= 0 || len(candles) == 0 {
		return candles
	}

	var res []Candle
	var cur *Candle
	var end int64
	for _, c := range candles {
		if cur != nil && c.Epoch >= end {
			res = append(res, *cur)
			cur = nil
		}

		if cur == nil {
			start := c.Epoch - mod(c.Epoch, period)
			end = start + period
			cur = &Candle{
				Epoch: start,
				Open:  c.Open,
				High:  c.High,
				Low:   c.Low,
			}
		}

		cur.Close = c.Close
		cur.High = max(cur.High, c.High)
		cur.Low = min(cur.Low, c.Low)
		cur.Volume += c.Volume
	}

	if cur != nil {
		res = append(res, *cur)
	}

	return res
}

func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
