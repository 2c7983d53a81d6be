package market

import "time"

// Candle is one OHLCV observation. Epoch is in seconds.
type Candle struct {
	Epoch  int64
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

func (c Candle) Time() time.Time {
	return time.Unix(c.Epoch, 0)
}
