package market

import (
	"errors"
	"fmt"
)

var ErrOutOfOrder = errors.New("candle is not newer than the last one")

// Series is an append-only, time ordered sequence of candles.
type Series struct {
	candles []Candle
}

func NewSeries(capacity int) *Series {
	return &Series{candles: make([]Candle, 0, capacity)}
}

func NewSeriesFrom(candles []Candle) (*Series, error) {
	s := NewSeries(len(candles))
	for _, c := range candles {
		if err := s.Append(c); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Series) Append(c Candle) error {
	if n := len(s.candles); n > 0 && c.Epoch <= s.candles[n-1].Epoch {
		return fmt.Errorf("%w: %d after %d", ErrOutOfOrder, c.Epoch, s.candles[n-1].Epoch)
	}

	s.candles = append(s.candles, c)
	return nil
}

func (s *Series) At(i int) Candle {
	return s.candles[i]
}

func (s *Series) Len() int {
	return len(s.candles)
}

func (s *Series) LastIndex() int {
	return len(s.candles) - 1
}

// Candles returns a copy of the candles in [from, to].
func (s *Series) Candles(from, to int) []Candle {
	res := make([]Candle, to-from+1)
	copy(res, s.candles[from:to+1])
	return res
}
