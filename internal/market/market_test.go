package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesAppend(t *testing.T) {
	s := NewSeries(4)
	require.NoError(t, s.Append(Candle{Epoch: 10, Close: 1}))
	require.NoError(t, s.Append(Candle{Epoch: 20, Close: 2}))

	err := s.Append(Candle{Epoch: 20, Close: 3})
	assert.ErrorIs(t, err, ErrOutOfOrder)

	err = s.Append(Candle{Epoch: 5, Close: 3})
	assert.ErrorIs(t, err, ErrOutOfOrder)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.LastIndex())
	assert.Equal(t, 2.0, s.At(1).Close)
}

func TestNewSeriesFrom(t *testing.T) {
	s, err := NewSeriesFrom([]Candle{{Epoch: 1}, {Epoch: 2}, {Epoch: 3}})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	_, err = NewSeriesFrom([]Candle{{Epoch: 1}, {Epoch: 3}, {Epoch: 2}})
	assert.ErrorIs(t, err, ErrOutOfOrder)
}

func TestSeriesCandles_returnsCopy(t *testing.T) {
	s, err := NewSeriesFrom([]Candle{{Epoch: 1, Close: 1}, {Epoch: 2, Close: 2}, {Epoch: 3, Close: 3}})
	require.NoError(t, err)

	c := s.Candles(1, 2)
	require.Len(t, c, 2)
	assert.Equal(t, 2.0, c[0].Close)

	c[0].Close = 100
	assert.Equal(t, 2.0, s.At(1).Close)
}
