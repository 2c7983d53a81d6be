package indicator

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA(t *testing.T) {
	tbl := []struct {
		data    []float64
		ema     []float64
		period  int
		epsilon float64
	}{
		{
			data:    []float64{2, 4, 6, 8, 12, 14, 16, 18, 20},
			ema:     []float64{2, 3.333, 5.111, 7.037, 10.346, 12.782, 14.927, 16.976, 18.992},
			period:  2,
			epsilon: 0.001,
		},
		{
			data:    []float64{6, 7, 11, 4, 5, 6, 10, 12, 7, 13},
			ema:     []float64{6, 6.5, 8.75, 6.375, 5.688, 5.844, 7.922, 9.961, 8.48, 10.74},
			period:  3,
			epsilon: 0.001,
		},
	}

	for i, c := range tbl {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			ema := NewEMA(NewClose(closes(t, c.data...)), c.period)
			actual := valuesOf(ema, len(c.data))
			require.Len(t, actual, len(c.ema))

			for i, v := range actual {
				if math.Abs(v-c.ema[i]) > c.epsilon {
					t.Errorf("invalid ema component at %d: expected: %f got: %f ", i, c.ema[i], v)
				}
			}
		})
	}
}

func TestEMA_DeepIndexFirst(t *testing.T) {
	s := wave(t, 5000)
	deep := NewEMA(NewClose(s), 20).Value(4999)
	seq := valuesOf(NewEMA(NewClose(s), 20), 5000)

	assert.Equal(t, seq[4999], deep)
}

func TestSMA(t *testing.T) {
	sma := NewSMA(NewClose(closes(t, 1, 2, 3, 4, 5)), 3)

	assert.Equal(t, 2, sma.Lookback())
	assert.InDelta(t, 2.0, sma.Value(2), 1e-9)
	assert.InDelta(t, 3.0, sma.Value(3), 1e-9)
	assert.InDelta(t, 4.0, sma.Value(4), 1e-9)
}

func TestMACD(t *testing.T) {
	flat := NewMACD(NewClose(closes(t, 5, 5, 5, 5, 5, 5)), 2, 4)
	assert.Equal(t, 3, flat.Lookback())
	assert.Equal(t, 0.0, flat.Value(5))

	rising := NewMACD(NewClose(closes(t, 1, 2, 3, 4, 5, 6, 7, 8)), 2, 4)
	assert.Greater(t, rising.Value(7), 0.0)
}
