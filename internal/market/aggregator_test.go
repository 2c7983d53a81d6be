package market

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResample(t *testing.T) {
	tbl := []struct {
		period int64
		in     []Candle
		out    []Candle
	}{
		{
			period: 180,
			in: []Candle{
				{Epoch: 0, Open: 1, High: 3, Low: 1, Close: 2, Volume: 1},
				{Epoch: 60, Open: 3, High: 5, Low: 3, Close: 4, Volume: 2},
				{Epoch: 120, Open: 4, High: 4, Low: 2, Close: 3, Volume: 3},
				{Epoch: 180, Open: 9, High: 9, Low: 9, Close: 9, Volume: 9},
			},
			out: []Candle{
				{Epoch: 0, Open: 1, High: 5, Low: 1, Close: 3, Volume: 6},
				{Epoch: 180, Open: 9, High: 9, Low: 9, Close: 9, Volume: 9},
			},
		},
		{
			period: 120,
			in: []Candle{
				{Epoch: 60, Open: 1, High: 2, Low: 1, Close: 2, Volume: 1},
				{Epoch: 120, Open: 2, High: 8, Low: 0.5, Close: 7, Volume: 1},
				{Epoch: 400, Open: 7, High: 7, Low: 6, Close: 6, Volume: 4},
			},
			out: []Candle{
				{Epoch: 0, Open: 1, High: 2, Low: 1, Close: 2, Volume: 1},
				{Epoch: 120, Open: 2, High: 8, Low: 0.5, Close: 7, Volume: 1},
				{Epoch: 360, Open: 7, High: 7, Low: 6, Close: 6, Volume: 4},
			},
		},
		{
			period: 0,
			in:     []Candle{{Epoch: 1}, {Epoch: 2}},
			out:    []Candle{{Epoch: 1}, {Epoch: 2}},
		},
	}

	for i, c := range tbl {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			assert.Equal(t, c.out, Resample(c.in, c.period))
		})
	}
}
