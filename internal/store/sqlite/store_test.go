package sqlite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/gamma-omg/tradexchange/internal/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(slog.New(slog.NewTextHandler(io.Discard, nil)), filepath.Join(t.TempDir(), "candles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func candlesAt(epochs ...int64) []market.Candle {
	res := make([]market.Candle, len(epochs))
	for i, e := range epochs {
		v := float64(e)
		res[i] = market.Candle{Epoch: e, Open: v, High: v + 1, Low: v - 1, Close: v + 0.5, Volume: 2}
	}
	return res
}

func TestStore_SaveLoad(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "USDT_ETH", 60, candlesAt(180, 60, 120)))
	require.NoError(t, s.Save(ctx, "USDT_BTC", 60, candlesAt(60)))
	require.NoError(t, s.Save(ctx, "USDT_ETH", 300, candlesAt(300)))

	got, err := s.Load(ctx, "USDT_ETH", 60, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, candlesAt(60, 120, 180), got)
}

func TestStore_Replace(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "USDT_ETH", 60, candlesAt(60, 120)))

	updated := market.Candle{Epoch: 120, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 9}
	require.NoError(t, s.Save(ctx, "USDT_ETH", 60, []market.Candle{updated}))

	got, err := s.Load(ctx, "USDT_ETH", 60, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, updated, got[1])
}

func TestStore_LoadRange(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "P", 60, candlesAt(60, 120, 180, 240, 300)))

	tbl := []struct {
		start  int64
		end    int64
		epochs []int64
		err    error
	}{
		{start: 120, end: 240, epochs: []int64{120, 180, 240}},
		{start: 200, epochs: []int64{240, 300}},
		{end: 60, epochs: []int64{60}},
		{start: 400, err: ErrNotFound},
	}

	for i, c := range tbl {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			got, err := s.Load(ctx, "P", 60, c.start, c.end)
			if c.err != nil {
				assert.ErrorIs(t, err, c.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, candlesAt(c.epochs...), got)
		})
	}
}
