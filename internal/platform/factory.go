package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gamma-omg/tradexchange/internal/config"
	"github.com/gamma-omg/tradexchange/internal/market"
	"github.com/gamma-omg/tradexchange/internal/platform/alpaca"
	"github.com/gamma-omg/tradexchange/internal/platform/emulator"
	"github.com/gamma-omg/tradexchange/internal/store/sqlite"
)

var (
	ErrUnknownSource = errors.New("unknown candle source")
	ErrEmptySeries   = errors.New("no candles in the selected range")
)

// LoadSeries reads the candles of a run from its source, applies the start
// and end bounds and resamples them to the run period.
func LoadSeries(ctx context.Context, log *slog.Logger, run config.Run) (*market.Series, error) {
	candles, err := loadCandles(ctx, log, run)
	if err != nil {
		return nil, err
	}

	candles = market.Resample(candles, run.Period)
	if len(candles) == 0 {
		return nil, ErrEmptySeries
	}

	s, err := market.NewSeriesFrom(candles)
	if err != nil {
		return nil, fmt.Errorf("invalid candle source: %w", err)
	}

	log.Info("series loaded",
		slog.Int("candles", s.Len()),
		slog.Time("from", s.At(0).Time()),
		slog.Time("to", s.At(s.LastIndex()).Time()))

	return s, nil
}

func loadCandles(ctx context.Context, log *slog.Logger, run config.Run) ([]market.Candle, error) {
	var start, end int64
	if !run.Start.IsZero() {
		start = run.Start.Unix()
	}
	if !run.End.IsZero() {
		end = run.End.Unix()
	}

	switch src := run.SourceRef.Source.(type) {
	case config.CSV:
		return emulator.ReadCandlesFromFile(src.Path, func(c market.Candle) bool {
			return c.Epoch >= start && (end == 0 || c.Epoch <= end)
		})
	case config.SQLite:
		st, err := sqlite.Open(log, src.Path)
		if err != nil {
			return nil, err
		}
		defer st.Close()

		return st.Load(ctx, src.Pair, src.Period, start, end)
	case config.Alpaca:
		return alpaca.NewHistory(log, src).Fetch(ctx, run.Start, run.End)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownSource, src)
	}
}
