package alpaca

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/gamma-omg/tradexchange/internal/config"
	"github.com/gamma-omg/tradexchange/internal/market"
)

var (
	ErrTimeFrame   = errors.New("unsupported timeframe")
	ErrNotTradable = errors.New("asset is not a tradable crypto pair")
	ErrNoBars      = errors.New("no bars returned")
)

type api interface {
	GetAsset(symbol string) (*alpaca.Asset, error)
	GetCryptoBars(symbol string, req marketdata.GetCryptoBarsRequest) ([]marketdata.CryptoBar, error)
}

// History downloads crypto bars for backtesting.
type History struct {
	log       *slog.Logger
	api       api
	symbol    string
	timeFrame time.Duration
}

func NewHistory(log *slog.Logger, cfg config.Alpaca) *History {
	tf := cfg.TimeFrame
	if tf == 0 {
		tf = time.Minute
	}

	return &History{
		log:       log,
		api:       newAlpacaApi(cfg.ApiKey, cfg.Secret, cfg.BaseUrl),
		symbol:    cfg.Symbol,
		timeFrame: tf,
	}
}

// Fetch returns the bars in [start, end] as candles ordered by time. Bars
// sharing a timestamp with an earlier one are dropped.
func (h *History) Fetch(ctx context.Context, start, end time.Time) ([]market.Candle, error) {
	tf, err := timeFrame(h.timeFrame)
	if err != nil {
		return nil, err
	}

	asset, err := h.api.GetAsset(h.symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get alpaca asset %s: %w", h.symbol, err)
	}
	if asset.Class != alpaca.Crypto || !asset.Tradable {
		return nil, fmt.Errorf("%w: %s", ErrNotTradable, h.symbol)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bars, err := h.api.GetCryptoBars(h.symbol, marketdata.GetCryptoBarsRequest{
		TimeFrame: tf,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get crypto bars: %w", err)
	}

	candles := make([]market.Candle, 0, len(bars))
	for _, b := range bars {
		epoch := b.Timestamp.Unix()
		if n := len(candles); n > 0 && epoch <= candles[n-1].Epoch {
			continue
		}

		candles = append(candles, market.Candle{
			Epoch:  epoch,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBars, h.symbol)
	}

	h.log.Info("history fetched",
		slog.String("symbol", h.symbol),
		slog.Int("bars", len(candles)),
		slog.Time("from", time.Unix(candles[0].Epoch, 0)),
		slog.Time("to", time.Unix(candles[len(candles)-1].Epoch, 0)))

	return candles, nil
}

func timeFrame(d time.Duration) (marketdata.TimeFrame, error) {
	switch {
	case d <= 0 || d%time.Minute != 0:
		return marketdata.TimeFrame{}, fmt.Errorf("%w: %s", ErrTimeFrame, d)
	case d%(24*time.Hour) == 0:
		return marketdata.NewTimeFrame(int(d/(24*time.Hour)), marketdata.Day), nil
	case d%time.Hour == 0:
		return marketdata.NewTimeFrame(int(d/time.Hour), marketdata.Hour), nil
	default:
		return marketdata.NewTimeFrame(int(d/time.Minute), marketdata.Min), nil
	}
}
