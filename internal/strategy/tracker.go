package strategy

import (
	"fmt"

	"github.com/gamma-omg/tradexchange/internal/chart"
	"github.com/gamma-omg/tradexchange/internal/indicator"
)

// closeTracker follows one open trade. Advance is called once for every
// tick after the open tick and returns the close trigger, if any.
type closeTracker interface {
	Advance(i int, price float64) Trigger
	State() TrackerState
	Points(code int, epoch int64) []chart.Point
}

type TrackerState struct {
	Elapsed            int
	TopBarrier         float64
	BottomBarrier      float64
	StartedDowntrend   bool
	PassedFirstBarrier bool
}

type trackerFactory func(buyTick int, buyPrice float64) closeTracker

func newTrackerFactory(cfg Config, pipe *indicator.Pipeline) (trackerFactory, error) {
	switch cfg.ClosePolicy {
	case PolicyBarrier:
		atr, err := pipe.Resolve(fmt.Sprintf("atr(%d)", cfg.ATRPeriod))
		if err != nil {
			return nil, err
		}
		trend, err := pipe.Resolve(fmt.Sprintf("ema(%d)", cfg.TrendEMAPeriod))
		if err != nil {
			return nil, err
		}

		return func(buyTick int, buyPrice float64) closeTracker {
			return newBarrierTracker(cfg, buyPrice, atr.Value(buyTick), trend)
		}, nil
	case PolicyMargin:
		return func(_ int, buyPrice float64) closeTracker {
			return &marginTracker{
				expiry:       cfg.TradeExpiry,
				marginToSell: cfg.MarginToSell,
				topLoss:      cfg.TopLoss,
				buyPrice:     buyPrice,
			}
		}, nil
	case PolicyRetrace:
		return func(_ int, buyPrice float64) closeTracker {
			return &retraceTracker{
				expiry:   cfg.TradeExpiry,
				topLoss:  cfg.TopLoss,
				barrier1: cfg.SellBarrier1,
				barrier2: cfg.SellBarrier2,
				buyPrice: buyPrice,
			}
		}, nil
	}

	return nil, fmt.Errorf("unknown close policy %q", cfg.ClosePolicy)
}

// barrierTracker keeps a take-profit and a stop-loss level around the buy
// price. Time pulls the top barrier down and the bottom barrier up; price
// moves push the top along and only ever raise the bottom.
type barrierTracker struct {
	expiry            int
	priceWeightTop    float64
	timeWeightTop     float64
	priceWeightBottom float64
	timeWeightBottom  float64
	trend             indicator.Indicator

	buyPrice         float64
	prevPrice        float64
	top              float64
	bottom           float64
	elapsed          int
	started          bool
	startedDowntrend bool
}

func newBarrierTracker(cfg Config, buyPrice, atr float64, trend indicator.Indicator) *barrierTracker {
	return &barrierTracker{
		expiry:            cfg.TradeExpiry,
		priceWeightTop:    cfg.PriceWeightTop,
		timeWeightTop:     cfg.TimeWeightTop,
		priceWeightBottom: cfg.PriceWeightBottom,
		timeWeightBottom:  cfg.TimeWeightBottom,
		trend:             trend,
		buyPrice:          buyPrice,
		prevPrice:         buyPrice,
		top:               buyPrice + atr*cfg.TopBarrierMultiplier,
		bottom:            buyPrice - atr*cfg.BottomBarrierMultiplier,
	}
}

func (t *barrierTracker) Advance(i int, price float64) Trigger {
	if !t.started {
		t.startedDowntrend = price < t.trend.Value(i)
		t.started = true
	}

	t.elapsed++
	elapsed := float64(t.elapsed)
	move := (price - t.prevPrice) / t.buyPrice * 100
	t.prevPrice = price

	t.top += t.buyPrice * (move*t.priceWeightTop - elapsed*t.timeWeightTop) / 100
	t.bottom += t.buyPrice * (max(move, 0)*t.priceWeightBottom + elapsed*t.timeWeightBottom) / 100

	switch {
	case t.elapsed >= t.expiry:
		return TriggerExpiry
	case price >= t.top:
		return TriggerTopBarrier
	case price <= t.bottom:
		return TriggerBottomBarrier
	}

	return ""
}

func (t *barrierTracker) State() TrackerState {
	return TrackerState{
		Elapsed:          t.elapsed,
		TopBarrier:       t.top,
		BottomBarrier:    t.bottom,
		StartedDowntrend: t.startedDowntrend,
	}
}

func (t *barrierTracker) Points(code int, epoch int64) []chart.Point {
	return []chart.Point{
		{Chart: chart.PriceChart, Series: fmt.Sprintf("top #%d", code), Epoch: epoch, Value: t.top},
		{Chart: chart.PriceChart, Series: fmt.Sprintf("bottom #%d", code), Epoch: epoch, Value: t.bottom},
	}
}
