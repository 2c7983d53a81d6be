package strategy

import (
	"fmt"

	"github.com/gamma-omg/tradexchange/internal/chart"
)

// marginTracker closes on a fixed price gain or a fixed loss.
type marginTracker struct {
	expiry       int
	marginToSell float64
	topLoss      float64
	buyPrice     float64
	elapsed      int
}

func (t *marginTracker) Advance(_ int, price float64) Trigger {
	t.elapsed++
	diff := price - t.buyPrice

	switch {
	case t.elapsed >= t.expiry:
		return TriggerExpiry
	case diff >= t.marginToSell:
		return TriggerMargin
	case diff < t.topLoss:
		return TriggerTopLoss
	}

	return ""
}

func (t *marginTracker) State() TrackerState {
	return TrackerState{
		Elapsed:       t.elapsed,
		TopBarrier:    t.buyPrice + t.marginToSell,
		BottomBarrier: t.buyPrice + t.topLoss,
	}
}

func (t *marginTracker) Points(code int, epoch int64) []chart.Point {
	return []chart.Point{
		{Chart: chart.PriceChart, Series: fmt.Sprintf("margin #%d", code), Epoch: epoch, Value: t.buyPrice + t.marginToSell},
	}
}

// retraceTracker sells above the second barrier, or when the price falls
// back under the first barrier after having passed it.
type retraceTracker struct {
	expiry   int
	topLoss  float64
	barrier1 float64
	barrier2 float64
	buyPrice float64
	elapsed  int
	passed1  bool
}

func (t *retraceTracker) Advance(_ int, price float64) Trigger {
	t.elapsed++
	diff := price - t.buyPrice

	if t.elapsed >= t.expiry {
		return TriggerExpiry
	}
	if diff < t.topLoss {
		return TriggerTopLoss
	}

	if diff > t.barrier1 {
		t.passed1 = true
		if diff > t.barrier2 {
			return TriggerSellBarrier2
		}
	} else if diff < t.barrier1 && t.passed1 {
		return TriggerRetrace
	}

	return ""
}

func (t *retraceTracker) State() TrackerState {
	return TrackerState{
		Elapsed:            t.elapsed,
		TopBarrier:         t.buyPrice + t.barrier2,
		BottomBarrier:      t.buyPrice + t.topLoss,
		PassedFirstBarrier: t.passed1,
	}
}

func (t *retraceTracker) Points(code int, epoch int64) []chart.Point {
	return []chart.Point{
		{Chart: chart.PriceChart, Series: fmt.Sprintf("barrier1 #%d", code), Epoch: epoch, Value: t.buyPrice + t.barrier1},
		{Chart: chart.PriceChart, Series: fmt.Sprintf("barrier2 #%d", code), Epoch: epoch, Value: t.buyPrice + t.barrier2},
	}
}
