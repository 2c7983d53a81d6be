package strategy

import (
	"fmt"
	"testing"

	"github.com/gamma-omg/tradexchange/internal/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func barrierConfig(expiry int) Config {
	return Config{
		TradeExpiry:             expiry,
		TopBarrierMultiplier:    1,
		BottomBarrierMultiplier: 1,
		PriceWeightTop:          0.5,
		TimeWeightTop:           0.01,
		PriceWeightBottom:       0.5,
		TimeWeightBottom:        0.01,
	}
}

func TestBarrierTracker_ConstantPrice(t *testing.T) {
	tr := newBarrierTracker(barrierConfig(1000), 100, 2, indicator.NewConstant(90))
	assert.Equal(t, 102.0, tr.State().TopBarrier)
	assert.Equal(t, 98.0, tr.State().BottomBarrier)

	var trigger Trigger
	for i := 1; trigger == ""; i++ {
		before := tr.State()
		trigger = tr.Advance(i, 100)
		after := tr.State()

		assert.Less(t, after.TopBarrier, before.TopBarrier)
		assert.Greater(t, after.BottomBarrier, before.BottomBarrier)
		assert.Equal(t, before.Elapsed+1, after.Elapsed)
		require.Less(t, i, 1000)
	}

	assert.Contains(t, []Trigger{TriggerTopBarrier, TriggerBottomBarrier}, trigger)
}

func TestBarrierTracker_Priority(t *testing.T) {
	tbl := []struct {
		expiry  int
		price   float64
		trigger Trigger
	}{
		{expiry: 1, price: 200, trigger: TriggerExpiry},
		{expiry: 1, price: 10, trigger: TriggerExpiry},
		{expiry: 1, price: 100, trigger: TriggerExpiry},
		{expiry: 50, price: 200, trigger: TriggerTopBarrier},
		{expiry: 50, price: 10, trigger: TriggerBottomBarrier},
		{expiry: 50, price: 100.5, trigger: ""},
	}

	for i, c := range tbl {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			tr := newBarrierTracker(barrierConfig(c.expiry), 100, 2, indicator.NewConstant(90))
			assert.Equal(t, c.trigger, tr.Advance(1, c.price))
		})
	}
}

func TestBarrierTracker_PriceMoves(t *testing.T) {
	cfg := barrierConfig(1000)
	cfg.TimeWeightTop = 0
	cfg.TimeWeightBottom = 0
	tr := newBarrierTracker(cfg, 100, 2, indicator.NewConstant(90))

	// +1% raises both barriers by half a percent
	tr.Advance(1, 101)
	assert.InDelta(t, 102.5, tr.State().TopBarrier, 1e-9)
	assert.InDelta(t, 98.5, tr.State().BottomBarrier, 1e-9)

	// falling prices lower the top and leave the bottom alone
	tr.Advance(2, 100)
	assert.InDelta(t, 102.0, tr.State().TopBarrier, 1e-9)
	assert.InDelta(t, 98.5, tr.State().BottomBarrier, 1e-9)
}

func TestBarrierTracker_Downtrend(t *testing.T) {
	down := newBarrierTracker(barrierConfig(1000), 100, 2, indicator.NewConstant(150))
	down.Advance(1, 100)
	assert.True(t, down.State().StartedDowntrend)

	up := newBarrierTracker(barrierConfig(1000), 100, 2, indicator.NewConstant(50))
	up.Advance(1, 100)
	assert.False(t, up.State().StartedDowntrend)
}

func TestMarginTracker(t *testing.T) {
	tbl := []struct {
		expiry  int
		price   float64
		trigger Trigger
	}{
		{expiry: 10, price: 105, trigger: TriggerMargin},
		{expiry: 10, price: 104.9, trigger: ""},
		{expiry: 10, price: 96.9, trigger: TriggerTopLoss},
		{expiry: 10, price: 97, trigger: ""},
		{expiry: 1, price: 105, trigger: TriggerExpiry},
	}

	for i, c := range tbl {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			tr := &marginTracker{expiry: c.expiry, marginToSell: 5, topLoss: -3, buyPrice: 100}
			assert.Equal(t, c.trigger, tr.Advance(1, c.price))
		})
	}
}

func TestRetraceTracker(t *testing.T) {
	tbl := []struct {
		prices   []float64
		expiry   int
		triggers []Trigger
	}{
		{prices: []float64{100.5, 101.5, 100.5}, expiry: 100, triggers: []Trigger{"", "", TriggerRetrace}},
		{prices: []float64{101.5, 103.5}, expiry: 100, triggers: []Trigger{"", TriggerSellBarrier2}},
		{prices: []float64{100.5, 89}, expiry: 100, triggers: []Trigger{"", TriggerTopLoss}},
		{prices: []float64{100.5, 100.2}, expiry: 100, triggers: []Trigger{"", ""}},
		{prices: []float64{101.5, 101.5}, expiry: 2, triggers: []Trigger{"", TriggerExpiry}},
	}

	for i, c := range tbl {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			tr := &retraceTracker{expiry: c.expiry, topLoss: -10, barrier1: 1, barrier2: 3, buyPrice: 100}
			for k, p := range c.prices {
				assert.Equal(t, c.triggers[k], tr.Advance(k+1, p), "step %d", k)
			}
		})
	}
}

func TestRetraceTracker_PassedFirstBarrier(t *testing.T) {
	tr := &retraceTracker{expiry: 100, topLoss: -10, barrier1: 1, barrier2: 3, buyPrice: 100}
	tr.Advance(1, 100.5)
	assert.False(t, tr.State().PassedFirstBarrier)
	tr.Advance(2, 102)
	assert.True(t, tr.State().PassedFirstBarrier)
}
