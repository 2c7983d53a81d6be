package strategy

import (
	"fmt"
	"testing"

	"github.com/gamma-omg/tradexchange/internal/config"
	"github.com/gamma-omg/tradexchange/internal/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig(barrierSettings)
	require.NoError(t, err)

	assert.Equal(t, PolicyBarrier, cfg.ClosePolicy)
	assert.Equal(t, 3, cfg.OpenTradesCount)
	assert.Equal(t, 0, cfg.SellCooldown)
	assert.Equal(t, int64(0), cfg.StopBuyEpoch)
	assert.Equal(t, 1, cfg.ModelTimesteps)
	assert.Equal(t, 20, cfg.TrendEMAPeriod)
	assert.Equal(t, 14, cfg.ATRPeriod)
	assert.Equal(t, 1.5, cfg.TopBarrierMultiplier)
	assert.Positive(t, cfg.TimeWeightTop)
	assert.Positive(t, cfg.TimeWeightBottom)
}

func TestParseConfig_Optional(t *testing.T) {
	cfg, err := ParseConfig(settings(marginSettings,
		"sellCooldown", "3",
		"stopBuyEpoch", "1600000000",
		"emaPeriods", "12,26",
		"modelFeatures", "norm(macd(12,26),30);rsi(14)",
		"modelTimesteps", "4",
	))
	require.NoError(t, err)

	assert.Equal(t, PolicyMargin, cfg.ClosePolicy)
	assert.Equal(t, 5.0, cfg.MarginToSell)
	assert.Equal(t, -50.0, cfg.TopLoss)
	assert.Equal(t, 3, cfg.SellCooldown)
	assert.Equal(t, int64(1600000000), cfg.StopBuyEpoch)
	assert.Equal(t, []int{12, 26}, cfg.EMAPeriods)
	assert.Equal(t, []string{"norm(macd(12,26),30)", "rsi(14)"}, cfg.ModelFeatures)
	assert.Equal(t, 4, cfg.ModelTimesteps)
}

func TestParseConfig_Errors(t *testing.T) {
	without := func(base config.Settings, key string) config.Settings {
		s := settings(base)
		delete(s, key)
		return s
	}

	tbl := []struct {
		settings config.Settings
		err      error
	}{
		{settings: without(marginSettings, "openTradesCount"), err: config.ErrMissingKey},
		{settings: without(marginSettings, "buyCooldown"), err: config.ErrMissingKey},
		{settings: without(marginSettings, "balanceMultiplier"), err: config.ErrMissingKey},
		{settings: without(marginSettings, "entry"), err: config.ErrMissingKey},
		{settings: without(marginSettings, "tradeExpiry"), err: config.ErrMissingKey},
		{settings: without(marginSettings, "marginToSell"), err: config.ErrMissingKey},
		{settings: without(barrierSettings, "atrPeriod"), err: config.ErrMissingKey},
		{settings: settings(marginSettings, "closePolicy", "retrace"), err: config.ErrMissingKey},
		{settings: settings(marginSettings, "closePolicy", "magic"), err: config.ErrInvalidValue},
		{settings: settings(marginSettings, "openTradesCount", "five"), err: config.ErrInvalidValue},
		{settings: settings(marginSettings, "openTradesCount", "0"), err: config.ErrInvalidValue},
		{settings: settings(marginSettings, "balanceMultiplier", "0"), err: config.ErrInvalidValue},
		{settings: settings(marginSettings, "emaPeriods", "12,x"), err: config.ErrInvalidValue},
		{settings: settings(marginSettings, "sellCooldown", "-1"), err: config.ErrInvalidValue},
		{settings: settings(barrierSettings, "trendEmaPeriod", "0"), err: config.ErrInvalidValue},
		{settings: settings(marginSettings, "trendEmaPeriod", "-3"), err: config.ErrInvalidValue},
		{settings: settings(barrierSettings, "atrPeriod", "0"), err: config.ErrInvalidValue},
		{settings: settings(marginSettings, "closePolicy", "retrace", "sellBarrier1", "3", "sellBarrier2", "1"), err: config.ErrInvalidValue},
	}

	for i, c := range tbl {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			_, err := ParseConfig(c.settings)
			assert.ErrorIs(t, err, c.err)
		})
	}
}

func TestNew_Errors(t *testing.T) {
	tbl := []struct {
		settings  config.Settings
		predictor Predictor
		err       error
	}{
		{settings: settings(marginSettings, "entry", "sometimes"), err: config.ErrInvalidValue},
		{settings: settings(marginSettings, "entry", "rule:macd(12,26)"), err: config.ErrInvalidValue},
		{settings: settings(marginSettings, "entry", "rule:macd(12,26)<x"), err: config.ErrInvalidValue},
		{settings: settings(marginSettings, "entry", "prediction:over:0.5"), err: ErrNoPredictor},
		{settings: settings(marginSettings, "exitPrediction", "over:0.5"), err: ErrNoPredictor},
		{settings: settings(marginSettings, "entry", "prediction:above:0.5", "modelFeatures", "close"), predictor: &scriptedPredictor{}, err: config.ErrInvalidValue},
		{settings: settings(marginSettings, "entry", "prediction:over:0.5"), predictor: &scriptedPredictor{}, err: config.ErrMissingKey},
	}

	for i, c := range tbl {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			pipe := indicator.NewPipeline(closes(t, 1, 2, 3))
			_, err := New(discard(), c.settings, pipe, &mockExchange{}, c.predictor)
			assert.ErrorIs(t, err, c.err)
		})
	}
}
