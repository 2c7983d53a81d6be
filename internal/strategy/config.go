package strategy

import (
	"fmt"

	"github.com/gamma-omg/tradexchange/internal/config"
)

const (
	PolicyBarrier = "barrier"
	PolicyMargin  = "margin"
	PolicyRetrace = "retrace"
)

type Config struct {
	OpenTradesCount   int
	BuyCooldown       int
	SellCooldown      int
	BalanceMultiplier float64
	Entry             string
	ExitPrediction    string
	StopBuyEpoch      int64
	TradeExpiry       int
	ClosePolicy       string

	ATRPeriod               int
	TopBarrierMultiplier    float64
	BottomBarrierMultiplier float64
	PriceWeightTop          float64
	TimeWeightTop           float64
	PriceWeightBottom       float64
	TimeWeightBottom        float64
	TrendEMAPeriod          int

	MarginToSell float64
	TopLoss      float64
	SellBarrier1 float64
	SellBarrier2 float64

	ModelFeatures  []string
	ModelTimesteps int
	EMAPeriods     []int
}

// ParseConfig reads the flat strategy settings. Every required key of the
// selected close policy must be present.
func ParseConfig(s config.Settings) (cfg Config, err error) {
	p := settingsParser{s: s}

	cfg.OpenTradesCount = p.reqInt("openTradesCount")
	cfg.BuyCooldown = p.reqInt("buyCooldown")
	cfg.BalanceMultiplier = p.reqFloat("balanceMultiplier")
	cfg.Entry = p.reqString("entry")
	cfg.TradeExpiry = p.reqInt("tradeExpiry")

	cfg.ClosePolicy = s.StringOr("closePolicy", PolicyBarrier)
	cfg.SellCooldown = p.optInt("sellCooldown", 0)
	cfg.StopBuyEpoch = p.optInt64("stopBuyEpoch", 0)
	cfg.ExitPrediction = s.StringOr("exitPrediction", "")
	cfg.ModelTimesteps = p.optInt("modelTimesteps", 1)
	cfg.TrendEMAPeriod = p.optInt("trendEmaPeriod", 20)
	if p.err == nil && s.Has("modelFeatures") {
		cfg.ModelFeatures, p.err = s.List("modelFeatures", ";")
	}
	if p.err == nil && s.Has("emaPeriods") {
		cfg.EMAPeriods, p.err = s.Ints("emaPeriods")
	}

	switch cfg.ClosePolicy {
	case PolicyBarrier:
		cfg.ATRPeriod = p.reqInt("atrPeriod")
		cfg.TopBarrierMultiplier = p.reqFloat("topBarrierMultiplier")
		cfg.BottomBarrierMultiplier = p.reqFloat("bottomBarrierMultiplier")
		cfg.PriceWeightTop = p.optFloat("priceWeightTop", 0.5)
		cfg.TimeWeightTop = p.optFloat("timeWeightTop", 0.01)
		cfg.PriceWeightBottom = p.optFloat("priceWeightBottom", 0.5)
		cfg.TimeWeightBottom = p.optFloat("timeWeightBottom", 0.01)
	case PolicyMargin:
		cfg.MarginToSell = p.reqFloat("marginToSell")
		cfg.TopLoss = p.reqFloat("topLoss")
	case PolicyRetrace:
		cfg.TopLoss = p.reqFloat("topLoss")
		cfg.SellBarrier1 = p.reqFloat("sellBarrier1")
		cfg.SellBarrier2 = p.reqFloat("sellBarrier2")
	default:
		if p.err == nil {
			p.err = fmt.Errorf("%w: closePolicy=%q", config.ErrInvalidValue, cfg.ClosePolicy)
		}
	}

	if p.err != nil {
		return cfg, p.err
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch {
	case c.OpenTradesCount < 1:
		return fmt.Errorf("%w: openTradesCount must be at least 1", config.ErrInvalidValue)
	case c.BalanceMultiplier <= 0:
		return fmt.Errorf("%w: balanceMultiplier must be positive", config.ErrInvalidValue)
	case c.BuyCooldown < 0 || c.SellCooldown < 0:
		return fmt.Errorf("%w: cooldowns cannot be negative", config.ErrInvalidValue)
	case c.TradeExpiry < 1:
		return fmt.Errorf("%w: tradeExpiry must be at least 1", config.ErrInvalidValue)
	case c.ModelTimesteps < 1:
		return fmt.Errorf("%w: modelTimesteps must be at least 1", config.ErrInvalidValue)
	case c.TrendEMAPeriod < 1:
		return fmt.Errorf("%w: trendEmaPeriod must be at least 1", config.ErrInvalidValue)
	case c.ClosePolicy == PolicyBarrier && c.ATRPeriod < 1:
		return fmt.Errorf("%w: atrPeriod must be at least 1", config.ErrInvalidValue)
	case c.ClosePolicy == PolicyRetrace && c.SellBarrier2 <= c.SellBarrier1:
		return fmt.Errorf("%w: sellBarrier2 must be above sellBarrier1", config.ErrInvalidValue)
	}

	for _, p := range c.EMAPeriods {
		if p < 1 {
			return fmt.Errorf("%w: emaPeriods must be positive", config.ErrInvalidValue)
		}
	}

	return nil
}

// settingsParser keeps the first error so that a block of keys reads flat.
type settingsParser struct {
	s   config.Settings
	err error
}

func (p *settingsParser) reqString(key string) string {
	if p.err != nil {
		return ""
	}
	v, err := p.s.String(key)
	p.err = err
	return v
}

func (p *settingsParser) reqInt(key string) int {
	if p.err != nil {
		return 0
	}
	v, err := p.s.Int(key)
	p.err = err
	return v
}

func (p *settingsParser) optInt(key string, def int) int {
	if p.err != nil {
		return def
	}
	v, err := p.s.IntOr(key, def)
	p.err = err
	return v
}

func (p *settingsParser) optInt64(key string, def int64) int64 {
	if p.err != nil {
		return def
	}
	v, err := p.s.Int64Or(key, def)
	p.err = err
	return v
}

func (p *settingsParser) reqFloat(key string) float64 {
	if p.err != nil {
		return 0
	}
	v, err := p.s.Float(key)
	p.err = err
	return v
}

func (p *settingsParser) optFloat(key string, def float64) float64 {
	if p.err != nil {
		return def
	}
	v, err := p.s.FloatOr(key, def)
	p.err = err
	return v
}
