package strategy

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gamma-omg/tradexchange/internal/chart"
	"github.com/gamma-omg/tradexchange/internal/config"
	"github.com/gamma-omg/tradexchange/internal/indicator"
	"github.com/gamma-omg/tradexchange/internal/market"
	"github.com/gamma-omg/tradexchange/internal/platform/emulator"
)

var ErrTickOrder = errors.New("ticks must strictly increase")

type exchange interface {
	Buy(coins float64) (emulator.Fill, error)
	Sell(coins float64) (emulator.Fill, error)
	MoneyBalance() float64
	MaxBuyAmount() float64
	MinOrder() float64
}

// Engine decides on every tick whether to open a trade and which open
// trades to close. An Engine belongs to a single run.
type Engine struct {
	log        *slog.Logger
	cfg        Config
	series     *market.Series
	exchange   exchange
	predictor  Predictor
	allocator  market.SlotAllocator
	entry      entrySignal
	exit       *predictionTrigger
	newTracker trackerFactory
	features   []indicator.Indicator
	emas       []indicator.Indicator
	lookback   int

	open       []*OpenTrade
	buyLock    int
	sellLock   int
	nextCode   int
	lastTick   int
	sellOnly   bool
	tradeCount int
	tradeSum   float64
	buyScores  scores
	sellScores scores
}

// New parses the settings and resolves every indicator the strategy needs.
// predictor may be nil when neither entry nor exitPrediction use it.
func New(log *slog.Logger, settings config.Settings, pipe *indicator.Pipeline, ex exchange, predictor Predictor) (*Engine, error) {
	cfg, err := ParseConfig(settings)
	if err != nil {
		return nil, fmt.Errorf("invalid strategy settings: %w", err)
	}

	e := &Engine{
		log:       log,
		cfg:       cfg,
		series:    pipe.Series(),
		exchange:  ex,
		predictor: predictor,
		allocator: market.SlotAllocator{Slots: cfg.OpenTradesCount, Multiplier: cfg.BalanceMultiplier},
		nextCode:  1,
		lastTick:  -1,
	}

	if e.entry, err = newEntrySignal(cfg.Entry, pipe, &e.buyScores, predictor != nil); err != nil {
		return nil, fmt.Errorf("invalid entry signal: %w", err)
	}

	if cfg.ExitPrediction != "" {
		if predictor == nil {
			return nil, fmt.Errorf("invalid exit signal: %w", ErrNoPredictor)
		}
		if e.exit, err = parsePredictionTrigger(cfg.ExitPrediction, &e.sellScores, false); err != nil {
			return nil, fmt.Errorf("invalid exit signal: %w", err)
		}
	}

	if e.newTracker, err = newTrackerFactory(cfg, pipe); err != nil {
		return nil, fmt.Errorf("failed to create close policy: %w", err)
	}

	for _, f := range cfg.ModelFeatures {
		ind, err := pipe.Resolve(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve model feature: %w", err)
		}
		e.features = append(e.features, ind)
	}
	if predictor != nil && len(e.features) == 0 {
		return nil, fmt.Errorf("%w: modelFeatures is required with a predictor", config.ErrMissingKey)
	}

	for _, p := range cfg.EMAPeriods {
		ind, err := pipe.Resolve(fmt.Sprintf("ema(%d)", p))
		if err != nil {
			return nil, err
		}
		e.emas = append(e.emas, ind)
	}

	e.lookback = pipe.Lookback()
	if predictor != nil {
		e.lookback += cfg.ModelTimesteps - 1
	}

	return e, nil
}

// Lookback is the first tick the engine may be asked about.
func (e *Engine) Lookback() int {
	return e.lookback
}

func (e *Engine) Config() Config {
	return e.cfg
}

// SetSellOnly stops new trades from opening. Open trades still close.
func (e *Engine) SetSellOnly(v bool) {
	e.sellOnly = v
}

func (e *Engine) OnTick(i int) ([]Operation, error) {
	if i <= e.lastTick {
		return nil, fmt.Errorf("%w: %d after %d", ErrTickOrder, i, e.lastTick)
	}
	e.lastTick = i

	candle := e.series.At(i)
	if e.predictor != nil {
		if err := e.predict(i); err != nil {
			return nil, err
		}
	}

	canBuy := e.buyLock == 0
	if e.buyLock > 0 {
		e.buyLock--
	}
	canSell := e.sellLock == 0
	if e.sellLock > 0 {
		e.sellLock--
	}

	var ops []Operation
	reason := e.entry.Check(i)
	opened := false
	if reason != "" && canBuy && e.openAllowed(candle) {
		op, ok, err := e.openTrade(i, candle, reason)
		if err != nil {
			return nil, err
		}
		if ok {
			ops = append(ops, op)
			opened = true
		}
	}

	for _, t := range e.open {
		if t.Tick != i {
			t.pending = t.tracker.Advance(i, candle.Close)
		}
	}

	if opened || !canSell {
		return ops, nil
	}

	exitReason := ""
	if e.exit != nil {
		exitReason = e.exit.Check(i)
	}

	sold := false
	remaining := e.open[:0]
	for _, t := range e.open {
		trigger := t.pending
		if trigger == "" && exitReason != "" {
			trigger = TriggerPrediction
		}
		if trigger == "" {
			remaining = append(remaining, t)
			continue
		}

		op, err := e.closeTrade(i, candle, t, trigger)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		sold = true
	}
	clear(e.open[len(remaining):])
	e.open = remaining

	if sold {
		e.sellLock = e.cfg.SellCooldown
	}

	return ops, nil
}

func (e *Engine) openAllowed(c market.Candle) bool {
	if e.sellOnly || len(e.open) >= e.cfg.OpenTradesCount {
		return false
	}
	return e.cfg.StopBuyEpoch == 0 || c.Epoch < e.cfg.StopBuyEpoch
}

func (e *Engine) openTrade(i int, c market.Candle, reason string) (op Operation, ok bool, err error) {
	money := e.allocator.GetSize(e.exchange.MoneyBalance(), len(e.open))
	coins := min(money/c.Close, e.exchange.MaxBuyAmount())
	if coins <= 0 || coins*c.Close < e.exchange.MinOrder() {
		e.log.Debug("allocation below minimum order", slog.Int("tick", i), slog.Float64("money", money))
		return op, false, nil
	}

	fill, err := e.exchange.Buy(coins)
	if err != nil {
		return op, false, fmt.Errorf("failed to open trade: %w", err)
	}

	t := &OpenTrade{
		BuyPrice: fill.Price,
		Amount:   fill.Amount,
		Epoch:    c.Epoch,
		Tick:     i,
		Code:     e.nextCode,
		tracker:  e.newTracker(i, fill.Price),
	}
	e.nextCode++
	e.open = append(e.open, t)
	e.buyLock = e.cfg.BuyCooldown
	e.entry.Consume()

	e.log.Info("trade opened", slog.Int("code", t.Code), slog.Int("tick", i), slog.Float64("price", t.BuyPrice), slog.Float64("amount", t.Amount))

	return Operation{
		Type:        OpBuy,
		Tick:        i,
		Epoch:       c.Epoch,
		Price:       fill.Price,
		Amount:      t.Amount,
		Description: fmt.Sprintf("Open #%d at $%.3f: %s", t.Code, t.BuyPrice, reason),
		Code:        t.Code,
	}, true, nil
}

func (e *Engine) closeTrade(i int, c market.Candle, t *OpenTrade, trigger Trigger) (Operation, error) {
	fill, err := e.exchange.Sell(t.Amount)
	if err != nil {
		return Operation{}, fmt.Errorf("failed to close trade #%d: %w", t.Code, err)
	}

	diff := fill.Price - t.BuyPrice
	profit := diff * t.Amount
	e.tradeSum += profit
	e.tradeCount++

	e.log.Info("trade closed", slog.Int("code", t.Code), slog.Int("tick", i), slog.String("trigger", string(trigger)),
		slog.Float64("price", fill.Price), slog.Float64("profit", profit))

	desc := fmt.Sprintf("Close #%d at %.1f%% (earnings $%.3f) after %d ticks: %s",
		t.Code, diff*100/t.BuyPrice, profit, i-t.Tick, trigger)

	return Operation{
		Type:        OpSell,
		Tick:        i,
		Epoch:       c.Epoch,
		Price:       fill.Price,
		Amount:      t.Amount,
		Description: desc,
		Code:        t.Code,
		Trigger:     trigger,
		BuyPrice:    t.BuyPrice,
		Profit:      profit,
	}, nil
}

func (e *Engine) predict(i int) error {
	window := e.FeatureWindow(i)
	buy, sell, err := e.predictor.Predict(window)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	e.buyScores.push(buy)
	e.sellScores.push(sell)
	return nil
}

// FeatureWindow returns the feature rows of the last ModelTimesteps ticks
// up to and including i.
func (e *Engine) FeatureWindow(i int) [][]float64 {
	from := max(0, i-e.cfg.ModelTimesteps+1)
	window := make([][]float64, 0, i-from+1)
	for j := from; j <= i; j++ {
		window = append(window, e.FeatureRow(j))
	}
	return window
}

func (e *Engine) FeatureRow(i int) []float64 {
	row := make([]float64, len(e.features))
	for k, f := range e.features {
		row[k] = f.Value(i)
	}
	return row
}

func (e *Engine) FeatureNames() []string {
	return e.cfg.ModelFeatures
}

// OnDrawChart returns what the engine wants drawn for tick i.
func (e *Engine) OnDrawChart(i int) []chart.Point {
	epoch := e.series.At(i).Epoch

	var pts []chart.Point
	for k, ema := range e.emas {
		pts = append(pts, chart.Point{Chart: chart.PriceChart, Series: fmt.Sprintf("ema(%d)", e.cfg.EMAPeriods[k]), Epoch: epoch, Value: ema.Value(i)})
	}
	if e.predictor != nil {
		pts = append(pts,
			chart.Point{Chart: "ml", Series: "buy", Epoch: epoch, Value: e.buyScores.current},
			chart.Point{Chart: "ml", Series: "sell", Epoch: epoch, Value: e.sellScores.current},
		)
		if t, ok := e.entry.(*predictionTrigger); ok {
			pts = append(pts, chart.Point{Chart: "ml", Series: "buy trigger", Epoch: epoch, Value: t.barrier})
		}
	}
	pts = append(pts, chart.Point{Chart: "$", Series: "profit", Epoch: epoch, Value: e.tradeSum})

	for _, t := range e.open {
		pts = append(pts, t.tracker.Points(t.Code, epoch)...)
	}

	return pts
}

type TradeView struct {
	OpenTrade
	State TrackerState
}

func (e *Engine) OpenTrades() []TradeView {
	res := make([]TradeView, len(e.open))
	for k, t := range e.open {
		res[k] = TradeView{OpenTrade: *t, State: t.tracker.State()}
	}
	return res
}

func (e *Engine) TradeCount() int {
	return e.tradeCount
}

func (e *Engine) TradeSum() float64 {
	return e.tradeSum
}
