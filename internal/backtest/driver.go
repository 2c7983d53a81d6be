package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gamma-omg/tradexchange/internal/chart"
	"github.com/gamma-omg/tradexchange/internal/market"
	"github.com/gamma-omg/tradexchange/internal/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrWarmup   = errors.New("warm-up is shorter than the strategy look-back")
	ErrNoTicks  = errors.New("series has no ticks after warm-up")
	ErrCooldown = errors.New("cooldown cannot be negative")
)

type exchange interface {
	SetPrice(epoch int64, price float64)
	Money() decimal.Decimal
	Coins() decimal.Decimal
}

// Strategy is what the driver feeds ticks to. *strategy.Engine implements it.
type Strategy interface {
	OnTick(i int) ([]strategy.Operation, error)
	OnDrawChart(i int) []chart.Point
	Lookback() int
	SetSellOnly(v bool)
	TradeCount() int
	TradeSum() float64
}

// TickError is a fatal error raised while processing the tick at Index.
type TickError struct {
	Index int
	Err   error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d: %v", e.Index, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}

type Options struct {
	Warmup   int
	Cooldown int
	Chart    *chart.Recorder
	Metrics  *Metrics
	Dump     *FeatureDump
	Clock    func() time.Time
}

// Driver replays a series through a strategy against a simulated exchange.
// A Driver runs once.
type Driver struct {
	log    *slog.Logger
	id     string
	series *market.Series
	ex     exchange
	strat  Strategy
	opts   Options

	cancelled atomic.Bool
	status    atomic.Pointer[Status]
	progress  *progress
}

func NewDriver(log *slog.Logger, series *market.Series, ex exchange, strat Strategy, opts Options) (*Driver, error) {
	if opts.Warmup < strat.Lookback() {
		return nil, fmt.Errorf("%w: warmup %d, look-back %d", ErrWarmup, opts.Warmup, strat.Lookback())
	}
	if opts.Warmup > series.LastIndex() {
		return nil, fmt.Errorf("%w: warmup %d, %d candles", ErrNoTicks, opts.Warmup, series.Len())
	}
	if opts.Cooldown < 0 {
		return nil, ErrCooldown
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	id := uuid.NewString()
	d := &Driver{
		log:      log.With(slog.String("run", id)),
		id:       id,
		series:   series,
		ex:       ex,
		strat:    strat,
		opts:     opts,
		progress: newProgress(opts.Clock),
	}
	d.status.Store(&Status{
		RunID: id,
		State: StatePending,
		Total: series.LastIndex() - opts.Warmup + 1,
		Money: ex.Money(),
		Coins: ex.Coins(),
	})

	return d, nil
}

func (d *Driver) ID() string {
	return d.id
}

// Cancel asks a running loop to stop before the next tick. The run then
// finishes as interrupted.
func (d *Driver) Cancel() {
	d.cancelled.Store(true)
}

// Status is safe to call from any goroutine.
func (d *Driver) Status() Status {
	return *d.status.Load()
}

func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	first := d.opts.Warmup
	last := d.series.LastIndex()
	sellOnlyFrom := last - d.opts.Cooldown
	total := last - first + 1

	sum := newSummary(d.id, d.ex.Money(), d.ex.Coins(), d.series.At(first).Close)
	d.progress.start(total)
	d.publish(StateRunning, first, 0, sum, 0)

	d.log.Info("backtest started",
		slog.Int("ticks", total),
		slog.Int("warmup", first),
		slog.Int("cooldown", d.opts.Cooldown))

	state := StateCompleted
	sellOnly := false
	tick := first
	for i := first; i <= last; i++ {
		if d.cancelled.Load() || ctx.Err() != nil {
			state = StateInterrupted
			break
		}

		tick = i
		c := d.series.At(i)
		if !sellOnly && i >= sellOnlyFrom {
			d.strat.SetSellOnly(true)
			sellOnly = true
		}

		d.ex.SetPrice(c.Epoch, c.Close)
		ops, err := d.strat.OnTick(i)
		if err != nil {
			return nil, d.fail(i, sum, err)
		}

		sum.record(c, ops)
		d.record(i, c, ops)
		if err := d.opts.Dump.Write(i, c, ops); err != nil {
			return nil, d.fail(i, sum, err)
		}

		if eta, ok := d.progress.update(sum.Ticks); ok {
			d.publish(StateRunning, i, sum.Ticks, sum, eta)
			d.log.Info("progress",
				slog.Int("done", sum.Ticks),
				slog.Int("total", total),
				slog.Duration("eta", eta),
				slog.Int("trades", sum.TradeCount),
				slog.Float64("trade_sum", sum.TradeSum))
		}
	}

	sum.finish(state, d.ex.Money(), d.ex.Coins(), d.strat.TradeCount(), d.strat.TradeSum())
	d.publish(state, tick, sum.Ticks, sum, 0)
	d.opts.Metrics.finish(sum)

	d.log.Info("backtest finished",
		slog.String("state", string(state)),
		slog.Int("ticks", sum.Ticks),
		slog.Int("trades", sum.TradeCount),
		slog.String("net_money", sum.NetMoney.String()),
		slog.String("net_coins", sum.NetCoins.String()))

	return sum, nil
}

func (d *Driver) fail(i int, sum *Summary, err error) error {
	d.publish(StateFailed, i, sum.Ticks, sum, 0)
	d.log.Error("backtest failed", slog.Int("tick", i), slog.Any("err", err))
	return &TickError{Index: i, Err: err}
}

func (d *Driver) record(i int, c market.Candle, ops []strategy.Operation) {
	d.opts.Metrics.tick(ops, d.ex.Money())

	rec := d.opts.Chart
	if !rec.Enabled() {
		return
	}

	rec.AddCandle(c)
	for _, op := range ops {
		kind := chart.MarkerBuy
		if op.Type == strategy.OpSell {
			kind = chart.MarkerSell
		}
		rec.AddMarker(chart.Marker{Kind: kind, Epoch: op.Epoch, Price: op.Price, Label: op.Description})
	}
	rec.Add(d.strat.OnDrawChart(i)...)
}

func (d *Driver) publish(state State, tick, done int, sum *Summary, eta time.Duration) {
	d.status.Store(&Status{
		RunID:      d.id,
		State:      state,
		Tick:       tick,
		Done:       done,
		Total:      d.progress.total,
		ETA:        eta,
		Money:      d.ex.Money(),
		Coins:      d.ex.Coins(),
		TradeCount: sum.TradeCount,
		TradeSum:   sum.TradeSum,
	})
}
