package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gamma-omg/tradexchange/internal/backtest"
	"github.com/gamma-omg/tradexchange/internal/chart"
	"github.com/gamma-omg/tradexchange/internal/config"
	"github.com/gamma-omg/tradexchange/internal/indicator"
	"github.com/gamma-omg/tradexchange/internal/market"
	"github.com/gamma-omg/tradexchange/internal/platform"
	"github.com/gamma-omg/tradexchange/internal/platform/emulator"
	"github.com/gamma-omg/tradexchange/internal/strategy"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const (
	defaultChartWidth  = 1600
	defaultChartHeight = 400
)

type seriesLoader func(ctx context.Context, log *slog.Logger, run config.Run) (*market.Series, error)

// Backtester executes every configured run on its own goroutine. Runs share
// nothing but the report and the metrics registry.
type Backtester struct {
	log    *slog.Logger
	cfg    config.Config
	load   seriesLoader
	report *backtest.ReportBuilder
	reg    *prometheus.Registry

	mu      sync.Mutex
	drivers map[string]*backtest.Driver
}

func NewBacktester(log *slog.Logger, cfg config.Config) *Backtester {
	return &Backtester{
		log:     log,
		cfg:     cfg,
		load:    platform.LoadSeries,
		report:  backtest.NewReportBuilder(log),
		reg:     prometheus.NewRegistry(),
		drivers: map[string]*backtest.Driver{},
	}
}

// Run blocks until every run finished. The first failing run interrupts the
// others. Reports of the runs that finished are written either way.
func (a *Backtester) Run(ctx context.Context) (map[string]*backtest.Summary, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	res := make(map[string]*backtest.Summary, len(a.cfg.Runs))
	for name, run := range a.cfg.Runs {
		g.Go(func() error {
			sum, err := a.runOne(ctx, name, run)
			if err != nil {
				return fmt.Errorf("run %s failed: %w", name, err)
			}

			mu.Lock()
			res[name] = sum
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	if werr := a.writeOutputs(); werr != nil {
		err = errors.Join(err, werr)
	}

	return res, err
}

// Status returns the current state of every started run.
func (a *Backtester) Status() map[string]backtest.Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	res := make(map[string]backtest.Status, len(a.drivers))
	for name, d := range a.drivers {
		res[name] = d.Status()
	}
	return res
}

func (a *Backtester) runOne(ctx context.Context, name string, run config.Run) (*backtest.Summary, error) {
	log := a.log.With(slog.String("pair", name))

	series, err := a.load(ctx, log, run)
	if err != nil {
		return nil, fmt.Errorf("failed to load candles: %w", err)
	}

	ex := emulator.NewExchange(log, run.InitialMoney, run.InitialCoins, emulator.Options{
		MinOrder:       run.MinOrder,
		BuyCommission:  run.BuyCommission,
		SellCommission: run.SellCommission,
	})

	model, err := strategy.LinearModelFromSettings(run.Strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction model: %w", err)
	}
	var predictor strategy.Predictor
	if model != nil {
		predictor = model
	}

	engine, err := strategy.New(log, run.Strategy, indicator.NewPipeline(series), ex, predictor)
	if err != nil {
		return nil, err
	}

	metrics, err := backtest.NewMetrics(a.reg, name)
	if err != nil {
		return nil, err
	}

	opts := backtest.Options{
		Warmup:   run.WarmupTicks,
		Cooldown: run.CooldownTicks,
		Chart:    chart.NewRecorder(a.cfg.Chart.Level),
		Metrics:  metrics,
	}

	if run.FeatureDump != "" {
		f, err := os.Create(run.FeatureDump)
		if err != nil {
			return nil, fmt.Errorf("failed to create feature dump: %w", err)
		}
		defer f.Close()
		opts.Dump = backtest.NewFeatureDump(f, engine)
	}

	d, err := backtest.NewDriver(log, series, ex, engine, opts)
	if err != nil {
		return nil, err
	}
	a.track(name, d)

	sum, err := d.Run(ctx)
	if err != nil {
		return nil, err
	}

	a.report.Submit(name, sum)
	logResults(log, sum)

	if err := a.plot(name, opts.Chart); err != nil {
		return nil, err
	}

	return sum, nil
}

func (a *Backtester) track(name string, d *backtest.Driver) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.drivers[name] = d
}

func (a *Backtester) plot(name string, rec *chart.Recorder) error {
	if a.cfg.Chart.Dir == "" || !rec.Enabled() {
		return nil
	}

	w, h := a.cfg.Chart.Width, a.cfg.Chart.Height
	if w == 0 {
		w = defaultChartWidth
	}
	if h == 0 {
		h = defaultChartHeight
	}

	if err := os.MkdirAll(a.cfg.Chart.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create chart dir: %w", err)
	}

	path := filepath.Join(a.cfg.Chart.Dir, name+".png")
	if err := rec.Plot(path, w, h); err != nil && !errors.Is(err, chart.ErrEmpty) {
		return err
	}
	return nil
}

func (a *Backtester) writeOutputs() error {
	var errs []error
	if a.cfg.Report != "" {
		errs = append(errs, a.report.WriteToFile(a.cfg.Report))
	}
	if a.cfg.Metrics != "" {
		errs = append(errs, backtest.WriteMetrics(a.cfg.Metrics, a.reg))
	}
	return errors.Join(errs...)
}

func logResults(log *slog.Logger, s *backtest.Summary) {
	log.Info("results",
		slog.String("state", string(s.State)),
		slog.String("initial_money", s.InitialMoney.String()),
		slog.String("initial_coins", s.InitialCoins.String()),
		slog.String("final_money", s.FinalMoney.String()),
		slog.String("final_coins", s.FinalCoins.String()),
		slog.String("net_money", s.NetMoney.String()),
		slog.String("net_coins", s.NetCoins.String()),
		slog.Float64("first_price", s.FirstPrice),
		slog.Float64("last_price", s.LastPrice),
		slog.Int("trades", s.TradeCount),
		slog.Float64("trade_sum", s.TradeSum),
		slog.Float64("trade_pct", s.TradePct),
		slog.Float64("hold_pct", s.HoldPct))

	for _, tr := range s.Triggers() {
		log.Info("close trigger", slog.String("trigger", string(tr)), slog.Float64("pct", s.TriggerBreakdown[tr]))
	}
}
