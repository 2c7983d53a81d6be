package backtest

import (
	"fmt"

	"github.com/gamma-omg/tradexchange/internal/strategy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Metrics are labelled with the run name so that concurrent runs can share
// one registry. A nil *Metrics records nothing.
type Metrics struct {
	ticks    prometheus.Counter
	ops      *prometheus.CounterVec
	closes   *prometheus.CounterVec
	money    prometheus.Gauge
	tradeSum prometheus.Gauge
	netMoney prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer, run string) (*Metrics, error) {
	labels := prometheus.Labels{"run": run}

	m := &Metrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "backtest_ticks_total",
			Help:        "Ticks processed by the strategy",
			ConstLabels: labels,
		}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "backtest_operations_total",
			Help:        "Executed operations by type",
			ConstLabels: labels,
		}, []string{"type"}),
		closes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "backtest_closes_total",
			Help:        "Closed trades by trigger",
			ConstLabels: labels,
		}, []string{"trigger"}),
		money: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "backtest_money_balance",
			Help:        "Money balance after the last processed tick",
			ConstLabels: labels,
		}),
		tradeSum: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "backtest_trade_sum",
			Help:        "Realized profit of closed trades",
			ConstLabels: labels,
		}),
		netMoney: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "backtest_net_money",
			Help:        "Money balance change over the run",
			ConstLabels: labels,
		}),
	}

	for _, c := range []prometheus.Collector{m.ticks, m.ops, m.closes, m.money, m.tradeSum, m.netMoney} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register backtest metrics: %w", err)
		}
	}

	return m, nil
}

func (m *Metrics) tick(ops []strategy.Operation, money decimal.Decimal) {
	if m == nil {
		return
	}

	m.ticks.Inc()
	for _, op := range ops {
		m.ops.WithLabelValues(string(op.Type)).Inc()
		if op.Type == strategy.OpSell {
			m.closes.WithLabelValues(string(op.Trigger)).Inc()
			m.tradeSum.Add(op.Profit)
		}
	}
	m.money.Set(money.InexactFloat64())
}

func (m *Metrics) finish(s *Summary) {
	if m == nil {
		return
	}

	m.tradeSum.Set(s.TradeSum)
	m.netMoney.Set(s.NetMoney.InexactFloat64())
}

// WriteMetrics dumps everything gathered by g in the node exporter textfile
// format.
func WriteMetrics(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
