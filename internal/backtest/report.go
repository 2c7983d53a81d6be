package backtest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ReportBuilder collects run summaries into one JSON report. Runs may submit
// concurrently.
type ReportBuilder struct {
	log    *slog.Logger
	report JsonReport
	spent  decimal.Decimal
	gained decimal.Decimal
	mu     sync.Mutex
}

type JsonReport struct {
	TotalSpend   string             `json:"total_spend,omitempty"`
	TotalGain    string             `json:"total_gain,omitempty"`
	TotalGainPct float64            `json:"total_gain_pct,omitempty"`
	Runs         map[string]JsonRun `json:"runs,omitempty"`
}

type JsonRun struct {
	RunID        string             `json:"run_id"`
	State        State              `json:"state"`
	Ticks        int                `json:"ticks"`
	InitialMoney string             `json:"initial_money"`
	InitialCoins string             `json:"initial_coins"`
	FinalMoney   string             `json:"final_money"`
	FinalCoins   string             `json:"final_coins"`
	NetMoney     string             `json:"net_money"`
	NetCoins     string             `json:"net_coins"`
	FirstPrice   float64            `json:"first_price"`
	LastPrice    float64            `json:"last_price"`
	TradeCount   int                `json:"trade_count"`
	TradeSum     float64            `json:"trade_sum"`
	TradePct     float64            `json:"trade_pct"`
	HoldPct      float64            `json:"hold_pct"`
	OpenAtEnd    int                `json:"open_at_end,omitempty"`
	Triggers     map[string]float64 `json:"triggers,omitempty"`
	Deals        []JsonDeal         `json:"deals,omitempty"`
}

type JsonDeal struct {
	Code     int       `json:"code"`
	BuyTime  time.Time `json:"buy_time,omitzero"`
	SellTime time.Time `json:"sell_time,omitzero"`
	Trigger  string    `json:"trigger,omitempty"`
	Spend    string    `json:"spend,omitempty"`
	Gain     string    `json:"gain,omitempty"`
	GainPct  float64   `json:"gain_pct,omitempty"`
}

func NewReportBuilder(log *slog.Logger) *ReportBuilder {
	return &ReportBuilder{
		log: log,
		report: JsonReport{
			Runs: map[string]JsonRun{},
		},
	}
}

// Submit adds the summary of the run called name. Spend and gain of a deal
// are the coin value at the buy and at the sell price.
func (r *ReportBuilder) Submit(name string, s *Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run := JsonRun{
		RunID:        s.RunID,
		State:        s.State,
		Ticks:        s.Ticks,
		InitialMoney: s.InitialMoney.String(),
		InitialCoins: s.InitialCoins.String(),
		FinalMoney:   s.FinalMoney.String(),
		FinalCoins:   s.FinalCoins.String(),
		NetMoney:     s.NetMoney.String(),
		NetCoins:     s.NetCoins.String(),
		FirstPrice:   s.FirstPrice,
		LastPrice:    s.LastPrice,
		TradeCount:   s.TradeCount,
		TradeSum:     s.TradeSum,
		TradePct:     s.TradePct,
		HoldPct:      s.HoldPct,
		OpenAtEnd:    s.OpenAtEnd,
		Triggers:     map[string]float64{},
	}
	for tr, pct := range s.TriggerBreakdown {
		run.Triggers[string(tr)] = pct
	}

	for _, t := range s.Trades {
		amount := decimal.NewFromFloat(t.Amount)
		spend := decimal.NewFromFloat(t.BuyPrice).Mul(amount)
		gain := decimal.NewFromFloat(t.SellPrice).Mul(amount)

		pct := 0.0
		if !spend.IsZero() {
			pct, _ = gain.Div(spend).Float64()
		}

		run.Deals = append(run.Deals, JsonDeal{
			Code:     t.Code,
			BuyTime:  time.Unix(t.BuyEpoch, 0).UTC(),
			SellTime: time.Unix(t.SellEpoch, 0).UTC(),
			Trigger:  string(t.Trigger),
			Spend:    spend.String(),
			Gain:     gain.String(),
			GainPct:  pct,
		})

		r.spent = r.spent.Add(spend)
		r.gained = r.gained.Add(gain)
	}
	r.report.Runs[name] = run

	if r.spent.IsZero() {
		return
	}

	r.report.TotalSpend = r.spent.String()
	r.report.TotalGain = r.gained.String()
	r.report.TotalGainPct, _ = r.gained.Div(r.spent).Float64()

	r.log.Info("run reported",
		slog.String("run", name),
		slog.Int("deals", len(run.Deals)),
		slog.Float64("total_gain_pct", r.report.TotalGainPct))
}

func (r *ReportBuilder) Write(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(r.report); err != nil {
		return fmt.Errorf("failed to write backtest report: %w", err)
	}

	return nil
}

func (r *ReportBuilder) WriteToFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	return r.Write(f)
}
