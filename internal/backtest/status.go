package backtest

import (
	"time"

	"github.com/shopspring/decimal"
)

type State string

const (
	StatePending     State = "pending"
	StateRunning     State = "running"
	StateCompleted   State = "completed"
	StateInterrupted State = "interrupted"
	StateFailed      State = "failed"
)

// Status is an immutable snapshot of a run.
type Status struct {
	RunID      string
	State      State
	Tick       int
	Done       int
	Total      int
	ETA        time.Duration
	Money      decimal.Decimal
	Coins      decimal.Decimal
	TradeCount int
	TradeSum   float64
}

// Progress is the fraction of ticks done, in [0, 1].
func (s Status) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Done) / float64(s.Total)
}

const smoothing = 0.3

// progress estimates the remaining time from an exponentially smoothed tick
// rate, sampled at most once per second of clock time.
type progress struct {
	clock    func() time.Time
	total    int
	last     time.Time
	lastDone int
	rate     float64
}

func newProgress(clock func() time.Time) *progress {
	return &progress{clock: clock}
}

func (p *progress) start(total int) {
	p.total = total
	p.last = p.clock()
	p.lastDone = 0
	p.rate = 0
}

func (p *progress) update(done int) (time.Duration, bool) {
	now := p.clock()
	dt := now.Sub(p.last)
	if dt < time.Second {
		return 0, false
	}

	r := float64(done-p.lastDone) / dt.Seconds()
	if p.rate == 0 {
		p.rate = r
	} else {
		p.rate = smoothing*r + (1-smoothing)*p.rate
	}
	p.last = now
	p.lastDone = done

	if p.rate <= 0 {
		return 0, true
	}

	left := float64(p.total-done) / p.rate
	return time.Duration(left * float64(time.Second)), true
}
