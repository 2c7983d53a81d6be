package indicator

import (
	"fmt"

	"github.com/gamma-omg/tradexchange/internal/market"
)

// Pipeline resolves textual references into indicators over one series.
// Equal references and sub-references share one instance and its cache.
// A Pipeline belongs to a single backtest run and is not safe for
// concurrent use.
type Pipeline struct {
	series   *market.Series
	registry Registry
	resolved map[string]Indicator
	lookback int
}

func NewPipeline(s *market.Series) *Pipeline {
	return NewPipelineWithRegistry(s, DefaultRegistry())
}

func NewPipelineWithRegistry(s *market.Series, r Registry) *Pipeline {
	return &Pipeline{
		series:   s,
		registry: r,
		resolved: make(map[string]Indicator),
	}
}

func (p *Pipeline) Resolve(ref string) (Indicator, error) {
	n, err := parse(ref)
	if err != nil {
		return nil, err
	}

	return p.resolve(n)
}

func (p *Pipeline) resolve(n *node) (Indicator, error) {
	key := n.String()
	if ind, ok := p.resolved[key]; ok {
		return ind, nil
	}

	args := make([]Arg, len(n.args))
	for i, a := range n.args {
		if a.isNum {
			args[i] = Arg{Number: a.number}
			continue
		}

		ind, err := p.resolve(a)
		if err != nil {
			return nil, err
		}
		args[i] = Arg{Indicator: ind}
	}

	ind, err := p.registry.create(n.name, p.series, args)
	if err != nil {
		return nil, err
	}

	p.resolved[key] = ind
	p.lookback = max(p.lookback, ind.Lookback())
	return ind, nil
}

func (p *Pipeline) Value(ref string, i int) (float64, error) {
	ind, err := p.Resolve(ref)
	if err != nil {
		return 0, err
	}

	if i < ind.Lookback() {
		return 0, fmt.Errorf("%w: %s needs %d ticks, got index %d", ErrInsufficientHistory, ref, ind.Lookback(), i)
	}
	if i >= p.series.Len() {
		return 0, fmt.Errorf("%w: index %d beyond last candle %d", ErrInsufficientHistory, i, p.series.LastIndex())
	}

	return ind.Value(i), nil
}

// Lookback is the largest look-back of every indicator resolved so far.
func (p *Pipeline) Lookback() int {
	return p.lookback
}

func (p *Pipeline) Series() *market.Series {
	return p.series
}
