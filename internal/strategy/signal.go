package strategy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gamma-omg/tradexchange/internal/config"
	"github.com/gamma-omg/tradexchange/internal/indicator"
)

var ErrNoPredictor = errors.New("prediction signal needs a predictor")

// entrySignal reports a non-empty reason on ticks it wants to open a trade.
type entrySignal interface {
	Check(i int) string
	// Consume is called after the signal led to an open.
	Consume()
}

type alwaysSignal struct{}

func (alwaysSignal) Check(int) string { return "always" }
func (alwaysSignal) Consume()         {}

type ruleSignal struct {
	ref   string
	op    string
	value float64
	ind   indicator.Indicator
}

func (s *ruleSignal) Check(i int) string {
	v := s.ind.Value(i)

	var ok bool
	switch s.op {
	case "<":
		ok = v < s.value
	case "<=":
		ok = v <= s.value
	case ">":
		ok = v > s.value
	case ">=":
		ok = v >= s.value
	}

	if !ok {
		return ""
	}
	return fmt.Sprintf("%s=%.4f %s %g", s.ref, v, s.op, s.value)
}

func (s *ruleSignal) Consume() {}

func newRuleSignal(rule string, pipe *indicator.Pipeline) (*ruleSignal, error) {
	depth := 0
	for pos := 0; pos < len(rule); pos++ {
		switch c := rule[pos]; c {
		case '(':
			depth++
		case ')':
			depth--
		case '<', '>':
			if depth != 0 {
				continue
			}

			op := string(c)
			if pos+1 < len(rule) && rule[pos+1] == '=' {
				op += "="
			}

			ref := strings.TrimSpace(rule[:pos])
			value, err := strconv.ParseFloat(strings.TrimSpace(rule[pos+len(op):]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad threshold in rule %q", config.ErrInvalidValue, rule)
			}

			ind, err := pipe.Resolve(ref)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve rule indicator: %w", err)
			}

			return &ruleSignal{ref: ref, op: op, value: value, ind: ind}, nil
		}
	}

	return nil, fmt.Errorf("%w: rule %q has no comparison", config.ErrInvalidValue, rule)
}

// scores keeps the last three values of a prediction score.
type scores struct {
	lastLast, last, current float64
}

func (s *scores) push(v float64) {
	s.lastLast, s.last, s.current = s.last, s.current, v
}

// predictionTrigger fires when a score crosses a barrier (over, under) or
// peaks above it (peak). With crest lock set it stays silent after an open
// until the score drops below the barrier again.
type predictionTrigger struct {
	kind    string
	barrier float64
	scores  *scores
	crest   bool
	locked  bool
}

func parsePredictionTrigger(spec string, s *scores, crest bool) (*predictionTrigger, error) {
	kind, value, ok := strings.Cut(spec, ":")
	if !ok {
		return nil, fmt.Errorf("%w: prediction trigger %q must be kind:value", config.ErrInvalidValue, spec)
	}

	switch kind {
	case "over", "under", "peak":
	default:
		return nil, fmt.Errorf("%w: unsupported prediction trigger %q", config.ErrInvalidValue, kind)
	}

	barrier, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: prediction trigger %q", config.ErrInvalidValue, spec)
	}

	return &predictionTrigger{kind: kind, barrier: barrier, scores: s, crest: crest}, nil
}

func (t *predictionTrigger) fired() bool {
	s := t.scores
	switch t.kind {
	case "over":
		return s.last < t.barrier && s.current > t.barrier
	case "under":
		return s.last > t.barrier && s.current < t.barrier
	case "peak":
		return s.last > t.barrier && s.last > s.lastLast && s.last > s.current
	}
	return false
}

func (t *predictionTrigger) Check(int) string {
	if t.crest && t.scores.current < t.barrier {
		t.locked = false
	}
	if t.locked || !t.fired() {
		return ""
	}
	return fmt.Sprintf("prediction: %.4f", t.scores.current)
}

func (t *predictionTrigger) Consume() {
	if t.crest {
		t.locked = true
	}
}

func newEntrySignal(entry string, pipe *indicator.Pipeline, buy *scores, hasPredictor bool) (entrySignal, error) {
	kind, rest, _ := strings.Cut(entry, ":")
	switch kind {
	case "always":
		return alwaysSignal{}, nil
	case "rule":
		return newRuleSignal(rest, pipe)
	case "prediction":
		if !hasPredictor {
			return nil, ErrNoPredictor
		}
		return parsePredictionTrigger(rest, buy, true)
	}

	return nil, fmt.Errorf("%w: entry=%q", config.ErrInvalidValue, entry)
}
