package indicator

import (
	"fmt"
	"math"

	"github.com/gamma-omg/tradexchange/internal/market"
)

// Arg is a resolved reference argument: either a nested indicator or a
// plain number.
type Arg struct {
	Indicator Indicator
	Number    float64
}

func (a Arg) IsNumber() bool {
	return a.Indicator == nil
}

// AsIndicator turns numeric arguments into constants.
func (a Arg) AsIndicator() Indicator {
	if a.IsNumber() {
		return NewConstant(a.Number)
	}
	return a.Indicator
}

type Factory func(s *market.Series, args []Arg) (Indicator, error)

type Registry map[string]Factory

func (r Registry) Register(name string, f Factory) {
	r[name] = f
}

func (r Registry) create(name string, s *market.Series, args []Arg) (Indicator, error) {
	f, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIndicator, name)
	}

	ind, err := f(s, args)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", name, err)
	}

	return ind, nil
}

func DefaultRegistry() Registry {
	r := Registry{
		"close":  price(NewClose),
		"open":   price(NewOpen),
		"high":   price(NewHigh),
		"low":    price(NewLow),
		"volume": price(NewVolume),
		"color":  price(NewCandleColor),
		"tr":     price(NewTrueRange),
		"obv":    price(NewOBV),

		"sma":     windowed(NewSMA),
		"ema":     windowed(NewEMA),
		"mma":     windowed(NewMMA),
		"rsi":     windowed(NewRSI),
		"stddev":  windowed(NewStdDev),
		"highest": windowed(NewHighest),
		"lowest":  windowed(NewLowest),
		"norm":    windowedFrom(NewNormalized, 0),
		"roc":     windowed(NewROC),

		"atr":       periodic(NewATR),
		"williamsr": periodic(NewWilliamsR),
		"obvo":      periodic(NewOBVOscillator),
		"buyp":      periodic(NewBuyPressure),
		"sellp":     periodic(NewSellPressure),

		"add": binary(NewSum),
		"sub": binary(NewDiff),
		"mul": binary(NewProduct),
		"div": binary(NewRatio),

		"abs": unary(NewAbs),
		"neg": unary(NewNeg),
	}

	r.Register("macd", func(s *market.Series, args []Arg) (Indicator, error) {
		src, ints, err := sourceAndInts(s, args, 2, 1)
		if err != nil {
			return nil, err
		}
		if ints[0] >= ints[1] {
			return nil, fmt.Errorf("%w: short period %d must be below long period %d", ErrInvalidReference, ints[0], ints[1])
		}
		return NewMACD(src, ints[0], ints[1]), nil
	})
	r.Register("bb%", func(s *market.Series, args []Arg) (Indicator, error) {
		src := NewClose(s)
		if len(args) == 3 {
			if args[0].IsNumber() {
				return nil, fmt.Errorf("%w: expected indicator as first argument", ErrInvalidReference)
			}
			src, args = args[0].Indicator, args[1:]
		}
		if len(args) != 2 || !args[0].IsNumber() || !args[1].IsNumber() {
			return nil, fmt.Errorf("%w: expected (n,k)", ErrInvalidReference)
		}
		n, err := period(args[0], 1)
		if err != nil {
			return nil, err
		}
		return NewPercentB(src, n, args[1].Number), nil
	})

	return r
}

func price(fn func(s *market.Series) Indicator) Factory {
	return func(s *market.Series, args []Arg) (Indicator, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: takes no arguments", ErrInvalidReference)
		}
		return fn(s), nil
	}
}

func windowed(fn func(src Indicator, n int) Indicator) Factory {
	return windowedFrom(fn, 1)
}

// windowedFrom is windowed with a custom lowest period. norm(x,0) passes x
// through unchanged.
func windowedFrom(fn func(src Indicator, n int) Indicator, least int) Factory {
	return func(s *market.Series, args []Arg) (Indicator, error) {
		src, ints, err := sourceAndInts(s, args, 1, least)
		if err != nil {
			return nil, err
		}
		return fn(src, ints[0]), nil
	}
}

func periodic(fn func(s *market.Series, n int) Indicator) Factory {
	return func(s *market.Series, args []Arg) (Indicator, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: expected one period", ErrInvalidReference)
		}
		n, err := period(args[0], 1)
		if err != nil {
			return nil, err
		}
		return fn(s, n), nil
	}
}

func binary(fn func(a, b Indicator) Indicator) Factory {
	return func(s *market.Series, args []Arg) (Indicator, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: expected two operands", ErrInvalidReference)
		}
		return fn(args[0].AsIndicator(), args[1].AsIndicator()), nil
	}
}

func unary(fn func(src Indicator) Indicator) Factory {
	return func(s *market.Series, args []Arg) (Indicator, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: expected one operand", ErrInvalidReference)
		}
		return fn(args[0].AsIndicator()), nil
	}
}

// sourceAndInts accepts either (n...) over close or (src, n...).
func sourceAndInts(s *market.Series, args []Arg, count, least int) (Indicator, []int, error) {
	src := NewClose(s)
	if len(args) == count+1 {
		if args[0].IsNumber() {
			return nil, nil, fmt.Errorf("%w: expected indicator as first argument", ErrInvalidReference)
		}
		src, args = args[0].Indicator, args[1:]
	}
	if len(args) != count {
		return nil, nil, fmt.Errorf("%w: expected %d period(s), got %d", ErrInvalidReference, count, len(args))
	}

	ints := make([]int, count)
	for i, a := range args {
		n, err := period(a, least)
		if err != nil {
			return nil, nil, err
		}
		ints[i] = n
	}

	return src, ints, nil
}

func period(a Arg, least int) (int, error) {
	if !a.IsNumber() || a.Number != math.Trunc(a.Number) || a.Number < float64(least) {
		return 0, fmt.Errorf("%w: period must be an integer >= %d", ErrInvalidReference, least)
	}
	return int(a.Number), nil
}
