package indicator

import "errors"

var (
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrUnknownIndicator    = errors.New("unknown indicator")
	ErrInvalidReference    = errors.New("invalid indicator reference")
)

// Indicator is a derived series over candles. Value(i) depends only on
// candles 0..i and returns the same result on every call. Values below
// Lookback() are defined but not meaningful.
type Indicator interface {
	Value(i int) float64
	Lookback() int
}
