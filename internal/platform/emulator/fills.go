package emulator

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Fill is one executed order. Amount is the coin quantity credited (buy)
// or debited (sell); Value is the money debited (buy) or credited (sell).
type Fill struct {
	Side   Side
	Epoch  int64
	Price  float64
	Amount float64
	Value  decimal.Decimal
}

func (f Fill) Time() time.Time {
	return time.Unix(f.Epoch, 0)
}
