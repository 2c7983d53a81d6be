package strategy

import "time"

type OpType string

const (
	OpBuy  OpType = "BUY"
	OpSell OpType = "SELL"
)

// Trigger names the condition that closed a trade.
type Trigger string

const (
	TriggerExpiry        Trigger = "expiry"
	TriggerTopBarrier    Trigger = "topBarrier"
	TriggerBottomBarrier Trigger = "bottomBarrier"
	TriggerMargin        Trigger = "margin"
	TriggerTopLoss       Trigger = "topLoss"
	TriggerSellBarrier2  Trigger = "sellBarrier2"
	TriggerRetrace       Trigger = "retrace"
	TriggerPrediction    Trigger = "prediction"
)

type Operation struct {
	Type        OpType
	Tick        int
	Epoch       int64
	Price       float64
	Amount      float64
	Description string
	Code        int
	Trigger     Trigger
	BuyPrice    float64
	Profit      float64
}

func (o Operation) Time() time.Time {
	return time.Unix(o.Epoch, 0)
}

// OpenTrade is a position held by the engine until one of its close
// conditions fires.
type OpenTrade struct {
	BuyPrice float64
	Amount   float64
	Epoch    int64
	Tick     int
	Code     int

	tracker closeTracker
	pending Trigger
}
