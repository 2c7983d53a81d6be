package backtest

import (
	"maps"
	"slices"

	"github.com/gamma-omg/tradexchange/internal/market"
	"github.com/gamma-omg/tradexchange/internal/strategy"
	"github.com/shopspring/decimal"
)

// Trade is a closed round trip.
type Trade struct {
	Code      int
	BuyEpoch  int64
	SellEpoch int64
	BuyPrice  float64
	SellPrice float64
	Amount    float64
	Profit    float64
	Trigger   strategy.Trigger
}

type Summary struct {
	RunID string
	State State
	Ticks int

	InitialMoney decimal.Decimal
	InitialCoins decimal.Decimal
	FinalMoney   decimal.Decimal
	FinalCoins   decimal.Decimal
	NetMoney     decimal.Decimal
	NetCoins     decimal.Decimal

	FirstPrice float64
	LastPrice  float64

	TradeCount int
	TradeSum   float64
	// TradePct is the money change relative to the initial money, HoldPct the
	// price change over the run. Both in percent.
	TradePct float64
	HoldPct  float64

	Trades     []Trade
	Operations []strategy.Operation
	// OpenAtEnd counts trades still held when the run stopped.
	OpenAtEnd int
	// TriggerBreakdown is the share of closed trades per trigger, in percent.
	TriggerBreakdown map[strategy.Trigger]float64

	buys map[int]strategy.Operation
}

func newSummary(id string, money, coins decimal.Decimal, firstPrice float64) *Summary {
	return &Summary{
		RunID:            id,
		InitialMoney:     money,
		InitialCoins:     coins,
		FirstPrice:       firstPrice,
		LastPrice:        firstPrice,
		TriggerBreakdown: map[strategy.Trigger]float64{},
		buys:             map[int]strategy.Operation{},
	}
}

func (s *Summary) record(c market.Candle, ops []strategy.Operation) {
	s.Ticks++
	s.LastPrice = c.Close

	for _, op := range ops {
		s.Operations = append(s.Operations, op)

		switch op.Type {
		case strategy.OpBuy:
			s.buys[op.Code] = op
		case strategy.OpSell:
			buy := s.buys[op.Code]
			delete(s.buys, op.Code)

			s.Trades = append(s.Trades, Trade{
				Code:      op.Code,
				BuyEpoch:  buy.Epoch,
				SellEpoch: op.Epoch,
				BuyPrice:  op.BuyPrice,
				SellPrice: op.Price,
				Amount:    op.Amount,
				Profit:    op.Profit,
				Trigger:   op.Trigger,
			})
			s.TradeCount++
			s.TradeSum += op.Profit
		}
	}
}

func (s *Summary) finish(state State, money, coins decimal.Decimal, tradeCount int, tradeSum float64) {
	s.State = state
	s.FinalMoney = money
	s.FinalCoins = coins
	s.NetMoney = money.Sub(s.InitialMoney)
	s.NetCoins = coins.Sub(s.InitialCoins)
	s.TradeCount = tradeCount
	s.TradeSum = tradeSum
	s.OpenAtEnd = len(s.buys)

	if !s.InitialMoney.IsZero() {
		s.TradePct, _ = s.NetMoney.Mul(decimal.NewFromInt(100)).Div(s.InitialMoney).Float64()
	}
	if s.FirstPrice != 0 {
		s.HoldPct = (s.LastPrice - s.FirstPrice) * 100 / s.FirstPrice
	}

	if len(s.Trades) == 0 {
		return
	}
	counts := map[strategy.Trigger]int{}
	for _, t := range s.Trades {
		counts[t.Trigger]++
	}
	for tr, n := range counts {
		s.TriggerBreakdown[tr] = float64(n) * 100 / float64(len(s.Trades))
	}
}

// Triggers lists the close triggers seen in the run, sorted by name.
func (s *Summary) Triggers() []strategy.Trigger {
	return slices.Sorted(maps.Keys(s.TriggerBreakdown))
}
