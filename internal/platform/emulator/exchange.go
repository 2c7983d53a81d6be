package emulator

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount     = errors.New("order amount must be positive")
	ErrNoPrice           = errors.New("market price is not set")
	ErrInsufficientFunds = errors.New("not enough money balance")
	ErrInsufficientCoins = errors.New("not enough coin balance")
	ErrOrderTooSmall     = errors.New("order is below the minimum size")
)

const DefaultMinOrder = 1.1

// coinDecimals bounds the precision of coin quantities, so that a credited
// amount survives the float64 round trip through Fill.Amount unchanged.
const coinDecimals = 8

type Options struct {
	MinOrder       float64
	BuyCommission  float64
	SellCommission float64
}

// Exchange simulates a single pair market. Orders fill completely at the
// last price passed to SetPrice.
type Exchange struct {
	log        *slog.Logger
	money      account
	coins      account
	commission commissionCharger
	minOrder   decimal.Decimal
	price      decimal.Decimal
	epoch      int64
	hasPrice   bool
	fills      []Fill
	mu         sync.RWMutex
}

func NewExchange(log *slog.Logger, money, coins float64, opts Options) *Exchange {
	minOrder := opts.MinOrder
	if minOrder == 0 {
		minOrder = DefaultMinOrder
	}

	return &Exchange{
		log:        log,
		money:      account{balance: decimal.NewFromFloat(money)},
		coins:      account{balance: decimal.NewFromFloat(coins)},
		commission: newCommission(opts.BuyCommission, opts.SellCommission),
		minOrder:   decimal.NewFromFloat(minOrder),
	}
}

func (e *Exchange) SetPrice(epoch int64, price float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.epoch = epoch
	e.price = decimal.NewFromFloat(price)
	e.hasPrice = true
}

func (e *Exchange) Price() (float64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.price.InexactFloat64(), e.hasPrice
}

func (e *Exchange) Buy(coins float64) (f Fill, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err = e.checkOrder(coins); err != nil {
		return
	}

	amount := decimal.NewFromFloat(coins)
	cost := amount.Mul(e.price)
	if !e.money.Covers(cost) {
		err = fmt.Errorf("%w: buying %s costs %s, balance is %s", ErrInsufficientFunds, amount, cost, e.money.Balance())
		return
	}
	if cost.LessThan(e.minOrder) {
		err = fmt.Errorf("%w: %s < %s", ErrOrderTooSmall, cost, e.minOrder)
		return
	}

	received := e.commission.ApplyOnBuy(amount).Truncate(coinDecimals)
	if err = e.money.Withdraw(cost); err != nil {
		return
	}
	if err = e.coins.Deposit(received); err != nil {
		return
	}

	f = Fill{
		Side:   SideBuy,
		Epoch:  e.epoch,
		Price:  e.price.InexactFloat64(),
		Amount: received.InexactFloat64(),
		Value:  cost,
	}
	e.fills = append(e.fills, f)

	e.log.Debug("buy filled", slog.Float64("price", f.Price), slog.Float64("amount", f.Amount), slog.String("cost", cost.String()))
	return
}

func (e *Exchange) Sell(coins float64) (f Fill, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err = e.checkOrder(coins); err != nil {
		return
	}

	amount := decimal.NewFromFloat(coins)
	if !e.coins.Covers(amount) {
		err = fmt.Errorf("%w: selling %s, balance is %s", ErrInsufficientCoins, amount, e.coins.Balance())
		return
	}

	value := amount.Mul(e.price)
	if value.LessThan(e.minOrder) {
		err = fmt.Errorf("%w: %s < %s", ErrOrderTooSmall, value, e.minOrder)
		return
	}

	received := e.commission.ApplyOnSell(value)
	if err = e.coins.Withdraw(amount); err != nil {
		return
	}
	if err = e.money.Deposit(received); err != nil {
		return
	}

	f = Fill{
		Side:   SideSell,
		Epoch:  e.epoch,
		Price:  e.price.InexactFloat64(),
		Amount: coins,
		Value:  received,
	}
	e.fills = append(e.fills, f)

	e.log.Debug("sell filled", slog.Float64("price", f.Price), slog.Float64("amount", f.Amount), slog.String("value", received.String()))
	return
}

func (e *Exchange) checkOrder(coins float64) error {
	if math.IsNaN(coins) || coins <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, coins)
	}
	if !e.hasPrice {
		return ErrNoPrice
	}
	return nil
}

// MaxBuyAmount is the largest coin amount, truncated to 8 decimals, that
// the money balance pays for at the current price.
func (e *Exchange) MaxBuyAmount() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.hasPrice || !e.price.IsPositive() {
		return 0
	}

	return e.money.Balance().DivRound(e.price, 16).Truncate(coinDecimals).InexactFloat64()
}

func (e *Exchange) MinOrder() float64 {
	return e.minOrder.InexactFloat64()
}

func (e *Exchange) Money() decimal.Decimal {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.money.Balance()
}

func (e *Exchange) Coins() decimal.Decimal {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.coins.Balance()
}

func (e *Exchange) MoneyBalance() float64 {
	return e.Money().InexactFloat64()
}

func (e *Exchange) CoinBalance() float64 {
	return e.Coins().InexactFloat64()
}

func (e *Exchange) Fills() []Fill {
	e.mu.RLock()
	defer e.mu.RUnlock()

	res := make([]Fill, len(e.fills))
	copy(res, e.fills)
	return res
}
