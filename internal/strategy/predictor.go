package strategy

import (
	"errors"
	"fmt"
	"math"

	"github.com/gamma-omg/tradexchange/internal/config"
)

// Predictor scores a window of feature rows, oldest first. Implementations
// must not keep state between calls.
type Predictor interface {
	Predict(window [][]float64) (buy, sell float64, err error)
}

// LinearModel is a logistic model over the most recent feature row.
type LinearModel struct {
	BuyWeights  []float64
	SellWeights []float64
	BuyBias     float64
	SellBias    float64
}

func (m *LinearModel) Predict(window [][]float64) (buy, sell float64, err error) {
	if len(window) == 0 {
		return 0, 0, errors.New("empty feature window")
	}

	row := window[len(window)-1]
	if len(row) != len(m.BuyWeights) || len(row) != len(m.SellWeights) {
		return 0, 0, fmt.Errorf("model expects %d features, got %d", len(m.BuyWeights), len(row))
	}

	return sigmoid(dot(row, m.BuyWeights) + m.BuyBias), sigmoid(dot(row, m.SellWeights) + m.SellBias), nil
}

func dot(a, b []float64) float64 {
	var res float64
	for i := range a {
		res += a[i] * b[i]
	}
	return res
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// LinearModelFromSettings builds a LinearModel from the modelBuyWeights and
// modelSellWeights keys. It returns nil when no weights are configured.
func LinearModelFromSettings(s config.Settings) (*LinearModel, error) {
	if !s.Has("modelBuyWeights") && !s.Has("modelSellWeights") {
		return nil, nil
	}

	buy, err := s.Floats("modelBuyWeights")
	if err != nil {
		return nil, err
	}
	sell, err := s.Floats("modelSellWeights")
	if err != nil {
		return nil, err
	}
	if len(buy) != len(sell) {
		return nil, fmt.Errorf("%w: buy and sell weights differ in length", config.ErrInvalidValue)
	}

	m := &LinearModel{BuyWeights: buy, SellWeights: sell}
	if m.BuyBias, err = s.FloatOr("modelBuyBias", 0); err != nil {
		return nil, err
	}
	if m.SellBias, err = s.FloatOr("modelSellBias", 0); err != nil {
		return nil, err
	}

	return m, nil
}
