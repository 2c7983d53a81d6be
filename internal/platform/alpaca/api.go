package alpaca

import (
	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

type alpacaApi struct {
	trading *alpaca.Client
	data    *marketdata.Client
}

func newAlpacaApi(apiKey string, secret string, baseUrl string) *alpacaApi {
	return &alpacaApi{
		trading: alpaca.NewClient(alpaca.ClientOpts{
			BaseURL:   baseUrl,
			APIKey:    apiKey,
			APISecret: secret,
		}),
		data: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: secret,
		}),
	}
}

func (a *alpacaApi) GetAsset(symbol string) (*alpaca.Asset, error) {
	return a.trading.GetAsset(symbol)
}

func (a *alpacaApi) GetCryptoBars(symbol string, req marketdata.GetCryptoBarsRequest) ([]marketdata.CryptoBar, error) {
	return a.data.GetCryptoBars(symbol, req)
}
