package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Runs    map[string]Run `yaml:"runs"`
	Report  string         `yaml:"report"`
	Metrics string         `yaml:"metrics"`
	Chart   Chart          `yaml:"chart"`
}

func Read(r io.Reader) (*Config, error) {
	var cfg Config
	d := yaml.NewDecoder(r)
	err := d.Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	return &cfg, nil
}

func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

type Run struct {
	SourceRef      SourceReference `yaml:"source"`
	Period         int64           `yaml:"period"`
	Start          time.Time       `yaml:"start"`
	End            time.Time       `yaml:"end"`
	WarmupTicks    int             `yaml:"warmup_ticks"`
	CooldownTicks  int             `yaml:"cooldown_ticks"`
	InitialMoney   float64         `yaml:"initial_money"`
	InitialCoins   float64         `yaml:"initial_coins"`
	MinOrder       float64         `yaml:"min_order"`
	BuyCommission  float64         `yaml:"buy_commission"`
	SellCommission float64         `yaml:"sell_commission"`
	FeatureDump    string          `yaml:"feature_dump"`
	Strategy       Settings        `yaml:"strategy"`
}

type Chart struct {
	Dir    string `yaml:"dir"`
	Level  int    `yaml:"level"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type SourceReference struct {
	Source Source
}

type Source interface{}

// source configs

type CSV struct {
	Path string `yaml:"path"`
}

type SQLite struct {
	Path   string `yaml:"path"`
	Pair   string `yaml:"pair"`
	Period int64  `yaml:"period"`
}

type Alpaca struct {
	BaseUrl   string        `yaml:"base_url"`
	ApiKey    string        `yaml:"api_key"`
	Secret    string        `yaml:"secret"`
	Symbol    string        `yaml:"symbol"`
	TimeFrame time.Duration `yaml:"timeframe"`
}

func (w *SourceReference) UnmarshalYAML(value *yaml.Node) error {
	if len(value.Content) == 0 {
		return nil
	}

	if value.Kind != yaml.MappingNode || len(value.Content) != 2 {
		return errors.New("invalid source yaml format")
	}

	key := value.Content[0].Value
	switch key {
	case "csv":
		var src CSV
		if err := value.Content[1].Decode(&src); err != nil {
			return fmt.Errorf("failed parsing csv source config: %w", err)
		}
		w.Source = src
	case "sqlite":
		var src SQLite
		if err := value.Content[1].Decode(&src); err != nil {
			return fmt.Errorf("failed parsing sqlite source config: %w", err)
		}
		w.Source = src
	case "alpaca":
		var src Alpaca
		if err := value.Content[1].Decode(&src); err != nil {
			return fmt.Errorf("failed parsing alpaca source config: %w", err)
		}
		w.Source = src
	default:
		return fmt.Errorf("unknown source type: %s", key)
	}

	return nil
}
