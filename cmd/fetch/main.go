package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/gamma-omg/tradexchange/internal/config"
	"github.com/gamma-omg/tradexchange/internal/market"
	"github.com/gamma-omg/tradexchange/internal/platform/alpaca"
	"github.com/gamma-omg/tradexchange/internal/platform/emulator"
	"github.com/gamma-omg/tradexchange/internal/store/sqlite"
)

// fetch downloads the history of every alpaca run in the config and stores
// it in a sqlite database or a csv file, ready for offline backtests.
func main() {
	db := flag.String("db", "", "sqlite database to store candles in")
	csvDir := flag.String("csv", "", "directory to write one csv file per run")
	flag.Parse()

	if *db == "" && *csvDir == "" {
		log.Fatal("one of -db or -csv is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.ReadFromFile(os.Getenv("CONFIG"))
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.Default()

	var st *sqlite.Store
	if *db != "" {
		st, err = sqlite.Open(logger, *db)
		if err != nil {
			log.Fatal(err)
		}
		defer st.Close()
	}

	for name, run := range cfg.Runs {
		src, ok := run.SourceRef.Source.(config.Alpaca)
		if !ok {
			logger.Info("skipping run without alpaca source", slog.String("pair", name))
			continue
		}

		candles, err := alpaca.NewHistory(logger, src).Fetch(ctx, run.Start, run.End)
		if err != nil {
			log.Fatal(err)
		}
		candles = market.Resample(candles, run.Period)

		if st != nil {
			period := run.Period
			if period == 0 {
				period = int64(max(src.TimeFrame, time.Minute) / time.Second)
			}
			if err := st.Save(ctx, name, period, candles); err != nil {
				log.Fatal(err)
			}
		}

		if *csvDir != "" {
			path := filepath.Join(*csvDir, name+".csv")
			if err := emulator.WriteCandlesToFile(path, candles); err != nil {
				log.Fatal(err)
			}
		}

		logger.Info("history stored", slog.String("pair", name), slog.Int("candles", len(candles)))
	}
}
