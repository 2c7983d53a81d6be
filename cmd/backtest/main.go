package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gamma-omg/tradexchange/internal/agent"
	"github.com/gamma-omg/tradexchange/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.ReadFromFile(os.Getenv("CONFIG"))
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.Default()

	a := agent.NewBacktester(logger, *cfg)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				for name, st := range a.Status() {
					logger.Info("status",
						slog.String("pair", name),
						slog.String("state", string(st.State)),
						slog.Float64("progress", st.Progress()),
						slog.Duration("eta", st.ETA),
						slog.Int("trades", st.TradeCount))
				}
			}
		}
	}()

	_, err = a.Run(ctx)
	close(done)
	if err != nil {
		log.Fatal(err)
	}
}
