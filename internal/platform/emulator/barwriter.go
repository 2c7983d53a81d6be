package emulator

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gamma-omg/tradexchange/internal/market"
)

// barWriter writes candles in the format barReader reads.
type barWriter struct {
	w           *csv.Writer
	writeHeader bool
}

func newBarWriter(w io.Writer) *barWriter {
	return &barWriter{csv.NewWriter(w), true}
}

func (d *barWriter) Write(c market.Candle) error {
	if d.writeHeader {
		if err := d.w.Write([]string{"timestamp", "open", "high", "low", "close", "volume"}); err != nil {
			return fmt.Errorf("failed to write candles csv header: %w", err)
		}
		d.writeHeader = false
	}

	err := d.w.Write([]string{
		strconv.FormatInt(c.Epoch, 10),
		formatFloat(c.Open),
		formatFloat(c.High),
		formatFloat(c.Low),
		formatFloat(c.Close),
		formatFloat(c.Volume)})

	if err != nil {
		return fmt.Errorf("failed to write candle: %w", err)
	}

	return nil
}

func (d *barWriter) Flush() error {
	d.w.Flush()
	return d.w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func WriteCandles(w io.Writer, candles []market.Candle) error {
	bw := newBarWriter(w)
	for _, c := range candles {
		if err := bw.Write(c); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func WriteCandlesToFile(path string, candles []market.Candle) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create candles file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return WriteCandles(f, candles)
}
