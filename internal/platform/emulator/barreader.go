package emulator

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gamma-omg/tradexchange/internal/market"
)

type CandleFilter func(c market.Candle) bool

// barReader parses candles from CSV with a
// timestamp,open,high,low,close,volume header.
type barReader struct {
	rdr    *csv.Reader
	filter CandleFilter
}

func newBarReader(r io.Reader, filter CandleFilter) *barReader {
	if filter == nil {
		filter = func(market.Candle) bool { return true }
	}

	rdr := csv.NewReader(bufio.NewReader(r))
	rdr.FieldsPerRecord = 6
	rdr.ReuseRecord = true
	return &barReader{rdr: rdr, filter: filter}
}

func ReadCandles(r io.Reader, filter CandleFilter) ([]market.Candle, error) {
	return newBarReader(r, filter).Read()
}

func ReadCandlesFromFile(path string, filter CandleFilter) ([]market.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open candles file: %w", err)
	}
	defer f.Close()

	return ReadCandles(f, filter)
}

func (b *barReader) Read() ([]market.Candle, error) {
	if _, err := b.rdr.Read(); err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var candles []market.Candle
	for {
		data, err := b.rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read bar data: %w", err)
		}

		var fields [6]float64
		for i, name := range []string{"time", "open", "high", "low", "close", "volume"} {
			fields[i], err = strconv.ParseFloat(data[i], 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse bar %s: %w", name, err)
			}
		}

		c := market.Candle{
			Epoch:  int64(fields[0]),
			Open:   fields[1],
			High:   fields[2],
			Low:    fields[3],
			Close:  fields[4],
			Volume: fields[5],
		}
		if b.filter(c) {
			candles = append(candles, c)
		}
	}

	return candles, nil
}
