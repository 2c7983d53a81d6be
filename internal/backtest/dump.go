package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gamma-omg/tradexchange/internal/market"
	"github.com/gamma-omg/tradexchange/internal/strategy"
)

type featureSource interface {
	FeatureRow(i int) []float64
	FeatureNames() []string
}

// FeatureDump writes one csv row per tick with the model features and the
// operations of that tick, for offline training. A nil *FeatureDump writes
// nothing.
type FeatureDump struct {
	w           *csv.Writer
	src         featureSource
	writeHeader bool
}

func NewFeatureDump(w io.Writer, src featureSource) *FeatureDump {
	return &FeatureDump{csv.NewWriter(w), src, true}
}

func (d *FeatureDump) Write(i int, c market.Candle, ops []strategy.Operation) error {
	if d == nil {
		return nil
	}

	if d.writeHeader {
		header := append([]string{"timestamp", "close"}, d.src.FeatureNames()...)
		header = append(header, "operation")
		if err := d.w.Write(header); err != nil {
			return fmt.Errorf("failed to write feature dump csv header: %w", err)
		}
		d.writeHeader = false
	}

	row := []string{
		strconv.FormatInt(c.Epoch, 10),
		strconv.FormatFloat(c.Close, 'f', -1, 64),
	}
	for _, v := range d.src.FeatureRow(i) {
		row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
	}

	var kinds []string
	for _, op := range ops {
		kinds = append(kinds, string(op.Type))
	}
	row = append(row, strings.Join(kinds, "|"))

	if err := d.w.Write(row); err != nil {
		return fmt.Errorf("failed to dump features: %w", err)
	}

	d.w.Flush()
	return d.w.Error()
}
