package chart

import (
	"slices"

	"github.com/gamma-omg/tradexchange/internal/market"
)

// PriceChart is drawn over the candles, every other chart gets its own panel.
const PriceChart = "price"

const (
	LevelNone = iota
	LevelCandles
	LevelPrice
	LevelExtra
)

type Point struct {
	Chart  string
	Series string
	Epoch  int64
	Value  float64
}

type MarkerKind string

const (
	MarkerBuy  MarkerKind = "buy"
	MarkerSell MarkerKind = "sell"
)

type Marker struct {
	Kind  MarkerKind
	Epoch int64
	Price float64
	Label string
}

type series struct {
	name   string
	points []Point
}

type panel struct {
	name   string
	series []*series
}

// Recorder collects what a run wants drawn. Level decides how much of it
// is kept: candles and markers from LevelCandles, price overlays from
// LevelPrice and separate panels from LevelExtra.
type Recorder struct {
	level   int
	candles []market.Candle
	markers []Marker
	panels  []*panel
}

func NewRecorder(level int) *Recorder {
	return &Recorder{level: level}
}

func (r *Recorder) Enabled() bool {
	return r != nil && r.level > LevelNone
}

func (r *Recorder) AddCandle(c market.Candle) {
	if !r.Enabled() {
		return
	}
	r.candles = append(r.candles, c)
}

func (r *Recorder) AddMarker(m Marker) {
	if !r.Enabled() {
		return
	}
	r.markers = append(r.markers, m)
}

func (r *Recorder) Add(points ...Point) {
	if !r.Enabled() {
		return
	}

	for _, p := range points {
		if !r.accepts(p.Chart) {
			continue
		}
		s := r.series(p.Chart, p.Series)
		s.points = append(s.points, p)
	}
}

func (r *Recorder) accepts(chart string) bool {
	if chart == PriceChart {
		return r.level >= LevelPrice
	}
	return r.level >= LevelExtra
}

func (r *Recorder) series(chart, name string) *series {
	idx := slices.IndexFunc(r.panels, func(p *panel) bool { return p.name == chart })
	if idx < 0 {
		r.panels = append(r.panels, &panel{name: chart})
		idx = len(r.panels) - 1
	}

	p := r.panels[idx]
	for _, s := range p.series {
		if s.name == name {
			return s
		}
	}

	s := &series{name: name}
	p.series = append(p.series, s)
	return s
}

func (r *Recorder) Candles() []market.Candle {
	return r.candles
}

func (r *Recorder) Markers() []Marker {
	return r.markers
}

// Series returns the recorded points of one series in insertion order.
func (r *Recorder) Series(chart, name string) []Point {
	for _, p := range r.panels {
		if p.name != chart {
			continue
		}
		for _, s := range p.series {
			if s.name == name {
				return s.points
			}
		}
	}
	return nil
}

func (r *Recorder) Charts() []string {
	res := make([]string, len(r.panels))
	for i, p := range r.panels {
		res[i] = p.name
	}
	return res
}
