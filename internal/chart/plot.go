package chart

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/pplcc/plotext"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var ErrEmpty = errors.New("nothing to plot")

var palette = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 148, G: 103, B: 189, A: 255},
	color.RGBA{R: 140, G: 86, B: 75, A: 255},
}

type stack struct {
	plots   []*plot.Plot
	heights []float64
	w       int
	h       int
}

func (d *stack) add(p *plot.Plot, height float64) {
	d.plots = append(d.plots, p)
	d.heights = append(d.heights, height)
}

// Plot renders the price panel followed by one panel per extra chart into a
// PNG file. w is the image width, h the height of a full size panel.
func (r *Recorder) Plot(path string, w, h int) error {
	if !r.Enabled() || len(r.candles) == 0 {
		return ErrEmpty
	}

	d := &stack{w: w, h: h}

	price, err := r.pricePlot()
	if err != nil {
		return err
	}
	d.add(price, 1)

	for _, p := range r.panels {
		if p.name == PriceChart {
			continue
		}

		pl := newPlot(p.name)
		if err := addLines(pl, p.series); err != nil {
			return err
		}
		d.add(pl, 0.4)
	}

	return d.save(path)
}

func newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02\n15:04"}
	p.Legend.Top = true
	return p
}

func (r *Recorder) pricePlot() (*plot.Plot, error) {
	p := newPlot("price")
	p.Y.Label.Text = "Price"

	pts := make(plotter.XYs, len(r.candles))
	for i, c := range r.candles {
		pts[i] = plotter.XY{X: float64(c.Epoch), Y: c.Close}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to create price graph: %w", err)
	}
	p.Add(line)

	for _, pn := range r.panels {
		if pn.name != PriceChart {
			continue
		}
		if err := addLines(p, pn.series); err != nil {
			return nil, err
		}
	}

	for _, kind := range []MarkerKind{MarkerBuy, MarkerSell} {
		var mpts plotter.XYs
		for _, m := range r.markers {
			if m.Kind == kind {
				mpts = append(mpts, plotter.XY{X: float64(m.Epoch), Y: m.Price})
			}
		}
		if len(mpts) == 0 {
			continue
		}

		sc, err := plotter.NewScatter(mpts)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s markers: %w", kind, err)
		}
		sc.GlyphStyle.Radius = vg.Points(3)
		if kind == MarkerBuy {
			sc.GlyphStyle.Color = color.RGBA{G: 160, A: 255}
			sc.GlyphStyle.Shape = draw.TriangleGlyph{}
		} else {
			sc.GlyphStyle.Color = color.RGBA{R: 200, A: 255}
			sc.GlyphStyle.Shape = draw.CrossGlyph{}
		}
		p.Add(sc)
		p.Legend.Add(string(kind), sc)
	}

	return p, nil
}

func addLines(p *plot.Plot, lines []*series) error {
	for i, s := range lines {
		pts := make(plotter.XYs, len(s.points))
		for j, pt := range s.points {
			pts[j] = plotter.XY{X: float64(pt.Epoch), Y: pt.Value}
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to create %s graph: %w", s.name, err)
		}
		line.Color = palette[i%len(palette)]
		p.Add(line)
		p.Legend.Add(s.name, line)
	}

	return nil
}

func (d *stack) save(path string) (err error) {
	var axis []*plot.Axis
	for _, p := range d.plots {
		axis = append(axis, &p.X)
	}
	plotext.UniteAxisRanges(axis)

	tbl := plotext.Table{
		RowHeights: d.heights,
		ColWidths:  []float64{1},
	}

	var plots2d [][]*plot.Plot
	for _, p := range d.plots {
		plots2d = append(plots2d, []*plot.Plot{p})
	}

	h := 0.0
	for _, v := range d.heights {
		h += v * float64(d.h)
	}

	img := vgimg.New(vg.Points(float64(d.w)), vg.Points(h))
	dc := draw.New(img)

	canvases := tbl.Align(plots2d, dc)
	for i, p := range d.plots {
		p.Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close plot file: %w", cerr))
		}
	}()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write plot to file: %w", err)
	}

	return nil
}
