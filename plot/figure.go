// Package plot renders 2-D line and scatter figures of sample data with gonum/plot.
//
// It knows nothing about the signals it draws; callers pass parallel x and y sequences.
package plot

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Series is one curve of a Figure.
type Series struct {
	// X holds the x coordinates. When empty, an index axis is generated, see Figure.
	X []float64
	// Y holds the y coordinates.
	Y []float64
	// Label is the legend entry. Defaults to the series index.
	Label string
	// Color is a color name such as "green" or a hex value "#rrggbb". Defaults to the palette.
	Color string
	// LineStyle is one of "-", "--", ":" or "-.". Defaults to a solid line.
	LineStyle string
	// Scatter draws points of the given marker area in points² instead of a line when positive.
	Scatter float64
}

// Tick is a labelled position on the x axis.
type Tick = plot.Tick

// Figure describes a figure with one or more series.
type Figure struct {
	Title  string
	XLabel string
	YLabel string

	// Width and Height of the saved image. Default to 12 and 8 inches.
	Width, Height vg.Length

	// Series without X get x = (i + Shift) * ChunkSize; a zero ChunkSize is ignored.
	Shift     float64
	ChunkSize float64

	// DivLine draws a dashed vertical line at every x coordinate of a series that is a multiple
	// of DivLine. Zero disables the lines.
	DivLine float64

	// Ticks replaces the x axis ticks by labels at the x coordinates of the first series, keeping
	// every TickEvery-th one.
	Ticks     []string
	TickEvery int

	// PeakOffset shifts peak annotations from the peak, in points.
	PeakOffset vg.Point

	Series []Series

	peaksAll bool
	peaksOf  map[int]bool
}

// AnnotatePeaks marks the local maxima of every series.
func (f *Figure) AnnotatePeaks() {
	f.peaksAll = true
}

// AnnotatePeaksOf marks the local maxima of the series at the given indices only.
func (f *Figure) AnnotatePeaksOf(series ...int) {
	if f.peaksOf == nil {
		f.peaksOf = make(map[int]bool)
	}
	for _, i := range series {
		f.peaksOf[i] = true
	}
}

func (f *Figure) annotated(i int) bool {
	return f.peaksAll || f.peaksOf[i]
}

// LocalMaxima returns the indices of samples greater than their left neighbour and not less than
// their right neighbour. The first and last samples are never maxima.
func LocalMaxima(y []float64) []int {
	var peaks []int
	for i := 1; i+1 < len(y); i++ {
		if y[i] > y[i-1] && y[i] >= y[i+1] {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// Plot builds the gonum plot of the figure.
func (f *Figure) Plot() (*plot.Plot, error) {
	if len(f.Series) == 0 {
		return nil, errors.New("plot: figure has no series")
	}

	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = f.XLabel
	p.Y.Label.Text = f.YLabel
	p.Add(plotter.NewGrid())

	xs := make([][]float64, len(f.Series))
	for i, s := range f.Series {
		xs[i] = s.X
		if len(xs[i]) == 0 {
			xs[i] = f.indexAxis(len(s.Y))
		}
		if len(xs[i]) != len(s.Y) {
			return nil, errors.Errorf("plot: series %d has %d x values and %d y values", i, len(xs[i]), len(s.Y))
		}
	}

	if f.DivLine > 0 {
		if err := f.addDivLines(p, xs); err != nil {
			return nil, err
		}
	}

	for i, s := range f.Series {
		xys := make(plotter.XYs, len(s.Y))
		for j := range s.Y {
			xys[j].X, xys[j].Y = xs[i][j], s.Y[j]
		}

		c, err := seriesColor(s.Color, i)
		if err != nil {
			return nil, err
		}
		label := s.Label
		if label == "" {
			label = strconv.Itoa(i)
		}

		if s.Scatter > 0 {
			sc, err := plotter.NewScatter(xys)
			if err != nil {
				return nil, errors.Wrapf(err, "plot: series %d", i)
			}
			sc.GlyphStyle.Color = c
			sc.GlyphStyle.Radius = vg.Points(math.Sqrt(s.Scatter) / 2)
			p.Add(sc)
			p.Legend.Add(label, sc)
		} else {
			l, err := plotter.NewLine(xys)
			if err != nil {
				return nil, errors.Wrapf(err, "plot: series %d", i)
			}
			l.LineStyle.Color = c
			l.LineStyle.Dashes = dashes(s.LineStyle)
			p.Add(l)
			p.Legend.Add(label, l)
		}

		if f.annotated(i) {
			if err := f.addPeaks(p, xys); err != nil {
				return nil, err
			}
		}
	}

	if len(f.Ticks) > 0 {
		p.X.Tick.Marker = plot.ConstantTicks(f.ticks(xs[0]))
	}
	return p, nil
}

// Save renders the figure and writes it to path. The image format is chosen by the file
// extension: png, jpg, svg, pdf, eps or tiff.
func (f *Figure) Save(path string) error {
	p, err := f.Plot()
	if err != nil {
		return err
	}
	w, h := f.Width, f.Height
	if w <= 0 {
		w = 12 * vg.Inch
	}
	if h <= 0 {
		h = 8 * vg.Inch
	}
	if err := p.Save(w, h, path); err != nil {
		return errors.Wrapf(err, "plot: save %s", path)
	}
	return nil
}

func (f *Figure) indexAxis(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		if f.Shift != 0 {
			x[i] += f.Shift
		}
		if f.ChunkSize != 0 {
			x[i] *= f.ChunkSize
		}
	}
	return x
}

func (f *Figure) addDivLines(p *plot.Plot, xs [][]float64) error {
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for _, s := range f.Series {
		for _, y := range s.Y {
			ymin, ymax = math.Min(ymin, y), math.Max(ymax, y)
		}
	}
	if math.IsInf(ymin, 0) {
		return nil
	}

	seen := make(map[float64]bool)
	for _, x := range xs {
		for _, v := range x {
			if seen[v] || math.Mod(v, f.DivLine) != 0 {
				continue
			}
			seen[v] = true
			l, err := plotter.NewLine(plotter.XYs{{X: v, Y: ymin}, {X: v, Y: ymax}})
			if err != nil {
				return errors.Wrap(err, "plot: divider")
			}
			l.LineStyle.Color = color.Black
			l.LineStyle.Dashes = dashes("--")
			p.Add(l)
		}
	}
	return nil
}

func (f *Figure) addPeaks(p *plot.Plot, xys plotter.XYs) error {
	y := make([]float64, len(xys))
	for i := range xys {
		y[i] = xys[i].Y
	}
	peaks := LocalMaxima(y)
	if len(peaks) == 0 {
		return nil
	}

	labels := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(peaks)),
		Labels: make([]string, len(peaks)),
	}
	for i, j := range peaks {
		labels.XYs[i] = xys[j]
		labels.Labels[i] = strconv.FormatFloat(xys[j].X, 'g', 4, 64)
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return errors.Wrap(err, "plot: peaks")
	}
	l.Offset = f.PeakOffset
	p.Add(l)
	return nil
}

func (f *Figure) ticks(x []float64) []plot.Tick {
	every := f.TickEvery
	if every < 1 {
		every = 1
	}
	var ticks []plot.Tick
	for i := 0; i < len(x) && i < len(f.Ticks); i += every {
		ticks = append(ticks, plot.Tick{Value: x[i], Label: f.Ticks[i]})
	}
	return ticks
}

func dashes(style string) []vg.Length {
	switch style {
	case "--":
		return []vg.Length{vg.Points(6), vg.Points(3)}
	case ":":
		return []vg.Length{vg.Points(1), vg.Points(2)}
	case "-.":
		return []vg.Length{vg.Points(6), vg.Points(2), vg.Points(1), vg.Points(2)}
	}
	return nil
}

var palette = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

var named = map[string]color.Color{
	"black":   color.Black,
	"white":   color.White,
	"red":     color.RGBA{R: 0xff, A: 0xff},
	"green":   color.RGBA{G: 0x80, A: 0xff},
	"blue":    color.RGBA{B: 0xff, A: 0xff},
	"magenta": color.RGBA{R: 0xff, B: 0xff, A: 0xff},
	"cyan":    color.RGBA{G: 0xff, B: 0xff, A: 0xff},
	"yellow":  color.RGBA{R: 0xff, G: 0xff, A: 0xff},
	"orange":  color.RGBA{R: 0xff, G: 0xa5, A: 0xff},
	"gray":    color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff},
}

func seriesColor(name string, i int) (color.Color, error) {
	if name == "" {
		return palette[i%len(palette)], nil
	}
	if c, ok := named[strings.ToLower(name)]; ok {
		return c, nil
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		v, err := strconv.ParseUint(name[1:], 16, 32)
		if err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
		}
	}
	return nil, errors.Errorf("plot: unknown color %q", name)
}
