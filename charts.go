package main

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ==== Gráficas PNG (gonum/plot) ====

var (
	colorBars    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorBox     = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	colorLine    = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	colorScatter = color.RGBA{R: 214, G: 39, B: 40, A: 180}
)

const (
	chartWidth  = 9 * vg.Inch
	chartHeight = 5 * vg.Inch
)

func chartTitle(kind chartKind, crop string) string {
	c := displayCrop(crop)
	switch kind {
	case chartRegions:
		return "Top 10 Departamentos por Área Cosechada - " + c
	case chartYield:
		return "Distribución del Rendimiento - " + c
	case chartYearly:
		return "Histórico de Producción de " + c
	case chartScatter:
		return "Área Cosechada vs. Rendimiento - " + c
	}
	return c
}

func parseChartKind(s string) (chartKind, bool) {
	for _, k := range chartKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// buildPlot devolve o erro do agregado se está baleiro (ErrEmptyProjection).
func buildPlot(rep *Report, kind chartKind) (*plot.Plot, error) {
	if err := rep.chartErr(kind); err != nil {
		return nil, err
	}
	p := plot.New()
	p.Title.Text = chartTitle(kind, rep.Crop)
	p.Title.TextStyle.Font.Size = vg.Points(14)

	var err error
	switch kind {
	case chartRegions:
		err = regionsPlot(p, rep.Regions)
	case chartYield:
		err = yieldPlot(p, rep.Yield)
	case chartYearly:
		err = yearlyPlot(p, rep.Yearly)
	case chartScatter:
		err = scatterPlot(p, rep.Pairs)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func regionsPlot(p *plot.Plot, regions []RegionTotal) error {
	p.X.Label.Text = "Departamento"
	p.Y.Label.Text = "Área Cosechada (ha)"

	values := make(plotter.Values, len(regions))
	labels := make([]string, len(regions))
	for i, r := range regions {
		values[i] = r.HarvestedArea
		labels[i] = truncLabel(r.Department, 18)
	}
	bars, err := plotter.NewBarChart(values, vg.Points(28))
	if err != nil {
		return err
	}
	bars.Color = colorBars
	bars.LineStyle.Width = vg.Length(0)
	p.Add(plotter.NewGrid(), bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Min = 0
	return nil
}

func yieldPlot(p *plot.Plot, ys YieldStats) error {
	p.Y.Label.Text = "Rendimiento (t/ha)"

	box, err := plotter.NewBoxPlot(vg.Points(80), 0, plotter.Values(ys.Values))
	if err != nil {
		return err
	}
	box.FillColor = colorBox
	p.Add(plotter.NewGrid(), box)
	p.NominalX("Rendimiento")
	return nil
}

func yearlyPlot(p *plot.Plot, series []YearTotal) error {
	p.X.Label.Text = "Año"
	p.Y.Label.Text = "Producción (t)"

	xys := make(plotter.XYs, len(series))
	for i, y := range series {
		xys[i].X = float64(y.Year)
		xys[i].Y = y.Production
	}
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	line.Color = colorLine
	line.Width = vg.Points(2)
	points.Shape = draw.CircleGlyph{}
	points.Color = colorLine
	points.Radius = vg.Points(4)
	p.Add(plotter.NewGrid(), line, points)
	p.X.Tick.Marker = yearTicks{}
	if len(series) == 1 {
		// un só ano: abrir o eixo para que o punto non quede no bordo
		p.X.Min, p.X.Max = xys[0].X-1, xys[0].X+1
	}
	return nil
}

func scatterPlot(p *plot.Plot, pairs []AreaYield) error {
	p.X.Label.Text = "Área Cosechada (ha)"
	p.Y.Label.Text = "Rendimiento (t/ha)"

	xys := make(plotter.XYs, len(pairs))
	for i, pr := range pairs {
		xys[i].X = pr.HarvestedArea
		xys[i].Y = pr.Yield
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Color = colorScatter
	sc.GlyphStyle.Radius = vg.Points(4)
	p.Add(plotter.NewGrid(), sc)
	return nil
}

// yearTicks marca só anos enteiros
type yearTicks struct{}

func (yearTicks) Ticks(min, max float64) []plot.Tick {
	first, last := int(math.Ceil(min)), int(math.Floor(max))
	step := 1
	if n := last - first; n > 12 {
		step = (n + 11) / 12
	}
	var ticks []plot.Tick
	for y := first; y <= last; y++ {
		t := plot.Tick{Value: float64(y)}
		if (y-first)%step == 0 {
			t.Label = strconv.Itoa(y)
		}
		ticks = append(ticks, t)
	}
	return ticks
}

func writeChartPNG(w io.Writer, rep *Report, kind chartKind) error {
	p, err := buildPlot(rep, kind)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func chartPNG(rep *Report, kind chartKind) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeChartPNG(&buf, rep, kind); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
