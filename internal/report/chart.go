package report

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/jekabolt/ecomm-insights/internal/entity"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	forecastColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	bandColor     = color.RGBA{R: 31, G: 119, B: 180, A: 60}
	actualColor   = color.RGBA{A: 255}
)

// ForecastChart plots actual daily revenue, the forecast and its uncertainty
// band. Display values are used so a display cap also bounds the chart.
func ForecastChart(fc *entity.Forecast) (*plot.Plot, error) {
	if fc == nil || len(fc.Points) == 0 {
		return nil, fmt.Errorf("forecast has no points")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Revenue forecast, %d months", fc.HorizonMonths)
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Revenue"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Add(plotter.NewGrid())

	yhat := make(plotter.XYs, len(fc.Points))
	band := make(plotter.XYs, 2*len(fc.Points))
	actual := make(plotter.XYs, 0, len(fc.Points))
	last := len(band) - 1
	for i, pt := range fc.Points {
		x := float64(pt.Date.Unix())
		yhat[i] = plotter.XY{X: x, Y: pt.DisplayYHat}
		band[i] = plotter.XY{X: x, Y: capTo(pt.YHatUpper, fc.DisplayCap)}
		band[last-i] = plotter.XY{X: x, Y: capTo(pt.YHatLower, fc.DisplayCap)}
		if pt.DisplayActual != nil {
			actual = append(actual, plotter.XY{X: x, Y: *pt.DisplayActual})
		}
	}

	poly, err := plotter.NewPolygon(band)
	if err != nil {
		return nil, err
	}
	poly.Color = bandColor
	poly.LineStyle.Width = 0

	line, err := plotter.NewLine(yhat)
	if err != nil {
		return nil, err
	}
	line.Color = forecastColor
	line.Width = vg.Points(1.5)

	p.Add(poly, line)
	p.Legend.Add(fmt.Sprintf("%.0f%% interval", fc.IntervalWidth*100), poly)
	p.Legend.Add("forecast", line)

	if len(actual) > 0 {
		sc, err := plotter.NewScatter(actual)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = actualColor
		sc.GlyphStyle.Radius = vg.Points(1.2)
		p.Add(sc)
		p.Legend.Add("actual", sc)
	}
	p.Legend.Top = true
	return p, nil
}

func capTo(v, limit float64) float64 {
	if limit > 0 && v > limit {
		return limit
	}
	return v
}

// WriteForecastPNG renders the forecast chart as png to out.
func WriteForecastPNG(out io.Writer, c *Config, fc *entity.Forecast) error {
	p, err := ForecastChart(fc)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(vg.Length(c.ChartWidth)*vg.Centimeter, vg.Length(c.ChartHeight)*vg.Centimeter, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(out)
	return err
}

// SaveForecastPNG writes the forecast chart to name under c.OutputDir and
// returns the full path.
func SaveForecastPNG(c *Config, name string, fc *entity.Forecast) (string, error) {
	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(c.OutputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteForecastPNG(f, c, fc); err != nil {
		f.Close()
		return "", fmt.Errorf("can't render chart %s: %w", path, err)
	}
	return path, f.Close()
}
