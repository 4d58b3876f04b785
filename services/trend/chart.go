package trend

import (
	"fmt"
	"os"
	"strings"
	"time"

	"coinwatch/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const xAxisTimeLayout = "Jan-02 15:04"

// writeInteractiveChart renders the standalone ECharts document. The
// piecewise up/down coloring is expressed as one two-point series per
// consecutive pair, padded with gaps so every series shares the full
// category axis.
func writeInteractiveChart(path, currency string, points []models.PricePoint) error {
	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Timestamp.Format(xAxisTimeLayout)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fmt.Sprintf("BTC Trend (%s)", currency),
			Width:     "640px",
			Height:    "420px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("BTC Price Trend (%s)", currency),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Name: currency, Scale: opts.Bool(true)}),
	)
	line.SetXAxis(labels)

	for i := 0; i+1 < len(points); i++ {
		data := make([]opts.LineData, len(points))
		for j := range data {
			data[j] = opts.LineData{Value: "-"}
		}
		data[i] = opts.LineData{Value: points[i].Value.InexactFloat64()}
		data[i+1] = opts.LineData{Value: points[i+1].Value.InexactFloat64()}

		color := segmentColor(points[i], points[i+1])
		line.AddSeries("", data,
			charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 2}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
		)
	}

	// Distinguished marker on the latest observation, labeled with its
	// exact value.
	marker := make([]opts.ScatterData, len(points))
	for j := range marker {
		marker[j] = opts.ScatterData{Value: "-"}
	}
	last := points[len(points)-1]
	marker[len(points)-1] = opts.ScatterData{
		Value:      last.Value.InexactFloat64(),
		SymbolSize: 14,
	}

	scatter := charts.NewScatter()
	scatter.SetXAxis(labels)
	scatter.AddSeries("latest", marker,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: markerColor(points)}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)
	line.Overlap(scatter)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart document: %w", err)
	}
	defer f.Close()

	if err := line.Render(f); err != nil {
		return fmt.Errorf("failed to render chart document: %w", err)
	}
	return nil
}

// writeStaticChart renders the PNG fallback with the same piecewise
// coloring, suitable for mail attachments.
func writeStaticChart(path, currency string, points []models.PricePoint) error {
	series := make([]chart.Series, 0, len(points))

	if len(points) == 1 {
		// go-chart cannot derive a range from a single x value; draw a
		// flat one-second segment instead.
		only := points[0]
		series = append(series, chart.TimeSeries{
			Style: chart.Style{
				StrokeColor: hexColor(ColorSingle),
				StrokeWidth: 2.0,
			},
			XValues: []time.Time{only.Timestamp, only.Timestamp.Add(time.Second)},
			YValues: []float64{only.Value.InexactFloat64(), only.Value.InexactFloat64()},
		})
	}

	for i := 0; i+1 < len(points); i++ {
		color := hexColor(segmentColor(points[i], points[i+1]))
		series = append(series, chart.TimeSeries{
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2.0,
			},
			XValues: []time.Time{points[i].Timestamp, points[i+1].Timestamp},
			YValues: []float64{points[i].Value.InexactFloat64(), points[i+1].Value.InexactFloat64()},
		})
	}

	last := points[len(points)-1]
	series = append(series, chart.AnnotationSeries{
		Style: chart.Style{
			StrokeColor: hexColor(markerColor(points)),
		},
		Annotations: []chart.Value2{{
			XValue: chart.TimeToFloat64(last.Timestamp),
			YValue: last.Value.InexactFloat64(),
			Label:  last.Value.StringFixed(2),
		}},
	})

	graph := chart.Chart{
		Title:  fmt.Sprintf("BTC Price Trend (%s)", currency),
		Width:  900,
		Height: 450,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat(xAxisTimeLayout),
		},
		YAxis: chart.YAxis{
			Name: currency,
		},
		Series: series,
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart image: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("failed to render chart image: %w", err)
	}
	return nil
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
