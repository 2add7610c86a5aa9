// Package chart renders the derived standings series as PNG images.
// It is boundary code: visual styling stays minimal and nothing here
// feeds back into the derivation pipeline.
package chart

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/heatboard/heatboard/internal/domain/series"
)

// Default render dimensions.
const (
	defaultWidth       = 1000
	defaultHeight      = 500
	defaultLegendLimit = 20
)

// Renderer draws trajectory and distribution charts from a series result.
type Renderer struct {
	width       int
	height      int
	legendLimit int
}

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithSize sets the output dimensions in pixels.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 && height > 0 {
			r.width = width
			r.height = height
		}
	}
}

// WithLegendLimit caps how many users are drawn on trajectory charts.
// The original tracker showed the top 20 and hid the rest.
func WithLegendLimit(limit int) Option {
	return func(r *Renderer) {
		if limit > 0 {
			r.legendLimit = limit
		}
	}
}

// New creates a Renderer with default dimensions.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		width:       defaultWidth,
		height:      defaultHeight,
		legendLimit: defaultLegendLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ScoreTrajectories renders one line per user of best-score-so-far over
// elapsed hours.
func (r *Renderer) ScoreTrajectories(res *series.Result) ([]byte, error) {
	if len(res.Bins) < 2 {
		return r.renderPlaceholder("not enough data points yet")
	}

	maxScore := 0.0
	for _, row := range res.Scores {
		for _, s := range row {
			if s > maxScore {
				maxScore = s
			}
		}
	}

	graph := chart.Chart{
		Width:  r.width,
		Height: r.height,
		XAxis:  chart.XAxis{Name: "Elapsed Time [hour]"},
		YAxis: chart.YAxis{
			Name:  "Score",
			Range: &chart.ContinuousRange{Min: 0, Max: maxScore + 1},
		},
		Series: r.trajectorySeries(res, res.Scores),
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return render(&graph)
}

// RankTrajectories renders one line per user of competition rank over
// elapsed hours, with rank 1 at the top.
func (r *Renderer) RankTrajectories(res *series.Result) ([]byte, error) {
	if len(res.Bins) < 2 {
		return r.renderPlaceholder("not enough data points yet")
	}

	rankValues := make([][]float64, len(res.Ranks))
	for i, row := range res.Ranks {
		rankValues[i] = make([]float64, len(row))
		for j, v := range row {
			rankValues[i][j] = float64(v)
		}
	}

	graph := chart.Chart{
		Width:  r.width,
		Height: r.height,
		XAxis:  chart.XAxis{Name: "Elapsed Time [hour]"},
		YAxis: chart.YAxis{
			Name: "Rank",
			// Rank 1 belongs at the top.
			Range: &chart.ContinuousRange{
				Min:        0.5,
				Max:        float64(len(res.Users)) + 0.5,
				Descending: true,
			},
		},
		Series: r.trajectorySeries(res, rankValues),
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return render(&graph)
}

// ScoreDistribution renders the final-bin score distribution as bars
// indexed by rank position.
func (r *Renderer) ScoreDistribution(bars []series.DistributionBar) ([]byte, error) {
	if len(bars) == 0 {
		return r.renderPlaceholder("no scores yet")
	}

	maxScore := 0.0
	values := make([]chart.Value, len(bars))
	for i, b := range bars {
		values[i] = chart.Value{Label: fmt.Sprintf("%d", b.Rank), Value: b.Score}
		if b.Score > maxScore {
			maxScore = b.Score
		}
	}

	graph := chart.BarChart{
		Width:  r.width,
		Height: r.height,
		XAxis:  chart.Style{},
		YAxis: chart.YAxis{
			Name:  "Score",
			Range: &chart.ContinuousRange{Min: 0, Max: maxScore + 1},
		},
		Bars: values,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return buffer.Bytes(), nil
}

// trajectorySeries builds one continuous series per user column, capped at
// the legend limit.
func (r *Renderer) trajectorySeries(res *series.Result, values [][]float64) []chart.Series {
	xValues := make([]float64, len(res.Bins))
	for i, b := range res.Bins {
		xValues[i] = float64(b)
	}

	count := len(res.Users)
	if count > r.legendLimit {
		count = r.legendLimit
	}

	out := make([]chart.Series, 0, count)
	for col := 0; col < count; col++ {
		yValues := make([]float64, len(res.Bins))
		for row := range res.Bins {
			yValues[row] = values[row][col]
		}
		out = append(out, chart.ContinuousSeries{
			Name:    res.Users[col],
			XValues: xValues,
			YValues: yValues,
		})
	}
	return out
}

func (r *Renderer) renderPlaceholder(msg string) ([]byte, error) {
	graph := chart.Chart{
		Width:  r.width,
		Height: r.height / 2,
		// Render requires at least one series; keep a flat baseline under
		// the message.
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 0},
			},
		},
		Elements: []chart.Renderable{
			func(cr chart.Renderer, cb chart.Box, defaults chart.Style) {
				cr.SetFontSize(12.0)
				tb := cr.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				cr.Text(msg, x, y)
			},
		},
	}
	return render(&graph)
}

func render(graph *chart.Chart) ([]byte, error) {
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return buffer.Bytes(), nil
}
