package report

import (
	"bytes"
	"fmt"
	"html/template"
	"math"

	"github.com/google/uuid"
	"github.com/newthinker/fundrep/internal/core"
)

// PlotlyCDN is the script the chart markup loads Plotly from
const PlotlyCDN = "https://cdn.plot.ly/plotly-2.27.0.min.js"

// Chart canvas and axis constants
const (
	ChartWidth  = 480
	ChartHeight = 300

	priceBoundStep   = 5000.0
	priceTickSmall   = 2500.0
	priceTickLarge   = 5000.0
	priceTickCutover = 16000.0
	assetTick        = 100000.0
	dateTickEvery    = "M36"
)

// PriceScale is the left axis of the price chart
type PriceScale struct {
	Max  float64
	Tick float64
}

// NewPriceScale computes the left axis from the highest basic price.
// Max is the next multiple of 5000 strictly above the highest price.
func NewPriceScale(series core.PriceSeries) (PriceScale, error) {
	max, ok := series.MaxBasicPrice()
	if !ok {
		return PriceScale{}, core.ErrEmptySeries
	}

	tick := priceTickSmall
	if max >= priceTickCutover {
		tick = priceTickLarge
	}

	return PriceScale{
		Max:  (math.Floor(max/priceBoundStep) + 1) * priceBoundStep,
		Tick: tick,
	}, nil
}

// Figure is a Plotly figure. Field names follow plotly.js attributes.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type       string    `json:"type"`
	X          []string  `json:"x"`
	Y          []float64 `json:"y"`
	Mode       string    `json:"mode"`
	Name       string    `json:"name"`
	Line       Line      `json:"line"`
	HoverInfo  string    `json:"hoverinfo"`
	StackGroup string    `json:"stackgroup,omitempty"`
	Fill       string    `json:"fill,omitempty"`
	YAxis      string    `json:"yaxis,omitempty"`
}

type Line struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

type Axis struct {
	ShowGrid       bool      `json:"showgrid"`
	ShowLine       bool      `json:"showline"`
	LineWidth      float64   `json:"linewidth,omitempty"`
	LineColor      string    `json:"linecolor,omitempty"`
	Mirror         bool      `json:"mirror"`
	ShowTickLabels bool      `json:"showticklabels"`
	Tick0          string    `json:"tick0,omitempty"`
	DTick          any       `json:"dtick,omitempty"`
	Ticks          string    `json:"ticks,omitempty"`
	Range          []float64 `json:"range,omitempty"`
	TickFormat     string    `json:"tickformat,omitempty"`
	Overlaying     string    `json:"overlaying,omitempty"`
	Side           string    `json:"side,omitempty"`
}

type Legend struct {
	YAnchor string  `json:"yanchor"`
	Y       float64 `json:"y"`
	XAnchor string  `json:"xanchor"`
	X       float64 `json:"x"`
}

type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

type Layout struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Margin     Margin `json:"margin"`
	XAxis      Axis   `json:"xaxis"`
	YAxis      Axis   `json:"yaxis"`
	YAxis2     Axis   `json:"yaxis2"`
	ShowLegend bool   `json:"showlegend"`
	Legend     Legend `json:"legend"`
	HoverMode  string `json:"hovermode"`
}

// Chart is a renderable price chart
type Chart struct {
	ID     string
	Figure Figure
	Scale  PriceScale
}

// NewPriceChart builds the dual-axis basic price / net asset chart.
// An empty series fails with ErrEmptySeries.
func NewPriceChart(series core.PriceSeries) (*Chart, error) {
	scale, err := NewPriceScale(series)
	if err != nil {
		return nil, err
	}

	dates := make([]string, len(series))
	prices := make([]float64, len(series))
	assets := make([]float64, len(series))
	for i, r := range series {
		dates[i] = r.Date.Format("2006-01-02")
		prices[i] = r.BasicPrice
		assets[i] = r.NetAssetAmount
	}

	fig := Figure{
		Data: []Trace{
			{
				Type:      "scatter",
				X:         dates,
				Y:         prices,
				Mode:      "lines",
				Name:      "基準価額（円）：左目盛",
				Line:      Line{Width: 1.0, Color: "rgb(255, 0, 0)"},
				HoverInfo: "x+y",
			},
			{
				Type:       "scatter",
				X:          dates,
				Y:          assets,
				Mode:       "lines",
				Name:       "純資産総額（億円）：右目盛",
				Line:       Line{Width: 0, Color: "rgb(153, 204, 255)"},
				HoverInfo:  "x+y",
				StackGroup: "one",
				Fill:       "tozeroy",
				YAxis:      "y2",
			},
		},
		Layout: Layout{
			Width:  ChartWidth,
			Height: ChartHeight,
			Margin: Margin{L: 10, R: 10, T: 10, B: 10},
			XAxis: Axis{
				ShowLine:       true,
				LineWidth:      2,
				LineColor:      "black",
				Mirror:         true,
				ShowTickLabels: true,
				Tick0:          dates[0],
				DTick:          dateTickEvery,
				Ticks:          "inside",
			},
			YAxis: Axis{
				Mirror:         true,
				ShowTickLabels: true,
				DTick:          scale.Tick,
				Range:          []float64{0, scale.Max},
				TickFormat:     ">0,d",
			},
			YAxis2: Axis{
				Mirror:         true,
				ShowTickLabels: true,
				DTick:          assetTick,
				Overlaying:     "y",
				Side:           "right",
			},
			ShowLegend: true,
			Legend:     Legend{YAnchor: "bottom", Y: -0.45, XAnchor: "left", X: 0},
			HoverMode:  "x",
		},
	}

	return &Chart{
		ID:     uuid.NewString(),
		Figure: fig,
		Scale:  scale,
	}, nil
}

var chartTmpl = template.Must(template.New("chart").Parse(
	`<div id="{{.ID}}" class="plotly-graph-div" style="height:{{.Height}}px; width:{{.Width}}px;"></div>
<script src="{{.CDN}}" charset="utf-8"></script>
<script type="text/javascript">Plotly.newPlot({{.ID}}, {{.Data}}, {{.Layout}}, {{.Config}});</script>`))

type plotConfig struct {
	DisplayModeBar bool `json:"displayModeBar"`
	Responsive     bool `json:"responsive"`
}

// Markup renders the chart as a self-contained HTML fragment
func (c *Chart) Markup() (template.HTML, error) {
	var buf bytes.Buffer
	err := chartTmpl.Execute(&buf, map[string]any{
		"ID":     c.ID,
		"Width":  c.Figure.Layout.Width,
		"Height": c.Figure.Layout.Height,
		"CDN":    PlotlyCDN,
		"Data":   c.Figure.Data,
		"Layout": c.Figure.Layout,
		"Config": plotConfig{DisplayModeBar: false, Responsive: true},
	})
	if err != nil {
		return "", fmt.Errorf("rendering chart: %w", err)
	}
	return template.HTML(buf.String()), nil
}
