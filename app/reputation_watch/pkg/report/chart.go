package report

import (
	"fmt"
	"io"
	"os"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/dataset"
)

var (
	positiveColor = drawing.ColorFromHex("2e7d32")
	negativeColor = drawing.ColorFromHex("c62828")
)

// RenderChart 画出每个关键词平均情感分的柱状图（PNG）
func RenderChart(w io.Writer, summaries []dataset.KeywordSummary, fontFile string) error {
	if len(summaries) == 0 {
		return dataset.ErrEmptyDataset
	}

	bars := make([]chart.Value, 0, len(summaries))
	for _, s := range summaries {
		color := positiveColor
		if s.MeanSentiment < 0 {
			color = negativeColor
		}
		bars = append(bars, chart.Value{
			Label: s.Keyword,
			Value: s.MeanSentiment,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
	}

	graph := chart.BarChart{
		Title:        "Mean sentiment by keyword",
		Background:   chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		Width:        max(640, 120*len(bars)),
		Height:       480,
		BarWidth:     60,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: -1, Max: 1},
		},
		Bars: bars,
	}

	if fontFile != "" {
		font, err := loadFont(fontFile)
		if err != nil {
			return err
		}
		graph.Font = font
	}

	return graph.Render(chart.PNG, w)
}

func loadFont(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	font, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return font, nil
}
