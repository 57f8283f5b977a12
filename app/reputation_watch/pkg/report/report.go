package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/dataset"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/logger"
)

const (
	chartFile = "trend.png"
	textWidth = 50
)

// Options 渲染参数
type Options struct {
	OutputDir string
	Format    string // html | pdf
	FontFile  string
	RunID     string
}

// Artifacts 渲染产物路径
type Artifacts struct {
	Report string
	Chart  string
}

// Row 报告中的一行记录
type Row struct {
	Keyword   string
	Source    string
	Text      string
	Sentiment float64
}

// Line 按 "keyword | source | text… | sentiment:0.00" 格式化
func (r Row) Line() string {
	return fmt.Sprintf("%s | %s | %s | sentiment:%.2f", r.Keyword, r.Source, r.Text, r.Sentiment)
}

// FileName 报告文件名
func FileName(format string) string {
	return "weekly_report." + format
}

// Render 生成图表和报告文件；空数据集返回 dataset.ErrEmptyDataset，不生成任何文件
func Render(ds *dataset.Dataset, opts Options) (*Artifacts, error) {
	if ds == nil || ds.Empty() {
		logger.Log.Warn("没有数据，跳过报告生成")
		return nil, dataset.ErrEmptyDataset
	}
	if opts.Format == "" {
		opts.Format = "html"
	}
	if opts.Format != "html" && opts.Format != "pdf" {
		return nil, fmt.Errorf("unknown report format: %s", opts.Format)
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var png bytes.Buffer
	if err := RenderChart(&png, ds.Summaries(), opts.FontFile); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	art := &Artifacts{
		Chart:  filepath.Join(opts.OutputDir, chartFile),
		Report: filepath.Join(opts.OutputDir, FileName(opts.Format)),
	}
	if err := os.WriteFile(art.Chart, png.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write chart: %w", err)
	}

	data := buildPage(ds, opts.RunID)
	var err error
	switch opts.Format {
	case "html":
		err = writeHTML(art.Report, data, png.Bytes())
	case "pdf":
		err = writePDF(art.Report, data, art.Chart, opts.FontFile)
	}
	if err != nil {
		return nil, err
	}

	logger.Log.Infof("报告已生成: %s", art.Report)
	return art, nil
}

// page 模板数据
type page struct {
	Title     string
	RunID     string
	Generated string
	Rows      []Row
	Summaries []dataset.KeywordSummary
	Chart     template.URL
}

func buildPage(ds *dataset.Dataset, runID string) page {
	from, to := ds.DateRange()
	p := page{
		Title:     fmt.Sprintf("Weekly reputation report %s ~ %s", from.Format(time.DateOnly), to.Format(time.DateOnly)),
		RunID:     runID,
		Generated: time.Now().Format("2006-01-02 15:04"),
		Summaries: ds.Summaries(),
	}
	for _, r := range ds.Records() {
		p.Rows = append(p.Rows, Row{
			Keyword:   r.Keyword,
			Source:    r.Source,
			Text:      Truncate(r.Text, textWidth),
			Sentiment: r.Sentiment,
		})
	}
	return p
}

// Truncate 超过 n 个字符时截断并追加省略号
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
