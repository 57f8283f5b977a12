package dataset

import (
	"errors"
	"time"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/model"
)

// ErrEmptyDataset 本次运行没有产生任何记录
var ErrEmptyDataset = errors.New("dataset is empty")

// Dataset 一次运行的全部记录，只读
type Dataset struct {
	records []model.Record
}

// KeywordSummary 单个关键词的汇总
type KeywordSummary struct {
	Keyword       string
	Count         int
	MeanSentiment float64
}

// Build 组装数据集，空输入得到空数据集
func Build(records []model.Record) *Dataset {
	return &Dataset{records: append([]model.Record(nil), records...)}
}

// Len 记录条数
func (d *Dataset) Len() int { return len(d.records) }

// Empty 是否没有记录
func (d *Dataset) Empty() bool { return len(d.records) == 0 }

// Records 返回记录副本
func (d *Dataset) Records() []model.Record {
	return append([]model.Record(nil), d.records...)
}

// Summarize 每个关键词跨所有数据源的平均情感分，没有记录的关键词不出现
func (d *Dataset) Summarize() map[string]float64 {
	out := make(map[string]float64)
	for _, s := range d.Summaries() {
		out[s.Keyword] = s.MeanSentiment
	}
	return out
}

// Summaries 与 Summarize 相同，按关键词首次出现的顺序返回
func (d *Dataset) Summaries() []KeywordSummary {
	index := make(map[string]int)
	var sums []float64
	var out []KeywordSummary
	for _, r := range d.records {
		i, ok := index[r.Keyword]
		if !ok {
			i = len(out)
			index[r.Keyword] = i
			out = append(out, KeywordSummary{Keyword: r.Keyword})
			sums = append(sums, 0)
		}
		out[i].Count++
		sums[i] += r.Sentiment
	}
	for i := range out {
		out[i].MeanSentiment = sums[i] / float64(out[i].Count)
	}
	return out
}

// DateRange 记录日期的最小值和最大值，空数据集返回零值
func (d *Dataset) DateRange() (from, to time.Time) {
	for i, r := range d.records {
		if i == 0 || r.Date.Before(from) {
			from = r.Date
		}
		if i == 0 || r.Date.After(to) {
			to = r.Date
		}
	}
	return from, to
}
