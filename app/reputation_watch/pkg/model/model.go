package model

import "time"

// 情感分值边界与回退值
const (
	MinSentiment     = -1.0
	MaxSentiment     = 1.0
	NeutralSentiment = 0.0
)

// Record 单条打分后的提及记录，创建后不再修改
type Record struct {
	Date      time.Time // 运行开始日期（按天）
	Keyword   string
	Source    string
	Text      string // 原始片段，不做修改
	Sentiment float64
}

// ValidSentiment 判断分值是否落在 [-1, 1]
func ValidSentiment(v float64) bool {
	return v >= MinSentiment && v <= MaxSentiment
}

// RunDate 把运行时间截断到日期
func RunDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
