package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/logger"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/model"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/source"
)

// Scorer 单条文本打分，失败时自行回退
type Scorer interface {
	Score(ctx context.Context, text string) float64
}

// PairStatus 单个 (关键词, 数据源) 任务的结果
type PairStatus string

const (
	StatusOK          PairStatus = "ok"
	StatusEmpty       PairStatus = "empty"
	StatusUnavailable PairStatus = "unavailable"
	StatusCancelled   PairStatus = "cancelled"
)

// PairOutcome 单个任务的执行情况，用于日志和运行摘要
type PairOutcome struct {
	Keyword string
	Source  string
	Status  PairStatus
	Count   int
	Err     error
}

// Result 一次采集的结果；Records 按 关键词 -> 数据源 的枚举顺序排列
type Result struct {
	RunDate  time.Time
	Records  []model.Record
	Outcomes []PairOutcome
}

// Failed 返回不可用的任务
func (r *Result) Failed() []PairOutcome {
	var out []PairOutcome
	for _, o := range r.Outcomes {
		if o.Status == StatusUnavailable {
			out = append(out, o)
		}
	}
	return out
}

// Engine 采集调度：关键词 x 数据源，逐条打分生成记录
type Engine struct {
	adapters []source.Adapter
	scorer   Scorer
	workers  int
	now      func() time.Time
}

// NewEngine 创建调度器，adapters 的顺序即数据源处理顺序；workers<=1 时顺序执行
func NewEngine(adapters []source.Adapter, scorer Scorer, workers int) *Engine {
	return &Engine{
		adapters: adapters,
		scorer:   scorer,
		workers:  max(workers, 1),
		now:      time.Now,
	}
}

type pair struct {
	keyword string
	adapter source.Adapter
}

// Collect 执行一次采集
//
// 单个任务的失败（获取失败、打分异常、panic）只影响该任务本身。
// ctx 取消时放弃未完成的任务，已完成的记录照常返回，同时返回 ctx 的错误。
func (e *Engine) Collect(ctx context.Context, keywords []string) (*Result, error) {
	runDate := model.RunDate(e.now())

	pairs := make([]pair, 0, len(keywords)*len(e.adapters))
	for _, kw := range keywords {
		for _, a := range e.adapters {
			pairs = append(pairs, pair{keyword: kw, adapter: a})
		}
	}
	logger.Log.Infof("开始采集: %d 个关键词, %d 个数据源, 共 %d 个任务", len(keywords), len(e.adapters), len(pairs))

	// 每个任务写入自己的槽位，最后按枚举顺序拼接，保证结果与并发完成顺序无关
	batches := make([][]model.Record, len(pairs))
	outcomes := make([]PairOutcome, len(pairs))
	var mu sync.Mutex
	done := 0

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, p := range pairs {
		if ctx.Err() != nil {
			outcomes[i] = PairOutcome{Keyword: p.keyword, Source: p.adapter.Name(), Status: StatusCancelled, Err: ctx.Err()}
			continue
		}
		g.Go(func() error {
			records, outcome := e.runPair(ctx, runDate, p)

			mu.Lock()
			batches[i] = records
			outcomes[i] = outcome
			done++
			logger.Log.Debugf("任务进度 %d/%d", done, len(pairs))
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{RunDate: runDate, Outcomes: outcomes}
	for _, b := range batches {
		result.Records = append(result.Records, b...)
	}

	logger.Log.Infof("采集完成: %d 条记录, %d 个任务失败", len(result.Records), len(result.Failed()))
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("collection interrupted: %w", err)
	}
	return result, nil
}

func (e *Engine) runPair(ctx context.Context, runDate time.Time, p pair) (records []model.Record, outcome PairOutcome) {
	name := p.adapter.Name()
	outcome = PairOutcome{Keyword: p.keyword, Source: name}
	log := logger.Log.WithFields(logrus.Fields{"keyword": p.keyword, "source": name})

	defer func() {
		if r := recover(); r != nil {
			records = nil
			outcome.Status = StatusUnavailable
			outcome.Count = 0
			outcome.Err = fmt.Errorf("%w: panic: %v", source.ErrSourceUnavailable, r)
			log.Errorf("任务异常，已跳过: %v", r)
		}
	}()

	snippets, err := p.adapter.Fetch(ctx, p.keyword)
	if err != nil {
		if ctx.Err() != nil {
			outcome.Status = StatusCancelled
			outcome.Err = ctx.Err()
			return nil, outcome
		}
		if !errors.Is(err, source.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %s: %w", source.ErrSourceUnavailable, name, err)
		}
		outcome.Status = StatusUnavailable
		outcome.Err = err
		log.Warnf("数据源不可用，跳过: %v", err)
		return nil, outcome
	}
	if len(snippets) == 0 {
		outcome.Status = StatusEmpty
		log.Infof("没有找到相关内容")
		return nil, outcome
	}

	records = make([]model.Record, 0, len(snippets))
	for _, text := range snippets {
		// 取消后不再发起新的打分，已打分的记录保留
		if ctx.Err() != nil {
			outcome.Status = StatusCancelled
			outcome.Err = ctx.Err()
			outcome.Count = len(records)
			return records, outcome
		}
		score := e.scorer.Score(ctx, text)
		if !model.ValidSentiment(score) {
			log.Warnf("分值 %v 越界，按中性分处理", score)
			score = model.NeutralSentiment
		}
		records = append(records, model.Record{
			Date:      runDate,
			Keyword:   p.keyword,
			Source:    name,
			Text:      text,
			Sentiment: score,
		})
	}

	outcome.Status = StatusOK
	outcome.Count = len(records)
	log.Infof("处理完成: %d 条记录", len(records))
	return records, outcome
}
