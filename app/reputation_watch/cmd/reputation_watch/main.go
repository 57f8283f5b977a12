package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/config"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/dataset"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/delivery"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/engine"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/logger"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/report"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/sentiment"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/source"
)

const (
	dataFile    = "weekly_data.csv"
	sendTimeout = 2 * time.Minute
)

func main() {
	os.Exit(run())
}

func run() int {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Printf("无法加载配置: %v", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("配置错误: %v", err)
		return 1
	}

	// 2. 初始化日志
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Printf("无法初始化日志: %v", err)
		return 1
	}
	runID := uuid.NewString()
	logger.Log.Infof("启动舆情监控 run=%s, 关键词 %d 个, 数据源 %v", runID, len(cfg.Keywords), cfg.EnabledSources())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	// 3. 初始化数据源
	adapters, err := source.Build(cfg)
	if err != nil {
		logger.Log.Errorf("数据源初始化失败: %v", err)
		return 1
	}

	// 4. 初始化情感分类
	classifier, err := sentiment.NewOpenAIClassifier(runCtx, cfg.LLM, cfg.Concurrency)
	if err != nil {
		logger.Log.Errorf("%v", err)
		return 1
	}
	scorer := sentiment.NewScorer(classifier,
		sentiment.WithMaxInputChars(cfg.LLM.MaxInputChars),
		sentiment.WithRetry(cfg.LLM.MaxRetries, 2*time.Second),
	)

	var mailer *delivery.Mailer
	if cfg.Mail.Enabled {
		if mailer, err = delivery.NewSMTPMailer(cfg.Mail); err != nil {
			logger.Log.Errorf("%v", err)
			return 1
		}
	}

	p := &pipeline{cfg: cfg, runID: runID, adapters: adapters, scorer: scorer, mailer: mailer}
	return p.execute(runCtx)
}

// pipeline 一次运行：采集、导出、生成报告、发信；mailer 为 nil 时不发信
type pipeline struct {
	cfg      *config.Config
	runID    string
	adapters []source.Adapter
	scorer   engine.Scorer
	mailer   *delivery.Mailer
}

// execute 返回进程退出码
func (p *pipeline) execute(ctx context.Context) int {
	// 5. 采集并打分，被中断时保留已完成的记录
	eng := engine.NewEngine(p.adapters, p.scorer, p.cfg.Concurrency.Workers)
	result, err := eng.Collect(ctx, p.cfg.Keywords)
	if err != nil {
		logger.Log.Warnf("采集被中断，继续使用已完成的 %d 条记录: %v", len(result.Records), err)
	}
	for _, f := range result.Failed() {
		logger.Log.Warnf("数据源不可用 [%s / %s]: %v", f.Keyword, f.Source, f.Err)
	}

	// 6. 汇总并导出数据文件
	ds := dataset.Build(result.Records)
	csvPath := filepath.Join(p.cfg.Report.OutputDir, dataFile)
	if err := ds.WriteCSV(csvPath); err != nil {
		logger.Log.Errorf("导出数据失败: %v", err)
		return 1
	}
	logger.Log.Infof("数据已导出: %s (%d 条)", csvPath, ds.Len())
	printSummary(ds)

	// 7. 基于导出文件生成报告
	exported, err := dataset.ReadCSV(csvPath)
	if err != nil {
		logger.Log.Errorf("读取导出数据失败: %v", err)
		return 1
	}
	art, err := report.Render(exported, report.Options{
		OutputDir: p.cfg.Report.OutputDir,
		Format:    p.cfg.Report.Format,
		FontFile:  p.cfg.Report.FontFile,
		RunID:     p.runID,
	})
	if errors.Is(err, dataset.ErrEmptyDataset) {
		logger.Log.Warn("本次没有采集到任何记录，跳过报告和邮件")
		return 1
	}
	if err != nil {
		logger.Log.Errorf("生成报告失败: %v", err)
		return 1
	}

	// 8. 发送邮件
	if p.mailer == nil {
		logger.Log.Info("未启用邮件发送，运行结束")
		return 0
	}
	// 采集超时或中断不影响发信
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()
	return p.deliver(sendCtx, exported, []string{art.Report, csvPath})
}

// deliver 发送报告邮件并把结果映射为退出码
func (p *pipeline) deliver(ctx context.Context, ds *dataset.Dataset, attachments []string) int {
	from, to := ds.DateRange()
	err := p.mailer.Send(ctx, delivery.Message{
		Subject: "Reputation report " + to.Format(time.DateOnly),
		Body: fmt.Sprintf("Reputation report %s ~ %s\n%d mentions, %d keywords.\nrun: %s\n",
			from.Format(time.DateOnly), to.Format(time.DateOnly), ds.Len(), len(ds.Summaries()), p.runID),
		Attachments: attachments,
	})
	switch {
	case errors.Is(err, delivery.ErrAttachmentMissing):
		logger.Log.Errorf("邮件未发送: %v", err)
		return 0
	case errors.Is(err, delivery.ErrAuthentication):
		logger.Log.Errorf("发信账号认证失败: %v", err)
		return 1
	case err != nil:
		logger.Log.Errorf("邮件发送失败: %v", err)
		return 1
	}

	logger.Log.Info("✅ 舆情报告已发送")
	return 0
}

// printSummary 在控制台输出各关键词平均分，正向绿色，负向红色
func printSummary(ds *dataset.Dataset) {
	pos := color.New(color.FgGreen, color.Bold)
	neg := color.New(color.FgRed, color.Bold)
	for _, s := range ds.Summaries() {
		c := pos
		if s.MeanSentiment < 0 {
			c = neg
		}
		fmt.Printf("%-24s %4d  ", s.Keyword, s.Count)
		c.Printf("%+.2f\n", s.MeanSentiment)
	}
}
