package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/report"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/scheduler"
)

func main() {
	var (
		file        string
		seed        uint64
		evaluations int
		population  int
		policy      string
		chart       string
		timeout     time.Duration
		verbose     bool
	)

	pflag.StringVarP(&file, "file", "f", "problem.yaml", "问题描述文件")
	pflag.Uint64Var(&seed, "seed", 0, "随机数种子，为 0 时使用文件中的种子，两者都为 0 时随机选择")
	pflag.IntVar(&evaluations, "evaluations", 10000, "最大评估次数")
	pflag.IntVar(&population, "population", 0, "种群大小，为 0 时根据参考点数量计算")
	pflag.StringVar(&policy, "policy", "last", "从档案中挑选方案的策略 (last, nearest-ideal)")
	pflag.StringVar(&chart, "chart", "", "输出图表的 html 文件路径")
	pflag.DurationVar(&timeout, "timeout", 0, "运行时间上限，为 0 时不限制")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "输出每一代的日志")
	pflag.Parse()

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	p, err := loadProblem(file)
	if err != nil {
		logger.Error("无法读取问题文件", "error", err)
		os.Exit(1)
	}

	params := scheduler.DefaultParameters()
	params.MaxEvaluations = evaluations
	params.PopulationSize = population
	params.Seed = p.Seed
	if seed != 0 {
		params.Seed = seed
	}

	s, err := scheduler.New(params, p.Productivity, p.Slopes, p.Quotas)
	if err != nil {
		logger.Error("问题不合法", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	outcome, err := s.WithLogger(logger).WithPolicy(scheduler.PolicyByName(policy)).Schedule(ctx)
	if err != nil {
		if outcome == nil || !(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			logger.Error("排班失败", "error", err)
			os.Exit(1)
		}
		logger.Warn("排班被提前终止，输出当前结果", "error", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(outcome); err != nil {
		logger.Error("无法输出结果", "error", err)
		os.Exit(1)
	}

	if chart == "" {
		return
	}
	if !outcome.Feasible {
		logger.Warn("没有可行方案，不生成图表")
		return
	}
	if err := writeChart(chart, p, outcome); err != nil {
		logger.Error("无法生成图表", "error", err)
		os.Exit(1)
	}
}

// 两个地块时画出前沿，否则画出各地块的采收量
func writeChart(path string, p *problemFile, outcome *domain.SchedulingOutcome) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if len(p.Slopes) == 2 {
		return report.FrontChart(f, fmt.Sprintf("%d 名工人的采收前沿", len(p.Productivity)), outcome.Front, outcome.Objectives)
	}
	return report.QuotaChart(f, "各地块采收量", p.Quotas, outcome.Objectives)
}
