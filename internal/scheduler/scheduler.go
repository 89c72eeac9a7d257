package scheduler

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/nsga3"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/utils"
)

const InfeasibleMessage = "没有找到满足工时约束的排班方案，请检查工人数量以及地块的情况"

type Scheduler struct {
	parameters *Parameters
	problem    *Problem
	rng        *rand.Rand
	policy     SelectionPolicy
	logger     *slog.Logger
}

func New(parameters *Parameters, productivity, slopes []domain.Category, quotas []float64) (*Scheduler, error) {
	if parameters == nil {
		parameters = DefaultParameters()
	}

	seed := parameters.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	problem, err := encode(productivity, slopes, quotas, rng)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		parameters: parameters,
		problem:    problem,
		rng:        rng,
		policy:     SelectLast,
		logger:     slog.Default(),
	}, nil
}

func (s *Scheduler) WithPolicy(policy SelectionPolicy) *Scheduler {
	if policy != nil {
		s.policy = policy
	}
	return s
}

func (s *Scheduler) WithLogger(logger *slog.Logger) *Scheduler {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Scheduler) Problem() *Problem {
	return s.problem
}

// Schedule 运行优化并从可行档案中挑选一个方案
// ctx 被取消时依然会根据当时的档案生成结果，同时返回 ctx.Err()
func (s *Scheduler) Schedule(ctx context.Context) (*domain.SchedulingOutcome, error) {
	cfg := nsga3.DefaultConfig()
	cfg.PopulationSize = s.parameters.PopulationSize
	if s.parameters.DivisionsOuter > 0 {
		cfg.DivisionsOuter = s.parameters.DivisionsOuter
	}
	cfg.DivisionsInner = s.parameters.DivisionsInner
	if s.parameters.MaxEvaluations > 0 {
		cfg.MaxEvaluations = s.parameters.MaxEvaluations
	}
	if s.parameters.CrossoverRate > 0 {
		cfg.CrossoverRate = s.parameters.CrossoverRate
	}
	cfg.MutationRate = s.parameters.MutationRate
	if s.parameters.Concurrency > 0 {
		cfg.Concurrency = s.parameters.Concurrency
	}

	engine, err := nsga3.New(s.problem.Definition(), cfg, s.rng, s.logger)
	if err != nil {
		return nil, err
	}

	res, runErr := engine.Run(ctx)
	if res == nil {
		return nil, runErr
	}

	outcome := &domain.SchedulingOutcome{
		ArchiveSize: len(res.Archive),
		Evaluations: res.Evaluations,
		Rates:       make([]float64, len(s.problem.workers)),
	}
	for i, w := range s.problem.workers {
		outcome.Rates[i] = w.Rate
	}

	if len(res.Archive) == 0 {
		outcome.Message = InfeasibleMessage
		s.logger.Warn("排班没有可行解", "workers", len(s.problem.workers), "plots", len(s.problem.plots))
		return outcome, runErr
	}

	chosen := res.Archive[s.policy(res.Archive)]
	outcome.Feasible = true
	outcome.Allocation = decode(chosen.Variables, len(s.problem.workers), len(s.problem.plots))
	if err := utils.ValidateAllocation(outcome.Allocation, len(s.problem.workers), len(s.problem.plots), int(MinWeeklyHours), int(MaxWeeklyHours), int(MaxPlotHours)); err != nil {
		return nil, err
	}
	outcome.Objectives = chosen.Objectives
	outcome.Front = make([][]float64, len(res.Front))
	for k, ind := range res.Front {
		outcome.Front[k] = ind.Objectives
	}

	return outcome, runErr
}
