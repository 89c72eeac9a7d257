package nsga3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"slices"

	"github.com/sourcegraph/conc/pool"
)

// State 引擎的生命周期状态
type State int

const (
	StateInitialized State = iota
	StateRunning
	StateConverged // 预留状态，目前只有评估预算一个终止条件
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateConverged:
		return "converged"
	case StateExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var ErrAlreadyRun = errors.New("引擎已经运行过")

type Config struct {
	PopulationSize int // 为 0 时由参考点数量决定
	DivisionsOuter int
	DivisionsInner int // 为 0 时不生成内层参考点
	MaxEvaluations int
	CrossoverRate  float64
	CrossoverEta   float64
	MutationRate   float64 // 为 0 时取 1/变量数
	MutationEta    float64
	Concurrency    int // 小于等于 1 时串行评估
}

func DefaultConfig() Config {
	return Config{
		DivisionsOuter: 2,
		DivisionsInner: 1,
		MaxEvaluations: 10000,
		CrossoverRate:  1.0,
		CrossoverEta:   15,
		MutationEta:    20,
		Concurrency:    runtime.NumCPU(),
	}
}

type Result struct {
	Population      []*Individual
	Archive         []*Individual // 最终种群中的可行个体
	Front           []*Individual // Archive 中位于第一前沿的个体
	Evaluations     int
	Generations     int
	ReferencePoints []ReferencePoint
}

type Engine struct {
	problem   Problem
	config    Config
	rng       *rand.Rand
	logger    *slog.Logger
	refPoints []ReferencePoint
	survival  *survival
	popSize   int

	state       State
	population  []*Individual
	evaluations int
	generations int
}

func New(problem Problem, config Config, rng *rand.Rand, logger *slog.Logger) (*Engine, error) {
	if err := problem.validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("缺少随机数生成器")
	}
	if config.DivisionsOuter <= 0 {
		return nil, errors.New("外层参考点划分数必须大于 0")
	}
	if config.DivisionsInner < 0 || config.PopulationSize < 0 || config.MaxEvaluations < 0 {
		return nil, errors.New("配置项不能为负数")
	}
	if config.MutationRate == 0 {
		config.MutationRate = 1 / float64(problem.NumVariables)
	}
	if logger == nil {
		logger = slog.Default()
	}

	refPoints := GenerateReferencePoints(problem.NumObjectives, config.DivisionsOuter, config.DivisionsInner)

	popSize := config.PopulationSize
	if popSize == 0 {
		popSize = (len(refPoints) + 3) / 4 * 4
	}
	if popSize%2 != 0 {
		popSize++
	}

	return &Engine{
		problem:   problem,
		config:    config,
		rng:       rng,
		logger:    logger,
		refPoints: refPoints,
		survival:  newSurvival(refPoints, problem.NumObjectives),
		popSize:   popSize,
		state:     StateInitialized,
	}, nil
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) PopulationSize() int {
	return e.popSize
}

func (e *Engine) ReferencePoints() []ReferencePoint {
	return e.refPoints
}

// Run 运行直到评估次数耗尽；ctx 只在两代之间检查，
// 被取消时返回当前种群的结果以及 ctx.Err()
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if e.state != StateInitialized {
		return nil, ErrAlreadyRun
	}
	e.state = StateRunning

	e.logger.Info("NSGA-III 开始运行",
		"variables", e.problem.NumVariables,
		"objectives", e.problem.NumObjectives,
		"referencePoints", len(e.refPoints),
		"population", e.popSize,
		"maxEvaluations", e.config.MaxEvaluations,
	)

	e.population = e.survival.selectSurvivors(e.evaluate(e.sample()), e.popSize)

	for e.evaluations < e.config.MaxEvaluations {
		if err := ctx.Err(); err != nil {
			e.state = StateExhausted
			e.logger.Warn("NSGA-III 运行被中断", "generations", e.generations, "evaluations", e.evaluations, "error", err)
			return e.result(), err
		}

		offspring := e.evaluate(e.variation())
		merged := append(slices.Clone(e.population), offspring...)
		e.population = e.survival.selectSurvivors(merged, e.popSize)
		e.generations++

		if e.generations%100 == 0 {
			e.logger.Debug("NSGA-III 进度",
				"generations", e.generations,
				"evaluations", e.evaluations,
				"feasible", len(Feasible(e.population)),
			)
		}
	}

	e.state = StateExhausted
	res := e.result()

	e.logger.Info("NSGA-III 运行结束",
		"generations", res.Generations,
		"evaluations", res.Evaluations,
		"archive", len(res.Archive),
	)

	return res, nil
}

func (e *Engine) result() *Result {
	return &Result{
		Population:      slices.Clone(e.population),
		Archive:         Feasible(e.population),
		Front:           front(e.population),
		Evaluations:     e.evaluations,
		Generations:     e.generations,
		ReferencePoints: e.refPoints,
	}
}

// sample 在上下界之内均匀采样初始种群
func (e *Engine) sample() [][]float64 {
	res := make([][]float64, e.popSize)
	for k := range res {
		x := make([]float64, e.problem.NumVariables)
		for i := range x {
			x[i] = e.problem.Lower[i] + e.rng.Float64()*(e.problem.Upper[i]-e.problem.Lower[i])
		}
		res[k] = x
	}
	return res
}

// variation 通过锦标赛选择、交叉和变异产生 popSize 个未评估的子代
func (e *Engine) variation() [][]float64 {
	counts := nicheCounts(e.population, len(e.refPoints))
	lower, upper := e.problem.Lower, e.problem.Upper

	children := make([][]float64, 0, e.popSize)
	for len(children) < e.popSize {
		p1 := tournament(e.rng, e.population, counts)
		p2 := tournament(e.rng, e.population, counts)

		var c1, c2 []float64
		if e.rng.Float64() < e.config.CrossoverRate {
			c1, c2 = sbx(e.rng, p1.Variables, p2.Variables, lower, upper, e.config.CrossoverEta)
		} else {
			c1, c2 = slices.Clone(p1.Variables), slices.Clone(p2.Variables)
		}

		polynomialMutation(e.rng, c1, lower, upper, e.config.MutationRate, e.config.MutationEta)
		polynomialMutation(e.rng, c2, lower, upper, e.config.MutationRate, e.config.MutationEta)

		children = append(children, c1)
		if len(children) < e.popSize {
			children = append(children, c2)
		}
	}

	return children
}

// evaluate 评估一批决策向量，并发时每个 goroutine 只写自己的下标
func (e *Engine) evaluate(xs [][]float64) []*Individual {
	res := make([]*Individual, len(xs))

	if e.config.Concurrency <= 1 {
		for i, x := range xs {
			obj, cons := e.problem.Evaluate(x)
			res[i] = newIndividual(x, obj, cons)
		}
	} else {
		p := pool.New().WithMaxGoroutines(e.config.Concurrency)
		for i, x := range xs {
			p.Go(func() {
				obj, cons := e.problem.Evaluate(x)
				res[i] = newIndividual(x, obj, cons)
			})
		}
		p.Wait()
	}

	e.evaluations += len(xs)
	return res
}

// front 返回可行且位于第一前沿的个体
func front(population []*Individual) []*Individual {
	res := make([]*Individual, 0, len(population))
	for _, ind := range population {
		if ind.Feasible && ind.Rank == 0 {
			res = append(res, ind)
		}
	}
	return res
}
