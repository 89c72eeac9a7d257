package scheduler

import "github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"

const (
	MinWeeklyHours = 40.0 // 每个工人每周最少工作时长
	MaxWeeklyHours = 45.0 // 每个工人每周最多工作时长
	MinPlotHours   = 0.0  // 单个 (工人, 地块) 的最少工作时长
	MaxPlotHours   = 40.0 // 单个 (工人, 地块) 的最多工作时长
)

// 优化器参数
type Parameters struct {
	PopulationSize int     // 种群大小，为 0 时由参考点数量决定
	DivisionsOuter int     // 外层参考点划分数
	DivisionsInner int     // 内层参考点划分数
	MaxEvaluations int     // 最大评估次数
	CrossoverRate  float64 // 交叉概率
	MutationRate   float64 // 变异概率，为 0 时取 1/变量数
	Concurrency    int     // 并发评估的 goroutine 数量
	Seed           uint64  // 随机数种子，为 0 时随机选择
}

func DefaultParameters() *Parameters {
	return &Parameters{
		DivisionsOuter: 2,
		DivisionsInner: 1,
		MaxEvaluations: 10000,
		CrossoverRate:  1.0,
	}
}

// Problem 编码后的调度问题，构造之后不再修改
type Problem struct {
	workers []domain.Worker
	plots   []domain.Plot
}

func (p *Problem) Workers() []domain.Worker {
	return p.workers
}

func (p *Problem) Plots() []domain.Plot {
	return p.plots
}
