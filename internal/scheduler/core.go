package scheduler

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/nsga3"
)

var ErrInvalidConfiguration = errors.New("无效的排班配置")

// encode 校验输入并为每个工人抽取生产率
func encode(productivity, slopes []domain.Category, quotas []float64, rng *rand.Rand) (*Problem, error) {
	if len(productivity) == 0 {
		return nil, fmt.Errorf("%w: 至少需要一个工人", ErrInvalidConfiguration)
	}
	if len(slopes) == 0 || len(quotas) == 0 {
		return nil, fmt.Errorf("%w: 至少需要一个地块", ErrInvalidConfiguration)
	}
	if len(slopes) != len(quotas) {
		return nil, fmt.Errorf("%w: 坡度数量 (%d) 与配额数量 (%d) 不一致", ErrInvalidConfiguration, len(slopes), len(quotas))
	}

	for i, c := range productivity {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: 第 %d 个工人的生产率类别 %d 无效", ErrInvalidConfiguration, i+1, c)
		}
	}

	plots := make([]domain.Plot, len(slopes))
	for j := range slopes {
		if !slopes[j].Valid() {
			return nil, fmt.Errorf("%w: 第 %d 个地块的坡度类别 %d 无效", ErrInvalidConfiguration, j+1, slopes[j])
		}
		if math.IsNaN(quotas[j]) || math.IsInf(quotas[j], 0) || quotas[j] < 0 {
			return nil, fmt.Errorf("%w: 第 %d 个地块的配额 %v 无效", ErrInvalidConfiguration, j+1, quotas[j])
		}
		plots[j] = domain.Plot{QuotaKg: quotas[j], Slope: slopes[j]}
	}

	workers := make([]domain.Worker, len(productivity))
	for i, c := range productivity {
		workers[i] = domain.NewWorker(c, rng)
	}

	return &Problem{workers: workers, plots: plots}, nil
}

// Evaluate 计算每个地块的采收量和每个工人的时长约束违反量
// 决策向量中下标 j*W + i 对应 (工人 i, 地块 j)
func (p *Problem) Evaluate(x []float64) ([]float64, []float64) {
	w := len(p.workers)

	objectives := make([]float64, len(p.plots))
	for j, plot := range p.plots {
		adj := plot.Adjustment()
		sum := 0.0
		for i, worker := range p.workers {
			sum += x[j*w+i] * (worker.Rate + adj)
		}
		objectives[j] = sum
	}

	constraints := make([]float64, 2*w)
	for i, total := range p.totalHours(x) {
		constraints[2*i] = math.Max(0, MinWeeklyHours-total)
		constraints[2*i+1] = math.Max(0, total-MaxWeeklyHours)
	}

	return objectives, constraints
}

func (p *Problem) totalHours(x []float64) []float64 {
	w := len(p.workers)
	totals := make([]float64, w)
	for j := range p.plots {
		for i := 0; i < w; i++ {
			totals[i] += x[j*w+i]
		}
	}
	return totals
}

// Definition 转换为优化引擎使用的问题描述
func (p *Problem) Definition() nsga3.Problem {
	n := len(p.workers) * len(p.plots)

	lower := make([]float64, n)
	upper := make([]float64, n)
	for k := 0; k < n; k++ {
		lower[k] = MinPlotHours
		upper[k] = MaxPlotHours
	}

	return nsga3.Problem{
		NumVariables:   n,
		NumObjectives:  len(p.plots),
		NumConstraints: 2 * len(p.workers),
		Lower:          lower,
		Upper:          upper,
		Evaluate:       p.Evaluate,
	}
}

// decode 把决策向量转换为可读的排班表，小时数向零取整
func decode(x []float64, workers, plots int) domain.Allocation {
	allocation := make(domain.Allocation, workers)

	for i := 0; i < workers; i++ {
		entry := domain.WorkerAllocation{
			Name:  fmt.Sprintf("Worker %d", i+1),
			Plots: make([]domain.PlotHours, plots),
		}
		for j := 0; j < plots; j++ {
			entry.Plots[j] = domain.PlotHours{
				Name:  fmt.Sprintf("plot_%d", j+1),
				Hours: int(x[j*workers+i]),
			}
		}
		allocation[i] = entry
	}

	return allocation
}
