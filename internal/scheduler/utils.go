package scheduler

import (
	"math"

	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/nsga3"
)

// SelectionPolicy 从可行的 Pareto 档案中挑选一个个体用于输出，返回其下标
// Pareto 档案中不存在全局最优的个体，任何成员都是合法的选择
type SelectionPolicy func(archive []*nsga3.Individual) int

// SelectLast 选择档案中的最后一个个体
func SelectLast(archive []*nsga3.Individual) int {
	return len(archive) - 1
}

// SelectNearestIdeal 选择归一化后离档案理想点最近的个体
func SelectNearestIdeal(archive []*nsga3.Individual) int {
	if len(archive) == 0 {
		return -1
	}

	m := len(archive[0].Objectives)
	lo := make([]float64, m)
	hi := make([]float64, m)
	for i := 0; i < m; i++ {
		lo[i], hi[i] = math.Inf(1), math.Inf(-1)
	}
	for _, ind := range archive {
		for i, f := range ind.Objectives {
			lo[i] = math.Min(lo[i], f)
			hi[i] = math.Max(hi[i], f)
		}
	}

	best, bestDistance := 0, math.Inf(1)
	for k, ind := range archive {
		d := 0.0
		for i, f := range ind.Objectives {
			span := hi[i] - lo[i]
			if span <= 0 {
				continue
			}
			d += math.Pow((f-lo[i])/span, 2)
		}
		if d < bestDistance {
			best, bestDistance = k, d
		}
	}

	return best
}

// PolicyByName 根据名称获取挑选策略，未知名称返回 SelectLast
func PolicyByName(name string) SelectionPolicy {
	switch name {
	case "nearest-ideal":
		return SelectNearestIdeal
	default:
		return SelectLast
	}
}
