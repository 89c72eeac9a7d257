package nsga3

import (
	"math"
	"math/rand/v2"
	"slices"
)

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// sbx 模拟二进制交叉，每个变量以 0.5 的概率参与交叉，结果截断到边界之内
func sbx(rng *rand.Rand, p1, p2, lower, upper []float64, eta float64) ([]float64, []float64) {
	c1 := slices.Clone(p1)
	c2 := slices.Clone(p2)

	for i := range c1 {
		if rng.Float64() >= 0.5 || math.Abs(p1[i]-p2[i]) < 1e-14 {
			continue
		}

		u := rng.Float64()
		var beta float64
		if u <= 0.5 {
			beta = math.Pow(2*u, 1/(eta+1))
		} else {
			beta = math.Pow(1/(2*(1-u)), 1/(eta+1))
		}

		x1 := 0.5 * ((1+beta)*p1[i] + (1-beta)*p2[i])
		x2 := 0.5 * ((1-beta)*p1[i] + (1+beta)*p2[i])

		c1[i] = clamp(x1, lower[i], upper[i])
		c2[i] = clamp(x2, lower[i], upper[i])
	}

	return c1, c2
}

// polynomialMutation 多项式变异，原地修改尚未评估的子代
func polynomialMutation(rng *rand.Rand, x, lower, upper []float64, rate, eta float64) {
	for i := range x {
		if rng.Float64() >= rate {
			continue
		}

		u := rng.Float64()
		var delta float64
		if u < 0.5 {
			delta = math.Pow(2*u, 1/(eta+1)) - 1
		} else {
			delta = 1 - math.Pow(2*(1-u), 1/(eta+1))
		}

		x[i] = clamp(x[i]+delta*(upper[i]-lower[i]), lower[i], upper[i])
	}
}

// constrainedBetter 二元锦标赛的比较规则：
// 可行优于不可行；都不可行时违反量小的胜出；都可行时所在前沿层级低的胜出，
// 同一层则关联参考点拥挤度较低的胜出，仍然相同时 a 胜出
func constrainedBetter(a, b *Individual, nicheCounts []int) bool {
	switch {
	case a.Feasible && !b.Feasible:
		return true
	case !a.Feasible && b.Feasible:
		return false
	case !a.Feasible && !b.Feasible:
		return a.Violation <= b.Violation
	}

	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}

	return nicheCount(a, nicheCounts) <= nicheCount(b, nicheCounts)
}

func nicheCount(ind *Individual, nicheCounts []int) int {
	if ind.RefPoint < 0 || ind.RefPoint >= len(nicheCounts) {
		return math.MaxInt
	}
	return nicheCounts[ind.RefPoint]
}

func tournament(rng *rand.Rand, population []*Individual, nicheCounts []int) *Individual {
	a := population[rng.IntN(len(population))]
	b := population[rng.IntN(len(population))]
	if constrainedBetter(a, b, nicheCounts) {
		return a
	}
	return b
}
