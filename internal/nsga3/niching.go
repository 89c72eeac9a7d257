package nsga3

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	asfEpsilon       = 1e-6
	degenerateRange  = 1e-10
	minimumIntercept = 1e-6
)

// survival NSGA-III 的环境选择，理想点在整个运行过程中只会变小
type survival struct {
	refPoints []ReferencePoint
	refNorms  []float64 // 每个参考点的模长平方
	ideal     []float64
}

func newSurvival(refPoints []ReferencePoint, numObjectives int) *survival {
	norms := make([]float64, len(refPoints))
	for i, w := range refPoints {
		norms[i] = floats.Dot(w, w)
	}

	ideal := make([]float64, numObjectives)
	for i := range ideal {
		ideal[i] = math.Inf(1)
	}

	return &survival{refPoints: refPoints, refNorms: norms, ideal: ideal}
}

// selectSurvivors 从候选个体中选出 n 个进入下一代
// 返回的都是浅拷贝，带有本代的 Rank、RefPoint、NicheDistance 标注
func (s *survival) selectSurvivors(candidates []*Individual, n int) []*Individual {
	fronts := NonDominatedSort(candidates)

	// 按层加入，直到数量不小于 n
	st := make([]*Individual, 0, len(candidates))
	last := 0
	for rank, front := range fronts {
		for _, idx := range front {
			ind := candidates[idx].annotated()
			ind.Rank = rank
			st = append(st, ind)
		}
		last = rank
		if len(st) >= n {
			break
		}
	}

	normalized := s.normalize(st)
	for i, ind := range st {
		ind.RefPoint, ind.NicheDistance = s.associate(normalized[i])
	}

	if len(st) <= n {
		return st
	}

	// 最后一层之前的个体全部保留，最后一层由小生境选择补足
	survivors := make([]*Individual, 0, n)
	lastFront := make([]int, 0)
	for i, ind := range st {
		if ind.Rank < last {
			survivors = append(survivors, ind)
		} else {
			lastFront = append(lastFront, i)
		}
	}

	for _, i := range s.niching(st, survivors, lastFront, n-len(survivors)) {
		survivors = append(survivors, st[i])
	}

	return survivors
}

// normalize 平移到理想点并按截距缩放，返回每个个体的归一化目标
func (s *survival) normalize(st []*Individual) [][]float64 {
	m := len(s.ideal)

	for _, ind := range st {
		for i, f := range ind.Objectives {
			s.ideal[i] = math.Min(s.ideal[i], f)
		}
	}

	translated := make([][]float64, len(st))
	for k, ind := range st {
		t := make([]float64, m)
		floats.SubTo(t, ind.Objectives, s.ideal)
		translated[k] = t
	}

	denominators, raw := s.intercepts(translated)
	for k, t := range translated {
		for i := range t {
			if raw[i] {
				t[i] = st[k].Objectives[i]
				continue
			}
			t[i] /= denominators[i]
		}
	}

	return translated
}

// intercepts 先尝试用极值点构成的超平面求截距，失败时退回到候选集合每个目标上的最大值，
// 范围仍然退化的目标在 raw 中标记，归一化时直接使用原始目标值
func (s *survival) intercepts(translated [][]float64) ([]float64, []bool) {
	m := len(s.ideal)

	extremes := mat.NewDense(m, m, nil)
	for j := 0; j < m; j++ {
		weights := make([]float64, m)
		for i := range weights {
			weights[i] = asfEpsilon
		}
		weights[j] = 1

		best, bestValue := 0, math.Inf(1)
		for k, t := range translated {
			value := math.Inf(-1)
			for i := range t {
				value = math.Max(value, t[i]/weights[i])
			}
			if value < bestValue {
				best, bestValue = k, value
			}
		}
		extremes.SetRow(j, translated[best])
	}

	ones := make([]float64, m)
	for i := range ones {
		ones[i] = 1
	}

	denominators := make([]float64, m)
	valid := true

	var b mat.VecDense
	if err := b.SolveVec(extremes, mat.NewVecDense(m, ones)); err != nil {
		valid = false
	} else {
		for i := 0; i < m; i++ {
			a := 1 / b.AtVec(i)
			if math.IsNaN(a) || math.IsInf(a, 0) || a <= minimumIntercept {
				valid = false
				break
			}
			denominators[i] = a
		}
	}

	if !valid {
		for i := 0; i < m; i++ {
			worst := 0.0
			for _, t := range translated {
				worst = math.Max(worst, t[i])
			}
			denominators[i] = worst
		}
	}

	raw := make([]bool, m)
	for i := range denominators {
		if denominators[i] <= degenerateRange {
			raw[i] = true
		}
	}

	return denominators, raw
}

// associate 找到垂直距离最近的参考点，距离相同时取下标较小的
func (s *survival) associate(normalized []float64) (int, float64) {
	best, bestDistance := 0, math.Inf(1)
	projection := make([]float64, len(normalized))

	for j, w := range s.refPoints {
		t := floats.Dot(w, normalized) / s.refNorms[j]
		floats.ScaleTo(projection, t, w)
		d := floats.Distance(normalized, projection, 2)
		if d < bestDistance {
			best, bestDistance = j, d
		}
	}

	return best, bestDistance
}

// niching 从最后一层中选出 k 个个体，返回它们在 st 中的下标
func (s *survival) niching(st, kept []*Individual, lastFront []int, k int) []int {
	counts := make([]int, len(s.refPoints))
	for _, ind := range kept {
		counts[ind.RefPoint]++
	}

	// 每个参考点上的候选按距离升序，距离相同按下标升序
	pools := make([][]int, len(s.refPoints))
	for _, i := range lastFront {
		ref := st[i].RefPoint
		pools[ref] = append(pools[ref], i)
	}
	for _, pool := range pools {
		sort.SliceStable(pool, func(a, b int) bool {
			return st[pool[a]].NicheDistance < st[pool[b]].NicheDistance
		})
	}

	chosen := make([]int, 0, k)
	for len(chosen) < k {
		ref := -1
		for j := range pools {
			if len(pools[j]) == 0 {
				continue
			}
			if ref == -1 || counts[j] < counts[ref] {
				ref = j
			}
		}
		if ref == -1 {
			break
		}

		chosen = append(chosen, pools[ref][0])
		pools[ref] = pools[ref][1:]
		counts[ref]++
	}

	return chosen
}

// nicheCounts 统计种群在每个参考点上的个体数
func nicheCounts(population []*Individual, numRefPoints int) []int {
	counts := make([]int, numRefPoints)
	for _, ind := range population {
		if ind.RefPoint >= 0 && ind.RefPoint < numRefPoints {
			counts[ind.RefPoint]++
		}
	}
	return counts
}
