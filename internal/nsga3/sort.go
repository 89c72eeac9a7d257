package nsga3

import "sort"

// Dominates 判断目标向量 a 是否支配 b（最小化）
func Dominates(a, b []float64) bool {
	better := false
	for i := 0; i < len(a); i++ {
		if a[i] > b[i] {
			return false
		}
		if a[i] < b[i] {
			better = true
		}
	}
	return better
}

// NonDominatedSort 带约束的非支配排序，返回每一层前沿中个体的下标
// 可行个体按照经典的支配关系分层；不可行个体全部排在可行个体之后，
// 按约束违反量从小到大排列，违反量相同的个体位于同一层
func NonDominatedSort(population []*Individual) [][]int {
	feasible := make([]int, 0, len(population))
	infeasible := make([]int, 0)
	for i, ind := range population {
		if ind.Feasible {
			feasible = append(feasible, i)
		} else {
			infeasible = append(infeasible, i)
		}
	}

	fronts := paretoFronts(population, feasible)

	sort.SliceStable(infeasible, func(i, j int) bool {
		return population[infeasible[i]].Violation < population[infeasible[j]].Violation
	})
	for start := 0; start < len(infeasible); {
		end := start + 1
		for end < len(infeasible) && population[infeasible[end]].Violation == population[infeasible[start]].Violation {
			end++
		}
		fronts = append(fronts, append([]int(nil), infeasible[start:end]...))
		start = end
	}

	return fronts
}

func paretoFronts(population []*Individual, indices []int) [][]int {
	if len(indices) == 0 {
		return nil
	}

	dominated := make(map[int][]int, len(indices))
	domCount := make(map[int]int, len(indices))

	for a := 0; a < len(indices); a++ {
		i := indices[a]
		for b := a + 1; b < len(indices); b++ {
			j := indices[b]
			if Dominates(population[i].Objectives, population[j].Objectives) {
				dominated[i] = append(dominated[i], j)
				domCount[j]++
			} else if Dominates(population[j].Objectives, population[i].Objectives) {
				dominated[j] = append(dominated[j], i)
				domCount[i]++
			}
		}
	}

	current := []int{}
	for _, i := range indices {
		if domCount[i] == 0 {
			current = append(current, i)
		}
	}

	var fronts [][]int
	for len(current) > 0 {
		fronts = append(fronts, current)
		next := []int{}
		for _, i := range current {
			for _, j := range dominated[i] {
				domCount[j]--
				if domCount[j] == 0 {
					next = append(next, j)
				}
			}
		}
		sort.Ints(next)
		current = next
	}

	return fronts
}
