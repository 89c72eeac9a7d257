package nsga3

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func individual(objectives []float64, violation float64) *Individual {
	cons := []float64{violation}
	return newIndividual(nil, objectives, cons)
}

func TestDominates(t *testing.T) {
	assert.True(t, Dominates([]float64{1, 2}, []float64{2, 2}))
	assert.True(t, Dominates([]float64{1, 1}, []float64{2, 2}))
	assert.False(t, Dominates([]float64{1, 2}, []float64{1, 2}))
	assert.False(t, Dominates([]float64{1, 3}, []float64{2, 2}))
	assert.False(t, Dominates([]float64{3, 3}, []float64{2, 2}))
}

func TestNonDominatedSort_Fronts(t *testing.T) {
	pop := []*Individual{
		individual([]float64{1, 4}, 0), // 0: front 0
		individual([]float64{2, 2}, 0), // 1: front 0
		individual([]float64{3, 3}, 0), // 2: front 1
		individual([]float64{4, 1}, 0), // 3: front 0
		individual([]float64{5, 5}, 0), // 4: front 2
	}

	fronts := NonDominatedSort(pop)
	require.Len(t, fronts, 3)
	assert.ElementsMatch(t, []int{0, 1, 3}, fronts[0])
	assert.Equal(t, []int{2}, fronts[1])
	assert.Equal(t, []int{4}, fronts[2])
}

func TestNonDominatedSort_InfeasibleAfterFeasible(t *testing.T) {
	pop := []*Individual{
		individual([]float64{0, 0}, 3),   // 0
		individual([]float64{9, 9}, 0),   // 1
		individual([]float64{0, 0}, 1),   // 2
		individual([]float64{1, 1}, 3),   // 3
		individual([]float64{10, 10}, 0), // 4
	}

	fronts := NonDominatedSort(pop)
	require.Len(t, fronts, 4)
	assert.Equal(t, []int{1}, fronts[0])
	assert.Equal(t, []int{4}, fronts[1])
	assert.Equal(t, []int{2}, fronts[2])
	assert.ElementsMatch(t, []int{0, 3}, fronts[3])
}

func TestNonDominatedSort_Consistency(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	pop := make([]*Individual, 60)
	for i := range pop {
		violation := 0.0
		if i%4 == 0 {
			violation = float64(rng.IntN(5) + 1)
		}
		pop[i] = individual([]float64{rng.Float64(), rng.Float64(), rng.Float64()}, violation)
	}

	fronts := NonDominatedSort(pop)

	seen := map[int]bool{}
	for _, front := range fronts {
		for _, i := range front {
			require.False(t, seen[i], "individual %d appears twice", i)
			seen[i] = true
		}
	}
	require.Len(t, seen, len(pop))

	for k, front := range fronts {
		if !pop[front[0]].Feasible {
			continue
		}
		for _, a := range front {
			for _, b := range front {
				assert.False(t, Dominates(pop[a].Objectives, pop[b].Objectives))
			}
		}
		if k == 0 {
			continue
		}
		for _, b := range front {
			dominated := false
			for _, a := range fronts[k-1] {
				if Dominates(pop[a].Objectives, pop[b].Objectives) {
					dominated = true
					break
				}
			}
			assert.True(t, dominated, "individual %d in front %d is not dominated by front %d", b, k, k-1)
		}
	}
}
