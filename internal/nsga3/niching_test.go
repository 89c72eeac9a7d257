package nsga3

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func objectivesOf(population []*Individual) [][]float64 {
	res := make([][]float64, len(population))
	for i, ind := range population {
		res[i] = ind.Objectives
	}
	return res
}

func TestSelectSurvivors_PrefersLeastCrowdedReferencePoint(t *testing.T) {
	s := newSurvival(DasDennis(2, 2), 2)
	candidates := []*Individual{
		individual([]float64{0, 1}, 0),
		individual([]float64{0.1, 0.9}, 0),
		individual([]float64{0.5, 0.5}, 0),
		individual([]float64{1, 0}, 0),
	}

	survivors := s.selectSurvivors(candidates, 3)
	require.Len(t, survivors, 3)
	assert.ElementsMatch(t, [][]float64{{0, 1}, {0.5, 0.5}, {1, 0}}, objectivesOf(survivors))

	refs := []int{}
	for _, ind := range survivors {
		refs = append(refs, ind.RefPoint)
		assert.Equal(t, 0, ind.Rank)
		assert.InDelta(t, 0, ind.NicheDistance, 1e-9)
	}
	assert.ElementsMatch(t, []int{0, 1, 2}, refs)
}

func TestSelectSurvivors_KeepsEarlierFronts(t *testing.T) {
	s := newSurvival(DasDennis(2, 2), 2)
	candidates := []*Individual{
		individual([]float64{6, 6}, 0),
		individual([]float64{1, 3}, 0),
		individual([]float64{0, 0}, 2),
		individual([]float64{3, 1}, 0),
		individual([]float64{5, 5}, 0),
	}

	survivors := s.selectSurvivors(candidates, 3)
	require.Len(t, survivors, 3)
	assert.ElementsMatch(t, [][]float64{{1, 3}, {3, 1}, {5, 5}}, objectivesOf(survivors))
	for _, ind := range survivors {
		assert.True(t, ind.Feasible)
	}
}

func TestSelectSurvivors_AnnotatesCopies(t *testing.T) {
	s := newSurvival(DasDennis(2, 2), 2)
	original := individual([]float64{1, 1}, 0)

	survivors := s.selectSurvivors([]*Individual{original, individual([]float64{2, 0}, 0)}, 2)
	require.Len(t, survivors, 2)
	assert.Equal(t, -1, original.RefPoint)
	assert.NotSame(t, original, survivors[0])
	assert.GreaterOrEqual(t, survivors[0].RefPoint, 0)
}

func TestSelectSurvivors_DegenerateObjectives(t *testing.T) {
	s := newSurvival(GenerateReferencePoints(3, 2, 1), 3)
	candidates := make([]*Individual, 10)
	for i := range candidates {
		candidates[i] = individual([]float64{4, 4, 4}, 0)
	}

	survivors := s.selectSurvivors(candidates, 4)
	require.Len(t, survivors, 4)
	for _, ind := range survivors {
		assert.GreaterOrEqual(t, ind.RefPoint, 0)
		assert.Less(t, ind.RefPoint, len(s.refPoints))
		assert.False(t, math.IsNaN(ind.NicheDistance))
	}
}

func TestIntercepts_FallbackToWorst(t *testing.T) {
	s := newSurvival(DasDennis(2, 2), 2)
	s.ideal = []float64{0, 0}

	// 两个极值点相同，超平面无法确定
	denominators, raw := s.intercepts([][]float64{{2, 2}, {1, 1}})
	assert.Equal(t, []float64{2, 2}, denominators)
	assert.Equal(t, []bool{false, false}, raw)

	denominators, raw = s.intercepts([][]float64{{4, 0}, {0, 2}})
	assert.InDeltaSlice(t, []float64{4, 2}, denominators, 1e-9)
	assert.Equal(t, []bool{false, false}, raw)

	denominators, raw = s.intercepts([][]float64{{0, 5}, {0, 1}})
	assert.Equal(t, []bool{true, false}, raw)
	assert.Equal(t, 5.0, denominators[1])
}

func TestNormalize_DegenerateObjectiveKeepsRawValue(t *testing.T) {
	s := newSurvival(DasDennis(2, 2), 2)

	// 第一个目标上所有个体相同，理想点等于最差点
	normalized := s.normalize([]*Individual{
		individual([]float64{3, 1}, 0),
		individual([]float64{3, 4}, 0),
	})

	require.Len(t, normalized, 2)
	assert.InDeltaSlice(t, []float64{3, 0}, normalized[0], 1e-9)
	assert.InDeltaSlice(t, []float64{3, 1}, normalized[1], 1e-9)
}
