package nsga3

import (
	"context"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// schaffer 双目标测试问题，约束 x >= 0.5
func schaffer(calls *atomic.Int64) Problem {
	return Problem{
		NumVariables:   1,
		NumObjectives:  2,
		NumConstraints: 1,
		Lower:          []float64{0},
		Upper:          []float64{2},
		Evaluate: func(x []float64) ([]float64, []float64) {
			if calls != nil {
				calls.Add(1)
			}
			return []float64{x[0] * x[0], (x[0] - 2) * (x[0] - 2)},
				[]float64{math.Max(0, 0.5-x[0])}
		},
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxEvaluations = 2000
	cfg.Concurrency = 1
	return cfg
}

func TestNew_PopulationSize(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))

	engine, err := New(schaffer(nil), testConfig(), rng, discardLogger)
	require.NoError(t, err)
	assert.Len(t, engine.ReferencePoints(), 5)
	assert.Equal(t, 8, engine.PopulationSize())
	assert.Equal(t, StateInitialized, engine.State())

	cfg := testConfig()
	cfg.PopulationSize = 11
	engine, err = New(schaffer(nil), cfg, rng, discardLogger)
	require.NoError(t, err)
	assert.Equal(t, 12, engine.PopulationSize())
}

func TestNew_InvalidProblem(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))

	p := schaffer(nil)
	p.Upper = []float64{2, 3}
	_, err := New(p, testConfig(), rng, discardLogger)
	assert.Error(t, err)

	p = schaffer(nil)
	p.Evaluate = nil
	_, err = New(p, testConfig(), rng, discardLogger)
	assert.Error(t, err)

	_, err = New(schaffer(nil), testConfig(), nil, discardLogger)
	assert.Error(t, err)
}

func TestRun_FeasibleArchive(t *testing.T) {
	var calls atomic.Int64
	engine, err := New(schaffer(&calls), testConfig(), rand.New(rand.NewPCG(42, 42)), discardLogger)
	require.NoError(t, err)

	res, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateExhausted, engine.State())
	assert.GreaterOrEqual(t, res.Evaluations, 2000)
	assert.Equal(t, int64(res.Evaluations), calls.Load())
	assert.Len(t, res.Population, engine.PopulationSize())
	require.NotEmpty(t, res.Archive)

	for _, ind := range res.Population {
		assert.GreaterOrEqual(t, ind.Variables[0], 0.0)
		assert.LessOrEqual(t, ind.Variables[0], 2.0)
		assert.GreaterOrEqual(t, ind.RefPoint, 0)
	}
	assert.Equal(t, Feasible(res.Population), res.Archive)
	for _, ind := range res.Archive {
		assert.True(t, ind.Feasible)
		assert.GreaterOrEqual(t, ind.Variables[0], 0.5)
	}

	require.NotEmpty(t, res.Front)
	assert.LessOrEqual(t, len(res.Front), len(res.Archive))
	for _, a := range res.Front {
		assert.True(t, a.Feasible)
		assert.Equal(t, 0, a.Rank)
		for _, b := range res.Front {
			assert.False(t, Dominates(a.Objectives, b.Objectives))
		}
	}
}

func TestFront_KeepsOnlyFirstFeasibleRank(t *testing.T) {
	best := individual([]float64{1, 1}, 0).annotated()
	worse := individual([]float64{2, 2}, 0).annotated()
	worse.Rank = 1
	infeasible := individual([]float64{0, 0}, 3).annotated()

	population := []*Individual{best, worse, infeasible}
	assert.Equal(t, []*Individual{best, worse}, Feasible(population))
	assert.Equal(t, []*Individual{best}, front(population))
}

func TestRun_Deterministic(t *testing.T) {
	run := func(concurrency int) *Result {
		cfg := testConfig()
		cfg.Concurrency = concurrency
		engine, err := New(schaffer(nil), cfg, rand.New(rand.NewPCG(9, 9)), discardLogger)
		require.NoError(t, err)
		res, err := engine.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	a, b := run(1), run(4)
	require.Len(t, b.Population, len(a.Population))
	for i := range a.Population {
		assert.Equal(t, a.Population[i].Variables, b.Population[i].Variables)
	}
}

func TestRun_Cancelled(t *testing.T) {
	engine, err := New(schaffer(nil), testConfig(), rand.New(rand.NewPCG(1, 2)), discardLogger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := engine.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, engine.PopulationSize(), res.Evaluations)
	assert.Equal(t, 0, res.Generations)
	assert.Len(t, res.Population, engine.PopulationSize())
}

func TestRun_OnlyOnce(t *testing.T) {
	engine, err := New(schaffer(nil), testConfig(), rand.New(rand.NewPCG(1, 2)), discardLogger)
	require.NoError(t, err)

	_, err = engine.Run(context.Background())
	require.NoError(t, err)

	_, err = engine.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRun)
}

func TestRun_IndividualsNotMutated(t *testing.T) {
	engine, err := New(schaffer(nil), testConfig(), rand.New(rand.NewPCG(5, 8)), discardLogger)
	require.NoError(t, err)

	res, err := engine.Run(context.Background())
	require.NoError(t, err)

	for _, ind := range res.Population {
		obj, cons := schaffer(nil).Evaluate(ind.Variables)
		assert.Equal(t, obj, ind.Objectives)
		assert.Equal(t, cons, ind.Constraints)
	}
}
