package scheduler

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/nsga3"
)

const (
	low    = domain.CategoryLow
	medium = domain.CategoryMedium
	high   = domain.CategoryHigh
)

func testParameters(seed uint64) *Parameters {
	p := DefaultParameters()
	p.Seed = seed
	p.Concurrency = 1
	return p
}

func TestNew_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name         string
		productivity []domain.Category
		slopes       []domain.Category
		quotas       []float64
	}{
		{"没有工人", nil, []domain.Category{low}, []float64{100}},
		{"没有地块", []domain.Category{low}, nil, nil},
		{"坡度与配额数量不一致", []domain.Category{low, medium, high}, []domain.Category{low, medium, high}, []float64{100, 200}},
		{"效率类别越界", []domain.Category{low, 3}, []domain.Category{low}, []float64{100}},
		{"坡度类别越界", []domain.Category{low}, []domain.Category{-1}, []float64{100}},
		{"配额为负数", []domain.Category{low}, []domain.Category{low}, []float64{-1}},
		{"配额为 NaN", []domain.Category{low}, []domain.Category{low}, []float64{math.NaN()}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(testParameters(1), tc.productivity, tc.slopes, tc.quotas)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestNew_WorkersAndPlotsMayDiffer(t *testing.T) {
	s, err := New(testParameters(1), []domain.Category{low, medium, high}, []domain.Category{low, high}, []float64{100, 200})
	require.NoError(t, err)

	def := s.Problem().Definition()
	assert.Equal(t, 6, def.NumVariables)
	assert.Equal(t, 2, def.NumObjectives)
	assert.Equal(t, 6, def.NumConstraints)
	for k := range def.Lower {
		assert.Equal(t, 0.0, def.Lower[k])
		assert.Equal(t, 40.0, def.Upper[k])
	}
}

func TestEncode_RatesWithinBands(t *testing.T) {
	s, err := New(testParameters(3), []domain.Category{low, medium, high}, []domain.Category{medium}, []float64{10})
	require.NoError(t, err)

	workers := s.Problem().Workers()
	require.Len(t, workers, 3)
	assert.True(t, workers[0].Rate >= 3.33 && workers[0].Rate < 11.11)
	assert.True(t, workers[1].Rate >= 11.22 && workers[1].Rate < 27.77)
	assert.True(t, workers[2].Rate >= 27.88 && workers[2].Rate < 40.00)
}

func TestEvaluate(t *testing.T) {
	p := &Problem{
		workers: []domain.Worker{{Category: low, Rate: 10}, {Category: medium, Rate: 20}},
		plots:   []domain.Plot{{QuotaKg: 100, Slope: low}, {QuotaKg: 100, Slope: high}},
	}
	x := []float64{20, 25, 20, 25}

	objectives, constraints := p.Evaluate(x)
	assert.InDeltaSlice(t, []float64{853, 598.75}, objectives, 1e-9)
	assert.Equal(t, []float64{0, 0, 0, 5}, constraints)

	// 纯函数：重复调用结果一致，并且不修改输入
	again, againConstraints := p.Evaluate(x)
	assert.Equal(t, objectives, again)
	assert.Equal(t, constraints, againConstraints)
	assert.Equal(t, []float64{20, 25, 20, 25}, x)

	_, constraints = p.Evaluate([]float64{10, 0, 10, 0})
	assert.Equal(t, []float64{20, 0, 40, 0}, constraints)
}

func TestDecode(t *testing.T) {
	allocation := decode([]float64{39.9, 0.2, 5.5, 12.999}, 2, 2)

	assert.Equal(t, domain.Allocation{
		{Name: "Worker 1", Plots: []domain.PlotHours{{Name: "plot_1", Hours: 39}, {Name: "plot_2", Hours: 5}}},
		{Name: "Worker 2", Plots: []domain.PlotHours{{Name: "plot_1", Hours: 0}, {Name: "plot_2", Hours: 12}}},
	}, allocation)
}

func TestSchedule_SingleWorkerSinglePlot(t *testing.T) {
	s, err := New(testParameters(7), []domain.Category{medium}, []domain.Category{medium}, []float64{500})
	require.NoError(t, err)

	outcome, err := s.Schedule(context.Background())
	require.NoError(t, err)
	require.True(t, outcome.Feasible)

	require.Len(t, outcome.Allocation, 1)
	assert.Equal(t, "Worker 1", outcome.Allocation[0].Name)
	assert.Equal(t, []domain.PlotHours{{Name: "plot_1", Hours: 40}}, outcome.Allocation[0].Plots)

	rate := s.Problem().Workers()[0].Rate
	require.Len(t, outcome.Objectives, 1)
	assert.InDelta(t, 40*rate, outcome.Objectives[0], 1e-9)
	assert.GreaterOrEqual(t, outcome.Evaluations, 10000)
}

func TestSchedule_TwoWorkersTwoPlots(t *testing.T) {
	s, err := New(testParameters(11), []domain.Category{low, high}, []domain.Category{low, high}, []float64{1000, 2000})
	require.NoError(t, err)

	outcome, err := s.Schedule(context.Background())
	require.NoError(t, err)
	require.True(t, outcome.Feasible)
	assert.Empty(t, outcome.Message)
	assert.Positive(t, outcome.ArchiveSize)
	assert.NotEmpty(t, outcome.Front)
	assert.LessOrEqual(t, len(outcome.Front), outcome.ArchiveSize)
	assert.Len(t, outcome.Objectives, 2)
	assert.Len(t, outcome.Rates, 2)

	require.Len(t, outcome.Allocation, 2)
	for i, w := range outcome.Allocation {
		require.Len(t, w.Plots, 2, "worker %d", i)
		total := 0
		for _, p := range w.Plots {
			assert.GreaterOrEqual(t, p.Hours, 0)
			assert.LessOrEqual(t, p.Hours, 40)
			total += p.Hours
		}
		// 每个地块的截断最多损失不到 1 小时
		assert.Greater(t, total, 38)
		assert.LessOrEqual(t, total, 45)
	}
}

func TestArchive_WeeklyHoursAndDecodedTotals(t *testing.T) {
	s, err := New(testParameters(11), []domain.Category{low, high}, []domain.Category{low, high}, []float64{1000, 2000})
	require.NoError(t, err)

	cfg := nsga3.DefaultConfig()
	cfg.Concurrency = 1
	engine, err := nsga3.New(s.Problem().Definition(), cfg, rand.New(rand.NewPCG(11, 11)), nil)
	require.NoError(t, err)

	res, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, res.Archive)

	plots := len(s.Problem().Plots())
	for k, ind := range res.Archive {
		totals := s.Problem().totalHours(ind.Variables)
		allocation := decode(ind.Variables, len(totals), plots)
		require.Len(t, allocation, len(totals))

		for i, total := range totals {
			assert.GreaterOrEqual(t, total, MinWeeklyHours, "archive %d worker %d", k, i)
			assert.LessOrEqual(t, total, MaxWeeklyHours, "archive %d worker %d", k, i)

			// 每个地块截断损失不到 1 小时
			decoded := 0
			for _, p := range allocation[i].Plots {
				decoded += p.Hours
			}
			assert.Greater(t, float64(decoded), total-float64(plots), "archive %d worker %d", k, i)
			assert.LessOrEqual(t, float64(decoded), total, "archive %d worker %d", k, i)
		}
	}
}

func TestSchedule_Deterministic(t *testing.T) {
	run := func(concurrency int) *domain.SchedulingOutcome {
		p := testParameters(2024)
		p.Concurrency = concurrency
		p.MaxEvaluations = 3000
		s, err := New(p, []domain.Category{low, medium, high}, []domain.Category{medium, high}, []float64{300, 600})
		require.NoError(t, err)
		outcome, err := s.Schedule(context.Background())
		require.NoError(t, err)
		return outcome
	}

	assert.Equal(t, run(1), run(4))
}

func TestSchedule_CancelledBeforeFeasible(t *testing.T) {
	s, err := New(testParameters(5), []domain.Category{low}, []domain.Category{low}, []float64{100})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := s.Schedule(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, outcome)
	assert.False(t, outcome.Feasible)
	assert.Equal(t, InfeasibleMessage, outcome.Message)
	assert.Nil(t, outcome.Allocation)
}
