package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/scheduler"
)

func TestKey(t *testing.T) {
	params := scheduler.DefaultParameters()
	params.Seed = 42

	productivity := []domain.Category{domain.CategoryLow, domain.CategoryHigh}
	slopes := []domain.Category{domain.CategoryMedium}
	quotas := []float64{100}

	a, err := Key(params, productivity, slopes, quotas)
	require.NoError(t, err)
	b, err := Key(params, productivity, slopes, quotas)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "schedule_outcome_")

	other := *params
	other.Seed = 43
	c, err := Key(&other, productivity, slopes, quotas)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	d, err := Key(params, productivity, slopes, []float64{101})
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	outcome := &domain.SchedulingOutcome{Feasible: true, Objectives: []float64{1, 2}}
	require.NoError(t, c.Set(ctx, "k", outcome))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, outcome, got)
}

func TestMemoryCache_Expiration(t *testing.T) {
	c := NewMemoryCache(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", &domain.SchedulingOutcome{}))
	time.Sleep(30 * time.Millisecond)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
