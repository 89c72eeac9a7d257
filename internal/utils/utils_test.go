package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateRandomPlanner(t *testing.T) {
	planner, err := GenerateRandomPlanner("password", "example.com")
	require.NoError(t, err)

	assert.NotEmpty(t, planner.Username)
	assert.NotEmpty(t, planner.FullName)
	assert.Equal(t, planner.Username+"@example.com", planner.Email)
	assert.Equal(t, domain.RolePlanner, planner.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(planner.PasswordHash), []byte("password")))
}

func TestGenerateUsernameFromChineseName(t *testing.T) {
	username := GenerateUsernameFromChineseName("王伟")
	require.NotEmpty(t, username)
	assert.Equal(t, byte('w'), username[0])
}

func TestGenerateRandomSchedulingRequest(t *testing.T) {
	for range 50 {
		req := GenerateRandomSchedulingRequest(3, 5, 4)
		assert.Equal(t, int64(3), req.PlannerID)
		assert.GreaterOrEqual(t, len(req.Productivity), 1)
		assert.LessOrEqual(t, len(req.Productivity), 5)
		assert.Len(t, req.Quotas, len(req.Slopes))
		for _, c := range append(req.Productivity, req.Slopes...) {
			assert.True(t, c.Valid())
		}
		for _, q := range req.Quotas {
			assert.GreaterOrEqual(t, q, 100.0)
			assert.LessOrEqual(t, q, 5000.0)
		}
	}
}

func TestValidateAllocation(t *testing.T) {
	ok := domain.Allocation{
		{Name: "Worker 1", Plots: []domain.PlotHours{{Name: "plot_1", Hours: 20}, {Name: "plot_2", Hours: 19}}},
	}
	assert.NoError(t, ValidateAllocation(ok, 1, 2, 40, 45, 40))

	tooLong := domain.Allocation{
		{Name: "Worker 1", Plots: []domain.PlotHours{{Name: "plot_1", Hours: 30}, {Name: "plot_2", Hours: 16}}},
	}
	assert.Error(t, ValidateAllocation(tooLong, 1, 2, 40, 45, 40))

	tooShort := domain.Allocation{
		{Name: "Worker 1", Plots: []domain.PlotHours{{Name: "plot_1", Hours: 20}, {Name: "plot_2", Hours: 18}}},
	}
	assert.Error(t, ValidateAllocation(tooShort, 1, 2, 40, 45, 40))

	assert.Error(t, ValidateAllocation(ok, 2, 2, 40, 45, 40))
	assert.Error(t, ValidateAllocation(ok, 1, 3, 40, 45, 40))
}
