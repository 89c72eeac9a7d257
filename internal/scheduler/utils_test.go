package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/nsga3"
)

func TestSelectionPolicies(t *testing.T) {
	archive := []*nsga3.Individual{
		{Objectives: []float64{0, 10}},
		{Objectives: []float64{4, 4}},
		{Objectives: []float64{10, 0}},
	}

	assert.Equal(t, 2, SelectLast(archive))
	assert.Equal(t, 1, SelectNearestIdeal(archive))
	assert.Equal(t, -1, SelectNearestIdeal(nil))

	assert.Equal(t, 1, PolicyByName("nearest-ideal")(archive))
	assert.Equal(t, 2, PolicyByName("")(archive))
}
