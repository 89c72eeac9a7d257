package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, QuotaChart(&buf, "harvest", []float64{100, 200}, []float64{90, 250}))
	assert.Contains(t, buf.String(), "echarts")
	assert.Contains(t, buf.String(), "plot_2")

	assert.Error(t, QuotaChart(&buf, "harvest", nil, nil))
	assert.Error(t, QuotaChart(&buf, "harvest", []float64{1, 2}, []float64{1}))
}

func TestFrontChart(t *testing.T) {
	var buf bytes.Buffer
	front := [][]float64{{1, 5}, {2, 3}, {4, 1}}
	require.NoError(t, FrontChart(&buf, "front", front, front[1]))
	assert.Contains(t, buf.String(), "echarts")

	assert.Error(t, FrontChart(&buf, "front", nil, nil))
	assert.Error(t, FrontChart(&buf, "front", [][]float64{{1, 2, 3}}, nil))
}
