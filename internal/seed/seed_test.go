package seed

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
)

func TestReadFarm(t *testing.T) {
	file, err := os.Open("./data/farm.csv")
	require.NoError(t, err)
	defer file.Close()

	farm, err := ReadFarm(file)
	require.NoError(t, err)

	assert.Equal(t, []string{"张伟", "王芳", "李娜", "刘洋"}, farm.WorkerNames)
	assert.Equal(t, []domain.Category{domain.CategoryHigh, domain.CategoryMedium, domain.CategoryLow, domain.CategoryMedium}, farm.Productivity)
	assert.Equal(t, []string{"东坡", "西坡"}, farm.PlotNames)
	assert.Equal(t, []domain.Category{domain.CategoryLow, domain.CategoryHigh}, farm.Slopes)
	assert.Equal(t, []float64{1800, 900}, farm.Quotas)
}

func TestReadFarmNumericCategoryAndDefaultNames(t *testing.T) {
	data := "类型,名称,等级,配额\n工人,,2,\n地块,,0,100.5\n"

	farm, err := ReadFarm(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"Worker 1"}, farm.WorkerNames)
	assert.Equal(t, []string{"plot_1"}, farm.PlotNames)
	assert.Equal(t, []domain.Category{domain.CategoryHigh}, farm.Productivity)
	assert.Equal(t, []float64{100.5}, farm.Quotas)
}

func TestReadFarmErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"缺少列", "类型,名称,等级\n工人,a,1\n"},
		{"非法类型", "类型,名称,等级,配额\n牛,a,1,\n"},
		{"非法等级", "类型,名称,等级,配额\n工人,a,3,\n"},
		{"非法配额", "类型,名称,等级,配额\n工人,a,1,\n地块,b,1,abc\n"},
		{"没有地块", "类型,名称,等级,配额\n工人,a,1,\n"},
		{"空文件", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadFarm(strings.NewReader(tc.data))
			assert.Error(t, err)
		})
	}
}
