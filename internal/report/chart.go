package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// QuotaChart 柱状图，对比每个地块的配额与排班后的采收量
func QuotaChart(w io.Writer, title string, quotas, harvested []float64) error {
	if len(quotas) == 0 {
		return errors.New("没有地块可以绘制")
	}
	if len(harvested) != len(quotas) {
		return fmt.Errorf("采收量数量 (%d) 与地块数量 (%d) 不一致", len(harvested), len(quotas))
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "kg",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
	)

	names := make([]string, len(quotas))
	quotaData := make([]opts.BarData, len(quotas))
	harvestedData := make([]opts.BarData, len(quotas))
	for j := range quotas {
		names[j] = fmt.Sprintf("plot_%d", j+1)
		quotaData[j] = opts.BarData{Value: quotas[j]}
		harvestedData[j] = opts.BarData{Value: harvested[j]}
	}

	bar.SetXAxis(names).
		AddSeries("配额", quotaData).
		AddSeries("采收量", harvestedData)

	return bar.Render(w)
}

// FrontChart 散点图，绘制二目标问题的可行 Pareto 档案，chosen 为最终输出的方案
func FrontChart(w io.Writer, title string, front [][]float64, chosen []float64) error {
	if len(front) == 0 {
		return errors.New("可行的 Pareto 档案为空")
	}
	if len(front[0]) != 2 {
		return fmt.Errorf("只能绘制两个地块的 Pareto 档案，当前有 %d 个", len(front[0]))
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "plot_1 (kg)",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "plot_2 (kg)",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
	)

	archive := make([]opts.ScatterData, len(front))
	for i, p := range front {
		archive[i] = opts.ScatterData{
			Value:      []float64{p[0], p[1]},
			Symbol:     "circle",
			SymbolSize: 10,
		}
	}
	scatter.AddSeries("Pareto 档案", archive)

	if len(chosen) == 2 {
		scatter.AddSeries("输出方案", []opts.ScatterData{{
			Value:      []float64{chosen[0], chosen[1]},
			Symbol:     "triangle",
			SymbolSize: 14,
		}})
	}

	scatter.SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{
			Show: opts.Bool(false),
		}),
	)

	return scatter.Render(w)
}
