package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/repository"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/scheduler"
)

// 表头中必须出现的列
var requiredHeaders = []string{"类型", "名称", "等级", "配额"}

var kindMap = map[string]string{
	"工人": "worker",
	"地块": "plot",
}

var categoryMap = map[string]domain.Category{
	"低": domain.CategoryLow,
	"中": domain.CategoryMedium,
	"高": domain.CategoryHigh,
}

// Farm 从 csv 中读出的一份真实数据
type Farm struct {
	WorkerNames  []string
	PlotNames    []string
	Productivity []domain.Category
	Slopes       []domain.Category
	Quotas       []float64
}

func parseCategory(value string) (domain.Category, error) {
	value = strings.TrimSpace(value)
	if c, ok := categoryMap[value]; ok {
		return c, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || !domain.Category(n).Valid() {
		return 0, fmt.Errorf("非法的等级: %q", value)
	}
	return domain.Category(n), nil
}

// ReadFarm 读取 csv 数据，每一行是一个工人或者一个地块
// 工人行的配额列留空，地块行的配额单位为千克
func ReadFarm(r io.Reader) (*Farm, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	index := make(map[string]int, len(headers))
	for i, header := range headers {
		index[strings.TrimSpace(header)] = i
	}
	for _, header := range requiredHeaders {
		if _, ok := index[header]; !ok {
			return nil, fmt.Errorf("没有找到列: %s", header)
		}
	}

	farm := &Farm{}
	line := 1
	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("读取文件失败: %w", err)
		}
		line++

		kind, ok := kindMap[strings.TrimSpace(row[index["类型"]])]
		if !ok {
			return nil, fmt.Errorf("第 %d 行: 非法的类型 %q", line, row[index["类型"]])
		}

		category, err := parseCategory(row[index["等级"]])
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}

		name := strings.TrimSpace(row[index["名称"]])

		switch kind {
		case "worker":
			if name == "" {
				name = fmt.Sprintf("Worker %d", len(farm.WorkerNames)+1)
			}
			farm.WorkerNames = append(farm.WorkerNames, name)
			farm.Productivity = append(farm.Productivity, category)
		case "plot":
			quota, err := strconv.ParseFloat(strings.TrimSpace(row[index["配额"]]), 64)
			if err != nil {
				return nil, fmt.Errorf("第 %d 行: 非法的配额: %w", line, err)
			}
			if name == "" {
				name = fmt.Sprintf("plot_%d", len(farm.PlotNames)+1)
			}
			farm.PlotNames = append(farm.PlotNames, name)
			farm.Slopes = append(farm.Slopes, category)
			farm.Quotas = append(farm.Quotas, quota)
		}
	}

	if len(farm.Productivity) == 0 || len(farm.Slopes) == 0 {
		return nil, errors.New("没有找到工人或地块")
	}

	return farm, nil
}

// SeedRealData 导入真实数据并直接在本地计算排班结果
func SeedRealData(r *repository.Repository, params *scheduler.Parameters, plannerUsername string, path string) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	farm, err := ReadFarm(file)
	if err != nil {
		slog.Error("读取数据失败", "error", err)
		return
	}

	planner, err := r.GetPlannerByUsername(plannerUsername)
	if err != nil {
		slog.Error("获取排班员失败", "username", plannerUsername, "error", err)
		return
	}

	s, err := scheduler.New(params, farm.Productivity, farm.Slopes, farm.Quotas)
	if err != nil {
		slog.Error("数据不合法", "error", err)
		return
	}

	req := &domain.SchedulingRequest{
		ID:           uuid.NewString(),
		PlannerID:    planner.ID,
		Productivity: farm.Productivity,
		Slopes:       farm.Slopes,
		Quotas:       farm.Quotas,
		Seed:         params.Seed,
		Status:       domain.RequestStatusRunning,
	}
	if err := r.CreateSchedulingRequest(req); err != nil {
		slog.Error("插入排班请求失败", "error", err)
		return
	}

	start := time.Now()
	outcome, err := s.Schedule(context.Background())
	if err != nil {
		slog.Error("排班失败", "error", err)
		req.Status = domain.RequestStatusFailed
		req.Message = err.Error()
		if err := r.UpdateSchedulingRequestStatus(req); err != nil {
			slog.Error("更新排班请求失败", "error", err)
		}
		return
	}

	if err := r.InsertSchedulingResult(domain.NewSchedulingResult(req.ID, outcome)); err != nil {
		slog.Error("插入排班结果失败", "error", err)
		return
	}

	req.Status = domain.RequestStatusFinished
	if !outcome.Feasible {
		req.Status = domain.RequestStatusInfeasible
		req.Message = outcome.Message
	}
	if err := r.UpdateSchedulingRequestStatus(req); err != nil {
		slog.Error("更新排班请求失败", "error", err)
		return
	}

	slog.Info("插入数据完成",
		"request", req.ID,
		"workers", len(farm.WorkerNames),
		"plots", len(farm.PlotNames),
		"status", req.Status,
		"elapsed", time.Since(start),
	)
}
