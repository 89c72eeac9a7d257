package domain

import (
	"fmt"
	"time"
)

type SchedulingResultCell struct {
	WorkerIndex int `json:"workerIndex"`
	PlotIndex   int `json:"plotIndex"`
	Hours       int `json:"hours"`
}

// SchedulingResult 持久化之后的排班结果
type SchedulingResult struct {
	ID          int64                  `json:"id"`
	RequestID   string                 `json:"requestID"`
	Feasible    bool                   `json:"feasible"`
	ArchiveSize int                    `json:"archiveSize"`
	Evaluations int                    `json:"evaluations"`
	Objectives  []float64              `json:"objectives"`
	Rates       []float64              `json:"rates"`
	Cells       []SchedulingResultCell `json:"cells"`
	CreatedAt   time.Time              `json:"createdAt"`
	Version     int32                  `json:"-"`
}

// NewSchedulingResult 把一次排班的结果转换为可以持久化的形式
func NewSchedulingResult(requestID string, outcome *SchedulingOutcome) *SchedulingResult {
	result := &SchedulingResult{
		RequestID:   requestID,
		Feasible:    outcome.Feasible,
		ArchiveSize: outcome.ArchiveSize,
		Evaluations: outcome.Evaluations,
		Objectives:  outcome.Objectives,
		Rates:       outcome.Rates,
		Cells:       make([]SchedulingResultCell, 0),
	}

	for i, w := range outcome.Allocation {
		for j, p := range w.Plots {
			result.Cells = append(result.Cells, SchedulingResultCell{
				WorkerIndex: i,
				PlotIndex:   j,
				Hours:       p.Hours,
			})
		}
	}

	return result
}

// Allocation 根据保存的单元格还原排班表
func (r *SchedulingResult) Allocation(workers, plots int) Allocation {
	if !r.Feasible {
		return nil
	}

	allocation := make(Allocation, workers)
	for i := range allocation {
		allocation[i] = WorkerAllocation{
			Name:  fmt.Sprintf("Worker %d", i+1),
			Plots: make([]PlotHours, plots),
		}
		for j := range allocation[i].Plots {
			allocation[i].Plots[j] = PlotHours{Name: fmt.Sprintf("plot_%d", j+1)}
		}
	}

	for _, cell := range r.Cells {
		if cell.WorkerIndex < workers && cell.PlotIndex < plots {
			allocation[cell.WorkerIndex].Plots[cell.PlotIndex].Hours = cell.Hours
		}
	}

	return allocation
}
