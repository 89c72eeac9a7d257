package domain

type PlotHours struct {
	Name  string `json:"name"`
	Hours int    `json:"hours"`
}

type WorkerAllocation struct {
	Name  string      `json:"name"`
	Plots []PlotHours `json:"plots"`
}

// Allocation 按工人输入顺序排列，每个工人的地块也按输入顺序排列
type Allocation []WorkerAllocation

// SchedulingOutcome 是一次排班的结果
// Feasible 为 false 时表示没有找到满足工时约束的方案，这不是错误
type SchedulingOutcome struct {
	Feasible    bool        `json:"feasible"`
	Message     string      `json:"message"`
	Allocation  Allocation  `json:"allocation"`
	Objectives  []float64   `json:"objectives"`
	ArchiveSize int         `json:"archiveSize"`
	Evaluations int         `json:"evaluations"`
	Rates       []float64   `json:"rates"`
	Front       [][]float64 `json:"front,omitempty"` // 第一前沿上可行个体的目标向量
}
