package domain

import "time"

type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusRunning    RequestStatus = "running"
	RequestStatusFinished   RequestStatus = "finished"
	RequestStatusInfeasible RequestStatus = "infeasible"
	RequestStatusFailed     RequestStatus = "failed"
)

// SchedulingRequest 异步排班请求，ID 为 uuid
type SchedulingRequest struct {
	ID           string        `json:"id"`
	PlannerID    int64         `json:"plannerID"`
	Productivity []Category    `json:"productivity"`
	Slopes       []Category    `json:"slopes"`
	Quotas       []float64     `json:"quotas"`
	Seed         uint64        `json:"seed"`
	Status       RequestStatus `json:"status"`
	Message      string        `json:"message"`
	CreatedAt    time.Time     `json:"createdAt"`
	Version      int32         `json:"-"`
}

// ScheduleJobMessage 投递到 schedule_queue 中的消息
type ScheduleJobMessage struct {
	RequestID string `json:"requestID"`
}
