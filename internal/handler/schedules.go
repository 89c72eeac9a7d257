package handler

import (
	"context"
	"database/sql"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/cache"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/report"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/scheduler"
)

type scheduleInput struct {
	Productivity []domain.Category `json:"productivity" validate:"required,min=1,dive,min=0,max=2"`
	Slopes       []domain.Category `json:"slopes" validate:"required,min=1,dive,min=0,max=2"`
	Quotas       []float64         `json:"quotas" validate:"required,min=1,dive,min=0"`
	Seed         uint64            `json:"seed"`
	Policy       string            `json:"policy" validate:"omitempty,oneof=last nearest-ideal"`
}

func (h *Handler) readScheduleInput(w http.ResponseWriter, r *http.Request) (*scheduleInput, bool) {
	var req scheduleInput

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}
	if req.Policy == "" {
		req.Policy = h.config.Optimizer.Policy
	}

	return &req, true
}

// GenerateSchedule 同步排班，固定了种子的请求会被缓存
func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readScheduleInput(w, r)
	if !ok {
		return
	}

	parameters := h.config.SchedulerParameters(req.Seed)

	var key string
	if req.Seed != 0 && h.outcomeCache != nil {
		k, err := cache.Key(parameters, req.Productivity, req.Slopes, req.Quotas)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		key = k + "_" + req.Policy

		outcome, hit, err := h.outcomeCache.Get(r.Context(), key)
		if err != nil {
			// 缓存不可用时直接重新计算
			h.logInternalServerError(r, err)
		} else if hit {
			h.respondOutcome(w, r, outcome)
			return
		}
	}

	s, err := scheduler.New(parameters, req.Productivity, req.Slopes, req.Quotas)
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrInvalidConfiguration):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Optimizer.Timeout)*time.Second)
	defer cancel()

	outcome, err := s.WithPolicy(scheduler.PolicyByName(req.Policy)).Schedule(ctx)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			h.errorResponse(w, r, "排班超时，请减少工人或地块的数量")
		case errors.Is(err, context.Canceled):
			h.errorResponse(w, r, "排班已取消")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if key != "" {
		if err := h.outcomeCache.Set(r.Context(), key, outcome); err != nil {
			h.logInternalServerError(r, err)
		}
	}

	h.respondOutcome(w, r, outcome)
}

func (h *Handler) respondOutcome(w http.ResponseWriter, r *http.Request, outcome *domain.SchedulingOutcome) {
	if !outcome.Feasible {
		h.failureResponse(w, r, outcome.Message, outcome)
		return
	}
	h.successResponse(w, r, "排班成功", outcome)
}

// CreateSchedulingRequest 保存排班请求并投递到排班队列，由 worker 异步计算
func (h *Handler) CreateSchedulingRequest(w http.ResponseWriter, r *http.Request) {
	input, ok := h.readScheduleInput(w, r)
	if !ok {
		return
	}

	// 提前校验，避免把无效的请求放进队列
	if _, err := scheduler.New(h.config.SchedulerParameters(1), input.Productivity, input.Slopes, input.Quotas); err != nil {
		switch {
		case errors.Is(err, scheduler.ErrInvalidConfiguration):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	plannerID, err := h.currentPlannerID(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 异步请求总是固定种子，保证结果可以复现
	seed := input.Seed
	for seed == 0 {
		seed = rand.Uint64()
	}

	req := &domain.SchedulingRequest{
		ID:           uuid.NewString(),
		PlannerID:    plannerID,
		Productivity: input.Productivity,
		Slopes:       input.Slopes,
		Quotas:       input.Quotas,
		Seed:         seed,
	}

	if err := h.repository.CreateSchedulingRequest(req); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publishJSON(h.config.Queue.Schedule, domain.ScheduleJobMessage{RequestID: req.ID}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "排班请求已提交", req)
}

func (h *Handler) GetMySchedulingRequests(w http.ResponseWriter, r *http.Request) {
	plannerID, err := h.currentPlannerID(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	requests, err := h.repository.GetSchedulingRequestsByPlannerID(plannerID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班请求成功", requests)
}

func (h *Handler) GetSchedulingRequest(w http.ResponseWriter, r *http.Request) {
	req := r.Context().Value(SchedulingRequestCtx).(*domain.SchedulingRequest)

	var data struct {
		Request    *domain.SchedulingRequest `json:"request"`
		Result     *domain.SchedulingResult  `json:"result"`
		Allocation domain.Allocation         `json:"allocation"`
	}
	data.Request = req

	result, err := h.repository.GetSchedulingResultByRequestID(req.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// 还没有计算完成
			h.successResponse(w, r, "获取排班请求成功", data)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	data.Result = result
	data.Allocation = result.Allocation(len(req.Productivity), len(req.Slopes))

	h.successResponse(w, r, "获取排班请求成功", data)
}

func (h *Handler) GetSchedulingChart(w http.ResponseWriter, r *http.Request) {
	req := r.Context().Value(SchedulingRequestCtx).(*domain.SchedulingRequest)

	result, err := h.repository.GetSchedulingResultByRequestID(req.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "排班结果尚未生成")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if !result.Feasible {
		h.errorResponse(w, r, scheduler.InfeasibleMessage)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.QuotaChart(w, "排班请求 "+req.ID, req.Quotas, result.Objectives); err != nil {
		h.internalServerError(w, r, err)
	}
}
