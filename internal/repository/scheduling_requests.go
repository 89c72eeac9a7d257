package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
)

func categoriesToInts(categories []domain.Category) []int32 {
	res := make([]int32, len(categories))
	for i, c := range categories {
		res[i] = int32(c)
	}
	return res
}

func intsToCategories(ints []int32) []domain.Category {
	res := make([]domain.Category, len(ints))
	for i, v := range ints {
		res[i] = domain.Category(v)
	}
	return res
}

// requestRow 扫描数组列时需要的中间变量
type requestRow struct {
	productivity []int32
	slopes       []int32
	seed         int64
}

func (row *requestRow) dst(m *pgtype.Map, req *domain.SchedulingRequest) []any {
	return []any{
		&req.ID,
		&req.PlannerID,
		m.SQLScanner(&row.productivity),
		m.SQLScanner(&row.slopes),
		m.SQLScanner(&req.Quotas),
		&row.seed,
		&req.Status,
		&req.Message,
		&req.CreatedAt,
		&req.Version,
	}
}

func (row *requestRow) fill(req *domain.SchedulingRequest) {
	req.Productivity = intsToCategories(row.productivity)
	req.Slopes = intsToCategories(row.slopes)
	req.Seed = uint64(row.seed)
}

func (r *Repository) CreateSchedulingRequest(req *domain.SchedulingRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO scheduling_requests (id, planner_id, productivity, slopes, quotas, seed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING status, message, created_at, version
	`

	args := []any{req.ID, req.PlannerID, categoriesToInts(req.Productivity), categoriesToInts(req.Slopes), req.Quotas, int64(req.Seed)}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&req.Status, &req.Message, &req.CreatedAt, &req.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSchedulingRequestByID(id string) (*domain.SchedulingRequest, error) {
	query := `
		SELECT id, planner_id, productivity, slopes, quotas, seed, status, message, created_at, version
		FROM scheduling_requests WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	m := pgtype.NewMap()
	req := &domain.SchedulingRequest{}
	row := &requestRow{}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(row.dst(m, req)...); err != nil {
		return nil, err
	}
	row.fill(req)

	return req, nil
}

func (r *Repository) GetSchedulingRequestsByPlannerID(plannerID int64) ([]*domain.SchedulingRequest, error) {
	query := `
		SELECT id, planner_id, productivity, slopes, quotas, seed, status, message, created_at, version
		FROM scheduling_requests WHERE planner_id = $1
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, plannerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := pgtype.NewMap()
	requests := make([]*domain.SchedulingRequest, 0)
	for rows.Next() {
		req := &domain.SchedulingRequest{}
		row := &requestRow{}
		if err := rows.Scan(row.dst(m, req)...); err != nil {
			return nil, err
		}
		row.fill(req)
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

// UpdateSchedulingRequestStatus 使用乐观锁更新请求状态
func (r *Repository) UpdateSchedulingRequestStatus(req *domain.SchedulingRequest) error {
	query := `
		UPDATE scheduling_requests
		SET
			status = $1,
			message = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{req.Status, req.Message, req.ID, req.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&req.Version); err != nil {
		return err
	}

	return nil
}
