package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
)

func (r *Repository) InsertSchedulingResult(result *domain.SchedulingResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先将之前的排班结果删除
	query := `DELETE FROM scheduling_results WHERE request_id = $1`
	if _, err := tx.ExecContext(ctx, query, result.RequestID); err != nil {
		return err
	}

	query = `
		INSERT INTO scheduling_results (request_id, feasible, archive_size, evaluations, objectives, rates)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	args := []any{result.RequestID, result.Feasible, result.ArchiveSize, result.Evaluations, result.Objectives, result.Rates}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&result.ID, &result.CreatedAt, &result.Version); err != nil {
		return err
	}

	for _, cell := range result.Cells {
		query := `
			INSERT INTO scheduling_result_cells (scheduling_result_id, worker_index, plot_index, hours)
			VALUES ($1, $2, $3, $4)
		`

		if _, err := tx.ExecContext(ctx, query, result.ID, cell.WorkerIndex, cell.PlotIndex, cell.Hours); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSchedulingResultByRequestID(requestID string) (*domain.SchedulingResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			sr.id,
			sr.feasible,
			sr.archive_size,
			sr.evaluations,
			sr.objectives,
			sr.rates,
			src.worker_index,
			src.plot_index,
			src.hours,
			sr.created_at,
			sr.version
		FROM scheduling_results sr
		LEFT JOIN scheduling_result_cells src ON sr.id = src.scheduling_result_id
		WHERE sr.request_id = $1
		ORDER BY src.worker_index, src.plot_index
	`

	rows, err := r.dbpool.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := pgtype.NewMap()
	result := &domain.SchedulingResult{
		RequestID: requestID,
		Cells:     make([]domain.SchedulingResultCell, 0),
	}

	for rows.Next() {
		var row struct {
			workerIndex sql.NullInt32
			plotIndex   sql.NullInt32
			hours       sql.NullInt32
		}

		dst := []any{
			&result.ID,
			&result.Feasible,
			&result.ArchiveSize,
			&result.Evaluations,
			m.SQLScanner(&result.Objectives),
			m.SQLScanner(&result.Rates),
			&row.workerIndex,
			&row.plotIndex,
			&row.hours,
			&result.CreatedAt,
			&result.Version,
		}

		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if !row.workerIndex.Valid {
			// 不可行的结果没有任何单元格
			continue
		}

		result.Cells = append(result.Cells, domain.SchedulingResultCell{
			WorkerIndex: int(row.workerIndex.Int32),
			PlotIndex:   int(row.plotIndex.Int32),
			Hours:       int(row.hours.Int32),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 还需要处理没有结果的情况
	if result.ID == 0 {
		return nil, sql.ErrNoRows
	}

	return result, nil
}
