package repository

import (
	"context"
	"errors"
	"time"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// CreateShiftAssignment 插入一条排班记录。
// (user_id, shift_id, work_date) 上的唯一索引是防止重复排班的最终保障，
// 工作流中的应用层查重只是为了给出更友好的错误信息，
// 这里把唯一约束冲突翻译成 domain.ErrDuplicateAssignment，
// 使调用方能够把冲突和约定校验失败区分开来
func (r *Repository) CreateShiftAssignment(sa *domain.ShiftAssignment) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO shift_assignments (user_id, shift_id, work_date, created_by_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	args := []any{sa.UserID, sa.ShiftID, sa.WorkDate, sa.CreatedByID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&sa.ID, &sa.CreatedAt, &sa.Version); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "shift_assignments_user_id_shift_id_work_date_key" {
			return domain.ErrDuplicateAssignment
		}
		return err
	}

	return nil
}

func (r *Repository) GetShiftAssignmentByID(id int64) (*domain.ShiftAssignment, error) {
	query := `
		SELECT
			sa.user_id,
			sa.shift_id,
			sa.work_date,
			sa.created_by_id,
			sa.created_at,
			sa.version,
			s.name,
			s.start_time,
			s.end_time,
			s.type,
			s.status
		FROM shift_assignments sa
		JOIN shifts s ON sa.shift_id = s.id
		WHERE sa.id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	sa := &domain.ShiftAssignment{
		ID:    id,
		Shift: &domain.Shift{},
	}

	dst := []any{
		&sa.UserID,
		&sa.ShiftID,
		&sa.WorkDate,
		&sa.CreatedByID,
		&sa.CreatedAt,
		&sa.Version,
		&sa.Shift.Name,
		&sa.Shift.StartTime,
		&sa.Shift.EndTime,
		&sa.Shift.Type,
		&sa.Shift.Status,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	sa.Shift.ID = sa.ShiftID

	return sa, nil
}

// FindAssignmentsByUserAndDateRange 返回用户在 [start, end) 内的所有排班记录，
// 并带上 JOIN 出来的班次信息供聚合计算使用
func (r *Repository) FindAssignmentsByUserAndDateRange(userID int64, start time.Time, end time.Time) ([]*domain.ShiftAssignment, error) {
	query := `
		SELECT
			sa.id,
			sa.shift_id,
			sa.work_date,
			sa.created_by_id,
			sa.created_at,
			sa.version,
			s.name,
			s.start_time,
			s.end_time,
			s.type,
			s.status
		FROM shift_assignments sa
		JOIN shifts s ON sa.shift_id = s.id
		WHERE sa.user_id = $1 AND sa.work_date >= $2 AND sa.work_date < $3
		ORDER BY sa.work_date, sa.id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]*domain.ShiftAssignment, 0)
	for rows.Next() {
		sa := &domain.ShiftAssignment{
			UserID: userID,
			Shift:  &domain.Shift{},
		}
		dst := []any{
			&sa.ID,
			&sa.ShiftID,
			&sa.WorkDate,
			&sa.CreatedByID,
			&sa.CreatedAt,
			&sa.Version,
			&sa.Shift.Name,
			&sa.Shift.StartTime,
			&sa.Shift.EndTime,
			&sa.Shift.Type,
			&sa.Shift.Status,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		sa.Shift.ID = sa.ShiftID
		assignments = append(assignments, sa)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *Repository) ShiftAssignmentExists(userID int64, shiftID int64, workDate time.Time) (bool, error) {
	isExists := false

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM shift_assignments
			WHERE user_id = $1 AND shift_id = $2 AND work_date = $3
		)
	`
	if err := r.dbpool.QueryRowContext(ctx, query, userID, shiftID, workDate).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}

// UpdateShiftAssignmentDate 只允许修改工作日期，用户和班次在创建后不可变
func (r *Repository) UpdateShiftAssignmentDate(sa *domain.ShiftAssignment) error {
	query := `
		UPDATE shift_assignments
		SET
			work_date = $1,
			version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, sa.WorkDate, sa.ID, sa.Version).Scan(&sa.Version); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "shift_assignments_user_id_shift_id_work_date_key" {
			return domain.ErrDuplicateAssignment
		}
		return err
	}

	return nil
}

func (r *Repository) DeleteShiftAssignment(id int64) error {
	query := `
		DELETE FROM shift_assignments WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
