package repository

import (
	"context"
	"errors"
	"time"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *Repository) CreateConvention(c *domain.Convention) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO conventions (title, description, type, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	args := []any{c.Title, c.Description, c.Type, c.IsActive}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.CreatedAt, &c.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetConventionByID(id int64) (*domain.Convention, error) {
	query := `
		SELECT title, description, type, is_active, created_at, version
		FROM conventions WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	c := &domain.Convention{
		ID: id,
	}

	dst := []any{&c.Title, &c.Description, &c.Type, &c.IsActive, &c.CreatedAt, &c.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return c, nil
}

func (r *Repository) GetAllConventions() ([]*domain.Convention, error) {
	query := `
		SELECT id, title, description, type, is_active, created_at, version
		FROM conventions ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conventions := make([]*domain.Convention, 0)
	for rows.Next() {
		c := &domain.Convention{}
		dst := []any{&c.ID, &c.Title, &c.Description, &c.Type, &c.IsActive, &c.CreatedAt, &c.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		conventions = append(conventions, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return conventions, nil
}

func (r *Repository) UpdateConvention(c *domain.Convention) error {
	query := `
		UPDATE conventions
		SET
			title = $1,
			description = $2,
			type = $3,
			is_active = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{c.Title, c.Description, c.Type, c.IsActive, c.ID, c.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&c.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteConvention(id int64) error {
	query := `
		DELETE FROM conventions WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

// CreateUserConvention 将用户和约定关联起来。
// (user_id, convention_id) 上的唯一约束保证同一对关联至多存在一条
func (r *Repository) CreateUserConvention(uc *domain.UserConvention) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO user_conventions (user_id, convention_id, selection_type)
		VALUES ($1, $2, $3)
		RETURNING id, assigned_at
	`

	args := []any{uc.UserID, uc.ConventionID, uc.SelectionType}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&uc.ID, &uc.AssignedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "user_conventions_user_id_convention_id_key" {
			return domain.ErrDuplicateUserConvention
		}
		return err
	}

	return nil
}

func (r *Repository) GetUserConvention(userID int64, conventionID int64) (*domain.UserConvention, error) {
	query := `
		SELECT id, selection_type, assigned_at
		FROM user_conventions WHERE user_id = $1 AND convention_id = $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	uc := &domain.UserConvention{
		UserID:       userID,
		ConventionID: conventionID,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, userID, conventionID).Scan(&uc.ID, &uc.SelectionType, &uc.AssignedAt); err != nil {
		return nil, err
	}

	return uc, nil
}

func (r *Repository) DeleteUserConvention(id int64) error {
	query := `
		DELETE FROM user_conventions WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

// FindConventionsForUser 返回用户的所有约定关联（包括停用的约定），用于信息展示
func (r *Repository) FindConventionsForUser(userID int64) ([]*domain.UserConvention, error) {
	return r.findConventionsForUser(userID, false)
}

// FindActiveConventionsForUser 只返回关联中仍处于启用状态的约定，校验引擎在查询阶段
// 就排除停用的约定，而不是在解释阶段过滤
func (r *Repository) FindActiveConventionsForUser(userID int64) ([]*domain.UserConvention, error) {
	return r.findConventionsForUser(userID, true)
}

func (r *Repository) findConventionsForUser(userID int64, onlyActive bool) ([]*domain.UserConvention, error) {
	query := `
		SELECT
			uc.id,
			uc.convention_id,
			uc.selection_type,
			uc.assigned_at,
			c.title,
			c.description,
			c.type,
			c.is_active,
			c.created_at,
			c.version
		FROM user_conventions uc
		JOIN conventions c ON uc.convention_id = c.id
		WHERE uc.user_id = $1
	`
	if onlyActive {
		query += ` AND c.is_active = TRUE`
	}
	query += ` ORDER BY uc.id`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ucs := make([]*domain.UserConvention, 0)
	for rows.Next() {
		uc := &domain.UserConvention{
			UserID:     userID,
			Convention: &domain.Convention{},
		}
		dst := []any{
			&uc.ID,
			&uc.ConventionID,
			&uc.SelectionType,
			&uc.AssignedAt,
			&uc.Convention.Title,
			&uc.Convention.Description,
			&uc.Convention.Type,
			&uc.Convention.IsActive,
			&uc.Convention.CreatedAt,
			&uc.Convention.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		uc.Convention.ID = uc.ConventionID
		ucs = append(ucs, uc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ucs, nil
}
