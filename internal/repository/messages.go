package repository

import (
	"context"
	"time"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
)

func (r *Repository) CreateMessage(m *domain.Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO messages (title, content, created_by_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	args := []any{m.Title, m.Content, m.CreatedByID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&m.ID, &m.CreatedAt, &m.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllMessages() ([]*domain.Message, error) {
	query := `
		SELECT id, title, content, created_by_id, created_at, version
		FROM messages ORDER BY id DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		m := &domain.Message{}
		dst := []any{&m.ID, &m.Title, &m.Content, &m.CreatedByID, &m.CreatedAt, &m.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *Repository) DeleteMessage(id int64) error {
	query := `
		DELETE FROM messages WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
