package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/domain/messages"
)

var _ messages.Repository = (*MessageRepository)(nil)

type MessageRepository struct {
	conn
}

const messageColumns = `id, name, email, message, status, created_at`

func scanMessage(row pgx.Row) (messages.Message, error) {
	var m messages.Message
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Status, &m.CreatedAt); err != nil {
		return messages.Message{}, err
	}
	return m, nil
}

func (r *MessageRepository) Create(ctx context.Context, params messages.CreateParams) (*messages.Message, error) {
	m, err := scanMessage(r.queryer().QueryRow(ctx, `
		INSERT INTO contact_messages (name, email, message, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+messageColumns,
		params.Name, params.Email, params.Message, messages.StatusNew))
	if err != nil {
		return nil, mapError("create contact message", err, messages.ErrNotFound)
	}
	return &m, nil
}

func (r *MessageRepository) List(ctx context.Context, page pagination.Page) ([]messages.Message, error) {
	rows, err := r.queryer().Query(ctx, `
		SELECT `+messageColumns+` FROM contact_messages
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (messages.Message, error) {
		return scanMessage(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan contact messages: %w", err)
	}
	return list, nil
}

func (r *MessageRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*messages.Message, error) {
	m, err := scanMessage(r.queryer().QueryRow(ctx, `
		UPDATE contact_messages SET status = $2
		WHERE id = $1
		RETURNING `+messageColumns,
		id, status))
	if err != nil {
		return nil, mapError("update contact message", err, messages.ErrNotFound)
	}
	return &m, nil
}
