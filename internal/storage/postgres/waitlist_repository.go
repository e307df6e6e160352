package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/domain/waitlist"
)

var _ waitlist.Repository = (*WaitlistRepository)(nil)

type WaitlistRepository struct {
	conn
}

const waitlistColumns = `id, email, source, created_at`

func scanEntry(row pgx.Row) (waitlist.Entry, error) {
	var e waitlist.Entry
	if err := row.Scan(&e.ID, &e.Email, &e.Source, &e.CreatedAt); err != nil {
		return waitlist.Entry{}, err
	}
	return e, nil
}

func (r *WaitlistRepository) Join(ctx context.Context, email string, source *string) (bool, error) {
	tag, err := r.queryer().Exec(ctx, `
		INSERT INTO labomaton_waitlist (email, source)
		VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING`,
		email, source)
	if err != nil {
		return false, fmt.Errorf("join waitlist: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *WaitlistRepository) List(ctx context.Context, page pagination.Page) ([]waitlist.Entry, error) {
	return r.query(ctx, "list waitlist", `
		SELECT `+waitlistColumns+` FROM labomaton_waitlist
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		page.Limit(), page.Offset())
}

func (r *WaitlistRepository) All(ctx context.Context) ([]waitlist.Entry, error) {
	return r.query(ctx, "export waitlist", `SELECT `+waitlistColumns+` FROM labomaton_waitlist ORDER BY created_at DESC`)
}

func (r *WaitlistRepository) query(ctx context.Context, op, sql string, args ...any) ([]waitlist.Entry, error) {
	rows, err := r.queryer().Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (waitlist.Entry, error) {
		return scanEntry(row)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}
