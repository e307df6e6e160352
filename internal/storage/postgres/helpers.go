package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Togather-Foundation/gallery/internal/domain"
	"github.com/Togather-Foundation/gallery/internal/domain/media"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// conn is embedded by every entity repository. A non-nil tx pins all
// statements to that transaction.
type conn struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (c conn) queryer() queryer {
	if c.tx != nil {
		return c.tx
	}
	return c.pool
}

// inTx runs fn inside the open transaction, or inside a fresh one that is
// committed when fn succeeds.
func (c conn) inTx(ctx context.Context, fn func(conn) error) error {
	if c.tx != nil {
		return fn(c)
	}
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(conn{pool: c.pool, tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("rollback after error %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// mapError translates driver errors into domain errors. op names the
// failing operation for wrapped internal errors.
func mapError(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, domain.ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return domain.ValidationError{Field: foreignKeyField(pgErr.ConstraintName), Message: "references a record that does not exist"}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// foreignKeyField recovers the column from a default constraint name such
// as "artworks_artist_id_fkey".
func foreignKeyField(constraint string) string {
	trimmed := strings.TrimSuffix(constraint, "_fkey")
	for _, column := range []string{"portrait_media_id", "hero_media_id", "artist_id", "media_id", "event_id"} {
		if strings.HasSuffix(trimmed, column) {
			if column == "media_id" {
				return "media_ids"
			}
			if column == "artist_id" && strings.HasPrefix(trimmed, "event_artists") {
				return "artist_ids"
			}
			return column
		}
	}
	return constraint
}

const mediaColumns = `m.id, m.filename, m.url, m.alt, m.credit, m.folder, m.artist_id, m.width, m.height, m.created_at`

func scanMedia(row pgx.Row, extra ...any) (media.Media, error) {
	var m media.Media
	dest := append([]any{
		&m.ID, &m.Filename, &m.URL, &m.Alt, &m.Credit, &m.Folder,
		&m.ArtistID, &m.Width, &m.Height, &m.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return media.Media{}, err
	}
	return m, nil
}

// mediaByID batch-loads media rows, used for portraits and hero images.
// Dangling ids are simply absent from the result.
func mediaByID(ctx context.Context, q queryer, ids []uuid.UUID) (map[uuid.UUID]media.Media, error) {
	out := make(map[uuid.UUID]media.Media, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `SELECT `+mediaColumns+` FROM media m WHERE m.id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("load media: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (media.Media, error) {
		return scanMedia(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan media: %w", err)
	}
	for _, m := range list {
		out[m.ID] = m
	}
	return out, nil
}

func lookupMedia(set map[uuid.UUID]media.Media, id *uuid.UUID) *media.Media {
	if id == nil {
		return nil
	}
	m, ok := set[*id]
	if !ok {
		return nil
	}
	return &m
}

// collectIDs gathers the non-nil references of a list.
func collectIDs[T any](items []T, ref func(T) *uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	out := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		id := ref(item)
		if id == nil {
			continue
		}
		if _, ok := seen[*id]; ok {
			continue
		}
		seen[*id] = struct{}{}
		out = append(out, *id)
	}
	return out
}

// uniqueIDs drops repeated ids while keeping first-seen order.
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	return collectIDs(ids, func(id uuid.UUID) *uuid.UUID { return &id })
}
