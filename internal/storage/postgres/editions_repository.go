package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/domain/editions"
	"github.com/Togather-Foundation/gallery/internal/domain/media"
)

var _ editions.Repository = (*EditionRepository)(nil)

type EditionRepository struct {
	conn
}

const editionColumns = `w.id, w.artist_id, w.title, w.slug, w.year, w.medium, w.dimensions,
	w.edition_size, w.price_note, w.artsper_url, w.published, w.published_at, w.created_at, w.updated_at`

func scanEdition(row pgx.Row, extra ...any) (editions.Edition, error) {
	var w editions.Edition
	dest := append([]any{
		&w.ID, &w.ArtistID, &w.Title, &w.Slug, &w.Year, &w.Medium, &w.Dimensions,
		&w.EditionSize, &w.PriceNote, &w.ArtsperURL, &w.Published, &w.PublishedAt, &w.CreatedAt, &w.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return editions.Edition{}, err
	}
	return w, nil
}

func (r *EditionRepository) List(ctx context.Context, filters editions.Filters, page pagination.Page) ([]editions.WithMedia, error) {
	return r.query(ctx, "list editions", `
		SELECT `+editionColumns+`, a.name, a.slug
		FROM editions w
		LEFT JOIN artists a ON a.id = w.artist_id
		WHERE ($1 = '' OR w.title ILIKE $1 OR w.medium ILIKE $1 OR w.dimensions ILIKE $1 OR w.edition_size ILIKE $1 OR a.name ILIKE $1)
		ORDER BY w.updated_at DESC
		LIMIT $2 OFFSET $3`,
		pagination.SearchPattern(filters.Query), page.Limit(), page.Offset())
}

func (r *EditionRepository) Get(ctx context.Context, id uuid.UUID) (*editions.WithMedia, error) {
	list, err := r.query(ctx, "get edition", `
		SELECT `+editionColumns+`, a.name, a.slug
		FROM editions w
		LEFT JOIN artists a ON a.id = w.artist_id
		WHERE w.id = $1`,
		id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, editions.ErrNotFound
	}
	return &list[0], nil
}

func (r *EditionRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*editions.Edition, error) {
	w, err := scanEdition(r.queryer().QueryRow(ctx, `SELECT `+editionColumns+` FROM editions w WHERE w.id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError("lock edition", err, editions.ErrNotFound)
	}
	return &w, nil
}

func (r *EditionRepository) Create(ctx context.Context, record editions.Record) (*editions.Edition, error) {
	w, err := scanEdition(r.queryer().QueryRow(ctx, `
		INSERT INTO editions AS w (artist_id, title, slug, year, medium, dimensions, edition_size,
			price_note, artsper_url, published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+editionColumns,
		record.ArtistID, record.Title, record.Slug, record.Year, record.Medium, record.Dimensions,
		record.EditionSize, record.PriceNote, record.ArtsperURL, record.State.Published, record.State.PublishedAt))
	if err != nil {
		return nil, mapError("create edition", err, editions.ErrNotFound)
	}
	return &w, nil
}

func (r *EditionRepository) Update(ctx context.Context, id uuid.UUID, record editions.Record) (*editions.Edition, error) {
	w, err := scanEdition(r.queryer().QueryRow(ctx, `
		UPDATE editions AS w SET
			artist_id = COALESCE($2, w.artist_id),
			title = COALESCE($3, w.title),
			slug = COALESCE($4, w.slug),
			year = COALESCE($5, w.year),
			medium = COALESCE($6, w.medium),
			dimensions = COALESCE($7, w.dimensions),
			edition_size = COALESCE($8, w.edition_size),
			price_note = COALESCE($9, w.price_note),
			artsper_url = COALESCE($10, w.artsper_url),
			published = $11,
			published_at = $12,
			updated_at = now()
		WHERE w.id = $1
		RETURNING `+editionColumns,
		id, record.ArtistID, record.Title, record.Slug, record.Year, record.Medium, record.Dimensions,
		record.EditionSize, record.PriceNote, record.ArtsperURL, record.State.Published, record.State.PublishedAt))
	if err != nil {
		return nil, mapError("update edition", err, editions.ErrNotFound)
	}
	return &w, nil
}

func (r *EditionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.queryer().Exec(ctx, `DELETE FROM editions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete edition: %w", err)
	}
	return nil
}

func (r *EditionRepository) ReplaceMedia(ctx context.Context, id uuid.UUID, mediaIDs []uuid.UUID) error {
	return replaceMediaLinks(ctx, r.queryer(), editionMedia, id, mediaIDs)
}

func (r *EditionRepository) ListMedia(ctx context.Context, id uuid.UUID) ([]media.Linked, error) {
	return listMediaLinks(ctx, r.queryer(), editionMedia, id)
}

func (r *EditionRepository) ListPublishedByArtist(ctx context.Context, artistID uuid.UUID) ([]editions.WithMedia, error) {
	return r.query(ctx, "list artist editions", `
		SELECT `+editionColumns+`, a.name, a.slug
		FROM editions w
		LEFT JOIN artists a ON a.id = w.artist_id
		WHERE w.artist_id = $1 AND w.published
		ORDER BY w.year DESC NULLS LAST, w.title ASC`,
		artistID)
}

func (r *EditionRepository) WithTx(ctx context.Context, fn func(context.Context, editions.Repository) error) error {
	return r.inTx(ctx, func(c conn) error {
		return fn(ctx, &EditionRepository{conn: c})
	})
}

func (r *EditionRepository) query(ctx context.Context, op, sql string, args ...any) ([]editions.WithMedia, error) {
	rows, err := r.queryer().Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (editions.WithMedia, error) {
		var item editions.WithMedia
		w, err := scanEdition(row, &item.ArtistName, &item.ArtistSlug)
		item.Edition = w
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]uuid.UUID, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	links, err := mediaLinksFor(ctx, r.queryer(), editionMedia, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Media = links[list[i].ID]
		if list[i].Media == nil {
			list[i].Media = []media.Linked{}
		}
	}
	return list, nil
}
