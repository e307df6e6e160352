package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/domain/artworks"
	"github.com/Togather-Foundation/gallery/internal/domain/media"
)

var _ artworks.Repository = (*ArtworkRepository)(nil)

type ArtworkRepository struct {
	conn
}

const artworkColumns = `w.id, w.artist_id, w.title, w.slug, w.year, w.medium, w.dimensions,
	w.price_note, w.artsper_url, w.published, w.published_at, w.created_at, w.updated_at`

func scanArtwork(row pgx.Row, extra ...any) (artworks.Artwork, error) {
	var w artworks.Artwork
	dest := append([]any{
		&w.ID, &w.ArtistID, &w.Title, &w.Slug, &w.Year, &w.Medium, &w.Dimensions,
		&w.PriceNote, &w.ArtsperURL, &w.Published, &w.PublishedAt, &w.CreatedAt, &w.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return artworks.Artwork{}, err
	}
	return w, nil
}

func (r *ArtworkRepository) List(ctx context.Context, filters artworks.Filters, page pagination.Page) ([]artworks.WithMedia, error) {
	return r.query(ctx, "list artworks", `
		SELECT `+artworkColumns+`, a.name, a.slug
		FROM artworks w
		LEFT JOIN artists a ON a.id = w.artist_id
		WHERE ($1 = '' OR w.title ILIKE $1 OR w.medium ILIKE $1 OR w.dimensions ILIKE $1 OR a.name ILIKE $1)
		ORDER BY w.updated_at DESC
		LIMIT $2 OFFSET $3`,
		pagination.SearchPattern(filters.Query), page.Limit(), page.Offset())
}

func (r *ArtworkRepository) Get(ctx context.Context, id uuid.UUID) (*artworks.WithMedia, error) {
	list, err := r.query(ctx, "get artwork", `
		SELECT `+artworkColumns+`, a.name, a.slug
		FROM artworks w
		LEFT JOIN artists a ON a.id = w.artist_id
		WHERE w.id = $1`,
		id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, artworks.ErrNotFound
	}
	return &list[0], nil
}

func (r *ArtworkRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*artworks.Artwork, error) {
	w, err := scanArtwork(r.queryer().QueryRow(ctx, `SELECT `+artworkColumns+` FROM artworks w WHERE w.id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError("lock artwork", err, artworks.ErrNotFound)
	}
	return &w, nil
}

func (r *ArtworkRepository) Create(ctx context.Context, record artworks.Record) (*artworks.Artwork, error) {
	w, err := scanArtwork(r.queryer().QueryRow(ctx, `
		INSERT INTO artworks AS w (artist_id, title, slug, year, medium, dimensions, price_note,
			artsper_url, published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+artworkColumns,
		record.ArtistID, record.Title, record.Slug, record.Year, record.Medium, record.Dimensions,
		record.PriceNote, record.ArtsperURL, record.State.Published, record.State.PublishedAt))
	if err != nil {
		return nil, mapError("create artwork", err, artworks.ErrNotFound)
	}
	return &w, nil
}

func (r *ArtworkRepository) Update(ctx context.Context, id uuid.UUID, record artworks.Record) (*artworks.Artwork, error) {
	w, err := scanArtwork(r.queryer().QueryRow(ctx, `
		UPDATE artworks AS w SET
			artist_id = COALESCE($2, w.artist_id),
			title = COALESCE($3, w.title),
			slug = COALESCE($4, w.slug),
			year = COALESCE($5, w.year),
			medium = COALESCE($6, w.medium),
			dimensions = COALESCE($7, w.dimensions),
			price_note = COALESCE($8, w.price_note),
			artsper_url = COALESCE($9, w.artsper_url),
			published = $10,
			published_at = $11,
			updated_at = now()
		WHERE w.id = $1
		RETURNING `+artworkColumns,
		id, record.ArtistID, record.Title, record.Slug, record.Year, record.Medium, record.Dimensions,
		record.PriceNote, record.ArtsperURL, record.State.Published, record.State.PublishedAt))
	if err != nil {
		return nil, mapError("update artwork", err, artworks.ErrNotFound)
	}
	return &w, nil
}

func (r *ArtworkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.queryer().Exec(ctx, `DELETE FROM artworks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete artwork: %w", err)
	}
	return nil
}

func (r *ArtworkRepository) ReplaceMedia(ctx context.Context, id uuid.UUID, mediaIDs []uuid.UUID) error {
	return replaceMediaLinks(ctx, r.queryer(), artworkMedia, id, mediaIDs)
}

func (r *ArtworkRepository) ListMedia(ctx context.Context, id uuid.UUID) ([]media.Linked, error) {
	return listMediaLinks(ctx, r.queryer(), artworkMedia, id)
}

func (r *ArtworkRepository) ListPublishedByArtist(ctx context.Context, artistID uuid.UUID) ([]artworks.WithMedia, error) {
	return r.query(ctx, "list artist artworks", `
		SELECT `+artworkColumns+`, a.name, a.slug
		FROM artworks w
		LEFT JOIN artists a ON a.id = w.artist_id
		WHERE w.artist_id = $1 AND w.published
		ORDER BY w.year DESC NULLS LAST, w.title ASC`,
		artistID)
}

func (r *ArtworkRepository) WithTx(ctx context.Context, fn func(context.Context, artworks.Repository) error) error {
	return r.inTx(ctx, func(c conn) error {
		return fn(ctx, &ArtworkRepository{conn: c})
	})
}

func (r *ArtworkRepository) query(ctx context.Context, op, sql string, args ...any) ([]artworks.WithMedia, error) {
	rows, err := r.queryer().Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (artworks.WithMedia, error) {
		var item artworks.WithMedia
		w, err := scanArtwork(row, &item.ArtistName, &item.ArtistSlug)
		item.Artwork = w
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]uuid.UUID, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	links, err := mediaLinksFor(ctx, r.queryer(), artworkMedia, ids)
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
