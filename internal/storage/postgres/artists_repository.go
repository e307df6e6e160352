package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/domain/artists"
)

var _ artists.Repository = (*ArtistRepository)(nil)

type ArtistRepository struct {
	conn
}

const artistColumns = `a.id, a.name, a.slug, a.bio_md, a.portrait_media_id, a.artsper_url,
	a.website_url, a.instagram_url, a.published, a.published_at, a.created_at, a.updated_at`

func scanArtist(row pgx.Row, extra ...any) (artists.Artist, error) {
	var a artists.Artist
	dest := append([]any{
		&a.ID, &a.Name, &a.Slug, &a.BioMD, &a.PortraitMediaID, &a.ArtsperURL,
		&a.WebsiteURL, &a.InstagramURL, &a.Published, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return artists.Artist{}, err
	}
	return a, nil
}

func (r *ArtistRepository) List(ctx context.Context, filters artists.Filters, page pagination.Page) ([]artists.WithPortrait, error) {
	return r.query(ctx, "list artists", `
		SELECT `+artistColumns+` FROM artists a
		WHERE ($1 = '' OR a.name ILIKE $1 OR a.slug ILIKE $1 OR a.bio_md ILIKE $1)
		ORDER BY a.updated_at DESC
		LIMIT $2 OFFSET $3`,
		pagination.SearchPattern(filters.Query), page.Limit(), page.Offset())
}

func (r *ArtistRepository) Get(ctx context.Context, id uuid.UUID) (*artists.WithPortrait, error) {
	return r.one(ctx, "get artist", `SELECT `+artistColumns+` FROM artists a WHERE a.id = $1`, id)
}

func (r *ArtistRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*artists.Artist, error) {
	a, err := scanArtist(r.queryer().QueryRow(ctx, `SELECT `+artistColumns+` FROM artists a WHERE a.id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError("lock artist", err, artists.ErrNotFound)
	}
	return &a, nil
}

func (r *ArtistRepository) Create(ctx context.Context, record artists.Record) (*artists.Artist, error) {
	a, err := scanArtist(r.queryer().QueryRow(ctx, `
		INSERT INTO artists AS a (name, slug, bio_md, portrait_media_id, artsper_url, website_url,
			instagram_url, published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+artistColumns,
		record.Name, record.Slug, record.BioMD, record.PortraitMediaID, record.ArtsperURL,
		record.WebsiteURL, record.InstagramURL, record.State.Published, record.State.PublishedAt))
	if err != nil {
		return nil, mapError("create artist", err, artists.ErrNotFound)
	}
	return &a, nil
}

func (r *ArtistRepository) Update(ctx context.Context, id uuid.UUID, record artists.Record) (*artists.Artist, error) {
	a, err := scanArtist(r.queryer().QueryRow(ctx, `
		UPDATE artists AS a SET
			name = COALESCE($2, a.name),
			slug = COALESCE($3, a.slug),
			bio_md = COALESCE($4, a.bio_md),
			portrait_media_id = COALESCE($5, a.portrait_media_id),
			artsper_url = COALESCE($6, a.artsper_url),
			website_url = COALESCE($7, a.website_url),
			instagram_url = COALESCE($8, a.instagram_url),
			published = $9,
			published_at = $10,
			updated_at = now()
		WHERE a.id = $1
		RETURNING `+artistColumns,
		id, record.Name, record.Slug, record.BioMD, record.PortraitMediaID, record.ArtsperURL,
		record.WebsiteURL, record.InstagramURL, record.State.Published, record.State.PublishedAt))
	if err != nil {
		return nil, mapError("update artist", err, artists.ErrNotFound)
	}
	return &a, nil
}

func (r *ArtistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.queryer().Exec(ctx, `DELETE FROM artists WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete artist: %w", err)
	}
	return nil
}

func (r *ArtistRepository) ListPublished(ctx context.Context, page pagination.Page) ([]artists.WithPortrait, error) {
	return r.query(ctx, "list published artists", `
		SELECT `+artistColumns+` FROM artists a
		WHERE a.published
		ORDER BY a.name ASC
		LIMIT $1 OFFSET $2`,
		page.Limit(), page.Offset())
}

// ListFeatured returns the most recently published artists.
func (r *ArtistRepository) ListFeatured(ctx context.Context, limit int) ([]artists.WithPortrait, error) {
	return r.query(ctx, "list featured artists", `
		SELECT `+artistColumns+` FROM artists a
		WHERE a.published
		ORDER BY a.published_at DESC NULLS LAST
		LIMIT $1`,
		limit)
}

func (r *ArtistRepository) GetPublishedBySlug(ctx context.Context, slug string) (*artists.WithPortrait, error) {
	return r.one(ctx, "get published artist", `SELECT `+artistColumns+` FROM artists a WHERE a.slug = $1 AND a.published`, slug)
}

func (r *ArtistRepository) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]artists.WithPortrait, error) {
	return r.query(ctx, "list event artists", `
		SELECT `+artistColumns+` FROM artists a
		JOIN event_artists ea ON ea.artist_id = a.id
		WHERE ea.event_id = $1
		ORDER BY a.name ASC`,
		eventID)
}

func (r *ArtistRepository) WithTx(ctx context.Context, fn func(context.Context, artists.Repository) error) error {
	return r.inTx(ctx, func(c conn) error {
		return fn(ctx, &ArtistRepository{conn: c})
	})
}

func (r *ArtistRepository) query(ctx context.Context, op, sql string, args ...any) ([]artists.WithPortrait, error) {
	rows, err := r.queryer().Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (artists.Artist, error) {
		return scanArtist(row)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return withPortraits(ctx, r.queryer(), list)
}

func (r *ArtistRepository) one(ctx context.Context, op, sql string, args ...any) (*artists.WithPortrait, error) {
	a, err := scanArtist(r.queryer().QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapError(op, err, artists.ErrNotFound)
	}
	list, err := withPortraits(ctx, r.queryer(), []artists.Artist{a})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

func withPortraits(ctx context.Context, q queryer, list []artists.Artist) ([]artists.WithPortrait, error) {
	portraits, err := mediaByID(ctx, q, collectIDs(list, func(a artists.Artist) *uuid.UUID { return a.PortraitMediaID }))
	if err != nil {
		return nil, err
	}
	out := make([]artists.WithPortrait, len(list))
	for i, a := range list {
		out[i] = artists.WithPortrait{Artist: a, Portrait: lookupMedia(portraits, a.PortraitMediaID)}
	}
	return out, nil
}
