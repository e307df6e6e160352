package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/domain/media"
)

var _ media.Repository = (*MediaRepository)(nil)

type MediaRepository struct {
	conn
}

func (r *MediaRepository) List(ctx context.Context, filters media.Filters, page pagination.Page) ([]media.WithArtist, error) {
	rows, err := r.queryer().Query(ctx, `
		SELECT `+mediaColumns+`, a.name
		FROM media m
		LEFT JOIN artists a ON a.id = m.artist_id
		WHERE ($1 = '' OR m.filename ILIKE $1 OR m.alt ILIKE $1 OR m.credit ILIKE $1 OR m.folder ILIKE $1)
		  AND ($2 = '' OR m.folder ILIKE $2)
		  AND ($3::uuid IS NULL OR m.artist_id = $3)
		ORDER BY m.created_at DESC
		LIMIT $4 OFFSET $5`,
		pagination.SearchPattern(filters.Query), pagination.SearchPattern(filters.Folder), filters.ArtistID,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (media.WithArtist, error) {
		var item media.WithArtist
		m, err := scanMedia(row, &item.ArtistName)
		item.Media = m
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan media: %w", err)
	}
	return list, nil
}

func (r *MediaRepository) Folders(ctx context.Context) ([]string, error) {
	rows, err := r.queryer().Query(ctx, `
		SELECT DISTINCT folder FROM media
		WHERE folder IS NOT NULL AND folder <> ''
		ORDER BY folder`)
	if err != nil {
		return nil, fmt.Errorf("list media folders: %w", err)
	}
	folders, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan media folders: %w", err)
	}
	return folders, nil
}

func (r *MediaRepository) Get(ctx context.Context, id uuid.UUID) (*media.Media, error) {
	m, err := scanMedia(r.queryer().QueryRow(ctx, `SELECT `+mediaColumns+` FROM media m WHERE m.id = $1`, id))
	if err != nil {
		return nil, mapError("get media", err, media.ErrNotFound)
	}
	return &m, nil
}

func (r *MediaRepository) Create(ctx context.Context, params media.CreateParams) (*media.Media, error) {
	m, err := scanMedia(r.queryer().QueryRow(ctx, `
		INSERT INTO media AS m (filename, url, alt, credit, folder, artist_id, width, height)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+mediaColumns,
		params.Filename, params.URL, params.Alt, params.Credit, params.Folder,
		params.ArtistID, params.Width, params.Height))
	if err != nil {
		return nil, mapError("create media", err, media.ErrNotFound)
	}
	return &m, nil
}

func (r *MediaRepository) Update(ctx context.Context, id uuid.UUID, params media.UpdateParams) (*media.Media, error) {
	m, err := scanMedia(r.queryer().QueryRow(ctx, `
		UPDATE media AS m SET
			alt = COALESCE($2, m.alt),
			credit = COALESCE($3, m.credit),
			folder = COALESCE($4, m.folder),
			artist_id = COALESCE($5, m.artist_id)
		WHERE m.id = $1
		RETURNING `+mediaColumns,
		id, params.Alt, params.Credit, params.Folder, params.ArtistID))
	if err != nil {
		return nil, mapError("update media", err, media.ErrNotFound)
	}
	return &m, nil
}

func (r *MediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.queryer().Exec(ctx, `DELETE FROM media WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	return nil
}
