package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Togather-Foundation/gallery/internal/domain/pages"
)

var _ pages.Repository = (*PageRepository)(nil)

type PageRepository struct {
	conn
}

const pageColumns = `p.key, p.title, p.body_md, p.hero_media_id, p.updated_at`

func scanPage(row pgx.Row) (pages.Page, error) {
	var p pages.Page
	if err := row.Scan(&p.Key, &p.Title, &p.BodyMD, &p.HeroMediaID, &p.UpdatedAt); err != nil {
		return pages.Page{}, err
	}
	return p, nil
}

func (r *PageRepository) List(ctx context.Context) ([]pages.WithHero, error) {
	rows, err := r.queryer().Query(ctx, `SELECT `+pageColumns+` FROM pages p ORDER BY p.key`)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (pages.Page, error) {
		return scanPage(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan pages: %w", err)
	}
	heroes, err := mediaByID(ctx, r.queryer(), collectIDs(list, func(p pages.Page) *uuid.UUID { return p.HeroMediaID }))
	if err != nil {
		return nil, err
	}
	out := make([]pages.WithHero, len(list))
	for i, p := range list {
		out[i] = pages.WithHero{Page: p, Hero: lookupMedia(heroes, p.HeroMediaID)}
	}
	return out, nil
}

func (r *PageRepository) Get(ctx context.Context, key string) (*pages.WithHero, error) {
	p, err := scanPage(r.queryer().QueryRow(ctx, `SELECT `+pageColumns+` FROM pages p WHERE p.key = $1`, key))
	if err != nil {
		return nil, mapError("get page", err, pages.ErrNotFound)
	}
	heroes, err := mediaByID(ctx, r.queryer(), collectIDs([]pages.Page{p}, func(p pages.Page) *uuid.UUID { return p.HeroMediaID }))
	if err != nil {
		return nil, err
	}
	return &pages.WithHero{Page: p, Hero: lookupMedia(heroes, p.HeroMediaID)}, nil
}

func (r *PageRepository) Update(ctx context.Context, key string, fields pages.Fields) (*pages.Page, error) {
	p, err := scanPage(r.queryer().QueryRow(ctx, `
		UPDATE pages AS p SET
			title = COALESCE($2, p.title),
			body_md = COALESCE($3, p.body_md),
			hero_media_id = COALESCE($4, p.hero_media_id),
			updated_at = now()
		WHERE p.key = $1
		RETURNING `+pageColumns,
		key, fields.Title, fields.BodyMD, fields.HeroMediaID))
	if err != nil {
		return nil, mapError("update page", err, pages.ErrNotFound)
	}
	return &p, nil
}
