package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/domain/posts"
)

var _ posts.Repository = (*PostRepository)(nil)

type PostRepository struct {
	conn
}

const postColumns = `p.id, p.title, p.slug, p.body_md, p.hero_media_id, p.published,
	p.published_at, p.created_at, p.updated_at`

func scanPost(row pgx.Row) (posts.Post, error) {
	var p posts.Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.BodyMD, &p.HeroMediaID, &p.Published,
		&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return posts.Post{}, err
	}
	return p, nil
}

func (r *PostRepository) List(ctx context.Context, filters posts.Filters, page pagination.Page) ([]posts.WithHero, error) {
	return r.query(ctx, "list posts", `
		SELECT `+postColumns+` FROM posts p
		WHERE ($1 = '' OR p.title ILIKE $1 OR p.body_md ILIKE $1)
		ORDER BY p.updated_at DESC
		LIMIT $2 OFFSET $3`,
		pagination.SearchPattern(filters.Query), page.Limit(), page.Offset())
}

func (r *PostRepository) Get(ctx context.Context, id uuid.UUID) (*posts.WithHero, error) {
	return r.one(ctx, "get post", `SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, id)
}

func (r *PostRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*posts.Post, error) {
	p, err := scanPost(r.queryer().QueryRow(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError("lock post", err, posts.ErrNotFound)
	}
	return &p, nil
}

func (r *PostRepository) Create(ctx context.Context, record posts.Record) (*posts.Post, error) {
	p, err := scanPost(r.queryer().QueryRow(ctx, `
		INSERT INTO posts AS p (title, slug, body_md, hero_media_id, published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+postColumns,
		record.Title, record.Slug, record.BodyMD, record.HeroMediaID,
		record.State.Published, record.State.PublishedAt))
	if err != nil {
		return nil, mapError("create post", err, posts.ErrNotFound)
	}
	return &p, nil
}

func (r *PostRepository) Update(ctx context.Context, id uuid.UUID, record posts.Record) (*posts.Post, error) {
	p, err := scanPost(r.queryer().QueryRow(ctx, `
		UPDATE posts AS p SET
			title = COALESCE($2, p.title),
			slug = COALESCE($3, p.slug),
			body_md = COALESCE($4, p.body_md),
			hero_media_id = COALESCE($5, p.hero_media_id),
			published = $6,
			published_at = $7,
			updated_at = now()
		WHERE p.id = $1
		RETURNING `+postColumns,
		id, record.Title, record.Slug, record.BodyMD, record.HeroMediaID,
		record.State.Published, record.State.PublishedAt))
	if err != nil {
		return nil, mapError("update post", err, posts.ErrNotFound)
	}
	return &p, nil
}

func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.queryer().Exec(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (r *PostRepository) ListPublished(ctx context.Context, page pagination.Page) ([]posts.WithHero, error) {
	return r.query(ctx, "list published posts", `
		SELECT `+postColumns+` FROM posts p
		WHERE p.published
		ORDER BY p.published_at DESC NULLS LAST
		LIMIT $1 OFFSET $2`,
		page.Limit(), page.Offset())
}

func (r *PostRepository) GetPublishedBySlug(ctx context.Context, slug string) (*posts.WithHero, error) {
	return r.one(ctx, "get published post", `SELECT `+postColumns+` FROM posts p WHERE p.slug = $1 AND p.published`, slug)
}

func (r *PostRepository) WithTx(ctx context.Context, fn func(context.Context, posts.Repository) error) error {
	return r.inTx(ctx, func(c conn) error {
		return fn(ctx, &PostRepository{conn: c})
	})
}

func (r *PostRepository) one(ctx context.Context, op, sql string, args ...any) (*posts.WithHero, error) {
	list, err := r.query(ctx, op, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, posts.ErrNotFound
	}
	return &list[0], nil
}

func (r *PostRepository) query(ctx context.Context, op, sql string, args ...any) ([]posts.WithHero, error) {
	rows, err := r.queryer().Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (posts.Post, error) {
		return scanPost(row)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	heroes, err := mediaByID(ctx, r.queryer(), collectIDs(list, func(p posts.Post) *uuid.UUID { return p.HeroMediaID }))
	if err != nil {
		return nil, err
	}
	out := make([]posts.WithHero, len(list))
	for i, p := range list {
		out[i] = posts.WithHero{Post: p, Hero: lookupMedia(heroes, p.HeroMediaID)}
	}
	return out, nil
}
