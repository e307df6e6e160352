package posts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/domain/media"
	"github.com/Togather-Foundation/gallery/internal/domain/publish"
)

var ErrNotFound = errors.New("post not found")

type Post struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	BodyMD      *string    `json:"body_md"`
	HeroMediaID *uuid.UUID `json:"hero_media_id"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p Post) State() publish.State {
	return publish.State{Published: p.Published, PublishedAt: p.PublishedAt}
}

type WithHero struct {
	Post
	Hero *media.Media `json:"hero"`
}

type Filters struct {
	Query string
}

type Fields struct {
	Title       *string
	BodyMD      *string
	HeroMediaID *uuid.UUID
}

type Record struct {
	Fields
	Slug  *string
	State publish.State
}

type Repository interface {
	List(ctx context.Context, filters Filters, page pagination.Page) ([]WithHero, error)
	Get(ctx context.Context, id uuid.UUID) (*WithHero, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Post, error)
	Create(ctx context.Context, record Record) (*Post, error)
	Update(ctx context.Context, id uuid.UUID, record Record) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListPublished(ctx context.Context, page pagination.Page) ([]WithHero, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*WithHero, error)

	WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
