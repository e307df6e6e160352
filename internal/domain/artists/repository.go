package artists

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/domain/media"
	"github.com/Togather-Foundation/gallery/internal/domain/publish"
)

var ErrNotFound = errors.New("artist not found")

type Artist struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	BioMD           *string    `json:"bio_md"`
	PortraitMediaID *uuid.UUID `json:"portrait_media_id"`
	ArtsperURL      *string    `json:"artsper_url"`
	WebsiteURL      *string    `json:"website_url"`
	InstagramURL    *string    `json:"instagram_url"`
	Published       bool       `json:"published"`
	PublishedAt     *time.Time `json:"published_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (a Artist) State() publish.State {
	return publish.State{Published: a.Published, PublishedAt: a.PublishedAt}
}

type WithPortrait struct {
	Artist
	Portrait *media.Media `json:"portrait"`
}

type Filters struct {
	Query string
}

// Fields are the editable columns. On update a nil field keeps the stored
// value.
type Fields struct {
	Name            *string
	BioMD           *string
	PortraitMediaID *uuid.UUID
	ArtsperURL      *string
	WebsiteURL      *string
	InstagramURL    *string
}

// Record is a fully resolved write: slug and lifecycle already decided.
type Record struct {
	Fields
	Slug  *string
	State publish.State
}

type Repository interface {
	List(ctx context.Context, filters Filters, page pagination.Page) ([]WithPortrait, error)
	Get(ctx context.Context, id uuid.UUID) (*WithPortrait, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Artist, error)
	Create(ctx context.Context, record Record) (*Artist, error)
	Update(ctx context.Context, id uuid.UUID, record Record) (*Artist, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListPublished(ctx context.Context, page pagination.Page) ([]WithPortrait, error)
	ListFeatured(ctx context.Context, limit int) ([]WithPortrait, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*WithPortrait, error)
	ListForEvent(ctx context.Context, eventID uuid.UUID) ([]WithPortrait, error)

	WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
