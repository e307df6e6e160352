package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/domain/artists"
	"github.com/Togather-Foundation/gallery/internal/domain/media"
	"github.com/Togather-Foundation/gallery/internal/domain/publish"
)

var ErrNotFound = errors.New("event not found")

type Event struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	StartAt       time.Time  `json:"start_at"`
	EndAt         *time.Time `json:"end_at"`
	Location      *string    `json:"location"`
	DescriptionMD *string    `json:"description_md"`
	HeroMediaID   *uuid.UUID `json:"hero_media_id"`
	Published     bool       `json:"published"`
	PublishedAt   *time.Time `json:"published_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (e Event) State() publish.State {
	return publish.State{Published: e.Published, PublishedAt: e.PublishedAt}
}

// WithDetails is an event with its hero image and exhibiting artists.
type WithDetails struct {
	Event
	Hero    *media.Media           `json:"hero"`
	Artists []artists.WithPortrait `json:"artists"`
}

type Filters struct {
	Query string
}

type Fields struct {
	Title         *string
	StartAt       *time.Time
	EndAt         *time.Time
	Location      *string
	DescriptionMD *string
	HeroMediaID   *uuid.UUID
}

type Record struct {
	Fields
	Slug  *string
	State publish.State
}

type Repository interface {
	List(ctx context.Context, filters Filters, page pagination.Page) ([]WithDetails, error)
	Get(ctx context.Context, id uuid.UUID) (*WithDetails, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Event, error)
	Create(ctx context.Context, record Record) (*Event, error)
	Update(ctx context.Context, id uuid.UUID, record Record) (*Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceArtists(ctx context.Context, id uuid.UUID, artistIDs []uuid.UUID) error

	ListPublished(ctx context.Context, page pagination.Page) ([]WithDetails, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*WithDetails, error)
	// Current is the latest published event running at now, if any.
	Current(ctx context.Context, now time.Time) (*WithDetails, error)
	Upcoming(ctx context.Context, now time.Time, limit int) ([]WithDetails, error)

	WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
