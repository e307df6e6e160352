package artworks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/domain/media"
	"github.com/Togather-Foundation/gallery/internal/domain/publish"
)

var ErrNotFound = errors.New("artwork not found")

type Artwork struct {
	ID          uuid.UUID  `json:"id"`
	ArtistID    uuid.UUID  `json:"artist_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Year        *int32     `json:"year"`
	Medium      *string    `json:"medium"`
	Dimensions  *string    `json:"dimensions"`
	PriceNote   *string    `json:"price_note"`
	ArtsperURL  *string    `json:"artsper_url"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (a Artwork) State() publish.State {
	return publish.State{Published: a.Published, PublishedAt: a.PublishedAt}
}

// WithMedia is an artwork with its ordered images and owning artist.
type WithMedia struct {
	Artwork
	Media      []media.Linked `json:"media"`
	ArtistName *string        `json:"artist_name"`
	ArtistSlug *string        `json:"artist_slug"`
}

type Filters struct {
	Query string
}

type Fields struct {
	ArtistID   *uuid.UUID
	Title      *string
	Year       *int32
	Medium     *string
	Dimensions *string
	PriceNote  *string
	ArtsperURL *string
}

type Record struct {
	Fields
	Slug  *string
	State publish.State
}

type Repository interface {
	List(ctx context.Context, filters Filters, page pagination.Page) ([]WithMedia, error)
	Get(ctx context.Context, id uuid.UUID) (*WithMedia, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Artwork, error)
	Create(ctx context.Context, record Record) (*Artwork, error)
	Update(ctx context.Context, id uuid.UUID, record Record) (*Artwork, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ReplaceMedia swaps the full ordered image list of an artwork.
	ReplaceMedia(ctx context.Context, id uuid.UUID, mediaIDs []uuid.UUID) error
	ListMedia(ctx context.Context, id uuid.UUID) ([]media.Linked, error)

	ListPublishedByArtist(ctx context.Context, artistID uuid.UUID) ([]WithMedia, error)

	WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
