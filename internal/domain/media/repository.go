package media

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
)

var (
	ErrNotFound = errors.New("media not found")

	// ErrStorage wraps object store failures. The metadata row is left in
	// place when the backing object could not be removed.
	ErrStorage = errors.New("object storage failure")
)

type Media struct {
	ID        uuid.UUID  `json:"id"`
	Filename  string     `json:"filename"`
	URL       string     `json:"url"`
	Alt       *string    `json:"alt"`
	Credit    *string    `json:"credit"`
	Folder    *string    `json:"folder"`
	ArtistID  *uuid.UUID `json:"artist_id"`
	Width     *int32     `json:"width"`
	Height    *int32     `json:"height"`
	CreatedAt time.Time  `json:"created_at"`
}

// WithArtist is a library row joined with its owning artist's name.
type WithArtist struct {
	Media
	ArtistName *string `json:"artist_name"`
}

// Linked is a media item attached to a parent at a position.
type Linked struct {
	Media
	SortOrder int `json:"sort_order"`
}

type Filters struct {
	Query    string
	Folder   string
	ArtistID *uuid.UUID
}

type CreateParams struct {
	Filename string
	URL      string
	Alt      *string
	Credit   *string
	Folder   *string
	ArtistID *uuid.UUID
	Width    *int32
	Height   *int32
}

type UpdateParams struct {
	Alt      *string    `json:"alt"`
	Credit   *string    `json:"credit"`
	Folder   *string    `json:"folder"`
	ArtistID *uuid.UUID `json:"artist_id"`
}

type Repository interface {
	List(ctx context.Context, filters Filters, page pagination.Page) ([]WithArtist, error)
	Folders(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id uuid.UUID) (*Media, error)
	Create(ctx context.Context, params CreateParams) (*Media, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Media, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ObjectStore holds the bytes behind each media row.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
