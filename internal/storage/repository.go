package storage

import (
	"context"

	"github.com/Togather-Foundation/gallery/internal/domain/artists"
	"github.com/Togather-Foundation/gallery/internal/domain/artworks"
	"github.com/Togather-Foundation/gallery/internal/domain/editions"
	"github.com/Togather-Foundation/gallery/internal/domain/events"
	"github.com/Togather-Foundation/gallery/internal/domain/media"
	"github.com/Togather-Foundation/gallery/internal/domain/messages"
	"github.com/Togather-Foundation/gallery/internal/domain/pages"
	"github.com/Togather-Foundation/gallery/internal/domain/posts"
	"github.com/Togather-Foundation/gallery/internal/domain/users"
	"github.com/Togather-Foundation/gallery/internal/domain/waitlist"
)

// Repository groups data access by domain.
type Repository interface {
	Users() users.Repository
	Media() media.Repository
	Artists() artists.Repository
	Artworks() artworks.Repository
	Editions() editions.Repository
	Events() events.Repository
	Posts() posts.Repository
	Pages() pages.Repository
	Messages() messages.Repository
	Waitlist() waitlist.Repository

	Ping(ctx context.Context) error
}
