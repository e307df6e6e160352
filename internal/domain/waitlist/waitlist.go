package waitlist

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
)

type Entry struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Source    *string   `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	// Join inserts the address unless it is already present and reports
	// whether a row was written.
	Join(ctx context.Context, email string, source *string) (bool, error)
	List(ctx context.Context, page pagination.Page) ([]Entry, error)
	All(ctx context.Context) ([]Entry, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Join normalizes the address so "Jane@Example.com" and "jane@example.com"
// are one subscriber.
func (s *Service) Join(ctx context.Context, email string, source *string) (bool, error) {
	return s.repo.Join(ctx, strings.ToLower(strings.TrimSpace(email)), source)
}

func (s *Service) List(ctx context.Context, page pagination.Page) ([]Entry, error) {
	return s.repo.List(ctx, page)
}

func (s *Service) All(ctx context.Context) ([]Entry, error) {
	return s.repo.All(ctx)
}
