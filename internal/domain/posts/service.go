package posts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/domain"
	"github.com/Togather-Foundation/gallery/internal/domain/ids"
	"github.com/Togather-Foundation/gallery/internal/domain/publish"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "posts").Logger(),
		now:    time.Now,
	}
}

type CreateParams struct {
	Fields
	Published *bool
}

type UpdateParams struct {
	Fields
	Published *bool
}

func (s *Service) List(ctx context.Context, filters Filters, page pagination.Page) ([]WithHero, error) {
	return s.repo.List(ctx, filters, page)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WithHero, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Post, error) {
	if params.Title == nil {
		return nil, domain.ValidationError{Field: "title", Message: "title is required"}
	}
	slug := ids.Slugify(*params.Title)
	if slug == "" {
		return nil, domain.ValidationError{Field: "title", Message: "title must contain letters or digits"}
	}
	return s.repo.Create(ctx, Record{
		Fields: params.Fields,
		Slug:   &slug,
		State:  publish.Initial(params.Published, s.now()),
	})
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Post, error) {
	var slug *string
	if params.Title != nil {
		value := ids.Slugify(*params.Title)
		if value == "" {
			return nil, domain.ValidationError{Field: "title", Message: "title must contain letters or digits"}
		}
		slug = &value
	}

	var updated *Post
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		updated, err = tx.Update(ctx, id, Record{
			Fields: params.Fields,
			Slug:   slug,
			State:  publish.Apply(current.State(), params.Published, s.now()),
		})
		return err
	})
	return updated, err
}

func (s *Service) TogglePublish(ctx context.Context, id uuid.UUID) (*Post, error) {
	var updated *Post
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		updated, err = tx.Update(ctx, id, Record{State: publish.Toggle(current.State(), s.now())})
		return err
	})
	return updated, err
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListPublished(ctx context.Context, page pagination.Page) ([]WithHero, error) {
	return s.repo.ListPublished(ctx, page)
}

func (s *Service) GetPublishedBySlug(ctx context.Context, slug string) (*WithHero, error) {
	return s.repo.GetPublishedBySlug(ctx, slug)
}
