package artists

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
		logger: logger.With().Str("component", "artists").Logger(),
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

func (s *Service) List(ctx context.Context, filters Filters, page pagination.Page) ([]WithPortrait, error) {
	return s.repo.List(ctx, filters, page)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WithPortrait, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Artist, error) {
	if params.Name == nil {
		return nil, domain.ValidationError{Field: "name", Message: "name is required"}
	}
	slug, err := slugFor(*params.Name)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, Record{
		Fields: params.Fields,
		Slug:   &slug,
		State:  publish.Initial(params.Published, s.now()),
	})
}

// Update applies a partial edit. The row is locked while the publish
// transition is decided so concurrent edits see a consistent before-state.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Artist, error) {
	var slug *string
	if params.Name != nil {
		value, err := slugFor(*params.Name)
		if err != nil {
			return nil, err
		}
		slug = &value
	}

	var updated *Artist
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
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) TogglePublish(ctx context.Context, id uuid.UUID) (*Artist, error) {
	var updated *Artist
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		updated, err = tx.Update(ctx, id, Record{State: publish.Toggle(current.State(), s.now())})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("artist_id", id.String()).Bool("published", updated.Published).Msg("publish toggled")
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListPublished(ctx context.Context, page pagination.Page) ([]WithPortrait, error) {
	return s.repo.ListPublished(ctx, page)
}

func (s *Service) ListFeatured(ctx context.Context, limit int) ([]WithPortrait, error) {
	return s.repo.ListFeatured(ctx, limit)
}

func (s *Service) GetPublishedBySlug(ctx context.Context, slug string) (*WithPortrait, error) {
	return s.repo.GetPublishedBySlug(ctx, slug)
}

func (s *Service) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]WithPortrait, error) {
	return s.repo.ListForEvent(ctx, eventID)
}

func slugFor(name string) (string, error) {
	slug := ids.Slugify(name)
	if slug == "" {
		return "", domain.ValidationError{Field: "name", Message: "name must contain letters or digits"}
	}
	return slug, nil
}
