package events

import (
	"context"
	"errors"
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
		logger: logger.With().Str("component", "events").Logger(),
		now:    time.Now,
	}
}

type CreateParams struct {
	Fields
	ArtistIDs []uuid.UUID
	Published *bool
}

// UpdateParams.ArtistIDs replaces the whole lineup when non-nil.
type UpdateParams struct {
	Fields
	ArtistIDs *[]uuid.UUID
	Published *bool
}

func (s *Service) List(ctx context.Context, filters Filters, page pagination.Page) ([]WithDetails, error) {
	return s.repo.List(ctx, filters, page)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WithDetails, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Event, error) {
	if params.Title == nil {
		return nil, domain.ValidationError{Field: "title", Message: "title is required"}
	}
	if params.StartAt == nil {
		return nil, domain.ValidationError{Field: "start_at", Message: "start_at is required"}
	}
	if err := checkRange(*params.StartAt, params.EndAt); err != nil {
		return nil, err
	}
	slug, err := slugFor(*params.Title)
	if err != nil {
		return nil, err
	}

	var created *Event
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		created, err = tx.Create(ctx, Record{
			Fields: params.Fields,
			Slug:   &slug,
			State:  publish.Initial(params.Published, s.now()),
		})
		if err != nil {
			return err
		}
		if len(params.ArtistIDs) > 0 {
			return tx.ReplaceArtists(ctx, created.ID, params.ArtistIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Event, error) {
	var slug *string
	if params.Title != nil {
		value, err := slugFor(*params.Title)
		if err != nil {
			return nil, err
		}
		slug = &value
	}

	var updated *Event
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		start := current.StartAt
		if params.StartAt != nil {
			start = *params.StartAt
		}
		end := current.EndAt
		if params.EndAt != nil {
			end = params.EndAt
		}
		if err := checkRange(start, end); err != nil {
			return err
		}

		updated, err = tx.Update(ctx, id, Record{
			Fields: params.Fields,
			Slug:   slug,
			State:  publish.Apply(current.State(), params.Published, s.now()),
		})
		if err != nil {
			return err
		}
		if params.ArtistIDs != nil {
			return tx.ReplaceArtists(ctx, id, *params.ArtistIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) TogglePublish(ctx context.Context, id uuid.UUID) (*Event, error) {
	var updated *Event
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
	s.logger.Info().Str("event_id", id.String()).Bool("published", updated.Published).Msg("publish toggled")
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListPublished(ctx context.Context, page pagination.Page) ([]WithDetails, error) {
	return s.repo.ListPublished(ctx, page)
}

func (s *Service) GetPublishedBySlug(ctx context.Context, slug string) (*WithDetails, error) {
	return s.repo.GetPublishedBySlug(ctx, slug)
}

// Current returns nil without error when nothing is on view.
func (s *Service) Current(ctx context.Context) (*WithDetails, error) {
	current, err := s.repo.Current(ctx, s.now())
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return current, err
}

func (s *Service) Upcoming(ctx context.Context, limit int) ([]WithDetails, error) {
	return s.repo.Upcoming(ctx, s.now(), limit)
}

func checkRange(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return domain.ValidationError{Field: "end_at", Message: "end_at must not be before start_at"}
	}
	return nil
}

func slugFor(title string) (string, error) {
	slug := ids.Slugify(title)
	if slug == "" {
		return "", domain.ValidationError{Field: "title", Message: "title must contain letters or digits"}
	}
	return slug, nil
}
