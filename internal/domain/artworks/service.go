package artworks

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
		logger: logger.With().Str("component", "artworks").Logger(),
		now:    time.Now,
	}
}

// CreateParams and UpdateParams carry an optional media list. A nil
// MediaIDs leaves the attached images alone; an empty one detaches all.
type CreateParams struct {
	Fields
	MediaIDs  []uuid.UUID
	Published *bool
}

type UpdateParams struct {
	Fields
	MediaIDs  *[]uuid.UUID
	Published *bool
}

func (s *Service) List(ctx context.Context, filters Filters, page pagination.Page) ([]WithMedia, error) {
	return s.repo.List(ctx, filters, page)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WithMedia, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Artwork, error) {
	if params.ArtistID == nil {
		return nil, domain.ValidationError{Field: "artist_id", Message: "artist_id is required"}
	}
	if params.Title == nil {
		return nil, domain.ValidationError{Field: "title", Message: "title is required"}
	}
	slug, err := slugFor(*params.Title)
	if err != nil {
		return nil, err
	}

	var created *Artwork
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		created, err = tx.Create(ctx, Record{
			Fields: params.Fields,
			Slug:   &slug,
			State:  publish.Initial(params.Published, s.now()),
		})
		if err != nil {
			return err
		}
		if len(params.MediaIDs) > 0 {
			return tx.ReplaceMedia(ctx, created.ID, params.MediaIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies a partial edit, the publish transition and the optional
// media replacement in one transaction.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Artwork, error) {
	var slug *string
	if params.Title != nil {
		value, err := slugFor(*params.Title)
		if err != nil {
			return nil, err
		}
		slug = &value
	}

	var updated *Artwork
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
		if err != nil {
			return err
		}
		if params.MediaIDs != nil {
			return tx.ReplaceMedia(ctx, id, *params.MediaIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) TogglePublish(ctx context.Context, id uuid.UUID) (*Artwork, error) {
	var updated *Artwork
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
	s.logger.Info().Str("artwork_id", id.String()).Bool("published", updated.Published).Msg("publish toggled")
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListPublishedByArtist(ctx context.Context, artistID uuid.UUID) ([]WithMedia, error) {
	return s.repo.ListPublishedByArtist(ctx, artistID)
}

func slugFor(title string) (string, error) {
	slug := ids.Slugify(title)
	if slug == "" {
		return "", domain.ValidationError{Field: "title", Message: "title must contain letters or digits"}
	}
	return slug, nil
}
