package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
)

type Service struct {
	repo   Repository
	store  ObjectStore
	logger zerolog.Logger
	newKey func(filename string) string
}

func NewService(repo Repository, store ObjectStore, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		store:  store,
		logger: logger.With().Str("component", "media").Logger(),
		newKey: ObjectKey,
	}
}

// UploadParams describes one multipart file upload.
type UploadParams struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Alt         *string
	Credit      *string
	Folder      *string
	ArtistID    *uuid.UUID
}

// ObjectKey names the stored object: a random uuid plus the extension of
// the client filename, or "bin" when it has none.
func ObjectKey(filename string) string {
	ext := "bin"
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		ext = filename[i+1:]
	}
	return uuid.NewString() + "." + ext
}

func (s *Service) List(ctx context.Context, filters Filters, page pagination.Page) ([]WithArtist, error) {
	return s.repo.List(ctx, filters, page)
}

func (s *Service) Folders(ctx context.Context) ([]string, error) {
	return s.repo.Folders(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Media, error) {
	return s.repo.Get(ctx, id)
}

// Upload stores the object, then records its metadata. If the row cannot
// be written the object is removed again.
func (s *Service) Upload(ctx context.Context, params UploadParams) (*Media, error) {
	key := s.newKey(params.Filename)
	contentType := params.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := s.store.Put(ctx, key, params.Body, params.Size, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: put %s: %v", ErrStorage, key, err)
	}

	created, err := s.repo.Create(ctx, CreateParams{
		Filename: key,
		URL:      url,
		Alt:      params.Alt,
		Credit:   params.Credit,
		Folder:   params.Folder,
		ArtistID: params.ArtistID,
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn().Err(delErr).Str("key", key).Msg("orphaned object after failed insert")
		}
		return nil, err
	}

	s.logger.Info().Str("media_id", created.ID.String()).Str("key", key).Int64("size", params.Size).Msg("media uploaded")
	return created, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Media, error) {
	return s.repo.Update(ctx, id, params)
}

// Delete removes the backing object first. The row is deleted only after
// storage confirms, so metadata never points at a missing object because
// of this call.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, item.Filename); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrStorage, item.Filename, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}
