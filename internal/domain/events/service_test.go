package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/domain"
)

type stubRepo struct {
	rows    map[uuid.UUID]*Event
	lineups map[uuid.UUID][]uuid.UUID

	currentFn func(now time.Time) (*WithDetails, error)
}

func newStubRepo() *stubRepo {
	return &stubRepo{rows: map[uuid.UUID]*Event{}, lineups: map[uuid.UUID][]uuid.UUID{}}
}

func (r *stubRepo) List(context.Context, Filters, pagination.Page) ([]WithDetails, error) {
	return nil, nil
}

func (r *stubRepo) Get(_ context.Context, id uuid.UUID) (*WithDetails, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &WithDetails{Event: *row}, nil
}

func (r *stubRepo) GetForUpdate(_ context.Context, id uuid.UUID) (*Event, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *stubRepo) Create(_ context.Context, record Record) (*Event, error) {
	row := &Event{
		ID:          uuid.New(),
		Title:       *record.Title,
		Slug:        *record.Slug,
		StartAt:     *record.StartAt,
		EndAt:       record.EndAt,
		Published:   record.State.Published,
		PublishedAt: record.State.PublishedAt,
	}
	r.rows[row.ID] = row
	return row, nil
}

func (r *stubRepo) Update(_ context.Context, id uuid.UUID, record Record) (*Event, error) {
	row := r.rows[id]
	if record.Title != nil {
		row.Title = *record.Title
	}
	if record.Slug != nil {
		row.Slug = *record.Slug
	}
	if record.EndAt != nil {
		row.EndAt = record.EndAt
	}
	row.Published = record.State.Published
	row.PublishedAt = record.State.PublishedAt
	return row, nil
}

func (r *stubRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.rows, id)
	return nil
}

func (r *stubRepo) ReplaceArtists(_ context.Context, id uuid.UUID, artistIDs []uuid.UUID) error {
	r.lineups[id] = artistIDs
	return nil
}

func (r *stubRepo) ListPublished(context.Context, pagination.Page) ([]WithDetails, error) {
	return nil, nil
}

func (r *stubRepo) GetPublishedBySlug(context.Context, string) (*WithDetails, error) {
	return nil, ErrNotFound
}

func (r *stubRepo) Current(_ context.Context, now time.Time) (*WithDetails, error) {
	if r.currentFn != nil {
		return r.currentFn(now)
	}
	return nil, ErrNotFound
}

func (r *stubRepo) Upcoming(context.Context, time.Time, int) ([]WithDetails, error) {
	return nil, nil
}

func (r *stubRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func strPtr(v string) *string { return &v }

func TestCreateWithLineup(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, zerolog.Nop())
	start := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	lineup := []uuid.UUID{uuid.New(), uuid.New()}

	created, err := svc.Create(context.Background(), CreateParams{
		Fields:    Fields{Title: strPtr("Summer Salon"), StartAt: &start},
		ArtistIDs: lineup,
	})

	require.NoError(t, err)
	require.Equal(t, "summer-salon", created.Slug)
	require.Equal(t, lineup, repo.lineups[created.ID])
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newStubRepo(), zerolog.Nop())
	start := time.Now()
	before := start.Add(-time.Hour)

	var verr domain.ValidationError
	_, err := svc.Create(context.Background(), CreateParams{Fields: Fields{Title: strPtr("Salon")}})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "start_at", verr.Field)

	_, err = svc.Create(context.Background(), CreateParams{Fields: Fields{Title: strPtr("Salon"), StartAt: &start, EndAt: &before}})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "end_at", verr.Field)
}

func TestUpdateArtistIDsReplaceOnlyWhenPresent(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, zerolog.Nop())
	start := time.Now()
	original := []uuid.UUID{uuid.New()}
	created, err := svc.Create(context.Background(), CreateParams{
		Fields:    Fields{Title: strPtr("Salon"), StartAt: &start},
		ArtistIDs: original,
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, UpdateParams{Fields: Fields{Location: strPtr("Main room")}})
	require.NoError(t, err)
	require.Equal(t, original, repo.lineups[created.ID])

	cleared := []uuid.UUID{}
	_, err = svc.Update(context.Background(), created.ID, UpdateParams{ArtistIDs: &cleared})
	require.NoError(t, err)
	require.Empty(t, repo.lineups[created.ID])
}

func TestUpdateRejectsEndBeforeStoredStart(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, zerolog.Nop())
	start := time.Now()
	created, err := svc.Create(context.Background(), CreateParams{Fields: Fields{Title: strPtr("Salon"), StartAt: &start}})
	require.NoError(t, err)

	end := start.Add(-24 * time.Hour)
	_, err = svc.Update(context.Background(), created.ID, UpdateParams{Fields: Fields{EndAt: &end}})

	var verr domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCurrentNoneIsNil(t *testing.T) {
	svc := NewService(newStubRepo(), zerolog.Nop())
	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.Nil(t, current)
}

func TestCurrentPassesClock(t *testing.T) {
	repo := newStubRepo()
	fixed := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	var seen time.Time
	repo.currentFn = func(now time.Time) (*WithDetails, error) {
		seen = now
		return &WithDetails{Event: Event{Title: "Salon"}}, nil
	}
	svc := NewService(repo, zerolog.Nop())
	svc.now = func() time.Time { return fixed }

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Salon", current.Title)
	require.True(t, fixed.Equal(seen))
}
