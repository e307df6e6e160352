package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/audit"
	"github.com/Togather-Foundation/gallery/internal/domain"
	"github.com/Togather-Foundation/gallery/internal/domain/artists"
	"github.com/Togather-Foundation/gallery/internal/domain/artworks"
	"github.com/Togather-Foundation/gallery/internal/domain/media"
)

func nopAudit() *audit.Logger {
	return audit.NewLogger(zerolog.Nop())
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody[T any](t *testing.T, res *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, res.Body.String())
	}
	return out
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// memArtistsRepo keeps artists in memory. Methods it does not override
// panic through the embedded nil interface.
type memArtistsRepo struct {
	artists.Repository
	mu   sync.Mutex
	rows map[uuid.UUID]*artists.Artist
}

func newMemArtistsRepo() *memArtistsRepo {
	return &memArtistsRepo{rows: map[uuid.UUID]*artists.Artist{}}
}

func (m *memArtistsRepo) List(_ context.Context, _ artists.Filters, _ pagination.Page) ([]artists.WithPortrait, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]artists.WithPortrait, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, artists.WithPortrait{Artist: *row})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memArtistsRepo) Get(_ context.Context, id uuid.UUID) (*artists.WithPortrait, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, artists.ErrNotFound
	}
	return &artists.WithPortrait{Artist: *row}, nil
}

func (m *memArtistsRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*artists.Artist, error) {
	item, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &item.Artist, nil
}

func (m *memArtistsRepo) GetPublishedBySlug(_ context.Context, slug string) (*artists.WithPortrait, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Slug == slug && row.Published {
			return &artists.WithPortrait{Artist: *row}, nil
		}
	}
	return nil, artists.ErrNotFound
}

func (m *memArtistsRepo) Create(_ context.Context, record artists.Record) (*artists.Artist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Slug == *record.Slug {
			return nil, domain.ErrConflict
		}
	}
	now := time.Now().UTC()
	row := &artists.Artist{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	applyArtist(row, record)
	m.rows[row.ID] = row
	out := *row
	return &out, nil
}

func (m *memArtistsRepo) Update(_ context.Context, id uuid.UUID, record artists.Record) (*artists.Artist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, artists.ErrNotFound
	}
	applyArtist(row, record)
	out := *row
	return &out, nil
}

func (m *memArtistsRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return artists.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memArtistsRepo) WithTx(ctx context.Context, fn func(ctx context.Context, repo artists.Repository) error) error {
	return fn(ctx, m)
}

func applyArtist(row *artists.Artist, record artists.Record) {
	if record.Name != nil {
		row.Name = *record.Name
	}
	if record.Slug != nil {
		row.Slug = *record.Slug
	}
	if record.BioMD != nil {
		row.BioMD = record.BioMD
	}
	if record.PortraitMediaID != nil {
		row.PortraitMediaID = record.PortraitMediaID
	}
	if record.ArtsperURL != nil {
		row.ArtsperURL = record.ArtsperURL
	}
	if record.WebsiteURL != nil {
		row.WebsiteURL = record.WebsiteURL
	}
	if record.InstagramURL != nil {
		row.InstagramURL = record.InstagramURL
	}
	row.Published = record.State.Published
	row.PublishedAt = record.State.PublishedAt
}

type memMediaRepo struct {
	media.Repository
	mu   sync.Mutex
	rows map[uuid.UUID]*media.Media
}

func newMemMediaRepo() *memMediaRepo {
	return &memMediaRepo{rows: map[uuid.UUID]*media.Media{}}
}

func (m *memMediaRepo) Create(_ context.Context, params media.CreateParams) (*media.Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := &media.Media{
		ID:        uuid.New(),
		Filename:  params.Filename,
		URL:       params.URL,
		Alt:       params.Alt,
		Credit:    params.Credit,
		Folder:    params.Folder,
		ArtistID:  params.ArtistID,
		CreatedAt: time.Now().UTC(),
	}
	m.rows[row.ID] = row
	out := *row
	return &out, nil
}

func (m *memMediaRepo) Get(_ context.Context, id uuid.UUID) (*media.Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, media.ErrNotFound
	}
	out := *row
	return &out, nil
}

func (m *memMediaRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return media.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

// fakeObjectStore records stored objects and can be told to fail.
type fakeObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleteErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return "https://cdn.gallery.test/" + key, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

type memArtworksRepo struct {
	artworks.Repository
	media *memMediaRepo
	mu    sync.Mutex
	rows  map[uuid.UUID]*artworks.Artwork
	links map[uuid.UUID][]uuid.UUID
}

func newMemArtworksRepo(mediaRepo *memMediaRepo) *memArtworksRepo {
	return &memArtworksRepo{
		media: mediaRepo,
		rows:  map[uuid.UUID]*artworks.Artwork{},
		links: map[uuid.UUID][]uuid.UUID{},
	}
}

func (m *memArtworksRepo) Create(_ context.Context, record artworks.Record) (*artworks.Artwork, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := &artworks.Artwork{
		ID:          uuid.New(),
		ArtistID:    *record.ArtistID,
		Title:       *record.Title,
		Slug:        *record.Slug,
		Year:        record.Year,
		Published:   record.State.Published,
		PublishedAt: record.State.PublishedAt,
	}
	m.rows[row.ID] = row
	out := *row
	return &out, nil
}

func (m *memArtworksRepo) ReplaceMedia(ctx context.Context, id uuid.UUID, mediaIDs []uuid.UUID) error {
	for _, mediaID := range mediaIDs {
		if _, err := m.media.Get(ctx, mediaID); err != nil {
			return errors.New("foreign key violation")
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[id] = append([]uuid.UUID(nil), mediaIDs...)
	return nil
}

func (m *memArtworksRepo) ListMedia(ctx context.Context, id uuid.UUID) ([]media.Linked, error) {
	m.mu.Lock()
	ids := append([]uuid.UUID(nil), m.links[id]...)
	m.mu.Unlock()
	out := make([]media.Linked, 0, len(ids))
	for i, mediaID := range ids {
		item, err := m.media.Get(ctx, mediaID)
		if err != nil {
			return nil, err
		}
		out = append(out, media.Linked{Media: *item, SortOrder: i})
	}
	return out, nil
}

func (m *memArtworksRepo) Get(ctx context.Context, id uuid.UUID) (*artworks.WithMedia, error) {
	m.mu.Lock()
	row, ok := m.rows[id]
	m.mu.Unlock()
	if !ok {
		return nil, artworks.ErrNotFound
	}
	linked, err := m.ListMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	return &artworks.WithMedia{Artwork: *row, Media: linked}, nil
}

func (m *memArtworksRepo) WithTx(ctx context.Context, fn func(ctx context.Context, repo artworks.Repository) error) error {
	return fn(ctx, m)
}
