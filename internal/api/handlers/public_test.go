package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/domain/artists"
	"github.com/Togather-Foundation/gallery/internal/domain/artworks"
	"github.com/Togather-Foundation/gallery/internal/domain/editions"
	"github.com/Togather-Foundation/gallery/internal/domain/events"
	"github.com/Togather-Foundation/gallery/internal/domain/messages"
	"github.com/Togather-Foundation/gallery/internal/domain/posts"
	"github.com/Togather-Foundation/gallery/internal/domain/waitlist"
)

type stubEventsRepo struct {
	events.Repository
	currentFn  func(now time.Time) (*events.WithDetails, error)
	upcomingFn func(now time.Time, limit int) ([]events.WithDetails, error)
	bySlugFn   func(slug string) (*events.WithDetails, error)
}

func (s stubEventsRepo) Current(_ context.Context, now time.Time) (*events.WithDetails, error) {
	return s.currentFn(now)
}

func (s stubEventsRepo) Upcoming(_ context.Context, now time.Time, limit int) ([]events.WithDetails, error) {
	return s.upcomingFn(now, limit)
}

func (s stubEventsRepo) GetPublishedBySlug(_ context.Context, slug string) (*events.WithDetails, error) {
	return s.bySlugFn(slug)
}

type stubPublicArtistsRepo struct {
	artists.Repository
	featuredFn func(limit int) ([]artists.WithPortrait, error)
	bySlugFn   func(slug string) (*artists.WithPortrait, error)
}

func (s stubPublicArtistsRepo) ListFeatured(_ context.Context, limit int) ([]artists.WithPortrait, error) {
	return s.featuredFn(limit)
}

func (s stubPublicArtistsRepo) GetPublishedBySlug(_ context.Context, slug string) (*artists.WithPortrait, error) {
	return s.bySlugFn(slug)
}

type stubPostsRepo struct {
	posts.Repository
	publishedFn func(page pagination.Page) ([]posts.WithHero, error)
}

func (s stubPostsRepo) ListPublished(_ context.Context, page pagination.Page) ([]posts.WithHero, error) {
	return s.publishedFn(page)
}

type stubArtworksByArtist struct {
	artworks.Repository
	fn func(artistID uuid.UUID) ([]artworks.WithMedia, error)
}

func (s stubArtworksByArtist) ListPublishedByArtist(_ context.Context, artistID uuid.UUID) ([]artworks.WithMedia, error) {
	return s.fn(artistID)
}

type stubEditionsByArtist struct {
	editions.Repository
	fn func(artistID uuid.UUID) ([]editions.WithMedia, error)
}

func (s stubEditionsByArtist) ListPublishedByArtist(_ context.Context, artistID uuid.UUID) ([]editions.WithMedia, error) {
	return s.fn(artistID)
}

type stubMessagesRepo struct {
	messages.Repository
	createFn func(params messages.CreateParams) (*messages.Message, error)
}

func (s stubMessagesRepo) Create(_ context.Context, params messages.CreateParams) (*messages.Message, error) {
	return s.createFn(params)
}

type recordingNotifier struct {
	sent []messages.Message
	err  error
}

func (n *recordingNotifier) NotifyContactMessage(_ context.Context, msg messages.Message) error {
	n.sent = append(n.sent, msg)
	return n.err
}

type memWaitlistRepo struct {
	waitlist.Repository
	emails map[string]bool
}

func (m *memWaitlistRepo) Join(_ context.Context, email string, _ *string) (bool, error) {
	if m.emails[email] {
		return false, nil
	}
	m.emails[email] = true
	return true, nil
}

func TestPublicHome(t *testing.T) {
	current := &events.WithDetails{Event: events.Event{ID: uuid.New(), Title: "Now Showing", Slug: "now-showing", Published: true}}
	var upcomingLimit, featuredLimit, postsPerPage int
	h := &PublicHandler{
		Events: events.NewService(stubEventsRepo{
			currentFn: func(time.Time) (*events.WithDetails, error) { return current, nil },
			upcomingFn: func(_ time.Time, limit int) ([]events.WithDetails, error) {
				upcomingLimit = limit
				return []events.WithDetails{{Event: events.Event{Title: "Next"}}}, nil
			},
		}, zerolog.Nop()),
		Artists: artists.NewService(stubPublicArtistsRepo{
			featuredFn: func(limit int) ([]artists.WithPortrait, error) {
				featuredLimit = limit
				return nil, nil
			},
		}, zerolog.Nop()),
		Posts: posts.NewService(stubPostsRepo{
			publishedFn: func(page pagination.Page) ([]posts.WithHero, error) {
				postsPerPage = page.PerPage
				return []posts.WithHero{{Post: posts.Post{Title: "Hello"}}}, nil
			},
		}, zerolog.Nop()),
	}

	res := httptest.NewRecorder()
	h.Home(res, httptest.NewRequest(http.MethodGet, "/api/public/home", nil))
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, 3, upcomingLimit)
	require.Equal(t, 4, featuredLimit)
	require.Equal(t, 3, postsPerPage)

	body := decodeBody[map[string]any](t, res)
	require.Equal(t, "Now Showing", body["current_event"].(map[string]any)["title"])
	require.Len(t, body["upcoming_events"], 1)
	require.Equal(t, []any{}, body["featured_artists"])
	require.Len(t, body["latest_posts"], 1)
}

func TestPublicHomeWithoutCurrentEvent(t *testing.T) {
	h := &PublicHandler{
		Events: events.NewService(stubEventsRepo{
			currentFn:  func(time.Time) (*events.WithDetails, error) { return nil, events.ErrNotFound },
			upcomingFn: func(time.Time, int) ([]events.WithDetails, error) { return nil, nil },
		}, zerolog.Nop()),
		Artists: artists.NewService(stubPublicArtistsRepo{
			featuredFn: func(int) ([]artists.WithPortrait, error) { return nil, nil },
		}, zerolog.Nop()),
		Posts: posts.NewService(stubPostsRepo{
			publishedFn: func(pagination.Page) ([]posts.WithHero, error) { return nil, errors.New("db down") },
		}, zerolog.Nop()),
	}

	res := httptest.NewRecorder()
	h.Home(res, httptest.NewRequest(http.MethodGet, "/api/public/home", nil))
	require.Equal(t, http.StatusInternalServerError, res.Code)
}

func TestPublicArtistDetail(t *testing.T) {
	artist := artists.WithPortrait{Artist: artists.Artist{ID: uuid.New(), Name: "Jane Doe", Slug: "jane-doe", Published: true}}
	year := int32(2021)
	var requestedArtist uuid.UUID
	h := &PublicHandler{
		Artists: artists.NewService(stubPublicArtistsRepo{
			bySlugFn: func(slug string) (*artists.WithPortrait, error) {
				if slug == artist.Slug {
					return &artist, nil
				}
				return nil, artists.ErrNotFound
			},
		}, zerolog.Nop()),
		Artworks: artworks.NewService(stubArtworksByArtist{fn: func(id uuid.UUID) ([]artworks.WithMedia, error) {
			requestedArtist = id
			return []artworks.WithMedia{{Artwork: artworks.Artwork{Title: "Blue", Year: &year}}}, nil
		}}, zerolog.Nop()),
		Editions: editions.NewService(stubEditionsByArtist{fn: func(uuid.UUID) ([]editions.WithMedia, error) {
			return nil, nil
		}}, zerolog.Nop()),
	}

	req := httptest.NewRequest(http.MethodGet, "/api/public/artists/jane-doe", nil)
	req.SetPathValue("slug", "jane-doe")
	res := httptest.NewRecorder()
	h.GetArtist(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, artist.ID, requestedArtist)
	body := decodeBody[map[string]any](t, res)
	require.Equal(t, "Jane Doe", body["name"])
	require.Len(t, body["artworks"], 1)
	require.Equal(t, []any{}, body["editions"])

	req = httptest.NewRequest(http.MethodGet, "/api/public/artists/ghost", nil)
	req.SetPathValue("slug", "ghost")
	res = httptest.NewRecorder()
	h.GetArtist(res, req)
	require.Equal(t, http.StatusNotFound, res.Code)
	require.Equal(t, "Artist not found", decodeBody[errorBody](t, res).Error)
}

func TestPublicContact(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("resend unavailable")}
	h := &PublicHandler{
		Messages: messages.NewService(stubMessagesRepo{createFn: func(p messages.CreateParams) (*messages.Message, error) {
			return &messages.Message{ID: uuid.New(), Name: p.Name, Email: p.Email, Message: p.Message, Status: messages.StatusNew}, nil
		}}, notifier, zerolog.Nop()),
	}

	res := httptest.NewRecorder()
	h.Contact(res, jsonRequest(t, http.MethodPost, "/api/public/contact", map[string]string{
		"name":    "Visitor",
		"email":   "visitor@example.com",
		"message": "I would love to see the new show.",
	}))
	require.Equal(t, http.StatusCreated, res.Code)
	msg := decodeBody[messages.Message](t, res)
	require.Equal(t, messages.StatusNew, msg.Status)
	require.Len(t, notifier.sent, 1)

	tests := []struct {
		name    string
		body    map[string]string
		field   string
		message string
	}{
		{"missing name", map[string]string{"email": "a@b.co", "message": "long enough text"}, "name", "Name is required"},
		{"bad email", map[string]string{"name": "A", "email": "nope", "message": "long enough text"}, "email", "Invalid email format"},
		{"short message", map[string]string{"name": "A", "email": "a@b.co", "message": "hi"}, "message", "Message must be at least 10 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := httptest.NewRecorder()
			h.Contact(res, jsonRequest(t, http.MethodPost, "/api/public/contact", tt.body))
			require.Equal(t, http.StatusUnprocessableEntity, res.Code)
			body := decodeBody[errorBody](t, res)
			require.Equal(t, tt.message, body.Error)
			require.Contains(t, body.Fields, tt.field)
		})
	}
}

func TestPublicJoinWaitlist(t *testing.T) {
	h := &PublicHandler{Waitlist: waitlist.NewService(&memWaitlistRepo{emails: map[string]bool{}})}

	join := func(email string) successResponse {
		res := httptest.NewRecorder()
		h.JoinWaitlist(res, jsonRequest(t, http.MethodPost, "/api/public/waitlist", map[string]string{"email": email, "source": "homepage"}))
		require.Equal(t, http.StatusOK, res.Code)
		return decodeBody[successResponse](t, res)
	}

	first := join("jane@example.com")
	require.True(t, first.Success)
	require.Equal(t, "Successfully joined the waitlist", first.Message)

	again := join("Jane@Example.com")
	require.True(t, again.Success)
	require.Equal(t, "You are already on the waitlist", again.Message)

	res := httptest.NewRecorder()
	h.JoinWaitlist(res, jsonRequest(t, http.MethodPost, "/api/public/waitlist", map[string]string{"email": "not-an-email"}))
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)
}
