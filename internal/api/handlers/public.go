package handlers

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/api/problem"
	"github.com/Togather-Foundation/gallery/internal/domain/artists"
	"github.com/Togather-Foundation/gallery/internal/domain/artworks"
	"github.com/Togather-Foundation/gallery/internal/domain/editions"
	"github.com/Togather-Foundation/gallery/internal/domain/events"
	"github.com/Togather-Foundation/gallery/internal/domain/messages"
	"github.com/Togather-Foundation/gallery/internal/domain/pages"
	"github.com/Togather-Foundation/gallery/internal/domain/posts"
	"github.com/Togather-Foundation/gallery/internal/domain/waitlist"
	"github.com/Togather-Foundation/gallery/internal/metrics"
	"github.com/Togather-Foundation/gallery/internal/sanitize"
	"github.com/Togather-Foundation/gallery/internal/validation"
)

const (
	homeUpcomingEvents  = 3
	homeFeaturedArtists = 4
	homeLatestPosts     = 3
)

// PublicHandler serves the unauthenticated site. Only published rows are
// visible and detail routes are keyed by slug.
type PublicHandler struct {
	Artists  *artists.Service
	Artworks *artworks.Service
	Editions *editions.Service
	Events   *events.Service
	Posts    *posts.Service
	Pages    *pages.Service
	Messages *messages.Service
	Waitlist *waitlist.Service
}

type homeResponse struct {
	CurrentEvent    *events.WithDetails    `json:"current_event"`
	UpcomingEvents  []events.WithDetails   `json:"upcoming_events"`
	FeaturedArtists []artists.WithPortrait `json:"featured_artists"`
	LatestPosts     []posts.WithHero       `json:"latest_posts"`
}

// Home gathers the landing page sections concurrently.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	var resp homeResponse
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		current, err := h.Events.Current(ctx)
		resp.CurrentEvent = current
		return err
	})
	g.Go(func() error {
		upcoming, err := h.Events.Upcoming(ctx, homeUpcomingEvents)
		resp.UpcomingEvents = upcoming
		return err
	})
	g.Go(func() error {
		featured, err := h.Artists.ListFeatured(ctx, homeFeaturedArtists)
		resp.FeaturedArtists = featured
		return err
	})
	g.Go(func() error {
		latest, err := h.Posts.ListPublished(ctx, pagination.Page{Page: 1, PerPage: homeLatestPosts})
		resp.LatestPosts = latest
		return err
	})
	if err := g.Wait(); err != nil {
		problem.Internal(w, r, err)
		return
	}
	resp.UpcomingEvents = nonNil(resp.UpcomingEvents)
	resp.FeaturedArtists = nonNil(resp.FeaturedArtists)
	resp.LatestPosts = nonNil(resp.LatestPosts)
	writeJSON(w, http.StatusOK, resp)
}

func (h *PublicHandler) ListArtists(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r, pagination.DefaultPerPage, pagination.MaxPerPage)
	items, err := h.Artists.ListPublished(r.Context(), page)
	if err != nil {
		problem.Internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

type artistDetailResponse struct {
	artists.WithPortrait
	Artworks []artworks.WithMedia `json:"artworks"`
	Editions []editions.WithMedia `json:"editions"`
}

func (h *PublicHandler) GetArtist(w http.ResponseWriter, r *http.Request) {
	artist, err := h.Artists.GetPublishedBySlug(r.Context(), r.PathValue("slug"))
	if errors.Is(err, artists.ErrNotFound) {
		problem.NotFound(w, r, "Artist not found")
		return
	}
	if err != nil {
		problem.Internal(w, r, err)
		return
	}

	resp := artistDetailResponse{WithPortrait: *artist}
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		items, err := h.Artworks.ListPublishedByArtist(ctx, artist.ID)
		resp.Artworks = items
		return err
	})
	g.Go(func() error {
		items, err := h.Editions.ListPublishedByArtist(ctx, artist.ID)
		resp.Editions = items
		return err
	})
	if err := g.Wait(); err != nil {
		problem.Internal(w, r, err)
		return
	}
	resp.Artworks = nonNil(resp.Artworks)
	resp.Editions = nonNil(resp.Editions)
	writeJSON(w, http.StatusOK, resp)
}

func (h *PublicHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r, pagination.DefaultPerPage, pagination.MaxPerPage)
	items, err := h.Events.ListPublished(r.Context(), page)
	if err != nil {
		problem.Internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *PublicHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.Events.GetPublishedBySlug(r.Context(), r.PathValue("slug"))
	if errors.Is(err, events.ErrNotFound) {
		problem.NotFound(w, r, "Event not found")
		return
	}
	if err != nil {
		problem.Internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *PublicHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r, pagination.DefaultPerPage, pagination.MaxPerPage)
	items, err := h.Posts.ListPublished(r.Context(), page)
	if err != nil {
		problem.Internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *PublicHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.Posts.GetPublishedBySlug(r.Context(), r.PathValue("slug"))
	if errors.Is(err, posts.ErrNotFound) {
		problem.NotFound(w, r, "Post not found")
		return
	}
	if err != nil {
		problem.Internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PublicHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.Pages.Get(r.Context(), r.PathValue("key"))
	if errors.Is(err, pages.ErrNotFound) {
		problem.NotFound(w, r, "Page not found")
		return
	}
	if err != nil {
		problem.Internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type contactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"min=10,max=5000"`
}

func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = sanitize.Text(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = sanitize.Text(req.Message)
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	msg, err := h.Messages.Create(r.Context(), messages.CreateParams{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	metrics.ContactMessages.Inc()
	writeJSON(w, http.StatusCreated, msg)
}

type waitlistRequest struct {
	Email  string  `json:"email" validate:"required,email"`
	Source *string `json:"source" validate:"omitnil,max=100"`
}

func (h *PublicHandler) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	var req waitlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Source = sanitize.TextPtr(req.Source)
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	joined, err := h.Waitlist.Join(r.Context(), req.Email, req.Source)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !joined {
		metrics.WaitlistSignups.WithLabelValues("duplicate").Inc()
		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "You are already on the waitlist"})
		return
	}
	metrics.WaitlistSignups.WithLabelValues("joined").Inc()
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Successfully joined the waitlist"})
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
