package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/gallery/internal/api/handlers"
	"github.com/Togather-Foundation/gallery/internal/api/middleware"
	"github.com/Togather-Foundation/gallery/internal/api/problem"
	"github.com/Togather-Foundation/gallery/internal/audit"
	"github.com/Togather-Foundation/gallery/internal/auth"
	"github.com/Togather-Foundation/gallery/internal/config"
	"github.com/Togather-Foundation/gallery/internal/domain/artists"
	"github.com/Togather-Foundation/gallery/internal/domain/artworks"
	"github.com/Togather-Foundation/gallery/internal/domain/editions"
	"github.com/Togather-Foundation/gallery/internal/domain/events"
	"github.com/Togather-Foundation/gallery/internal/domain/media"
	"github.com/Togather-Foundation/gallery/internal/domain/messages"
	"github.com/Togather-Foundation/gallery/internal/domain/pages"
	"github.com/Togather-Foundation/gallery/internal/domain/posts"
	"github.com/Togather-Foundation/gallery/internal/domain/users"
	"github.com/Togather-Foundation/gallery/internal/domain/waitlist"
	"github.com/Togather-Foundation/gallery/internal/metrics"
	"github.com/Togather-Foundation/gallery/internal/storage"
	"github.com/Togather-Foundation/gallery/web"
)

// BuildInfo is stamped into the binary with -ldflags.
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildDate string
}

// Dependencies are the long-lived collaborators the router wires into
// services and handlers.
type Dependencies struct {
	Config   config.Config
	Logger   zerolog.Logger
	Repo     storage.Repository
	Probe    handlers.DatabaseProbe
	Store    media.ObjectStore
	Notifier messages.Notifier
	Tokens   *auth.JWTManager
	Limiter  *middleware.RateLimiter
	Build    BuildInfo
}

func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	repo := deps.Repo
	auditLogger := audit.NewLogger(logger)

	usersService := users.NewService(repo.Users(), logger)
	artistsService := artists.NewService(repo.Artists(), logger)
	artworksService := artworks.NewService(repo.Artworks(), logger)
	editionsService := editions.NewService(repo.Editions(), logger)
	eventsService := events.NewService(repo.Events(), logger)
	postsService := posts.NewService(repo.Posts(), logger)
	pagesService := pages.NewService(repo.Pages())
	mediaService := media.NewService(repo.Media(), deps.Store, logger)
	messagesService := messages.NewService(repo.Messages(), deps.Notifier, logger)
	waitlistService := waitlist.NewService(repo.Waitlist())

	authHandler := handlers.NewAuthHandler(usersService, deps.Tokens, auditLogger)
	publicHandler := &handlers.PublicHandler{
		Artists:  artistsService,
		Artworks: artworksService,
		Editions: editionsService,
		Events:   eventsService,
		Posts:    postsService,
		Pages:    pagesService,
		Messages: messagesService,
		Waitlist: waitlistService,
	}
	artistsHandler := handlers.NewAdminArtistsHandler(artistsService, auditLogger)
	artworksHandler := handlers.NewAdminArtworksHandler(artworksService, auditLogger)
	editionsHandler := handlers.NewAdminEditionsHandler(editionsService, auditLogger)
	eventsHandler := handlers.NewAdminEventsHandler(eventsService, auditLogger)
	postsHandler := handlers.NewAdminPostsHandler(postsService, auditLogger)
	pagesHandler := handlers.NewAdminPagesHandler(pagesService, auditLogger)
	mediaHandler := handlers.NewAdminMediaHandler(mediaService, auditLogger)
	inboxHandler := handlers.NewAdminInboxHandler(messagesService, waitlistService, auditLogger)
	health := handlers.NewHealthChecker(deps.Probe, deps.Build.Version, deps.Build.GitCommit)

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(config.RateLimitConfig{})
	}
	jsonBody := middleware.RequestSize(middleware.JSONMaxBodySize)
	public := func(h http.HandlerFunc) http.Handler {
		return limiter.Limit(middleware.TierPublic)(jsonBody(h))
	}
	adminChain := func(h http.Handler) http.Handler {
		return middleware.RequireAdmin(deps.Tokens)(limiter.Limit(middleware.TierAdmin)(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return adminChain(jsonBody(h))
	}

	mux := http.NewServeMux()

	mux.Handle("/healthz", methodMux(map[string]http.Handler{http.MethodGet: http.HandlerFunc(health.Healthz)}))
	mux.Handle("/readyz", methodMux(map[string]http.Handler{http.MethodGet: http.HandlerFunc(health.Readyz)}))
	mux.Handle("/health", methodMux(map[string]http.Handler{http.MethodGet: http.HandlerFunc(health.Health)}))
	mux.Handle("/metrics", methodMux(map[string]http.Handler{http.MethodGet: metrics.Handler()}))
	mux.Handle("/api/version", VersionHandler(deps.Build))
	mux.Handle("/robots.txt", methodMux(map[string]http.Handler{
		http.MethodGet:  web.RobotsTxtHandler(),
		http.MethodHead: web.RobotsTxtHandler(),
	}))

	mux.Handle("/api/auth/login", methodMux(map[string]http.Handler{
		http.MethodPost: limiter.Limit(middleware.TierLogin)(jsonBody(http.HandlerFunc(authHandler.Login))),
	}))
	mux.Handle("/api/auth/me", methodMux(map[string]http.Handler{
		http.MethodGet: middleware.RequireAuthenticated(deps.Tokens)(http.HandlerFunc(authHandler.Me)),
	}))

	mux.Handle("/api/public/home", methodMux(map[string]http.Handler{http.MethodGet: public(publicHandler.Home)}))
	mux.Handle("/api/public/artists", methodMux(map[string]http.Handler{http.MethodGet: public(publicHandler.ListArtists)}))
	mux.Handle("/api/public/artists/{slug}", methodMux(map[string]http.Handler{http.MethodGet: public(publicHandler.GetArtist)}))
	mux.Handle("/api/public/events", methodMux(map[string]http.Handler{http.MethodGet: public(publicHandler.ListEvents)}))
	mux.Handle("/api/public/events/{slug}", methodMux(map[string]http.Handler{http.MethodGet: public(publicHandler.GetEvent)}))
	mux.Handle("/api/public/posts", methodMux(map[string]http.Handler{http.MethodGet: public(publicHandler.ListPosts)}))
	mux.Handle("/api/public/posts/{slug}", methodMux(map[string]http.Handler{http.MethodGet: public(publicHandler.GetPost)}))
	mux.Handle("/api/public/pages/{key}", methodMux(map[string]http.Handler{http.MethodGet: public(publicHandler.GetPage)}))
	mux.Handle("/api/public/contact", methodMux(map[string]http.Handler{http.MethodPost: public(publicHandler.Contact)}))
	mux.Handle("/api/public/waitlist", methodMux(map[string]http.Handler{http.MethodPost: public(publicHandler.JoinWaitlist)}))

	mux.Handle("/api/admin/media", methodMux(map[string]http.Handler{
		http.MethodGet:  admin(mediaHandler.List),
		http.MethodPost: adminChain(middleware.RequestSize(middleware.UploadMaxBodySize)(http.HandlerFunc(mediaHandler.Upload))),
	}))
	mux.Handle("/api/admin/media/folders", methodMux(map[string]http.Handler{http.MethodGet: admin(mediaHandler.Folders)}))
	mux.Handle("/api/admin/media/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    admin(mediaHandler.Get),
		http.MethodPut:    admin(mediaHandler.Update),
		http.MethodDelete: admin(mediaHandler.Delete),
	}))

	crud := []struct {
		path    string
		list    http.HandlerFunc
		create  http.HandlerFunc
		get     http.HandlerFunc
		update  http.HandlerFunc
		remove  http.HandlerFunc
		publish http.HandlerFunc
	}{
		{"artists", artistsHandler.List, artistsHandler.Create, artistsHandler.Get, artistsHandler.Update, artistsHandler.Delete, artistsHandler.TogglePublish},
		{"artworks", artworksHandler.List, artworksHandler.Create, artworksHandler.Get, artworksHandler.Update, artworksHandler.Delete, artworksHandler.TogglePublish},
		{"editions", editionsHandler.List, editionsHandler.Create, editionsHandler.Get, editionsHandler.Update, editionsHandler.Delete, editionsHandler.TogglePublish},
		{"events", eventsHandler.List, eventsHandler.Create, eventsHandler.Get, eventsHandler.Update, eventsHandler.Delete, eventsHandler.TogglePublish},
		{"posts", postsHandler.List, postsHandler.Create, postsHandler.Get, postsHandler.Update, postsHandler.Delete, postsHandler.TogglePublish},
	}
	for _, c := range crud {
		base := "/api/admin/" + c.path
		mux.Handle(base, methodMux(map[string]http.Handler{
			http.MethodGet:  admin(c.list),
			http.MethodPost: admin(c.create),
		}))
		mux.Handle(base+"/{id}", methodMux(map[string]http.Handler{
			http.MethodGet:    admin(c.get),
			http.MethodPut:    admin(c.update),
			http.MethodDelete: admin(c.remove),
		}))
		mux.Handle(base+"/{id}/publish", methodMux(map[string]http.Handler{http.MethodPost: admin(c.publish)}))
	}

	mux.Handle("/api/admin/pages", methodMux(map[string]http.Handler{http.MethodGet: admin(pagesHandler.List)}))
	mux.Handle("/api/admin/pages/{key}", methodMux(map[string]http.Handler{
		http.MethodGet: admin(pagesHandler.Get),
		http.MethodPut: admin(pagesHandler.Update),
	}))
	mux.Handle("/api/admin/messages", methodMux(map[string]http.Handler{http.MethodGet: admin(inboxHandler.ListMessages)}))
	mux.Handle("/api/admin/messages/{id}/status", methodMux(map[string]http.Handler{http.MethodPut: admin(inboxHandler.UpdateMessageStatus)}))
	mux.Handle("/api/admin/waitlist", methodMux(map[string]http.Handler{http.MethodGet: admin(inboxHandler.ListWaitlist)}))
	mux.Handle("/api/admin/waitlist/export", methodMux(map[string]http.Handler{http.MethodGet: admin(inboxHandler.ExportWaitlist)}))

	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		problem.NotFound(w, r, "Not found")
	}))

	var handler http.Handler = metrics.HTTPMiddleware(mux)
	handler = middleware.Tracing(handler)
	handler = middleware.CORS(deps.Config.CORS, logger)(handler)
	handler = middleware.SecurityHeaders(deps.Config.Environment == "production")(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

// methodMux dispatches on method and answers 405 with an Allow header for
// everything else.
func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
