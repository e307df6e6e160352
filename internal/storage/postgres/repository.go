package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

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
	"github.com/Togather-Foundation/gallery/internal/storage"
)

var _ storage.Repository = (*Repository)(nil)

// Repository implements storage.Repository on a PostgreSQL pool.
type Repository struct {
	pool *pgxpool.Pool
}

// Connect opens a pool sized by the database config and verifies it.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool cannot be nil")
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) c() conn { return conn{pool: r.pool} }

func (r *Repository) Users() users.Repository       { return &UserRepository{conn: r.c()} }
func (r *Repository) Media() media.Repository       { return &MediaRepository{conn: r.c()} }
func (r *Repository) Artists() artists.Repository   { return &ArtistRepository{conn: r.c()} }
func (r *Repository) Artworks() artworks.Repository { return &ArtworkRepository{conn: r.c()} }
func (r *Repository) Editions() editions.Repository { return &EditionRepository{conn: r.c()} }
func (r *Repository) Events() events.Repository     { return &EventRepository{conn: r.c()} }
func (r *Repository) Posts() posts.Repository       { return &PostRepository{conn: r.c()} }
func (r *Repository) Pages() pages.Repository       { return &PageRepository{conn: r.c()} }
func (r *Repository) Messages() messages.Repository { return &MessageRepository{conn: r.c()} }
func (r *Repository) Waitlist() waitlist.Repository { return &WaitlistRepository{conn: r.c()} }

// Ping reports whether the database answers, used by readiness checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// ErrNoMigrations means the schema_migrations table is empty.
var ErrNoMigrations = errors.New("no migrations applied")

// MigrationState reads the version row golang-migrate keeps in
// schema_migrations.
func (r *Repository) MigrationState(ctx context.Context) (int64, bool, error) {
	var (
		version int64
		dirty   bool
	)
	err := r.pool.QueryRow(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, ErrNoMigrations
	}
	if err != nil {
		return 0, false, fmt.Errorf("query migration state: %w", err)
	}
	return version, dirty, nil
}

// PoolStats summarizes connection pool usage for the health report.
func (r *Repository) PoolStats() map[string]any {
	stats := r.pool.Stat()
	return map[string]any{
		"max_connections":      stats.MaxConns(),
		"total_connections":    stats.TotalConns(),
		"idle_connections":     stats.IdleConns(),
		"acquired_connections": stats.AcquiredConns(),
	}
}
