package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/domain/artists"
	"github.com/Togather-Foundation/gallery/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	conn
}

const eventColumns = `e.id, e.title, e.slug, e.start_at, e.end_at, e.location, e.description_md,
	e.hero_media_id, e.published, e.published_at, e.created_at, e.updated_at`

func scanEvent(row pgx.Row) (events.Event, error) {
	var e events.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Slug, &e.StartAt, &e.EndAt, &e.Location, &e.DescriptionMD,
		&e.HeroMediaID, &e.Published, &e.PublishedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return events.Event{}, err
	}
	return e, nil
}

func (r *EventRepository) List(ctx context.Context, filters events.Filters, page pagination.Page) ([]events.WithDetails, error) {
	return r.query(ctx, "list events", `
		SELECT `+eventColumns+` FROM events e
		WHERE ($1 = '' OR e.title ILIKE $1 OR e.location ILIKE $1 OR e.description_md ILIKE $1)
		ORDER BY e.start_at DESC
		LIMIT $2 OFFSET $3`,
		pagination.SearchPattern(filters.Query), page.Limit(), page.Offset())
}

func (r *EventRepository) Get(ctx context.Context, id uuid.UUID) (*events.WithDetails, error) {
	return r.one(ctx, "get event", `SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id)
}

func (r *EventRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	e, err := scanEvent(r.queryer().QueryRow(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError("lock event", err, events.ErrNotFound)
	}
	return &e, nil
}

func (r *EventRepository) Create(ctx context.Context, record events.Record) (*events.Event, error) {
	e, err := scanEvent(r.queryer().QueryRow(ctx, `
		INSERT INTO events AS e (title, slug, start_at, end_at, location, description_md,
			hero_media_id, published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+eventColumns,
		record.Title, record.Slug, record.StartAt, record.EndAt, record.Location, record.DescriptionMD,
		record.HeroMediaID, record.State.Published, record.State.PublishedAt))
	if err != nil {
		return nil, mapError("create event", err, events.ErrNotFound)
	}
	return &e, nil
}

func (r *EventRepository) Update(ctx context.Context, id uuid.UUID, record events.Record) (*events.Event, error) {
	e, err := scanEvent(r.queryer().QueryRow(ctx, `
		UPDATE events AS e SET
			title = COALESCE($2, e.title),
			slug = COALESCE($3, e.slug),
			start_at = COALESCE($4, e.start_at),
			end_at = COALESCE($5, e.end_at),
			location = COALESCE($6, e.location),
			description_md = COALESCE($7, e.description_md),
			hero_media_id = COALESCE($8, e.hero_media_id),
			published = $9,
			published_at = $10,
			updated_at = now()
		WHERE e.id = $1
		RETURNING `+eventColumns,
		id, record.Title, record.Slug, record.StartAt, record.EndAt, record.Location, record.DescriptionMD,
		record.HeroMediaID, record.State.Published, record.State.PublishedAt))
	if err != nil {
		return nil, mapError("update event", err, events.ErrNotFound)
	}
	return &e, nil
}

func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ReplaceArtists swaps the exhibiting artists of an event.
func (r *EventRepository) ReplaceArtists(ctx context.Context, id uuid.UUID, artistIDs []uuid.UUID) error {
	q := r.queryer()
	if _, err := q.Exec(ctx, `DELETE FROM event_artists WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("clear event artists: %w", err)
	}
	ids := uniqueIDs(artistIDs)
	if len(ids) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, `
		INSERT INTO event_artists (event_id, artist_id)
		SELECT $1, unnest($2::uuid[])`,
		id, ids)
	return mapError("insert event artists", err, events.ErrNotFound)
}

func (r *EventRepository) ListPublished(ctx context.Context, page pagination.Page) ([]events.WithDetails, error) {
	return r.query(ctx, "list published events", `
		SELECT `+eventColumns+` FROM events e
		WHERE e.published
		ORDER BY e.start_at DESC
		LIMIT $1 OFFSET $2`,
		page.Limit(), page.Offset())
}

func (r *EventRepository) GetPublishedBySlug(ctx context.Context, slug string) (*events.WithDetails, error) {
	return r.one(ctx, "get published event", `SELECT `+eventColumns+` FROM events e WHERE e.slug = $1 AND e.published`, slug)
}

// Current is the latest-starting published event whose run covers now.
// An open-ended event runs from its start onward.
func (r *EventRepository) Current(ctx context.Context, now time.Time) (*events.WithDetails, error) {
	return r.one(ctx, "get current event", `
		SELECT `+eventColumns+` FROM events e
		WHERE e.published AND e.start_at <= $1 AND (e.end_at IS NULL OR e.end_at >= $1)
		ORDER BY e.start_at DESC
		LIMIT 1`,
		now)
}

func (r *EventRepository) Upcoming(ctx context.Context, now time.Time, limit int) ([]events.WithDetails, error) {
	return r.query(ctx, "list upcoming events", `
		SELECT `+eventColumns+` FROM events e
		WHERE e.published AND e.start_at > $1
		ORDER BY e.start_at ASC
		LIMIT $2`,
		now, limit)
}

func (r *EventRepository) WithTx(ctx context.Context, fn func(context.Context, events.Repository) error) error {
	return r.inTx(ctx, func(c conn) error {
		return fn(ctx, &EventRepository{conn: c})
	})
}

func (r *EventRepository) one(ctx context.Context, op, sql string, args ...any) (*events.WithDetails, error) {
	list, err := r.query(ctx, op, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, events.ErrNotFound
	}
	return &list[0], nil
}

func (r *EventRepository) query(ctx context.Context, op, sql string, args ...any) ([]events.WithDetails, error) {
	q := r.queryer()
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (events.Event, error) {
		return scanEvent(row)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	heroes, err := mediaByID(ctx, q, collectIDs(list, func(e events.Event) *uuid.UUID { return e.HeroMediaID }))
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	lineups, err := artistsForEvents(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	out := make([]events.WithDetails, len(list))
	for i, e := range list {
		lineup := lineups[e.ID]
		if lineup == nil {
			lineup = []artists.WithPortrait{}
		}
		out[i] = events.WithDetails{Event: e, Hero: lookupMedia(heroes, e.HeroMediaID), Artists: lineup}
	}
	return out, nil
}

// artistsForEvents loads each event's artists, by name, with portraits.
func artistsForEvents(ctx context.Context, q queryer, eventIDs []uuid.UUID) (map[uuid.UUID][]artists.WithPortrait, error) {
	out := make(map[uuid.UUID][]artists.WithPortrait, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `
		SELECT `+artistColumns+`, ea.event_id
		FROM event_artists ea
		JOIN artists a ON a.id = ea.artist_id
		WHERE ea.event_id = ANY($1)
		ORDER BY a.name ASC`,
		eventIDs)
	if err != nil {
		return nil, fmt.Errorf("list event artists: %w", err)
	}
	type pair struct {
		eventID uuid.UUID
		artist  artists.Artist
	}
	pairs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (pair, error) {
		var p pair
		a, err := scanArtist(row, &p.eventID)
		p.artist = a
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan event artists: %w", err)
	}

	flat := make([]artists.Artist, len(pairs))
	for i, p := range pairs {
		flat[i] = p.artist
	}
	withPortrait, err := withPortraits(ctx, q, flat)
	if err != nil {
		return nil, err
	}
	for i, p := range pairs {
		out[p.eventID] = append(out[p.eventID], withPortrait[i])
	}
	return out, nil
}
