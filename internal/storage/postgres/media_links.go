package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Togather-Foundation/gallery/internal/domain/media"
)

// mediaLink names a join table holding an ordered image list.
type mediaLink struct {
	table  string
	parent string
}

var (
	artworkMedia = mediaLink{table: "artwork_media", parent: "artwork_id"}
	editionMedia = mediaLink{table: "edition_media", parent: "edition_id"}
)

// replaceMediaLinks swaps the whole list for parentID. sort_order is the
// zero-based position in mediaIDs; a repeated id keeps its first position.
// Callers run it in the same transaction as the parent write.
func replaceMediaLinks(ctx context.Context, q queryer, link mediaLink, parentID uuid.UUID, mediaIDs []uuid.UUID) error {
	if _, err := q.Exec(ctx, `DELETE FROM `+link.table+` WHERE `+link.parent+` = $1`, parentID); err != nil {
		return fmt.Errorf("clear %s: %w", link.table, err)
	}
	ids := uniqueIDs(mediaIDs)
	if len(ids) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, `
		INSERT INTO `+link.table+` (`+link.parent+`, media_id, sort_order)
		SELECT $1, l.media_id, l.position - 1
		FROM unnest($2::uuid[]) WITH ORDINALITY AS l(media_id, position)`,
		parentID, ids)
	return mapError("insert "+link.table, err, nil)
}

// listMediaLinks returns the images of one parent by ascending sort_order.
func listMediaLinks(ctx context.Context, q queryer, link mediaLink, parentID uuid.UUID) ([]media.Linked, error) {
	byParent, err := mediaLinksFor(ctx, q, link, []uuid.UUID{parentID})
	if err != nil {
		return nil, err
	}
	if list, ok := byParent[parentID]; ok {
		return list, nil
	}
	return []media.Linked{}, nil
}

// mediaLinksFor loads the ordered images of many parents in one query.
func mediaLinksFor(ctx context.Context, q queryer, link mediaLink, parentIDs []uuid.UUID) (map[uuid.UUID][]media.Linked, error) {
	out := make(map[uuid.UUID][]media.Linked, len(parentIDs))
	if len(parentIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `
		SELECT l.`+link.parent+`, l.sort_order, `+mediaColumns+`
		FROM `+link.table+` l
		JOIN media m ON m.id = l.media_id
		WHERE l.`+link.parent+` = ANY($1)
		ORDER BY l.`+link.parent+`, l.sort_order ASC, m.created_at ASC`,
		parentIDs)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", link.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			parentID uuid.UUID
			linked   media.Linked
		)
		m, err := scanMediaAfter(rows, &parentID, &linked.SortOrder)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", link.table, err)
		}
		linked.Media = m
		out[parentID] = append(out[parentID], linked)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", link.table, err)
	}
	return out, nil
}

// scanMediaAfter scans leading columns into prefix, then the media columns.
func scanMediaAfter(row pgx.Row, prefix ...any) (media.Media, error) {
	var m media.Media
	dest := append(prefix,
		&m.ID, &m.Filename, &m.URL, &m.Alt, &m.Credit, &m.Folder,
		&m.ArtistID, &m.Width, &m.Height, &m.CreatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return media.Media{}, err
	}
	return m, nil
}
