package changelogstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS changelogs (
	id BIGSERIAL PRIMARY KEY,
	version TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	most_recent_commit TIMESTAMPTZ NOT NULL,
	sections JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS changelogs_start_date_idx ON changelogs (start_date DESC);
`

func (s *Store) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, schemaSQL)
	})
	return s.schemaErr
}

func (s *Store) appendDB(ctx context.Context, rec Record) (string, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return "", fmt.Errorf("changelogstore: ensure schema: %w", err)
	}
	sections, err := json.Marshal(rec.Sections)
	if err != nil {
		return "", fmt.Errorf("changelogstore: encode sections: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO changelogs (version, title, start_date, end_date, most_recent_commit, sections)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		rec.Version, rec.Title, rec.StartDate, rec.EndDate, rec.TimestampOfMostRecentCommit, sections,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("changelogstore: insert: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *Store) pageDB(ctx context.Context, pageSize int, cursor string) (Page, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return Page{}, fmt.Errorf("changelogstore: ensure schema: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, version, title, start_date, end_date, most_recent_commit, sections, created_at
		 FROM changelogs
		 WHERE $1 = '' OR start_date < $1
		 ORDER BY start_date DESC, id DESC
		 LIMIT $2`,
		cursor, pageSize+1,
	)
	if err != nil {
		return Page{}, fmt.Errorf("changelogstore: page query: %w", err)
	}
	defer rows.Close()

	var items []Record
	for rows.Next() {
		var (
			id       int64
			rec      Record
			sections []byte
		)
		if err := rows.Scan(&id, &rec.Version, &rec.Title, &rec.StartDate, &rec.EndDate,
			&rec.TimestampOfMostRecentCommit, &sections, &rec.CreatedAt); err != nil {
			return Page{}, fmt.Errorf("changelogstore: scan: %w", err)
		}
		rec.ID = strconv.FormatInt(id, 10)
		if err := json.Unmarshal(sections, &rec.Sections); err != nil {
			return Page{}, fmt.Errorf("changelogstore: decode sections: %w", err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}

	return buildPage(items, pageSize), nil
}

// buildPage trims the probe row used to detect a further page and
// derives the next cursor.
func buildPage(items []Record, pageSize int) Page {
	page := Page{HasMore: len(items) > pageSize}
	if page.HasMore {
		items = items[:pageSize]
	}
	page.Items = items
	if len(items) > 0 {
		page.LastTimestamp = items[len(items)-1].StartDate
	}
	return page
}
