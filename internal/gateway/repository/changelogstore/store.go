package changelogstore

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// BulletPoint is one user-facing changelog item with its source commit.
type BulletPoint struct {
	BulletPointDetails   string `json:"bulletPointDetails"`
	LinkToRelevantCommit string `json:"linkToRelevantCommit"`
}

// Section groups bullet points under an end-user-relevant heading.
type Section struct {
	Heading      string        `json:"heading"`
	BulletPoints []BulletPoint `json:"bulletPoints"`
}

// Record is a persisted changelog entry. Records are append-only and
// never mutated after creation. StartDate/EndDate are kept verbatim as
// the caller supplied them; ISO-8601 strings order lexicographically,
// which is what the cursor pagination relies on.
type Record struct {
	ID                          string    `json:"id"`
	TimestampOfMostRecentCommit time.Time `json:"timestampOfMostRecentCommit"`
	Version                     string    `json:"version,omitempty"`
	Title                       string    `json:"title,omitempty"`
	StartDate                   string    `json:"startDate"`
	EndDate                     string    `json:"endDate"`
	Sections                    []Section `json:"sections"`
	CreatedAt                   time.Time `json:"createdAt"`
}

// Page is one slice of the timestamp-ordered collection, newest
// startDate first. LastTimestamp is the cursor for the next call.
type Page struct {
	Items         []Record `json:"items"`
	HasMore       bool     `json:"hasMore"`
	LastTimestamp string   `json:"lastTimestamp"`
}

// Store persists changelog records in Postgres when a DSN is
// configured, or in memory otherwise.
type Store struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error

	mu      sync.RWMutex
	records []Record
	nextID  int64
}

// New returns an in-memory store.
func New() *Store {
	return &Store{}
}

// NewPostgres opens a Postgres-backed store via the pgx stdlib driver.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Append persists a new record and returns its store-assigned id.
func (s *Store) Append(ctx context.Context, rec Record) (string, error) {
	if s.db != nil {
		return s.appendDB(ctx, rec)
	}
	return s.appendMem(rec)
}

// PageByStartDate reads up to pageSize records older than the cursor,
// ordered by startDate descending. An empty cursor starts from the
// newest record.
func (s *Store) PageByStartDate(ctx context.Context, pageSize int, cursor string) (Page, error) {
	if pageSize <= 0 {
		pageSize = 10
	}
	if s.db != nil {
		return s.pageDB(ctx, pageSize, cursor)
	}
	return s.pageMem(pageSize, cursor), nil
}

// Close releases the underlying connection pool, if any.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
