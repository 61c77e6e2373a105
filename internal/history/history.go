// Package history keeps past match results in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/spigell/skillmatch/internal/jobs"
	"github.com/spigell/skillmatch/internal/matching"
)

// Kind tells what a record was scored against.
type Kind string

const (
	KindProfile Kind = "profile"
	KindJob     Kind = "job"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	// fixed width so that text ordering in SQLite follows time ordering
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Record is one saved match.
type Record struct {
	ID          uuid.UUID `json:"id"`
	Profile     string    `json:"profile"`
	Kind        Kind      `json:"kind"`
	Target      string    `json:"target"`
	Score       int       `json:"score"`
	Matched     []string  `json:"matched"`
	Missing     []string  `json:"missing"`
	Recommended []string  `json:"recommended,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is a history database. The caller owns it and must Close it.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history: empty database path")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("history: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}

	return &Store{db: db}, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS matches (
		id          TEXT PRIMARY KEY,
		profile     TEXT NOT NULL,
		kind        TEXT NOT NULL,
		target      TEXT NOT NULL,
		score       INTEGER NOT NULL,
		matched     TEXT NOT NULL,
		missing     TEXT NOT NULL,
		recommended TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS saved_jobs (
		job_id      TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		company     TEXT NOT NULL,
		location    TEXT NOT NULL,
		salary      TEXT NOT NULL,
		skills      TEXT NOT NULL,
		description TEXT NOT NULL,
		url         TEXT NOT NULL,
		match_score INTEGER NOT NULL,
		saved_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id         TEXT PRIMARY KEY,
		job_id     TEXT NOT NULL,
		title      TEXT NOT NULL,
		company    TEXT NOT NULL,
		location   TEXT NOT NULL,
		salary     TEXT NOT NULL,
		status     TEXT NOT NULL,
		notes      TEXT NOT NULL,
		url        TEXT NOT NULL,
		applied_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
}

func initSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a record. A missing id or timestamp is filled in and the stored record is returned.
func (s *Store) Save(ctx context.Context, r Record) (Record, error) {
	if r.Kind != KindProfile && r.Kind != KindJob {
		return Record{}, fmt.Errorf("history: invalid kind %q", r.Kind)
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC()

	matched, err := encodeList(r.Matched)
	if err != nil {
		return Record{}, err
	}
	missing, err := encodeList(r.Missing)
	if err != nil {
		return Record{}, err
	}
	recommended, err := encodeList(r.Recommended)
	if err != nil {
		return Record{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO matches (id, profile, kind, target, score, matched, missing, recommended, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.Profile, string(r.Kind), r.Target, r.Score,
		matched, missing, recommended, r.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Record{}, fmt.Errorf("history: insert: %w", err)
	}

	return r, nil
}

// List returns the most recent records first. A non-positive limit means the default of 50.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile, kind, target, score, matched, missing, recommended, created_at
		 FROM matches ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var (
			r                             Record
			id, kind, created             string
			matched, missing, recommended string
		)
		if err := rows.Scan(&id, &r.Profile, &kind, &r.Target, &r.Score, &matched, &missing, &recommended, &created); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}

		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("history: record id %q: %w", id, err)
		}
		if r.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("history: record %s time: %w", id, err)
		}
		r.Kind = Kind(kind)

		if err := decodeList(matched, &r.Matched); err != nil {
			return nil, err
		}
		if err := decodeList(missing, &r.Missing); err != nil {
			return nil, err
		}
		if err := decodeList(recommended, &r.Recommended); err != nil {
			return nil, err
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: rows: %w", err)
	}

	return records, nil
}

// FromResult builds a record for a profile evaluated against its interests.
func FromResult(profileName string, interests []string, res matching.Result) Record {
	return Record{
		Profile:     profileName,
		Kind:        KindProfile,
		Target:      strings.Join(interests, ","),
		Score:       res.Score,
		Matched:     res.MatchedSkills,
		Missing:     res.MissingSkills,
		Recommended: res.RecommendedSkills,
	}
}

// FromJobMatch builds a record for a profile scored against a posting.
func FromJobMatch(profileName string, job jobs.Posting, m matching.JobMatch) Record {
	target := job.Title
	if job.Company != "" {
		target = fmt.Sprintf("%s at %s", job.Title, job.Company)
	}

	return Record{
		Profile: profileName,
		Kind:    KindJob,
		Target:  target,
		Score:   m.Match,
		Matched: m.MatchedSkills,
		Missing: m.MissingSkills,
	}
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("history: encode list: %w", err)
	}
	return string(data), nil
}

func decodeList(raw string, dst *[]string) error {
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("history: decode list: %w", err)
	}
	return nil
}
