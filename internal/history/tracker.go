package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/skillmatch/internal/jobs"
)

// ErrNotFound is returned when an update or removal matches no application.
var ErrNotFound = errors.New("history: not found")

// Status is the stage of a job application.
type Status string

const (
	StatusApplied   Status = "applied"
	StatusInterview Status = "interview"
	StatusOffer     Status = "offer"
	StatusRejected  Status = "rejected"
)

// Statuses lists the valid application stages in pipeline order.
var Statuses = []Status{StatusApplied, StatusInterview, StatusOffer, StatusRejected}

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Statuses {
		if status == valid {
			return status, nil
		}
	}
	return "", fmt.Errorf("history: invalid status %q (valid: applied, interview, offer, rejected)", s)
}

// SavedJob is a bookmarked posting together with the match it had when saved.
type SavedJob struct {
	jobs.Posting
	SavedAt time.Time `json:"saved_at"`
}

// Application tracks one application to a posting.
type Application struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Location  string    `json:"location"`
	Salary    string    `json:"salary"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes"`
	URL       string    `json:"url,omitempty"`
	AppliedAt time.Time `json:"applied_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplicationFromPosting starts an application in the applied stage.
func ApplicationFromPosting(p jobs.Posting) Application {
	return Application{
		JobID:    p.ID,
		Title:    p.Title,
		Company:  p.Company,
		Location: p.Location,
		Salary:   p.Salary,
		Status:   StatusApplied,
		URL:      p.URL,
	}
}

// Exists reports whether a database file is already present at path.
func Exists(path string) bool {
	info, err := os.Stat(strings.TrimSpace(path))
	return err == nil && !info.IsDir()
}

// SaveJob bookmarks a posting. Saving an id twice keeps the first copy and reports false.
func (s *Store) SaveJob(ctx context.Context, p jobs.Posting) (bool, error) {
	if strings.TrimSpace(p.ID) == "" {
		return false, errors.New("history: job id is required")
	}

	skills, err := encodeList(p.Skills)
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_jobs (job_id, title, company, location, salary, skills, description, url, match_score, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(job_id) DO NOTHING`,
		p.ID, p.Title, p.Company, p.Location, p.Salary, skills, p.Description, p.URL, p.Match,
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return false, fmt.Errorf("history: save job: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("history: save job: %w", err)
	}
	return n == 1, nil
}

// UnsaveJob removes a bookmark and reports whether one existed.
func (s *Store) UnsaveJob(ctx context.Context, jobID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_jobs WHERE job_id = ?`, jobID)
	if err != nil {
		return false, fmt.Errorf("history: unsave job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("history: unsave job: %w", err)
	}
	return n > 0, nil
}

// IsJobSaved reports whether a posting is bookmarked.
func (s *Store) IsJobSaved(ctx context.Context, jobID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM saved_jobs WHERE job_id = ?`, jobID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("history: is job saved: %w", err)
	}
	return true, nil
}

// SavedJobs returns bookmarks in the order they were saved.
func (s *Store) SavedJobs(ctx context.Context) ([]SavedJob, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_id, title, company, location, salary, skills, description, url, match_score, saved_at
		 FROM saved_jobs ORDER BY saved_at, rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query saved jobs: %w", err)
	}
	defer rows.Close()

	saved := make([]SavedJob, 0)
	for rows.Next() {
		var (
			j             SavedJob
			skills, stamp string
		)
		if err := rows.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Salary, &skills, &j.Description, &j.URL, &j.Match, &stamp); err != nil {
			return nil, fmt.Errorf("history: scan saved job: %w", err)
		}
		if err := decodeList(skills, &j.Skills); err != nil {
			return nil, err
		}
		if j.SavedAt, err = time.Parse(timeLayout, stamp); err != nil {
			return nil, fmt.Errorf("history: saved job %s time: %w", j.ID, err)
		}
		saved = append(saved, j)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: rows: %w", err)
	}
	return saved, nil
}

// ClearSavedJobs removes every bookmark.
func (s *Store) ClearSavedJobs(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saved_jobs`); err != nil {
		return fmt.Errorf("history: clear saved jobs: %w", err)
	}
	return nil
}

// AddApplication stores a new application. The id and both timestamps are
// assigned here; an empty status means applied.
func (s *Store) AddApplication(ctx context.Context, a Application) (Application, error) {
	if strings.TrimSpace(a.JobID) == "" {
		return Application{}, errors.New("history: job id is required")
	}
	if a.Status == "" {
		a.Status = StatusApplied
	}
	status, err := ParseStatus(string(a.Status))
	if err != nil {
		return Application{}, err
	}

	now := time.Now().UTC()
	a.ID = uuid.NewString()
	a.Status = status
	a.AppliedAt = now
	a.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO applications (id, job_id, title, company, location, salary, status, notes, url, applied_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.JobID, a.Title, a.Company, a.Location, a.Salary, string(a.Status), a.Notes, a.URL,
		now.Format(timeLayout), now.Format(timeLayout),
	)
	if err != nil {
		return Application{}, fmt.Errorf("history: add application: %w", err)
	}

	return a, nil
}

// UpdateApplicationStatus moves an application to another stage.
func (s *Store) UpdateApplicationStatus(ctx context.Context, id string, status Status) error {
	valid, err := ParseStatus(string(status))
	if err != nil {
		return err
	}
	return s.updateApplication(ctx, "status", id, string(valid))
}

// UpdateApplicationNotes replaces the notes of an application.
func (s *Store) UpdateApplicationNotes(ctx context.Context, id, notes string) error {
	return s.updateApplication(ctx, "notes", id, notes)
}

// column is one of a fixed set of names, never user input.
func (s *Store) updateApplication(ctx context.Context, column, id, value string) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE applications SET %s = ?, updated_at = ? WHERE id = ?`, column),
		value, time.Now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("history: update application %s: %w", column, err)
	}
	return expectOne(res, id)
}

// RemoveApplication deletes an application.
func (s *Store) RemoveApplication(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM applications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("history: remove application: %w", err)
	}
	return expectOne(res, id)
}

// ApplicationByJobID returns the earliest application to a posting.
func (s *Store) ApplicationByJobID(ctx context.Context, jobID string) (Application, bool, error) {
	apps, err := s.queryApplications(ctx, `WHERE job_id = ? ORDER BY applied_at, rowid LIMIT 1`, jobID)
	if err != nil {
		return Application{}, false, err
	}
	if len(apps) == 0 {
		return Application{}, false, nil
	}
	return apps[0], true, nil
}

// Applications returns every application in the order they were added.
func (s *Store) Applications(ctx context.Context) ([]Application, error) {
	return s.queryApplications(ctx, `ORDER BY applied_at, rowid`)
}

// ClearApplications removes every application.
func (s *Store) ClearApplications(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM applications`); err != nil {
		return fmt.Errorf("history: clear applications: %w", err)
	}
	return nil
}

func (s *Store) queryApplications(ctx context.Context, clause string, args ...any) ([]Application, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_id, title, company, location, salary, status, notes, url, applied_at, updated_at
		 FROM applications `+clause,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query applications: %w", err)
	}
	defer rows.Close()

	apps := make([]Application, 0)
	for rows.Next() {
		var (
			a                Application
			status           string
			applied, updated string
		)
		if err := rows.Scan(&a.ID, &a.JobID, &a.Title, &a.Company, &a.Location, &a.Salary, &status, &a.Notes, &a.URL, &applied, &updated); err != nil {
			return nil, fmt.Errorf("history: scan application: %w", err)
		}
		a.Status = Status(status)
		if a.AppliedAt, err = time.Parse(timeLayout, applied); err != nil {
			return nil, fmt.Errorf("history: application %s time: %w", a.ID, err)
		}
		if a.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
			return nil, fmt.Errorf("history: application %s time: %w", a.ID, err)
		}
		apps = append(apps, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: rows: %w", err)
	}
	return apps, nil
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("history: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	return nil
}
