package ranking

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/skillmatch/internal/jobs"
	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/matching"
)

const (
	ScoreStep            = "score"
	SearchStep           = "search"
	ExcludeCompaniesStep = "exclude_companies"
	MinimumMatchStep     = "minimum_match"
	SortStep             = "sort"
	LimitStep            = "limit"
)

const (
	SortMatchDesc  = "match-desc"
	SortSalaryDesc = "salary-desc"
	SortTitleAsc   = "title-asc"
)

// maxLoggedTitle caps posting titles in per-job debug logs.
const maxLoggedTitle = 40

// SortOrders lists the accepted sort orders, the first one is the default.
var SortOrders = []string{SortMatchDesc, SortSalaryDesc, SortTitleAsc}

type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

type scoreFilter struct {
	toggle
	workers int
}

// NewScore creates the step that fills the match percentage of every posting.
func NewScore() Filter {
	return &scoreFilter{}
}

func (f *scoreFilter) Name() string { return ScoreStep }

func (f *scoreFilter) Validate(cfg *Config) error {
	f.workers = runtime.NumCPU()
	if cfg != nil && cfg.Workers > 0 {
		f.workers = cfg.Workers
	}
	return nil
}

func (f *scoreFilter) Apply(ctx context.Context, deps Deps, j *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := j.Len()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(f.workers, 1))

	for _, p := range j.Items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scored := matching.ScoreJob(deps.Profile, *p)
			p.Match = scored.Match
			if deps.Logger != nil {
				deps.Logger.Debug("job scored",
					zap.String(logger.FieldJobID, p.ID),
					zap.String("title", logger.TruncateForLog(p.Title, maxLoggedTitle)),
					zap.Int("match", scored.Match),
					zap.Strings("missing_skills", scored.MissingSkills),
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return j, Step{}, fmt.Errorf("scoring jobs: %w", err)
	}

	return j, Step{Initial: initial, Dropped: 0, Left: j.Len()}, nil
}

func (f *scoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"workers": strconv.Itoa(f.workers)},
	}
}

type searchFilter struct {
	toggle
	query string
}

// NewSearch creates a step that keeps postings whose title, company or any skill contains the query.
func NewSearch() Filter {
	return &searchFilter{}
}

func (f *searchFilter) Name() string { return SearchStep }

func (f *searchFilter) Validate(cfg *Config) error {
	f.query = ""
	if cfg != nil {
		f.query = strings.ToLower(strings.TrimSpace(cfg.Query))
	}
	return nil
}

func (f *searchFilter) Apply(_ context.Context, deps Deps, j *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := j.Len()
	if f.query == "" {
		return j, Step{Initial: initial, Dropped: 0, Left: j.Len()}, nil
	}

	dropped := j.Keep(func(p *jobs.Posting) bool {
		if strings.Contains(strings.ToLower(p.Title), f.query) ||
			strings.Contains(strings.ToLower(p.Company), f.query) {
			return true
		}
		for _, s := range p.Skills {
			if strings.Contains(strings.ToLower(s), f.query) {
				return true
			}
		}
		return false
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding jobs not matching the search query",
			zap.String("query", f.query),
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", j.Len()),
		)
	}

	return j, Step{Initial: initial, Dropped: len(dropped), Left: j.Len()}, nil
}

func (f *searchFilter) Status() Status {
	details := map[string]string{}
	if f.query != "" {
		details["query"] = f.query
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type excludeCompaniesFilter struct {
	toggle
	companies []string
}

// NewExcludeCompanies creates a step that removes postings by companies configured in the config.
func NewExcludeCompanies() Filter {
	return &excludeCompaniesFilter{}
}

func (f *excludeCompaniesFilter) Name() string { return ExcludeCompaniesStep }

func (f *excludeCompaniesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg != nil {
		f.companies = append(f.companies, cfg.ExcludeCompanies...)
	}
	return nil
}

func (f *excludeCompaniesFilter) Apply(_ context.Context, deps Deps, j *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := j.Len()
	if len(f.companies) == 0 {
		return j, Step{Initial: initial, Dropped: 0, Left: j.Len()}, nil
	}

	excluded := j.Exclude(jobs.PostingCompanyField, f.companies)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding jobs by companies",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", j.Len()),
		)
	}

	return j, Step{Initial: initial, Dropped: len(excluded), Left: j.Len()}, nil
}

func (f *excludeCompaniesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type minimumMatchFilter struct {
	toggle
	minimum int
}

// NewMinimumMatch creates a step that drops postings scored below the configured threshold.
func NewMinimumMatch() Filter {
	return &minimumMatchFilter{}
}

func (f *minimumMatchFilter) Name() string { return MinimumMatchStep }

func (f *minimumMatchFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg != nil {
		f.minimum = cfg.MinimumMatch
	}
	if f.minimum < 0 || f.minimum > 100 {
		return fmt.Errorf("minimum match must be between 0 and 100, got %d", f.minimum)
	}
	return nil
}

func (f *minimumMatchFilter) Apply(_ context.Context, deps Deps, j *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := j.Len()
	if f.minimum == 0 {
		return j, Step{Initial: initial, Dropped: 0, Left: j.Len()}, nil
	}

	dropped := j.Keep(func(p *jobs.Posting) bool { return p.Match >= f.minimum })
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding jobs below the minimum match",
			zap.Int("minimum_match", f.minimum),
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", j.Len()),
		)
	}

	return j, Step{Initial: initial, Dropped: len(dropped), Left: j.Len()}, nil
}

func (f *minimumMatchFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_match": strconv.Itoa(f.minimum)},
	}
}

type sortFilter struct {
	toggle
	order string
}

// NewSort creates a step that orders postings. Ties keep their input order.
func NewSort() Filter {
	return &sortFilter{}
}

func (f *sortFilter) Name() string { return SortStep }

func (f *sortFilter) Validate(cfg *Config) error {
	f.order = SortMatchDesc
	if cfg != nil && strings.TrimSpace(cfg.SortBy) != "" {
		f.order = strings.TrimSpace(cfg.SortBy)
	}
	if !slices.Contains(SortOrders, f.order) {
		return fmt.Errorf("unknown sort order %q, expected one of %s", f.order, strings.Join(SortOrders, ", "))
	}
	return nil
}

func (f *sortFilter) Apply(_ context.Context, _ Deps, j *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := j.Len()

	var compare func(a, b *jobs.Posting) int
	switch f.order {
	case SortSalaryDesc:
		compare = func(a, b *jobs.Posting) int { return cmp.Compare(b.SalaryMax(), a.SalaryMax()) }
	case SortTitleAsc:
		compare = func(a, b *jobs.Posting) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	default:
		compare = func(a, b *jobs.Posting) int { return cmp.Compare(b.Match, a.Match) }
	}

	slices.SortStableFunc(j.Items, compare)

	return j, Step{Initial: initial, Dropped: 0, Left: j.Len()}, nil
}

func (f *sortFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"order": f.order},
	}
}

type limitFilter struct {
	toggle
	limit int
}

// NewLimit creates a step that keeps the first N postings. Zero keeps everything.
func NewLimit() Filter {
	return &limitFilter{}
}

func (f *limitFilter) Name() string { return LimitStep }

func (f *limitFilter) Validate(cfg *Config) error {
	f.limit = 0
	if cfg != nil {
		f.limit = cfg.Limit
	}
	if f.limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", f.limit)
	}
	return nil
}

func (f *limitFilter) Apply(_ context.Context, _ Deps, j *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := j.Len()
	if f.limit == 0 || initial <= f.limit {
		return j, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	j.Items = j.Items[:f.limit]

	return j, Step{Initial: initial, Dropped: initial - f.limit, Left: j.Len()}, nil
}

func (f *limitFilter) Status() Status {
	details := map[string]string{}
	if f.limit > 0 {
		details["limit"] = strconv.Itoa(f.limit)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
