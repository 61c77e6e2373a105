// Package ranking runs a loaded job list through an ordered set of steps:
// scoring against the candidate, narrowing and ordering.
package ranking

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/jobs"
	"github.com/spigell/skillmatch/internal/profile"
)

// Filter represents a single step applied to the job list.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, j *jobs.Jobs) (*jobs.Jobs, Step, error)
}

// Deps aggregates dependencies shared across all steps.
type Deps struct {
	Logger  *zap.Logger
	Profile *profile.Profile
}

// Step describes the result of executing a step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains settings consumed by the steps.
type Config struct {
	Query            string
	SortBy           string
	MinimumMatch     int
	ExcludeCompanies []string
	Limit            int
	Workers          int
}

// Status represents runtime information about a step.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Default returns every step in the order they are meant to run.
func Default() []Filter {
	return []Filter{
		NewScore(),
		NewSearch(),
		NewExcludeCompanies(),
		NewMinimumMatch(),
		NewSort(),
		NewLimit(),
	}
}

// DisableByName marks a step with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates every enabled step and then applies them in order.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, j *jobs.Jobs) (*jobs.Jobs, error) {
	if j == nil {
		j = &jobs.Jobs{}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("ranking step disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, j)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("ranking step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		j = next
	}

	return j, nil
}

// Describe returns status entries for the provided steps.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
