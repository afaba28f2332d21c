package filtering

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/spigell/hire-picker/internal/candidate"
)

type minExperienceFilter struct {
	years    float64
	disabled bool
	reason   string
}

// NewMinExperience creates a filter keeping candidates with at least the given years (inclusive).
func NewMinExperience(years *float64) Filter {
	f := &minExperienceFilter{}
	if years == nil {
		f.Disable(notRequested)
		return f
	}
	f.years = *years
	return f
}

func (f *minExperienceFilter) Name() string { return "min_experience" }

func (f *minExperienceFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minExperienceFilter) IsEnabled() bool { return !f.disabled }

func (f *minExperienceFilter) Validate() error {
	if math.IsNaN(f.years) || math.IsInf(f.years, 0) {
		return fmt.Errorf("min_experience must be a finite number")
	}
	return nil
}

func (f *minExperienceFilter) Apply(_ context.Context, pool *candidate.Pool) (*candidate.Pool, Step, error) {
	initial := pool.Len()
	removed := pool.Keep(func(c *candidate.Candidate) bool {
		return c.ExperienceYears >= f.years
	})

	return pool, Step{Initial: initial, Dropped: len(removed), Left: pool.Len()}, nil
}

func (f *minExperienceFilter) Status() Status {
	details := map[string]string{}
	if f.IsEnabled() {
		details["min_experience"] = strconv.FormatFloat(f.years, 'f', -1, 64)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
