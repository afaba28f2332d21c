package filtering

import (
	"context"
	"strconv"

	"github.com/spigell/hire-picker/internal/candidate"
)

type maxSalaryFilter struct {
	salary   int
	disabled bool
	reason   string
}

// NewMaxSalary creates a filter keeping candidates whose salary expectation is at most
// the given amount (inclusive). Candidates without a stated expectation are dropped.
func NewMaxSalary(salary *int) Filter {
	f := &maxSalaryFilter{}
	if salary == nil {
		f.Disable(notRequested)
		return f
	}
	f.salary = *salary
	return f
}

func (f *maxSalaryFilter) Name() string { return "max_salary" }

func (f *maxSalaryFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *maxSalaryFilter) IsEnabled() bool { return !f.disabled }

func (f *maxSalaryFilter) Validate() error { return nil }

func (f *maxSalaryFilter) Apply(_ context.Context, pool *candidate.Pool) (*candidate.Pool, Step, error) {
	initial := pool.Len()
	removed := pool.Keep(func(c *candidate.Candidate) bool {
		return c.HasSalary() && c.Salary() <= f.salary
	})

	return pool, Step{Initial: initial, Dropped: len(removed), Left: pool.Len()}, nil
}

func (f *maxSalaryFilter) Status() Status {
	details := map[string]string{}
	if f.IsEnabled() {
		details["max_salary"] = strconv.Itoa(f.salary)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
