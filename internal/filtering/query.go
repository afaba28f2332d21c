package filtering

import (
	"context"
	"strings"

	"github.com/spigell/hire-picker/internal/candidate"
)

const notRequested = "not requested"

// Query holds the list filters requested by a caller. Zero values mean "no filter".
type Query struct {
	Text          string
	MinExperience *float64
	MaxSalary     *int
}

// Steps builds the filter chain for the query. Steps for absent values are kept but disabled.
func (q Query) Steps() []Filter {
	return []Filter{
		NewText(q.Text),
		NewMinExperience(q.MinExperience),
		NewMaxSalary(q.MaxSalary),
	}
}

type textFilter struct {
	text     string
	disabled bool
	reason   string
}

// NewText creates a filter keeping candidates whose name or any skill contains text,
// case-insensitively.
func NewText(text string) Filter {
	f := &textFilter{text: strings.ToLower(strings.TrimSpace(text))}
	if f.text == "" {
		f.Disable(notRequested)
	}
	return f
}

func (f *textFilter) Name() string { return "query" }

func (f *textFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *textFilter) IsEnabled() bool { return !f.disabled }

func (f *textFilter) Validate() error { return nil }

func (f *textFilter) Apply(_ context.Context, pool *candidate.Pool) (*candidate.Pool, Step, error) {
	initial := pool.Len()
	removed := pool.Keep(func(c *candidate.Candidate) bool {
		if strings.Contains(strings.ToLower(c.Name), f.text) {
			return true
		}
		for _, skill := range c.Skills {
			if strings.Contains(strings.ToLower(skill), f.text) {
				return true
			}
		}
		return false
	})

	return pool, Step{Initial: initial, Dropped: len(removed), Left: pool.Len()}, nil
}

func (f *textFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: map[string]string{"q": f.text}}
}
