package candidate

import (
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	CandidateIDField        = "ID"
	CandidateLocationField  = "Location"
	CandidateEducationField = "Education"
	CandidateSkillField     = "Skill"
)

// Candidate is one applicant record of the pool.
type Candidate struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone,omitempty"`
	Location          string    `json:"location"`
	SubmittedAt       time.Time `json:"submitted_at,omitzero"`
	Availability      []string  `json:"availability"`
	SalaryExpectation *int      `json:"salary_expectation"`
	Skills            []string  `json:"skills"`
	ExperienceYears   float64   `json:"experience_years"`
	Score             float64   `json:"score"`

	// Education is the highest education level, the value scoring and grouping use.
	Education string `json:"education_level,omitempty"`
	// EducationRecord is the submitted education object, e.g. highest_level and degrees.
	EducationRecord map[string]any   `json:"education,omitempty"`
	WorkExperiences []WorkExperience `json:"work_experiences"`

	// Prescored marks a score supplied upstream that must not be recomputed.
	Prescored bool `json:"-"`
}

// Pool is an ordered collection of candidates.
type Pool struct {
	Items []*Candidate
}

// Validate checks the identity fields required for a candidate to be eligible.
func (c *Candidate) Validate() error {
	if c == nil {
		return &InvalidCandidateError{Reason: "record is empty"}
	}
	if c.ID <= 0 {
		return &InvalidCandidateError{Name: c.Name, Reason: "id is required"}
	}
	if strings.TrimSpace(c.Name) == "" {
		return &InvalidCandidateError{ID: c.ID, Reason: "name is required"}
	}
	return nil
}

// HasSalary reports whether the candidate stated a salary expectation.
func (c *Candidate) HasSalary() bool {
	return c.SalaryExpectation != nil
}

// Salary returns the salary expectation or zero when it is absent.
func (c *Candidate) Salary() int {
	if c.SalaryExpectation == nil {
		return 0
	}
	return *c.SalaryExpectation
}

// NormalizedSkills returns lower-cased, trimmed, de-duplicated skills in insertion order.
func (c *Candidate) NormalizedSkills() []string {
	seen := make(map[string]struct{}, len(c.Skills))
	out := make([]string, 0, len(c.Skills))
	for _, skill := range c.Skills {
		s := NormalizeSkill(skill)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// PrimarySkill returns the first listed non-empty skill as written by the candidate.
func (c *Candidate) PrimarySkill() string {
	for _, skill := range c.Skills {
		if s := strings.TrimSpace(skill); s != "" {
			return s
		}
	}
	return ""
}

func (c *Candidate) GetStringField(name string) string {
	switch name {
	case CandidateIDField:
		return strconv.Itoa(c.ID)
	case CandidateLocationField:
		return strings.TrimSpace(c.Location)
	case CandidateEducationField:
		return strings.TrimSpace(c.Education)
	case CandidateSkillField:
		return c.PrimarySkill()
	default:
		return ""
	}
}

// Clone returns a deep copy of the candidate.
func (c *Candidate) Clone() *Candidate {
	cp := *c
	cp.Skills = slices.Clone(c.Skills)
	cp.Availability = slices.Clone(c.Availability)
	cp.WorkExperiences = slices.Clone(c.WorkExperiences)
	cp.EducationRecord = maps.Clone(c.EducationRecord)
	if c.SalaryExpectation != nil {
		salary := *c.SalaryExpectation
		cp.SalaryExpectation = &salary
	}
	return &cp
}

// NormalizeSkill prepares a skill for case-insensitive matching.
func NormalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (p *Pool) Len() int {
	return len(p.Items)
}

func (p *Pool) FindByID(id int) *Candidate {
	for _, c := range p.Items {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (p *Pool) IDs() []int {
	ids := make([]int, 0, len(p.Items))
	for _, c := range p.Items {
		ids = append(ids, c.ID)
	}
	return ids
}

// Clone returns a deep copy, so callers can work on a snapshot of the pool.
func (p *Pool) Clone() *Pool {
	items := make([]*Candidate, 0, len(p.Items))
	for _, c := range p.Items {
		items = append(items, c.Clone())
	}
	return &Pool{Items: items}
}

// Keep removes every candidate the predicate rejects and returns the ids of removed ones.
// Order of the kept candidates is preserved.
func (p *Pool) Keep(keep func(*Candidate) bool) []int {
	var removed []int
	kept := p.Items[:0]
	for _, c := range p.Items {
		if keep(c) {
			kept = append(kept, c)
			continue
		}
		removed = append(removed, c.ID)
	}
	clear(p.Items[len(kept):])
	p.Items = kept
	return removed
}

// SortByScore orders candidates by descending score, ties broken by ascending id.
func (p *Pool) SortByScore() {
	sort.SliceStable(p.Items, func(i, j int) bool {
		return Less(p.Items[i], p.Items[j])
	})
}

// Less reports whether a ranks before b: higher score first, then lower id.
func Less(a, b *Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ID < b.ID
}
