package candidate

import (
	"fmt"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Submission is one raw form submission of an uploaded dataset.
type Submission struct {
	ID               int              `mapstructure:"id"`
	Name             string           `mapstructure:"name"`
	Email            string           `mapstructure:"email"`
	Phone            string           `mapstructure:"phone"`
	Location         string           `mapstructure:"location"`
	SubmittedAt      string           `mapstructure:"submitted_at"`
	WorkAvailability []string         `mapstructure:"work_availability"`
	Availability     []string         `mapstructure:"availability"`
	AnnualSalary     any              `mapstructure:"annual_salary_expectation"`
	WorkExperiences  []WorkExperience `mapstructure:"work_experiences"`
	WorkExperience   []WorkExperience `mapstructure:"work_experience"`
	Education        any              `mapstructure:"education"`
	Skills           any              `mapstructure:"skills"`
	Score            *float64         `mapstructure:"score"`
}

// WorkExperience is a single job entry of a submission.
type WorkExperience struct {
	Company     string `mapstructure:"company" json:"company,omitempty"`
	RoleName    string `mapstructure:"roleName" json:"roleName,omitempty"`
	Description string `mapstructure:"description" json:"description,omitempty"`
	StartDate   string `mapstructure:"startDate" json:"startDate,omitempty"`
	EndDate     string `mapstructure:"endDate" json:"endDate,omitempty"`
	Start       string `mapstructure:"start" json:"start,omitempty"`
	End         string `mapstructure:"end" json:"end,omitempty"`
	From        string `mapstructure:"from" json:"from,omitempty"`
	To          string `mapstructure:"to" json:"to,omitempty"`
}

var (
	salaryCleanup   = regexp.MustCompile(`[^0-9.]`)
	yearsInText     = regexp.MustCompile(`(\d+(\.\d+)?)\s*(years|yrs|year)`)
	salaryPreferred = []string{"full-time", "full_time"}
	dateLayouts     = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.999999",
		"2006-01-02",
		"2006-01",
		"01/2006",
		"January 2006",
		"Jan 2006",
		"2006",
	}
)

// DecodeSubmission converts a loosely-typed JSON object into a Submission.
func DecodeSubmission(item map[string]any) (*Submission, error) {
	var s Submission
	cfg := &mapstructure.DecoderConfig{
		Result:           &s,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(item); err != nil {
		return nil, err
	}
	return &s, nil
}

// ToCandidate builds a candidate from the submission. now closes open-ended jobs.
func (s *Submission) ToCandidate(now time.Time) *Candidate {
	availability := s.WorkAvailability
	if len(availability) == 0 {
		availability = s.Availability
	}

	works := s.WorkExperiences
	if len(works) == 0 {
		works = s.WorkExperience
	}

	c := &Candidate{
		ID:                s.ID,
		Name:              strings.TrimSpace(s.Name),
		Email:             strings.TrimSpace(s.Email),
		Phone:             strings.TrimSpace(s.Phone),
		Location:          strings.TrimSpace(s.Location),
		Availability:      slices.Clone(availability),
		SalaryExpectation: salaryFrom(s.AnnualSalary),
		Education:         educationLevel(s.Education),
		EducationRecord:   educationRecord(s.Education),
		WorkExperiences:   slices.Clone(works),
		Skills:            skillList(s.Skills),
		ExperienceYears:   ExperienceYears(works, now),
	}

	if t, ok := parseDate(s.SubmittedAt); ok {
		c.SubmittedAt = t
	} else {
		c.SubmittedAt = now
	}

	if s.Score != nil && !math.IsNaN(*s.Score) && !math.IsInf(*s.Score, 0) {
		c.Score = *s.Score
		c.Prescored = true
	}

	return c
}

// MaxSalary is the largest salary expectation accepted; larger values are treated as absent.
const MaxSalary = math.MaxInt32

// ParseSalary accepts values like "$117,548", "USD 117548" or plain numbers.
// It returns nil when no amount can be recovered or it exceeds MaxSalary.
func ParseSalary(v any) *int {
	var amount float64
	switch val := v.(type) {
	case nil:
		return nil
	case int:
		amount = float64(val)
	case int64:
		amount = float64(val)
	case float64:
		amount = val
	case string:
		cleaned := salaryCleanup.ReplaceAllString(strings.ReplaceAll(val, ",", ""), "")
		if cleaned == "" {
			return nil
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil
		}
		amount = f
	default:
		return ParseSalary(fmt.Sprintf("%v", val))
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 || amount > MaxSalary {
		return nil
	}

	salary := int(amount)
	return &salary
}

func salaryFrom(v any) *int {
	m, ok := v.(map[string]any)
	if !ok {
		return ParseSalary(v)
	}
	if len(m) == 0 {
		return nil
	}
	for _, key := range salaryPreferred {
		if v, ok := m[key]; ok && v != nil {
			return ParseSalary(v)
		}
	}

	// Fall back to the first key in lexical order so the result does not depend on map iteration.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return ParseSalary(m[keys[0]])
}

// ExperienceYears estimates total years of experience from job entries.
// Dated entries count their span (an open end means now); undated entries use an
// "N years" hint from the role or description and otherwise count as one year.
func ExperienceYears(works []WorkExperience, now time.Time) float64 {
	total := 0.0
	for _, w := range works {
		if years := w.span(now); years > 0 {
			total += years
			continue
		}

		text := strings.ToLower(w.RoleName + " " + w.Description)
		if m := yearsInText.FindStringSubmatch(text); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				total += f
				continue
			}
		}

		total += 1
	}
	return round2(total)
}

func (w WorkExperience) span(now time.Time) float64 {
	start, ok := parseDate(firstNonEmpty(w.StartDate, w.Start, w.From))
	if !ok {
		return 0
	}

	end := now
	if raw := firstNonEmpty(w.EndDate, w.End, w.To); raw != "" {
		if t, ok := parseDate(raw); ok {
			end = t
		}
	}

	days := end.Sub(start).Hours() / 24
	return max(0, round2(days/365))
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func educationLevel(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		if level, ok := val["highest_level"].(string); ok {
			return strings.TrimSpace(level)
		}
	}
	return ""
}

// educationRecord keeps the submitted education object. A bare string becomes its highest level.
func educationRecord(v any) map[string]any {
	switch val := v.(type) {
	case map[string]any:
		return maps.Clone(val)
	case string:
		if level := strings.TrimSpace(val); level != "" {
			return map[string]any{"highest_level": level}
		}
	}
	return map[string]any{}
}

func skillList(v any) []string {
	var raw []string
	switch val := v.(type) {
	case string:
		raw = strings.Split(val, ",")
	case []string:
		raw = val
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}

	skills := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
