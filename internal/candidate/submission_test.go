package candidate

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestParseSalary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  any
		expect *int
	}{
		{name: "currency string", input: "$117,548", expect: intPtr(117548)},
		{name: "currency prefix", input: "USD 90,000", expect: intPtr(90000)},
		{name: "float", input: 1234.9, expect: intPtr(1234)},
		{name: "nil", input: nil, expect: nil},
		{name: "no digits", input: "negotiable", expect: nil},
		{name: "negative", input: -5.0, expect: nil},
		{name: "huge float", input: 1e30, expect: nil},
		{name: "huge string", input: "99999999999999999999999", expect: nil},
		{name: "huge int64", input: int64(math.MaxInt64), expect: nil},
		{name: "at cap", input: float64(MaxSalary), expect: intPtr(MaxSalary)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseSalary(tt.input)
			switch {
			case tt.expect == nil && got != nil:
				t.Fatalf("expected nil, got %d", *got)
			case tt.expect != nil && got == nil:
				t.Fatalf("expected %d, got nil", *tt.expect)
			case tt.expect != nil && *got != *tt.expect:
				t.Fatalf("expected %d, got %d", *tt.expect, *got)
			}
		})
	}
}

func TestExperienceYears(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		works  []WorkExperience
		expect float64
	}{
		{
			name:   "no entries",
			expect: 0,
		},
		{
			name: "dated range",
			works: []WorkExperience{
				{StartDate: "2020-01-01", EndDate: "2022-01-01"},
			},
			expect: 2,
		},
		{
			name: "open end counts until now",
			works: []WorkExperience{
				{Start: "2024-01-01"},
			},
			expect: 1,
		},
		{
			name: "years hint in role",
			works: []WorkExperience{
				{RoleName: "Backend engineer", Description: "spent 3.5 years on payments"},
			},
			expect: 3.5,
		},
		{
			name: "undated entries count one year each",
			works: []WorkExperience{
				{RoleName: "Intern"},
				{RoleName: "Engineer"},
			},
			expect: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExperienceYears(tt.works, testNow); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestDecodeSubmission(t *testing.T) {
	item := map[string]any{
		"name":                      "  Ada Lovelace ",
		"email":                     "ada@example.com",
		"location":                  "London",
		"submitted_at":              "2025-01-28 09:02:16.000000",
		"work_availability":         []any{"full-time"},
		"annual_salary_expectation": map[string]any{"full-time": "$117,548"},
		"work_experiences": []any{
			map[string]any{"company": "Analytical Engines", "roleName": "Programmer", "startDate": "2020-01-01", "endDate": nil},
		},
		"education": map[string]any{"highest_level": "Master's Degree"},
		"skills":    []any{"Python", "SQL", ""},
	}

	s, err := DecodeSubmission(item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := s.ToCandidate(testNow)

	if c.Name != "Ada Lovelace" {
		t.Fatalf("unexpected name: %q", c.Name)
	}
	if c.SalaryExpectation == nil || *c.SalaryExpectation != 117548 {
		t.Fatalf("unexpected salary: %v", c.SalaryExpectation)
	}
	if c.Education != "Master's Degree" {
		t.Fatalf("unexpected education: %q", c.Education)
	}
	if strings.Join(c.Skills, ",") != "Python,SQL" {
		t.Fatalf("unexpected skills: %v", c.Skills)
	}
	if c.ExperienceYears != 5.01 {
		t.Fatalf("unexpected experience: %v", c.ExperienceYears)
	}
	if want := time.Date(2025, 1, 28, 9, 2, 16, 0, time.UTC); !c.SubmittedAt.Equal(want) {
		t.Fatalf("expected submitted_at %v, got %v", want, c.SubmittedAt)
	}
	if c.Prescored {
		t.Fatalf("did not expect candidate to be prescored")
	}
	if len(c.WorkExperiences) != 1 || c.WorkExperiences[0].Company != "Analytical Engines" {
		t.Fatalf("unexpected work experiences: %+v", c.WorkExperiences)
	}
	if c.EducationRecord["highest_level"] != "Master's Degree" {
		t.Fatalf("unexpected education record: %v", c.EducationRecord)
	}

	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal candidate: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal candidate: %v", err)
	}
	education, ok := payload["education"].(map[string]any)
	if !ok || education["highest_level"] != "Master's Degree" {
		t.Fatalf("education object missing from payload: %s", raw)
	}
	works, ok := payload["work_experiences"].([]any)
	if !ok || len(works) != 1 || works[0].(map[string]any)["roleName"] != "Programmer" {
		t.Fatalf("work experiences missing from payload: %s", raw)
	}
}

func TestDecodeSubmissionCommaSkillsAndScore(t *testing.T) {
	s, err := DecodeSubmission(map[string]any{
		"id":     float64(12),
		"name":   "Grace",
		"skills": "Go, Docker ,",
		"score":  81.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := s.ToCandidate(testNow)
	if c.ID != 12 {
		t.Fatalf("expected id 12, got %d", c.ID)
	}
	if strings.Join(c.Skills, "|") != "Go|Docker" {
		t.Fatalf("unexpected skills: %v", c.Skills)
	}
	if !c.Prescored || c.Score != 81.5 {
		t.Fatalf("expected upstream score to be kept, got %v (prescored %v)", c.Score, c.Prescored)
	}
	if c.SalaryExpectation != nil {
		t.Fatalf("expected no salary, got %d", *c.SalaryExpectation)
	}
}

func TestDatasetCandidatesAssignsIDs(t *testing.T) {
	data := Dataset{
		{"name": "first"},
		{"id": 10, "name": "explicit"},
		{"name": "second"},
		{"id": 10, "name": "duplicate"},
		{"id": "not-a-number", "name": "broken"},
	}

	pool, errs := data.Candidates(testNow)

	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	for _, err := range errs {
		var invalid *InvalidCandidateError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidCandidateError, got %T", err)
		}
	}

	got := pool.IDs()
	want := []int{11, 10, 12}
	if len(got) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, got)
		}
	}
}

func intPtr(v int) *int {
	return &v
}

func TestDatasetDropsOverflowingSalary(t *testing.T) {
	t.Parallel()

	data := Dataset{
		{"name": "Ada", "annual_salary_expectation": map[string]any{"full-time": 1e30}},
		{"name": "Grace", "annual_salary_expectation": map[string]any{"full-time": "99999999999999999999999"}},
	}

	pool, errs := data.Candidates(testNow)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	for _, c := range pool.Items {
		if c.HasSalary() {
			t.Fatalf("candidate %d kept an overflowing salary %d", c.ID, c.Salary())
		}
	}
}
