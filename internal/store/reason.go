package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/hire-picker/internal/candidate"
)

var strengths = []struct {
	markers []string
	label   string
}{
	{markers: []string{"llm", "prompt"}, label: "LLM / eval fit"},
	{markers: []string{"flask", "fastapi"}, label: "Backend strength"},
	{markers: []string{"react", "next.js"}, label: "Frontend/product fit"},
	{markers: []string{"payments"}, label: "Fintech/payments experience"},
}

// manualReason describes a hand-picked candidate from the attributes the dashboard shows.
func manualReason(c *candidate.Candidate) string {
	education := c.Education
	if education == "" {
		education = "-"
	}
	availability := strings.Join(c.Availability, ", ")
	if availability == "" {
		availability = "-"
	}
	salary := "-"
	if c.HasSalary() {
		salary = "$" + strconv.Itoa(c.Salary())
	}

	parts := []string{
		"Skills: " + strings.Join(c.Skills, ", "),
		fmt.Sprintf("Experience: %s yrs", strconv.FormatFloat(c.ExperienceYears, 'f', -1, 64)),
		"Education: " + education,
		"Availability: " + availability,
		"Salary expectation: " + salary,
	}

	var notes []string
	seen := map[string]struct{}{}
	for _, skill := range c.NormalizedSkills() {
		for _, s := range strengths {
			if _, ok := seen[s.label]; ok {
				continue
			}
			for _, marker := range s.markers {
				if strings.Contains(skill, marker) {
					notes = append(notes, s.label)
					seen[s.label] = struct{}{}
					break
				}
			}
		}
	}
	if len(notes) == 0 {
		notes = append(notes, "Versatile candidate")
	}

	return strings.Join(parts, "; ") + " - " + strings.Join(notes, " | ")
}
