package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spigell/hire-picker/internal/candidate"
)

func TestGetConfigDefaults(t *testing.T) {
	config, err := getConfig()
	if err != nil {
		t.Fatalf("getConfig returned error: %v", err)
	}

	if config.Listen != ":8000" || config.DataFile != "candidates.json" {
		t.Fatalf("unexpected server defaults: %+v", config)
	}
	if config.Selection.TeamSize != 5 || config.Selection.DiversityKey != "location" || config.Selection.MinGroups != 2 {
		t.Fatalf("unexpected selection defaults: %+v", config.Selection)
	}
	if len(config.Scoring.TargetSkills) == 0 || config.Scoring.Weights.Skills != 0.40 {
		t.Fatalf("unexpected scoring defaults: %+v", config.Scoring)
	}
	if len(config.AllowedOrigins) != 1 || config.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected allowed origins: %v", config.AllowedOrigins)
	}
}

func TestCandidateLabel(t *testing.T) {
	t.Parallel()

	c := &candidate.Candidate{
		ID:       7,
		Name:     "Ada",
		Location: "London",
		Skills:   []string{"Go", "SQL", "Python", "React", "Docker"},
		Score:    81.234,
	}

	if got, want := candidateLabel(c, false), "  7 Ada / London / Go, SQL, Python, React / 81.23"; got != want {
		t.Fatalf("unexpected label: got %q, want %q", got, want)
	}
	if got, want := candidateLabel(c, true), "* 7 Ada / London / Go, SQL, Python, React / 81.23"; got != want {
		t.Fatalf("unexpected selected label: got %q, want %q", got, want)
	}
}

func TestLoadDataset(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(`[{"name": "Ada"}]`), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	data, err := loadDataset(path)
	if err != nil {
		t.Fatalf("loadDataset returned error: %v", err)
	}
	if len(data) != 1 {
		t.Fatalf("expected one record, got %d", len(data))
	}

	if _, err := loadDataset(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing dataset")
	}
}
