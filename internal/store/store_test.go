package store

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hire-picker/internal/candidate"
	"github.com/spigell/hire-picker/internal/filtering"
	"github.com/spigell/hire-picker/internal/scoring"
	"github.com/spigell/hire-picker/internal/selection"
)

func newStore(t *testing.T, dataFile string) *Store {
	t.Helper()

	s, err := New(Options{
		Scoring:   scoring.DefaultConfig(),
		Selection: selection.DefaultConfig(),
		DataFile:  dataFile,
	}, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return s
}

// scoredPool builds candidates with fixed upstream scores across two locations.
func scoredPool(n int) *candidate.Pool {
	pool := &candidate.Pool{}
	for i := 1; i <= n; i++ {
		location := "Berlin"
		if i%2 == 0 {
			location = "Lisbon"
		}
		pool.Items = append(pool.Items, &candidate.Candidate{
			ID:        i,
			Name:      "Candidate " + string(rune('A'+i-1)),
			Location:  location,
			Skills:    []string{"Go"},
			Score:     float64(100 - i),
			Prescored: true,
		})
	}
	return pool
}

// offsetPool is scoredPool with every id shifted by offset.
func offsetPool(n, offset int) *candidate.Pool {
	pool := scoredPool(n)
	for _, c := range pool.Items {
		c.ID += offset
	}
	return pool
}

func selectedIDs(entries []Entry) []int {
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.Candidate.ID)
	}
	return ids
}

func TestSelectIsBounded(t *testing.T) {
	t.Parallel()

	s := newStore(t, "")
	s.Replace(scoredPool(7))

	for id := 1; id <= 5; id++ {
		if err := s.Select(id); err != nil {
			t.Fatalf("Select(%d) returned error: %v", id, err)
		}
	}

	var full *SelectionFullError
	if err := s.Select(6); !errors.As(err, &full) || full.Limit != 5 {
		t.Fatalf("expected SelectionFullError with limit 5, got %v", err)
	}

	if err := s.Select(3); err != nil {
		t.Fatalf("re-selecting a present id should be a no-op, got %v", err)
	}

	if got := selectedIDs(s.Selected()); !slices.Equal(got, []int{1, 2, 3, 4, 5}) {
		t.Fatalf("unexpected selection: %v", got)
	}
}

func TestSelectUnknownCandidate(t *testing.T) {
	t.Parallel()

	s := newStore(t, "")
	s.Replace(scoredPool(3))

	if err := s.Select(42); !errors.Is(err, candidate.ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}
}

func TestDeselectIsIdempotent(t *testing.T) {
	t.Parallel()

	s := newStore(t, "")
	s.Replace(scoredPool(3))

	if err := s.Select(2); err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	s.Deselect(2)
	s.Deselect(2)
	s.Deselect(99)

	if _, selected := s.Stats(); selected != 0 {
		t.Fatalf("expected empty selection, got %d", selected)
	}
}

func TestAutoSelectOverwritesSelection(t *testing.T) {
	t.Parallel()

	s := newStore(t, "")
	s.Replace(scoredPool(8))

	if err := s.Select(8); err != nil {
		t.Fatalf("Select returned error: %v", err)
	}

	result, err := s.AutoSelect()
	if err != nil {
		t.Fatalf("AutoSelect returned error: %v", err)
	}
	if !slices.Equal(result.IDs(), []int{1, 2, 3, 4, 5}) {
		t.Fatalf("unexpected auto-select ids: %v", result.IDs())
	}

	entries := s.Selected()
	if got := selectedIDs(entries); !slices.Equal(got, result.IDs()) {
		t.Fatalf("selection not overwritten: %v", got)
	}
	if entries[0].Reason != "highest score in Berlin" {
		t.Fatalf("unexpected reason: %q", entries[0].Reason)
	}
}

func TestAutoSelectFailureKeepsSelection(t *testing.T) {
	t.Parallel()

	s := newStore(t, "")
	s.Replace(scoredPool(4))

	for _, id := range []int{1, 3} {
		if err := s.Select(id); err != nil {
			t.Fatalf("Select(%d) returned error: %v", id, err)
		}
	}

	_, err := s.AutoSelect()
	var insufficient *selection.InsufficientCandidatesError
	if !errors.As(err, &insufficient) || insufficient.Have != 4 || insufficient.Need != 5 {
		t.Fatalf("expected InsufficientCandidatesError{4,5}, got %v", err)
	}

	if got := selectedIDs(s.Selected()); !slices.Equal(got, []int{1, 3}) {
		t.Fatalf("selection changed after failure: %v", got)
	}
}

func TestReplaceClearsSelectionAndSkipsInvalid(t *testing.T) {
	t.Parallel()

	s := newStore(t, "")
	s.Replace(scoredPool(5))
	if err := s.Select(1); err != nil {
		t.Fatalf("Select returned error: %v", err)
	}

	pool := scoredPool(3)
	pool.Items = append(pool.Items, &candidate.Candidate{ID: 10, Name: "  "})

	accepted, errs := s.Replace(pool)
	if accepted != 3 || len(errs) != 1 || !candidate.IsInvalid(errs[0]) {
		t.Fatalf("unexpected replace result: accepted=%d errs=%v", accepted, errs)
	}

	candidates, selected := s.Stats()
	if candidates != 3 || selected != 0 {
		t.Fatalf("unexpected stats: candidates=%d selected=%d", candidates, selected)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	t.Parallel()

	s := newStore(t, "")
	pool := scoredPool(4)
	pool.Items[3].Skills = []string{"Rust"}
	pool.Items[0].Score = 10
	s.Replace(pool)

	got, err := s.List(context.Background(), filtering.Query{Text: "go"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	ids := make([]int, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	if !slices.Equal(ids, []int{2, 3, 1}) {
		t.Fatalf("unexpected ids: %v", ids)
	}

	got[0].Name = "mutated"
	if s.Snapshot().FindByID(2).Name == "mutated" {
		t.Fatalf("List must return copies")
	}
}

func TestUploadPersistsAndSeeds(t *testing.T) {
	t.Parallel()

	dataFile := filepath.Join(t.TempDir(), "candidates.json")
	s := newStore(t, dataFile)

	data := candidate.Dataset{
		{"name": "Ada", "location": "London", "skills": []any{"Python"}},
		{"name": "Grace", "location": "New York", "skills": "COBOL, Fortran"},
		{"location": "nowhere"},
	}

	accepted, errs, err := s.Upload(data)
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if accepted != 2 || len(errs) != 1 {
		t.Fatalf("unexpected upload result: accepted=%d errs=%v", accepted, errs)
	}

	reloaded := newStore(t, dataFile)
	accepted, _, err = reloaded.Seed()
	if err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}
	if accepted != 2 {
		t.Fatalf("expected 2 seeded candidates, got %d", accepted)
	}
}

func TestConcurrentSelectNeverExceedsLimit(t *testing.T) {
	t.Parallel()

	s := newStore(t, "")
	s.Replace(scoredPool(20))

	var wg sync.WaitGroup
	for id := 1; id <= 20; id++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Select(id)
		}()
	}
	wg.Wait()

	if _, selected := s.Stats(); selected != 5 {
		t.Fatalf("expected exactly 5 selected, got %d", selected)
	}
}

func TestManualReason(t *testing.T) {
	t.Parallel()

	salary := 90000
	c := &candidate.Candidate{
		ID:                1,
		Name:              "Ada",
		Skills:            []string{"React", "FastAPI", "react native"},
		ExperienceYears:   4.5,
		Education:         "Master's Degree",
		Availability:      []string{"full-time"},
		SalaryExpectation: &salary,
	}

	want := "Skills: React, FastAPI, react native; Experience: 4.5 yrs; Education: Master's Degree; " +
		"Availability: full-time; Salary expectation: $90000 - Frontend/product fit | Backend strength"
	if got := manualReason(c); got != want {
		t.Fatalf("unexpected reason:\n got %q\nwant %q", got, want)
	}

	bare := manualReason(&candidate.Candidate{ID: 2, Name: "Linus"})
	if !strings.HasSuffix(bare, "Salary expectation: - - Versatile candidate") {
		t.Fatalf("unexpected reason for bare candidate: %q", bare)
	}
}

func TestToggle(t *testing.T) {
	t.Parallel()

	s := newStore(t, "")
	s.Replace(scoredPool(6))

	on, err := s.Toggle(4)
	if err != nil || !on {
		t.Fatalf("expected candidate 4 to be selected, got on=%v err=%v", on, err)
	}

	on, err = s.Toggle(4)
	if err != nil || on {
		t.Fatalf("expected candidate 4 to be deselected, got on=%v err=%v", on, err)
	}

	if _, err := s.Toggle(99); !errors.Is(err, candidate.ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}
}

func TestAutoSelectIsDeterministic(t *testing.T) {
	t.Parallel()

	s := newStore(t, "")
	s.Replace(scoredPool(12))

	first, err := s.AutoSelect()
	if err != nil {
		t.Fatalf("AutoSelect returned error: %v", err)
	}
	second, err := s.AutoSelect()
	if err != nil {
		t.Fatalf("AutoSelect returned error: %v", err)
	}

	for i := range first.Picks {
		a, b := first.Picks[i], second.Picks[i]
		if a.Candidate.ID != b.Candidate.ID || a.Reason != b.Reason || a.Candidate.Score != b.Candidate.Score {
			t.Fatalf("pick %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestUploadFailureKeepsPool(t *testing.T) {
	t.Parallel()

	s := newStore(t, filepath.Join(t.TempDir(), "missing", "candidates.json"))
	s.Replace(scoredPool(5))

	_, _, err := s.Upload(candidate.Dataset{{"name": "Ada"}})
	if err == nil {
		t.Fatalf("expected persist error")
	}
	if candidates, _ := s.Stats(); candidates != 5 {
		t.Fatalf("pool must be unchanged after a failed upload, got %d candidates", candidates)
	}
}

func TestReuploadReusesCachedScores(t *testing.T) {
	t.Parallel()

	s := newStore(t, filepath.Join(t.TempDir(), "candidates.json"))
	data := candidate.Dataset{
		{"name": "Ada", "location": "London", "skills": []any{"Python"}},
		{"name": "Grace", "location": "New York", "skills": "COBOL, Fortran"},
		{"name": "Linus", "location": "Helsinki", "skills": []any{"C"}},
	}

	if _, _, err := s.Upload(data); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	first := s.Snapshot()
	if hits, misses := s.memo.Stats(); hits != 0 || misses != 3 {
		t.Fatalf("expected 3 computed scores, got hits=%d misses=%d", hits, misses)
	}

	if _, _, err := s.Upload(data); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if hits, misses := s.memo.Stats(); hits != 3 || misses != 3 {
		t.Fatalf("expected the second upload to be served from cache, got hits=%d misses=%d", hits, misses)
	}

	second := s.Snapshot()
	for _, c := range first.Items {
		if got := second.FindByID(c.ID); got == nil || got.Score != c.Score {
			t.Fatalf("cached score for %d differs: %v vs %+v", c.ID, c.Score, got)
		}
	}
}

func TestConcurrentAutoSelectAndReplace(t *testing.T) {
	t.Parallel()

	s := newStore(t, "")
	s.Replace(offsetPool(10, 0))

	// onePool reports whether every id belongs to the same pool.
	onePool := func(ids []int) bool {
		low := slices.ContainsFunc(ids, func(id int) bool { return id <= 10 })
		high := slices.ContainsFunc(ids, func(id int) bool { return id > 100 })
		return !(low && high)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 200 {
			offset := 0
			if i%2 == 0 {
				offset = 100
			}
			s.Replace(offsetPool(10, offset))
		}
	}()

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				result, err := s.AutoSelect()
				if err != nil {
					t.Errorf("AutoSelect returned error: %v", err)
					return
				}

				ids := make([]int, 0, result.Len())
				for _, pick := range result.Picks {
					ids = append(ids, pick.Candidate.ID)
				}
				if !onePool(ids) {
					t.Errorf("auto-select mixed pools: %v", ids)
					return
				}

				// The pool may have been replaced since; the picks must then be
				// entirely absent from it, never partially present.
				snapshot := s.Snapshot()
				present := 0
				for _, id := range ids {
					if snapshot.FindByID(id) != nil {
						present++
					}
				}
				if present != 0 && present != len(ids) {
					t.Errorf("picks %v partially present in the current pool", ids)
					return
				}

				if sel := selectedIDs(s.Selected()); !onePool(sel) {
					t.Errorf("selection mixed pools: %v", sel)
					return
				}
			}
		}()
	}
	wg.Wait()

	snapshot := s.Snapshot()
	for _, e := range s.Selected() {
		if snapshot.FindByID(e.Candidate.ID) == nil {
			t.Fatalf("selected candidate %d is not in the pool", e.Candidate.ID)
		}
	}
}

func TestListLogsFilterStatuses(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	s, err := New(Options{
		Scoring:   scoring.DefaultConfig(),
		Selection: selection.DefaultConfig(),
	}, zap.New(core))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	s.Replace(scoredPool(4))

	got, err := s.List(context.Background(), filtering.Query{Text: "go"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	entries := logs.FilterMessage("candidates listed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one list log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["count"] != int64(len(got)) {
		t.Fatalf("unexpected count field: %v", fields["count"])
	}

	statuses, ok := fields["filters"].([]filtering.Status)
	if !ok || len(statuses) != 3 {
		t.Fatalf("unexpected filters field: %#v", fields["filters"])
	}
	for _, st := range statuses {
		if st.Name == "query" && (!st.Enabled || st.Details["q"] != "go") {
			t.Fatalf("unexpected query status: %+v", st)
		}
		if st.Name == "max_salary" && st.Enabled {
			t.Fatalf("max_salary must be disabled when not requested: %+v", st)
		}
	}
}
