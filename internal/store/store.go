package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hire-picker/internal/candidate"
	"github.com/spigell/hire-picker/internal/filtering"
	"github.com/spigell/hire-picker/internal/logger"
	"github.com/spigell/hire-picker/internal/scoring"
	"github.com/spigell/hire-picker/internal/selection"
)

const reasonLogLimit = 120

// memoTTL bounds how long scores of replaced pools stay cached.
const memoTTL = time.Hour

// Options configures a Store.
type Options struct {
	Scoring   scoring.Config
	Selection selection.Config
	// DataFile receives every uploaded dataset. Empty disables persistence.
	DataFile string
}

// Entry is one selected candidate with the reason it was picked.
type Entry struct {
	Candidate *candidate.Candidate
	Reason    string
}

type selected struct {
	id     int
	reason string
}

// Store owns the candidate pool and the current selection.
// Every operation runs under a single mutex, so concurrent requests observe
// each read-compute-write sequence as one step.
type Store struct {
	mu       sync.Mutex
	pool     *candidate.Pool
	selected []selected

	// uploadMu keeps the persisted dataset and the pool in the same order.
	uploadMu sync.Mutex

	scoring  scoring.Config
	memo     *scoring.Memo
	engine   *selection.Engine
	dataFile string
	now      func() time.Time
	logger   *zap.Logger
}

func New(opts Options, log *zap.Logger) (*Store, error) {
	log = logger.OrNop(log)

	engine, err := selection.NewEngine(opts.Selection, log)
	if err != nil {
		return nil, fmt.Errorf("selection engine: %w", err)
	}

	return &Store{
		pool:     &candidate.Pool{},
		scoring:  opts.Scoring,
		memo:     scoring.NewMemo(memoTTL),
		engine:   engine,
		dataFile: opts.DataFile,
		now:      time.Now,
		logger:   log,
	}, nil
}

// Limit returns the maximum number of selected candidates.
func (s *Store) Limit() int {
	return s.engine.TeamSize()
}

// Replace scores the candidates and makes them the new pool. The selection is cleared.
// Invalid records are skipped; the number of accepted candidates and the skipped
// record errors are returned.
func (s *Store) Replace(pool *candidate.Pool) (int, []error) {
	scorer := scoring.NewForPool(s.scoring, pool, s.memo, s.logger)
	scored, errs := scorer.ScorePool(pool)
	scored.SortByScore()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pool = scored
	s.selected = nil

	hits, misses := s.memo.Stats()
	s.logger.Info("pool replaced",
		zap.Int("accepted", scored.Len()),
		zap.Int("skipped", len(errs)),
		zap.Int64("memo_hits", hits),
		zap.Int64("memo_misses", misses),
	)

	return scored.Len(), errs
}

// Load decodes a dataset and replaces the pool with it.
func (s *Store) Load(data candidate.Dataset) (int, []error) {
	pool, decodeErrs := data.Candidates(s.now())
	accepted, scoreErrs := s.Replace(pool)
	return accepted, append(decodeErrs, scoreErrs...)
}

// Upload persists the dataset to the data file and loads it.
func (s *Store) Upload(data candidate.Dataset) (int, []error, error) {
	s.uploadMu.Lock()
	defer s.uploadMu.Unlock()

	if s.dataFile != "" {
		if err := data.ToFile(s.dataFile); err != nil {
			return 0, nil, fmt.Errorf("persist dataset: %w", err)
		}
	}

	accepted, errs := s.Load(data)
	return accepted, errs, nil
}

// Seed loads the persisted dataset, if any.
func (s *Store) Seed() (int, []error, error) {
	if s.dataFile == "" {
		return 0, nil, nil
	}

	data, err := candidate.LoadDatasetFromFile(s.dataFile)
	if err != nil {
		return 0, nil, fmt.Errorf("load dataset %s: %w", s.dataFile, err)
	}

	accepted, errs := s.Load(data)
	return accepted, errs, nil
}

// List returns copies of the candidates matching the query, best score first.
func (s *Store) List(ctx context.Context, q filtering.Query) ([]*candidate.Candidate, error) {
	snapshot := s.Snapshot()

	f := filtering.New(q.Steps(), s.logger)
	filtered, err := f.RunFilters(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	filtered.SortByScore()
	s.logger.Debug("candidates listed",
		zap.Any("filters", f.Describe()),
		zap.Int("count", filtered.Len()),
	)
	return filtered.Items, nil
}

// Snapshot returns a deep copy of the pool.
func (s *Store) Snapshot() *candidate.Pool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pool.Clone()
}

// Stats returns the pool size and the number of selected candidates.
func (s *Store) Stats() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pool.Len(), len(s.selected)
}

// Selected returns the current selection in insertion order.
func (s *Store) Selected() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.selected))
	for _, sel := range s.selected {
		c := s.pool.FindByID(sel.id)
		if c == nil {
			continue
		}
		entries = append(entries, Entry{Candidate: c.Clone(), Reason: sel.reason})
	}
	return entries
}

// Select adds the candidate to the selection. Selecting an already selected
// candidate does nothing.
func (s *Store) Select(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selectLocked(id)
}

// Toggle selects the candidate, or deselects it when it is already selected.
// It reports whether the candidate is selected afterwards.
func (s *Store) Toggle(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deselectLocked(id) {
		return false, nil
	}
	if err := s.selectLocked(id); err != nil {
		return false, err
	}
	return true, nil
}

// Deselect removes the candidate from the selection. Unknown ids are ignored.
func (s *Store) Deselect(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deselectLocked(id)
}

func (s *Store) selectLocked(id int) error {
	c := s.pool.FindByID(id)
	if c == nil {
		return fmt.Errorf("select %d: %w", id, candidate.ErrCandidateNotFound)
	}

	if slices.ContainsFunc(s.selected, func(sel selected) bool { return sel.id == id }) {
		return nil
	}

	if limit := s.engine.TeamSize(); len(s.selected) >= limit {
		return &SelectionFullError{Limit: limit}
	}

	reason := manualReason(c)
	s.selected = append(s.selected, selected{id: id, reason: reason})
	logger.WithCandidate(s.logger, c.ID, c.Name).Info("candidate selected",
		zap.Int("selected", len(s.selected)),
		zap.String("reason", logger.TruncateForLog(reason, reasonLogLimit)),
	)

	return nil
}

func (s *Store) deselectLocked(id int) bool {
	i := slices.IndexFunc(s.selected, func(sel selected) bool { return sel.id == id })
	if i < 0 {
		return false
	}

	s.selected = slices.Delete(s.selected, i, i+1)
	s.logger.Info("candidate deselected", zap.Int(logger.FieldCandidateID, id))
	return true
}

// AutoSelect runs the selection engine over the whole pool and replaces the
// selection with its result. On failure the selection is left untouched.
func (s *Store) AutoSelect() (*selection.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.engine.Run(s.pool)
	if err != nil {
		s.logger.Warn("auto-select failed", zap.Error(err))
		return nil, err
	}

	next := make([]selected, 0, result.Len())
	for i, pick := range result.Picks {
		next = append(next, selected{id: pick.Candidate.ID, reason: pick.Reason})
		result.Picks[i].Candidate = pick.Candidate.Clone()
	}
	s.selected = next

	return result, nil
}
