package candidate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Dataset is a raw uploaded list of form submissions.
type Dataset []map[string]any

// ReadDataset decodes a JSON array of submissions.
func ReadDataset(r io.Reader) (Dataset, error) {
	var data Dataset
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return data, nil
}

// LoadDatasetFromFile reads a dataset previously written by ToFile.
// A missing or empty file yields an empty dataset.
func LoadDatasetFromFile(path string) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Dataset{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return Dataset{}, nil
	}

	return ReadDataset(file)
}

// ToFile writes the dataset as indented JSON, replacing the file.
func (d Dataset) ToFile(path string) (err error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// Candidates converts every submission into a candidate.
// Records that cannot be decoded or reuse an id are reported and skipped; the rest
// of the batch is kept. Records without an explicit id get sequential ids after the
// highest explicit one, in dataset order.
func (d Dataset) Candidates(now time.Time) (*Pool, []error) {
	var errs []error

	submissions := make([]*Submission, len(d))
	next := 0
	for idx, item := range d {
		s, err := DecodeSubmission(item)
		if err != nil {
			errs = append(errs, &InvalidCandidateError{Index: idx + 1, Reason: err.Error()})
			continue
		}
		submissions[idx] = s
		next = max(next, s.ID)
	}

	pool := &Pool{Items: make([]*Candidate, 0, len(d))}
	seen := make(map[int]struct{}, len(d))
	for idx, s := range submissions {
		if s == nil {
			continue
		}

		c := s.ToCandidate(now)
		if c.ID <= 0 {
			next++
			c.ID = next
		}

		if _, dup := seen[c.ID]; dup {
			errs = append(errs, &InvalidCandidateError{ID: c.ID, Index: idx + 1, Reason: "duplicate id"})
			continue
		}
		seen[c.ID] = struct{}{}

		pool.Items = append(pool.Items, c)
	}

	return pool, errs
}
