package server

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hire-picker/internal/candidate"
	"github.com/spigell/hire-picker/internal/export"
	"github.com/spigell/hire-picker/internal/filtering"
	"github.com/spigell/hire-picker/internal/selection"
	"github.com/spigell/hire-picker/internal/store"
)

type pickResponse struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

type selectedResponse struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Skills   []string `json:"skills"`
	Score    float64  `json:"score"`
	Reason   string   `json:"reason"`
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	candidates, err := s.store.List(r.Context(), q)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if candidates == nil {
		candidates = []*candidate.Candidate{}
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"candidates": candidates})
}

func parseQuery(r *http.Request) (filtering.Query, error) {
	values := r.URL.Query()
	q := filtering.Query{Text: values.Get("q")}

	if raw := strings.TrimSpace(values.Get("min_experience")); raw != "" {
		years, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, fmt.Errorf("min_experience must be a number")
		}
		q.MinExperience = &years
	}

	if raw := strings.TrimSpace(values.Get("max_salary")); raw != "" {
		salary, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("max_salary must be an integer")
		}
		q.MaxSalary = &salary
	}

	return q, nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".json" {
		s.respondError(w, http.StatusBadRequest, "only .json files are accepted")
		return
	}

	data, err := candidate.ReadDataset(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	accepted, skipped, err := s.store.Upload(data)
	if err != nil {
		s.logger.Error("upload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to store dataset")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"count":   accepted,
		"skipped": len(skipped),
	})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	err := s.store.Select(id)
	var full *store.SelectionFullError
	switch {
	case err == nil:
	case errors.Is(err, candidate.ErrCandidateNotFound):
		s.respondError(w, http.StatusNotFound, "candidate not found")
		return
	case errors.As(err, &full):
		s.respondError(w, http.StatusConflict, full.Error())
		return
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "id": id})
}

func (s *Server) handleDeselect(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	s.store.Deselect(id)
	s.respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "id": id})
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		s.respondError(w, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (s *Server) handleAutoSelect(w http.ResponseWriter, _ *http.Request) {
	result, err := s.store.AutoSelect()
	if err != nil {
		var insufficient *selection.InsufficientCandidatesError
		if errors.As(err, &insufficient) {
			s.respondError(w, http.StatusUnprocessableEntity, insufficient.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	picks := make([]pickResponse, 0, result.Len())
	for _, p := range result.Picks {
		picks = append(picks, pickResponse{
			ID:     p.Candidate.ID,
			Name:   p.Candidate.Name,
			Score:  p.Candidate.Score,
			Reason: p.Reason,
		})
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "selected": picks})
}

func (s *Server) handleSelected(w http.ResponseWriter, _ *http.Request) {
	entries := s.store.Selected()

	selected := make([]selectedResponse, 0, len(entries))
	for _, e := range entries {
		skills := e.Candidate.Skills
		if skills == nil {
			skills = []string{}
		}
		selected = append(selected, selectedResponse{
			ID:       e.Candidate.ID,
			Name:     e.Candidate.Name,
			Location: e.Candidate.Location,
			Skills:   skills,
			Score:    e.Candidate.Score,
			Reason:   e.Reason,
		})
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"selected": selected})
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	entries := s.store.Selected()
	team := make([]export.Member, 0, len(entries))
	for _, e := range entries {
		team = append(team, export.Member{Candidate: e.Candidate, Reason: e.Reason})
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="team.xlsx"`)
	if err := export.Write(w, team, s.store.Snapshot()); err != nil {
		s.logger.Error("export failed", zap.Error(err))
		w.Header().Del("Content-Disposition")
		s.respondError(w, http.StatusInternalServerError, "failed to export selection")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	candidates, selected := s.store.Stats()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"candidates": candidates,
		"selected":   selected,
	})
}
