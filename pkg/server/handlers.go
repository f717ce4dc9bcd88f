package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"a11y-hq/lumen/pkg/catalog"
	"a11y-hq/lumen/pkg/element"
	"a11y-hq/lumen/pkg/results"
	"a11y-hq/lumen/pkg/results/export"
	"a11y-hq/lumen/pkg/rule"
	"a11y-hq/lumen/pkg/scan"
)

// RuleView is a catalogued rule as served by the API.
type RuleView struct {
	rule.Info
	Origin string `json:"origin"`
	File   string `json:"file,omitempty"`
}

func ruleView(e catalog.Entry) RuleView {
	return RuleView{Info: e.Rule.Info(), Origin: e.Origin, File: e.File}
}

// ScanList is the body of GET /api/v1/scans.
type ScanList struct {
	Scans []*scan.Result `json:"scans"`
	Total int64          `json:"total"`
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	origin := r.URL.Query().Get("origin")
	set := s.deps.Catalog.Snapshot()

	views := make([]RuleView, 0, set.Len())
	for _, e := range set.Entries() {
		if origin != "" && e.Origin != origin {
			continue
		}
		views = append(views, ruleView(e))
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ruleID")
	e, ok := s.deps.Catalog.Snapshot().Entry(id)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("rule %q not found", id), nil)
		return
	}
	respondJSON(w, http.StatusOK, ruleView(e))
}

func (s *Server) handleRulesStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Catalog.Status())
}

func (s *Server) handleReloadRules(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Catalog.Reload(r.Context(), catalog.TriggerManual); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "rule reload failed, previous rules kept", err)
		return
	}
	respondJSON(w, http.StatusOK, s.deps.Catalog.Status())
}

// handleCreateScan scans the tree snapshot in the request body. The body is
// JSON when Content-Type says so and YAML otherwise. Query parameters:
// target (label stored with the result) and rules (comma-separated IDs).
func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	format := element.FormatYAML
	if strings.Contains(r.Header.Get("Content-Type"), "json") {
		format = element.FormatJSON
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "tree snapshot too large", err)
			return
		}
		respondError(w, http.StatusBadRequest, "failed to read request body", err)
		return
	}

	root, err := element.DecodeTree(bytes.NewReader(body), format)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree snapshot", err)
		return
	}

	q := r.URL.Query()
	opts := scan.Options{Target: q.Get("target")}
	if ids := q.Get("rules"); ids != "" {
		opts.RuleIDs = strings.Split(ids, ",")
	}

	res, err := s.deps.Runner.Run(r.Context(), root, s.deps.Catalog.Snapshot(), opts)
	if err != nil && res == nil {
		var (
			unknown *scan.UnknownRuleError
			tooMany *scan.TooManyElementsError
		)
		switch {
		case errors.As(err, &unknown):
			respondError(w, http.StatusBadRequest, "unknown rule", err)
		case errors.As(err, &tooMany):
			respondError(w, http.StatusRequestEntityTooLarge, "tree has too many elements", err)
		case errors.Is(err, scan.ErrNoRules):
			respondError(w, http.StatusUnprocessableEntity, "no rules to evaluate", err)
		default:
			respondError(w, http.StatusInternalServerError, "scan failed", err)
		}
		return
	}

	// A cancelled scan still has a partial result worth keeping. Store it
	// even if the client has gone away.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 10*time.Second)
	defer cancel()
	if storeErr := s.deps.Storage.Store(storeCtx, res); storeErr != nil {
		s.logger.ErrorContext(r.Context(), "failed to store scan result", "scan_id", res.ID, "error", storeErr)
		respondError(w, http.StatusInternalServerError, "failed to store scan result", storeErr)
		return
	}

	status := http.StatusCreated
	if err != nil {
		status = http.StatusGatewayTimeout
	}
	w.Header().Set("Location", "/api/v1/scans/"+res.ID)
	respondJSON(w, status, res)
}

// handleListScans serves stored scans without findings. Query parameters
// map onto results.Query: target, status, rule, min_failures, since and
// until (RFC 3339), limit, offset, sort, order.
func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	query, err := parseQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid query", err)
		return
	}
	if err := query.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid query", err)
		return
	}

	list, err := s.deps.Storage.List(r.Context(), query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list scans", err)
		return
	}
	total, err := s.deps.Storage.Count(r.Context(), query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count scans", err)
		return
	}
	respondJSON(w, http.StatusOK, ScanList{Scans: list, Total: total})
}

// handleGetScan serves one scan with its findings, as CSV when format=csv.
func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "scanID")
	res, err := s.deps.Storage.Get(r.Context(), id)
	if errors.Is(err, results.ErrNotFound) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("scan %q not found", id), nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read scan", err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		exp := &export.CSVExporter{
			IncludeHeader: true,
			FailuresOnly:  r.URL.Query().Get("failures_only") == "true",
		}
		if err := exp.Export(r.Context(), []*scan.Result{res}, w); err != nil {
			s.logger.ErrorContext(r.Context(), "failed to export scan", "scan_id", id, "error", err)
		}
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "scanID")
	n, err := s.deps.Storage.Delete(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete scan", err)
		return
	}
	if n == 0 {
		respondError(w, http.StatusNotFound, fmt.Sprintf("scan %q not found", id), nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseQuery(r *http.Request) (*results.Query, error) {
	v := r.URL.Query()
	q := &results.Query{
		Target:    v.Get("target"),
		Status:    v.Get("status"),
		RuleID:    v.Get("rule"),
		SortBy:    v.Get("sort"),
		SortOrder: v.Get("order"),
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"limit", &q.Limit},
		{"offset", &q.Offset},
	}
	for _, p := range ints {
		if s := v.Get(p.name); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p.name, err)
			}
			*p.dst = n
		}
	}

	if s := v.Get("min_failures"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("min_failures: %w", err)
		}
		q.MinFailures = &n
	}

	times := []struct {
		name string
		dst  **time.Time
	}{
		{"since", &q.StartTime},
		{"until", &q.EndTime},
	}
	for _, p := range times {
		if s := v.Get(p.name); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p.name, err)
			}
			*p.dst = &t
		}
	}

	return q, nil
}
