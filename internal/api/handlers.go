package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/leapclean/internal/analyze"
	"github.com/leapstack-labs/leapclean/internal/dataset"
	"github.com/leapstack-labs/leapclean/internal/diagnose"
	"github.com/leapstack-labs/leapclean/internal/export"
	"github.com/leapstack-labs/leapclean/internal/plan"
	"github.com/leapstack-labs/leapclean/internal/registry"
	"github.com/leapstack-labs/leapclean/internal/state"
	"github.com/leapstack-labs/leapclean/internal/transform"
	"github.com/leapstack-labs/leapclean/pkg/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var notFound *core.SessionNotFoundError
	var unknownCol *core.UnknownColumnError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &unknownCol):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// sessionID resolves the target session from the route, falling back
// to the browser cookie for the literal segment "current".
func (s *Server) sessionID(r *http.Request) string {
	id := chi.URLParam(r, "session")
	if id != "" && id != "current" {
		return id
	}
	cookie, _ := s.cookies.Get(r, cookieName)
	if v, ok := cookie.Values["session_id"].(string); ok {
		return v
	}
	return id
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing multipart field \"file\""})
		return
	}
	defer file.Close()

	ds, err := dataset.Read(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id := s.sessions.Create(header.Filename, ds)
	_ = s.sessions.AppendLog(id, dataset.LoadEntry(header.Filename))

	cookie, _ := s.cookies.Get(r, cookieName)
	cookie.Values["session_id"] = id
	_ = cookie.Save(r, w)

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":  id,
		"filename":    header.Filename,
		"rows":        ds.Rows(),
		"columns":     ds.NumCols(),
		"descriptors": registry.Describe(ds),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": s.sessions.List()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(r)
	s.sessions.Delete(id)
	if s.history != nil {
		if err := s.history.DeleteSession(id); err != nil {
			s.logger.Warn("failed to delete batch history", "session", id, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "session_id": id})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	ds, err := s.sessions.Load(s.sessionID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":        ds.Rows(),
		"columns":     ds.NumCols(),
		"descriptors": registry.Describe(ds),
	})
}

type dropRequest struct {
	SessionID string `json:"session_id"`
	IDs       []int  `json:"ids"`
}

func (s *Server) handleDropColumns(w http.ResponseWriter, r *http.Request) {
	var req dropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.sessions.Load(req.SessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	descs := registry.Describe(ds)
	names, invalid := registry.Names(descs, req.IDs)
	res := transform.DropColumns(ds, names)
	for _, id := range invalid {
		res.Notes = append(res.Notes, fmt.Sprintf("ignored unknown column id %d", id))
	}
	s.finishBatch(req.SessionID, ds, res)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "applied",
		"dropped":     res.Dropped,
		"notes":       res.Notes,
		"rows":        ds.Rows(),
		"columns":     ds.NumCols(),
		"descriptors": registry.Describe(ds),
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	domain, err := core.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ds, err := s.sessions.Load(s.sessionID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	threshold := 0.0
	if v := r.URL.Query().Get("threshold"); v != "" {
		threshold, err = strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid threshold"})
			return
		}
	}

	suggestions, err := diagnose.Suggest(domain, ds, registry.Describe(ds), threshold)
	if err != nil {
		var insufficient *core.InsufficientDataError
		if errors.As(err, &insufficient) {
			writeJSON(w, http.StatusOK, map[string]any{
				"domain":      domain,
				"suggestions": core.Suggestions{},
				"message":     insufficient.Reason,
			})
			return
		}
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"domain":      domain,
		"suggestions": suggestions,
	})
}

type cleanRequest struct {
	SessionID string           `json:"session_id"`
	Plan      map[string][]int `json:"plan"`
	PlanText  string           `json:"plan_text"`
	// OnUncovered selects the policy for uncovered eligible columns:
	// "suggest", "leave", or empty to get an awaiting-decision reply.
	OnUncovered string  `json:"on_uncovered"`
	Threshold   float64 `json:"threshold"`
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	domain, err := core.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req cleanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.sessions.Load(req.SessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	descs := registry.Describe(ds)

	callerPlan, warnings, err := buildPlan(domain, req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	callerPlan, invalid := registry.FilterPlan(descs, callerPlan)
	for _, id := range invalid {
		warnings = append(warnings, fmt.Sprintf("ignored unknown column id %d", id))
	}

	suggestions, err := diagnose.Suggest(domain, ds, descs, req.Threshold)
	if err != nil {
		var insufficient *core.InsufficientDataError
		if errors.As(err, &insufficient) {
			writeJSON(w, http.StatusOK, map[string]any{
				"status":   "noop",
				"message":  insufficient.Reason,
				"warnings": warnings,
			})
			return
		}
		s.writeError(w, err)
		return
	}

	resolution := plan.NewResolution(domain, callerPlan, diagnose.EligibleIDs(suggestions), suggestions)
	if !resolution.Done() {
		switch req.OnUncovered {
		case "suggest":
			err = resolution.Apply(plan.Decision{Kind: plan.DecisionSuggest})
		case "leave":
			err = resolution.Apply(plan.Decision{Kind: plan.DecisionLeave})
		case "":
			writeJSON(w, http.StatusConflict, map[string]any{
				"status":        "awaiting_decision",
				"uncovered_ids": resolution.Uncovered(),
				"suggested":     suggestions.Actions(),
				"warnings":      warnings,
			})
			return
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown policy %q", req.OnUncovered)})
			return
		}
		if err != nil {
			s.writeError(w, err)
			return
		}
	}

	res, err := transform.Apply(ds, domain, resolution.Plan(), descs, suggestions)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.finishBatch(req.SessionID, ds, res)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "applied",
		"step":         res.Entry.Step,
		"operations":   res.Entry.Ops,
		"skipped":      res.Skipped,
		"notes":        res.Notes,
		"rows_removed": res.RowsRemoved,
		"dropped":      res.Dropped,
		"warnings":     warnings,
		"rows":         ds.Rows(),
		"columns":      ds.NumCols(),
		"descriptors":  registry.Describe(ds),
	})
}

func buildPlan(domain core.Domain, req cleanRequest) (core.Plan, []string, error) {
	if req.PlanText != "" {
		p, warnings := plan.Parse(domain, req.PlanText)
		return p, warnings, nil
	}
	p := make(core.Plan)
	for name, ids := range req.Plan {
		action := core.Action(name)
		if !domain.HasAction(action) {
			return nil, nil, fmt.Errorf("action %q is not valid for domain %q", name, domain)
		}
		p[action] = append(p[action], ids...)
	}
	return p.Normalize(domain), nil, nil
}

// finishBatch saves the mutated dataset, appends the log entry, and
// records the batch in the history store. No-op batches touch neither
// log nor history.
func (s *Server) finishBatch(id string, ds *core.Dataset, res *transform.Result) {
	_ = s.sessions.Save(id, ds)
	if !res.Applied() {
		return
	}
	_ = s.sessions.AppendLog(id, res.Entry)
	if s.history == nil {
		return
	}
	name, _ := s.sessions.Name(id)
	err := s.history.RecordBatch(&state.Batch{
		SessionID:   id,
		Dataset:     name,
		Step:        res.Entry.Step,
		Ops:         res.Entry.Ops,
		RowsRemoved: res.RowsRemoved,
		ColsDropped: append([]string{}, res.Dropped...),
	})
	if err != nil {
		s.logger.Warn("failed to record batch history", "session", id, "error", err)
	}
}

func (s *Server) handleUnivariate(w http.ResponseWriter, r *http.Request) {
	ds, err := s.sessions.Load(s.sessionID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	rows, err := analyze.Univariate(ds)
	if err != nil {
		var insufficient *core.InsufficientDataError
		if errors.As(err, &insufficient) {
			writeJSON(w, http.StatusOK, map[string]any{"summary": []analyze.UnivariateRow{}, "message": insufficient.Reason})
			return
		}
		s.writeError(w, err)
		return
	}
	s.appendAnalysisEntry(s.sessionID(r), analyze.UnivariateEntry())
	writeJSON(w, http.StatusOK, map[string]any{"summary": rows})
}

func (s *Server) handleBivariate(w http.ResponseWriter, r *http.Request) {
	ds, err := s.sessions.Load(s.sessionID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	matrix, err := analyze.Bivariate(ds)
	if err != nil {
		var insufficient *core.InsufficientDataError
		if errors.As(err, &insufficient) {
			writeJSON(w, http.StatusOK, map[string]any{"message": insufficient.Reason})
			return
		}
		s.writeError(w, err)
		return
	}
	s.appendAnalysisEntry(s.sessionID(r), analyze.BivariateEntry())
	writeJSON(w, http.StatusOK, matrix)
}

// appendAnalysisEntry records an analysis replay cell once per
// session; repeated reads of the same analysis do not stack cells.
func (s *Server) appendAnalysisEntry(id string, entry core.LogEntry) {
	log, err := s.sessions.Log(id)
	if err != nil {
		return
	}
	for _, le := range log {
		if le.Step == entry.Step {
			return
		}
	}
	_ = s.sessions.AppendLog(id, entry)
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	log, err := s.sessions.Log(s.sessionID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"log": log})
}

func (s *Server) handleExportNotebook(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(r)
	log, err := s.sessions.Log(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	b, err := export.NotebookBytes(log)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-ipynb+json")
	w.Header().Set("Content-Disposition", `attachment; filename="preprocessing_workflow.ipynb"`)
	_, _ = w.Write(b)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ds, err := s.sessions.Load(s.sessionID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := dataset.Write(&buf, ds); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="cleaned.csv"`)
	_, _ = w.Write(buf.Bytes())
}

type adviseRequest struct {
	SessionID   string   `json:"session_id"`
	Step        string   `json:"step"`
	Description string   `json:"description"`
	Columns     []string `json:"columns"`
}

func (s *Server) handleAdvise(w http.ResponseWriter, r *http.Request) {
	var req adviseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	datasetContext := map[string]any{}
	if ds, err := s.sessions.Load(req.SessionID); err == nil {
		datasetContext["rows"] = ds.Rows()
		datasetContext["columns"] = ds.Names()
		datasetContext["descriptors"] = registry.Describe(ds)
	}

	advisory, err := s.advisor.Validate(r.Context(), req.Step, req.Description, req.Columns, datasetContext)
	if err != nil {
		var unavailable *core.AdvisoryUnavailableError
		if errors.As(err, &unavailable) {
			writeJSON(w, http.StatusOK, map[string]string{"warning": unavailable.Error()})
			return
		}
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, advisory)
}
