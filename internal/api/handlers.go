package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// handleHealth reports liveness and whether the document loaded.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	kb := s.store.Current()
	writeJSON(w, map[string]any{
		"status":   "ok",
		"degraded": kb.Empty(),
		"source":   kb.SourcePath,
		"warnings": len(kb.Warnings),
	})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.tools.Overview(r.Context()))
}

func (s *Server) handleDefinition(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")
	out, err := s.tools.Definition(r.Context(), term)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, out)
}

func (s *Server) handleIssues(w http.ResponseWriter, r *http.Request) {
	symptom := r.URL.Query().Get("symptom")
	out, err := s.tools.SolveIssue(r.Context(), symptom)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, out)
}

func (s *Server) handleCompliance(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	platform := r.URL.Query().Get("platform")
	out, err := s.tools.CheckCompliance(r.Context(), topic, platform)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, out)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	dimension := r.URL.Query().Get("dimension")
	var platforms []string
	if raw := r.URL.Query().Get("platforms"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				platforms = append(platforms, p)
			}
		}
	}
	out, err := s.tools.Compare(r.Context(), dimension, platforms)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, out)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Section string `json:"section"`
		Note    string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	out, err := s.tools.ReportIssue(r.Context(), req.Section, req.Note)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, out)
}

// handleReload re-reads the source document. force=true skips the
// mtime check.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	reloaded, err := s.store.Reload(force)
	if err != nil {
		jsonError(w, "reload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	kb := s.store.Current()
	writeJSON(w, map[string]any{
		"reloaded": reloaded,
		"degraded": kb.Empty(),
		"warnings": len(kb.Warnings),
	})
}
