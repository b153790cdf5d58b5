// Package server exposes a parsed rulebook over a small read-only JSON API
// for the presentation layer.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/coolbeans/rulebook/pkg/rules"
	"github.com/coolbeans/rulebook/pkg/search"
)

// Server serves one immutable document. The document is never mutated after
// construction, so handlers need no locking.
type Server struct {
	data     *rules.RulesData
	searcher *search.Searcher
}

// New creates a server over the given document.
func New(data *rules.RulesData) *Server {
	return &Server{data: data, searcher: search.NewSearcher(data)}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /meta", s.handleMeta)
	mux.HandleFunc("GET /rules", s.handleTopLevel)
	mux.HandleFunc("GET /rules/{id}", s.handleRule)
	mux.HandleFunc("GET /rules/{id}/children", s.handleChildren)
	mux.HandleFunc("GET /rules/{id}/refs", s.handleReferencing)
	mux.HandleFunc("GET /search", s.handleSearch)
	return mux
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":      s.data.Version,
		"last_updated": s.data.LastUpdated,
		"sections":     s.data.Len(),
	})
}

func (s *Server) handleTopLevel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.data.TopLevel()))
}

func (s *Server) handleRule(w http.ResponseWriter, r *http.Request) {
	node := s.data.Node(r.PathValue("id"))
	if node == nil {
		writeError(w, http.StatusNotFound, "no such rule")
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.data.Node(id) == nil {
		writeError(w, http.StatusNotFound, "no such rule")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(s.data.ChildNodes(id)))
}

func (s *Server) handleReferencing(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.data.Node(id) == nil {
		writeError(w, http.StatusNotFound, "no such rule")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(s.data.Referencing(id)))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	matches := s.searcher.Search(query)
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if n < len(matches) {
			matches = matches[:n]
		}
	}
	if matches == nil {
		matches = []search.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

func orEmpty(sections []*rules.RuleSection) []*rules.RuleSection {
	if sections == nil {
		return []*rules.RuleSection{}
	}
	return sections
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
