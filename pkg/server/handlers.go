package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/matzehuels/treasuremap/pkg/analysis"
	apperrors "github.com/matzehuels/treasuremap/pkg/errors"
	"github.com/matzehuels/treasuremap/pkg/graph"
	graphio "github.com/matzehuels/treasuremap/pkg/io"
	"github.com/matzehuels/treasuremap/pkg/render/nodelink"
	"github.com/matzehuels/treasuremap/pkg/render/tree"
)

// PathResponse is the body of a successful /path request.
type PathResponse struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Path []string `json:"path"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"nodes":   s.graph.NodeCount(),
	})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.report)
}

func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.report.Duplicates)
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	cycles := s.report.Cycles
	if cycles == nil {
		cycles = []analysis.Cycle{}
	}
	respondJSON(w, http.StatusOK, cycles)
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		respondError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	for _, name := range []string{from, to} {
		if err := apperrors.ValidatePackageName(name); err != nil {
			respondError(w, http.StatusBadRequest, apperrors.UserMessage(err))
			return
		}
	}
	path, ok := graph.FindPath(s.graph, from, to)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("no path from %s to %s", from, to))
		return
	}
	respondJSON(w, http.StatusOK, PathResponse{From: from, To: to, Path: path})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	tree.Print(w, s.graph, tree.Options{Plain: true})
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	if err := nodelink.WriteDOT(s.graph, w); err != nil {
		s.logger.Warn("write dot", "error", err)
	}
}

func (s *Server) handleGraphJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := graphio.WriteJSON(s.graph, w); err != nil {
		s.logger.Warn("write graph", "error", err)
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, ErrorResponse{Error: msg})
}
