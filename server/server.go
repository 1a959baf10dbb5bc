// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/evidentia/core"
	"github.com/poiesic/evidentia/pipeline"
	"github.com/poiesic/evidentia/storage"
)

// Server exposes the resolve pipeline over a small JSON API.
type Server struct {
	resolver    *pipeline.Resolver
	supplements storage.SupplementRepository
	logger      *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server) error

// WithServerLogger sets a custom logger.
// Default is slog.Default().
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewServer creates a new API server.
func NewServer(resolver *pipeline.Resolver, supplements storage.SupplementRepository, opts ...ServerOption) (*Server, error) {
	if resolver == nil {
		return nil, ErrResolverRequired
	}
	if supplements == nil {
		return nil, ErrSupplementRepositoryRequired
	}

	s := &Server{
		resolver:    resolver,
		supplements: supplements,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

type matchPayload struct {
	Id             core.ID         `json:"id"`
	Name           string          `json:"name"`
	ScientificName string          `json:"scientificName,omitempty"`
	CommonNames    []string        `json:"commonNames,omitempty"`
	Metadata       metadataPayload `json:"metadata"`
	Similarity     float32         `json:"similarity"`
}

type metadataPayload struct {
	Category    string `json:"category,omitempty"`
	Popularity  string `json:"popularity,omitempty"`
	Grade       string `json:"evidenceGrade,omitempty"`
	StudyCount  int    `json:"studyCount,omitempty"`
	OracleQuery string `json:"queryUsed,omitempty"`
}

type searchResponse struct {
	Success            bool           `json:"success"`
	Supplement         *matchPayload  `json:"supplement,omitempty"`
	CacheHit           bool           `json:"cacheHit"`
	Source             string         `json:"source,omitempty"`
	AlternativeMatches []matchPayload `json:"alternativeMatches,omitempty"`
}

type missResponse struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	Query      string  `json:"query"`
	Reason     string  `json:"reason"`
	StudyCount int     `json:"studyCount,omitempty"`
	Suggestion string  `json:"suggestion"`
	Enqueued   bool    `json:"enqueued"`
	Similarity float32 `json:"bestSimilarity,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func toMatchPayload(match *core.SupplementMatch) matchPayload {
	record := match.Record
	return matchPayload{
		Id:             record.Id,
		Name:           record.Name,
		ScientificName: record.ScientificName,
		CommonNames:    record.CommonNames,
		Metadata: metadataPayload{
			Category:    record.Metadata.Category,
			Popularity:  record.Metadata.Popularity,
			Grade:       string(record.Metadata.Grade),
			StudyCount:  record.Metadata.StudyCount,
			OracleQuery: record.Metadata.OracleQuery,
		},
		Similarity: match.Similarity,
	}
}

func missSuggestion(reason pipeline.MissReason) string {
	if reason == pipeline.ReasonInsufficientEvidence {
		return "this term has too little published research; try a more established supplement name"
	}
	return "check the spelling or try a common name; the term has been queued for discovery"
}

// requestLimit reads the match cap from the query string. The top_k
// parameter wins over limit when both are present.
func requestLimit(r *http.Request) int {
	for _, name := range []string{"top_k", "limit"} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestId := uuid.NewString()
	w.Header().Set("X-Request-Id", requestId)

	query := r.URL.Query().Get("q")
	result, err := s.resolver.Resolve(r.Context(), pipeline.Request{
		Query: query,
		Limit: requestLimit(r),
	})
	if err != nil {
		if errors.Is(err, core.ErrInvalidQuery) {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:   "invalid_query",
				Message: err.Error(),
			})
			return
		}
		s.logger.Error("resolve failed", "requestId", requestId, "query", query, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "internal_error",
			Message: "resolution failed",
		})
		return
	}

	s.logger.Info("search handled",
		"requestId", requestId,
		"query", query,
		"found", result.Found,
		"source", result.Source,
		"enqueued", result.Enqueued)

	if !result.Found {
		writeJSON(w, http.StatusNotFound, missResponse{
			Message:    "supplement not found",
			Query:      result.Query,
			Reason:     string(result.Reason),
			StudyCount: result.StudyCount,
			Suggestion: missSuggestion(result.Reason),
			Enqueued:   result.Enqueued,
			Similarity: result.BestSimilarity,
		})
		return
	}

	best := toMatchPayload(result.Best())
	resp := searchResponse{
		Success:    true,
		Supplement: &best,
		CacheHit:   result.Source == pipeline.SourceCache,
		Source:     string(result.Source),
	}
	for _, match := range result.Matches[1:] {
		resp.AlternativeMatches = append(resp.AlternativeMatches, toMatchPayload(match))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	count, err := s.supplements.CountSupplements(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"records": count,
		"timeUtc": time.Now().UTC().Format(time.RFC3339),
	})
}

// Router returns the HTTP handler for the API.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start serves the API on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
