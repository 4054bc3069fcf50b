// Package handlers provides HTTP handlers for the contact-engine API.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/spherical-ai/contact-engine/internal/cache"
	"github.com/spherical-ai/contact-engine/internal/matching"
	"github.com/spherical-ai/contact-engine/internal/observability"
	"github.com/spherical-ai/contact-engine/pkg/engine"
)

// MatchHandler serves title and department canonicalization requests.
type MatchHandler struct {
	logger   *observability.Logger
	engine   *engine.Engine
	cache    cache.Client
	cacheTTL time.Duration
}

// NewMatchHandler creates a match handler. cacheClient may be nil to
// disable response caching.
func NewMatchHandler(logger *observability.Logger, eng *engine.Engine, cacheClient cache.Client, cacheTTL time.Duration) *MatchHandler {
	return &MatchHandler{
		logger:   logger,
		engine:   eng,
		cache:    cacheClient,
		cacheTTL: cacheTTL,
	}
}

// MatchTitleRequestDTO is the request body for POST /match/title.
type MatchTitleRequestDTO struct {
	Title             string            `json:"title"`
	DepartmentContext string            `json:"departmentContext,omitempty"`
	Overrides         map[string]string `json:"overrides,omitempty"`
}

// MatchDepartmentRequestDTO is the request body for POST /match/department.
type MatchDepartmentRequestDTO struct {
	Department string            `json:"department"`
	Overrides  map[string]string `json:"overrides,omitempty"`
}

// MatchResponseDTO is the response for both match endpoints.
type MatchResponseDTO struct {
	RequestID   string  `json:"requestId"`
	Input       string  `json:"input"`
	Canonical   string  `json:"canonical"`
	CanonicalID string  `json:"canonicalId,omitempty"`
	Tier        string  `json:"tier"`
	RawScore    float64 `json:"rawScore"`
	Confidence  float64 `json:"confidence"`
	Vetoed      bool    `json:"vetoed"`
}

// CandidatesRequestDTO is the request body for the candidate endpoints.
type CandidatesRequestDTO struct {
	Input string `json:"input"`
	Limit int    `json:"limit,omitempty"`
}

// CandidatesResponseDTO lists scored candidates.
type CandidatesResponseDTO struct {
	RequestID  string               `json:"requestId"`
	Input      string               `json:"input"`
	Candidates []matching.Candidate `json:"candidates"`
}

// MatchTitle handles POST /api/v1/match/title.
func (h *MatchHandler) MatchTitle(w http.ResponseWriter, r *http.Request) {
	var req MatchTitleRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required", "")
		return
	}

	// Overrides vary per caller, so only override-free requests are
	// cacheable.
	cacheKey := ""
	if len(req.Overrides) == 0 {
		cacheKey = "match:title:" + req.Title + "\x00" + req.DepartmentContext
		if h.serveCached(w, r, cacheKey) {
			return
		}
	}

	canonical, match, err := h.engine.CanonicalTitle(req.Title, req.DepartmentContext, req.Overrides)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid overrides", err.Error())
		return
	}

	h.writeMatch(w, r, cacheKey, req.Title, canonical, match)
}

// MatchDepartment handles POST /api/v1/match/department.
func (h *MatchHandler) MatchDepartment(w http.ResponseWriter, r *http.Request) {
	var req MatchDepartmentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Department == "" {
		writeError(w, http.StatusBadRequest, "department is required", "")
		return
	}

	cacheKey := ""
	if len(req.Overrides) == 0 {
		cacheKey = "match:department:" + req.Department
		if h.serveCached(w, r, cacheKey) {
			return
		}
	}

	canonical, match, err := h.engine.CanonicalDepartment(req.Department, req.Overrides)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid overrides", err.Error())
		return
	}

	h.writeMatch(w, r, cacheKey, req.Department, canonical, match)
}

// TitleCandidates handles POST /api/v1/match/title/candidates.
func (h *MatchHandler) TitleCandidates(w http.ResponseWriter, r *http.Request) {
	h.candidates(w, r, h.engine.TopTitleMatches)
}

// DepartmentCandidates handles POST /api/v1/match/department/candidates.
func (h *MatchHandler) DepartmentCandidates(w http.ResponseWriter, r *http.Request) {
	h.candidates(w, r, h.engine.TopDepartmentMatches)
}

func (h *MatchHandler) candidates(w http.ResponseWriter, r *http.Request, top func(string, int) []matching.Candidate) {
	var req CandidatesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Input == "" {
		writeError(w, http.StatusBadRequest, "input is required", "")
		return
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	candidates := top(req.Input, req.Limit)
	if candidates == nil {
		candidates = []matching.Candidate{}
	}
	writeJSON(w, http.StatusOK, CandidatesResponseDTO{
		RequestID:  uuid.NewString(),
		Input:      req.Input,
		Candidates: candidates,
	})
}

func (h *MatchHandler) writeMatch(w http.ResponseWriter, r *http.Request, cacheKey, input, canonical string, match matching.MatchResult) {
	resp := MatchResponseDTO{
		RequestID:   uuid.NewString(),
		Input:       input,
		Canonical:   canonical,
		CanonicalID: match.CanonicalID,
		Tier:        match.Tier.String(),
		RawScore:    match.RawScore,
		Confidence:  match.Confidence,
		Vetoed:      match.Vetoed,
	}

	if h.cache != nil && cacheKey != "" {
		if body, err := json.Marshal(resp); err == nil {
			if err := h.cache.Set(r.Context(), cacheKey, body, h.cacheTTL); err != nil {
				h.logger.Warn().Err(err).Msg("Failed to cache match response")
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// serveCached replays a cached response body, refreshing its request id.
func (h *MatchHandler) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	if h.cache == nil {
		return false
	}
	body, err := h.cache.Get(r.Context(), key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			h.logger.Warn().Err(err).Msg("Response cache read failed")
		}
		return false
	}
	var resp MatchResponseDTO
	if err := json.Unmarshal(body, &resp); err != nil {
		return false
	}
	resp.RequestID = uuid.NewString()
	writeJSON(w, http.StatusOK, resp)
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{"error": message}
	if detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, status, resp)
}
