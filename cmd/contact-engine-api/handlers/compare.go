package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/spherical-ai/contact-engine/internal/compare"
	"github.com/spherical-ai/contact-engine/internal/observability"
	"github.com/spherical-ai/contact-engine/pkg/engine"
)

// CompareHandler serves record comparison requests.
type CompareHandler struct {
	logger *observability.Logger
	engine *engine.Engine
}

// NewCompareHandler creates a compare handler.
func NewCompareHandler(logger *observability.Logger, eng *engine.Engine) *CompareHandler {
	return &CompareHandler{logger: logger, engine: eng}
}

// CompareRequestDTO is the request body for POST /compare.
type CompareRequestDTO struct {
	RecordA compare.Record     `json:"recordA"`
	RecordB compare.Record     `json:"recordB"`
	Weights map[string]float64 `json:"weights,omitempty"`
	Explain bool               `json:"explain,omitempty"`
}

// CompareResponseDTO is the response for POST /compare.
type CompareResponseDTO struct {
	RequestID   string               `json:"requestId"`
	Score       float64              `json:"score"`
	Components  []compare.FieldScore `json:"components"`
	Explanation []string             `json:"explanation,omitempty"`
}

// Compare handles POST /api/v1/compare.
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.engine.Compare(req.RecordA, req.RecordB, compare.Options{
		Weights: req.Weights,
		Explain: req.Explain,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "comparison failed", err.Error())
		return
	}

	h.logger.Debug().
		Float64("score", result.Score).
		Int("components", len(result.Components)).
		Msg("Compared records")

	writeJSON(w, http.StatusOK, CompareResponseDTO{
		RequestID:   uuid.NewString(),
		Score:       result.Score,
		Components:  result.Components,
		Explanation: result.Explanation,
	})
}
