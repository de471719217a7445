package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/patterns"
	"github.com/okian/assessor/pkg/logger"
)

// detectRequest mirrors the OpenAPI schema for POST /patterns/detect.
type detectRequest struct {
	Code string `json:"code" validate:"required"`
}

type detectResponse struct {
	Violations    []patterns.Violation `json:"violations"`
	Count         int                  `json:"count"`
	PenaltyPoints float64              `json:"penalty_points"`
}

type rulesResponse struct {
	Enabled bool            `json:"enabled"`
	Count   int             `json:"count"`
	Rules   []patterns.Rule `json:"rules"`
}

// handleAssess handles POST /assess requests.
func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	const op = "api.assess"
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllow))
		return
	}
	var in model.AssessmentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := s.validate.StructCtx(r.Context(), in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", WrapKind(op, ErrValidation, describeValidation(err)))
		return
	}

	result, err := s.engine.Assess(r.Context(), in)
	if err != nil {
		s.log.Error(r.Context(), "assessment failed", logger.String("candidate_id", in.CandidateID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleDetect handles POST /patterns/detect requests.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	const op = "api.patterns_detect"
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllow))
		return
	}
	var req detectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := s.validate.StructCtx(r.Context(), req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", WrapKind(op, ErrValidation, describeValidation(err)))
		return
	}

	violations := s.engine.DetectPatternViolations(req.Code)
	if violations == nil {
		violations = []patterns.Violation{}
	}
	writeJSON(w, http.StatusOK, detectResponse{
		Violations:    violations,
		Count:         len(violations),
		PenaltyPoints: s.engine.CalculatePatternPenalty(violations),
	})
}

// handleRules handles GET /patterns requests.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	const op = "api.patterns"
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllow))
		return
	}
	rules := s.engine.Rules()
	writeJSON(w, http.StatusOK, rulesResponse{
		Enabled: s.engine.PatternChecksEnabled(),
		Count:   len(rules),
		Rules:   rules,
	})
}

// describeValidation flattens validator errors into "field: tag" pairs.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+": "+fe.Tag())
	}
	return errors.New(strings.Join(parts, ", "))
}
