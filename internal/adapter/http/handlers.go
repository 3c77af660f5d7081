// Package http exposes the pipeline API over chi. Submission is synchronous:
// the response carries the aggregated result of the whole run.
package http

import (
	"errors"
	"net/http"

	"github.com/Strob0t/TaskForge/internal/domain/contract"
	"github.com/Strob0t/TaskForge/internal/domain/pipeline"
	"github.com/Strob0t/TaskForge/internal/domain/plan"
	"github.com/Strob0t/TaskForge/internal/port/resultstore"
	"github.com/Strob0t/TaskForge/internal/resilience"
	"github.com/Strob0t/TaskForge/internal/service"
)

// Handlers holds the HTTP boundary's dependencies.
type Handlers struct {
	foreman *service.Foreman
	archive resultstore.Reader
	breaker *resilience.Breaker
}

// NewHandlers creates the API handler set. archive and breaker may be nil
// when the deployment runs without them.
func NewHandlers(foreman *service.Foreman, archive resultstore.Reader, breaker *resilience.Breaker) *Handlers {
	return &Handlers{foreman: foreman, archive: archive, breaker: breaker}
}

type submitPipelineRequest struct {
	TaskDescription string    `json:"task_description"`
	Constraints     []string  `json:"constraints,omitempty"`
	Plan            plan.Spec `json:"plan"`
}

// SubmitPipeline runs a pipeline to completion and returns its aggregated
// result. Plan construction failures are the caller's problem (400); admitted
// plans always produce a result, including partial and failed ones.
func (h *Handlers) SubmitPipeline(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSON[submitPipelineRequest](w, r)
	if !ok {
		return
	}
	if body.TaskDescription == "" {
		writeError(w, http.StatusBadRequest, "task_description is required")
		return
	}

	req := pipeline.NewRequest(body.TaskDescription, body.Constraints)
	res, err := h.foreman.Execute(r.Context(), req, body.Plan)
	if err != nil {
		writeError(w, badPlanStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetPipeline loads an archived pipeline result by run id.
func (h *Handlers) GetPipeline(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotImplemented, "result archive is not configured")
		return
	}
	runID := urlParam(r, "id")

	res, err := h.archive.GetResult(r.Context(), runID)
	if err != nil {
		writeDomainError(w, err, "pipeline run not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type capabilityInfo struct {
	Capability   string           `json:"capability"`
	Discriminant string           `json:"discriminant"`
	Input        []contract.Field `json:"input"`
	Variants     []string         `json:"variants"`
}

// ListCapabilities returns the static worker roster with its contracts.
func (h *Handlers) ListCapabilities(w http.ResponseWriter, _ *http.Request) {
	reg := h.foreman.Registry()
	out := make([]capabilityInfo, 0)
	for _, name := range reg.Capabilities() {
		c, _ := reg.Lookup(name)
		variants := make([]string, 0, len(c.Outputs))
		for _, v := range c.Outputs {
			variants = append(variants, v.Name)
		}
		out = append(out, capabilityInfo{
			Capability:   c.Capability,
			Discriminant: c.Discriminant,
			Input:        c.Input,
			Variants:     variants,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"capabilities": out})
}

// Health reports liveness plus the delegation circuit state.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{"status": "ok"}
	if h.breaker != nil {
		resp["delegation_circuit"] = h.breaker.State()
	}
	writeJSON(w, http.StatusOK, resp)
}

// badPlanStatus distinguishes construction errors from internal failures.
// Currently every Execute error is a construction error, kept as a seam for
// future internal error classes.
func badPlanStatus(err error) int {
	switch {
	case errors.Is(err, plan.ErrNoNodes),
		errors.Is(err, plan.ErrTooManyNodes),
		errors.Is(err, plan.ErrInvalidShape),
		errors.Is(err, plan.ErrSingleNodeCount),
		errors.Is(err, plan.ErrConditionalRequired),
		errors.Is(err, plan.ErrDuplicateNodeID),
		errors.Is(err, plan.ErrUnknownCapability),
		errors.Is(err, plan.ErrUnknownDependency),
		errors.Is(err, plan.ErrDependencyCycle),
		errors.Is(err, plan.ErrConditionSource):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
