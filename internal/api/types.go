package api

import (
	"github.com/example/algoscope/internal/curriculum"
	"github.com/example/algoscope/internal/invariants"
	"github.com/example/algoscope/internal/progress"
	"github.com/example/algoscope/internal/progression"
	"github.com/example/algoscope/internal/simulation"
	"github.com/example/algoscope/pkg/models"
)

// MaxTraceInput caps the array length accepted by POST /api/trace.
const MaxTraceInput = 512

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code.
	Code string `json:"code,omitempty"`
}

// UpdateProgressRequest is the body of POST /api/progress/update.
type UpdateProgressRequest struct {
	UserID     string                  `json:"userId" binding:"required"`
	ModuleID   string                  `json:"moduleId" binding:"required"`
	Scores     *models.ScoreUpdate     `json:"scores,omitempty"`
	Confidence *float64                `json:"confidence,omitempty"`
	SubPattern *models.SubPatternScore `json:"subPattern,omitempty"`
}

func (r UpdateProgressRequest) update() models.ProgressUpdate {
	return models.ProgressUpdate{Scores: r.Scores, Confidence: r.Confidence, SubPattern: r.SubPattern}
}

// ModuleProgressResponse is returned by GET /api/progress/:userId/modules/:moduleId.
type ModuleProgressResponse struct {
	Title  string                 `json:"title"`
	Record *models.ProgressRecord `json:"record"`
}

// ModuleResponse describes one curriculum module.
type ModuleResponse struct {
	curriculum.Entry
	Pattern *curriculum.PatternInfo `json:"pattern,omitempty"`
}

// ModulesResponse is returned by GET /api/modules.
type ModulesResponse struct {
	Modules []curriculum.Entry `json:"modules"`
}

// SummaryResponse is returned by GET /api/progress/:userId/summary.
type SummaryResponse struct {
	UserID     string                     `json:"userId"`
	Categories []progress.CategorySummary `json:"categories"`
}

// DueResponse is returned by GET /api/progress/:userId/due.
type DueResponse struct {
	UserID  string               `json:"userId"`
	Modules []progress.DueModule `json:"modules"`
}

// TracksResponse is returned by GET /api/progress/:userId/tracks.
type TracksResponse struct {
	UserID string                    `json:"userId"`
	Tracks []progression.TrackStatus `json:"tracks"`
}

// TraceRequest is the body of POST /api/trace.
type TraceRequest struct {
	Variant string `json:"variant" binding:"required"`
	Array   []int  `json:"array"`
	Target  int    `json:"target"`
	K       int    `json:"k"`
}

// TraceResponse is a generated trace plus the invariant it illustrates.
type TraceResponse struct {
	simulation.Trace
	Invariant *invariants.Descriptor `json:"invariant,omitempty"`
}

// VariantsResponse is returned by GET /api/trace/variants.
type VariantsResponse struct {
	Variants []string `json:"variants"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
