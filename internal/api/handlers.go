package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/example/algoscope/internal/curriculum"
	"github.com/example/algoscope/internal/invariants"
	"github.com/example/algoscope/internal/progress"
	"github.com/example/algoscope/internal/progression"
	"github.com/example/algoscope/internal/simulation"
	"github.com/example/algoscope/pkg/models"
)

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers serves the progress, trace and invariant endpoints.
type Handlers struct {
	svc        *progress.Service
	index      *curriculum.Index
	hierarchy  *curriculum.Hierarchy
	tracks     []models.Track
	invariants *invariants.Registry
	dueLimit   int
	pinger     Pinger
	logger     *zap.Logger
}

// NewHandlers wires the handlers to their dependencies.
func NewHandlers(svc *progress.Service, index *curriculum.Index, tracks []models.Track, reg *invariants.Registry, dueLimit int, pinger Pinger, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = invariants.Default()
	}
	if index == nil {
		index = curriculum.NewIndex(nil, tracks)
	}
	return &Handlers{
		svc:        svc,
		index:      index,
		hierarchy:  curriculum.DefaultHierarchy(),
		tracks:     tracks,
		invariants: reg,
		dueLimit:   dueLimit,
		pinger:     pinger,
		logger:     logger,
	}
}

// RegisterRoutes registers the /api endpoints on rg.
//
//	POST /api/progress/update
//	GET  /api/progress/:userId
//	GET  /api/progress/:userId/summary
//	GET  /api/progress/:userId/due
//	GET  /api/progress/:userId/tracks
//	GET  /api/progress/:userId/modules/:moduleId
//	GET  /api/modules
//	GET  /api/modules/:id
//	POST /api/trace
//	GET  /api/trace/variants
//	GET  /api/invariants/:id
func (h *Handlers) RegisterRoutes(rg *gin.RouterGroup) {
	p := rg.Group("/progress")
	p.POST("/update", h.HandleUpdateProgress)
	p.GET("/:userId", h.HandleGetUserProgress)
	p.GET("/:userId/summary", h.HandleSummary)
	p.GET("/:userId/due", h.HandleDue)
	p.GET("/:userId/tracks", h.HandleTracks)
	p.GET("/:userId/modules/:moduleId", h.HandleModuleProgress)

	rg.GET("/modules", h.HandleModules)
	rg.GET("/modules/:id", h.HandleModule)

	rg.POST("/trace", h.HandleTrace)
	rg.GET("/trace/variants", h.HandleVariants)
	rg.GET("/invariants/:id", h.HandleInvariant)
}

func (h *Handlers) requestLogger(c *gin.Context, handler string) *zap.Logger {
	return h.logger.With(zap.String("request_id", c.GetString(requestIDKey)), zap.String("handler", handler))
}

// HandleUpdateProgress handles POST /api/progress/update.
func (h *Handlers) HandleUpdateProgress(c *gin.Context) {
	logger := h.requestLogger(c, "HandleUpdateProgress")

	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, bindError(err, "userId and moduleId are required"))
		return
	}

	rec, err := h.svc.SubmitUpdate(c.Request.Context(), req.UserID, req.ModuleID, req.update())
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HandleGetUserProgress handles GET /api/progress/:userId.
func (h *Handlers) HandleGetUserProgress(c *gin.Context) {
	logger := h.requestLogger(c, "HandleGetUserProgress")

	recs, err := h.svc.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// HandleSummary handles GET /api/progress/:userId/summary.
func (h *Handlers) HandleSummary(c *gin.Context) {
	logger := h.requestLogger(c, "HandleSummary")
	userID := c.Param("userId")

	cats, err := h.svc.Summary(c.Request.Context(), userID, h.index.Groups())
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, SummaryResponse{UserID: userID, Categories: cats})
}

// HandleDue handles GET /api/progress/:userId/due. An optional limit query
// parameter overrides the configured default.
func (h *Handlers) HandleDue(c *gin.Context) {
	logger := h.requestLogger(c, "HandleDue")
	userID := c.Param("userId")

	limit := h.dueLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "limit must be a non-negative integer",
				Code:  "INVALID_REQUEST",
			})
			return
		}
		limit = n
	}

	due, err := h.svc.Due(c.Request.Context(), userID, limit)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, DueResponse{UserID: userID, Modules: due})
}

// HandleTracks handles GET /api/progress/:userId/tracks.
func (h *Handlers) HandleTracks(c *gin.Context) {
	logger := h.requestLogger(c, "HandleTracks")
	userID := c.Param("userId")

	conf, err := h.svc.ConfidenceLookup(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, TracksResponse{
		UserID: userID,
		Tracks: progression.Evaluate(h.tracks, progression.MapLookup(conf)),
	})
}

// HandleModuleProgress handles GET /api/progress/:userId/modules/:moduleId.
func (h *Handlers) HandleModuleProgress(c *gin.Context) {
	logger := h.requestLogger(c, "HandleModuleProgress")
	moduleID := c.Param("moduleId")

	rec, err := h.svc.Get(c.Request.Context(), c.Param("userId"), moduleID)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, ModuleProgressResponse{Title: h.index.Title(moduleID), Record: rec})
}

// HandleModules handles GET /api/modules.
func (h *Handlers) HandleModules(c *gin.Context) {
	ids := h.index.ModuleIDs()
	out := make([]curriculum.Entry, 0, len(ids))
	for _, id := range ids {
		e, _ := h.index.Lookup(id)
		out = append(out, e)
	}
	c.JSON(http.StatusOK, ModulesResponse{Modules: out})
}

// HandleModule handles GET /api/modules/:id. Modules outside the catalog
// are still answered when the pattern hierarchy knows them.
func (h *Handlers) HandleModule(c *gin.Context) {
	id := c.Param("id")

	entry, inIndex := h.index.Lookup(id)
	info, inHierarchy := h.hierarchy.Pattern(id)
	if !inIndex && !inHierarchy {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: fmt.Sprintf("unknown module %q", id),
			Code:  "NOT_FOUND",
		})
		return
	}

	resp := ModuleResponse{Entry: entry}
	if !inIndex {
		resp.Entry = curriculum.Entry{ModuleID: id, Title: info.Pattern.Title}
	}
	if inHierarchy {
		resp.Pattern = &info
		if resp.Title == id {
			resp.Title = info.Pattern.Title
		}
	}
	c.JSON(http.StatusOK, resp)
}

// HandleTrace handles POST /api/trace.
func (h *Handlers) HandleTrace(c *gin.Context) {
	logger := h.requestLogger(c, "HandleTrace")

	var req TraceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, bindError(err, "variant is required"))
		return
	}
	if !simulation.Supported(req.Variant) {
		h.writeError(c, logger, fmt.Errorf("%w: %q", simulation.ErrUnsupportedVariant, req.Variant))
		return
	}
	if len(req.Array) > MaxTraceInput {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("array exceeds %d elements", MaxTraceInput),
			Code:  "INVALID_REQUEST",
		})
		return
	}

	trace, err := simulation.Generate(req.Variant, req.Array, simulation.Params{Target: req.Target, K: req.K})
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	traceStepsGenerated.WithLabelValues(req.Variant).Observe(float64(trace.Len()))

	resp := TraceResponse{Trace: trace}
	if d, ok := h.invariants.Lookup(req.Variant); ok {
		resp.Invariant = &d
	}
	c.JSON(http.StatusOK, resp)
}

// HandleVariants handles GET /api/trace/variants.
func (h *Handlers) HandleVariants(c *gin.Context) {
	c.JSON(http.StatusOK, VariantsResponse{Variants: simulation.Variants()})
}

// HandleInvariant handles GET /api/invariants/:id.
func (h *Handlers) HandleInvariant(c *gin.Context) {
	id := c.Param("id")
	d, ok := h.invariants.Lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: fmt.Sprintf("no invariant for %q", id),
			Code:  "NOT_FOUND",
		})
		return
	}
	c.JSON(http.StatusOK, d)
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(c *gin.Context) {
	if h.pinger != nil {
		if err := h.pinger.Ping(c.Request.Context()); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// writeError maps service errors onto status codes. Storage failures are
// reported with a generic message.
func (h *Handlers) writeError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, progress.ErrInvalidUpdate):
		logger.Warn("invalid update", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
	case errors.Is(err, progress.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"})
	case errors.Is(err, simulation.ErrUnsupportedVariant):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "UNSUPPORTED_VARIANT"})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Server error", Code: "STORAGE_ERROR"})
	}
}

// bindError separates missing or out-of-range fields from bodies that are
// not valid JSON for the request type.
func bindError(err error, missing string) ErrorResponse {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return ErrorResponse{Error: missing, Code: "INVALID_REQUEST"}
	}
	return ErrorResponse{Error: "malformed request body: " + err.Error(), Code: "INVALID_REQUEST"}
}
