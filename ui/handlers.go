package ui

import (
	"net/http"
	"strconv"

	"segstats/app"
	"segstats/domain/core"
	"segstats/domain/stats"
	"segstats/internal"
	apperrors "segstats/internal/errors"

	"github.com/gin-gonic/gin"
)

// AnalysisHandler handles the analysis endpoints
type AnalysisHandler struct {
	service AnalysisService
	logger  *internal.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service AnalysisService, logger *internal.Logger) *AnalysisHandler {
	return &AnalysisHandler{service: service, logger: logger}
}

// Columns lists the loaded table's columns
func (h *AnalysisHandler) Columns() gin.HandlerFunc {
	return func(c *gin.Context) {
		cols, err := h.service.Columns(c.Request.Context())
		if err != nil {
			h.respondError(c, "columns", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"columns": cols})
	}
}

// Segments lists the selectable segments, whole population first
func (h *AnalysisHandler) Segments() gin.HandlerFunc {
	return func(c *gin.Context) {
		keys, err := h.service.Segments(c.Request.Context())
		if err != nil {
			h.respondError(c, "segments", err)
			return
		}
		segments := append([]core.SegmentKey{core.AllSegments}, keys...)
		c.JSON(http.StatusOK, gin.H{"segments": segments})
	}
}

// Shape runs the normality battery: ?segment=&alternative=
func (h *AnalysisHandler) Shape() gin.HandlerFunc {
	return func(c *gin.Context) {
		alt, err := stats.ParseAlternative(c.Query("alternative"))
		if err != nil {
			h.respondError(c, "shape", err)
			return
		}
		segment := segmentParam(c)
		report, err := h.service.Shape(c.Request.Context(), segment, alt)
		if err != nil {
			h.respondError(c, "shape", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"segment": segment, "alternative": alt, "results": report})
	}
}

// Variance runs the balanced variance-equality test: ?segment=&group=&seed=
func (h *AnalysisHandler) Variance() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := groupRequest(c)
		if err != nil {
			h.respondError(c, "variance", err)
			return
		}
		results, err := h.service.Variance(c.Request.Context(), req)
		if err != nil {
			h.respondError(c, "variance", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"segment": req.Segment, "results": results})
	}
}

// Ranks runs the rank-sum test: ?segment=&group=
func (h *AnalysisHandler) Ranks() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := groupRequest(c)
		if err != nil {
			h.respondError(c, "ranks", err)
			return
		}
		results, err := h.service.Ranks(c.Request.Context(), req)
		if err != nil {
			h.respondError(c, "ranks", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"segment": req.Segment, "results": results})
	}
}

// Association runs the chi-square battery: ?segment=&target=&sort=strength
func (h *AnalysisHandler) Association() gin.HandlerFunc {
	return func(c *gin.Context) {
		order := c.DefaultQuery("sort", "input")
		if order != "input" && order != "strength" {
			h.respondError(c, "association", apperrors.InvalidInput("sort must be input or strength"))
			return
		}
		segment := segmentParam(c)
		results, err := h.service.Association(c.Request.Context(), segment, c.Query("target"))
		if err != nil {
			h.respondError(c, "association", err)
			return
		}
		if order == "strength" {
			results = stats.SortByStrength(results)
		}
		c.JSON(http.StatusOK, gin.H{"segment": segment, "results": results})
	}
}

// Summary reports the headline metrics of a segment: ?segment=
func (h *AnalysisHandler) Summary() gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := h.service.Summary(c.Request.Context(), segmentParam(c))
		if err != nil {
			h.respondError(c, "summary", err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// Report runs every analysis for every segment: ?alternative=&seed=&within=
func (h *AnalysisHandler) Report() gin.HandlerFunc {
	return func(c *gin.Context) {
		alt, err := stats.ParseAlternative(c.Query("alternative"))
		if err != nil {
			h.respondError(c, "report", err)
			return
		}
		seed, err := seedParam(c)
		if err != nil {
			h.respondError(c, "report", err)
			return
		}
		report, err := h.service.Report(c.Request.Context(), app.ReportRequest{
			Alternative:       alt,
			Seed:              seed,
			WithinGroupColumn: c.Query("within"),
		})
		if err != nil {
			h.respondError(c, "report", err)
			return
		}
		h.logger.Info("[API] Report %s: %d segments in %dms", report.RunID, len(report.Segments), report.RuntimeMs)
		c.JSON(http.StatusOK, report)
	}
}

func (h *AnalysisHandler) respondError(c *gin.Context, endpoint string, err error) {
	appErr := apperrors.FromDomain(err)
	status := apperrors.HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("[API] %s failed: %v", endpoint, err)
	} else {
		h.logger.Warn("[API] %s rejected (%s): %v", endpoint, appErr.Code, err)
	}
	c.JSON(status, gin.H{"error": appErr.Message, "code": appErr.Code})
}

func segmentParam(c *gin.Context) core.SegmentKey {
	return core.SegmentKey(c.DefaultQuery("segment", string(core.AllSegments)))
}

func seedParam(c *gin.Context) (*int64, error) {
	raw := c.Query("seed")
	if raw == "" {
		return nil, nil
	}
	seed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperrors.InvalidInput("seed must be an integer")
	}
	return &seed, nil
}

func groupRequest(c *gin.Context) (app.GroupRequest, error) {
	seed, err := seedParam(c)
	if err != nil {
		return app.GroupRequest{}, err
	}
	return app.GroupRequest{
		Segment:     segmentParam(c),
		GroupColumn: c.Query("group"),
		Seed:        seed,
	}, nil
}
