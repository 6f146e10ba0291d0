package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/Priscasantos/landagri-b-api/internal/errors"
	"github.com/Priscasantos/landagri-b-api/internal/jsonc"
	"github.com/Priscasantos/landagri-b-api/internal/middleware"
	"github.com/Priscasantos/landagri-b-api/internal/models"
	"github.com/Priscasantos/landagri-b-api/internal/services"
)

// EngineHandler exposes the engine's query API over HTTP.
type EngineHandler struct {
	service services.EngineService
	paths   services.CatalogPaths
}

// NewEngineHandler creates an EngineHandler. paths are the catalog locations
// used by the reload endpoint.
func NewEngineHandler(service services.EngineService, paths services.CatalogPaths) *EngineHandler {
	return &EngineHandler{
		service: service,
		paths:   paths,
	}
}

// ListInitiativesRequest represents the query parameters for the initiative
// list endpoint.
type ListInitiativesRequest struct {
	Scope    string `form:"scope" binding:"omitempty,oneof=Global Regional National Other global regional national other"`
	Provider string `form:"provider"`
}

// InitiativesResponse represents the initiative list response.
type InitiativesResponse struct {
	Initiatives []models.Initiative `json:"initiatives"`
	Count       int                 `json:"count"`
}

// SpatialCoverageRequest represents the query parameters for the spatial
// coverage endpoint. Crops and regions are comma-separated lists.
type SpatialCoverageRequest struct {
	Crops   string `form:"crops"`
	Regions string `form:"regions"`
	By      string `form:"by" binding:"omitempty,oneof=state region"`
}

// SensorsResponse represents the sensor catalog response.
type SensorsResponse struct {
	Sensors []models.SensorRecord `json:"sensors"`
	Count   int                   `json:"count"`
}

// ListInitiatives handles GET /api/v1/initiatives.
func (h *EngineHandler) ListInitiatives(c *gin.Context) {
	var req ListInitiativesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	initiatives, err := h.service.ListInitiatives(services.InitiativeFilter{
		Scope:    req.Scope,
		Provider: req.Provider,
	})
	if err != nil {
		h.queryError(c, err, "Failed to list initiatives")
		return
	}

	c.JSON(http.StatusOK, InitiativesResponse{
		Initiatives: initiatives,
		Count:       len(initiatives),
	})
}

// GetTemporalCoverage handles GET /api/v1/initiatives/:id/temporal-coverage.
func (h *EngineHandler) GetTemporalCoverage(c *gin.Context) {
	id := c.Param("id")

	cov, err := h.service.GetTemporalCoverage(id)
	if err != nil {
		if errors.Is(err, services.ErrInitiativeNotFound) {
			apierrors.NotFound(c, "No initiative with id "+id)
			return
		}
		h.queryError(c, err, "Failed to derive temporal coverage")
		return
	}

	c.JSON(http.StatusOK, cov)
}

// GetSpatialCoverage handles GET /api/v1/coverage/spatial.
func (h *EngineHandler) GetSpatialCoverage(c *gin.Context) {
	var req SpatialCoverageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	result, err := h.service.GetSpatialCoverage(services.SpatialParams{
		Crops:   splitList(req.Crops),
		Regions: splitList(req.Regions),
		By:      req.By,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidRegion) || errors.Is(err, services.ErrInvalidLevel) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		h.queryError(c, err, "Failed to compute spatial coverage")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListSensors handles GET /api/v1/sensors.
func (h *EngineHandler) ListSensors(c *gin.Context) {
	sensors, err := h.service.ListSensors()
	if err != nil {
		h.queryError(c, err, "Failed to list sensors")
		return
	}

	c.JSON(http.StatusOK, SensorsResponse{
		Sensors: sensors,
		Count:   len(sensors),
	})
}

// GetSensor handles GET /api/v1/sensors/:key.
func (h *EngineHandler) GetSensor(c *gin.Context) {
	key := c.Param("key")

	sensor, err := h.service.GetSensor(key)
	if err != nil {
		if errors.Is(err, services.ErrSensorNotFound) {
			apierrors.NotFound(c, "No sensor with key "+key)
			return
		}
		h.queryError(c, err, "Failed to look up sensor")
		return
	}

	c.JSON(http.StatusOK, sensor)
}

// GetSummaryStats handles GET /api/v1/stats/summary.
func (h *EngineHandler) GetSummaryStats(c *gin.Context) {
	summary, err := h.service.GetSummaryStats()
	if err != nil {
		h.queryError(c, err, "Failed to compute summary statistics")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Reload handles POST /api/v1/reload. A failed reload leaves the previously
// published snapshot serving.
func (h *EngineHandler) Reload(c *gin.Context) {
	if log := middleware.GetLogger(c); log != nil {
		log.Info("Reload requested", map[string]interface{}{
			"initiatives": h.paths.Initiatives,
		})
	}

	result, err := h.service.Reload(c.Request.Context(), h.paths)
	if err != nil {
		var syntaxErr *jsonc.SyntaxError
		if errors.As(err, &syntaxErr) {
			apierrors.MalformedConfig(c, err)
			return
		}
		apierrors.InternalServerError(c, "Reload failed", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *EngineHandler) queryError(c *gin.Context, err error, message string) {
	if errors.Is(err, services.ErrNotLoaded) {
		apierrors.NotLoaded(c)
		return
	}
	apierrors.InternalServerError(c, message, err)
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
