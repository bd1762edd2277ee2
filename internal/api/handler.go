package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cropsight/cropsight/internal/analysis"
	"github.com/cropsight/cropsight/internal/geo"
	"github.com/cropsight/cropsight/internal/heatmap"
	"github.com/cropsight/cropsight/internal/imagery"
	"github.com/cropsight/cropsight/internal/index"
	"github.com/cropsight/cropsight/internal/notify"
	"github.com/cropsight/cropsight/internal/yield"
)

const (
	defaultSeriesDays = 90
	maxSeriesDays     = 366
)

type Handler struct {
	orchestrator *analysis.Orchestrator
	provider     imagery.Provider
	model        *yield.Model
	notifier     *notify.Notifier
}

func NewHandler(o *analysis.Orchestrator, p imagery.Provider, m *yield.Model, n *notify.Notifier) *Handler {
	return &Handler{
		orchestrator: o,
		provider:     p,
		model:        m,
		notifier:     n,
	}
}

// RegisterRoutes mounts the API. Middleware applies to the /api/v1 group
// only; /health stays unthrottled for probes.
func (h *Handler) RegisterRoutes(r *gin.Engine, middleware ...gin.HandlerFunc) {
	r.GET("/health", h.health)

	v1 := r.Group("/api/v1", middleware...)
	v1.GET("/indices", h.listIndices)
	v1.POST("/analysis", h.analyze)
	v1.POST("/yield", h.estimateYield)
	v1.POST("/heatmap", h.generateHeatmap)
	v1.POST("/crops/recommend", h.recommendCrop)
	v1.GET("/timeseries", h.timeseries)
	v1.POST("/timeseries", h.timeseries)
}

// fail maps orchestration errors onto status codes: bad input is 400,
// anything the provider caused is 502.
func (h *Handler) fail(c *gin.Context, err error) {
	var verr *geo.ValidationError
	var uerr *index.UnknownIndexError
	if errors.As(err, &verr) || errors.As(err, &uerr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

func (h *Handler) health(c *gin.Context) {
	profiles := h.model.Profiles()
	crops := make([]string, 0, len(profiles))
	for _, p := range profiles {
		crops = append(crops, p.Crop)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"availableCrops":    crops,
		"alertsEnabled":     h.notifier.Enabled(),
		"providerReachable": h.provider.Reachable(),
	})
}

func (h *Handler) listIndices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"indices": index.All()})
}

func (h *Handler) analyze(c *gin.Context) {
	var req analysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	geom, ring, err := req.geometry()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.All == (req.Index != "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "set either index or all"})
		return
	}

	if req.All {
		batch, err := h.orchestrator.All(c.Request.Context(), geom)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"results":  batch,
			"geometry": summarize(geom, ring),
		})
		return
	}

	result, err := h.orchestrator.One(c.Request.Context(), geom, strings.ToUpper(req.Index))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":   result,
		"geometry": summarize(geom, ring),
	})
}

func (h *Handler) estimateYield(c *gin.Context) {
	var req yieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	geom, ring, err := req.geometry()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batch, err := h.orchestrator.All(c.Request.Context(), geom)
	if err != nil {
		h.fail(c, err)
		return
	}

	// Failed and empty units are left out of the model input; the model
	// defaults them instead.
	report := h.model.Estimate(req.CropType, batch.NumericValues())

	if report.HealthStatus == yield.Poor {
		h.notifier.Publish(notify.Alert{
			CropType:       report.CropType,
			HealthStatus:   string(report.HealthStatus),
			EstimatedYield: report.EstimatedYield,
			WeightedScore:  report.WeightedScore,
			Timestamp:      time.Now().UTC(),
		})
	}

	resp := gin.H{
		"report":   report,
		"geometry": summarize(geom, ring),
	}
	if failed := batch.FailedIndexes(); len(failed) > 0 {
		resp["failedIndexes"] = failed
	}
	if req.DateRange != nil {
		resp["dateRange"] = req.DateRange
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) generateHeatmap(c *gin.Context) {
	var req heatmapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	geom, ring, err := req.geometry()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if ring == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "heatmap requires a polygon"})
		return
	}

	batch, err := h.orchestrator.All(c.Request.Context(), geom)
	if err != nil {
		h.fail(c, err)
		return
	}
	report := h.model.Estimate(req.CropType, batch.NumericValues())

	m, err := heatmap.Generate(ring, report.WeightedScore)
	if err != nil {
		h.fail(c, err)
		return
	}

	switch c.Query("format") {
	case "geojson":
		c.Header("Content-Type", "application/geo+json")
		c.JSON(http.StatusOK, heatmapFeatureCollection(m))
	case "png":
		var buf bytes.Buffer
		if err := heatmap.RenderPNG(&buf, ring, m, 0); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	default:
		c.JSON(http.StatusOK, gin.H{
			"heatmap":      m,
			"healthStatus": report.HealthStatus,
		})
	}
}

func (h *Handler) recommendCrop(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	geom, ring, err := req.geometry()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batch, err := h.orchestrator.All(c.Request.Context(), geom)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := gin.H{
		"recommendation": h.model.Recommend(batch.NumericValues()),
		"geometry":       summarize(geom, ring),
	}
	if req.DateRange != nil {
		resp["dateRange"] = req.DateRange
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) timeseries(c *gin.Context) {
	var req timeseriesRequest
	if c.Request.Method == http.MethodGet {
		req.Index = c.Query("index")
		lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
		lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
		if err1 != nil || err2 != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
			return
		}
		req.Point = &pointDTO{Lat: lat, Lng: lng}
		if d, err := strconv.Atoi(c.Query("days")); err == nil {
			req.Days = d
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Index == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index is required"})
		return
	}
	if req.Days <= 0 || req.Days > maxSeriesDays {
		req.Days = defaultSeriesDays
	}
	geom, _, err := req.geometry()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	series, err := h.orchestrator.Series(c.Request.Context(), geom, strings.ToUpper(req.Index), req.Days)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}
