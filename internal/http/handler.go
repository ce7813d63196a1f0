package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"plate-registry/internal/http/middleware"
	"plate-registry/internal/service"
	"plate-registry/internal/transfer"
)

type Handler struct {
	plateService *service.PlateService
	bridge       *transfer.Bridge
	log          zerolog.Logger
}

func NewHandler(plateService *service.PlateService, bridge *transfer.Bridge, log zerolog.Logger) *Handler {
	return &Handler{
		plateService: plateService,
		bridge:       bridge,
		log:          log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := r.Group("/")
	protected.Use(authMiddleware)

	plates := protected.Group("/plates")
	{
		plates.GET("", h.searchPlates)
		plates.POST("", h.registerPlate)
		plates.GET("/lookup", h.lookupPlate)
		plates.GET("/count", h.countPlates)
		plates.PUT("/:id", h.updatePlate)
		plates.DELETE("/:id", h.deletePlate)
		plates.DELETE("", h.clearPlates)
		plates.POST("/import", h.importPlates)
		plates.GET("/export", h.exportPlates)
		plates.POST("/snapshot", h.snapshotPlates)
	}
}

func (h *Handler) searchPlates(c *gin.Context) {
	term := strings.TrimSpace(c.Query("query"))

	records, err := h.plateService.Search(c.Request.Context(), term)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(records))
}

func (h *Handler) lookupPlate(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("plate"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, errorResponse("plate query parameter required"))
		return
	}

	rec, err := h.plateService.FindByIdentity(c.Request.Context(), raw)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, errorResponse("plate not registered"))
		return
	}

	c.JSON(http.StatusOK, successResponse(rec))
}

func (h *Handler) countPlates(c *gin.Context) {
	total := h.plateService.Count(c.Request.Context())
	c.JSON(http.StatusOK, successResponse(gin.H{"count": total}))
}

func (h *Handler) registerPlate(c *gin.Context) {
	var req struct {
		Plate       string `json:"plate" binding:"required"`
		Company     string `json:"company"`
		Association string `json:"association"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	rec, err := h.plateService.Register(c.Request.Context(), service.RegisterInput{
		Plate:       req.Plate,
		Company:     req.Company,
		Association: req.Association,
		Actor:       middleware.Actor(c),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(rec))
}

func (h *Handler) updatePlate(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		h.handleError(c, fmt.Errorf("%w: record id", service.ErrInvalidInput))
		return
	}

	var req struct {
		Plate       string `json:"plate" binding:"required"`
		Company     string `json:"company"`
		Association string `json:"association"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	rec, err := h.plateService.Update(c.Request.Context(), id, service.UpdateInput{
		Plate:       req.Plate,
		Company:     req.Company,
		Association: req.Association,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(rec))
}

func (h *Handler) deletePlate(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		h.handleError(c, fmt.Errorf("%w: record id", service.ErrInvalidInput))
		return
	}

	if err := h.plateService.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) clearPlates(c *gin.Context) {
	if err := h.plateService.ClearAll(c.Request.Context()); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"message": "all records removed"}))
}

func (h *Handler) importPlates(c *gin.Context) {
	rows, err := transfer.ReadRows(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse("no usable rows in upload"))
		return
	}

	source := strings.TrimSpace(c.Query("source"))
	if source == "" {
		source = "upload"
	}
	skipDuplicates := c.DefaultQuery("skip_duplicates", "true") != "false"

	summary := h.bridge.Import(c.Request.Context(), rows, middleware.Actor(c), source, skipDuplicates)
	c.JSON(http.StatusOK, successResponse(summary))
}

func (h *Handler) exportPlates(c *gin.Context) {
	records, err := h.bridge.Export(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	filename := fmt.Sprintf("plates_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := transfer.WriteRecords(c.Writer, records); err != nil {
		h.log.Error().Err(err).Msg("export write failed")
	}
}

func (h *Handler) snapshotPlates(c *gin.Context) {
	n, err := h.bridge.Snapshot(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"records": n}))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidPlate):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrDuplicatePlate):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrBackendUnavailable):
		c.JSON(http.StatusServiceUnavailable, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
