package flows

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"diagnostics-backend/internal/flows/engine"
	"diagnostics-backend/internal/shared/server/middleware"
	"diagnostics-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches flow authoring routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/flows", h.create)
	rg.GET("/flows", h.list)
	rg.GET("/flows/lookup", h.lookup)
	rg.GET("/flows/:id", h.get)
	rg.PUT("/flows/:id", h.update)
	rg.DELETE("/flows/:id", h.remove)
}

type createFlowRequest struct {
	Tree engine.Tree `json:"tree" binding:"required"`
}

func (h *Handler) create(c *gin.Context) {
	var req createFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	flow, err := h.Svc.Create(c.Request.Context(), CreateInput{
		Tree:      req.Tree,
		CreatedBy: middleware.UserIDFromContext(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrConflict):
			respond.Error(c, http.StatusConflict, "conflict", "a flow already serves this problem", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create flow", nil)
		}
		return
	}

	c.Set("flowId", flow.ID)
	respond.JSON(c, http.StatusCreated, toResponse(flow))
}

func (h *Handler) get(c *gin.Context) {
	flow, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "flow not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch flow", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(flow))
}

func (h *Handler) lookup(c *gin.Context) {
	flow, err := h.Svc.Lookup(c.Request.Context(), c.Query("serviceCategory"), c.Query("problemName"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "no flow serves this problem", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to look up flow", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(flow))
}

func (h *Handler) list(c *gin.Context) {
	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	list, err := h.Svc.List(c.Request.Context(), c.Query("serviceCategory"), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list flows", nil)
		return
	}

	resp := make([]FlowSummary, 0, len(list))
	for _, flow := range list {
		resp = append(resp, toSummary(flow))
	}
	respond.JSON(c, http.StatusOK, resp)
}

type updateFlowRequest struct {
	Tree engine.Tree `json:"tree" binding:"required"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	flow, err := h.Svc.Update(c.Request.Context(), c.Param("id"), req.Tree)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "flow not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update flow", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(flow))
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "flow not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete flow", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}
