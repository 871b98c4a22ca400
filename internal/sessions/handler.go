package sessions

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"diagnostics-backend/internal/flows"
	"diagnostics-backend/internal/flows/engine"
	"diagnostics-backend/internal/shared/server/middleware"
	"diagnostics-backend/internal/shared/server/respond"
	"diagnostics-backend/internal/shared/telemetry"
)

const maxPhotoSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches diagnostic session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/diagnostics/sessions", h.start)
	rg.GET("/diagnostics/sessions", h.list)
	rg.GET("/diagnostics/sessions/:id", h.get)
	rg.POST("/diagnostics/sessions/:id/answers", h.answer)
	rg.POST("/diagnostics/sessions/:id/answers/photo", h.answerPhoto)
	rg.POST("/diagnostics/sessions/:id/resolve", h.resolve)
}

type startRequest struct {
	ServiceCategory string `json:"serviceCategory" binding:"required"`
	ProblemName     string `json:"problemName" binding:"required"`
}

func (h *Handler) start(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "serviceCategory and problemName are required", nil)
		return
	}

	session, first, err := h.Svc.Start(c.Request.Context(), userID, req.ServiceCategory, req.ProblemName)
	if err != nil {
		h.fail(c, err, "failed to start diagnostic")
		return
	}

	c.Set("sessionId", session.ID)
	respond.JSON(c, http.StatusCreated, toResponse(session, &first))
}

type answerRequest struct {
	QuestionID string   `json:"questionId" binding:"required"`
	Values     []string `json:"values" binding:"required"`
}

func (h *Handler) answer(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "questionId and values are required", nil)
		return
	}

	step, err := h.Svc.Answer(c.Request.Context(), userID, c.Param("id"), req.QuestionID, req.Values)
	if err != nil {
		h.fail(c, err, "failed to record answer")
		return
	}

	c.Set("sessionId", step.Session.ID)
	respond.JSON(c, http.StatusOK, toResponse(step.Session, step.Next))
}

func (h *Handler) answerPhoto(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoSize)

	questionID := c.PostForm("questionId")
	if questionID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "questionId is required", nil)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "photo file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read photo", nil)
		return
	}
	defer file.Close()

	step, err := h.Svc.AnswerPhoto(c.Request.Context(), userID, c.Param("id"), questionID, fileHeader.Filename, file)
	if err != nil {
		h.fail(c, err, "failed to record photo answer")
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(step.Session, step.Next))
}

func (h *Handler) resolve(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	step, err := h.Svc.Resolve(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to resolve session")
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(step.Session, nil))
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	session, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to fetch session")
		return
	}

	var question *engine.Question
	respond.JSON(c, http.StatusOK, toResponse(session, question))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

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

	list, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.fail(c, err, "failed to list sessions")
		return
	}

	resp := make([]SessionResponse, 0, len(list))
	for _, session := range list {
		resp = append(resp, toResponse(session, nil))
	}
	respond.JSON(c, http.StatusOK, resp)
}

// fail maps service and engine errors onto HTTP responses. Malformed-tree
// errors are an operator problem: the end user sees a generic unavailable
// message while the defect is logged for the flow's administrator.
func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "session belongs to another user", nil)
	case errors.Is(err, ErrCompleted):
		respond.Error(c, http.StatusConflict, "already_completed", "session is already resolved", nil)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, engine.ErrInvalidAnswer):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, flows.ErrNotFound),
		errors.Is(err, engine.ErrDanglingReference), errors.Is(err, engine.ErrEmptyTree), errors.Is(err, engine.ErrInvalidTree):
		telemetry.Error("sessions.flow_misconfigured", map[string]any{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		respond.Error(c, http.StatusServiceUnavailable, "flow_unavailable", "this diagnostic is temporarily unavailable", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
