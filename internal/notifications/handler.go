package notifications

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

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

// RegisterRoutes attaches notification routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.list)
	rg.GET("/notifications/unread-count", h.unreadCount)
	rg.POST("/notifications/:id/read", h.markRead)
}

type notificationResponse struct {
	NotificationID string            `json:"notificationId"`
	Category       Category          `json:"category"`
	GroupKey       string            `json:"groupKey,omitempty"`
	Title          string            `json:"title"`
	Body           string            `json:"body,omitempty"`
	Deliveries     []ChannelDelivery `json:"deliveries"`
	Read           bool              `json:"read"`
	ReadAt         *time.Time        `json:"readAt,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

func toResponse(n Notification) notificationResponse {
	return notificationResponse{
		NotificationID: n.ID,
		Category:       n.Category,
		GroupKey:       n.GroupKey,
		Title:          n.Title,
		Body:           n.Body,
		Deliveries:     n.Deliveries,
		Read:           n.Read,
		ReadAt:         n.ReadAt,
		CreatedAt:      n.CreatedAt,
	}
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
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list notifications", nil)
		return
	}

	resp := make([]notificationResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, toResponse(n))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) unreadCount(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	count, err := h.Svc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to count notifications", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"unread": count})
}

func (h *Handler) markRead(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	err := h.Svc.MarkRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "notification not found", nil)
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "notification belongs to another user", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to mark read", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}
