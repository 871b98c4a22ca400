package analytics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

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

// RegisterRoutes attaches analytics routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analytics/summary", h.summary)
}

type snapshotResponse struct {
	Day              string `json:"day"`
	ServiceCategory  string `json:"serviceCategory"`
	SessionsStarted  int    `json:"sessionsStarted"`
	SessionsResolved int    `json:"sessionsResolved"`
	DIYResolved      int    `json:"diyResolved"`
	TechnicianRouted int    `json:"technicianRouted"`
	RoutineCount     int    `json:"routineCount"`
	UrgentCount      int    `json:"urgentCount"`
	EmergencyCount   int    `json:"emergencyCount"`
	CycleFallbacks   int    `json:"cycleFallbacks"`
}

func (h *Handler) summary(c *gin.Context) {
	days := 7
	if v := c.Query("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			days = parsed
		}
	}

	snapshots, err := h.Svc.Summary(c.Request.Context(), days)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load analytics", nil)
		return
	}

	resp := make([]snapshotResponse, 0, len(snapshots))
	for _, snap := range snapshots {
		resp = append(resp, snapshotResponse{
			Day:              snap.Day.UTC().Format(time.DateOnly),
			ServiceCategory:  snap.ServiceCategory,
			SessionsStarted:  snap.SessionsStarted,
			SessionsResolved: snap.SessionsResolved,
			DIYResolved:      snap.DIYResolved,
			TechnicianRouted: snap.TechnicianRouted,
			RoutineCount:     snap.RoutineCount,
			UrgentCount:      snap.UrgentCount,
			EmergencyCount:   snap.EmergencyCount,
			CycleFallbacks:   snap.CycleFallbacks,
		})
	}
	respond.JSON(c, http.StatusOK, resp)
}
