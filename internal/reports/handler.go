package reports

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arvindh25/college-event-backend/middleware"
)

type Handler struct {
	Svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{Svc: svc}
}

// Attendance godoc
// @Summary Attendance report, JSON or downloadable export
// @Tags reports
// @Security BearerAuth
// @Param event_ref query string false "filter by event ref"
// @Param from_date query string false "YYYY-MM-DD"
// @Param to_date query string false "YYYY-MM-DD, inclusive"
// @Param format query string false "csv or excel; omit for JSON"
// @Router /reports/attendance [get]
func (h *Handler) Attendance(c *gin.Context) {
	access, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req AttendanceReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Format == "" {
		rows, err := h.Svc.AttendanceReport(req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rows": rows, "total": len(rows)})
		return
	}

	userID := access.UserID
	data, filename, contentType, err := h.Svc.ExportAttendanceReport(c.Request.Context(), req, &userID, c.ClientIP())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeDownload(c, data, filename, contentType)
}

// EventSummary godoc
// @Summary Per-event registration and attendance roll-up
// @Tags reports
// @Security BearerAuth
// @Param status query string false "filter by event status"
// @Param category query string false "filter by category"
// @Param format query string false "csv or excel; omit for JSON"
// @Router /reports/event-summary [get]
func (h *Handler) EventSummary(c *gin.Context) {
	access, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req EventSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Format == "" {
		rows, err := h.Svc.EventSummary(req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rows": rows, "total": len(rows)})
		return
	}

	userID := access.UserID
	data, filename, contentType, err := h.Svc.ExportEventSummary(c.Request.Context(), req, &userID, c.ClientIP())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeDownload(c, data, filename, contentType)
}

func writeDownload(c *gin.Context, data []byte, filename, contentType string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}
