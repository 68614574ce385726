package auditlog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{Svc: svc}
}

// List godoc
// @Summary List audit log entries (admin)
// @Tags audit
// @Security BearerAuth
// @Param user_id query int false "filter by user"
// @Param event_id query int false "filter by event"
// @Param action query string false "filter by action"
// @Success 200 {object} map[string]interface{}
// @Router /admin/audit-logs [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	eventID, _ := strconv.ParseUint(c.Query("event_id"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := h.Svc.List(ListFilter{
		UserID:  uint(userID),
		EventID: uint(eventID),
		Action:  c.Query("action"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": items, "total": total})
}
