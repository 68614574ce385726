package registration

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arvindh25/college-event-backend/middleware"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// ===========================
// 🟢 POST /events/:ref/register
func (h *Handler) Register(c *gin.Context) {
	access, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	reg, err := h.Svc.Register(c.Request.Context(), c.Param("ref"), access.User, c.ClientIP())
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrAlreadyRegistered) || errors.Is(err, ErrEventFull) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"registration": reg})
}

// ===========================
// 🟢 GET /registrations/my
func (h *Handler) ListMine(c *gin.Context) {
	access, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	regs, err := h.Svc.ListMine(c.Request.Context(), access.User)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"registrations": regs})
}

// ===========================
// 🟢 GET /events/:ref/registrations
func (h *Handler) ListForEvent(c *gin.Context) {
	access, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	regs, err := h.Svc.ListForEvent(c.Request.Context(), c.Param("ref"), access.User)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"registrations": regs})
}

// ===========================
// 🟢 DELETE /registrations/:ref
func (h *Handler) Cancel(c *gin.Context) {
	access, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.Svc.Cancel(c.Request.Context(), c.Param("ref"), access.User, c.ClientIP()); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrAttendanceRecorded) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "registration removed"})
}
