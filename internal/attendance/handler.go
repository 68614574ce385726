package attendance

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/arvindh25/college-event-backend/middleware"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// statusForErr maps the core's rejection reasons to HTTP codes. The
// services only return sentinels; all user-facing text lives here.
func statusForErr(err error) int {
	switch {
	case errors.Is(err, ErrEventNotFound), errors.Is(err, ErrStudentNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyMarked), errors.Is(err, ErrEventNotActive):
		return http.StatusConflict
	case errors.Is(err, ErrNotRegistered), errors.Is(err, ErrStudentRoleInvalid), errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidCredential), errors.Is(err, ErrInvalidMethod):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ===========================
// 🟢 POST /attendance/qr — self-scan or display-board scan
func (h *Handler) MarkQR(c *gin.Context) {
	access, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req QRMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DeviceInfo == "" {
		req.DeviceInfo = c.Request.UserAgent()
	}

	rec, err := h.Svc.MarkQR(c.Request.Context(), req, access.User, c.ClientIP())
	if err != nil {
		c.JSON(statusForErr(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Attendance marked successfully!",
		"record":  rec,
	})
}

// ===========================
// 🟢 POST /attendance/manual — typed event code, optionally on behalf
// of a student (admin only)
func (h *Handler) MarkManual(c *gin.Context) {
	access, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req ManualMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DeviceInfo == "" {
		req.DeviceInfo = c.Request.UserAgent()
	}

	rec, err := h.Svc.MarkManual(c.Request.Context(), req, access.User, c.ClientIP())
	if err != nil {
		c.JSON(statusForErr(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Attendance marked successfully!",
		"record":  rec,
	})
}

// ===========================
// 🟢 GET /attendance/my — recent records for the caller
func (h *Handler) ListMine(c *gin.Context) {
	access, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	recs, err := h.Svc.ListForStudent(c.Request.Context(), access.User.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": recs})
}

// ===========================
// 🟢 GET /attendance/my/stats — caller's dashboard numbers
func (h *Handler) StudentStats(c *gin.Context) {
	access, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.Svc.StudentStats(c.Request.Context(), access.User.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

// ===========================
// 🟢 GET /events/:ref/attendance — records for one event
func (h *Handler) ListForEvent(c *gin.Context) {
	access, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	recs, err := h.Svc.ListForEvent(c.Request.Context(), c.Param("ref"), access.User)
	if err != nil {
		c.JSON(statusForErr(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": recs})
}

// ===========================
// 🟢 GET /events/:ref/attendance/stats
func (h *Handler) EventStats(c *gin.Context) {
	e, err := h.Svc.Repo.FindEventByRef(c.Request.Context(), c.Param("ref"))
	if err != nil {
		c.JSON(statusForErr(err), gin.H{"error": err.Error()})
		return
	}

	stats, err := h.Svc.EventStats(c.Request.Context(), e.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

// ===========================
// 🟢 PATCH /attendance/:ref/verify (admin/organizer)
func (h *Handler) Verify(c *gin.Context) {
	access, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.Svc.SetVerified(c.Request.Context(), c.Param("ref"), req.Verified, access.User, c.ClientIP())
	if err != nil {
		c.JSON(statusForErr(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": rec})
}

// ===========================
// 🟢 DELETE /attendance/:ref (admin only; resets the registration)
func (h *Handler) Delete(c *gin.Context) {
	access, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.Svc.Delete(c.Request.Context(), c.Param("ref"), access.User, c.ClientIP()); err != nil {
		c.JSON(statusForErr(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "attendance record deleted"})
}
