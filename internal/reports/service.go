package reports

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/arvindh25/college-event-backend/internal/attendance"
	"github.com/arvindh25/college-event-backend/internal/auditlog"
)

type Service interface {
	AttendanceReport(req AttendanceReportRequest) ([]AttendanceReportRow, error)
	ExportAttendanceReport(ctx context.Context, req AttendanceReportRequest, userID *uint, ip string) ([]byte, string, string, error)

	EventSummary(req EventSummaryRequest) ([]EventSummaryRow, error)
	ExportEventSummary(ctx context.Context, req EventSummaryRequest, userID *uint, ip string) ([]byte, string, string, error)
}

type service struct {
	repo     Repository
	exporter Exporter
	auditSvc auditlog.Service
}

func NewService(repo Repository, exporter Exporter, auditSvc auditlog.Service) Service {
	return &service{repo: repo, exporter: exporter, auditSvc: auditSvc}
}

func (s *service) AttendanceReport(req AttendanceReportRequest) ([]AttendanceReportRow, error) {
	from, to, err := parseDateRange(req.FromDate, req.ToDate)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.AttendanceRows(req.EventRef, from, to)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Status = classify(rows[i])
	}
	return rows, nil
}

func (s *service) ExportAttendanceReport(ctx context.Context, req AttendanceReportRequest, userID *uint, ip string) ([]byte, string, string, error) {
	if !ValidFormat(req.Format) {
		return nil, "", "", fmt.Errorf("unsupported export format: %s", req.Format)
	}
	rows, err := s.AttendanceReport(req)
	if err != nil {
		return nil, "", "", err
	}

	data, filename, contentType, err := s.exporter.ExportAttendance(req.Format, rows)
	if err != nil {
		return nil, "", "", err
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.LogAction(ctx, userID, nil, "REPORT_EXPORTED", map[string]interface{}{
			"report":    "attendance",
			"format":    req.Format,
			"event_ref": req.EventRef,
			"rows":      len(rows),
		}, ip, "success")
	}
	return data, filename, contentType, nil
}

func (s *service) EventSummary(req EventSummaryRequest) ([]EventSummaryRow, error) {
	rows, err := s.repo.EventSummaryRows(req.Status, req.Category)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].AttendanceRate = rate(rows[i].Attended, rows[i].Registered)
	}
	return rows, nil
}

func (s *service) ExportEventSummary(ctx context.Context, req EventSummaryRequest, userID *uint, ip string) ([]byte, string, string, error) {
	if !ValidFormat(req.Format) {
		return nil, "", "", fmt.Errorf("unsupported export format: %s", req.Format)
	}
	rows, err := s.EventSummary(req)
	if err != nil {
		return nil, "", "", err
	}

	data, filename, contentType, err := s.exporter.ExportEventSummary(req.Format, rows)
	if err != nil {
		return nil, "", "", err
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.LogAction(ctx, userID, nil, "REPORT_EXPORTED", map[string]interface{}{
			"report": "event_summary",
			"format": req.Format,
			"rows":   len(rows),
		}, ip, "success")
	}
	return data, filename, contentType, nil
}

// classify derives on_time/late the same way the live stats do: event
// start plus the grace period, everything in UTC.
func classify(r AttendanceReportRow) string {
	d := r.EventDate.UTC()
	st := r.EventStartTime.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), st.Hour(), st.Minute(), st.Second(), 0, time.UTC)
	if !r.MarkedAt.UTC().After(start.Add(attendance.GracePeriod)) {
		return attendance.StatusOnTime
	}
	return attendance.StatusLate
}

// rate rounds to one decimal; zero registrations mean a zero rate.
func rate(attended, registered int64) float64 {
	if registered == 0 {
		return 0
	}
	return math.Round(float64(attended)/float64(registered)*1000) / 10
}

func parseDateRange(fromStr, toStr string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromStr != "" {
		t, err := time.ParseInLocation("2006-01-02", fromStr, time.UTC)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid from_date: %s", fromStr)
		}
		from = &t
	}
	if toStr != "" {
		t, err := time.ParseInLocation("2006-01-02", toStr, time.UTC)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid to_date: %s", toStr)
		}
		// to_date is inclusive: query below the next midnight
		end := t.AddDate(0, 0, 1)
		to = &end
	}
	return from, to, nil
}
