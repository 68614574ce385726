package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Exporter serializes report rows into a downloadable payload.
// Returns (bytes, filename, content type).
type Exporter interface {
	ExportAttendance(format string, rows []AttendanceReportRow) ([]byte, string, string, error)
	ExportEventSummary(format string, rows []EventSummaryRow) ([]byte, string, string, error)
}

type exporter struct{}

func NewExporter() Exporter {
	return &exporter{}
}

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportTag makes filenames unique across concurrent exports within the
// same second.
func exportTag() string {
	return fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), uuid.NewString()[:8])
}

func (e *exporter) ExportAttendance(format string, rows []AttendanceReportRow) ([]byte, string, string, error) {
	timestamp := exportTag()
	switch format {
	case FormatExcel:
		return e.attendanceExcel(timestamp, rows)
	case FormatCSV:
		return e.attendanceCSV(timestamp, rows)
	default:
		return nil, "", "", fmt.Errorf("unsupported export format: %s", format)
	}
}

func (e *exporter) ExportEventSummary(format string, rows []EventSummaryRow) ([]byte, string, string, error) {
	timestamp := exportTag()
	switch format {
	case FormatExcel:
		return e.eventSummaryExcel(timestamp, rows)
	case FormatCSV:
		return e.eventSummaryCSV(timestamp, rows)
	default:
		return nil, "", "", fmt.Errorf("unsupported export format: %s", format)
	}
}

// ===============================
// 📄 Attendance report
// ===============================

var attendanceHeaders = []string{
	"attendance_id", "event_ref", "event_title", "student_id", "student_name",
	"method", "status", "marked_at", "verified", "marked_by", "device_info",
}

func attendanceRecord(r AttendanceReportRow) []string {
	return []string{
		r.AttendanceID,
		r.EventRef,
		r.EventTitle,
		r.StudentID,
		r.StudentName,
		r.Method,
		r.Status,
		r.MarkedAt.Format("2006-01-02 15:04:05"),
		strconv.FormatBool(r.Verified),
		r.MarkedBy,
		r.DeviceInfo,
	}
}

func (e *exporter) attendanceCSV(timestamp string, rows []AttendanceReportRow) ([]byte, string, string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(attendanceHeaders); err != nil {
		return nil, "", "", err
	}
	for _, r := range rows {
		if err := w.Write(attendanceRecord(r)); err != nil {
			return nil, "", "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", "", err
	}

	return buf.Bytes(), fmt.Sprintf("attendance_report_%s.csv", timestamp), "text/csv", nil
}

func (e *exporter) attendanceExcel(timestamp string, rows []AttendanceReportRow) ([]byte, string, string, error) {
	f := excelize.NewFile()
	sheet := "Attendance"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", "", err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for i, h := range attendanceHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, "", "", err
		}
		f.SetCellValue(sheet, cell, h)
	}
	for rIdx, r := range rows {
		for cIdx, v := range attendanceRecord(r) {
			cell, err := excelize.CoordinatesToCellName(cIdx+1, rIdx+2)
			if err != nil {
				return nil, "", "", err
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", "", err
	}
	return buf.Bytes(), fmt.Sprintf("attendance_report_%s.xlsx", timestamp), excelContentType, nil
}

// ===============================
// 📊 Event summary report
// ===============================

var eventSummaryHeaders = []string{
	"event_ref", "title", "category", "date", "status", "registered", "attended", "attendance_rate",
}

func eventSummaryRecord(r EventSummaryRow) []string {
	return []string{
		r.EventRef,
		r.Title,
		r.Category,
		r.Date.Format("2006-01-02"),
		r.Status,
		strconv.FormatInt(r.Registered, 10),
		strconv.FormatInt(r.Attended, 10),
		strconv.FormatFloat(r.AttendanceRate, 'f', 1, 64),
	}
}

func (e *exporter) eventSummaryCSV(timestamp string, rows []EventSummaryRow) ([]byte, string, string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(eventSummaryHeaders); err != nil {
		return nil, "", "", err
	}
	for _, r := range rows {
		if err := w.Write(eventSummaryRecord(r)); err != nil {
			return nil, "", "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", "", err
	}

	return buf.Bytes(), fmt.Sprintf("event_summary_%s.csv", timestamp), "text/csv", nil
}

func (e *exporter) eventSummaryExcel(timestamp string, rows []EventSummaryRow) ([]byte, string, string, error) {
	f := excelize.NewFile()
	sheet := "Event Summary"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", "", err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for i, h := range eventSummaryHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, "", "", err
		}
		f.SetCellValue(sheet, cell, h)
	}
	for rIdx, r := range rows {
		row := rIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.EventRef)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.Title)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.Category)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Date.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.Status)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.Registered)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), r.Attended)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), r.AttendanceRate)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", "", err
	}
	return buf.Bytes(), fmt.Sprintf("event_summary_%s.xlsx", timestamp), excelContentType, nil
}
