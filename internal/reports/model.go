package reports

import "time"

// Export formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
)

func ValidFormat(f string) bool {
	return f == FormatCSV || f == FormatExcel
}

// AttendanceReportRow is one attendance record flattened for export.
type AttendanceReportRow struct {
	AttendanceID string     `json:"attendance_id"`
	EventRef     string     `json:"event_ref"`
	EventTitle   string     `json:"event_title"`
	StudentID    string     `json:"student_id"`
	StudentName  string     `json:"student_name"`
	Method       string     `json:"method"`
	Status       string     `json:"status"`
	MarkedAt     time.Time  `json:"marked_at"`
	Verified     bool       `json:"verified"`
	MarkedBy     string     `json:"marked_by,omitempty"`
	DeviceInfo   string     `json:"device_info,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`

	// Schedule fields feed the on-time/late classification and stay out
	// of the serialized row.
	EventDate      time.Time `json:"-"`
	EventStartTime time.Time `json:"-"`
}

// EventSummaryRow is one event's registration/attendance roll-up.
type EventSummaryRow struct {
	EventRef       string    `json:"event_ref"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Date           time.Time `json:"date"`
	Status         string    `json:"status"`
	Registered     int64     `json:"registered"`
	Attended       int64     `json:"attended"`
	AttendanceRate float64   `json:"attendance_rate"`
}

// AttendanceReportRequest filters the attendance export.
type AttendanceReportRequest struct {
	EventRef string `form:"event_ref"`
	FromDate string `form:"from_date"` // YYYY-MM-DD
	ToDate   string `form:"to_date"`   // YYYY-MM-DD
	Format   string `form:"format"`
}

// EventSummaryRequest filters the event roll-up export.
type EventSummaryRequest struct {
	Status   string `form:"status"`
	Category string `form:"category"`
	Format   string `form:"format"`
}
