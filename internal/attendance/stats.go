package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

const statsCacheTTL = 30 * time.Second

// StudentStats is the dashboard summary for one student.
type StudentStats struct {
	TotalAttendance  int     `json:"total_attendance"`
	OnTimeCount      int     `json:"on_time_count"`
	StreakCount      int     `json:"streak_count"`
	RegisteredEvents int     `json:"registered_events"`
	AttendedEvents   int     `json:"attended_events"`
	AttendanceRate   float64 `json:"attendance_rate"`
}

// EventStats summarizes participation for one event.
type EventStats struct {
	Registered     int     `json:"registered"`
	Attended       int     `json:"attended"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// ===========================
// 📊 StudentStats derives all read-time metrics from the record set.
// Zero records produce empty aggregates, never an error.
func (s *Service) StudentStats(ctx context.Context, studentID uint) (*StudentStats, error) {
	if cached := s.cachedStats(ctx, studentID); cached != nil {
		return cached, nil
	}

	recs, err := s.Repo.RecordsWithEvents(ctx, studentID)
	if err != nil {
		return nil, err
	}

	onTimeCount := 0
	markTimes := make([]time.Time, 0, len(recs))
	for i := range recs {
		markTimes = append(markTimes, recs[i].MarkedAt)
		if onTime(&recs[i].Event, recs[i].MarkedAt) {
			onTimeCount++
		}
	}

	registered, err := s.Repo.CountRegistrationsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	attended, err := s.Repo.CountAttendedByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	stats := &StudentStats{
		TotalAttendance:  len(recs),
		OnTimeCount:      onTimeCount,
		StreakCount:      streak(markTimes, s.Now()),
		RegisteredEvents: int(registered),
		AttendedEvents:   int(attended),
		AttendanceRate:   rate(int(attended), int(registered)),
	}

	s.storeStatsCache(ctx, studentID, stats)
	return stats, nil
}

// ===========================
// 📊 EventStats: registered vs attended for one event.
func (s *Service) EventStats(ctx context.Context, eventID uint) (*EventStats, error) {
	registered, err := s.Repo.CountRegistrationsByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	attended, err := s.Repo.CountAttendedByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return &EventStats{
		Registered:     int(registered),
		Attended:       int(attended),
		AttendanceRate: rate(int(attended), int(registered)),
	}, nil
}

// streak counts consecutive calendar days with at least one mark,
// walking backward from today. A one-day gap breaks the chain.
func streak(markTimes []time.Time, now time.Time) int {
	if len(markTimes) == 0 {
		return 0
	}

	seen := make(map[string]bool, len(markTimes))
	var days []time.Time
	for _, t := range markTimes {
		t = t.UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		key := day.Format("2006-01-02")
		if !seen[key] {
			seen[key] = true
			days = append(days, day)
		}
	}

	// markTimes comes in newest-first, so days is already descending.
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	count := 0
	for i, day := range days {
		if day.Equal(today.AddDate(0, 0, -i)) {
			count++
		} else {
			break
		}
	}
	return count
}

// rate is attended/registered as a percentage rounded to one decimal,
// defined as 0 for zero registrations.
func rate(attended, registered int) float64 {
	if registered == 0 {
		return 0
	}
	return math.Round(float64(attended)/float64(registered)*1000) / 10
}

// ===========================
// cache-aside for the dashboard endpoint

func statsCacheKey(studentID uint) string {
	return fmt.Sprintf("attendance:stats:%d", studentID)
}

func (s *Service) cachedStats(ctx context.Context, studentID uint) *StudentStats {
	if s.Cache == nil {
		return nil
	}
	raw, err := s.Cache.Get(ctx, statsCacheKey(studentID)).Bytes()
	if err != nil {
		return nil
	}
	var stats StudentStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *Service) storeStatsCache(ctx context.Context, studentID uint, stats *StudentStats) {
	if s.Cache == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	_ = s.Cache.Set(ctx, statsCacheKey(studentID), raw, statsCacheTTL).Err()
}

func (s *Service) invalidateStatsCache(ctx context.Context, studentID uint) {
	if s.Cache == nil {
		return
	}
	_ = s.Cache.Del(ctx, statsCacheKey(studentID)).Err()
}
