package attendance

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/arvindh25/college-event-backend/internal/auth"
	"github.com/arvindh25/college-event-backend/internal/event"
	"github.com/arvindh25/college-event-backend/internal/registration"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 🔍 Collaborator lookups used by the resolvers and the evaluator

func (r *Repository) FindEventByRef(ctx context.Context, ref string) (*event.Event, error) {
	var e event.Event
	err := r.DB.WithContext(ctx).Where("event_id = ?", ref).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *Repository) FindStudentByLookup(ctx context.Context, key string) (*auth.User, error) {
	var u auth.User
	err := r.DB.WithContext(ctx).
		Where("role = ?", auth.RoleStudent).
		Where("student_id = ? OR username = ?", key, key).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) FindRegistration(ctx context.Context, eventID, studentID uint) (*registration.Registration, error) {
	var reg registration.Registration
	err := r.DB.WithContext(ctx).
		Where("event_id = ? AND student_id = ?", eventID, studentID).
		First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}
	return &reg, nil
}

func (r *Repository) HasRecord(ctx context.Context, eventID, studentID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&AttendanceRecord{}).
		Where("event_id = ? AND student_id = ?", eventID, studentID).
		Count(&count).Error
	return count > 0, err
}

// ===========================
// 🎯 Atomic create: record + registration flags in one transaction
//
// A reader must never see attended=true without a record or a record
// with attended=false, so both writes share the transaction. The unique
// index turns a concurrent duplicate into gorm.ErrDuplicatedKey, which
// the service translates.
func (r *Repository) CreateWithRegistration(ctx context.Context, rec *AttendanceRecord) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return tx.Model(&registration.Registration{}).
			Where("id = ?", rec.RegistrationID).
			Updates(map[string]interface{}{
				"attended":        true,
				"attendance_time": rec.MarkedAt,
			}).Error
	})
}

// ===========================
// ❌ Delete record and reset the registration in one transaction
func (r *Repository) DeleteWithRegistrationReset(ctx context.Context, rec *AttendanceRecord) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&AttendanceRecord{}, rec.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&registration.Registration{}).
			Where("id = ?", rec.RegistrationID).
			Updates(map[string]interface{}{
				"attended":        false,
				"attendance_time": nil,
			}).Error
	})
}

// ===========================
// 🔍 Record lookups

func (r *Repository) GetByRef(ctx context.Context, ref string) (*AttendanceRecord, error) {
	var rec AttendanceRecord
	err := r.DB.WithContext(ctx).
		Preload("Event").
		Where("attendance_id = ?", ref).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) SetVerified(ctx context.Context, id uint, verified bool) error {
	return r.DB.WithContext(ctx).Model(&AttendanceRecord{}).
		Where("id = ?", id).
		Update("verified", verified).Error
}

func (r *Repository) ListByStudent(ctx context.Context, studentID uint, limit int) ([]AttendanceRecord, error) {
	var recs []AttendanceRecord
	q := r.DB.WithContext(ctx).
		Preload("Event").
		Where("student_id = ?", studentID).
		Order("marked_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&recs).Error
	return recs, err
}

func (r *Repository) ListByEvent(ctx context.Context, eventID uint) ([]AttendanceRecord, error) {
	var recs []AttendanceRecord
	err := r.DB.WithContext(ctx).
		Preload("Student").
		Where("event_id = ?", eventID).
		Order("marked_at ASC").
		Find(&recs).Error
	return recs, err
}

// RecordsWithEvents loads every record for a student with its event,
// the working set for the stats aggregator.
func (r *Repository) RecordsWithEvents(ctx context.Context, studentID uint) ([]AttendanceRecord, error) {
	var recs []AttendanceRecord
	err := r.DB.WithContext(ctx).
		Preload("Event").
		Where("student_id = ?", studentID).
		Order("marked_at DESC").
		Find(&recs).Error
	return recs, err
}

// ===========================
// 🔢 Aggregate counts

func (r *Repository) CountRegistrationsByStudent(ctx context.Context, studentID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&registration.Registration{}).
		Where("student_id = ?", studentID).
		Count(&count).Error
	return count, err
}

func (r *Repository) CountAttendedByStudent(ctx context.Context, studentID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&registration.Registration{}).
		Where("student_id = ? AND attended = ?", studentID, true).
		Count(&count).Error
	return count, err
}

func (r *Repository) CountRegistrationsByEvent(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&registration.Registration{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}

func (r *Repository) CountAttendedByEvent(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&AttendanceRecord{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}
