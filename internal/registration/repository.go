package registration

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/arvindh25/college-event-backend/internal/event"
)

var (
	ErrEventFull          = errors.New("event is full")
	ErrAlreadyRegistered  = errors.New("already registered for this event")
	ErrAttendanceRecorded = errors.New("attendance already recorded; delete the attendance record first")
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 🎯 Create registration and bump occupancy in one transaction
//
// The occupancy counter is guarded by the conditional UPDATE: when the
// event is already at capacity zero rows match and the whole transaction
// rolls back, so current_participants can never exceed max_participants.
func (r *Repository) CreateWithOccupancy(ctx context.Context, reg *Registration) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&event.Event{}).
			Where("id = ? AND current_participants < max_participants", reg.EventID).
			UpdateColumn("current_participants", gorm.Expr("current_participants + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrEventFull
		}

		if err := tx.Create(reg).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRegistered
			}
			return err
		}
		return nil
	})
}

// ===========================
// ❌ Delete registration and release the slot in one transaction
//
// An attendance record holds a foreign key on the registration, so the
// record has to go first; surfacing that as a typed error keeps the raw
// constraint violation out of API responses.
func (r *Repository) DeleteWithOccupancy(ctx context.Context, reg *Registration) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var attended int64
		if err := tx.Table("attendance_records").
			Where("registration_id = ?", reg.ID).
			Count(&attended).Error; err != nil {
			return err
		}
		if attended > 0 {
			return ErrAttendanceRecorded
		}

		res := tx.Delete(&Registration{}, reg.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&event.Event{}).
			Where("id = ? AND current_participants > 0", reg.EventID).
			UpdateColumn("current_participants", gorm.Expr("current_participants - 1")).Error
	})
}

// ===========================
// 🔍 Lookups
func (r *Repository) GetByRef(ctx context.Context, ref string) (*Registration, error) {
	var reg Registration
	err := r.DB.WithContext(ctx).Where("registration_id = ?", ref).First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *Repository) Find(ctx context.Context, eventID, studentID uint) (*Registration, error) {
	var reg Registration
	err := r.DB.WithContext(ctx).
		Where("event_id = ? AND student_id = ?", eventID, studentID).
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *Repository) Exists(ctx context.Context, eventID, studentID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&Registration{}).
		Where("event_id = ? AND student_id = ?", eventID, studentID).
		Count(&count).Error
	return count > 0, err
}

// ===========================
// 📄 Listings
func (r *Repository) ListByStudent(ctx context.Context, studentID uint) ([]Registration, error) {
	var regs []Registration
	err := r.DB.WithContext(ctx).
		Preload("Event").
		Where("student_id = ?", studentID).
		Order("registered_at DESC").
		Find(&regs).Error
	return regs, err
}

func (r *Repository) ListByEvent(ctx context.Context, eventID uint) ([]Registration, error) {
	var regs []Registration
	err := r.DB.WithContext(ctx).
		Preload("Student").
		Where("event_id = ?", eventID).
		Order("registered_at ASC").
		Find(&regs).Error
	return regs, err
}
