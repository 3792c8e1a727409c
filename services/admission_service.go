package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/hospital-app/events"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrAdmissionNotFound = utils.NotFound("Admission not found")

type AdmissionService struct {
	db     *gorm.DB
	events events.Publisher
}

func NewAdmissionService(db *gorm.DB, pub events.Publisher) *AdmissionService {
	if pub == nil {
		pub = events.Discard{}
	}
	return &AdmissionService{db: db, events: pub}
}

type AdmitInput struct {
	PatientID   string
	PatientName string
	RoomID      uint
	DoctorName  string
	Reason      string
}

// Admit places a patient in a room with free capacity. The room turns
// Occupied once its last bed is taken.
func (s *AdmissionService) Admit(ctx context.Context, in AdmitInput) (*models.Admission, error) {
	in.PatientID = strings.TrimSpace(in.PatientID)
	in.PatientName = strings.TrimSpace(in.PatientName)
	if in.PatientID == "" || in.PatientName == "" || in.RoomID == 0 {
		return nil, utils.Validation("patientId, patientName and roomId are required")
	}

	var admission models.Admission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := findRoom(tx, in.RoomID)
		if err != nil {
			return err
		}
		switch room.Status {
		case models.RoomUnderMaintenance, models.RoomCleaningRequired, models.RoomCleaningInProgress:
			return utils.Validation(fmt.Sprintf("Room %s is not ready (%s)", room.RoomNumber, room.Status))
		}

		res := tx.Exec(`UPDATE rooms
SET status = CASE WHEN current_occupancy + 1 >= capacity THEN ? ELSE status END,
    current_occupancy = current_occupancy + 1,
    updated_at = ?
WHERE id = ? AND current_occupancy < capacity`, models.RoomOccupied, utcNow(), room.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.Validation(fmt.Sprintf("Room %s has no free bed", room.RoomNumber))
		}

		admission = models.Admission{
			PatientID:     in.PatientID,
			PatientName:   in.PatientName,
			RoomID:        room.ID,
			DoctorName:    in.DoctorName,
			Reason:        in.Reason,
			Status:        models.Admitted,
			AdmissionDate: utcNow(),
		}
		if err := tx.Omit(clause.Associations).Create(&admission).Error; err != nil {
			return err
		}
		return tx.Preload("Room").First(&admission, admission.ID).Error
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(events.EventAdmissionUpdated, &admission)
	return &admission, nil
}

// Discharge ends an admission. A room left empty needs cleaning before the
// next patient.
func (s *AdmissionService) Discharge(ctx context.Context, id uint) (*models.Admission, error) {
	var admission models.Admission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&admission, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAdmissionNotFound
			}
			return err
		}
		if admission.Status == models.Discharged {
			return utils.Conflict("Patient is already discharged")
		}

		now := utcNow()
		admission.Status = models.Discharged
		admission.DischargeDate = &now
		if err := tx.Omit(clause.Associations).Save(&admission).Error; err != nil {
			return err
		}

		err := tx.Exec(`UPDATE rooms
SET status = CASE WHEN current_occupancy <= 1 THEN ?
                  WHEN status = ? THEN ?
                  ELSE status END,
    current_occupancy = CASE WHEN current_occupancy > 0 THEN current_occupancy - 1 ELSE 0 END,
    updated_at = ?
WHERE id = ?`, models.RoomCleaningRequired, models.RoomOccupied, models.RoomAvailable, now, admission.RoomID).Error
		if err != nil {
			return err
		}
		return tx.Preload("Room").First(&admission, admission.ID).Error
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(events.EventAdmissionUpdated, &admission)
	return &admission, nil
}

// List returns admissions, newest first, optionally by status.
func (s *AdmissionService) List(ctx context.Context, status string) ([]models.Admission, error) {
	q := s.db.WithContext(ctx).Preload("Room")
	if status != "" {
		var st models.AdmissionStatus
		switch strings.ToLower(strings.TrimSpace(status)) {
		case strings.ToLower(string(models.Admitted)):
			st = models.Admitted
		case strings.ToLower(string(models.Discharged)):
			st = models.Discharged
		default:
			return nil, utils.Validation(fmt.Sprintf("Invalid admission status %q", status))
		}
		q = q.Where("status = ?", st)
	}
	admissions := []models.Admission{}
	if err := q.Order("admission_date DESC").Order("id DESC").Find(&admissions).Error; err != nil {
		return nil, err
	}
	return admissions, nil
}
