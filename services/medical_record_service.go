package services

import (
	"context"
	"strings"
	"time"

	"github.com/yeremiapane/hospital-app/docstore"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const recordNotFound = "Medical record not found"

type MedicalRecordService struct {
	store docstore.Store
}

func NewMedicalRecordService(store docstore.Store) *MedicalRecordService {
	return &MedicalRecordService{store: store}
}

type MedicalRecordUpdate struct {
	Diagnosis    *string    `json:"diagnosis"`
	Prescription *string    `json:"prescription"`
	Notes        *string    `json:"notes"`
	VisitDate    *time.Time `json:"visitDate"`
}

func (s *MedicalRecordService) Create(ctx context.Context, r models.MedicalRecord) (*models.MedicalRecord, error) {
	r.PatientID = strings.TrimSpace(r.PatientID)
	r.DoctorID = strings.TrimSpace(r.DoctorID)
	r.Diagnosis = strings.TrimSpace(r.Diagnosis)
	if r.PatientID == "" || r.DoctorID == "" || r.Diagnosis == "" {
		return nil, utils.Validation("patientId, doctorId and diagnosis are required")
	}
	r.ID = primitive.NilObjectID
	r.RecordID = docstore.GenerateUniqueID("MED")
	if r.VisitDate.IsZero() {
		r.VisitDate = utcNow()
	}
	r.VisitDate = r.VisitDate.UTC()
	return createDocument(ctx, s.store, models.MedicalRecordsCollection, r)
}

func (s *MedicalRecordService) Get(ctx context.Context, id string) (*models.MedicalRecord, error) {
	doc, err := findDocument(ctx, s.store, models.MedicalRecordsCollection, "recordId", id)
	if err != nil {
		return nil, notFound(err, recordNotFound)
	}
	return decodeOne[models.MedicalRecord](doc)
}

// ForPatient returns a patient's history, latest visit first.
func (s *MedicalRecordService) ForPatient(ctx context.Context, patientID string) ([]models.MedicalRecord, error) {
	docs, err := s.store.Find(ctx, models.MedicalRecordsCollection, docstore.Filter{"patientId": patientID},
		docstore.FindOptions{SortField: "visitDate", SortDesc: true})
	if err != nil {
		return nil, err
	}
	return decodeAll[models.MedicalRecord](docs)
}

func (s *MedicalRecordService) Update(ctx context.Context, id string, u MedicalRecordUpdate) (*models.MedicalRecord, error) {
	patch := docstore.Document{}
	if u.Diagnosis != nil {
		if strings.TrimSpace(*u.Diagnosis) == "" {
			return nil, utils.Validation("diagnosis cannot be empty")
		}
		patch["diagnosis"] = strings.TrimSpace(*u.Diagnosis)
	}
	if u.Prescription != nil {
		patch["prescription"] = *u.Prescription
	}
	if u.Notes != nil {
		patch["notes"] = *u.Notes
	}
	if u.VisitDate != nil {
		patch["visitDate"] = u.VisitDate.UTC()
	}
	return updateDocument[models.MedicalRecord](ctx, s.store, models.MedicalRecordsCollection, "recordId", id, patch, recordNotFound)
}
