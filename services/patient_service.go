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

const patientNotFound = "Patient not found"

var patientSearchFields = []string{"name", "email", "phone", "patientId"}

type PatientService struct {
	store docstore.Store
}

func NewPatientService(store docstore.Store) *PatientService {
	return &PatientService{store: store}
}

type PatientUpdate struct {
	Name        *string    `json:"name"`
	Email       *string    `json:"email"`
	Phone       *string    `json:"phone"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	Gender      *string    `json:"gender"`
	Address     *string    `json:"address"`
	BloodGroup  *string    `json:"bloodGroup"`
	IsActive    *bool      `json:"isActive"`
}

// Create registers a patient under a fresh PAT id. New patients are active.
func (s *PatientService) Create(ctx context.Context, p models.Patient) (*models.Patient, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	if p.Name == "" {
		return nil, utils.Validation("name is required")
	}
	p.ID = primitive.NilObjectID
	p.PatientID = docstore.GenerateUniqueID("PAT")
	p.IsActive = true
	return createDocument(ctx, s.store, models.PatientsCollection, p)
}

func (s *PatientService) Get(ctx context.Context, id string) (*models.Patient, error) {
	doc, err := findDocument(ctx, s.store, models.PatientsCollection, "patientId", id)
	if err != nil {
		return nil, notFound(err, patientNotFound)
	}
	return decodeOne[models.Patient](doc)
}

func (s *PatientService) Update(ctx context.Context, id string, u PatientUpdate) (*models.Patient, error) {
	patch := docstore.Document{}
	if u.Name != nil {
		if strings.TrimSpace(*u.Name) == "" {
			return nil, utils.Validation("name cannot be empty")
		}
		patch["name"] = strings.TrimSpace(*u.Name)
	}
	if u.Email != nil {
		patch["email"] = strings.TrimSpace(*u.Email)
	}
	if u.Phone != nil {
		patch["phone"] = strings.TrimSpace(*u.Phone)
	}
	if u.DateOfBirth != nil {
		patch["dateOfBirth"] = u.DateOfBirth.UTC()
	}
	if u.Gender != nil {
		patch["gender"] = *u.Gender
	}
	if u.Address != nil {
		patch["address"] = *u.Address
	}
	if u.BloodGroup != nil {
		patch["bloodGroup"] = *u.BloodGroup
	}
	if u.IsActive != nil {
		patch["isActive"] = *u.IsActive
	}
	return updateDocument[models.Patient](ctx, s.store, models.PatientsCollection, "patientId", id, patch, patientNotFound)
}

// Deactivate hides a patient from listings without deleting the record.
func (s *PatientService) Deactivate(ctx context.Context, id string) (*models.Patient, error) {
	return updateDocument[models.Patient](ctx, s.store, models.PatientsCollection, "patientId", id,
		docstore.Document{"isActive": false}, patientNotFound)
}

// Search matches term as a case-insensitive substring of name, email,
// phone or patient id.
func (s *PatientService) Search(ctx context.Context, term string) ([]models.Patient, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Patient{}, nil
	}
	docs, err := s.store.Search(ctx, models.PatientsCollection, term, patientSearchFields)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Patient](docs)
}

// List pages through active patients, newest first.
func (s *PatientService) List(ctx context.Context, page, limit int) (*ListPage[models.Patient], error) {
	p, err := s.store.Paginate(ctx, models.PatientsCollection, docstore.Filter{"isActive": true}, page, limit)
	if err != nil {
		return nil, err
	}
	return decodePage[models.Patient](p)
}
