package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/hospital-app/docstore"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const appointmentNotFound = "Appointment not found"

type AppointmentService struct {
	store docstore.Store
}

func NewAppointmentService(store docstore.Store) *AppointmentService {
	return &AppointmentService{store: store}
}

// Create books an appointment under a fresh APT id with status scheduled.
// The doctor's slot is not reserved.
func (s *AppointmentService) Create(ctx context.Context, a models.Appointment) (*models.Appointment, error) {
	a.PatientID = strings.TrimSpace(a.PatientID)
	a.DoctorID = strings.TrimSpace(a.DoctorID)
	if a.PatientID == "" || a.DoctorID == "" || a.AppointmentDate.IsZero() {
		return nil, utils.Validation("patientId, doctorId and appointmentDate are required")
	}
	a.ID = primitive.NilObjectID
	a.AppointmentID = docstore.GenerateUniqueID("APT")
	a.AppointmentDate = a.AppointmentDate.UTC()
	a.Status = models.AppointmentScheduled
	return createDocument(ctx, s.store, models.AppointmentsCollection, a)
}

func (s *AppointmentService) Get(ctx context.Context, id string) (*models.Appointment, error) {
	doc, err := findDocument(ctx, s.store, models.AppointmentsCollection, "appointmentId", id)
	if err != nil {
		return nil, notFound(err, appointmentNotFound)
	}
	return decodeOne[models.Appointment](doc)
}

func (s *AppointmentService) UpdateStatus(ctx context.Context, id, status string) (*models.Appointment, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	valid := false
	for _, st := range models.AppointmentStatuses {
		if st == status {
			valid = true
			break
		}
	}
	if !valid {
		return nil, utils.Validation(fmt.Sprintf("Invalid appointment status %q", status))
	}
	return updateDocument[models.Appointment](ctx, s.store, models.AppointmentsCollection, "appointmentId", id,
		docstore.Document{"status": status}, appointmentNotFound)
}

func (s *AppointmentService) Cancel(ctx context.Context, id string) (*models.Appointment, error) {
	return s.UpdateStatus(ctx, id, models.AppointmentCancelled)
}

// ForDay lists appointments from midnight to midnight of day, earliest first.
func (s *AppointmentService) ForDay(ctx context.Context, day time.Time) ([]models.Appointment, error) {
	return s.find(ctx, dayFilter("appointmentDate", day))
}

// ForDoctor lists a doctor's appointments, limited to one day when day is set.
func (s *AppointmentService) ForDoctor(ctx context.Context, doctorID string, day *time.Time) ([]models.Appointment, error) {
	filter := docstore.Filter{"doctorId": doctorID}
	if day != nil {
		for k, v := range dayFilter("appointmentDate", *day) {
			filter[k] = v
		}
	}
	return s.find(ctx, filter)
}

func (s *AppointmentService) List(ctx context.Context, page, limit int) (*ListPage[models.Appointment], error) {
	p, err := s.store.Paginate(ctx, models.AppointmentsCollection, nil, page, limit)
	if err != nil {
		return nil, err
	}
	return decodePage[models.Appointment](p)
}

func (s *AppointmentService) find(ctx context.Context, filter docstore.Filter) ([]models.Appointment, error) {
	docs, err := s.store.Find(ctx, models.AppointmentsCollection, filter, docstore.FindOptions{SortField: "appointmentDate"})
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Appointment](docs)
}

func dayFilter(field string, day time.Time) docstore.Filter {
	start, end := DayBounds(day)
	return docstore.Filter{field: docstore.Filter{"$gte": start, "$lt": end}}
}
