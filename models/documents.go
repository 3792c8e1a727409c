package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document collections.
const (
	PatientsCollection       = "patients"
	AppointmentsCollection   = "appointments"
	MedicalRecordsCollection = "medical_records"
	BillsCollection          = "bills"
)

type Patient struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	PatientID   string             `bson:"patientId" json:"patientId"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone       string             `bson:"phone" json:"phone"`
	DateOfBirth *time.Time         `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Gender      string             `bson:"gender,omitempty" json:"gender,omitempty"`
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
	BloodGroup  string             `bson:"bloodGroup,omitempty" json:"bloodGroup,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt,omitempty" json:"updatedAt"`
}

const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
	AppointmentNoShow    = "no-show"
)

var AppointmentStatuses = []string{AppointmentScheduled, AppointmentCompleted, AppointmentCancelled, AppointmentNoShow}

type Appointment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	AppointmentID   string             `bson:"appointmentId" json:"appointmentId"`
	PatientID       string             `bson:"patientId" json:"patientId"`
	DoctorID        string             `bson:"doctorId" json:"doctorId"`
	DoctorName      string             `bson:"doctorName,omitempty" json:"doctorName,omitempty"`
	AppointmentDate time.Time          `bson:"appointmentDate" json:"appointmentDate"`
	TimeSlot        string             `bson:"timeSlot,omitempty" json:"timeSlot,omitempty"`
	Reason          string             `bson:"reason,omitempty" json:"reason,omitempty"`
	Status          string             `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt,omitempty" json:"updatedAt"`
}

type MedicalRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	RecordID     string             `bson:"recordId" json:"recordId"`
	PatientID    string             `bson:"patientId" json:"patientId"`
	DoctorID     string             `bson:"doctorId" json:"doctorId"`
	Diagnosis    string             `bson:"diagnosis" json:"diagnosis"`
	Prescription string             `bson:"prescription,omitempty" json:"prescription,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	VisitDate    time.Time          `bson:"visitDate" json:"visitDate"`
	CreatedAt    time.Time          `bson:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt,omitempty" json:"updatedAt"`
}

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

type BillItem struct {
	Description string  `bson:"description" json:"description"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"unitPrice" json:"unitPrice"`
}

type Bill struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	BillID        string             `bson:"billId" json:"billId"`
	PatientID     string             `bson:"patientId" json:"patientId"`
	Items         []BillItem         `bson:"items" json:"items"`
	TotalAmount   float64            `bson:"totalAmount" json:"totalAmount"`
	PaymentStatus string             `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod string             `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	PaidAt        *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt,omitempty" json:"updatedAt"`
}

// ItemsTotal sums quantity times unit price over the bill items.
func (b Bill) ItemsTotal() float64 {
	var total float64
	for _, it := range b.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		total += float64(qty) * it.UnitPrice
	}
	return total
}
