package models

import "time"

type Room struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	RoomNumber       string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"roomNumber"`
	Type             string     `gorm:"type:varchar(50);not null;default:'General'" json:"type"`
	Floor            int        `gorm:"not null;default:0" json:"floor"`
	Capacity         int        `gorm:"not null;default:1" json:"capacity"`
	CurrentOccupancy int        `gorm:"not null;default:0" json:"currentOccupancy"`
	Status           RoomStatus `gorm:"type:varchar(30);not null;default:'Available'" json:"status"`
	LastCleaned      *time.Time `json:"lastCleaned,omitempty"`
	NextCleaningDue  *time.Time `json:"nextCleaningDue,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// HasSpace reports whether another patient can be admitted.
func (r Room) HasSpace() bool {
	return r.CurrentOccupancy < r.Capacity
}

type AdmissionStatus string

const (
	Admitted   AdmissionStatus = "Admitted"
	Discharged AdmissionStatus = "Discharged"
)

type Admission struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	PatientID     string          `gorm:"type:varchar(50);not null;index" json:"patientId"`
	PatientName   string          `gorm:"type:varchar(255);not null" json:"patientName"`
	RoomID        uint            `gorm:"not null;index" json:"roomId"`
	Room          Room            `gorm:"foreignKey:RoomID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"room,omitempty"`
	DoctorName    string          `gorm:"type:varchar(255)" json:"doctorName"`
	Reason        string          `gorm:"type:text" json:"reason"`
	Status        AdmissionStatus `gorm:"type:varchar(20);not null;default:'Admitted'" json:"status"`
	AdmissionDate time.Time       `gorm:"not null" json:"admissionDate"`
	DischargeDate *time.Time      `json:"dischargeDate,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
