package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type CleaningTask struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	RoomID            uint         `gorm:"not null;index" json:"roomId"`
	RoomNumber        string       `gorm:"type:varchar(50);not null" json:"roomNumber"`
	AssignedTo        string       `gorm:"type:varchar(255);not null;index" json:"assignedTo"`
	AssignedDate      time.Time    `gorm:"not null" json:"assignedDate"`
	CompletedDate     *time.Time   `json:"completedDate,omitempty"`
	Status            TaskStatus   `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	Priority          TaskPriority `gorm:"type:varchar(10);not null;default:'Medium'" json:"priority"`
	CleaningType      CleaningType `gorm:"type:varchar(30);not null" json:"cleaningType"`
	Notes             string       `gorm:"type:text" json:"notes"`
	EstimatedDuration int          `gorm:"not null;default:30" json:"estimatedDuration"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

func (CleaningTask) TableName() string { return "cleaning_tasks" }

type CleaningStaff struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"type:varchar(255);not null;index" json:"name"`
	Email          string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone          string         `gorm:"type:varchar(30);not null" json:"phone"`
	Status         StaffStatus    `gorm:"type:varchar(20);not null;default:'Available'" json:"status"`
	CurrentTasks   int            `gorm:"not null;default:0" json:"currentTasks"`
	MaxTasks       int            `gorm:"not null;default:5" json:"maxTasks"`
	Specialization Specialization `gorm:"type:varchar(255);not null;default:''" json:"specialization"`
	Shift          Shift          `gorm:"type:varchar(20);not null;default:'Morning'" json:"shift"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (CleaningStaff) TableName() string { return "cleaning_staff" }

// Specialization is the set of cleaning types a staff member can take on.
// It is stored as a comma separated column and rendered as a JSON array.
type Specialization []CleaningType

func (s Specialization) Contains(t CleaningType) bool {
	for _, v := range s {
		if v == t {
			return true
		}
	}
	return false
}

func (s Specialization) Value() (driver.Value, error) {
	parts := make([]string, 0, len(s))
	for _, t := range s {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ","), nil
}

func (s *Specialization) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("specialization: unsupported type %T", src)
	}

	out := Specialization{}
	for _, part := range strings.Split(raw, ",") {
		if t, ok := ParseCleaningType(part); ok && !out.Contains(t) {
			out = append(out, t)
		}
	}
	*s = out
	return nil
}

func (s Specialization) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]CleaningType(s))
}

// ParseSpecialization keeps the known cleaning types of values, dropping
// duplicates. An unknown value is an error.
func ParseSpecialization(values []string) (Specialization, error) {
	out := Specialization{}
	for _, v := range values {
		t, ok := ParseCleaningType(v)
		if !ok {
			return nil, fmt.Errorf("unknown cleaning type %q", v)
		}
		if !out.Contains(t) {
			out = append(out, t)
		}
	}
	return out, nil
}
