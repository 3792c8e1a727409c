package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/hospital-app/docstore"
	"github.com/yeremiapane/hospital-app/events"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/utils"
	"gorm.io/gorm"
)

type RoomService struct {
	db     *gorm.DB
	events events.Publisher
}

func NewRoomService(db *gorm.DB, pub events.Publisher) *RoomService {
	if pub == nil {
		pub = events.Discard{}
	}
	return &RoomService{db: db, events: pub}
}

type RoomFilter struct {
	Search string
	Status string
	Type   string
}

type RoomInput struct {
	RoomNumber string
	Type       string
	Floor      int
	Capacity   int
	Status     string
}

type RoomPage struct {
	Rooms      []models.Room       `json:"rooms"`
	Pagination docstore.Pagination `json:"pagination"`
}

// List filters rooms by a room number/type substring and exact status and
// type, newest room numbers last.
func (s *RoomService) List(ctx context.Context, f RoomFilter, page, limit int) (*RoomPage, error) {
	q := s.db.WithContext(ctx).Model(&models.Room{})
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(room_number) LIKE ? OR LOWER(type) LIKE ?", like, like)
	}
	if f.Status != "" {
		st, ok := models.ParseRoomStatus(f.Status)
		if !ok {
			return nil, utils.Validation(fmt.Sprintf("Invalid room status %q", f.Status))
		}
		q = q.Where("status = ?", st)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	// count and page queries both start from the filtered statement
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	page, limit = docstore.ClampPage(page, limit)
	rooms := []models.Room{}
	if err := q.Order("floor").Order("room_number").
		Offset((page - 1) * limit).Limit(limit).Find(&rooms).Error; err != nil {
		return nil, err
	}
	return &RoomPage{Rooms: rooms, Pagination: docstore.NewPagination(page, limit, total)}, nil
}

func (s *RoomService) Get(ctx context.Context, id uint) (*models.Room, error) {
	return findRoom(s.db.WithContext(ctx), id)
}

func (s *RoomService) Create(ctx context.Context, in RoomInput) (*models.Room, error) {
	number := strings.TrimSpace(in.RoomNumber)
	if number == "" {
		return nil, utils.Validation("roomNumber is required")
	}
	if in.Capacity < 0 || in.Floor < 0 {
		return nil, utils.Validation("floor and capacity cannot be negative")
	}

	room := models.Room{
		RoomNumber: number,
		Type:       strings.TrimSpace(in.Type),
		Floor:      in.Floor,
		Capacity:   in.Capacity,
		Status:     models.RoomAvailable,
	}
	if room.Type == "" {
		room.Type = "General"
	}
	if room.Capacity == 0 {
		room.Capacity = 1
	}
	if in.Status != "" {
		st, ok := models.ParseRoomStatus(in.Status)
		if !ok {
			return nil, utils.Validation(fmt.Sprintf("Invalid room status %q", in.Status))
		}
		room.Status = st
	}

	if err := s.db.WithContext(ctx).Create(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.Conflict(fmt.Sprintf("Room %s already exists", number))
		}
		return nil, err
	}
	s.events.Publish(events.EventRoomUpdated, &room)
	return &room, nil
}

// UpdateStatus sets a room's status by hand. Marking a room Available also
// stamps lastCleaned when it was waiting for cleaning.
func (s *RoomService) UpdateStatus(ctx context.Context, id uint, status string, nextCleaningDue *time.Time) (*models.Room, error) {
	st, ok := models.ParseRoomStatus(status)
	if !ok {
		return nil, utils.Validation(fmt.Sprintf("Invalid room status %q", status))
	}

	var room models.Room
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := findRoom(tx, id)
		if err != nil {
			return err
		}
		room = *r
		if st == models.RoomAvailable && room.CurrentOccupancy >= room.Capacity && room.Capacity > 0 {
			return utils.Conflict("Room is full and cannot be marked Available")
		}
		if st == models.RoomAvailable &&
			(room.Status == models.RoomCleaningRequired || room.Status == models.RoomCleaningInProgress) {
			now := time.Now().UTC()
			room.LastCleaned = &now
		}
		room.Status = st
		if nextCleaningDue != nil {
			room.NextCleaningDue = nextCleaningDue
		}
		return tx.Save(&room).Error
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(events.EventRoomUpdated, &room)
	return &room, nil
}

// Delete removes an empty room.
func (s *RoomService) Delete(ctx context.Context, id uint) error {
	var room models.Room
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := findRoom(tx, id)
		if err != nil {
			return err
		}
		room = *r
		if room.CurrentOccupancy > 0 {
			return utils.Conflict("Room is occupied and cannot be deleted")
		}
		var active int64
		if err := tx.Model(&models.Admission{}).
			Where("room_id = ? AND status = ?", id, models.Admitted).Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return utils.Conflict("Room has active admissions and cannot be deleted")
		}
		return tx.Delete(&models.Room{}, id).Error
	})
	if err != nil {
		return err
	}
	s.events.Publish(events.EventRoomUpdated, map[string]interface{}{"id": room.ID, "deleted": true})
	return nil
}

type RoomStats struct {
	Total         int64                       `json:"total"`
	TotalCapacity int64                       `json:"totalCapacity"`
	Occupancy     int64                       `json:"occupancy"`
	ByStatus      map[models.RoomStatus]int64 `json:"byStatus"`
}

func (s *RoomService) Stats(ctx context.Context) (*RoomStats, error) {
	stats := &RoomStats{ByStatus: make(map[models.RoomStatus]int64, len(models.RoomStatuses))}
	for _, st := range models.RoomStatuses {
		stats.ByStatus[st] = 0
	}

	var rows []struct {
		Status    string
		Count     int64
		Capacity  int64
		Occupancy int64
	}
	err := s.db.WithContext(ctx).Model(&models.Room{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(capacity), 0) AS capacity, COALESCE(SUM(current_occupancy), 0) AS occupancy").
		Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if st, ok := models.ParseRoomStatus(r.Status); ok {
			stats.ByStatus[st] += r.Count
		}
		stats.Total += r.Count
		stats.TotalCapacity += r.Capacity
		stats.Occupancy += r.Occupancy
	}
	return stats, nil
}
