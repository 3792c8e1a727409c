package services

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/hospital-app/database"
	"github.com/yeremiapane/hospital-app/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:services_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db, database.DialectSQLite))
	return db
}

func seedRoom(t *testing.T, db *gorm.DB, number string, status models.RoomStatus) models.Room {
	t.Helper()
	room := models.Room{RoomNumber: number, Type: "General", Floor: 1, Capacity: 1, Status: status}
	require.NoError(t, db.Create(&room).Error)
	return room
}

func seedStaff(t *testing.T, db *gorm.DB, staff models.CleaningStaff) models.CleaningStaff {
	t.Helper()
	if staff.Email == "" {
		staff.Email = staff.Name + "@clean.local"
	}
	if staff.Phone == "" {
		staff.Phone = "000"
	}
	if staff.Status == "" {
		staff.Status = models.StaffAvailable
	}
	if staff.MaxTasks == 0 {
		staff.MaxTasks = 5
	}
	if staff.Shift == "" {
		staff.Shift = models.ShiftMorning
	}
	if staff.Specialization == nil {
		staff.Specialization = append(models.Specialization{}, models.CleaningTypes...)
	}
	require.NoError(t, db.Create(&staff).Error)
	return staff
}

func reloadStaff(t *testing.T, db *gorm.DB, id uint) models.CleaningStaff {
	t.Helper()
	var staff models.CleaningStaff
	require.NoError(t, db.First(&staff, id).Error)
	return staff
}

func reloadRoom(t *testing.T, db *gorm.DB, id uint) models.Room {
	t.Helper()
	var room models.Room
	require.NoError(t, db.First(&room, id).Error)
	return room
}

type recordedEvent struct {
	name string
	data interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{name: event, data: data})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.name)
	}
	return out
}
