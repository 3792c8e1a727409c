package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/hospital-app/events"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/monitoring"
	"github.com/yeremiapane/hospital-app/utils"
	"gorm.io/gorm"
)

var (
	ErrNoAvailableStaff = utils.Validation("No available staff for this cleaning type")
	ErrTaskNotFound     = utils.NotFound("Cleaning task not found")
	ErrRoomNotFound     = utils.NotFound("Room not found")
	ErrStaffNotFound    = utils.NotFound("Cleaning staff not found")
)

const defaultMaxTasks = 5

// Workload statements. MySQL evaluates SET assignments left to right, so
// status is assigned first while current_tasks still holds its old value.
const (
	claimStaffSQL = `UPDATE cleaning_staff
SET status = CASE WHEN current_tasks + 1 >= max_tasks THEN 'Busy' ELSE 'Available' END,
    current_tasks = current_tasks + 1,
    updated_at = ?
WHERE id = ? AND status = 'Available' AND current_tasks < max_tasks`

	incrementStaffSQL = `UPDATE cleaning_staff
SET status = CASE WHEN status = 'Off Duty' THEN status
                  WHEN current_tasks + 1 >= max_tasks THEN 'Busy'
                  ELSE 'Available' END,
    current_tasks = current_tasks + 1,
    updated_at = ?
WHERE id = ?`

	releaseStaffSQL = `UPDATE cleaning_staff
SET status = CASE WHEN status = 'Off Duty' THEN status
                  WHEN (CASE WHEN current_tasks > 0 THEN current_tasks - 1 ELSE 0 END) >= max_tasks THEN 'Busy'
                  ELSE 'Available' END,
    current_tasks = CASE WHEN current_tasks > 0 THEN current_tasks - 1 ELSE 0 END,
    updated_at = ?
WHERE id = ?`
)

// CleaningService dispatches room cleaning work orders to cleaning staff and
// keeps staff workload counters in step with task state.
type CleaningService struct {
	db      *gorm.DB
	events  events.Publisher
	metrics *monitoring.Collector
	now     func() time.Time
}

func NewCleaningService(db *gorm.DB, pub events.Publisher, metrics *monitoring.Collector) *CleaningService {
	if pub == nil {
		pub = events.Discard{}
	}
	return &CleaningService{
		db:      db,
		events:  pub,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type CreateTaskInput struct {
	RoomID            uint
	AssignedTo        string
	CleaningType      string
	Priority          string
	Notes             string
	EstimatedDuration int
}

type AssignCleaningInput struct {
	RoomID       uint
	RoomNumber   string
	CleaningType string
	Priority     string
	Notes        string
}

type CreateStaffInput struct {
	Name           string
	Phone          string
	Email          string
	Shift          string
	Specialization []string
	MaxTasks       int
}

type StaffUpdate struct {
	Name           *string
	Phone          *string
	Status         *string
	Shift          *string
	MaxTasks       *int
	Specialization []string
}

type TaskFilter struct {
	Status     string
	Priority   string
	AssignedTo string
	RoomID     uint
}

type CleaningStats struct {
	TotalTasks int64                        `json:"totalTasks"`
	TotalStaff int64                        `json:"totalStaff"`
	Tasks      map[models.TaskStatus]int64  `json:"tasks"`
	Staff      map[models.StaffStatus]int64 `json:"staff"`
}

func parseTaskFields(cleaningType, priority string) (models.CleaningType, models.TaskPriority, error) {
	ct, ok := models.ParseCleaningType(cleaningType)
	if !ok {
		return "", "", utils.Validation(fmt.Sprintf("Invalid cleaning type %q", cleaningType))
	}
	p, ok := models.ParseTaskPriority(priority)
	if !ok {
		return "", "", utils.Validation(fmt.Sprintf("Invalid priority %q", priority))
	}
	return ct, p, nil
}

func findRoom(tx *gorm.DB, id uint) (*models.Room, error) {
	var room models.Room
	if err := tx.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// staffByName resolves the weak reference a task keeps to its assignee.
// Names are not unique; the oldest matching row wins.
func staffByName(tx *gorm.DB, name string) (*models.CleaningStaff, error) {
	var staff models.CleaningStaff
	err := tx.Where("name = ?", name).Order("id").First(&staff).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (s *CleaningService) adjustWorkload(tx *gorm.DB, assignee string, stmt string) error {
	staff, err := staffByName(tx, assignee)
	if err != nil {
		return err
	}
	if staff == nil {
		utils.InfoLogger.WithField("assigned_to", assignee).Warn("No cleaning staff matches task assignee, workload unchanged")
		return nil
	}
	return tx.Exec(stmt, s.now(), staff.ID).Error
}

// CreateTask books a cleaning for a named staff member. The assignee's
// workload grows by one whether or not it is already at capacity.
func (s *CleaningService) CreateTask(ctx context.Context, in CreateTaskInput) (*models.CleaningTask, error) {
	task, err := s.createTask(ctx, in)
	s.metrics.RecordCleaningTask("create", err)
	if err != nil {
		return nil, err
	}
	s.events.Publish(events.EventCleaningTaskCreated, task)
	return task, nil
}

func (s *CleaningService) createTask(ctx context.Context, in CreateTaskInput) (*models.CleaningTask, error) {
	in.AssignedTo = strings.TrimSpace(in.AssignedTo)
	if in.RoomID == 0 || in.AssignedTo == "" {
		return nil, utils.Validation("roomId and assignedTo are required")
	}
	ct, priority, err := parseTaskFields(in.CleaningType, in.Priority)
	if err != nil {
		return nil, err
	}
	duration := in.EstimatedDuration
	if duration <= 0 {
		duration = ct.EstimatedMinutes()
	}

	var task models.CleaningTask
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := findRoom(tx, in.RoomID)
		if err != nil {
			return err
		}

		task = models.CleaningTask{
			RoomID:            room.ID,
			RoomNumber:        room.RoomNumber,
			AssignedTo:        in.AssignedTo,
			AssignedDate:      s.now(),
			Status:            models.TaskPending,
			Priority:          priority,
			CleaningType:      ct,
			Notes:             in.Notes,
			EstimatedDuration: duration,
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		return s.adjustWorkload(tx, task.AssignedTo, incrementStaffSQL)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// AssignCleaning picks the first qualifying staff member (by id) and claims
// one unit of their capacity with a conditional update. A claim that loses a
// race to a concurrent request falls through to the next candidate.
func (s *CleaningService) AssignCleaning(ctx context.Context, in AssignCleaningInput) (*models.CleaningTask, error) {
	task, err := s.assignCleaning(ctx, in)
	s.metrics.RecordCleaningTask("assign", err)
	if err != nil {
		return nil, err
	}
	s.events.Publish(events.EventCleaningTaskCreated, task)
	return task, nil
}

func (s *CleaningService) assignCleaning(ctx context.Context, in AssignCleaningInput) (*models.CleaningTask, error) {
	if in.RoomID == 0 {
		return nil, utils.Validation("roomId is required")
	}
	ct, priority, err := parseTaskFields(in.CleaningType, in.Priority)
	if err != nil {
		return nil, err
	}

	var task models.CleaningTask
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := findRoom(tx, in.RoomID)
		if err != nil {
			return err
		}
		roomNumber := strings.TrimSpace(in.RoomNumber)
		if roomNumber == "" {
			roomNumber = room.RoomNumber
		}

		var candidates []models.CleaningStaff
		if err := tx.Where("status = ? AND current_tasks < max_tasks", models.StaffAvailable).
			Order("id").Find(&candidates).Error; err != nil {
			return err
		}

		var chosen *models.CleaningStaff
		for i := range candidates {
			if !candidates[i].Specialization.Contains(ct) {
				continue
			}
			res := tx.Exec(claimStaffSQL, s.now(), candidates[i].ID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				chosen = &candidates[i]
				s.metrics.RecordStaffClaim(monitoring.ClaimWon)
				break
			}
			s.metrics.RecordStaffClaim(monitoring.ClaimLost)
		}
		if chosen == nil {
			s.metrics.RecordStaffClaim(monitoring.ClaimNoStaff)
			return ErrNoAvailableStaff
		}

		task = models.CleaningTask{
			RoomID:            room.ID,
			RoomNumber:        roomNumber,
			AssignedTo:        chosen.Name,
			AssignedDate:      s.now(),
			Status:            models.TaskPending,
			Priority:          priority,
			CleaningType:      ct,
			Notes:             in.Notes,
			EstimatedDuration: ct.EstimatedMinutes(),
		}
		return tx.Create(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateStatus moves a task to status. Order of states is not enforced.
// Entering Completed or Verified from an open state releases the assignee's
// workload; reopening a finished task takes it back. Completion always
// returns the room to Available.
func (s *CleaningService) UpdateStatus(ctx context.Context, taskID uint, status string, notes *string) (*models.CleaningTask, error) {
	task, err := s.updateStatus(ctx, taskID, status, notes)
	s.metrics.RecordCleaningTask("update_status", err)
	if err != nil {
		return nil, err
	}
	s.events.Publish(events.EventCleaningTaskUpdated, task)
	return task, nil
}

func (s *CleaningService) updateStatus(ctx context.Context, taskID uint, status string, notes *string) (*models.CleaningTask, error) {
	next, ok := models.ParseTaskStatus(status)
	if !ok {
		return nil, utils.Validation(fmt.Sprintf("Invalid status %q", status))
	}

	var task models.CleaningTask
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		prev := task.Status
		now := s.now()

		task.Status = next
		switch next {
		case models.TaskCompleted:
			if !prev.Released() || task.CompletedDate == nil {
				task.CompletedDate = &now
			}
		case models.TaskVerified:
			if task.CompletedDate == nil {
				task.CompletedDate = &now
			}
		default:
			task.CompletedDate = nil
		}
		if notes != nil {
			task.Notes = *notes
		}
		if err := tx.Save(&task).Error; err != nil {
			return err
		}

		switch {
		case next.Released() && !prev.Released():
			if err := s.adjustWorkload(tx, task.AssignedTo, releaseStaffSQL); err != nil {
				return err
			}
		case !next.Released() && prev.Released():
			if err := s.adjustWorkload(tx, task.AssignedTo, incrementStaffSQL); err != nil {
				return err
			}
		}

		// the first move into a finished state frees the room, however the task got there
		if next == models.TaskCompleted || (next.Released() && !prev.Released()) {
			return tx.Model(&models.Room{}).Where("id = ?", task.RoomID).Updates(map[string]interface{}{
				"status":       models.RoomAvailable,
				"last_cleaned": now,
				"updated_at":   now,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task. An open task gives its unit of workload back to
// the assignee first; a finished one already did so.
func (s *CleaningService) DeleteTask(ctx context.Context, taskID uint) (*models.CleaningTask, error) {
	var task models.CleaningTask
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		if !task.Status.Released() {
			if err := s.adjustWorkload(tx, task.AssignedTo, releaseStaffSQL); err != nil {
				return err
			}
		}
		return tx.Delete(&models.CleaningTask{}, task.ID).Error
	})
	s.metrics.RecordCleaningTask("delete", err)
	if err != nil {
		return nil, err
	}
	s.events.Publish(events.EventCleaningTaskDeleted, map[string]interface{}{"id": task.ID, "roomId": task.RoomID})
	return &task, nil
}

// CreateStaff registers a cleaner. A missing email is replaced by a
// placeholder derived from the phone number and the current time so the
// unique index never sees an empty value twice.
func (s *CleaningService) CreateStaff(ctx context.Context, in CreateStaffInput) (*models.CleaningStaff, error) {
	staff, err := s.createStaff(ctx, in)
	s.metrics.RecordCleaningTask("create_staff", err)
	if err != nil {
		return nil, err
	}
	s.events.Publish(events.EventCleaningStaffCreated, staff)
	return staff, nil
}

func (s *CleaningService) createStaff(ctx context.Context, in CreateStaffInput) (*models.CleaningStaff, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	if name == "" || phone == "" {
		return nil, utils.Validation("Name and phone are required")
	}

	shift := models.ShiftMorning
	if strings.TrimSpace(in.Shift) != "" {
		parsed, ok := models.ParseShift(in.Shift)
		if !ok {
			return nil, utils.Validation(fmt.Sprintf("Invalid shift %q", in.Shift))
		}
		shift = parsed
	}

	spec, err := models.ParseSpecialization(in.Specialization)
	if err != nil {
		return nil, utils.Validation(err.Error())
	}
	if len(spec) == 0 {
		spec = append(models.Specialization{}, models.CleaningTypes...)
	}

	maxTasks := in.MaxTasks
	if maxTasks < 0 {
		return nil, utils.Validation("maxTasks must be positive")
	}
	if maxTasks == 0 {
		maxTasks = defaultMaxTasks
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		email = PlaceholderEmail(phone, s.now())
	}

	staff := models.CleaningStaff{
		Name:           name,
		Email:          email,
		Phone:          phone,
		Status:         models.StaffAvailable,
		MaxTasks:       maxTasks,
		Specialization: spec,
		Shift:          shift,
	}
	if err := s.db.WithContext(ctx).Create(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.Conflict("A staff member with this email already exists")
		}
		return nil, err
	}
	return &staff, nil
}

// PlaceholderEmail is {phone or "staff"}-{unix ms}@clean.local.
func PlaceholderEmail(phone string, at time.Time) string {
	if phone == "" {
		phone = "staff"
	}
	return fmt.Sprintf("%s-%d@clean.local", phone, at.UnixMilli())
}

func (s *CleaningService) ListTasks(ctx context.Context, f TaskFilter) ([]models.CleaningTask, error) {
	q := s.db.WithContext(ctx).Model(&models.CleaningTask{})
	if f.Status != "" {
		st, ok := models.ParseTaskStatus(f.Status)
		if !ok {
			return nil, utils.Validation(fmt.Sprintf("Invalid status %q", f.Status))
		}
		q = q.Where("status = ?", st)
	}
	if f.Priority != "" {
		p, ok := models.ParseTaskPriority(f.Priority)
		if !ok {
			return nil, utils.Validation(fmt.Sprintf("Invalid priority %q", f.Priority))
		}
		q = q.Where("priority = ?", p)
	}
	if f.AssignedTo != "" {
		q = q.Where("assigned_to = ?", f.AssignedTo)
	}
	if f.RoomID != 0 {
		q = q.Where("room_id = ?", f.RoomID)
	}

	tasks := []models.CleaningTask{}
	if err := q.Order("assigned_date DESC").Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// TasksForDay returns tasks assigned within the UTC day containing day.
func (s *CleaningService) TasksForDay(ctx context.Context, day time.Time) ([]models.CleaningTask, error) {
	start, end := DayBounds(day)
	tasks := []models.CleaningTask{}
	err := s.db.WithContext(ctx).
		Where("assigned_date >= ? AND assigned_date < ?", start, end).
		Order("assigned_date").Find(&tasks).Error
	return tasks, err
}

func (s *CleaningService) ListStaff(ctx context.Context) ([]models.CleaningStaff, error) {
	staff := []models.CleaningStaff{}
	if err := s.db.WithContext(ctx).Order("name").Order("id").Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

func (s *CleaningService) GetStaff(ctx context.Context, id uint) (*models.CleaningStaff, error) {
	var staff models.CleaningStaff
	if err := s.db.WithContext(ctx).First(&staff, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return &staff, nil
}

// AvailableStaff lists staff that assignCleaning could pick right now, in
// the order it would try them. An empty cleaningType matches every type.
func (s *CleaningService) AvailableStaff(ctx context.Context, cleaningType string) ([]models.CleaningStaff, error) {
	var ct models.CleaningType
	if cleaningType != "" {
		parsed, ok := models.ParseCleaningType(cleaningType)
		if !ok {
			return nil, utils.Validation(fmt.Sprintf("Invalid cleaning type %q", cleaningType))
		}
		ct = parsed
	}

	var all []models.CleaningStaff
	if err := s.db.WithContext(ctx).Where("status = ? AND current_tasks < max_tasks", models.StaffAvailable).
		Order("id").Find(&all).Error; err != nil {
		return nil, err
	}
	out := []models.CleaningStaff{}
	for _, st := range all {
		if ct == "" || st.Specialization.Contains(ct) {
			out = append(out, st)
		}
	}
	return out, nil
}

// UpdateStaff applies an admin edit. Unless the result is Off Duty, status is
// recomputed from workload so Busy always means at capacity.
func (s *CleaningService) UpdateStaff(ctx context.Context, id uint, u StaffUpdate) (*models.CleaningStaff, error) {
	var staff models.CleaningStaff
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&staff, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStaffNotFound
			}
			return err
		}

		if u.Name != nil {
			if strings.TrimSpace(*u.Name) == "" {
				return utils.Validation("Name cannot be empty")
			}
			staff.Name = strings.TrimSpace(*u.Name)
		}
		if u.Phone != nil {
			if strings.TrimSpace(*u.Phone) == "" {
				return utils.Validation("Phone cannot be empty")
			}
			staff.Phone = strings.TrimSpace(*u.Phone)
		}
		if u.Shift != nil {
			shift, ok := models.ParseShift(*u.Shift)
			if !ok {
				return utils.Validation(fmt.Sprintf("Invalid shift %q", *u.Shift))
			}
			staff.Shift = shift
		}
		if u.MaxTasks != nil {
			if *u.MaxTasks <= 0 {
				return utils.Validation("maxTasks must be positive")
			}
			staff.MaxTasks = *u.MaxTasks
		}
		if u.Specialization != nil {
			spec, err := models.ParseSpecialization(u.Specialization)
			if err != nil {
				return utils.Validation(err.Error())
			}
			if len(spec) == 0 {
				return utils.Validation("specialization cannot be empty")
			}
			staff.Specialization = spec
		}
		if u.Status != nil {
			st, ok := models.ParseStaffStatus(*u.Status)
			if !ok {
				return utils.Validation(fmt.Sprintf("Invalid staff status %q", *u.Status))
			}
			staff.Status = st
		}

		if staff.Status != models.StaffOffDuty {
			staff.Status = models.StaffAvailable
			if staff.CurrentTasks >= staff.MaxTasks {
				staff.Status = models.StaffBusy
			}
		}
		return tx.Save(&staff).Error
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(events.EventCleaningStaffUpdated, &staff)
	return &staff, nil
}

func (s *CleaningService) Stats(ctx context.Context) (*CleaningStats, error) {
	stats := &CleaningStats{
		Tasks: make(map[models.TaskStatus]int64, len(models.TaskStatuses)),
		Staff: make(map[models.StaffStatus]int64, len(models.StaffStatuses)),
	}
	for _, st := range models.TaskStatuses {
		stats.Tasks[st] = 0
	}
	for _, st := range models.StaffStatuses {
		stats.Staff[st] = 0
	}

	type row struct {
		Status string
		Count  int64
	}
	db := s.db.WithContext(ctx)

	var taskRows []row
	if err := db.Model(&models.CleaningTask{}).Select("status, COUNT(*) AS count").Group("status").Scan(&taskRows).Error; err != nil {
		return nil, err
	}
	for _, r := range taskRows {
		if st, ok := models.ParseTaskStatus(r.Status); ok {
			stats.Tasks[st] += r.Count
		}
		stats.TotalTasks += r.Count
	}

	var staffRows []row
	if err := db.Model(&models.CleaningStaff{}).Select("status, COUNT(*) AS count").Group("status").Scan(&staffRows).Error; err != nil {
		return nil, err
	}
	for _, r := range staffRows {
		if st, ok := models.ParseStaffStatus(r.Status); ok {
			stats.Staff[st] += r.Count
		}
		stats.TotalStaff += r.Count
	}
	return stats, nil
}
