package models

import "strings"

// Badge is how dashboards render an enum value.
type Badge struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// lookup resolves s against a badge table, ignoring case and surrounding
// space. A value without a badge is not a valid value.
func lookup[T ~string](table map[T]Badge, s string) (T, bool) {
	s = strings.TrimSpace(s)
	if _, ok := table[T(s)]; ok {
		return T(s), true
	}
	for v := range table {
		if strings.EqualFold(string(v), s) {
			return v, true
		}
	}
	return "", false
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "Pending"
	TaskInProgress TaskStatus = "In Progress"
	TaskCompleted  TaskStatus = "Completed"
	TaskVerified   TaskStatus = "Verified"
)

// legacyScheduled is what older rows carry for a task nobody has started.
const legacyScheduled = "Scheduled"

var TaskStatuses = []TaskStatus{TaskPending, TaskInProgress, TaskCompleted, TaskVerified}

var taskStatusBadges = map[TaskStatus]Badge{
	TaskPending:    {Color: "yellow", Icon: "clock"},
	TaskInProgress: {Color: "blue", Icon: "loader"},
	TaskCompleted:  {Color: "green", Icon: "check-circle"},
	TaskVerified:   {Color: "purple", Icon: "shield-check"},
}

func ParseTaskStatus(s string) (TaskStatus, bool) {
	if strings.EqualFold(strings.TrimSpace(s), legacyScheduled) {
		return TaskPending, true
	}
	return lookup(taskStatusBadges, s)
}

func (s TaskStatus) Valid() bool {
	_, ok := taskStatusBadges[s]
	return ok
}

// Released reports whether a task in this status no longer counts toward its
// assignee's workload.
func (s TaskStatus) Released() bool {
	return s == TaskCompleted || s == TaskVerified
}

func (s TaskStatus) Badge() Badge { return taskStatusBadges[s] }

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
	PriorityUrgent TaskPriority = "Urgent"
)

var TaskPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

var priorityBadges = map[TaskPriority]Badge{
	PriorityLow:    {Color: "gray", Icon: "arrow-down"},
	PriorityMedium: {Color: "blue", Icon: "minus"},
	PriorityHigh:   {Color: "orange", Icon: "arrow-up"},
	PriorityUrgent: {Color: "red", Icon: "alert-triangle"},
}

func ParseTaskPriority(s string) (TaskPriority, bool) { return lookup(priorityBadges, s) }

func (p TaskPriority) Valid() bool  { _, ok := priorityBadges[p]; return ok }
func (p TaskPriority) Badge() Badge { return priorityBadges[p] }

type CleaningType string

const (
	RegularClean CleaningType = "Regular Clean"
	DeepClean    CleaningType = "Deep Clean"
	Sanitization CleaningType = "Sanitization"
	Maintenance  CleaningType = "Maintenance"
)

var CleaningTypes = []CleaningType{RegularClean, DeepClean, Sanitization, Maintenance}

var cleaningTypeBadges = map[CleaningType]Badge{
	RegularClean: {Color: "blue", Icon: "sparkles"},
	DeepClean:    {Color: "indigo", Icon: "droplets"},
	Sanitization: {Color: "teal", Icon: "spray-can"},
	Maintenance:  {Color: "amber", Icon: "wrench"},
}

func ParseCleaningType(s string) (CleaningType, bool) { return lookup(cleaningTypeBadges, s) }

func (t CleaningType) Valid() bool  { _, ok := cleaningTypeBadges[t]; return ok }
func (t CleaningType) Badge() Badge { return cleaningTypeBadges[t] }

// EstimatedMinutes is the default duration booked for a cleaning of this type.
func (t CleaningType) EstimatedMinutes() int {
	if t == DeepClean {
		return 60
	}
	return 30
}

type StaffStatus string

const (
	StaffAvailable StaffStatus = "Available"
	StaffBusy      StaffStatus = "Busy"
	StaffOffDuty   StaffStatus = "Off Duty"
)

var StaffStatuses = []StaffStatus{StaffAvailable, StaffBusy, StaffOffDuty}

var staffStatusBadges = map[StaffStatus]Badge{
	StaffAvailable: {Color: "green", Icon: "user-check"},
	StaffBusy:      {Color: "orange", Icon: "user-clock"},
	StaffOffDuty:   {Color: "gray", Icon: "user-x"},
}

func ParseStaffStatus(s string) (StaffStatus, bool) { return lookup(staffStatusBadges, s) }

func (s StaffStatus) Valid() bool  { _, ok := staffStatusBadges[s]; return ok }
func (s StaffStatus) Badge() Badge { return staffStatusBadges[s] }

type Shift string

const (
	ShiftMorning   Shift = "Morning"
	ShiftAfternoon Shift = "Afternoon"
	ShiftEvening   Shift = "Evening"
	ShiftNight     Shift = "Night"
)

var Shifts = []Shift{ShiftMorning, ShiftAfternoon, ShiftEvening, ShiftNight}

var shiftBadges = map[Shift]Badge{
	ShiftMorning:   {Color: "yellow", Icon: "sunrise"},
	ShiftAfternoon: {Color: "orange", Icon: "sun"},
	ShiftEvening:   {Color: "indigo", Icon: "sunset"},
	ShiftNight:     {Color: "slate", Icon: "moon"},
}

func ParseShift(s string) (Shift, bool) { return lookup(shiftBadges, s) }

func (sh Shift) Valid() bool  { _, ok := shiftBadges[sh]; return ok }
func (sh Shift) Badge() Badge { return shiftBadges[sh] }

type RoomStatus string

const (
	RoomAvailable          RoomStatus = "Available"
	RoomOccupied           RoomStatus = "Occupied"
	RoomUnderMaintenance   RoomStatus = "Under Maintenance"
	RoomCleaningRequired   RoomStatus = "Cleaning Required"
	RoomCleaningInProgress RoomStatus = "Cleaning In Progress"
)

var RoomStatuses = []RoomStatus{RoomAvailable, RoomOccupied, RoomUnderMaintenance, RoomCleaningRequired, RoomCleaningInProgress}

var roomStatusBadges = map[RoomStatus]Badge{
	RoomAvailable:          {Color: "green", Icon: "bed"},
	RoomOccupied:           {Color: "red", Icon: "user"},
	RoomUnderMaintenance:   {Color: "amber", Icon: "wrench"},
	RoomCleaningRequired:   {Color: "orange", Icon: "alert-circle"},
	RoomCleaningInProgress: {Color: "blue", Icon: "sparkles"},
}

func ParseRoomStatus(s string) (RoomStatus, bool) { return lookup(roomStatusBadges, s) }

func (s RoomStatus) Valid() bool  { _, ok := roomStatusBadges[s]; return ok }
func (s RoomStatus) Badge() Badge { return roomStatusBadges[s] }

type Role string

const (
	RoleReceptionist Role = "receptionist"
	RoleStaff        Role = "staff"
	RoleDoctor       Role = "doctor"
	RoleAdmin        Role = "admin"
	RoleSuperAdmin   Role = "super-admin"
	RolePharmacy     Role = "pharmacy"
	RoleHRManager    Role = "hr_manager"
)

var Roles = []Role{RoleReceptionist, RoleStaff, RoleDoctor, RoleAdmin, RoleSuperAdmin, RolePharmacy, RoleHRManager}

var roleBadges = map[Role]Badge{
	RoleReceptionist: {Color: "cyan", Icon: "clipboard"},
	RoleStaff:        {Color: "gray", Icon: "users"},
	RoleDoctor:       {Color: "blue", Icon: "stethoscope"},
	RoleAdmin:        {Color: "purple", Icon: "settings"},
	RoleSuperAdmin:   {Color: "red", Icon: "crown"},
	RolePharmacy:     {Color: "green", Icon: "pill"},
	RoleHRManager:    {Color: "amber", Icon: "briefcase"},
}

func ParseRole(s string) (Role, bool) { return lookup(roleBadges, s) }

func (r Role) Valid() bool  { _, ok := roleBadges[r]; return ok }
func (r Role) Badge() Badge { return roleBadges[r] }

// Roles allowed on each staff area. The router gates routes with these and
// the event hub uses them to pick who receives which events.
var (
	CleaningRoles  = []Role{RoleAdmin, RoleSuperAdmin, RoleHRManager}
	RoomRoles      = []Role{RoleAdmin, RoleSuperAdmin}
	AdmissionRoles = []Role{RoleReceptionist, RoleAdmin, RoleSuperAdmin}
)

// HasRole reports whether r is one of roles.
func HasRole(roles []Role, r Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

// BadgeTables is the full lookup served to dashboards.
func BadgeTables() map[string]map[string]Badge {
	out := map[string]map[string]Badge{
		"taskStatus":   {},
		"priority":     {},
		"cleaningType": {},
		"staffStatus":  {},
		"shift":        {},
		"roomStatus":   {},
		"role":         {},
	}
	for k, v := range taskStatusBadges {
		out["taskStatus"][string(k)] = v
	}
	for k, v := range priorityBadges {
		out["priority"][string(k)] = v
	}
	for k, v := range cleaningTypeBadges {
		out["cleaningType"][string(k)] = v
	}
	for k, v := range staffStatusBadges {
		out["staffStatus"][string(k)] = v
	}
	for k, v := range shiftBadges {
		out["shift"][string(k)] = v
	}
	for k, v := range roomStatusBadges {
		out["roomStatus"][string(k)] = v
	}
	for k, v := range roleBadges {
		out["role"][string(k)] = v
	}
	return out
}
