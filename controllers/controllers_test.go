package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/hospital-app/database"
	"github.com/yeremiapane/hospital-app/docstore"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/router"
	"github.com/yeremiapane/hospital-app/services"
	"github.com/yeremiapane/hospital-app/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitLogger("error", "text")
}

// setupTestDB opens a private in-memory sqlite database with the schema applied.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:controllers_%d?mode=memory&cache=shared", dbSeq.Add(1))
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

func setupRouterForTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	r := router.SetupRouter(router.Deps{
		DB:          db,
		Store:       docstore.NewMemoryStore(),
		CORSOrigins: []string{"http://localhost:3000"},
	})
	return r, db
}

func tokenFor(t *testing.T, role models.Role) string {
	t.Helper()
	token, err := utils.GenerateToken(1, string(role))
	require.NoError(t, err)
	return token
}

func do(t *testing.T, r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func seedRoom(t *testing.T, db *gorm.DB, number string) models.Room {
	t.Helper()
	room := models.Room{RoomNumber: number, Type: "General", Capacity: 1, Status: models.RoomCleaningRequired}
	require.NoError(t, db.Create(&room).Error)
	return room
}

func TestCleaningRouteRoleGate(t *testing.T) {
	r, _ := setupRouterForTest(t)

	w, env := do(t, r, http.MethodGet, "/api/admin/cleaning", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	for _, role := range []models.Role{models.RoleDoctor, models.RoleReceptionist, models.RoleStaff, models.RolePharmacy} {
		w, env = do(t, r, http.MethodGet, "/api/admin/cleaning", tokenFor(t, role), nil)
		assert.Equal(t, http.StatusForbidden, w.Code, role)
		assert.NotEmpty(t, env.Error)
	}

	for _, role := range []models.Role{models.RoleAdmin, models.RoleSuperAdmin, models.RoleHRManager} {
		w, env = do(t, r, http.MethodGet, "/api/admin/cleaning", tokenFor(t, role), nil)
		assert.Equal(t, http.StatusOK, w.Code, role)
		assert.True(t, env.Success)
	}
}

func TestCleaningRouteContract(t *testing.T) {
	r, db := setupRouterForTest(t)
	token := tokenFor(t, models.RoleAdmin)
	room := seedRoom(t, db, "R1")

	w, env := do(t, r, http.MethodPost, "/api/admin/cleaning", token, map[string]interface{}{
		"action": "createStaff", "name": "Asha", "phone": "999", "maxTasks": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotZero(t, created.ID)

	w, _ = do(t, r, http.MethodPost, "/api/admin/cleaning", token, map[string]interface{}{
		"action": "createStaff", "phone": "999",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, r, http.MethodPost, "/api/admin/cleaning", token, map[string]interface{}{
		"action": "createTask", "roomId": room.ID, "assignedTo": "Asha",
		"cleaningType": "Regular Clean", "priority": "High", "notes": "spill",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var task models.CleaningTask
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, "R1", task.RoomNumber)
	assert.Equal(t, models.TaskPending, task.Status)

	w, env = do(t, r, http.MethodGet, "/api/admin/cleaning?status=Pending", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Tasks []models.CleaningTask  `json:"tasks"`
		Staff []models.CleaningStaff `json:"staff"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	require.Len(t, listing.Tasks, 1)
	require.Len(t, listing.Staff, 1)
	assert.Equal(t, 1, listing.Staff[0].CurrentTasks)

	w, _ = do(t, r, http.MethodPut, "/api/admin/cleaning", token, map[string]interface{}{
		"taskId": 999, "status": "Completed",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodPut, "/api/admin/cleaning", token, map[string]interface{}{"taskId": task.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, r, http.MethodPut, "/api/admin/cleaning", token, map[string]interface{}{
		"taskId": task.ID, "status": "Completed", "notes": "done",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, models.TaskCompleted, task.Status)
	assert.NotNil(t, task.CompletedDate)

	var r1 models.Room
	require.NoError(t, db.First(&r1, room.ID).Error)
	assert.Equal(t, models.RoomAvailable, r1.Status)

	w, _ = do(t, r, http.MethodDelete, "/api/admin/cleaning", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, r, http.MethodDelete, "/api/admin/cleaning?taskId=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, r, http.MethodDelete, "/api/admin/cleaning?taskId=999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(t, r, http.MethodDelete, fmt.Sprintf("/api/admin/cleaning?taskId=%d", task.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, env = do(t, r, http.MethodPost, "/api/admin/cleaning", token, map[string]interface{}{"action": "teleport"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "teleport")
}

func TestAssignCleaningWithoutStaffIsBadRequest(t *testing.T) {
	r, db := setupRouterForTest(t)
	room := seedRoom(t, db, "ICU-1")

	w, env := do(t, r, http.MethodPost, "/api/admin/cleaning", tokenFor(t, models.RoleHRManager), map[string]interface{}{
		"action": "assignCleaning", "roomId": room.ID, "roomNumber": "ICU-1",
		"priority": "Urgent", "cleaningType": "Deep Clean",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No available staff for this cleaning type", env.Error)

	var count int64
	require.NoError(t, db.Model(&models.CleaningTask{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCleaningViewsAndReport(t *testing.T) {
	r, db := setupRouterForTest(t)
	token := tokenFor(t, models.RoleSuperAdmin)
	room := seedRoom(t, db, "R2")

	w, _ := do(t, r, http.MethodPost, "/api/admin/cleaning", token, map[string]interface{}{
		"action": "createStaff", "name": "Ravi", "phone": "1", "specialization": []string{"Deep Clean"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := do(t, r, http.MethodPost, "/api/admin/cleaning", token, map[string]interface{}{
		"action": "assignCleaning", "roomId": room.ID, "priority": "High", "cleaningType": "Deep Clean",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var task models.CleaningTask
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, "Ravi", task.AssignedTo)
	assert.Equal(t, 60, task.EstimatedDuration)

	w, env = do(t, r, http.MethodGet, "/api/admin/cleaning?action=stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats services.CleaningStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(1), stats.TotalTasks)
	assert.Equal(t, int64(1), stats.Tasks[models.TaskPending])

	w, env = do(t, r, http.MethodGet, "/api/admin/cleaning?action=availableStaff&cleaningType=Regular%20Clean", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, _ = do(t, r, http.MethodGet, "/api/admin/cleaning?action=unknown", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/admin/cleaning/report", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w, _ = do(t, r, http.MethodGet, "/api/admin/cleaning/report?date=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	maxTasks := 3
	w, env = do(t, r, http.MethodPatch, "/api/admin/cleaning/staff/1", token, map[string]interface{}{"maxTasks": maxTasks})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var staff models.CleaningStaff
	require.NoError(t, json.Unmarshal(env.Data, &staff))
	assert.Equal(t, maxTasks, staff.MaxTasks)
	assert.Equal(t, models.StaffAvailable, staff.Status)
}

func TestInternalErrorsAreHidden(t *testing.T) {
	r, db := setupRouterForTest(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w, env := do(t, r, http.MethodGet, "/api/admin/cleaning", tokenFor(t, models.RoleAdmin), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", env.Error)
}

func TestLoginProfileLogout(t *testing.T) {
	r, db := setupRouterForTest(t)
	_, err := services.NewUserService(db).Create(context.Background(), services.CreateUserInput{
		Name: "Nurse Joy", Email: "joy@hospital.test", Password: "password123", Role: "receptionist",
	})
	require.NoError(t, err)

	w, _ := do(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "joy@hospital.test", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := do(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "joy@hospital.test", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, models.RoleReceptionist, login.User.Role)
	assert.NotContains(t, string(env.Data), "password")

	w, env = do(t, r, http.MethodGet, "/api/auth/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "joy@hospital.test")

	w, _ = do(t, r, http.MethodPost, "/api/auth/users", login.Token, map[string]string{
		"name": "X", "email": "x@hospital.test", "password": "password123", "role": "admin",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/auth/logout", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/auth/profile", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminCreatesUsers(t *testing.T) {
	r, _ := setupRouterForTest(t)

	w, _ := do(t, r, http.MethodPost, "/api/auth/users", tokenFor(t, models.RoleAdmin), map[string]string{
		"name": "Dr. Rao", "email": "rao@hospital.test", "password": "password123", "role": "doctor",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/auth/users", tokenFor(t, models.RoleAdmin), map[string]string{
		"name": "Root", "email": "root@hospital.test", "password": "password123", "role": "super-admin",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/auth/users", tokenFor(t, models.RoleSuperAdmin), map[string]string{
		"name": "Root", "email": "root@hospital.test", "password": "password123", "role": "super-admin",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/auth/users", tokenFor(t, models.RoleSuperAdmin), map[string]string{
		"name": "Dup", "email": "rao@hospital.test", "password": "password123", "role": "doctor",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRoomsAndAdmissions(t *testing.T) {
	r, _ := setupRouterForTest(t)
	admin := tokenFor(t, models.RoleAdmin)
	reception := tokenFor(t, models.RoleReceptionist)

	w, env := do(t, r, http.MethodPost, "/api/admin/rooms", admin, map[string]interface{}{"roomNumber": "101", "floor": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var room models.Room
	require.NoError(t, json.Unmarshal(env.Data, &room))

	w, _ = do(t, r, http.MethodPost, "/api/admin/rooms", reception, map[string]interface{}{"roomNumber": "102"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = do(t, r, http.MethodPost, "/api/admin/admissions", reception, map[string]interface{}{
		"patientId": "PAT1", "patientName": "Ram", "roomId": room.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var admission models.Admission
	require.NoError(t, json.Unmarshal(env.Data, &admission))

	w, _ = do(t, r, http.MethodDelete, fmt.Sprintf("/api/admin/rooms/%d", room.ID), admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = do(t, r, http.MethodPost, fmt.Sprintf("/api/admin/admissions/%d/discharge", admission.ID), reception, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodGet, fmt.Sprintf("/api/admin/rooms/%d", room.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &room))
	assert.Equal(t, models.RoomCleaningRequired, room.Status)

	w, _ = do(t, r, http.MethodPatch, fmt.Sprintf("/api/admin/rooms/%d", room.ID), admin, map[string]string{"status": "Available"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodGet, "/api/admin/rooms/stats", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"total":1`)

	w, _ = do(t, r, http.MethodGet, "/api/admin/rooms/abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/admin/rooms/77", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatientsAndBilling(t *testing.T) {
	r, _ := setupRouterForTest(t)
	reception := tokenFor(t, models.RoleReceptionist)

	for _, name := range []string{"Ram Kumar", "Sita Devi", "Bikram"} {
		w, _ := do(t, r, http.MethodPost, "/api/patients", reception, map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, env := do(t, r, http.MethodGet, "/api/patients?q=ram", reception, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found []models.Patient
	require.NoError(t, json.Unmarshal(env.Data, &found))
	assert.Len(t, found, 2)

	w, _ = do(t, r, http.MethodGet, "/api/patients/PAT-UNKNOWN", reception, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(t, r, http.MethodPost, "/api/billing", reception, map[string]interface{}{
		"patientId": found[0].PatientID,
		"items":     []map[string]interface{}{{"description": "Consultation", "quantity": 1, "unitPrice": 250}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var bill models.Bill
	require.NoError(t, json.Unmarshal(env.Data, &bill))

	w, _ = do(t, r, http.MethodPost, "/api/billing/"+bill.BillID+"/pay", reception, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = do(t, r, http.MethodGet, "/api/billing/revenue", reception, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var revenue services.DailyRevenue
	require.NoError(t, json.Unmarshal(env.Data, &revenue))
	assert.Equal(t, 250.0, revenue.TotalRevenue)
	assert.Equal(t, int64(1), revenue.TotalBills)

	w, _ = do(t, r, http.MethodGet, "/api/medical-records?patientId=x", reception, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPublicEndpoints(t *testing.T) {
	r, _ := setupRouterForTest(t)

	w, _ := do(t, r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/ping",status_code="200"} 1`)

	w, _ = do(t, r, http.MethodGet, "/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := do(t, r, http.MethodGet, "/api/meta/badges", tokenFor(t, models.RoleStaff), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"Deep Clean"`)
}

func TestEventStreamRoleGate(t *testing.T) {
	r, _ := setupRouterForTest(t)

	w, _ := do(t, r, http.MethodGet, "/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	for _, role := range []models.Role{models.RolePharmacy, models.RoleDoctor, models.RoleStaff} {
		w, env := do(t, r, http.MethodGet, "/ws?token="+tokenFor(t, role), "", nil)
		assert.Equal(t, http.StatusForbidden, w.Code, role)
		assert.False(t, env.Success)
	}

	// past the gate a plain GET fails the websocket handshake instead
	for _, role := range []models.Role{models.RoleHRManager, models.RoleReceptionist} {
		w, _ = do(t, r, http.MethodGet, "/ws?token="+tokenFor(t, role), "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, role)
	}
}
