package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/hospital-app/database"
	"github.com/yeremiapane/hospital-app/events"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/router"
	"github.com/yeremiapane/hospital-app/services"
	"github.com/yeremiapane/hospital-app/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type apiClient struct {
	t     *testing.T
	base  string
	token string
}

func (a *apiClient) call(method, path string, body interface{}, out interface{}) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.base+path, &buf)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var env apiResponse
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&env))
	if out != nil && len(env.Data) > 0 {
		require.NoError(a.t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode
}

func setupIntegration(t *testing.T) (*httptest.Server, *gorm.DB, *events.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitLogger("error", "text")

	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db, database.DialectSQLite))

	hub := events.NewHub()
	srv := httptest.NewServer(router.SetupRouter(router.Deps{DB: db, Hub: hub}))
	t.Cleanup(func() {
		srv.Close()
		sqlDB.Close()
	})
	return srv, db, hub
}

// TestRoomTurnaround walks a room through admission, discharge and cleaning
// while a dashboard watches the event stream.
func TestRoomTurnaround(t *testing.T) {
	srv, db, hub := setupIntegration(t)

	_, err := services.NewUserService(db).Create(context.Background(), services.CreateUserInput{
		Name: "Ward Admin", Email: "admin@hospital.test", Password: "password123", Role: "admin",
	})
	require.NoError(t, err)

	api := &apiClient{t: t, base: srv.URL}
	var login struct {
		Token string `json:"token"`
	}
	require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/auth/login",
		map[string]string{"email": "admin@hospital.test", "password": "password123"}, &login))
	api.token = login.Token

	wsBase := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token="
	conn, _, err := websocket.DefaultDialer.Dial(wsBase+login.Token, nil)
	require.NoError(t, err)
	defer conn.Close()

	deskToken, err := utils.GenerateToken(99, string(models.RoleReceptionist))
	require.NoError(t, err)
	desk, _, err := websocket.DefaultDialer.Dial(wsBase+deskToken, nil)
	require.NoError(t, err)
	defer desk.Close()

	pharmacyToken, err := utils.GenerateToken(98, string(models.RolePharmacy))
	require.NoError(t, err)
	_, resp, err := websocket.DefaultDialer.Dial(wsBase+pharmacyToken, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	received := collect(conn)
	deskReceived := collect(desk)

	var room models.Room
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/api/admin/rooms",
		map[string]interface{}{"roomNumber": "W-12", "type": "Private", "floor": 2}, &room))

	var staff struct {
		ID uint `json:"id"`
	}
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/api/admin/cleaning",
		map[string]interface{}{"action": "createStaff", "name": "Meena", "phone": "5550101", "maxTasks": 1}, &staff))

	var admission models.Admission
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/api/admin/admissions",
		map[string]interface{}{"patientId": "PAT42", "patientName": "Arjun", "roomId": room.ID}, &admission))
	require.Equal(t, http.StatusOK, api.call(http.MethodPost,
		fmt.Sprintf("/api/admin/admissions/%d/discharge", admission.ID), nil, nil))

	require.Equal(t, http.StatusOK, api.call(http.MethodGet, fmt.Sprintf("/api/admin/rooms/%d", room.ID), nil, &room))
	assert.Equal(t, models.RoomCleaningRequired, room.Status)

	var task models.CleaningTask
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/api/admin/cleaning", map[string]interface{}{
		"action": "assignCleaning", "roomId": room.ID, "priority": "Urgent", "cleaningType": "Sanitization",
	}, &task))
	assert.Equal(t, "Meena", task.AssignedTo)

	// Meena is at capacity, so a second request finds nobody.
	assert.Equal(t, http.StatusBadRequest, api.call(http.MethodPost, "/api/admin/cleaning", map[string]interface{}{
		"action": "assignCleaning", "roomId": room.ID, "priority": "Low", "cleaningType": "Sanitization",
	}, nil))

	require.Equal(t, http.StatusOK, api.call(http.MethodPut, "/api/admin/cleaning",
		map[string]interface{}{"taskId": task.ID, "status": "In Progress"}, nil))
	require.Equal(t, http.StatusOK, api.call(http.MethodPut, "/api/admin/cleaning",
		map[string]interface{}{"taskId": task.ID, "status": "Completed"}, &task))
	assert.NotNil(t, task.CompletedDate)

	require.Equal(t, http.StatusOK, api.call(http.MethodGet, fmt.Sprintf("/api/admin/rooms/%d", room.ID), nil, &room))
	assert.Equal(t, models.RoomAvailable, room.Status)
	assert.NotNil(t, room.LastCleaned)

	var listing struct {
		Staff []models.CleaningStaff `json:"staff"`
	}
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/api/admin/cleaning", nil, &listing))
	require.Len(t, listing.Staff, 1)
	assert.Equal(t, 0, listing.Staff[0].CurrentTasks)
	assert.Equal(t, models.StaffAvailable, listing.Staff[0].Status)

	seen := map[string]int{}
	deadline := time.After(2 * time.Second)
	for seen[events.EventCleaningTaskUpdated] < 2 {
		select {
		case msg, ok := <-received:
			require.True(t, ok, "event stream closed early")
			seen[msg.Event]++
		case <-deadline:
			t.Fatalf("timed out waiting for events, got %v", seen)
		}
	}
	assert.Equal(t, 1, seen[events.EventCleaningStaffCreated])
	assert.Equal(t, 1, seen[events.EventCleaningTaskCreated])
	assert.GreaterOrEqual(t, seen[events.EventAdmissionUpdated], 2)

	// the front desk follows admissions but never sees cleaning staff or tasks
	deskSeen := map[string]int{}
	quiet := time.After(300 * time.Millisecond)
	for done := false; !done; {
		select {
		case msg, ok := <-deskReceived:
			require.True(t, ok, "desk stream closed early")
			deskSeen[msg.Event]++
		case <-quiet:
			done = true
		}
	}
	assert.Equal(t, map[string]int{events.EventAdmissionUpdated: seen[events.EventAdmissionUpdated]}, deskSeen)
}

func collect(conn *websocket.Conn) <-chan events.Message {
	received := make(chan events.Message, 64)
	go func() {
		for {
			var msg events.Message
			if err := conn.ReadJSON(&msg); err != nil {
				close(received)
				return
			}
			received <- msg
		}
	}()
	return received
}
