package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hospital-app/services"
	"github.com/yeremiapane/hospital-app/utils"
)

type RoomController struct {
	Rooms      *services.RoomService
	Admissions *services.AdmissionService
}

func NewRoomController(rooms *services.RoomService, admissions *services.AdmissionService) *RoomController {
	return &RoomController{Rooms: rooms, Admissions: admissions}
}

func (rc *RoomController) ListRooms(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := rc.Rooms.List(c.Request.Context(), services.RoomFilter{
		Search: c.Query("q"),
		Status: c.Query("status"),
		Type:   c.Query("type"),
	}, page, limit)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Rooms retrieved", result)
}

func (rc *RoomController) CreateRoom(c *gin.Context) {
	var body struct {
		RoomNumber string `json:"roomNumber" binding:"required"`
		Type       string `json:"type"`
		Floor      int    `json:"floor"`
		Capacity   int    `json:"capacity"`
		Status     string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	room, err := rc.Rooms.Create(c.Request.Context(), services.RoomInput{
		RoomNumber: body.RoomNumber,
		Type:       body.Type,
		Floor:      body.Floor,
		Capacity:   body.Capacity,
		Status:     body.Status,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Room created", room)
}

func (rc *RoomController) GetRoom(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	room, err := rc.Rooms.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Room detail", room)
}

func (rc *RoomController) UpdateRoomStatus(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var body struct {
		Status          string     `json:"status" binding:"required"`
		NextCleaningDue *time.Time `json:"nextCleaningDue"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	room, err := rc.Rooms.UpdateStatus(c.Request.Context(), id, body.Status, body.NextCleaningDue)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Room updated", room)
}

func (rc *RoomController) DeleteRoom(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := rc.Rooms.Delete(c.Request.Context(), id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Room deleted", gin.H{"id": id})
}

func (rc *RoomController) RoomStats(c *gin.Context) {
	stats, err := rc.Rooms.Stats(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Room statistics", stats)
}

func (rc *RoomController) ListAdmissions(c *gin.Context) {
	admissions, err := rc.Admissions.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Admissions retrieved", admissions)
}

func (rc *RoomController) Admit(c *gin.Context) {
	var body struct {
		PatientID   string `json:"patientId" binding:"required"`
		PatientName string `json:"patientName" binding:"required"`
		RoomID      uint   `json:"roomId" binding:"required"`
		DoctorName  string `json:"doctorName"`
		Reason      string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	admission, err := rc.Admissions.Admit(c.Request.Context(), services.AdmitInput{
		PatientID:   body.PatientID,
		PatientName: body.PatientName,
		RoomID:      body.RoomID,
		DoctorName:  body.DoctorName,
		Reason:      body.Reason,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Patient admitted", admission)
}

func (rc *RoomController) Discharge(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	admission, err := rc.Admissions.Discharge(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Patient discharged", admission)
}
