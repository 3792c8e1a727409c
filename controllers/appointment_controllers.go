package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/services"
	"github.com/yeremiapane/hospital-app/utils"
)

type AppointmentController struct {
	Service *services.AppointmentService
}

func NewAppointmentController(svc *services.AppointmentService) *AppointmentController {
	return &AppointmentController{Service: svc}
}

func (ac *AppointmentController) ListAppointments(c *gin.Context) {
	ctx := c.Request.Context()
	date := c.Query("date")
	doctorID := c.Query("doctorId")

	if doctorID == "" && date == "" {
		page, limit := pageParams(c)
		result, err := ac.Service.List(ctx, page, limit)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Appointments retrieved", result)
		return
	}

	var (
		appointments []models.Appointment
		err          error
	)
	switch {
	case doctorID != "" && date != "":
		day, perr := services.ParseDay(date)
		if perr != nil {
			utils.RespondAppError(c, perr)
			return
		}
		appointments, err = ac.Service.ForDoctor(ctx, doctorID, &day)
	case doctorID != "":
		appointments, err = ac.Service.ForDoctor(ctx, doctorID, nil)
	default:
		day, perr := services.ParseDay(date)
		if perr != nil {
			utils.RespondAppError(c, perr)
			return
		}
		appointments, err = ac.Service.ForDay(ctx, day)
	}
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Appointments retrieved", appointments)
}

func (ac *AppointmentController) CreateAppointment(c *gin.Context) {
	var body models.Appointment
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	appointment, err := ac.Service.Create(c.Request.Context(), body)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Appointment booked", appointment)
}

func (ac *AppointmentController) GetAppointment(c *gin.Context) {
	appointment, err := ac.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Appointment detail", appointment)
}

func (ac *AppointmentController) UpdateAppointmentStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	appointment, err := ac.Service.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Appointment updated", appointment)
}
