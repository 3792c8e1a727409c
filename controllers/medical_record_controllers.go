package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/services"
	"github.com/yeremiapane/hospital-app/utils"
)

type MedicalRecordController struct {
	Service *services.MedicalRecordService
}

func NewMedicalRecordController(svc *services.MedicalRecordService) *MedicalRecordController {
	return &MedicalRecordController{Service: svc}
}

func (mc *MedicalRecordController) ListRecords(c *gin.Context) {
	patientID := c.Query("patientId")
	if patientID == "" {
		utils.RespondAppError(c, utils.Validation("patientId is required"))
		return
	}
	records, err := mc.Service.ForPatient(c.Request.Context(), patientID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Medical records retrieved", records)
}

func (mc *MedicalRecordController) CreateRecord(c *gin.Context) {
	var body models.MedicalRecord
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	record, err := mc.Service.Create(c.Request.Context(), body)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Medical record created", record)
}

func (mc *MedicalRecordController) GetRecord(c *gin.Context) {
	record, err := mc.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Medical record detail", record)
}

func (mc *MedicalRecordController) UpdateRecord(c *gin.Context) {
	var body services.MedicalRecordUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	record, err := mc.Service.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Medical record updated", record)
}
