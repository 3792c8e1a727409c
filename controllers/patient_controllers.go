package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/services"
	"github.com/yeremiapane/hospital-app/utils"
)

type PatientController struct {
	Service *services.PatientService
}

func NewPatientController(svc *services.PatientService) *PatientController {
	return &PatientController{Service: svc}
}

// ListPatients searches when ?q= is given, otherwise pages through active
// patients.
func (pc *PatientController) ListPatients(c *gin.Context) {
	if q := c.Query("q"); q != "" {
		patients, err := pc.Service.Search(c.Request.Context(), q)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Patients found", patients)
		return
	}

	page, limit := pageParams(c)
	result, err := pc.Service.List(c.Request.Context(), page, limit)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Patients retrieved", result)
}

func (pc *PatientController) CreatePatient(c *gin.Context) {
	var body models.Patient
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	patient, err := pc.Service.Create(c.Request.Context(), body)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Patient registered", patient)
}

func (pc *PatientController) GetPatient(c *gin.Context) {
	patient, err := pc.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Patient detail", patient)
}

func (pc *PatientController) UpdatePatient(c *gin.Context) {
	var body services.PatientUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	patient, err := pc.Service.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Patient updated", patient)
}

// DeletePatient deactivates; medical history is never removed.
func (pc *PatientController) DeletePatient(c *gin.Context) {
	patient, err := pc.Service.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Patient deactivated", patient)
}
