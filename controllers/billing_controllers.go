package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/services"
	"github.com/yeremiapane/hospital-app/utils"
)

type BillingController struct {
	Service *services.BillingService
}

func NewBillingController(svc *services.BillingService) *BillingController {
	return &BillingController{Service: svc}
}

func (bc *BillingController) ListBills(c *gin.Context) {
	if patientID := c.Query("patientId"); patientID != "" {
		bills, err := bc.Service.ForPatient(c.Request.Context(), patientID)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Bills retrieved", bills)
		return
	}

	page, limit := pageParams(c)
	result, err := bc.Service.List(c.Request.Context(), page, limit)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bills retrieved", result)
}

func (bc *BillingController) CreateBill(c *gin.Context) {
	var body models.Bill
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	bill, err := bc.Service.Create(c.Request.Context(), body)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Bill created", bill)
}

func (bc *BillingController) GetBill(c *gin.Context) {
	bill, err := bc.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill detail", bill)
}

func (bc *BillingController) PayBill(c *gin.Context) {
	var body struct {
		PaymentMethod string `json:"paymentMethod"`
	}
	// empty body means cash
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}
	bill, err := bc.Service.MarkPaid(c.Request.Context(), c.Param("id"), body.PaymentMethod)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill paid", bill)
}

func (bc *BillingController) DailyRevenue(c *gin.Context) {
	day, err := services.ParseDay(c.Query("date"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	revenue, err := bc.Service.GetDailyRevenue(c.Request.Context(), day)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Daily revenue", revenue)
}
