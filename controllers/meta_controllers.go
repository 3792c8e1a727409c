package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/utils"
)

// Badges serves the color/icon tables dashboards use to render enum values.
func Badges(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Badge tables", models.BadgeTables())
}
