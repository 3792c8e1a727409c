package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hospital-app/services"
	"github.com/yeremiapane/hospital-app/utils"
)

type CleaningController struct {
	Service *services.CleaningService
}

func NewCleaningController(svc *services.CleaningService) *CleaningController {
	return &CleaningController{Service: svc}
}

// cleaningRequest is the union of the bodies POST accepts, keyed by Action.
type cleaningRequest struct {
	Action string `json:"action"`

	RoomID            uint   `json:"roomId"`
	RoomNumber        string `json:"roomNumber"`
	AssignedTo        string `json:"assignedTo"`
	CleaningType      string `json:"cleaningType"`
	Priority          string `json:"priority"`
	Notes             string `json:"notes"`
	EstimatedDuration int    `json:"estimatedDuration"`

	Name           string   `json:"name"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email"`
	Shift          string   `json:"shift"`
	Specialization []string `json:"specialization"`
	MaxTasks       int      `json:"maxTasks"`
}

// Get serves the dashboard: tasks and staff by default, or one of the
// stats/availableStaff views selected by ?action=.
func (cc *CleaningController) Get(c *gin.Context) {
	ctx := c.Request.Context()

	switch action := c.Query("action"); action {
	case "stats":
		stats, err := cc.Service.Stats(ctx)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Cleaning statistics", stats)

	case "availableStaff":
		staff, err := cc.Service.AvailableStaff(ctx, c.Query("cleaningType"))
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Available staff", staff)

	case "":
		filter := services.TaskFilter{
			Status:     c.Query("status"),
			Priority:   c.Query("priority"),
			AssignedTo: c.Query("assignedTo"),
		}
		if raw := c.Query("roomId"); raw != "" {
			id, err := parseID(raw, "roomId")
			if err != nil {
				utils.RespondAppError(c, err)
				return
			}
			filter.RoomID = id
		}

		tasks, err := cc.Service.ListTasks(ctx, filter)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		staff, err := cc.Service.ListStaff(ctx)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Cleaning data retrieved", gin.H{
			"tasks": tasks,
			"staff": staff,
		})

	default:
		utils.RespondAppError(c, utils.Validation(fmt.Sprintf("Unknown action %q", action)))
	}
}

func (cc *CleaningController) Post(c *gin.Context) {
	var body cleaningRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	ctx := c.Request.Context()

	switch body.Action {
	case "createTask":
		task, err := cc.Service.CreateTask(ctx, services.CreateTaskInput{
			RoomID:            body.RoomID,
			AssignedTo:        body.AssignedTo,
			CleaningType:      body.CleaningType,
			Priority:          body.Priority,
			Notes:             body.Notes,
			EstimatedDuration: body.EstimatedDuration,
		})
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusCreated, "Cleaning task created", task)

	case "assignCleaning":
		task, err := cc.Service.AssignCleaning(ctx, services.AssignCleaningInput{
			RoomID:       body.RoomID,
			RoomNumber:   body.RoomNumber,
			CleaningType: body.CleaningType,
			Priority:     body.Priority,
			Notes:        body.Notes,
		})
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusCreated, "Cleaning assigned to "+task.AssignedTo, task)

	case "createStaff":
		staff, err := cc.Service.CreateStaff(ctx, services.CreateStaffInput{
			Name:           body.Name,
			Phone:          body.Phone,
			Email:          body.Email,
			Shift:          body.Shift,
			Specialization: body.Specialization,
			MaxTasks:       body.MaxTasks,
		})
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusCreated, "Cleaning staff created", gin.H{"id": staff.ID})

	default:
		utils.RespondAppError(c, utils.Validation(fmt.Sprintf("Unknown action %q", body.Action)))
	}
}

// Put moves a task to a new status.
func (cc *CleaningController) Put(c *gin.Context) {
	var body struct {
		TaskID uint    `json:"taskId"`
		Status string  `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.TaskID == 0 || body.Status == "" {
		utils.RespondAppError(c, utils.Validation("taskId and status are required"))
		return
	}

	task, err := cc.Service.UpdateStatus(c.Request.Context(), body.TaskID, body.Status, body.Notes)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cleaning task updated", task)
}

func (cc *CleaningController) Delete(c *gin.Context) {
	raw := c.Query("taskId")
	if raw == "" {
		utils.RespondAppError(c, utils.Validation("taskId is required"))
		return
	}
	id, err := parseID(raw, "taskId")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if _, err := cc.Service.DeleteTask(c.Request.Context(), id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cleaning task deleted", nil)
}

func (cc *CleaningController) UpdateStaff(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var body struct {
		Name           *string  `json:"name"`
		Phone          *string  `json:"phone"`
		Status         *string  `json:"status"`
		Shift          *string  `json:"shift"`
		MaxTasks       *int     `json:"maxTasks"`
		Specialization []string `json:"specialization"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	staff, err := cc.Service.UpdateStaff(c.Request.Context(), id, services.StaffUpdate{
		Name:           body.Name,
		Phone:          body.Phone,
		Status:         body.Status,
		Shift:          body.Shift,
		MaxTasks:       body.MaxTasks,
		Specialization: body.Specialization,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cleaning staff updated", staff)
}

// Report streams the PDF for ?date= (today when omitted).
func (cc *CleaningController) Report(c *gin.Context) {
	day, err := services.ParseDay(c.Query("date"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	tasks, err := cc.Service.TasksForDay(c.Request.Context(), day)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.WriteDailyReport(&buf, day, tasks); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	filename := "cleaning-report-" + day.Format(services.DateLayout) + ".pdf"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
