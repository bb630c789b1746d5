// controllers/treatment.go
package controllers

import (
	"net/http"
	"strings"

	"nebula-backend/services"
	"nebula-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ReminderScheduler is the part of services.ReminderScheduler the handlers use.
type ReminderScheduler interface {
	Schedule(req services.ScheduleRequest) (*services.ScheduledReminder, error)
	ListForUser(email string) []services.ReminderSummary
	Cancel(id uuid.UUID) error
}

type TreatmentController struct {
	Scheduler ReminderScheduler
}

type ScheduleReminderInput struct {
	TreatmentDateTime string `json:"treatmentDateTime"`
	Duration          int    `json:"duration"`
	UserEmail         string `json:"userEmail"`
	UserName          string `json:"userName"`
	UserPhone         string `json:"userPhone"`
}

// ScheduleTreatmentReminder arms an email reminder 30 minutes before a treatment.
func (tc *TreatmentController) ScheduleTreatmentReminder(c *gin.Context) {
	var input ScheduleReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Fall back to the authenticated user
	_, email, name, _ := utils.CurrentUser(c)
	if strings.TrimSpace(input.UserEmail) == "" {
		input.UserEmail = email
	}
	if strings.TrimSpace(input.UserName) == "" {
		input.UserName = name
	}

	req := services.ScheduleRequest{
		UserEmail: input.UserEmail,
		UserName:  input.UserName,
		UserPhone: input.UserPhone,
		Duration:  input.Duration,
	}
	if input.TreatmentDateTime != "" {
		t, err := parseDateTime(input.TreatmentDateTime)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid treatmentDateTime format")
			return
		}
		req.TreatmentTime = t
	}
	phone, ok := utils.NormalizePhone(req.UserPhone)
	if !ok {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	req.UserPhone = phone

	result, err := tc.Scheduler.Schedule(req)
	if err != nil {
		respondSchedulerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"message":      "Treatment reminder scheduled successfully",
		"reminderId":   result.ID,
		"reminderTime": result.ReminderTime,
	})
}

// GetUserTreatmentReminders lists pending reminders for an email address.
func (tc *TreatmentController) GetUserTreatmentReminders(c *gin.Context) {
	userEmail := strings.TrimSpace(c.Param("userEmail"))
	if userEmail == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "User email is required")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"reminders": tc.Scheduler.ListForUser(userEmail),
	})
}

// CancelTreatmentReminder retires a pending reminder.
func (tc *TreatmentController) CancelTreatmentReminder(c *gin.Context) {
	reminderID, ok := pathUUID(c, "reminderId", "reminder")
	if !ok {
		return
	}

	if err := tc.Scheduler.Cancel(reminderID); err != nil {
		respondSchedulerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reminder cancelled successfully",
	})
}

func respondSchedulerError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err), services.IsPastTime(err):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case services.IsNotFound(err):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrSchedulerStopped):
		utils.RespondWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "An error occurred while scheduling the reminder")
	}
}
