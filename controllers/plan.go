package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"nebula-backend/config"
	"nebula-backend/models"
	"nebula-backend/services"
	"nebula-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TreatmentPlanController keeps a plan's reminder in step with its scheduled time.
type TreatmentPlanController struct {
	Scheduler ReminderScheduler
}

type TreatmentPlanInput struct {
	ScheduledTime   string `json:"scheduledTime" binding:"required"`
	Duration        int    `json:"duration" binding:"required,min=1,max=240"`
	ReminderEmail   *bool  `json:"reminderEmail"`
	UserPhone       string `json:"userPhone"`
	CurrentSymptoms string `json:"currentSymptoms"`
	EnergyLevel     *int   `json:"energyLevel" binding:"omitempty,min=1,max=10"`
	SleepQuality    *int   `json:"sleepQuality" binding:"omitempty,min=1,max=10"`
	MedicationTaken string `json:"medicationTaken"`
	TreatmentGoals  string `json:"treatmentGoals"`
}

func (pc *TreatmentPlanController) CreatePlan(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}

	var input TreatmentPlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	scheduled, ok := futureTime(c, input.ScheduledTime)
	if !ok {
		return
	}

	plan := models.TreatmentPlan{
		ID:            uuid.New(),
		UserID:        userID,
		ReminderEmail: true,
		EnergyLevel:   5,
		SleepQuality:  5,
	}
	applyPlanInput(&plan, &input, scheduled)

	warning := pc.armReminder(c, &plan, input.UserPhone)
	if c.IsAborted() {
		return
	}

	if err := config.DB.Create(&plan).Error; err != nil {
		pc.disarmReminder(&plan)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create treatment plan")
		return
	}

	resp := gin.H{"success": true, "plan": plan}
	if warning != "" {
		resp["reminderWarning"] = warning
	}
	c.JSON(http.StatusCreated, resp)
}

// GetPlans lists the caller's upcoming plans; ?all=true includes past ones.
func (pc *TreatmentPlanController) GetPlans(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}

	query := config.DB.Where("user_id = ?", userID)
	if c.Query("all") != "true" {
		query = query.Where("scheduled_time >= ?", time.Now())
	}

	var plans []models.TreatmentPlan
	if err := query.Order("scheduled_time ASC").Find(&plans).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve treatment plans")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "plans": plans})
}

// UpdatePlan reschedules a plan, replacing its reminder.
func (pc *TreatmentPlanController) UpdatePlan(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}
	planID, ok := pathUUID(c, "id", "plan")
	if !ok {
		return
	}

	var input TreatmentPlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	scheduled, ok := futureTime(c, input.ScheduledTime)
	if !ok {
		return
	}

	plan, ok := loadPlan(c, userID, planID)
	if !ok {
		return
	}

	// The old reminder stays armed until the new row is saved.
	previous := plan.ReminderID
	applyPlanInput(plan, &input, scheduled)

	warning := pc.armReminder(c, plan, input.UserPhone)
	if c.IsAborted() {
		return
	}

	if err := config.DB.Save(plan).Error; err != nil {
		pc.disarmReminder(plan)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update treatment plan")
		return
	}
	pc.cancelReminder(previous, plan.ID)

	resp := gin.H{"success": true, "plan": plan}
	if warning != "" {
		resp["reminderWarning"] = warning
	}
	c.JSON(http.StatusOK, resp)
}

func (pc *TreatmentPlanController) DeletePlan(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}
	planID, ok := pathUUID(c, "id", "plan")
	if !ok {
		return
	}

	plan, ok := loadPlan(c, userID, planID)
	if !ok {
		return
	}

	if err := config.DB.Delete(&models.TreatmentPlan{}, "id = ?", plan.ID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete treatment plan")
		return
	}
	pc.disarmReminder(plan)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Treatment plan deleted successfully"})
}

// armReminder schedules the plan's reminder when requested. A plan too close
// to start for a reminder is still saved, and the returned warning says why.
// Other scheduling errors abort the request.
func (pc *TreatmentPlanController) armReminder(c *gin.Context, plan *models.TreatmentPlan, phone string) string {
	plan.ReminderID = nil
	if !plan.ReminderEmail {
		return ""
	}

	_, email, name, _ := utils.CurrentUser(c)
	result, err := pc.Scheduler.Schedule(services.ScheduleRequest{
		UserEmail:     email,
		UserName:      name,
		UserPhone:     phone,
		TreatmentTime: plan.ScheduledTime,
		Duration:      plan.Duration,
	})
	if err != nil {
		if services.IsPastTime(err) {
			return err.Error()
		}
		respondSchedulerError(c, err)
		return ""
	}
	plan.ReminderID = &result.ID
	return ""
}

func (pc *TreatmentPlanController) disarmReminder(plan *models.TreatmentPlan) {
	pc.cancelReminder(plan.ReminderID, plan.ID)
	plan.ReminderID = nil
}

func (pc *TreatmentPlanController) cancelReminder(reminderID *uuid.UUID, planID uuid.UUID) {
	if reminderID == nil {
		return
	}
	// Pending reminders do not survive a restart, so a stale id is expected.
	if err := pc.Scheduler.Cancel(*reminderID); err != nil && !services.IsNotFound(err) {
		log.Printf("[ERROR] Failed to cancel reminder %s for plan %s: %v", *reminderID, planID, err)
	}
}

func applyPlanInput(plan *models.TreatmentPlan, input *TreatmentPlanInput, scheduled time.Time) {
	plan.ScheduledTime = scheduled
	plan.Duration = input.Duration
	if input.ReminderEmail != nil {
		plan.ReminderEmail = *input.ReminderEmail
	}
	plan.CurrentSymptoms = input.CurrentSymptoms
	if input.EnergyLevel != nil {
		plan.EnergyLevel = *input.EnergyLevel
	}
	if input.SleepQuality != nil {
		plan.SleepQuality = *input.SleepQuality
	}
	plan.MedicationTaken = input.MedicationTaken
	plan.TreatmentGoals = input.TreatmentGoals
}

func futureTime(c *gin.Context, s string) (time.Time, bool) {
	t, err := parseDateTime(s)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid scheduledTime format")
		return time.Time{}, false
	}
	if !t.After(time.Now()) {
		utils.RespondWithError(c, http.StatusBadRequest, "Scheduled time must be in the future")
		return time.Time{}, false
	}
	return t, true
}

func loadPlan(c *gin.Context, userID, planID uuid.UUID) (*models.TreatmentPlan, bool) {
	var plan models.TreatmentPlan
	if err := config.DB.Where("user_id = ? AND id = ?", userID, planID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Treatment plan not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &plan, true
}
