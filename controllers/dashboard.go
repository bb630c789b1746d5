package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"nebula-backend/config"
	"nebula-backend/models"
	"nebula-backend/services"
	"nebula-backend/utils"

	"github.com/gin-gonic/gin"
)

const (
	onFireThreshold    = 7
	upcomingPlansLimit = 5
	recentDeliveries   = 5
)

// DeliveryHistory is the read side of the reminder delivery log.
type DeliveryHistory interface {
	RecentForUser(ctx context.Context, email string, limit int) ([]models.ReminderLog, error)
}

type DashboardController struct {
	Scheduler  ReminderScheduler
	Deliveries DeliveryHistory
}

type TreatmentStats struct {
	CompletedSessions int64  `json:"completedSessions"`
	CompletedToday    int64  `json:"completedToday"`
	TotalMinutes      int64  `json:"totalMinutes"`
	Streak            string `json:"streak"`
}

type UpcomingPlan struct {
	ID            string    `json:"id"`
	ScheduledTime time.Time `json:"scheduledTime"`
	Duration      int       `json:"duration"`
	Day           string    `json:"day"` // "Today", "Tomorrow", "In 3 days"
	HasReminder   bool      `json:"hasReminder"`
}

func (dc *DashboardController) GetTreatmentDashboard(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}
	_, email, _, _ := utils.CurrentUser(c)
	now := time.Now()

	// Completed sessions
	var stats TreatmentStats
	config.DB.Model(&models.TreatmentSession{}).Where("user_id = ?", userID).Count(&stats.CompletedSessions)
	config.DB.Model(&models.TreatmentSession{}).
		Where("user_id = ? AND completed_at >= ?", userID, utils.BeginningOfDay(now)).
		Count(&stats.CompletedToday)
	config.DB.Model(&models.TreatmentSession{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(duration), 0)").Scan(&stats.TotalMinutes)
	stats.Streak = streakLabel(stats.CompletedSessions)

	// Upcoming plans
	var plans []models.TreatmentPlan
	config.DB.Where("user_id = ? AND scheduled_time >= ?", userID, now).
		Order("scheduled_time ASC").Limit(upcomingPlansLimit).Find(&plans)

	upcoming := make([]UpcomingPlan, 0, len(plans))
	for _, p := range plans {
		upcoming = append(upcoming, UpcomingPlan{
			ID:            p.ID.String(),
			ScheduledTime: p.ScheduledTime,
			Duration:      p.Duration,
			Day:           utils.RelativeDay(p.ScheduledTime, now),
			HasReminder:   p.ReminderID != nil,
		})
	}

	response := gin.H{
		"success":          true,
		"stats":            stats,
		"upcomingPlans":    upcoming,
		"pendingReminders": dc.pendingReminders(email),
	}

	if dc.Deliveries != nil {
		history, err := dc.Deliveries.RecentForUser(c.Request.Context(), email, recentDeliveries)
		if err != nil {
			log.Printf("[ERROR] Failed to load delivery history for %s: %v", email, err)
		}
		if history == nil {
			history = []models.ReminderLog{}
		}
		response["recentDeliveries"] = history
	}

	c.JSON(http.StatusOK, response)
}

func (dc *DashboardController) pendingReminders(email string) []services.ReminderSummary {
	if dc.Scheduler == nil || email == "" {
		return []services.ReminderSummary{}
	}
	return dc.Scheduler.ListForUser(email)
}

func streakLabel(completed int64) string {
	if completed >= onFireThreshold {
		return "On Fire!"
	}
	return "Keep Going!"
}
