package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"nebula-backend/config"
	"nebula-backend/models"
	"nebula-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateEventInput defines the expected JSON structure for creating an event
type CreateEventInput struct {
	Title                 string     `json:"title" binding:"required"`
	Description           string     `json:"description" binding:"required"`
	EventType             string     `json:"eventType" binding:"required"`
	StartDate             time.Time  `json:"startDate" binding:"required"`
	EndDate               *time.Time `json:"endDate"`
	Location              string     `json:"location" binding:"required"`
	IsVirtual             bool       `json:"isVirtual"`
	VirtualLink           string     `json:"virtualLink"`
	OrganizerName         string     `json:"organizerName" binding:"required"`
	OrganizerEmail        string     `json:"organizerEmail" binding:"required,email"`
	OrganizerOrganization string     `json:"organizerOrganization"`
	MaxAttendees          *int       `json:"maxAttendees"`
	Tags                  []string   `json:"tags"`
	ImageURL              string     `json:"imageUrl"`
}

// UpdateEventInput defines the expected JSON structure for updating an event
type UpdateEventInput struct {
	Title                 *string    `json:"title"`
	Description           *string    `json:"description"`
	EventType             *string    `json:"eventType"`
	StartDate             *time.Time `json:"startDate"`
	EndDate               *time.Time `json:"endDate"`
	Location              *string    `json:"location"`
	IsVirtual             *bool      `json:"isVirtual"`
	VirtualLink           *string    `json:"virtualLink"`
	OrganizerName         *string    `json:"organizerName"`
	OrganizerEmail        *string    `json:"organizerEmail"`
	OrganizerOrganization *string    `json:"organizerOrganization"`
	MaxAttendees          *int       `json:"maxAttendees"`
	Tags                  []string   `json:"tags"`
	ImageURL              *string    `json:"imageUrl"`
	Status                *string    `json:"status"`
}

// CreateEvent creates a community event owned by the caller
func CreateEvent(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}

	var input CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !oneOf(input.EventType, models.EventTypes) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid event type")
		return
	}
	if !input.StartDate.After(time.Now()) {
		utils.RespondWithError(c, http.StatusBadRequest, "Event start date must be in the future")
		return
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		utils.RespondWithError(c, http.StatusBadRequest, "Event end date must be after start date")
		return
	}
	if input.MaxAttendees != nil && *input.MaxAttendees < 1 {
		utils.RespondWithError(c, http.StatusBadRequest, "Max attendees must be at least 1")
		return
	}

	event := models.Event{
		ID:                    uuid.New(),
		Title:                 utils.CleanString(input.Title),
		Description:           input.Description,
		EventType:             input.EventType,
		StartDate:             input.StartDate,
		EndDate:               input.EndDate,
		Location:              utils.CleanString(input.Location),
		IsVirtual:             input.IsVirtual,
		VirtualLink:           input.VirtualLink,
		OrganizerName:         input.OrganizerName,
		OrganizerEmail:        utils.CleanString(input.OrganizerEmail, true),
		OrganizerOrganization: input.OrganizerOrganization,
		MaxAttendees:          input.MaxAttendees,
		Tags:                  models.StringList(input.Tags),
		ImageURL:              input.ImageURL,
		Status:                "Upcoming",
		CreatedByUserID:       userID,
	}
	if event.Tags == nil {
		event.Tags = models.StringList{}
	}

	if err := config.DB.Create(&event).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create event")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "event": event})
}

// GetEvents lists events, soonest first
func GetEvents(c *gin.Context) {
	query := config.DB.Model(&models.Event{}).Preload("Attendees")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if eventType := c.Query("eventType"); eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}
	if v := c.Query("isVirtual"); v != "" {
		isVirtual, err := strconv.ParseBool(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid isVirtual value")
			return
		}
		query = query.Where("is_virtual = ?", isVirtual)
	}
	if c.Query("upcoming") == "true" {
		query = query.Where("start_date >= ? AND status IN ?", time.Now(), []string{"Upcoming", "Ongoing"})
	}

	var events []models.Event
	if err := query.Order("start_date ASC").Find(&events).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(events), "events": events})
}

// GetEvent retrieves a specific event by ID
func GetEvent(c *gin.Context) {
	eventID, ok := pathUUID(c, "id", "event")
	if !ok {
		return
	}

	event, ok := loadEvent(c, eventID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "event": event})
}

// UpdateEvent updates an event; only its creator may do so
func UpdateEvent(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}
	eventID, ok := pathUUID(c, "id", "event")
	if !ok {
		return
	}

	var input UpdateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	event, ok := loadEvent(c, eventID)
	if !ok {
		return
	}
	if event.CreatedByUserID != userID {
		utils.RespondWithError(c, http.StatusForbidden, "Not authorized to update this event")
		return
	}

	// Update fields if provided
	if input.Title != nil {
		event.Title = utils.CleanString(*input.Title)
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.EventType != nil {
		if !oneOf(*input.EventType, models.EventTypes) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid event type")
			return
		}
		event.EventType = *input.EventType
	}
	if input.StartDate != nil {
		event.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		event.EndDate = input.EndDate
	}
	if event.EndDate != nil && event.EndDate.Before(event.StartDate) {
		utils.RespondWithError(c, http.StatusBadRequest, "Event end date must be after start date")
		return
	}
	if input.Location != nil {
		event.Location = utils.CleanString(*input.Location)
	}
	if input.IsVirtual != nil {
		event.IsVirtual = *input.IsVirtual
	}
	if input.VirtualLink != nil {
		event.VirtualLink = *input.VirtualLink
	}
	if input.OrganizerName != nil {
		event.OrganizerName = *input.OrganizerName
	}
	if input.OrganizerEmail != nil {
		if !utils.ValidateEmail(*input.OrganizerEmail) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid organizer email")
			return
		}
		event.OrganizerEmail = utils.CleanString(*input.OrganizerEmail, true)
	}
	if input.OrganizerOrganization != nil {
		event.OrganizerOrganization = *input.OrganizerOrganization
	}
	if input.MaxAttendees != nil {
		if *input.MaxAttendees < len(event.Attendees) {
			utils.RespondWithError(c, http.StatusBadRequest, "Max attendees cannot be lower than current registrations")
			return
		}
		event.MaxAttendees = input.MaxAttendees
	}
	if input.Tags != nil {
		event.Tags = models.StringList(input.Tags)
	}
	if input.ImageURL != nil {
		event.ImageURL = *input.ImageURL
	}
	if input.Status != nil {
		if !oneOf(*input.Status, models.EventStatuses) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid event status")
			return
		}
		event.Status = *input.Status
	}

	if err := config.DB.Omit("Attendees").Save(event).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update event")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "event": event})
}

// DeleteEvent removes an event and its registrations; only its creator may do so
func DeleteEvent(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}
	eventID, ok := pathUUID(c, "id", "event")
	if !ok {
		return
	}

	event, ok := loadEvent(c, eventID)
	if !ok {
		return
	}
	if event.CreatedByUserID != userID {
		utils.RespondWithError(c, http.StatusForbidden, "Not authorized to delete this event")
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.EventAttendee{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Event{}, "id = ?", event.ID).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Event deleted successfully"})
}

// RegisterForEvent adds the caller to an event's attendee list
func RegisterForEvent(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}
	_, email, name, _ := utils.CurrentUser(c)
	eventID, ok := pathUUID(c, "id", "event")
	if !ok {
		return
	}

	event, ok := loadEvent(c, eventID)
	if !ok {
		return
	}
	if event.Status == "Cancelled" || event.Status == "Completed" {
		utils.RespondWithError(c, http.StatusBadRequest, "Registration is closed for this event")
		return
	}
	if event.HasAttendee(userID) {
		utils.RespondWithError(c, http.StatusBadRequest, "Already registered for this event")
		return
	}
	if event.IsFull() {
		utils.RespondWithError(c, http.StatusBadRequest, "Event is full")
		return
	}

	attendee := models.EventAttendee{
		ID:           uuid.New(),
		EventID:      event.ID,
		UserID:       userID,
		UserName:     name,
		UserEmail:    email,
		RegisteredAt: time.Now(),
	}
	if err := config.DB.Create(&attendee).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to register for event")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Successfully registered for event"})
}

// UnregisterFromEvent removes the caller from an event's attendee list
func UnregisterFromEvent(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}
	eventID, ok := pathUUID(c, "id", "event")
	if !ok {
		return
	}

	result := config.DB.Where("event_id = ? AND user_id = ?", eventID, userID).Delete(&models.EventAttendee{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to unregister from event")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Not registered for this event")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Successfully unregistered from event"})
}

// GetMyEvents returns the events the caller created and the ones they registered for
func GetMyEvents(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}

	var created []models.Event
	if err := config.DB.Preload("Attendees").Where("created_by_user_id = ?", userID).
		Order("start_date ASC").Find(&created).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	var registered []models.Event
	if err := config.DB.Preload("Attendees").
		Where("id IN (?)", config.DB.Model(&models.EventAttendee{}).Select("event_id").Where("user_id = ?", userID)).
		Order("start_date ASC").Find(&registered).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"createdEvents":    created,
		"registeredEvents": registered,
	})
}

func loadEvent(c *gin.Context, id uuid.UUID) (*models.Event, bool) {
	var event models.Event
	if err := config.DB.Preload("Attendees").First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Event not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &event, true
}
