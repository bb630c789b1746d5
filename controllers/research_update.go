package controllers

import (
	"errors"
	"net/http"
	"time"

	"nebula-backend/config"
	"nebula-backend/models"
	"nebula-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResearchUpdateInput struct {
	Title                string     `json:"title" binding:"required"`
	Description          string     `json:"description" binding:"required"`
	Link                 string     `json:"link" binding:"required,url"`
	UpdateType           string     `json:"updateType" binding:"required"`
	Category             string     `json:"category" binding:"required"`
	Tags                 []string   `json:"tags"`
	ImageURL             string     `json:"imageUrl"`
	PublishedDate        *time.Time `json:"publishedDate"`
	IsHighPriority       bool       `json:"isHighPriority"`
	Source               string     `json:"source"`
	ResearchOrganization string     `json:"researchOrganization"`
}

type UpdateResearchUpdateInput struct {
	Title                *string    `json:"title"`
	Description          *string    `json:"description"`
	Link                 *string    `json:"link" binding:"omitempty,url"`
	UpdateType           *string    `json:"updateType"`
	Category             *string    `json:"category"`
	Tags                 []string   `json:"tags"`
	ImageURL             *string    `json:"imageUrl"`
	PublishedDate        *time.Time `json:"publishedDate"`
	IsHighPriority       *bool      `json:"isHighPriority"`
	Source               *string    `json:"source"`
	ResearchOrganization *string    `json:"researchOrganization"`
}

func CreateResearchUpdate(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}

	var input ResearchUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !oneOf(input.UpdateType, models.UpdateTypes) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid update type")
		return
	}
	if !oneOf(input.Category, models.UpdateCategories) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid category")
		return
	}

	update := models.ResearchUpdate{
		ID:                   uuid.New(),
		Title:                utils.CleanString(input.Title),
		Description:          input.Description,
		Link:                 utils.CleanString(input.Link),
		UpdateType:           input.UpdateType,
		Category:             input.Category,
		Tags:                 models.StringList(input.Tags),
		ImageURL:             input.ImageURL,
		PublishedDate:        time.Now(),
		IsHighPriority:       input.IsHighPriority,
		Source:               input.Source,
		ResearchOrganization: input.ResearchOrganization,
		CreatedByUserID:      userID,
	}
	if input.PublishedDate != nil {
		update.PublishedDate = *input.PublishedDate
	}
	if update.Tags == nil {
		update.Tags = models.StringList{}
	}

	if err := config.DB.Create(&update).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create research update")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "researchUpdate": update})
}

// GetResearchUpdates lists research news, newest first
func GetResearchUpdates(c *gin.Context) {
	query := config.DB.Model(&models.ResearchUpdate{})

	if updateType := c.Query("updateType"); updateType != "" {
		query = query.Where("update_type = ?", updateType)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if c.Query("highPriority") == "true" {
		query = query.Where("is_high_priority = ?", true)
	}

	var updates []models.ResearchUpdate
	if err := query.Order("published_date DESC").Find(&updates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve research updates")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(updates), "researchUpdates": updates})
}

func GetResearchUpdate(c *gin.Context) {
	updateID, ok := pathUUID(c, "id", "research update")
	if !ok {
		return
	}

	update, ok := loadResearchUpdate(c, updateID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "researchUpdate": update})
}

func UpdateResearchUpdate(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}
	updateID, ok := pathUUID(c, "id", "research update")
	if !ok {
		return
	}

	var input UpdateResearchUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	update, ok := loadResearchUpdate(c, updateID)
	if !ok {
		return
	}
	if update.CreatedByUserID != userID {
		utils.RespondWithError(c, http.StatusForbidden, "Not authorized to update this research update")
		return
	}

	if input.Title != nil {
		update.Title = utils.CleanString(*input.Title)
	}
	if input.Description != nil {
		update.Description = *input.Description
	}
	if input.Link != nil {
		update.Link = utils.CleanString(*input.Link)
	}
	if input.UpdateType != nil {
		if !oneOf(*input.UpdateType, models.UpdateTypes) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid update type")
			return
		}
		update.UpdateType = *input.UpdateType
	}
	if input.Category != nil {
		if !oneOf(*input.Category, models.UpdateCategories) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid category")
			return
		}
		update.Category = *input.Category
	}
	if input.Tags != nil {
		update.Tags = models.StringList(input.Tags)
	}
	if input.ImageURL != nil {
		update.ImageURL = *input.ImageURL
	}
	if input.PublishedDate != nil {
		update.PublishedDate = *input.PublishedDate
	}
	if input.IsHighPriority != nil {
		update.IsHighPriority = *input.IsHighPriority
	}
	if input.Source != nil {
		update.Source = *input.Source
	}
	if input.ResearchOrganization != nil {
		update.ResearchOrganization = *input.ResearchOrganization
	}

	if err := config.DB.Save(update).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update research update")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "researchUpdate": update})
}

func DeleteResearchUpdate(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}
	updateID, ok := pathUUID(c, "id", "research update")
	if !ok {
		return
	}

	update, ok := loadResearchUpdate(c, updateID)
	if !ok {
		return
	}
	if update.CreatedByUserID != userID {
		utils.RespondWithError(c, http.StatusForbidden, "Not authorized to delete this research update")
		return
	}

	if err := config.DB.Delete(&models.ResearchUpdate{}, "id = ?", update.ID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete research update")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Research update deleted successfully"})
}

func loadResearchUpdate(c *gin.Context, id uuid.UUID) (*models.ResearchUpdate, bool) {
	var update models.ResearchUpdate
	if err := config.DB.First(&update, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Research update not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &update, true
}
