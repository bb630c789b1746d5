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

type ResourceInput struct {
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description" binding:"required"`
	Link          string     `json:"link" binding:"required,url"`
	Organization  string     `json:"organization" binding:"required"`
	ResourceType  string     `json:"resourceType" binding:"required"`
	Category      string     `json:"category" binding:"required"`
	Tags          []string   `json:"tags"`
	ImageURL      string     `json:"imageUrl"`
	PublishedDate *time.Time `json:"publishedDate"`
	IsFeatured    bool       `json:"isFeatured"`
}

type UpdateResourceInput struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Link          *string    `json:"link" binding:"omitempty,url"`
	Organization  *string    `json:"organization"`
	ResourceType  *string    `json:"resourceType"`
	Category      *string    `json:"category"`
	Tags          []string   `json:"tags"`
	ImageURL      *string    `json:"imageUrl"`
	PublishedDate *time.Time `json:"publishedDate"`
	IsFeatured    *bool      `json:"isFeatured"`
}

// CreateResource adds an educational resource
func CreateResource(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}

	var input ResourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !oneOf(input.ResourceType, models.ResourceTypes) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid resource type")
		return
	}
	if !oneOf(input.Category, models.ResourceCategories) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid category")
		return
	}

	resource := models.EducationalResource{
		ID:              uuid.New(),
		Title:           utils.CleanString(input.Title),
		Description:     input.Description,
		Link:            utils.CleanString(input.Link),
		Organization:    utils.CleanString(input.Organization),
		ResourceType:    input.ResourceType,
		Category:        input.Category,
		Tags:            models.StringList(input.Tags),
		ImageURL:        input.ImageURL,
		PublishedDate:   time.Now(),
		IsFeatured:      input.IsFeatured,
		CreatedByUserID: userID,
	}
	if input.PublishedDate != nil {
		resource.PublishedDate = *input.PublishedDate
	}
	if resource.Tags == nil {
		resource.Tags = models.StringList{}
	}

	if err := config.DB.Create(&resource).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create resource")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "resource": resource})
}

// GetResources lists resources, newest first
func GetResources(c *gin.Context) {
	query := config.DB.Model(&models.EducationalResource{})

	if resourceType := c.Query("resourceType"); resourceType != "" {
		query = query.Where("resource_type = ?", resourceType)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if c.Query("featured") == "true" {
		query = query.Where("is_featured = ?", true)
	}

	var resources []models.EducationalResource
	if err := query.Order("published_date DESC").Find(&resources).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve resources")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(resources), "resources": resources})
}

func GetResource(c *gin.Context) {
	resourceID, ok := pathUUID(c, "id", "resource")
	if !ok {
		return
	}

	resource, ok := loadResource(c, resourceID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "resource": resource})
}

// UpdateResource updates a resource; only its creator may do so
func UpdateResource(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}
	resourceID, ok := pathUUID(c, "id", "resource")
	if !ok {
		return
	}

	var input UpdateResourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	resource, ok := loadResource(c, resourceID)
	if !ok {
		return
	}
	if resource.CreatedByUserID != userID {
		utils.RespondWithError(c, http.StatusForbidden, "Not authorized to update this resource")
		return
	}

	if input.Title != nil {
		resource.Title = utils.CleanString(*input.Title)
	}
	if input.Description != nil {
		resource.Description = *input.Description
	}
	if input.Link != nil {
		resource.Link = utils.CleanString(*input.Link)
	}
	if input.Organization != nil {
		resource.Organization = utils.CleanString(*input.Organization)
	}
	if input.ResourceType != nil {
		if !oneOf(*input.ResourceType, models.ResourceTypes) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid resource type")
			return
		}
		resource.ResourceType = *input.ResourceType
	}
	if input.Category != nil {
		if !oneOf(*input.Category, models.ResourceCategories) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid category")
			return
		}
		resource.Category = *input.Category
	}
	if input.Tags != nil {
		resource.Tags = models.StringList(input.Tags)
	}
	if input.ImageURL != nil {
		resource.ImageURL = *input.ImageURL
	}
	if input.PublishedDate != nil {
		resource.PublishedDate = *input.PublishedDate
	}
	if input.IsFeatured != nil {
		resource.IsFeatured = *input.IsFeatured
	}

	if err := config.DB.Save(resource).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update resource")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "resource": resource})
}

// DeleteResource removes a resource; only its creator may do so
func DeleteResource(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}
	resourceID, ok := pathUUID(c, "id", "resource")
	if !ok {
		return
	}

	resource, ok := loadResource(c, resourceID)
	if !ok {
		return
	}
	if resource.CreatedByUserID != userID {
		utils.RespondWithError(c, http.StatusForbidden, "Not authorized to delete this resource")
		return
	}

	if err := config.DB.Delete(&models.EducationalResource{}, "id = ?", resource.ID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete resource")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Resource deleted successfully"})
}

func loadResource(c *gin.Context, id uuid.UUID) (*models.EducationalResource, bool) {
	var resource models.EducationalResource
	if err := config.DB.First(&resource, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Resource not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &resource, true
}
