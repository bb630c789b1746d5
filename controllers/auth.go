package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"nebula-backend/config"
	"nebula-backend/models"
	"nebula-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name           string   `json:"name" binding:"required"`
	Email          string   `json:"email" binding:"required,email"`
	Password       string   `json:"password" binding:"required,min=6"`
	AgeGroup       string   `json:"ageGroup" binding:"required"`
	TypeOfMutation string   `json:"typeOfMutation" binding:"required"`
	TermsAccepted  bool     `json:"termsAccepted"`
	Interests      []string `json:"interests"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// controllers/auth.go
func Register(c *gin.Context) {
	var input RegisterInput

	// Bind and validate input
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !input.TermsAccepted {
		utils.RespondWithError(c, http.StatusBadRequest, "You must accept the terms and conditions")
		return
	}
	if !oneOf(input.AgeGroup, models.AgeGroups) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid age group")
		return
	}
	if !oneOf(input.TypeOfMutation, models.MutationTypes) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid mutation type")
		return
	}

	email := utils.CleanString(input.Email, true)

	// Check if email already exists
	var existingUser models.User
	result := config.DB.Where("email = ?", email).First(&existingUser)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusBadRequest, "User already exists")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	newUser := models.User{
		Name:           utils.CleanString(input.Name),
		Email:          email,
		Password:       input.Password, // Will be hashed in BeforeCreate hook
		AgeGroup:       input.AgeGroup,
		TypeOfMutation: input.TypeOfMutation,
		TermsAccepted:  input.TermsAccepted,
		Interests:      input.Interests,
	}
	if newUser.Interests == nil {
		newUser.Interests = models.StringList{}
	}

	if err := config.DB.Create(&newUser).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := utils.GenerateToken(newUser.ID.String(), newUser.Email, newUser.Name)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"token":   token,
		"user":    userPayload(&newUser),
	})
}

func Login(c *gin.Context) {
	var input LoginInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	var user models.User
	result := config.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(user.ID.String(), user.Email, user.Name)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	// Update last login
	now := time.Now()
	config.DB.Model(&user).Update("last_login", &now)
	user.LastLogin = &now

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    userPayload(&user),
	})
}

func Me(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    userPayload(&user),
	})
}

func userPayload(u *models.User) gin.H {
	return gin.H{
		"id":              u.ID,
		"name":            u.Name,
		"email":           u.Email,
		"ageGroup":        u.AgeGroup,
		"typeOfMutation":  u.TypeOfMutation,
		"interests":       u.Interests,
		"isProfilePublic": u.IsProfilePublic,
		"avatar":          u.Avatar,
		"lastLogin":       u.LastLogin,
	}
}
