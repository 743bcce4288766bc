package controllers

import (
	"errors"
	"net/http"
	"strings"

	"filo-backend/config"
	"filo-backend/models"
	"filo-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SetupBarberInput struct {
	BarberName     string `json:"barberName"`
	BarbershopCode string `json:"barbershopCode"` // join an existing shop
	BarbershopName string `json:"barbershopName"` // or create a new one
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	CutDuration    int    `json:"cutDuration"`
}

type SetupClientInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type UpdateWorkingHoursInput struct {
	WorkingHours models.JSONB `json:"workingHours" binding:"required"`
}

// GetProfile returns the current user with their role and, for barbers,
// their barbershop
func GetProfile(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var user models.User
	if err := config.DB.Preload("Barbershop").First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"phone": user.Phone,
		},
		"role":       user.Role,
		"barbershop": user.Barbershop,
	})
}

// SetupBarber assigns the barber role and either joins an existing shop by
// its unique code or creates a new one. The role is set once; a user who
// already picked a side gets a conflict.
func SetupBarber(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var input SetupBarberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}
	if user.Role != "" {
		utils.RespondWithError(c, http.StatusConflict, "Role already set")
		return
	}

	var shop models.Barbershop
	if input.BarbershopCode != "" {
		code := strings.ToLower(strings.TrimSpace(input.BarbershopCode))
		if err := config.DB.First(&shop, "unique_code = ?", code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Invalid barbershop code")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
	} else {
		if input.BarbershopName == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "barbershopName or barbershopCode required")
			return
		}
		cutDuration := input.CutDuration
		if cutDuration <= 0 {
			cutDuration = 30
		}
		shop = models.Barbershop{
			ID:                 uuid.New(),
			Name:               input.BarbershopName,
			Address:            input.Address,
			Phone:              input.Phone,
			UniqueCode:         utils.GenerateShopCode(),
			CutDurationMinutes: cutDuration,
		}
		if err := config.DB.Create(&shop).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create barbershop")
			return
		}
	}

	updates := map[string]interface{}{
		"role":          models.RoleBarber,
		"barbershop_id": shop.ID,
	}
	if input.BarberName != "" {
		updates["name"] = input.BarberName
	}
	if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	// Re-issue the token so the role claim matches the new role
	token, err := utils.GenerateToken(user.ID.String(), models.RoleBarber)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	setAuthCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"role":       models.RoleBarber,
		"barbershop": shop,
	})
}

// SetupClient assigns the client role
func SetupClient(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var input SetupClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}
	if user.Role != "" {
		utils.RespondWithError(c, http.StatusConflict, "Role already set")
		return
	}

	updates := map[string]interface{}{"role": models.RoleClient}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Phone != "" {
		if !utils.ValidatePhone(input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		updates["phone"] = input.Phone
	}
	if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	token, err := utils.GenerateToken(user.ID.String(), models.RoleClient)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	setAuthCookie(c, token)

	c.JSON(http.StatusOK, gin.H{"token": token, "role": models.RoleClient})
}

// UpdateWorkingHours updates the barber's shop hours
func UpdateWorkingHours(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var input UpdateWorkingHoursInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}
	if user.BarbershopID == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Barber has no barbershop")
		return
	}

	if err := config.DB.Model(&models.Barbershop{}).
		Where("id = ?", *user.BarbershopID).
		Update("working_hours", input.WorkingHours).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update working hours")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Working hours updated"})
}
