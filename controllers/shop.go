package controllers

import (
	"errors"
	"net/http"
	"sort"

	"filo-backend/config"
	"filo-backend/models"
	"filo-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type shopListItem struct {
	models.Barbershop
	IsFavorite bool `json:"isFavorite"`
}

// GetShops lists every barbershop, the caller's favorites first
func GetShops(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var shops []models.Barbershop
	if err := config.DB.Order("name").Find(&shops).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve barbershops")
		return
	}

	var favorites []models.Favorite
	if err := config.DB.Where("client_id = ?", userID).Find(&favorites).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	favoriteShops := make(map[uuid.UUID]bool, len(favorites))
	for _, f := range favorites {
		favoriteShops[f.BarbershopID] = true
	}

	list := make([]shopListItem, 0, len(shops))
	for _, shop := range shops {
		list = append(list, shopListItem{Barbershop: shop, IsFavorite: favoriteShops[shop.ID]})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].IsFavorite && !list[j].IsFavorite
	})

	c.JSON(http.StatusOK, list)
}

// GetShop retrieves one barbershop with the caller's favorite flag
func GetShop(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	shopUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid barbershop ID format")
		return
	}

	var shop models.Barbershop
	if err := config.DB.First(&shop, "id = ?", shopUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Barbershop not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var favoriteCount int64
	config.DB.Model(&models.Favorite{}).
		Where("client_id = ? AND barbershop_id = ?", userID, shopUUID).
		Count(&favoriteCount)

	c.JSON(http.StatusOK, shopListItem{Barbershop: shop, IsFavorite: favoriteCount > 0})
}

// ToggleFavorite flips the caller's favorite flag for a barbershop
func ToggleFavorite(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	clientUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return
	}

	shopUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid barbershop ID format")
		return
	}

	var shop models.Barbershop
	if err := config.DB.First(&shop, "id = ?", shopUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Barbershop not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var existing models.Favorite
	err = config.DB.First(&existing,
		"client_id = ? AND barbershop_id = ?", clientUUID, shopUUID).Error
	if err == nil {
		// Hard delete, the unique index would otherwise block re-favoriting
		if err := config.DB.Unscoped().Delete(&existing).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to remove favorite")
			return
		}
		c.JSON(http.StatusOK, gin.H{"isFavorite": false})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	favorite := models.Favorite{ClientID: clientUUID, BarbershopID: shopUUID}
	if err := config.DB.Create(&favorite).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to add favorite")
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFavorite": true})
}
