package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/baniakuntest4-alt/arhanud/database"
	"github.com/baniakuntest4-alt/arhanud/models"
)

func GetDashboardStats(c *fiber.Ctx) error {
	var totalPersonnel, activePersonnel int64
	if err := database.DB.Model(&models.Personnel{}).Count(&totalPersonnel).Error; err != nil {
		return err
	}
	if err := database.DB.Model(&models.Personnel{}).
		Where("status = ?", models.PersonnelActive).Count(&activePersonnel).Error; err != nil {
		return err
	}

	pendingByType := map[string]int64{}
	for _, t := range []models.RequestType{models.TypeMutation, models.TypeRetirement, models.TypePromotion, models.TypeCorrection} {
		var n int64
		if err := database.DB.Model(&models.Request{}).
			Where("status = ? AND type = ?", models.StatusPending, t).Count(&n).Error; err != nil {
			return err
		}
		pendingByType[string(t)] = n
	}

	var byPangkat []groupCount
	if err := database.DB.Model(&models.Personnel{}).
		Select("pangkat AS label, count(*) AS count").
		Where("status = ?", models.PersonnelActive).
		Group("pangkat").Order("count DESC").Scan(&byPangkat).Error; err != nil {
		return err
	}

	var recent []models.AuditLog
	if err := database.DB.Order("created_at DESC").Limit(10).Find(&recent).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"total_personnel":   totalPersonnel,
		"active_personnel":  activePersonnel,
		"pending_requests":  pendingByType,
		"by_pangkat":        byPangkat,
		"recent_activities": recent,
	})
}
