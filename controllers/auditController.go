package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/baniakuntest4-alt/arhanud/database"
	"github.com/baniakuntest4-alt/arhanud/models"
	"github.com/baniakuntest4-alt/arhanud/utils"
)

func GetAuditLogs(c *fiber.Ctx) error {
	q := database.DB.Model(&models.AuditLog{})
	if entityType := c.Query("entity_type"); entityType != "" {
		q = q.Where("entity_type = ?", entityType)
	}
	if userID := c.Query("user_id"); userID != "" {
		q = q.Where("user_id = ?", userID)
	}

	skip := utils.ParseIntDefault(c.Query("skip"), 0)
	limit := utils.ParseIntDefault(c.Query("limit"), 100)

	var logs []models.AuditLog
	if err := q.Order("created_at DESC").Offset(skip).Limit(limit).Find(&logs).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"logs": logs, "message": "success"})
}
