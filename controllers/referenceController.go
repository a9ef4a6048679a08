package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/baniakuntest4-alt/arhanud/database"
	"github.com/baniakuntest4-alt/arhanud/models"
)

// pangkatList is the fixed rank reference, enlisted upward.
var pangkatList = []string{
	"PRADA", "PRATU", "PRAKA",
	"KOPDA", "KOPTU", "KOPKA",
	"SERDA", "SERTU", "SERKA", "SERMA",
	"PELDA", "PELTU",
	"LETDA", "LETTU",
	"KAPTEN", "MAYOR", "LETKOL", "KOLONEL",
	"BRIGJEN", "MAYJEN", "LETJEN", "JENDERAL",
	"SERDA ARH", "SERTU ARH", "MAYOR ARH", "LETKOL ARH",
}

func GetPangkatList(c *fiber.Ctx) error {
	return c.JSON(pangkatList)
}

func GetSatuanList(c *fiber.Ctx) error {
	var satuan []string
	if err := database.DB.Model(&models.Personnel{}).
		Distinct().Where("satuan <> ''").Order("satuan ASC").
		Pluck("satuan", &satuan).Error; err != nil {
		return err
	}
	return c.JSON(satuan)
}
