package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/baniakuntest4-alt/arhanud/database"
	"github.com/baniakuntest4-alt/arhanud/models"
)

// Reports return JSON datasets; spreadsheet/PDF rendering happens outside
// this service.

func GetPersonnelReport(c *fiber.Ctx) error {
	q := database.DB.Model(&models.Personnel{}).Where("status = ?", models.PersonnelActive)
	if pangkat := c.Query("pangkat"); pangkat != "" {
		q = q.Where("pangkat = ?", pangkat)
	}
	if satuan := c.Query("satuan"); satuan != "" {
		q = q.Where("satuan ILIKE ?", "%"+satuan+"%")
	}

	var personnel []models.Personnel
	if err := q.Order("nama ASC").Find(&personnel).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data":    personnel,
		"total":   len(personnel),
		"columns": []string{"nrp", "nama", "pangkat", "jabatan", "satuan", "tmt_jabatan", "tanggal_lahir", "status"},
	})
}

type requestReportRow struct {
	models.Request
	PersonnelNama    string `json:"personnel_nama"`
	PersonnelPangkat string `json:"personnel_pangkat"`
}

func GetRequestsReport(c *fiber.Ctx) error {
	q := database.DB.Model(&models.Request{}).
		Select("requests.*, personnel.nama AS personnel_nama, personnel.pangkat AS personnel_pangkat").
		Joins("LEFT JOIN personnel ON personnel.nrp = requests.nrp")
	if status := c.Query("status"); status != "" {
		q = q.Where("requests.status = ?", status)
	}
	if t := c.Query("request_type"); t != "" {
		q = q.Where("requests.type = ?", t)
	}

	var rows []requestReportRow
	if err := q.Order("requests.created_at DESC, requests.id ASC").Scan(&rows).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": rows, "total": len(rows)})
}
