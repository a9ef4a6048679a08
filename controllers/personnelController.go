package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/baniakuntest4-alt/arhanud/database"
	"github.com/baniakuntest4-alt/arhanud/middlewares"
	"github.com/baniakuntest4-alt/arhanud/models"
	"github.com/baniakuntest4-alt/arhanud/utils"
)

func GetPersonnelList(c *fiber.Ctx) error {
	q := database.DB.Model(&models.Personnel{})

	// Personnel accounts only ever see their own record.
	actor := actorFromCtx(c)
	if actor.Role == models.RolePersonnel {
		q = q.Where("nrp = ?", actor.NRP)
	}

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("nama ILIKE ? OR nrp ILIKE ? OR jabatan ILIKE ?", like, like, like)
	}
	if pangkat := c.Query("pangkat"); pangkat != "" {
		q = q.Where("pangkat = ?", pangkat)
	}
	if satuan := c.Query("satuan"); satuan != "" {
		q = q.Where("satuan ILIKE ?", "%"+satuan+"%")
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	skip := utils.ParseIntDefault(c.Query("skip"), 0)
	limit := utils.ParseIntDefault(c.Query("limit"), 100)

	var personnel []models.Personnel
	if err := q.Order("nama ASC").Offset(skip).Limit(limit).Find(&personnel).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"personnel": personnel, "message": "success"})
}

type groupCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

func GetPersonnelCount(c *fiber.Ctx) error {
	var total int64
	if err := database.DB.Model(&models.Personnel{}).Count(&total).Error; err != nil {
		return err
	}

	var byPangkat []groupCount
	if err := database.DB.Model(&models.Personnel{}).
		Select("pangkat AS label, count(*) AS count").
		Group("pangkat").Scan(&byPangkat).Error; err != nil {
		return err
	}

	var byStatus []groupCount
	if err := database.DB.Model(&models.Personnel{}).
		Select("status AS label, count(*) AS count").
		Group("status").Scan(&byStatus).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"total":      total,
		"by_pangkat": byPangkat,
		"by_status":  byStatus,
	})
}

func GetPersonnel(c *fiber.Ctx) error {
	var p models.Personnel
	if err := database.DB.Where("id = ?", c.Params("id")).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "personel tidak ditemukan"})
		}
		return err
	}

	actor := actorFromCtx(c)
	if actor.Role == models.RolePersonnel && p.NRP != actor.NRP {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "akses ditolak"})
	}
	return c.JSON(p)
}

type createPersonnelDTO struct {
	NRP          string `json:"nrp" validate:"required"`
	Nama         string `json:"nama" validate:"required"`
	Pangkat      string `json:"pangkat" validate:"required"`
	Jabatan      string `json:"jabatan" validate:"required"`
	Satuan       string `json:"satuan"`
	TMTJabatan   string `json:"tmt_jabatan"`
	TanggalLahir string `json:"tanggal_lahir"`
	Prestasi     string `json:"prestasi"`
	Dikbangum    string `json:"dikbangum"`
	Dikbangspes  string `json:"dikbangspes"`
}

func CreatePersonnel(c *fiber.Ctx) error {
	var data createPersonnelDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)

	var existing models.Personnel
	err := database.DB.Where("nrp = ?", data.NRP).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "NRP sudah terdaftar"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	p := models.Personnel{
		NRP:          data.NRP,
		Nama:         data.Nama,
		Pangkat:      data.Pangkat,
		Jabatan:      data.Jabatan,
		Satuan:       data.Satuan,
		TMTJabatan:   data.TMTJabatan,
		TanggalLahir: data.TanggalLahir,
		Prestasi:     data.Prestasi,
		Dikbangum:    data.Dikbangum,
		Dikbangspes:  data.Dikbangspes,
		Status:       models.PersonnelActive,
	}
	if err := database.DB.Create(&p).Error; err != nil {
		return err
	}

	recordAudit(c, "CREATE_PERSONNEL", "personnel", p.Id, nil, p)
	return c.Status(fiber.StatusCreated).JSON(p)
}

type updatePersonnelDTO struct {
	Nama         *string `json:"nama"`
	Pangkat      *string `json:"pangkat"`
	Jabatan      *string `json:"jabatan"`
	Satuan       *string `json:"satuan"`
	TMTJabatan   *string `json:"tmt_jabatan"`
	TanggalLahir *string `json:"tanggal_lahir"`
	Prestasi     *string `json:"prestasi"`
	Dikbangum    *string `json:"dikbangum"`
	Dikbangspes  *string `json:"dikbangspes"`
	Status       *string `json:"status" validate:"omitempty,oneof=active pensiun"`
}

func UpdatePersonnel(c *fiber.Ctx) error {
	var data updatePersonnelDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&data)

	var existing models.Personnel
	if err := database.DB.Where("id = ?", c.Params("id")).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "personel tidak ditemukan"})
		}
		return err
	}

	updates := utils.UpdatesFromPtrDTO(&data)
	if len(updates) == 0 {
		return c.JSON(existing)
	}
	if err := database.DB.Model(&existing).Updates(updates).Error; err != nil {
		return err
	}

	recordAudit(c, "UPDATE_PERSONNEL", "personnel", existing.Id, existing, updates)

	var updated models.Personnel
	if err := database.DB.Where("id = ?", existing.Id).First(&updated).Error; err != nil {
		return err
	}
	return c.JSON(updated)
}
