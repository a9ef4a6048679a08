package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/baniakuntest4-alt/arhanud/database"
	"github.com/baniakuntest4-alt/arhanud/middlewares"
	"github.com/baniakuntest4-alt/arhanud/models"
	"github.com/baniakuntest4-alt/arhanud/utils"
)

// findPersonnelOr404 loads the :id path parameter's personnel record.
func findPersonnelOr404(c *fiber.Ctx) (*models.Personnel, error) {
	var p models.Personnel
	if err := database.DB.Where("id = ?", c.Params("id")).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "personel tidak ditemukan"})
		}
		return nil, err
	}
	return &p, nil
}

func GetRankHistory(c *fiber.Ctx) error {
	var history []models.RankHistory
	if err := database.DB.Where("personnel_id = ?", c.Params("id")).
		Order("created_at DESC").Find(&history).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"history": history, "message": "success"})
}

type createRankHistoryDTO struct {
	PangkatLama string `json:"pangkat_lama"`
	PangkatBaru string `json:"pangkat_baru" validate:"required"`
	TMT         string `json:"tmt"`
	NomorSK     string `json:"nomor_sk"`
	Keterangan  string `json:"keterangan"`
}

// CreateRankHistory appends a rank entry and moves the personnel record to
// the new pangkat in the same transaction.
func CreateRankHistory(c *fiber.Ctx) error {
	p, err := findPersonnelOr404(c)
	if p == nil {
		return err
	}

	var data createRankHistoryDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)

	entry := models.RankHistory{
		PersonnelID: p.Id,
		PangkatLama: data.PangkatLama,
		PangkatBaru: data.PangkatBaru,
		TMT:         data.TMT,
		NomorSK:     data.NomorSK,
		Keterangan:  data.Keterangan,
	}
	if entry.PangkatLama == "" {
		entry.PangkatLama = p.Pangkat
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return tx.Model(&models.Personnel{}).Where("id = ?", p.Id).
			Updates(map[string]any{"pangkat": data.PangkatBaru, "updated_at": time.Now().UTC()}).Error
	})
	if err != nil {
		return err
	}

	recordAudit(c, "CREATE_RANK_HISTORY", "rank_history", entry.Id, nil, entry)
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func GetPositionHistory(c *fiber.Ctx) error {
	var history []models.PositionHistory
	if err := database.DB.Where("personnel_id = ?", c.Params("id")).
		Order("created_at DESC").Find(&history).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"history": history, "message": "success"})
}

type createPositionHistoryDTO struct {
	JabatanLama string `json:"jabatan_lama"`
	JabatanBaru string `json:"jabatan_baru" validate:"required"`
	Satuan      string `json:"satuan"`
	TMT         string `json:"tmt"`
	NomorSK     string `json:"nomor_sk"`
	Keterangan  string `json:"keterangan"`
}

// CreatePositionHistory appends a position entry and moves the personnel
// record to the new jabatan/satuan in the same transaction.
func CreatePositionHistory(c *fiber.Ctx) error {
	p, err := findPersonnelOr404(c)
	if p == nil {
		return err
	}

	var data createPositionHistoryDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)

	entry := models.PositionHistory{
		PersonnelID: p.Id,
		JabatanLama: data.JabatanLama,
		JabatanBaru: data.JabatanBaru,
		Satuan:      data.Satuan,
		TMT:         data.TMT,
		NomorSK:     data.NomorSK,
		Keterangan:  data.Keterangan,
	}
	if entry.JabatanLama == "" {
		entry.JabatanLama = p.Jabatan
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		updates := map[string]any{"jabatan": data.JabatanBaru, "updated_at": time.Now().UTC()}
		if data.Satuan != "" {
			updates["satuan"] = data.Satuan
		}
		return tx.Model(&models.Personnel{}).Where("id = ?", p.Id).Updates(updates).Error
	})
	if err != nil {
		return err
	}

	recordAudit(c, "CREATE_POSITION_HISTORY", "position_history", entry.Id, nil, entry)
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func GetEducation(c *fiber.Ctx) error {
	var education []models.Education
	if err := database.DB.Where("personnel_id = ?", c.Params("id")).
		Order("created_at DESC").Find(&education).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"education": education, "message": "success"})
}

type createEducationDTO struct {
	JenisPendidikan string `json:"jenis_pendidikan" validate:"required,oneof=DIKBANGUM DIKBANGSPES"`
	NamaPendidikan  string `json:"nama_pendidikan" validate:"required"`
	Tahun           string `json:"tahun"`
	Tempat          string `json:"tempat"`
	Keterangan      string `json:"keterangan"`
}

func CreateEducation(c *fiber.Ctx) error {
	p, err := findPersonnelOr404(c)
	if p == nil {
		return err
	}

	var data createEducationDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)

	entry := models.Education{
		PersonnelID:     p.Id,
		JenisPendidikan: data.JenisPendidikan,
		NamaPendidikan:  data.NamaPendidikan,
		Tahun:           data.Tahun,
		Tempat:          data.Tempat,
		Keterangan:      data.Keterangan,
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		return err
	}

	recordAudit(c, "CREATE_EDUCATION", "education", entry.Id, nil, entry)
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func GetFamily(c *fiber.Ctx) error {
	var family []models.FamilyMember
	if err := database.DB.Where("personnel_id = ?", c.Params("id")).
		Order("created_at ASC").Find(&family).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"family": family, "message": "success"})
}

type createFamilyDTO struct {
	Hubungan     string `json:"hubungan" validate:"required"`
	Nama         string `json:"nama" validate:"required"`
	TanggalLahir string `json:"tanggal_lahir"`
	Pekerjaan    string `json:"pekerjaan"`
	Keterangan   string `json:"keterangan"`
}

func CreateFamily(c *fiber.Ctx) error {
	p, err := findPersonnelOr404(c)
	if p == nil {
		return err
	}

	var data createFamilyDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)

	entry := models.FamilyMember{
		PersonnelID:  p.Id,
		Hubungan:     data.Hubungan,
		Nama:         data.Nama,
		TanggalLahir: data.TanggalLahir,
		Pekerjaan:    data.Pekerjaan,
		Keterangan:   data.Keterangan,
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		return err
	}

	recordAudit(c, "CREATE_FAMILY", "family", entry.Id, nil, entry)
	return c.Status(fiber.StatusCreated).JSON(entry)
}
