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

type createUserDTO struct {
	Username    string `json:"username" validate:"required,min=3"`
	NamaLengkap string `json:"nama_lengkap" validate:"required"`
	Role        string `json:"role" validate:"required,oneof=admin staff verifier leader personnel"`
	NRP         string `json:"nrp"`
	Password    string `json:"password" validate:"required,min=6"`
}

func CreateUser(c *fiber.Ctx) error {
	var data createUserDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	var existing models.User
	err := database.DB.Where("username = ?", data.Username).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "username sudah digunakan"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	user := models.User{
		Username:    data.Username,
		NamaLengkap: data.NamaLengkap,
		Role:        models.Role(data.Role),
		NRP:         data.NRP,
		IsActive:    true,
	}
	user.SetPassword(data.Password)
	if err := database.DB.Create(&user).Error; err != nil {
		return err
	}

	recordAudit(c, "CREATE_USER", "user", user.Id, nil, user)
	return c.Status(fiber.StatusCreated).JSON(user)
}

func GetUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := database.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": users, "message": "success"})
}

func GetUser(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.Where("id = ?", c.Params("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user tidak ditemukan"})
		}
		return err
	}
	return c.JSON(user)
}

type updateUserDTO struct {
	NamaLengkap *string `json:"nama_lengkap"`
	Role        *string `json:"role" validate:"omitempty,oneof=admin staff verifier leader personnel"`
	NRP         *string `json:"nrp"`
	IsActive    *bool   `json:"is_active"`
}

func UpdateUser(c *fiber.Ctx) error {
	var data updateUserDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&data)

	var existing models.User
	if err := database.DB.Where("id = ?", c.Params("id")).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user tidak ditemukan"})
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

	recordAudit(c, "UPDATE_USER", "user", existing.Id, nil, updates)
	return c.JSON(existing)
}

type resetPasswordDTO struct {
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

func ResetPassword(c *fiber.Ctx) error {
	var data resetPasswordDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	var user models.User
	if err := database.DB.Where("id = ?", c.Params("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user tidak ditemukan"})
		}
		return err
	}

	user.SetPassword(data.NewPassword)
	if err := database.DB.Model(&user).Update("password", user.Password).Error; err != nil {
		return err
	}

	recordAudit(c, "RESET_PASSWORD", "user", user.Id, nil, nil)
	return c.JSON(fiber.Map{"message": "password berhasil direset"})
}

// DeactivateUser soft-deletes: accounts are never removed, only switched off.
func DeactivateUser(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.Where("id = ?", c.Params("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user tidak ditemukan"})
		}
		return err
	}

	if err := database.DB.Model(&user).Update("is_active", false).Error; err != nil {
		return err
	}

	recordAudit(c, "DEACTIVATE_USER", "user", user.Id, nil, nil)
	return c.JSON(fiber.Map{"message": "user berhasil dinonaktifkan"})
}
