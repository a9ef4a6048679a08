package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/baniakuntest4-alt/arhanud/database"
	"github.com/baniakuntest4-alt/arhanud/middlewares"
	"github.com/baniakuntest4-alt/arhanud/models"
)

type loginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func Login(c *fiber.Ctx) error {
	var data loginDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	var user models.User
	if err := database.DB.Where("username = ?", data.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "username atau password salah"})
		}
		return err
	}
	if err := user.ComparePassword(data.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "username atau password salah"})
	}
	if !user.IsActive {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "akun tidak aktif"})
	}

	token, err := middlewares.GenerateJWT(user)
	if err != nil {
		return err
	}

	recordAuditAs(c, user, "LOGIN", "auth", "")

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

func Logout(c *fiber.Ctx) error {
	recordAudit(c, "LOGOUT", "auth", "", nil, nil)
	return c.JSON(fiber.Map{"message": "logout berhasil"})
}

func Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "user tidak ditemukan"})
		}
		return err
	}
	return c.JSON(user)
}

type changePasswordDTO struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

func ChangePassword(c *fiber.Ctx) error {
	var data changePasswordDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	userID, _ := c.Locals("userID").(string)
	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return err
	}
	if err := user.ComparePassword(data.OldPassword); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "password lama salah"})
	}

	user.SetPassword(data.NewPassword)
	if err := database.DB.Model(&user).Update("password", user.Password).Error; err != nil {
		return err
	}

	recordAudit(c, "CHANGE_PASSWORD", "user", user.Id, nil, nil)
	return c.JSON(fiber.Map{"message": "password berhasil diubah"})
}

// InitSetup seeds the five default role accounts once. Safe to call again:
// it refuses after an admin exists.
func InitSetup(c *fiber.Ctx) error {
	var count int64
	if err := database.DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return c.JSON(fiber.Map{"message": "system already initialized"})
	}

	defaults := []struct {
		Username string
		Nama     string
		Role     models.Role
		NRP      string
		Password string
	}{
		{"admin", "Administrator", models.RoleAdmin, "", "admin123"},
		{"staff1", "Staf Kepegawaian 1", models.RoleStaff, "", "staff123"},
		{"verifikator1", "Pejabat Verifikator", models.RoleVerifier, "", "verif123"},
		{"pimpinan", "Pimpinan Satuan", models.RoleLeader, "", "pimpin123"},
		{"personel1", "Fredy Jaguar", models.RolePersonnel, "11120017460989", "personel123"},
	}

	for _, d := range defaults {
		u := models.User{
			Username:    d.Username,
			NamaLengkap: d.Nama,
			Role:        d.Role,
			NRP:         d.NRP,
			IsActive:    true,
		}
		u.SetPassword(d.Password)
		if err := database.DB.Create(&u).Error; err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{"message": "system initialized"})
}

// recordAuditAs audits on behalf of a freshly authenticated user, before the
// auth locals exist.
func recordAuditAs(c *fiber.Ctx, user models.User, action, entityType, entityID string) {
	auditor().Record(models.AuditLog{
		UserID:     user.Id,
		Username:   user.Username,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		IPAddress:  c.IP(),
	})
}
