package controllers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"github.com/baniakuntest4-alt/arhanud/database"
	"github.com/baniakuntest4-alt/arhanud/models"
	"github.com/baniakuntest4-alt/arhanud/repository"
	"github.com/baniakuntest4-alt/arhanud/services"
)

// actorFromCtx rebuilds the authenticated caller from the locals set by the
// auth middleware. Identity is never taken from request bodies.
func actorFromCtx(c *fiber.Ctx) services.Actor {
	userID, _ := c.Locals("userID").(string)
	username, _ := c.Locals("username").(string)
	role, _ := c.Locals("role").(string)
	nrp, _ := c.Locals("nrp").(string)
	return services.Actor{
		UserID:   userID,
		Username: username,
		Role:     models.Role(role),
		NRP:      nrp,
	}
}

func requestService() *services.RequestService {
	db := database.DB
	return services.NewRequestService(
		repository.NewRequestRepo(db),
		repository.NewPersonnelRepo(db),
		repository.NewAuditRepo(db, nil),
		nil,
	)
}

func auditor() *repository.AuditRepo {
	return repository.NewAuditRepo(database.DB, nil)
}

// auditValue marshals v for the audit trail; unmarshalable values become null.
func auditValue(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func recordAudit(c *fiber.Ctx, action, entityType, entityID string, oldValue, newValue any) {
	actor := actorFromCtx(c)
	entry := models.AuditLog{
		UserID:     actor.UserID,
		Username:   actor.Username,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		IPAddress:  c.IP(),
	}
	if oldValue != nil {
		entry.OldValue = auditValue(oldValue)
	}
	if newValue != nil {
		entry.NewValue = auditValue(newValue)
	}
	auditor().Record(entry)
}
