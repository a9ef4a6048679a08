package repository

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/baniakuntest4-alt/arhanud/models"
)

// AuditRepo writes audit entries best-effort: a failed insert is logged and
// never bubbles up to the operation being audited.
type AuditRepo struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewAuditRepo(db *gorm.DB, log *logrus.Logger) *AuditRepo {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuditRepo{db: db, log: log}
}

func (a *AuditRepo) Record(entry models.AuditLog) {
	if err := a.db.Create(&entry).Error; err != nil {
		a.log.WithError(err).WithFields(logrus.Fields{
			"action":      entry.Action,
			"entity_type": entry.EntityType,
			"entity_id":   entry.EntityID,
		}).Warn("audit write failed")
	}
}
