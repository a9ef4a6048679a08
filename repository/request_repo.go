package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/baniakuntest4-alt/arhanud/models"
	"github.com/baniakuntest4-alt/arhanud/services"
)

// RequestRepo is the Postgres-backed services.RequestStore.
type RequestRepo struct {
	db *gorm.DB
}

func NewRequestRepo(db *gorm.DB) *RequestRepo {
	return &RequestRepo{db: db}
}

func (r *RequestRepo) Create(req *models.Request) error {
	return r.db.Create(req).Error
}

func (r *RequestRepo) FindByID(id string) (*models.Request, error) {
	var req models.Request
	if err := r.db.Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *RequestRepo) List(f services.RequestFilter) ([]models.Request, error) {
	q := r.db.Model(&models.Request{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.NRP != "" {
		q = q.Where("nrp = ?", f.NRP)
	}
	if f.SubmittedBy != "" {
		q = q.Where("submitted_by = ?", f.SubmittedBy)
	}
	if f.Search != "" {
		q = q.Where("payload::text ILIKE ?", "%"+f.Search+"%")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
		if f.Page > 1 {
			q = q.Offset((f.Page - 1) * f.Limit)
		}
	}

	var out []models.Request
	if err := q.Order("created_at DESC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// TransitionFromPending is the status compare-and-swap: the UPDATE is
// conditioned on status still being pending, so a concurrent decision that
// already landed makes this one a no-op (RowsAffected 0).
func (r *RequestRepo) TransitionFromPending(id string, to models.RequestStatus, note, verifierID string, at time.Time) (bool, error) {
	res := r.db.Model(&models.Request{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]any{
			"status":        to,
			"verifier_note": note,
			"verified_by":   verifierID,
			"verified_at":   at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
