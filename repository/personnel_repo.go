package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/baniakuntest4-alt/arhanud/models"
)

// PersonnelRepo is the Postgres-backed services.PersonnelDirectory: it
// resolves subject NRPs and applies the record updates approvals imply.
type PersonnelRepo struct {
	db *gorm.DB
}

func NewPersonnelRepo(db *gorm.DB) *PersonnelRepo {
	return &PersonnelRepo{db: db}
}

func (r *PersonnelRepo) FindByNRP(nrp string) (*models.Personnel, error) {
	var p models.Personnel
	if err := r.db.Where("nrp = ?", nrp).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ApplyApproved performs the downstream update for an approved request:
// mutation and promotion rewrite the personnel record and append a history
// entry, retirement flips the status, correction rewrites the named field.
// Each runs in one transaction so a half-applied update cannot be observed.
func (r *PersonnelRepo) ApplyApproved(req *models.Request) error {
	payload, err := req.PayloadMap()
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	subject, err := r.FindByNRP(req.NRP)
	if err != nil {
		return err
	}
	if subject == nil {
		return fmt.Errorf("personnel %s no longer exists", req.NRP)
	}

	switch req.Type {
	case models.TypeMutation:
		return r.applyMutation(subject, payload)
	case models.TypeRetirement:
		return r.touch(subject.Id, map[string]any{"status": models.PersonnelRetired})
	case models.TypePromotion:
		return r.applyPromotion(subject, payload)
	case models.TypeCorrection:
		return r.applyCorrection(subject, payload)
	}
	return fmt.Errorf("unknown request type %q", req.Type)
}

func (r *PersonnelRepo) applyMutation(subject *models.Personnel, payload map[string]string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"jabatan": payload["jabatan_tujuan"], "updated_at": time.Now().UTC()}
		if payload["satuan_tujuan"] != "" {
			updates["satuan"] = payload["satuan_tujuan"]
		}
		if err := tx.Model(&models.Personnel{}).Where("id = ?", subject.Id).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Create(&models.PositionHistory{
			PersonnelID: subject.Id,
			JabatanLama: payload["jabatan_asal"],
			JabatanBaru: payload["jabatan_tujuan"],
			Satuan:      payload["satuan_tujuan"],
			TMT:         payload["tanggal_efektif"],
			Keterangan:  payload["alasan"],
		}).Error
	})
}

func (r *PersonnelRepo) applyPromotion(subject *models.Personnel, payload map[string]string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"pangkat": payload["pangkat_baru"], "updated_at": time.Now().UTC()}
		if err := tx.Model(&models.Personnel{}).Where("id = ?", subject.Id).Updates(updates).Error; err != nil {
			return err
		}
		pangkatLama := payload["pangkat_lama"]
		if pangkatLama == "" {
			pangkatLama = subject.Pangkat
		}
		return tx.Create(&models.RankHistory{
			PersonnelID: subject.Id,
			PangkatLama: pangkatLama,
			PangkatBaru: payload["pangkat_baru"],
			TMT:         payload["tanggal_efektif"],
			NomorSK:     payload["nomor_sk"],
		}).Error
	})
}

func (r *PersonnelRepo) applyCorrection(subject *models.Personnel, payload map[string]string) error {
	field := payload["field_name"]
	if !models.CorrectableFields[field] {
		return fmt.Errorf("field %q is not correctable", field)
	}
	return r.touch(subject.Id, map[string]any{field: payload["nilai_baru"]})
}

func (r *PersonnelRepo) touch(id string, updates map[string]any) error {
	updates["updated_at"] = time.Now().UTC()
	return r.db.Model(&models.Personnel{}).Where("id = ?", id).Updates(updates).Error
}
