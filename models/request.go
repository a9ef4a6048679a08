package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RequestType string

const (
	TypeMutation   RequestType = "mutation"
	TypeRetirement RequestType = "retirement"
	TypePromotion  RequestType = "promotion"
	TypeCorrection RequestType = "correction"
)

func (t RequestType) Valid() bool {
	switch t {
	case TypeMutation, TypeRetirement, TypePromotion, TypeCorrection:
		return true
	}
	return false
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Request is a unified pengajuan: one row per submitted workflow request,
// with the type-specific fields folded into a jsonb payload. Status moves
// from pending to exactly one terminal state and never again.
type Request struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	NRP          string         `json:"nrp" gorm:"size:32;not null;index"`
	Type         RequestType    `json:"request_type" gorm:"type:VARCHAR(20);not null;index"`
	Payload      datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	Status       RequestStatus  `json:"status" gorm:"type:VARCHAR(10);not null;index"`
	SubmittedBy  string         `json:"submitted_by" gorm:"not null;index"`
	VerifierNote string         `json:"verifier_note"`
	VerifiedBy   string         `json:"verified_by"`
	VerifiedAt   *time.Time     `json:"verified_at"`
	CreatedAt    time.Time      `json:"created_at" gorm:"index"`
}

func (r *Request) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return
}

// PayloadMap decodes the jsonb payload into flat string fields.
func (r *Request) PayloadMap() (map[string]string, error) {
	m := map[string]string{}
	if len(r.Payload) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(r.Payload, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// RequiredPayloadFields lists the payload keys that must be present and
// non-empty for each request type.
var RequiredPayloadFields = map[RequestType][]string{
	TypeMutation:   {"jabatan_asal", "jabatan_tujuan"},
	TypeRetirement: {"jabatan_asal", "tanggal_efektif"},
	TypePromotion:  {"pangkat_baru", "tanggal_efektif"},
	TypeCorrection: {"field_name", "nilai_lama", "nilai_baru"},
}

// CorrectableFields is the set of personnel columns a correction request may
// target. Anything else is rejected at submission.
var CorrectableFields = map[string]bool{
	"nama":          true,
	"pangkat":       true,
	"jabatan":       true,
	"satuan":        true,
	"tmt_jabatan":   true,
	"tanggal_lahir": true,
	"prestasi":      true,
	"dikbangum":     true,
	"dikbangspes":   true,
}
