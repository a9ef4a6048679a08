package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PersonnelActive  = "active"
	PersonnelRetired = "pensiun"
)

type Personnel struct {
	Id           string     `json:"id" gorm:"primaryKey"`
	NRP          string     `json:"nrp" gorm:"size:32;uniqueIndex;not null"`
	Nama         string     `json:"nama" gorm:"not null"`
	Pangkat      string     `json:"pangkat" gorm:"not null"`
	Jabatan      string     `json:"jabatan" gorm:"not null"`
	Satuan       string     `json:"satuan"`
	TMTJabatan   string     `json:"tmt_jabatan"`
	TanggalLahir string     `json:"tanggal_lahir"`
	Prestasi     string     `json:"prestasi"`
	Dikbangum    string     `json:"dikbangum"`
	Dikbangspes  string     `json:"dikbangspes"`
	Status       string     `json:"status" gorm:"type:VARCHAR(10);default:active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

func (Personnel) TableName() string { return "personnel" }

func (p *Personnel) BeforeCreate(tx *gorm.DB) (err error) {
	if p.Id == "" {
		p.Id = uuid.NewString()
	}
	return
}
