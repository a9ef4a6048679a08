package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RankHistory struct {
	Id          string    `json:"id" gorm:"primaryKey"`
	PersonnelID string    `json:"personnel_id" gorm:"not null;index"`
	PangkatLama string    `json:"pangkat_lama"`
	PangkatBaru string    `json:"pangkat_baru" gorm:"not null"`
	TMT         string    `json:"tmt"`
	NomorSK     string    `json:"nomor_sk"`
	Keterangan  string    `json:"keterangan"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *RankHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.Id == "" {
		h.Id = uuid.NewString()
	}
	return
}

type PositionHistory struct {
	Id          string    `json:"id" gorm:"primaryKey"`
	PersonnelID string    `json:"personnel_id" gorm:"not null;index"`
	JabatanLama string    `json:"jabatan_lama"`
	JabatanBaru string    `json:"jabatan_baru" gorm:"not null"`
	Satuan      string    `json:"satuan"`
	TMT         string    `json:"tmt"`
	NomorSK     string    `json:"nomor_sk"`
	Keterangan  string    `json:"keterangan"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *PositionHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.Id == "" {
		h.Id = uuid.NewString()
	}
	return
}

type Education struct {
	Id              string    `json:"id" gorm:"primaryKey"`
	PersonnelID     string    `json:"personnel_id" gorm:"not null;index"`
	JenisPendidikan string    `json:"jenis_pendidikan" gorm:"not null"` // DIKBANGUM or DIKBANGSPES
	NamaPendidikan  string    `json:"nama_pendidikan" gorm:"not null"`
	Tahun           string    `json:"tahun"`
	Tempat          string    `json:"tempat"`
	Keterangan      string    `json:"keterangan"`
	CreatedAt       time.Time `json:"created_at"`
}

func (e *Education) BeforeCreate(tx *gorm.DB) (err error) {
	if e.Id == "" {
		e.Id = uuid.NewString()
	}
	return
}

type FamilyMember struct {
	Id           string    `json:"id" gorm:"primaryKey"`
	PersonnelID  string    `json:"personnel_id" gorm:"not null;index"`
	Hubungan     string    `json:"hubungan" gorm:"not null"` // istri, suami, anak
	Nama         string    `json:"nama" gorm:"not null"`
	TanggalLahir string    `json:"tanggal_lahir"`
	Pekerjaan    string    `json:"pekerjaan"`
	Keterangan   string    `json:"keterangan"`
	CreatedAt    time.Time `json:"created_at"`
}

func (f *FamilyMember) BeforeCreate(tx *gorm.DB) (err error) {
	if f.Id == "" {
		f.Id = uuid.NewString()
	}
	return
}
