package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TollTransaction struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	VehicleID       string    `gorm:"type:varchar(100);not null;index"`
	VehicleType     string    `gorm:"type:varchar(50);not null"`
	WalletAddress   string    `gorm:"type:varchar(255);not null;index"`
	OperatorAddress string    `gorm:"type:varchar(255)"`
	PlazaID         string    `gorm:"type:varchar(100);index"`
	Amount          string    `gorm:"type:varchar(100);not null"`
	ProofHash       string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	TransactionHash *string   `gorm:"type:varchar(255);index"`
	GasUsed         *string   `gorm:"type:varchar(100)"`
	Notes           *string   `gorm:"type:text"`
	Status          string    `gorm:"type:varchar(50);not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}
