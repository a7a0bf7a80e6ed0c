package models

import "time"

// ProductStock: one physical, individually tracked unit of a product.
// Never hard-deleted; disposal flips Disposed and the row stays for history.
type ProductStock struct {
	ID                 uint   `gorm:"primaryKey"`
	Barcode            string `gorm:"size:100;uniqueIndex;not null"`
	ProductID          uint   `gorm:"index;not null"`
	Product            Product
	CurrentWarehouseID uint `gorm:"index;not null"`
	CurrentWarehouse   CabinetWarehouse `gorm:"foreignKey:CurrentWarehouseID"`
	IsBeingUsed        bool             `gorm:"not null;default:false"`
	NumberOfUses       int              `gorm:"not null;default:0"`
	FirstUsed          *time.Time
	LastUsed           *time.Time
	LastUsedByID       *uint
	LastUsedBy         *Employee `gorm:"foreignKey:LastUsedByID"`
	Disposed           bool      `gorm:"not null;default:false"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
