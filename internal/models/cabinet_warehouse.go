package models

import "time"

// CabinetWarehouse: storage location. ParentWarehouseID nil means a top-level
// warehouse; set means a cabinet inside that warehouse.
type CabinetWarehouse struct {
	ID                uint   `gorm:"primaryKey"`
	Name              string `gorm:"size:100;not null;unique"`
	ParentWarehouseID *uint
	ParentWarehouse   *CabinetWarehouse `gorm:"foreignKey:ParentWarehouseID"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
