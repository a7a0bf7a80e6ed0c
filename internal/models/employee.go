package models

import "time"

type Employee struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:100;not null"`
	Surname      string `gorm:"size:100;not null"`
	WarehouseID  uint   `gorm:"index;not null"`
	Warehouse    CabinetWarehouse `gorm:"foreignKey:WarehouseID"`
	PasscodeHash string           `gorm:"size:255"` // device passcode, bcrypt
	UserID       *uint            // login account, if the employee has one
	User         *User
	Permissions  string `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
