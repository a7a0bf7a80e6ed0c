package models

import "time"

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleEncargado UserRole = "encargado" // manager, cross-warehouse visibility
	RoleEmployee  UserRole = "employee"  // scoped to a single warehouse
)

type User struct {
	ID           uint `gorm:"primaryKey"`
	WarehouseID  *uint
	Warehouse    *CabinetWarehouse `gorm:"foreignKey:WarehouseID"`
	Name         string            `gorm:"size:100;not null"`
	Email        string            `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string            `gorm:"size:255;not null"`
	Role         UserRole          `gorm:"size:20;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
