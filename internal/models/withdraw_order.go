package models

import "time"

// WithdrawOrder ("kit"): a batch of stock units checked out together by one
// employee. Status (pending/partial/completed) is never stored here, it is
// derived from the detail rows; IsComplete is only a convenience flag kept in
// sync inside the same transaction that mutates the details.
type WithdrawOrder struct {
	ID           uint      `gorm:"primaryKey"`
	DateWithdraw time.Time `gorm:"index;not null"`
	DateReturn   *time.Time
	EmployeeID   uint `gorm:"index;not null"`
	Employee     Employee
	NumItems     int  `gorm:"not null"`
	IsComplete   bool `gorm:"not null;default:false"`
	Details      []WithdrawOrderDetail
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WithdrawOrderDetail: line item linking one stock unit to one order.
// DateReturn is set when that specific unit comes back.
type WithdrawOrderDetail struct {
	ID              uint `gorm:"primaryKey"`
	WithdrawOrderID uint `gorm:"index;not null"`
	WithdrawOrder   WithdrawOrder
	ProductStockID  uint `gorm:"index;not null"`
	ProductStock    ProductStock
	DateWithdraw    time.Time `gorm:"not null"`
	DateReturn      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
