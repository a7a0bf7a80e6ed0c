package models

import "time"

// Product: catalog entry. Stock units reference a product; the product itself
// carries no quantity, every physical unit is its own ProductStock row.
type Product struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	Category  string `gorm:"size:50;index"`
	Unit      string `gorm:"size:20;not null"` // unit of measure (piece, box, kg)
	CreatedAt time.Time
	UpdatedAt time.Time
}
