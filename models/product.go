package models

import "time"

// Product is the minimal catalog record the payment core prices orders from.
// Catalog management itself lives outside this service.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	SalePrice float64   `json:"sale_price,omitempty"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UnitPrice prefers the sale price over the list price when one is set.
func (p *Product) UnitPrice() float64 {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.Price
}
