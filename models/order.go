package models

import (
	"fmt"
	"time"

	"github.com/Aravind-528/StyleKart/payment"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order delivery status constants
const (
	OrderStatusPending   = "Pending"
	OrderStatusDelivered = "Delivered"
	OrderStatusCancelled = "Cancelled"
	OrderStatusOnHold    = "On Hold"
)

type Order struct {
	ID            string                `gorm:"primaryKey;size:36" json:"id"`
	IsPaid        bool                  `json:"is_paid"`
	PaymentMethod payment.PaymentMethod `gorm:"size:32" json:"payment_method"`
	PaymentID     string                `gorm:"index;size:64" json:"payment_id"`
	PaymentStatus payment.PaymentStatus `gorm:"size:16" json:"payment_status"`
	CustomerName  string                `json:"customer_name"`
	CustomerEmail string                `json:"customer_email"`
	Phone         string                `json:"phone"`
	Address       string                `json:"address"`
	TotalAmount   float64               `json:"total_amount"`
	Status        string                `gorm:"size:32" json:"status"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	OrderItems    []OrderItem           `gorm:"foreignKey:OrderID" json:"items"`
}

type OrderItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     string  `gorm:"index;size:36" json:"order_id"`
	ProductID   uint    `json:"product_id"`
	Product     Product `json:"product"`
	ProductName string  `json:"product_name"`
	Size        string  `json:"size,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// BeforeCreate assigns an opaque order id.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// ApplyPaymentStatus moves an order's payment state, keeping IsPaid in
// lockstep with PaymentStatus. Terminal states are stable: a stale pending
// observation racing a webhook never overwrites them.
func (o *Order) ApplyPaymentStatus(status payment.PaymentStatus) bool {
	if o.PaymentStatus.Terminal() && !status.Terminal() {
		return false
	}
	o.PaymentStatus = status
	o.IsPaid = status == payment.StatusSuccess
	return true
}

// UpdatePaymentStatus persists an ApplyPaymentStatus transition for an order
// row. The returned bool reports whether the transition was applied.
func UpdatePaymentStatus(db *gorm.DB, order *Order, status payment.PaymentStatus) (bool, error) {
	if !order.ApplyPaymentStatus(status) {
		return false, nil
	}
	if err := db.Model(&Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"payment_status": order.PaymentStatus,
		"is_paid":        order.IsPaid,
	}).Error; err != nil {
		return false, fmt.Errorf("failed to update payment status: %w", err)
	}
	return true, nil
}
