package controllers

import (
	"fmt"
	"strings"

	"github.com/Aravind-528/StyleKart/config"
	"github.com/Aravind-528/StyleKart/models"
	"github.com/Aravind-528/StyleKart/payment"
	"github.com/Aravind-528/StyleKart/utils"
	"github.com/gin-gonic/gin"
)

// CheckoutItem is one cart line in a checkout request.
type CheckoutItem struct {
	ProductID uint   `json:"id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
}

// CheckoutRequest is the checkout endpoint payload.
type CheckoutRequest struct {
	Items         []CheckoutItem `json:"items"`
	PaymentMethod string         `json:"payment_method"`
	CustomerName  string         `json:"customer_name"`
	CustomerEmail string         `json:"customer_email"`
	CustomerPhone string         `json:"customer_phone"`
	Address       string         `json:"address"`
}

// Checkout creates a pending order, asks the selected payment provider for a
// session, and rolls the order back if the provider declines. The response
// shape depends on the provider: a redirect URL for hosted checkouts, QR
// metadata for UPI, a plain acknowledgment for COD.
func Checkout(c *gin.Context) {
	utils.LogInfo("Checkout called")

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid checkout request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if fieldErrors := validateCheckoutRequest(&req); len(fieldErrors) > 0 {
		utils.LogError("Checkout validation failed: %v", fieldErrors.Error())
		utils.BadRequest(c, "Checkout validation failed", fieldErrors)
		return
	}

	method := payment.PaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod)))
	utils.LogInfo("Processing checkout with method %s, %d items", method, len(req.Items))

	db := config.DB

	// Price the cart from the catalog, preferring sale prices.
	var totalAmount float64
	orderItems := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		var product models.Product
		if err := db.First(&product, item.ProductID).Error; err != nil {
			utils.LogError("Product not found for checkout, ID: %d: %v", item.ProductID, err)
			utils.NotFound(c, fmt.Sprintf("Product with ID %d not found", item.ProductID))
			return
		}

		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		unitPrice := product.UnitPrice()
		totalAmount += unitPrice * float64(quantity)

		orderItems = append(orderItems, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Title,
			Size:        item.Size,
			Quantity:    quantity,
			Price:       unitPrice,
		})
	}
	utils.LogInfo("Calculated checkout total: %.2f", totalAmount)

	order := models.Order{
		IsPaid:        false,
		PaymentMethod: method,
		PaymentStatus: payment.StatusPending,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Phone:         req.CustomerPhone,
		Address:       req.Address,
		TotalAmount:   totalAmount,
		Status:        models.OrderStatusPending,
		OrderItems:    orderItems,
	}
	if err := db.Create(&order).Error; err != nil {
		utils.LogError("Failed to create order: %v", err)
		utils.InternalServerError(c, "Failed to create order", err.Error())
		return
	}
	utils.LogInfo("Created order %s, amount %.2f", order.ID, totalAmount)

	paymentResponse := paymentService.CreatePayment(c.Request.Context(), method, payment.PaymentRequest{
		OrderID:       order.ID,
		Amount:        totalAmount,
		Currency:      utils.DefaultCurrency,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		ReturnURL:     config.App.Cashfree.ReturnBaseURL + "/cart?success=1",
		Metadata: map[string]interface{}{
			"orderId": order.ID,
		},
	})

	if !paymentResponse.Success {
		// Compensating rollback: an order must not exist without a live
		// payment attempt behind it.
		if err := deleteOrderWithItems(order.ID); err != nil {
			utils.LogError("Failed to roll back order %s after payment failure: %v", order.ID, err)
		} else {
			utils.LogInfo("Rolled back order %s after payment failure", order.ID)
		}

		errMsg := paymentResponse.Error
		if errMsg == "" {
			errMsg = utils.ErrPaymentInitFailure
		}
		utils.LogError("Payment initialization failed for order %s: %s", order.ID, errMsg)
		utils.BadRequest(c, errMsg, nil)
		return
	}

	if err := db.Model(&order).Updates(map[string]interface{}{
		"payment_id":     paymentResponse.PaymentID,
		"payment_status": paymentResponse.Status,
	}).Error; err != nil {
		utils.LogError("Failed to store payment details for order %s: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to update order details", err.Error())
		return
	}
	utils.LogInfo("Order %s ready, payment %s, status %s", order.ID, paymentResponse.PaymentID, paymentResponse.Status)

	metadata := paymentResponse.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadata["amount"] = totalAmount

	if paymentResponse.PaymentURL != "" {
		// Redirect-based payments and UPI QR flows carry a payment URL; the
		// metadata lets UPI clients render the QR in-page instead.
		utils.Success(c, paymentResponse.Message, gin.H{
			"order_id":    order.ID,
			"payment_url": paymentResponse.PaymentURL,
			"metadata":    metadata,
		})
		return
	}

	utils.Success(c, paymentResponse.Message, gin.H{
		"order_id": order.ID,
		"metadata": metadata,
	})
}

func validateCheckoutRequest(req *CheckoutRequest) utils.FieldValidationErrors {
	var fieldErrors utils.FieldValidationErrors

	if len(req.Items) == 0 {
		fieldErrors = append(fieldErrors, utils.FieldValidationError{Field: "items", Message: utils.ErrCartEmpty})
	}

	method := payment.PaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod)))
	switch method {
	case payment.MethodCOD, payment.MethodCashfree, payment.MethodSprintNxt:
	case "":
		fieldErrors = append(fieldErrors, utils.FieldValidationError{Field: "payment_method", Message: utils.ErrPaymentMethod})
	default:
		fieldErrors = append(fieldErrors, utils.FieldValidationError{
			Field:   "payment_method",
			Message: "Invalid payment method. Must be one of: cod, cashfree, sprintnxt",
		})
	}

	if strings.TrimSpace(req.CustomerName) == "" {
		fieldErrors = append(fieldErrors, utils.FieldValidationError{Field: "customer_name", Message: utils.ErrCustomerDetails})
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		fieldErrors = append(fieldErrors, utils.FieldValidationError{Field: "customer_phone", Message: utils.ErrCustomerDetails})
	} else if ok, msg := utils.ValidatePhone(req.CustomerPhone); !ok {
		fieldErrors = append(fieldErrors, utils.FieldValidationError{Field: "customer_phone", Message: msg})
	}
	if strings.TrimSpace(req.Address) == "" {
		fieldErrors = append(fieldErrors, utils.FieldValidationError{Field: "address", Message: utils.ErrCustomerDetails})
	}
	if req.CustomerEmail != "" {
		if ok, msg := utils.ValidateEmail(req.CustomerEmail); !ok {
			fieldErrors = append(fieldErrors, utils.FieldValidationError{Field: "customer_email", Message: msg})
		}
	}

	return fieldErrors
}

// deleteOrderWithItems removes an order and its items in one transaction.
func deleteOrderWithItems(orderID string) error {
	tx := config.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("id = ?", orderID).Delete(&models.Order{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
