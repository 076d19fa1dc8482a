package controllers

import (
	"errors"

	"github.com/Aravind-528/StyleKart/config"
	"github.com/Aravind-528/StyleKart/models"
	"github.com/Aravind-528/StyleKart/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// VerifyPayment checks the current payment status of an order with its
// provider and records the result. Safe to call repeatedly; the client UPI
// poller hits this endpoint until the payment settles.
func VerifyPayment(c *gin.Context) {
	utils.LogInfo("VerifyPayment called")

	var req struct {
		OrderID string `json:"order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid verify request: %v", err)
		utils.BadRequest(c, "Invalid request. order_id is required", err.Error())
		return
	}

	db := config.DB
	var order models.Order
	if err := db.Where("id = ?", req.OrderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogError("Order not found for verification: %s", req.OrderID)
			utils.NotFound(c, utils.ErrOrderNotFound)
			return
		}
		utils.LogError("Order lookup failed for %s: %v", req.OrderID, err)
		utils.InternalServerError(c, "Failed to look up order", err.Error())
		return
	}
	utils.LogInfo("Verifying order %s, method %s, payment %s", order.ID, order.PaymentMethod, order.PaymentID)

	paymentID := order.PaymentID
	if paymentID == "" {
		paymentID = order.ID
	}

	verification := paymentService.VerifyPayment(c.Request.Context(), order.PaymentMethod, paymentID, nil)
	utils.LogInfo("Verification for order %s: success=%t status=%s", order.ID, verification.Success, verification.Status)

	applied, err := models.UpdatePaymentStatus(db, &order, verification.Status)
	if err != nil {
		utils.LogError("Failed to record verification for order %s: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to update order", err.Error())
		return
	}
	if !applied {
		utils.LogInfo("Order %s already terminal (%s), ignoring %s observation", order.ID, order.PaymentStatus, verification.Status)
	}

	utils.Success(c, "Payment verification completed", gin.H{
		"success":        verification.Success,
		"order":          order,
		"payment_status": order.PaymentStatus,
	})
}

// GetPaymentMethods lists the registered payment methods and whether each is
// configured.
func GetPaymentMethods(c *gin.Context) {
	utils.LogInfo("GetPaymentMethods called")
	utils.Success(c, "Payment methods retrieved successfully", gin.H{
		"methods": paymentService.AvailableMethods(),
	})
}

// ValidateVPA checks a customer's UPI id with the gateway before checkout.
func ValidateVPA(c *gin.Context) {
	utils.LogInfo("ValidateVPA called")

	var req struct {
		VPA string `json:"vpa" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid VPA validation request: %v", err)
		utils.BadRequest(c, "Invalid request. vpa is required", err.Error())
		return
	}

	if ok, msg := utils.ValidateVPA(req.VPA); !ok {
		utils.BadRequest(c, msg, nil)
		return
	}

	result := paymentService.SprintNxt().ValidateVPA(c.Request.Context(), req.VPA)
	utils.Success(c, "VPA validation completed", gin.H{
		"valid":               result.Valid,
		"account_holder_name": result.AccountHolderName,
		"error":               result.Error,
	})
}
