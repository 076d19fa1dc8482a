package controllers

import (
	"errors"

	"github.com/Aravind-528/StyleKart/config"
	"github.com/Aravind-528/StyleKart/models"
	"github.com/Aravind-528/StyleKart/payment"
	"github.com/Aravind-528/StyleKart/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var validOrderStatuses = map[string]bool{
	models.OrderStatusPending:   true,
	models.OrderStatusDelivered: true,
	models.OrderStatusCancelled: true,
	models.OrderStatusOnHold:    true,
}

// AdminListOrders returns recent orders for the admin dashboard.
func AdminListOrders(c *gin.Context) {
	utils.LogInfo("AdminListOrders called by %s", c.GetString("adminEmail"))

	var orders []models.Order
	if err := config.DB.Preload("OrderItems").Order("created_at DESC").Limit(100).Find(&orders).Error; err != nil {
		utils.LogError("Failed to list orders: %v", err)
		utils.InternalServerError(c, "Failed to list orders", err.Error())
		return
	}
	utils.Success(c, "Orders retrieved successfully", gin.H{"orders": orders, "count": len(orders)})
}

// AdminUpdateOrderStatus changes an order's delivery status. Marking a COD
// order as delivered settles its payment, since cash changes hands at the
// door.
func AdminUpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("id")
	utils.LogInfo("AdminUpdateOrderStatus called for order %s by %s", orderID, c.GetString("adminEmail"))

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid status update request: %v", err)
		utils.BadRequest(c, "Invalid request. status is required", err.Error())
		return
	}
	if !validOrderStatuses[req.Status] {
		utils.LogError("Rejected invalid order status %q", req.Status)
		utils.BadRequest(c, "Invalid order status", gin.H{"status": req.Status})
		return
	}

	db := config.DB
	var order models.Order
	if err := db.Where("id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, utils.ErrOrderNotFound)
			return
		}
		utils.LogError("Order lookup failed for %s: %v", orderID, err)
		utils.InternalServerError(c, "Failed to look up order", err.Error())
		return
	}

	if err := db.Model(&order).Update("status", req.Status).Error; err != nil {
		utils.LogError("Failed to update order %s status: %v", orderID, err)
		utils.InternalServerError(c, "Failed to update order status", err.Error())
		return
	}
	order.Status = req.Status

	if req.Status == models.OrderStatusDelivered && order.PaymentMethod == payment.MethodCOD {
		if _, err := models.UpdatePaymentStatus(db, &order, payment.StatusSuccess); err != nil {
			utils.LogError("Failed to settle COD payment for order %s: %v", orderID, err)
			utils.InternalServerError(c, "Failed to settle COD payment", err.Error())
			return
		}
		utils.LogInfo("COD payment settled for delivered order %s", orderID)
	}

	utils.Success(c, "Order status updated successfully", gin.H{"order": order})
}

// AdminGenerateStaticQR produces a reusable UPI QR for in-store collections.
func AdminGenerateStaticQR(c *gin.Context) {
	utils.LogInfo("AdminGenerateStaticQR called by %s", c.GetString("adminEmail"))

	var req struct {
		Amount  float64 `json:"amount"`
		Remarks string  `json:"remarks"`
		Name    string  `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid static QR request: %v", err)
		utils.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	result := paymentService.SprintNxt().GenerateStaticQR(c.Request.Context(), req.Amount, req.Remarks, req.Name)
	if !result.Success {
		utils.BadRequest(c, "Failed to generate QR", gin.H{"error": result.Error})
		return
	}
	utils.Success(c, "Static QR generated successfully", gin.H{"qr_string": result.QRString})
}
