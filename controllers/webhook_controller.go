package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/Aravind-528/StyleKart/config"
	"github.com/Aravind-528/StyleKart/models"
	"github.com/Aravind-528/StyleKart/payment"
	"github.com/Aravind-528/StyleKart/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CashfreeWebhook receives server-to-server payment notifications from
// Cashfree. The signature is checked against the raw body when a webhook
// secret is configured.
func CashfreeWebhook(c *gin.Context) {
	utils.LogInfo("CashfreeWebhook called")

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.LogError("Failed to read Cashfree webhook body: %v", err)
		utils.BadRequest(c, "Failed to read request body", err.Error())
		return
	}

	cashfree := paymentService.Cashfree()
	if cashfree.WebhookSecretConfigured() {
		timestamp := c.GetHeader("x-webhook-timestamp")
		signature := c.GetHeader("x-webhook-signature")
		if !cashfree.VerifyWebhookSignature(timestamp, rawBody, signature) {
			utils.LogError("Cashfree webhook signature mismatch")
			utils.Unauthorized(c, "Invalid webhook signature")
			return
		}
	} else {
		utils.LogInfo("Cashfree webhook secret not configured, skipping signature check")
	}

	var payload struct {
		Data struct {
			Order struct {
				OrderID string `json:"order_id"`
			} `json:"order"`
			Payment struct {
				PaymentStatus string `json:"payment_status"`
			} `json:"payment"`
		} `json:"data"`
		OrderID     string `json:"orderId"`
		OrderStatus string `json:"orderStatus"`
	}
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		utils.LogError("Invalid Cashfree webhook payload: %v", err)
		utils.BadRequest(c, "Invalid webhook payload", err.Error())
		return
	}

	orderID := payload.Data.Order.OrderID
	if orderID == "" {
		orderID = payload.OrderID
	}
	orderStatus := payload.Data.Payment.PaymentStatus
	if orderStatus == "" {
		orderStatus = payload.OrderStatus
	}
	if orderID == "" {
		utils.LogError("Cashfree webhook missing order id")
		utils.BadRequest(c, "Missing order id in webhook payload", nil)
		return
	}
	utils.LogInfo("Cashfree webhook for order %s, status %s", orderID, orderStatus)

	status := payment.MapCashfreeStatus(orderStatus)
	if err := reconcileOrder(c, orderID, status); err != nil {
		return
	}
	utils.Success(c, "Webhook processed", gin.H{"order_id": orderID, "payment_status": status})
}

// SprintNxtWebhook receives UPI transaction callbacks. Production callbacks
// must carry an encrypted encdata field; a payload that fails to decrypt is
// rejected without touching any order.
func SprintNxtWebhook(c *gin.Context) {
	utils.LogInfo("SprintNxtWebhook called")

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.LogError("Failed to read SprintNxt webhook body: %v", err)
		utils.BadRequest(c, "Failed to read request body", err.Error())
		return
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		utils.LogError("Invalid SprintNxt webhook payload: %v", err)
		utils.BadRequest(c, "Invalid webhook payload", err.Error())
		return
	}

	encdata, _ := envelope["encdata"].(string)
	if encdata == "" {
		if config.App.IsProduction() {
			utils.LogError("SprintNxt webhook missing encdata in production")
			utils.BadRequest(c, "Missing encdata in webhook payload", nil)
			return
		}
		processPlainCallback(c, envelope)
		return
	}

	result, err := paymentService.SprintNxt().ProcessCallback(encdata)
	if err != nil {
		utils.LogError("SprintNxt callback decrypt failed: %v", err)
		utils.BadRequest(c, "Failed to decrypt webhook payload", err.Error())
		return
	}
	utils.LogInfo("SprintNxt callback for reference %s, status %s", result.ReferenceID, result.Status)

	if result.ReferenceID == "" {
		utils.LogError("SprintNxt callback missing reference id")
		utils.BadRequest(c, "Missing reference id in webhook payload", nil)
		return
	}

	if err := reconcileOrder(c, result.ReferenceID, result.Status); err != nil {
		return
	}
	utils.Success(c, "Webhook processed", gin.H{"reference_id": result.ReferenceID, "payment_status": result.Status})
}

// processPlainCallback handles unencrypted sandbox callbacks. The gateway's
// UAT environment posts txnStatus either as a string or a number.
func processPlainCallback(c *gin.Context, payload map[string]interface{}) {
	utils.LogInfo("Processing plain SprintNxt callback (sandbox)")

	var referenceID string
	for _, key := range []string{"referenceid", "referenceId", "orderid"} {
		if v, ok := payload[key].(string); ok && v != "" {
			referenceID = v
			break
		}
	}
	if referenceID == "" {
		utils.LogError("Plain SprintNxt callback missing reference id")
		utils.BadRequest(c, "Missing reference id in webhook payload", nil)
		return
	}

	rawStatus, ok := payload["txnStatus"]
	if !ok {
		rawStatus = payload["status"]
	}
	status := payment.StatusPending
	switch v := rawStatus.(type) {
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			status = payment.MapSprintNxtStatus(n)
		} else {
			status = mapNamedCallbackStatus(v)
		}
	case float64:
		status = payment.MapSprintNxtStatus(int(v))
	}
	utils.LogInfo("Plain SprintNxt callback for reference %s, status %s", referenceID, status)

	if err := reconcileOrder(c, referenceID, status); err != nil {
		return
	}
	utils.Success(c, "Webhook processed", gin.H{"reference_id": referenceID, "payment_status": status})
}

// mapNamedCallbackStatus handles sandbox callbacks that spell the transaction
// status out instead of using the numeric codes.
func mapNamedCallbackStatus(s string) payment.PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUCCESS", "PAID":
		return payment.StatusSuccess
	case "FAILED", "FAILURE":
		return payment.StatusFailed
	case "EXPIRED", "CANCELLED":
		return payment.StatusCancelled
	default:
		// PENDING, INITIATED and anything unrecognised stay pending.
		return payment.StatusPending
	}
}

// reconcileOrder finds the order by either its own id or the provider's
// payment id and applies the observed status. It writes the HTTP error
// response itself and returns a non-nil error when the caller should stop.
func reconcileOrder(c *gin.Context, id string, status payment.PaymentStatus) error {
	db := config.DB
	var order models.Order
	if err := db.Where("id = ? OR payment_id = ?", id, id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogError("Webhook references unknown order %s", id)
			utils.NotFound(c, utils.ErrOrderNotFound)
			return err
		}
		utils.LogError("Order lookup failed for webhook %s: %v", id, err)
		utils.InternalServerError(c, "Failed to look up order", err.Error())
		return err
	}

	applied, err := models.UpdatePaymentStatus(db, &order, status)
	if err != nil {
		utils.LogError("Failed to record webhook status for order %s: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to update order", err.Error())
		return err
	}
	if !applied {
		utils.LogInfo("Order %s already terminal (%s), webhook %s ignored", order.ID, order.PaymentStatus, status)
	}
	return nil
}
