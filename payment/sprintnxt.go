package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Aravind-528/StyleKart/utils"
)

// SprintNxt transaction status codes.
const (
	sprintNxtTxnSuccess     = 1
	sprintNxtTxnInitiated   = 2
	sprintNxtTxnQRGenerated = 3
	sprintNxtTxnQRExpired   = 4
	sprintNxtTxnFailed      = 5
	sprintNxtTxnPending     = 6
)

// SprintNxt API ids. The gateway multiplexes request kinds over one endpoint.
const (
	sprintNxtAPIValidateVPA  = "20243"
	sprintNxtAPIGetTxnStatus = "20247"
	sprintNxtAPIStaticQR     = "20249"
	sprintNxtAPIDynamicQR    = "20260"
)

// UAT sandbox merchant defaults. Synthetic test accounts replace a live
// merchant VPA outside production.
const (
	sprintNxtUATPayeeVPA = "sprintnxt.8080@jiomerchant"
	sprintNxtUATBankID   = 12
)

// SprintNxtConfig holds the UPI gateway credentials and environment.
type SprintNxtConfig struct {
	ClientID      string `envconfig:"SPRINTNXT_CLIENT_ID"`
	ClientSecret  string `envconfig:"SPRINTNXT_CLIENT_SECRET"`
	EncryptionKey string `envconfig:"SPRINTNXT_ENCRYPTION_KEY"`
	EncryptionIV  string `envconfig:"SPRINTNXT_ENCRYPTION_IV"`
	PartnerKey    string `envconfig:"SPRINTNXT_PARTNER_KEY"`
	Env           string `envconfig:"SPRINTNXT_ENV" default:"UAT"`
	PayeeVPA      string `envconfig:"SPRINTNXT_PAYEE_VPA"`
	BankID        int    `envconfig:"SPRINTNXT_BANK_ID"`
	APIBaseURL    string `envconfig:"SPRINTNXT_API_URL"`
	ReturnBaseURL string `envconfig:"PUBLIC_API_URL"`
}

// SprintNxtProvider generates dynamic UPI QR codes and deep links through the
// SprintNxt UPI service. Every request carries an encrypted auth token built
// with the shared AES codec; callbacks arrive encrypted with the same key.
type SprintNxtProvider struct {
	config  SprintNxtConfig
	baseURL string
	codec   *AESCodec
	client  *http.Client
}

func NewSprintNxtProvider(cfg SprintNxtConfig) *SprintNxtProvider {
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		if cfg.Env == "PROD" {
			baseURL = "https://api.sprintnxt.in/api/v2/UPIService/UPI"
		} else {
			baseURL = "https://nxt-nonprod.sprintnxt.in/NonProdNextgenAPIExpose/api/v2/UPIService/UPI"
		}
	}

	p := &SprintNxtProvider{
		config:  cfg,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	if codec, err := NewAESCodec(cfg.EncryptionKey, cfg.EncryptionIV); err == nil {
		p.codec = codec
	} else if cfg.EncryptionKey != "" || cfg.EncryptionIV != "" {
		utils.LogError("SprintNxt codec initialization failed: %v", err)
	}
	return p
}

func (p *SprintNxtProvider) Name() string {
	return "SprintNxt UPI"
}

// IsAvailable requires the full credential set. Production additionally needs
// a configured payee VPA and bank id; UAT substitutes sandbox defaults.
func (p *SprintNxtProvider) IsAvailable() bool {
	if p.config.ClientID == "" || p.config.ClientSecret == "" ||
		p.config.EncryptionKey == "" || p.config.EncryptionIV == "" ||
		p.config.PartnerKey == "" || p.codec == nil {
		return false
	}
	if p.config.Env == "PROD" {
		return p.config.PayeeVPA != "" && p.config.BankID != 0
	}
	return true
}

// Codec exposes the payload codec for webhook decryption.
func (p *SprintNxtProvider) Codec() *AESCodec {
	return p.codec
}

func (p *SprintNxtProvider) payeeVPA() string {
	if p.config.PayeeVPA != "" {
		return p.config.PayeeVPA
	}
	return sprintNxtUATPayeeVPA
}

func (p *SprintNxtProvider) bankID() int {
	if p.config.BankID != 0 {
		return p.config.BankID
	}
	return sprintNxtUATBankID
}

// generateAuthToken encrypts the per-request auth payload.
func (p *SprintNxtProvider) generateAuthToken() (string, error) {
	tokenPayload := map[string]string{
		"client_secret": p.config.ClientSecret,
		"partner_key":   p.config.PartnerKey,
		"requestid":     generateRequestID(),
		"timestamp":     strconv.FormatInt(time.Now().Unix(), 10),
	}
	raw, err := json.Marshal(tokenPayload)
	if err != nil {
		return "", err
	}
	return p.codec.Encrypt(string(raw))
}

func generateRequestID() string {
	return fmt.Sprintf("REQ%d%s", time.Now().UnixMilli(), strings.ToUpper(randomSuffix(3)))
}

// GenerateReferenceID mints the transaction reference used both as
// referenceid and txnReferance. Must stay under the gateway's 35-char cap.
func GenerateReferenceID() string {
	return fmt.Sprintf("TXN%d%s", time.Now().UnixMilli(), strings.ToUpper(randomSuffix(4)))
}

// sprintNxtResult is the canonical response shape after normalization. The
// raw gateway responses drift between three success markers and two nesting
// levels; everything past normalizeSprintNxtResponse sees only this struct.
type sprintNxtResult struct {
	OK      bool
	Message string
	Details map[string]interface{}
	Root    map[string]interface{}
}

// normalizeSprintNxtResponse folds the gateway's schema drift into one shape:
// success is any of boolean `status`, `responsecode` 1 or `returnCode` "0"/0,
// and payload fields may live under `details` or at the root.
func normalizeSprintNxtResponse(raw map[string]interface{}) sprintNxtResult {
	res := sprintNxtResult{Root: raw}

	if b, ok := raw["status"].(bool); ok && b {
		res.OK = true
	}
	if rc, ok := numericField(raw, "responsecode"); ok && rc == 1 {
		res.OK = true
	}
	switch v := raw["returnCode"].(type) {
	case string:
		if v == "0" {
			res.OK = true
		}
	case float64:
		if v == 0 {
			res.OK = true
		}
	}

	if details, ok := raw["details"].(map[string]interface{}); ok {
		res.Details = details
	} else {
		res.Details = raw
	}

	for _, key := range []string{"message", "responseMessage"} {
		if msg, ok := raw[key].(string); ok && msg != "" {
			res.Message = msg
			break
		}
	}
	return res
}

// field reads a key from details first, then the response root.
func (r sprintNxtResult) field(keys ...string) string {
	for _, key := range keys {
		if v, ok := r.Details[key].(string); ok && v != "" {
			return v
		}
	}
	for _, key := range keys {
		if v, ok := r.Root[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func numericField(m map[string]interface{}, key string) (int, bool) {
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
	}
	return 0, false
}

// rawTxnStatus pulls the transaction status, preferring details over root.
// The second return is false when the status is absent or unparseable.
func (r sprintNxtResult) rawTxnStatus() (int, bool) {
	for _, m := range []map[string]interface{}{r.Details, r.Root} {
		if n, ok := numericField(m, "txnStatus"); ok {
			return n, true
		}
		if n, ok := numericField(m, "status"); ok {
			return n, true
		}
	}
	return 0, false
}

func (p *SprintNxtProvider) makeRequest(ctx context.Context, payload map[string]interface{}) (sprintNxtResult, error) {
	authToken, err := p.generateAuthToken()
	if err != nil {
		return sprintNxtResult{}, fmt.Errorf("auth token generation failed: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return sprintNxtResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return sprintNxtResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Client-Id", base64.StdEncoding.EncodeToString([]byte(p.config.ClientID)))
	req.Header.Set("Token", authToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return sprintNxtResult{}, err
	}
	defer resp.Body.Close()

	responseText, err := io.ReadAll(resp.Body)
	if err != nil {
		return sprintNxtResult{}, err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(responseText, &raw); err != nil {
		utils.LogError("SprintNxt returned non-JSON response (HTTP %d): %.200s", resp.StatusCode, string(responseText))
		return sprintNxtResult{}, fmt.Errorf("server returned non-JSON response (HTTP %d)", resp.StatusCode)
	}

	return normalizeSprintNxtResponse(raw), nil
}

// CreatePayment generates a dynamic QR / UPI intent for the order amount.
// The reference id doubles as txnReferance so VerifyPayment can replay the
// same value as its txnId parameter.
func (p *SprintNxtProvider) CreatePayment(ctx context.Context, req PaymentRequest) PaymentResponse {
	if !p.IsAvailable() {
		return PaymentResponse{
			Success: false,
			Status:  StatusFailed,
			Error:   "SprintNxt is not configured",
		}
	}

	referenceID := GenerateReferenceID()
	payload := map[string]interface{}{
		"apiId":        sprintNxtAPIDynamicQR,
		"referenceid":  referenceID,
		"payeeVPA":     p.payeeVPA(),
		"amount":       strconv.FormatFloat(req.Amount, 'f', 2, 64),
		"remarks":      fmt.Sprintf("Order %s", req.OrderID),
		"mobile":       normalizeMobile(req.CustomerPhone),
		"email":        req.CustomerEmail,
		"bankId":       p.bankID(),
		"txnNote":      fmt.Sprintf("StyleKart order %s", req.OrderID),
		"txnReferance": referenceID,
	}

	res, err := p.makeRequest(ctx, payload)
	if err != nil {
		utils.LogError("SprintNxt payment creation failed for order %s: %v", req.OrderID, err)
		return PaymentResponse{
			Success: false,
			Status:  StatusFailed,
			Error:   err.Error(),
		}
	}

	if !res.OK {
		msg := res.Message
		if msg == "" {
			msg = "Failed to create payment"
		}
		utils.LogError("SprintNxt rejected QR generation for order %s: %s", req.OrderID, msg)
		return PaymentResponse{
			Success: false,
			Status:  StatusFailed,
			Error:   msg,
			Metadata: map[string]interface{}{
				"returnCode":      res.Root["returnCode"],
				"responseMessage": msg,
			},
		}
	}

	intentURL := res.field("intent_url", "intentUrl")
	qrString := res.field("qrString")
	upiString := res.field("upiString")
	if upiString == "" {
		upiString = intentURL
	}
	if qrString == "" {
		// The gateway sometimes returns only the intent URL; it encodes the
		// same UPI parameters, so it doubles as the QR payload.
		qrString = intentURL
	}

	transactionID := res.field("txnReferance", "UPIRefID", "transactionId", "txnId")
	message := res.Message
	if message == "" {
		message = "QR code generated successfully"
	}

	utils.LogInfo("SprintNxt QR generated for order %s, reference %s", req.OrderID, referenceID)
	return PaymentResponse{
		Success:       true,
		PaymentID:     referenceID,
		TransactionID: transactionID,
		Status:        StatusPending,
		PaymentURL:    firstNonEmpty(intentURL, qrString),
		Message:       message,
		Metadata: map[string]interface{}{
			"referenceId": referenceID,
			"qrString":    qrString,
			"intentUrl":   intentURL,
			"upiString":   upiString,
			"orderId":     req.OrderID,
			"payeeVPA":    res.field("payeeVPA"),
			"merchantId":  res.field("merchantId"),
		},
	}
}

// VerifyPayment runs a status check using the creation-time reference id as
// both referenceid and txnId. Transport errors yield pending with a retryable
// flag so the poll loop tries again instead of killing a live payment.
func (p *SprintNxtProvider) VerifyPayment(ctx context.Context, referenceID string, metadata map[string]interface{}) PaymentVerification {
	if !p.IsAvailable() {
		return PaymentVerification{
			PaymentID: referenceID,
			Status:    StatusPending,
			Metadata:  map[string]interface{}{"error": "SprintNxt is not configured", "retryable": true},
		}
	}

	payload := map[string]interface{}{
		"apiId":       sprintNxtAPIGetTxnStatus,
		"referenceid": referenceID,
		"bankId":      p.bankID(),
		"txnId":       referenceID,
	}

	res, err := p.makeRequest(ctx, payload)
	if err != nil {
		utils.LogError("SprintNxt verification failed for %s: %v", referenceID, err)
		return PaymentVerification{
			PaymentID: referenceID,
			Status:    StatusPending,
			Metadata: map[string]interface{}{
				"error":     err.Error(),
				"retryable": true,
			},
		}
	}

	rawStatus, ok := res.rawTxnStatus()
	var status PaymentStatus
	if !ok {
		utils.LogDebug("SprintNxt returned no status for %s, treating as pending", referenceID)
		status = StatusPending
	} else {
		status = MapSprintNxtStatus(rawStatus)
	}

	amount, _ := strconv.ParseFloat(res.field("amount"), 64)
	return PaymentVerification{
		Success:   ok && rawStatus == sprintNxtTxnSuccess,
		PaymentID: referenceID,
		Status:    status,
		Amount:    amount,
		Metadata: map[string]interface{}{
			"transactionId":   res.field("transactionId", "txnId"),
			"upiTxnId":        res.field("upiTxnId"),
			"payerVpa":        res.field("payerVpa"),
			"payeeVpa":        res.field("payeeVpa"),
			"txnStatus":       rawStatus,
			"responseMessage": res.Message,
		},
	}
}

// CallbackResult is the decoded webhook payload.
type CallbackResult struct {
	Success     bool
	ReferenceID string
	Status      PaymentStatus
	Data        map[string]interface{}
}

// ProcessCallback decrypts and maps an encrypted webhook payload. A failed
// decrypt is a hard error; the webhook must answer 400, never fall back to
// treating the payload as plaintext.
func (p *SprintNxtProvider) ProcessCallback(encryptedData string) (CallbackResult, error) {
	if p.codec == nil {
		return CallbackResult{}, fmt.Errorf("%w: codec not configured", ErrDecryptFailed)
	}

	decrypted, err := p.codec.Decrypt(encryptedData)
	if err != nil {
		return CallbackResult{}, err
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(decrypted), &data); err != nil {
		return CallbackResult{}, fmt.Errorf("%w: decrypted payload is not JSON: %v", ErrDecryptFailed, err)
	}

	res := sprintNxtResult{Details: data, Root: data}
	rawStatus, ok := res.rawTxnStatus()
	status := StatusPending
	if ok {
		status = MapSprintNxtStatus(rawStatus)
	}

	referenceID, _ := data["referenceid"].(string)
	if referenceID == "" {
		referenceID, _ = data["referenceId"].(string)
	}

	return CallbackResult{
		Success:     ok && rawStatus == sprintNxtTxnSuccess,
		ReferenceID: referenceID,
		Status:      status,
		Data:        data,
	}, nil
}

// VPAValidation is the result of a VPA lookup.
type VPAValidation struct {
	Valid             bool
	AccountHolderName string
	Error             string
}

// ValidateVPA checks a UPI id before a payment is attempted.
func (p *SprintNxtProvider) ValidateVPA(ctx context.Context, vpaAddress string) VPAValidation {
	if !p.IsAvailable() {
		return VPAValidation{Valid: false, Error: "SprintNxt is not configured"}
	}

	payload := map[string]interface{}{
		"apiid":       sprintNxtAPIValidateVPA,
		"vpaaddress":  vpaAddress,
		"referenceid": GenerateReferenceID(),
	}

	res, err := p.makeRequest(ctx, payload)
	if err != nil {
		utils.LogError("SprintNxt VPA validation failed for %s: %v", vpaAddress, err)
		return VPAValidation{Valid: false, Error: err.Error()}
	}

	if res.OK {
		return VPAValidation{
			Valid:             true,
			AccountHolderName: res.field("accountHolderName", "name"),
		}
	}
	msg := res.Message
	if msg == "" {
		msg = "Invalid VPA"
	}
	return VPAValidation{Valid: false, Error: msg}
}

// StaticQR is the result of static QR generation.
type StaticQR struct {
	Success  bool
	QRString string
	Error    string
}

// GenerateStaticQR creates a fixed QR for open-amount collections.
func (p *SprintNxtProvider) GenerateStaticQR(ctx context.Context, amount float64, remarks, name string) StaticQR {
	if !p.IsAvailable() {
		return StaticQR{Success: false, Error: "SprintNxt is not configured"}
	}

	amountStr := ""
	if amount > 0 {
		amountStr = strconv.FormatFloat(amount, 'f', 2, 64)
	}
	payload := map[string]interface{}{
		"apiid":       sprintNxtAPIStaticQR,
		"referenceid": GenerateReferenceID(),
		"amount":      amountStr,
		"remarks":     remarks,
		"name":        name,
	}

	res, err := p.makeRequest(ctx, payload)
	if err != nil {
		utils.LogError("SprintNxt static QR generation failed: %v", err)
		return StaticQR{Success: false, Error: err.Error()}
	}
	if !res.OK {
		msg := res.Message
		if msg == "" {
			msg = "Failed to generate QR"
		}
		return StaticQR{Success: false, Error: msg}
	}
	return StaticQR{Success: true, QRString: res.field("qrString")}
}

// MapSprintNxtStatus translates the gateway's numeric transaction status into
// the internal enum. Unknown codes map to pending so a transient shape issue
// never marks a live payment failed.
func MapSprintNxtStatus(txnStatus int) PaymentStatus {
	switch txnStatus {
	case sprintNxtTxnSuccess:
		return StatusSuccess
	case sprintNxtTxnInitiated, sprintNxtTxnQRGenerated, sprintNxtTxnPending:
		return StatusPending
	case sprintNxtTxnQRExpired:
		return StatusCancelled
	case sprintNxtTxnFailed:
		return StatusFailed
	default:
		return StatusPending
	}
}

// normalizeMobile keeps the last 10 digits of a phone number.
func normalizeMobile(phone string) string {
	var digits []rune
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return string(digits)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
