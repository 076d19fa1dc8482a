package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Aravind-528/StyleKart/utils"
)

// PollState is the client-side UPI payment session state.
type PollState string

const (
	PollStatePending PollState = "pending"
	PollStatePolling PollState = "polling"
	PollStateSuccess PollState = "success"
	PollStateFailed  PollState = "failed"
	PollStateExpired PollState = "expired"
)

// StatusFunc checks the current payment status of an order, typically by
// calling the verify endpoint.
type StatusFunc func(ctx context.Context, orderID string) (PaymentStatus, error)

// PollerConfig bounds the polling session. Whichever of MaxPolls and
// Countdown trips first forces the expired state.
type PollerConfig struct {
	InitialDelay time.Duration
	Interval     time.Duration
	Countdown    time.Duration
	MaxPolls     int
}

// DefaultPollerConfig mirrors the QR display defaults: first check after five
// seconds to give the user time to scan, then every five seconds, for at most
// sixty checks inside a five minute window.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		InitialDelay: 5 * time.Second,
		Interval:     5 * time.Second,
		Countdown:    5 * time.Minute,
		MaxPolls:     60,
	}
}

// Poller drives one UPI payment session through
// pending → polling → {success|failed|expired}. The whole timer set (initial
// delay, repeat interval, countdown) is owned by a single goroutine and torn
// down completely on every transition, so no orphaned timer can fire into a
// discarded session.
type Poller struct {
	orderID string
	cfg     PollerConfig
	check   StatusFunc
	onDone  func(PollState)

	mu     sync.Mutex
	state  PollState
	polls  int
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller builds a poller for one payment session. onDone fires exactly
// once with the terminal state; it may be nil.
func NewPoller(orderID string, cfg PollerConfig, check StatusFunc, onDone func(PollState)) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = 60
	}
	return &Poller{
		orderID: orderID,
		cfg:     cfg,
		check:   check,
		onDone:  onDone,
		state:   PollStatePending,
		done:    make(chan struct{}),
	}
}

// State returns the current session state.
func (p *Poller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Polls returns how many status checks have run.
func (p *Poller) Polls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.polls
}

// Done is closed when the session reaches a terminal state or is cancelled.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// Start arms the timer set. Re-entering an already started session is an
// error so duplicate timers are never armed.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.state != PollStatePending {
		p.mu.Unlock()
		return fmt.Errorf("polling already started (state %s)", p.state)
	}
	p.state = PollStatePolling
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	go p.run(ctx)
	return nil
}

// Cancel tears down all timers and discards the session. It never mutates
// server state; the order keeps whatever status the backend last recorded.
func (p *Poller) Cancel() {
	p.mu.Lock()
	if p.state == PollStatePending {
		// Never started; mark expired so Start cannot arm timers later.
		p.state = PollStateExpired
		p.mu.Unlock()
		close(p.done)
		return
	}
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (p *Poller) run(ctx context.Context) {
	deadline := time.NewTimer(p.cfg.Countdown)
	initial := time.NewTimer(p.cfg.InitialDelay)
	var ticker *time.Ticker

	defer func() {
		deadline.Stop()
		initial.Stop()
		if ticker != nil {
			ticker.Stop()
		}
	}()

	// Initial delayed check, giving the user time to scan the QR.
	select {
	case <-ctx.Done():
		p.teardown()
		return
	case <-deadline.C:
		p.finish(PollStateExpired)
		return
	case <-initial.C:
	}
	if done := p.checkOnce(ctx); done {
		return
	}

	ticker = time.NewTicker(p.cfg.Interval)
	for {
		select {
		case <-ctx.Done():
			p.teardown()
			return
		case <-deadline.C:
			utils.LogInfo("UPI payment session for order %s timed out", p.orderID)
			p.finish(PollStateExpired)
			return
		case <-ticker.C:
			if done := p.checkOnce(ctx); done {
				return
			}
		}
	}
}

// checkOnce runs one verify call and reports whether the session finished.
func (p *Poller) checkOnce(ctx context.Context) bool {
	p.mu.Lock()
	p.polls++
	exhausted := p.polls > p.cfg.MaxPolls
	p.mu.Unlock()

	if exhausted {
		utils.LogInfo("UPI payment session for order %s exhausted poll budget", p.orderID)
		p.finish(PollStateExpired)
		return true
	}

	status, err := p.check(ctx, p.orderID)
	if err != nil {
		// Transport errors are retried on the next tick.
		utils.LogDebug("Payment status check for order %s failed, will retry: %v", p.orderID, err)
		return false
	}

	switch status {
	case StatusSuccess:
		p.finish(PollStateSuccess)
		return true
	case StatusFailed:
		p.finish(PollStateFailed)
		return true
	case StatusCancelled:
		p.finish(PollStateExpired)
		return true
	default:
		return false
	}
}

// teardown ends a cancelled session without firing onDone. Cancellation is a
// user action, not a payment outcome.
func (p *Poller) teardown() {
	p.mu.Lock()
	if p.state != PollStatePolling {
		p.mu.Unlock()
		return
	}
	p.state = PollStateExpired
	p.mu.Unlock()
	close(p.done)
}

func (p *Poller) finish(state PollState) {
	p.mu.Lock()
	if p.state != PollStatePolling {
		p.mu.Unlock()
		return
	}
	p.state = state
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if p.onDone != nil {
		p.onDone(state)
	}
	close(p.done)
}

// VerifyClient calls the verify endpoint over HTTP. It feeds a Poller's
// StatusFunc in clients of the storefront API.
type VerifyClient struct {
	BaseURL string
	Client  *http.Client
}

func NewVerifyClient(baseURL string) *VerifyClient {
	return &VerifyClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// PaymentStatus posts {order_id} to the verify endpoint and returns the
// reported payment status.
func (c *VerifyClient) PaymentStatus(ctx context.Context, orderID string) (PaymentStatus, error) {
	body, err := json.Marshal(map[string]string{"order_id": orderID})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/payment/verify", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("verify endpoint returned HTTP %d", resp.StatusCode)
	}

	var envelope struct {
		Data struct {
			PaymentStatus PaymentStatus `json:"payment_status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", err
	}
	if envelope.Data.PaymentStatus == "" {
		return "", errors.New("verify response missing payment_status")
	}
	return envelope.Data.PaymentStatus, nil
}
