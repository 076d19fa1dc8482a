package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPollerConfig() PollerConfig {
	return PollerConfig{
		InitialDelay: time.Millisecond,
		Interval:     time.Millisecond,
		Countdown:    time.Second,
		MaxPolls:     60,
	}
}

func waitForPoller(t *testing.T, p *Poller) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not finish in time")
	}
}

func TestPollerSuccess(t *testing.T) {
	var calls int32
	check := func(ctx context.Context, orderID string) (PaymentStatus, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return StatusPending, nil
		}
		return StatusSuccess, nil
	}

	var final PollState
	p := NewPoller("order-1", fastPollerConfig(), check, func(s PollState) { final = s })
	require.Equal(t, PollStatePending, p.State())

	require.NoError(t, p.Start(context.Background()))
	assert.Equal(t, PollStatePolling, p.State())
	waitForPoller(t, p)

	assert.Equal(t, PollStateSuccess, p.State())
	assert.Equal(t, PollStateSuccess, final)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPollerFailedPayment(t *testing.T) {
	check := func(ctx context.Context, orderID string) (PaymentStatus, error) {
		return StatusFailed, nil
	}

	p := NewPoller("order-1", fastPollerConfig(), check, nil)
	require.NoError(t, p.Start(context.Background()))
	waitForPoller(t, p)

	assert.Equal(t, PollStateFailed, p.State())
	assert.Equal(t, 1, p.Polls())
}

func TestPollerCancelledPaymentExpires(t *testing.T) {
	// A gateway-side QR expiry surfaces as cancelled and ends the session as
	// expired.
	check := func(ctx context.Context, orderID string) (PaymentStatus, error) {
		return StatusCancelled, nil
	}

	p := NewPoller("order-1", fastPollerConfig(), check, nil)
	require.NoError(t, p.Start(context.Background()))
	waitForPoller(t, p)

	assert.Equal(t, PollStateExpired, p.State())
}

func TestPollerExhaustsPollBudget(t *testing.T) {
	cfg := fastPollerConfig()
	cfg.MaxPolls = 5

	check := func(ctx context.Context, orderID string) (PaymentStatus, error) {
		return StatusPending, nil
	}

	var final PollState
	p := NewPoller("order-1", cfg, check, func(s PollState) { final = s })
	require.NoError(t, p.Start(context.Background()))
	waitForPoller(t, p)

	assert.Equal(t, PollStateExpired, p.State())
	assert.Equal(t, PollStateExpired, final)
}

func TestPollerCountdownExpiry(t *testing.T) {
	cfg := PollerConfig{
		InitialDelay: time.Millisecond,
		Interval:     time.Millisecond,
		Countdown:    50 * time.Millisecond,
		MaxPolls:     100000,
	}
	check := func(ctx context.Context, orderID string) (PaymentStatus, error) {
		return StatusPending, nil
	}

	p := NewPoller("order-1", cfg, check, nil)
	require.NoError(t, p.Start(context.Background()))
	waitForPoller(t, p)

	assert.Equal(t, PollStateExpired, p.State())
}

func TestPollerRetriesTransportErrors(t *testing.T) {
	var calls int32
	check := func(ctx context.Context, orderID string) (PaymentStatus, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return "", errors.New("connection refused")
		}
		return StatusSuccess, nil
	}

	p := NewPoller("order-1", fastPollerConfig(), check, nil)
	require.NoError(t, p.Start(context.Background()))
	waitForPoller(t, p)

	assert.Equal(t, PollStateSuccess, p.State())
}

func TestPollerStartIsNotReentrant(t *testing.T) {
	block := make(chan struct{})
	check := func(ctx context.Context, orderID string) (PaymentStatus, error) {
		<-block
		return StatusSuccess, nil
	}

	p := NewPoller("order-1", fastPollerConfig(), check, nil)
	require.NoError(t, p.Start(context.Background()))
	assert.Error(t, p.Start(context.Background()))

	close(block)
	waitForPoller(t, p)
	assert.Error(t, p.Start(context.Background()))
}

func TestPollerCancelIsSilent(t *testing.T) {
	check := func(ctx context.Context, orderID string) (PaymentStatus, error) {
		return StatusPending, nil
	}

	var fired int32
	p := NewPoller("order-1", fastPollerConfig(), check, func(PollState) {
		atomic.AddInt32(&fired, 1)
	})
	require.NoError(t, p.Start(context.Background()))

	time.Sleep(10 * time.Millisecond)
	p.Cancel()
	waitForPoller(t, p)

	assert.Equal(t, PollStateExpired, p.State())
	// Cancellation discards the session without reporting an outcome.
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

func TestPollerCancelBeforeStart(t *testing.T) {
	p := NewPoller("order-1", fastPollerConfig(), nil, nil)
	p.Cancel()

	assert.Equal(t, PollStateExpired, p.State())
	assert.Error(t, p.Start(context.Background()))
}

func TestVerifyClientParsesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment/verify", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"ok","data":{"payment_status":"success"}}`))
	}))
	defer server.Close()

	client := NewVerifyClient(server.URL)
	status, err := client.PaymentStatus(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, status)
}

func TestVerifyClientRejectsNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false}`))
	}))
	defer server.Close()

	client := NewVerifyClient(server.URL)
	_, err := client.PaymentStatus(context.Background(), "missing")
	assert.Error(t, err)
}
