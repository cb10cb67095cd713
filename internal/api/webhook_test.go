package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/fin-sync/payments-backend/internal/db"
	"github.com/fin-sync/payments-backend/internal/dedupcache"
	"github.com/fin-sync/payments-backend/internal/queue"
)

const testWebhookSecret = "whsec_test_secret"

// stubQuerier implements just enough of db.Querier to exercise the
// payment-trigger path without a live database — the same narrow-stub style
// as the teacher's internal/api/handlers_test.go.
type stubQuerier struct {
	db.Querier

	accept   bool
	jobErr   error
	enqueued []db.EnqueueJobParams
}

func (s *stubQuerier) EnqueueJob(ctx context.Context, arg db.EnqueueJobParams) (bool, error) {
	if s.jobErr != nil {
		return false, s.jobErr
	}
	s.enqueued = append(s.enqueued, arg)
	return s.accept, nil
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(stub *stubQuerier) *Server {
	return &Server{
		queue:  queue.New(stub),
		cfg:    Config{StripeWebhookSecret: testWebhookSecret},
		logger: silentLogger(),
	}
}

// signPayload reproduces Stripe's documented signing scheme (HMAC-SHA256 over
// "<timestamp>.<payload>") so tests can exercise ConstructEvent without
// hitting the network. ConstructEvent rejects timestamps older than its
// tolerance, so callers sign with the current time.
func signPayload(secret string, payload []byte, timestamp int64) string {
	signedPayload := fmt.Sprintf("%d.%s", timestamp, payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	sig := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, sig)
}

func paymentIntentPayload(eventID, piID string, created int64) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"api_version": %q,
		"type": "payment_intent.succeeded",
		"created": %d,
		"data": {"object": {"object": "payment_intent", "id": %q, "amount": 1000, "currency": "usd", "status": "succeeded"}}
	}`, eventID, stripe.APIVersion, created, piID))
}

func chargePayload(eventID, chargeID string, created int64) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"api_version": %q,
		"type": "charge.succeeded",
		"created": %d,
		"data": {"object": {"object": "charge", "id": %q}}
	}`, eventID, stripe.APIVersion, created, chargeID))
}

func doWebhook(t *testing.T, s *Server, payload []byte, sig string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", sig)
	rec := httptest.NewRecorder()
	s.handleWebhook(rec, req)
	return rec
}

func TestHandleWebhookInvalidSignatureReturns400(t *testing.T) {
	s := newTestServer(&stubQuerier{accept: true})
	payload := paymentIntentPayload("evt_1", "pi_1", 1000)

	rec := doWebhook(t, s, payload, "t=1000,v1=deadbeef")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "webhook_error")
}

func TestHandleWebhookPaymentTriggerAccepted(t *testing.T) {
	stub := &stubQuerier{accept: true}
	s := newTestServer(stub)
	payload := paymentIntentPayload("evt_1", "pi_1", 1000)
	sig := signPayload(testWebhookSecret, payload, time.Now().Unix())

	rec := doWebhook(t, s, payload, sig)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"accepted"}`, rec.Body.String())
	require.Len(t, stub.enqueued, 1)
	require.Equal(t, "pi_1", stub.enqueued[0].ObjectID)
}

func TestHandleWebhookPaymentTriggerDuplicate(t *testing.T) {
	stub := &stubQuerier{accept: false}
	s := newTestServer(stub)
	payload := paymentIntentPayload("evt_1", "pi_1", 1000)
	sig := signPayload(testWebhookSecret, payload, time.Now().Unix())

	rec := doWebhook(t, s, payload, sig)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"duplicate"}`, rec.Body.String())
}

func TestHandleWebhookIgnoresInvalidExternalId(t *testing.T) {
	stub := &stubQuerier{accept: true}
	s := newTestServer(stub)
	payload := paymentIntentPayload("evt_1", "not_a_valid_id", 1000)
	sig := signPayload(testWebhookSecret, payload, time.Now().Unix())

	rec := doWebhook(t, s, payload, sig)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ignored_invalid_data"}`, rec.Body.String())
	require.Empty(t, stub.enqueued)
}

func TestHandleWebhookIgnoresInvalidEventId(t *testing.T) {
	stub := &stubQuerier{accept: true}
	s := newTestServer(stub)
	payload := paymentIntentPayload("not_an_event_id", "pi_1", 1000)
	sig := signPayload(testWebhookSecret, payload, time.Now().Unix())

	rec := doWebhook(t, s, payload, sig)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ignored_invalid_data"}`, rec.Body.String())
}

func TestHandleWebhookEnqueueErrorReturns500(t *testing.T) {
	stub := &stubQuerier{jobErr: fmt.Errorf("connection reset")}
	s := newTestServer(stub)
	payload := paymentIntentPayload("evt_1", "pi_1", 1000)
	sig := signPayload(testWebhookSecret, payload, time.Now().Unix())

	rec := doWebhook(t, s, payload, sig)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "internal_error")
	require.NotContains(t, rec.Body.String(), "connection reset")
}

func TestHandleWebhookDedupCacheShortCircuitsDuplicate(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cache := dedupcache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	stub := &stubQuerier{accept: true}
	s := newTestServer(stub)
	s.cache = cache

	_, err = cache.MarkSeen(context.Background(), "evt_1")
	require.NoError(t, err)

	payload := paymentIntentPayload("evt_1", "pi_1", 1000)
	sig := signPayload(testWebhookSecret, payload, time.Now().Unix())

	rec := doWebhook(t, s, payload, sig)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"duplicate"}`, rec.Body.String())
	require.Empty(t, stub.enqueued, "dedup cache should short-circuit before the job queue is touched")
}

