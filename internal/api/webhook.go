package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/fin-sync/payments-backend/internal/db"
	"github.com/fin-sync/payments-backend/internal/domain"
	"github.com/fin-sync/payments-backend/internal/queue"
	"github.com/fin-sync/payments-backend/internal/store"
)

// maxWebhookBodyBytes caps the request body per spec.md §6.
const maxWebhookBodyBytes = 64 * 1024

// envelopeObject is the part of the provider's inner object this handler
// needs to classify the event (spec.md §4.1): its type discriminator and id.
type envelopeObject struct {
	Object string `json:"object"`
	ID     string `json:"id"`
}

// handleWebhook is the single entry point for all provider webhook
// deliveries (spec.md §4.1). It never blocks on pipeline processing: a
// payment-trigger event is enqueued for the worker pool, a passthrough
// event is recorded directly in one short transaction.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondWebhookErr(w, r, http.StatusBadRequest, "webhook_error", "could not read request body", err)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), s.cfg.StripeWebhookSecret)
	if err != nil {
		s.incWebhook("webhook_error")
		s.respondWebhookErr(w, r, http.StatusBadRequest, "webhook_error", "invalid webhook signature", err)
		return
	}

	if s.cache.SeenRecently(r.Context(), event.ID) {
		s.incWebhook("duplicate")
		respondStatus(w, "duplicate")
		return
	}

	var obj envelopeObject
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		s.incWebhook("internal_error")
		s.respondWebhookErr(w, r, http.StatusInternalServerError, "internal_error", "internal error", err)
		return
	}

	log := s.logger.With("event_id", event.ID, "event_type", string(event.Type), logField(r))

	switch obj.Object {
	case "payment_intent", "refund":
		s.handlePaymentTrigger(w, r, event, obj.ID, log)
	default:
		s.handlePassthrough(w, r, event, obj.ID, log)
	}
}

func (s *Server) handlePaymentTrigger(w http.ResponseWriter, r *http.Request, event stripe.Event, objectID string, log *slog.Logger) {
	extID, err := domain.NewExternalId(objectID)
	if err != nil {
		log.Warn("webhook: invalid external id, ignoring", "object_id", objectID, "error", err)
		s.incWebhook("ignored_invalid_data")
		respondStatus(w, "ignored_invalid_data")
		return
	}
	eventID, err := domain.NewEventId(event.ID)
	if err != nil {
		log.Warn("webhook: invalid event id, ignoring", "error", err)
		s.incWebhook("ignored_invalid_data")
		respondStatus(w, "ignored_invalid_data")
		return
	}

	accepted, err := s.queue.Enqueue(r.Context(), queue.EnqueueParams{
		EventID:    eventID,
		ObjectID:   extID,
		EventType:  string(event.Type),
		ProviderTS: event.Created,
		RawEvent:   event.Data.Raw,
	})
	if err != nil {
		s.incWebhook("internal_error")
		s.respondWebhookErr(w, r, http.StatusInternalServerError, "internal_error", "internal error", err)
		return
	}

	if !accepted {
		s.incWebhook("duplicate")
		respondStatus(w, "duplicate")
		return
	}
	_, _ = s.cache.MarkSeen(r.Context(), event.ID)
	s.incWebhook("accepted")
	respondStatus(w, "accepted")
}

// handlePassthrough records a charge (or any non-trigger) event directly,
// in one short transaction: the event log row plus an audit entry, optionally
// linked to a payment if objectID happens to resolve to one (spec.md §4.1).
func (s *Server) handlePassthrough(w http.ResponseWriter, r *http.Request, event stripe.Event, objectID string, log *slog.Logger) {
	eventID, err := domain.NewEventId(event.ID)
	if err != nil {
		log.Warn("webhook: invalid event id, ignoring", "error", err)
		s.incWebhook("ignored_invalid_data")
		respondStatus(w, "ignored_invalid_data")
		return
	}

	var linkedExternalID *string
	if extID, err := domain.NewExternalId(objectID); err == nil {
		id := extID.String()
		linkedExternalID = &id
	}

	isNew := false
	txErr := s.store.WithTx(r.Context(), func(ctx context.Context, q db.Querier) error {
		n, err := store.RecordEventIfNew(ctx, q, store.RecordEventParams{
			EventID:    eventID,
			ObjectID:   objectID,
			EventType:  string(event.Type),
			ProviderTS: event.Created,
			Payload:    event.Data.Raw,
		})
		if err != nil {
			return err
		}
		isNew = n
		if !n {
			return nil
		}

		var entityID *uuid.UUID
		if linkedExternalID != nil {
			extID, _ := domain.NewExternalId(*linkedExternalID)
			existing, err := store.GetExisting(ctx, q, extID)
			if err != nil {
				return err
			}
			if existing != nil {
				id := existing.ID
				entityID = &id
			}
		}

		entry := domain.NewAuditEntry(entityID, linkedExternalID, eventID.String(), domain.ActionEventReceived, "webhook:stripe", passthroughDetail(string(event.Type)))
		_, err = store.AppendAudit(ctx, q, entry)
		return err
	})
	if txErr != nil {
		s.incWebhook("internal_error")
		s.respondWebhookErr(w, r, http.StatusInternalServerError, "internal_error", "internal error", txErr)
		return
	}

	if !isNew {
		s.incWebhook("duplicate")
		respondStatus(w, "duplicate")
		return
	}
	_, _ = s.cache.MarkSeen(r.Context(), event.ID)
	s.incWebhook("logged")
	respondStatus(w, "logged")
}

func passthroughDetail(eventType string) []byte {
	b, _ := json.Marshal(map[string]string{"event_type": eventType})
	return b
}

func (s *Server) incWebhook(status string) {
	if s.metrics == nil {
		return
	}
	s.metrics.WebhookRequests.WithLabelValues(status).Inc()
}
