package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fin-sync/payments-backend/internal/db"
	"github.com/fin-sync/payments-backend/internal/domain"
	"github.com/fin-sync/payments-backend/internal/store"
)

// lockTimeout bounds how long a pipeline transaction waits on the per-object
// advisory lock before giving up; waiters that time out surface as a
// Database error the worker retries with backoff (spec.md §5).
const lockTimeout = 5 * time.Second

// Process runs one pipeline transaction end to end (spec.md §4.5): set the
// lock timeout, acquire the per-object advisory lock, dedup on event_id,
// read current state, apply the decision, write, audit, and commit.
//
// actor identifies the caller for the audit trail, e.g. "webhook:stripe" or
// "worker:stripe".
func Process(ctx context.Context, st *store.Store, in IncomingPayment, actor string) (Outcome, error) {
	var outcome Outcome

	err := st.WithTx(ctx, func(ctx context.Context, q db.Querier) error {
		if err := q.SetLockTimeout(ctx, lockTimeout); err != nil {
			return domain.Databasef(err, "set lock timeout")
		}
		if err := q.AdvisoryLock(ctx, in.ExternalID.String()); err != nil {
			return domain.Databasef(err, "acquire advisory lock for %s", in.ExternalID)
		}

		isNew, err := store.RecordEventIfNew(ctx, q, store.RecordEventParams{
			EventID:    in.EventID,
			ObjectID:   in.ExternalID.String(),
			EventType:  in.EventType,
			ProviderTS: in.ProviderTS,
			Payload:    orEmptyObject(in.RawEvent),
		})
		if err != nil {
			return err
		}
		if !isNew {
			outcome = Outcome{Kind: Duplicate}
			return nil
		}

		existing, err := store.GetExisting(ctx, q, in.ExternalID)
		if err != nil {
			return err
		}

		if existing == nil {
			id, err := processCreate(ctx, q, in, actor)
			if err != nil {
				return err
			}
			outcome = Outcome{Kind: Created, ID: id}
			return nil
		}

		kind, err := processExisting(ctx, q, *existing, in, actor)
		if err != nil {
			return err
		}
		outcome = Outcome{Kind: kind, ID: existing.ID}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return outcome, nil
}

func processCreate(ctx context.Context, q db.Querier, in IncomingPayment, actor string) (uuid.UUID, error) {
	row, err := store.CreatePayment(ctx, q, store.CreatePaymentParams{
		ExternalID:       in.ExternalID,
		Source:           in.Source,
		EventType:        in.EventType,
		Direction:        in.Direction,
		Amount:           in.Money.Amount,
		Currency:         in.Money.Currency,
		Status:           in.Status,
		Metadata:         orEmptyObject(in.Metadata),
		RawEvent:         orEmptyObject(in.RawEvent),
		LastEventID:      in.EventID,
		LastProviderTS:   in.ProviderTS,
		ParentExternalID: in.ParentExternalID,
	})
	if err != nil {
		return uuid.Nil, err
	}

	extID := in.ExternalID.String()
	entry := domain.NewAuditEntry(&row.ID, &extID, in.EventID.String(), domain.ActionCreated, actor, nil)
	if _, err := store.AppendAudit(ctx, q, entry); err != nil {
		return uuid.Nil, err
	}
	return row.ID, nil
}

func processExisting(ctx context.Context, q db.Querier, existing db.ExistingPayment, in IncomingPayment, actor string) (OutcomeKind, error) {
	currentStatus, err := domain.ParsePaymentStatus(existing.Status)
	if err != nil {
		return 0, domain.Databasef(err, "existing payment %s has invalid status", existing.ID)
	}

	action := Decide(
		Existing{Status: currentStatus, LastProviderTS: existing.LastProviderTS},
		Incoming{Status: in.Status, ProviderTS: in.ProviderTS},
	)

	extID := in.ExternalID.String()

	switch action {
	case ActionSameStatus:
		if err := store.TouchEventWithTS(ctx, q, existing.ID, in.EventID, in.ProviderTS); err != nil {
			return 0, err
		}
		return Stale, nil

	case ActionTemporalStale:
		if err := store.TouchStale(ctx, q, existing.ID, in.EventID); err != nil {
			return 0, err
		}
		entry := domain.NewAuditEntry(&existing.ID, &extID, in.EventID.String(), domain.ActionEventReceived, actor,
			staleDetail(currentStatus, in.Status))
		if _, err := store.AppendAudit(ctx, q, entry); err != nil {
			return 0, err
		}
		return Stale, nil

	case ActionAnomaly:
		if err := store.TouchEventWithTS(ctx, q, existing.ID, in.EventID, in.ProviderTS); err != nil {
			return 0, err
		}
		entry := domain.NewAuditEntry(&existing.ID, &extID, in.EventID.String(), domain.ActionEventReceived, actor,
			anomalyDetail(currentStatus, in.Status))
		if _, err := store.AppendAudit(ctx, q, entry); err != nil {
			return 0, err
		}
		return Anomaly, nil

	case ActionAdvance:
		if _, err := store.AdvancePayment(ctx, q, store.AdvancePaymentParams{
			ID:             existing.ID,
			Status:         in.Status,
			LastEventID:    in.EventID,
			LastProviderTS: in.ProviderTS,
			RawEvent:       orEmptyObject(in.RawEvent),
		}); err != nil {
			return 0, err
		}
		entry := domain.NewAuditEntry(&existing.ID, &extID, in.EventID.String(), domain.ActionStatusChanged, actor,
			statusChangedDetail(currentStatus, in.Status))
		if _, err := store.AppendAudit(ctx, q, entry); err != nil {
			return 0, err
		}
		return Updated, nil

	default:
		return 0, fmt.Errorf("pipeline: unreachable decision action %v", action)
	}
}

func orEmptyObject(b []byte) []byte {
	if len(b) == 0 {
		return []byte("{}")
	}
	return b
}
