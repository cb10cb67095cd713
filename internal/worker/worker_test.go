package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fin-sync/payments-backend/internal/db"
	"github.com/fin-sync/payments-backend/internal/domain"
	"github.com/fin-sync/payments-backend/internal/provider"
	"github.com/fin-sync/payments-backend/internal/queue"
)

// stubQuerier records which of CompleteJob/FailJob was called, enough to
// verify worker dispatch without a live database — the same narrow-stub
// style as the teacher's internal/api/handlers_test.go.
type stubQuerier struct {
	db.Querier

	completed []uuid.UUID
	failed    []uuid.UUID
}

func (s *stubQuerier) CompleteJob(ctx context.Context, id uuid.UUID) error {
	s.completed = append(s.completed, id)
	return nil
}

func (s *stubQuerier) FailJob(ctx context.Context, arg db.FailJobParams) error {
	s.failed = append(s.failed, arg.ID)
	return nil
}

type stubProvider struct {
	err error
}

func (p *stubProvider) FetchPayment(ctx context.Context, id domain.ExternalId) (provider.FetchedPayment, error) {
	return provider.FetchedPayment{}, p.err
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessJobDiscardsInvalidEventID(t *testing.T) {
	stub := &stubQuerier{}
	r := NewRunner(queue.New(stub), nil, &stubProvider{}, DefaultConfig(), silentLogger(), nil)

	job := domain.Job{ID: uuid.New(), EventID: "not-an-event-id", ObjectID: "pi_1"}
	r.processJob(context.Background(), job, silentLogger())

	require.Len(t, stub.completed, 1)
	require.Empty(t, stub.failed)
}

func TestProcessJobDiscardsInvalidObjectID(t *testing.T) {
	stub := &stubQuerier{}
	r := NewRunner(queue.New(stub), nil, &stubProvider{}, DefaultConfig(), silentLogger(), nil)

	job := domain.Job{ID: uuid.New(), EventID: "evt_1", ObjectID: "not-an-object-id"}
	r.processJob(context.Background(), job, silentLogger())

	require.Len(t, stub.completed, 1)
	require.Empty(t, stub.failed)
}

func TestProcessJobRetriesOnProviderError(t *testing.T) {
	stub := &stubQuerier{}
	r := NewRunner(queue.New(stub), nil, &stubProvider{err: errors.New("upstream timeout")}, DefaultConfig(), silentLogger(), nil)

	job := domain.Job{ID: uuid.New(), EventID: "evt_1", ObjectID: "pi_1"}
	r.processJob(context.Background(), job, silentLogger())

	require.Empty(t, stub.completed)
	require.Len(t, stub.failed, 1)
}

func TestProcessJobDiscardsOnProviderValidationError(t *testing.T) {
	stub := &stubQuerier{}
	provErr := domain.Validationf("unrecognized id")
	r := NewRunner(queue.New(stub), nil, &stubProvider{err: provErr}, DefaultConfig(), silentLogger(), nil)

	job := domain.Job{ID: uuid.New(), EventID: "evt_1", ObjectID: "pi_1"}
	r.processJob(context.Background(), job, silentLogger())

	require.Len(t, stub.completed, 1)
	require.Empty(t, stub.failed)
}
