package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chainmeet/backend/internal/chain"
	"chainmeet/backend/internal/identity"
	"chainmeet/backend/internal/meetup"
	"chainmeet/backend/internal/metrics"
)

// DefaultSettleDelay models the interval between transaction finalization
// and contract state becoming queryable. Tunable, not architectural.
const DefaultSettleDelay = 2 * time.Second

var (
	ErrActionInFlight = errors.New("an identical action is already in flight")
	ErrNotFound       = errors.New("meetup not found")
	ErrNotEligible    = errors.New("viewer is not eligible for this action")
	ErrNotHost        = errors.New("viewer is not the host of this meetup")
	ErrPriceUnknown   = errors.New("meetup price could not be decoded")
)

// Config tunes the service. Sleep is injectable so tests exercise the
// settle-delay policy without real timers.
type Config struct {
	SettleDelay time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
}

// Service owns the in-memory meetup snapshot and forwards mutations to the
// contract. The snapshot is always replaced wholesale after a re-fetch,
// never patched in place, and nothing is changed optimistically before a
// contract call resolves.
type Service struct {
	chain       chain.Client
	decoder     *meetup.Decoder
	logger      *slog.Logger
	settleDelay time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	guard       *actionGuard

	mu        sync.RWMutex
	records   []meetup.Record
	fetchedAt time.Time
}

// New creates the service.
func New(client chain.Client, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	delay := cfg.SettleDelay
	if delay <= 0 {
		delay = DefaultSettleDelay
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return &Service{
		chain:       client,
		decoder:     meetup.NewDecoder(logger),
		logger:      logger,
		settleDelay: delay,
		sleep:       sleep,
		guard:       newActionGuard(),
	}
}

// Refresh re-queries the full collection and replaces the snapshot. On a
// query failure the snapshot is reset to empty rather than left stale, and
// the error is returned for the caller to surface once.
func (s *Service) Refresh(ctx context.Context, trigger string) error {
	res, err := s.chain.Query(ctx, chain.EndpointGetAllMeetups, nil)
	if err != nil {
		s.resetSnapshot(trigger)
		metrics.ChainQueries.WithLabelValues(chain.EndpointGetAllMeetups, "error").Inc()
		return fmt.Errorf("query %s: %w", chain.EndpointGetAllMeetups, err)
	}
	if res.IsError {
		s.resetSnapshot(trigger)
		metrics.ChainQueries.WithLabelValues(chain.EndpointGetAllMeetups, "contract_error").Inc()
		return &chain.QueryError{Endpoint: chain.EndpointGetAllMeetups, Detail: res.ErrorDetail}
	}
	metrics.ChainQueries.WithLabelValues(chain.EndpointGetAllMeetups, "ok").Inc()

	records := s.decoder.DecodeAll(res.Output)
	s.mu.Lock()
	s.records = records
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	metrics.SnapshotRefreshes.WithLabelValues(trigger, "ok").Inc()
	metrics.SnapshotRecords.Set(float64(len(records)))
	s.logger.Info("snapshot_refreshed", "trigger", trigger, "records", len(records))
	return nil
}

func (s *Service) resetSnapshot(trigger string) {
	s.mu.Lock()
	s.records = []meetup.Record{}
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
	metrics.SnapshotRefreshes.WithLabelValues(trigger, "error").Inc()
	metrics.SnapshotRecords.Set(0)
}

// Snapshot returns a copy of the current collection and its fetch time.
func (s *Service) Snapshot() ([]meetup.Record, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]meetup.Record, len(s.records))
	copy(out, s.records)
	return out, s.fetchedAt
}

// Get returns one record from the snapshot.
func (s *Service) Get(id int64) (meetup.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return meetup.Record{}, false
}

// Fetch queries one record directly from the contract, bypassing the
// snapshot. Detail views use it when asked for an id the snapshot has not
// picked up yet.
func (s *Service) Fetch(ctx context.Context, id int64) (meetup.Record, error) {
	res, err := s.chain.Query(ctx, chain.EndpointGetMeetup, []any{id})
	if err != nil {
		metrics.ChainQueries.WithLabelValues(chain.EndpointGetMeetup, "error").Inc()
		return meetup.Record{}, fmt.Errorf("query %s: %w", chain.EndpointGetMeetup, err)
	}
	if res.IsError {
		metrics.ChainQueries.WithLabelValues(chain.EndpointGetMeetup, "contract_error").Inc()
		return meetup.Record{}, &chain.QueryError{Endpoint: chain.EndpointGetMeetup, Detail: res.ErrorDetail}
	}
	metrics.ChainQueries.WithLabelValues(chain.EndpointGetMeetup, "ok").Inc()
	rec, ok := s.decoder.DecodeOne(res.Output)
	if !ok {
		return meetup.Record{}, ErrNotFound
	}
	return rec, nil
}

// CreateDraft is the host-provided shape of a new meetup.
type CreateDraft struct {
	Title        string
	Description  string
	LocationKind meetup.LocationKind
	Location     string
	TimeZone     string
	StartTime    int64
	PriceMinor   int64
	Capacity     int
}

// Create submits a create_meetup call for the host.
func (s *Service) Create(ctx context.Context, draft CreateDraft, host identity.Identity) error {
	args := []any{
		draft.Title,
		draft.Description,
		string(draft.LocationKind),
		draft.Location,
		draft.TimeZone,
		draft.StartTime,
		draft.PriceMinor,
		draft.Capacity,
	}
	key := "create:" + host.Hex()
	return s.executeAndSettle(ctx, key, chain.EndpointCreateMeetup, args, 0)
}

// Register submits a paid registration. The meetup's price is attached as
// the transferred value; an undecodable price refuses the action instead
// of guessing an amount.
func (s *Service) Register(ctx context.Context, id int64, viewer identity.Identity) error {
	rec, ok := s.Get(id)
	if !ok {
		return ErrNotFound
	}
	if !meetup.CanRegister(rec, viewer) {
		return ErrNotEligible
	}
	if rec.PriceMinor == nil {
		return ErrPriceUnknown
	}
	key := fmt.Sprintf("register:%d:%s", id, viewer.Hex())
	return s.executeAndSettle(ctx, key, chain.EndpointRegisterForMeetup, []any{id}, *rec.PriceMinor)
}

// Unregister cancels the viewer's registration.
func (s *Service) Unregister(ctx context.Context, id int64, viewer identity.Identity) error {
	rec, ok := s.Get(id)
	if !ok {
		return ErrNotFound
	}
	if !meetup.IsAttending(rec, viewer) {
		return ErrNotEligible
	}
	key := fmt.Sprintf("unregister:%d:%s", id, viewer.Hex())
	return s.executeAndSettle(ctx, key, chain.EndpointCancelRegistration, []any{id}, 0)
}

// CancelMeetup cancels a meetup on behalf of its host.
func (s *Service) CancelMeetup(ctx context.Context, id int64, viewer identity.Identity) error {
	rec, ok := s.Get(id)
	if !ok {
		return ErrNotFound
	}
	if !rec.Host.Equal(viewer) {
		return ErrNotHost
	}
	key := fmt.Sprintf("cancel:%d:%s", id, viewer.Hex())
	return s.executeAndSettle(ctx, key, chain.EndpointCancelMeetup, []any{id}, 0)
}

// executeAndSettle runs one mutating call under the per-action-site guard,
// then waits the settle delay before trusting a re-query. The refetch gets
// a single retry; a refetch failure does not fail the mutation itself.
func (s *Service) executeAndSettle(ctx context.Context, key, endpoint string, args []any, value int64) error {
	if !s.guard.tryAcquire(key) {
		return ErrActionInFlight
	}
	defer s.guard.release(key)

	if _, err := s.chain.Execute(ctx, endpoint, args, value); err != nil {
		metrics.ChainExecutes.WithLabelValues(endpoint, "error").Inc()
		s.logger.Error("chain_execute_failed", "endpoint", endpoint, "error", err)
		return fmt.Errorf("execute %s: %w", endpoint, err)
	}
	metrics.ChainExecutes.WithLabelValues(endpoint, "ok").Inc()

	if err := s.sleep(ctx, s.settleDelay); err != nil {
		return err
	}
	if err := s.Refresh(ctx, "settle"); err != nil {
		s.logger.Warn("settle_refetch_failed", "endpoint", endpoint, "error", err)
		if err := s.sleep(ctx, s.settleDelay); err != nil {
			return err
		}
		if err := s.Refresh(ctx, "settle_retry"); err != nil {
			s.logger.Error("settle_refetch_retry_failed", "endpoint", endpoint, "error", err)
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
