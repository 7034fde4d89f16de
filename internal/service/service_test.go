package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"chainmeet/backend/internal/chain"
	"chainmeet/backend/internal/identity"
)

const (
	hostHex   = "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	viewerHex = "3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d"
)

type executeCall struct {
	Endpoint string
	Args     []any
	Value    int64
}

// fakeChain is a scripted chain collaborator for service tests.
type fakeChain struct {
	mu         sync.Mutex
	queryFn    func(call int) (chain.QueryResult, error)
	queryCalls int
	executes   []executeCall
	executeErr error
	execStart  chan struct{}
	execBlock  chan struct{}
}

func (f *fakeChain) Query(ctx context.Context, endpoint string, args []any) (chain.QueryResult, error) {
	f.mu.Lock()
	f.queryCalls++
	call := f.queryCalls
	fn := f.queryFn
	f.mu.Unlock()
	if fn == nil {
		return chain.QueryResult{Output: json.RawMessage("null")}, nil
	}
	return fn(call)
}

func (f *fakeChain) Execute(ctx context.Context, endpoint string, args []any, value int64) (chain.TxResult, error) {
	if f.execStart != nil {
		f.execStart <- struct{}{}
	}
	if f.execBlock != nil {
		<-f.execBlock
	}
	f.mu.Lock()
	f.executes = append(f.executes, executeCall{Endpoint: endpoint, Args: args, Value: value})
	err := f.executeErr
	f.mu.Unlock()
	if err != nil {
		return chain.TxResult{}, err
	}
	return chain.TxResult{Hash: "0xfeed", Finished: true}, nil
}

func meetupJSON(id int64, attendees ...string) string {
	list := "["
	for i, a := range attendees {
		if i > 0 {
			list += ","
		}
		list += fmt.Sprintf("%q", a)
	}
	list += "]"
	start := time.Date(2026, time.September, 1, 18, 0, 0, 0, time.UTC).UnixMilli()
	return fmt.Sprintf(`{
		"id": %d,
		"title": "Meetup %d",
		"description": "desc",
		"location_kind": "Online",
		"location": "https://meet.example/%d",
		"time_zone": "UTC",
		"start_time": %d,
		"price": "2,500",
		"total_paid": 0,
		"capacity": 10,
		"attendees": %s,
		"host": %q,
		"status": "Planned"
	}`, id, id, id, start, list, hostHex)
}

func collection(entries ...string) chain.QueryResult {
	out := "[" + entries[0]
	for _, e := range entries[1:] {
		out += "," + e
	}
	out += "]"
	return chain.QueryResult{Output: json.RawMessage(out)}
}

func newTestService(fc *fakeChain) (*Service, *[]time.Duration) {
	sleeps := &[]time.Duration{}
	var mu sync.Mutex
	svc := New(fc, Config{
		SettleDelay: 7 * time.Millisecond,
		Sleep: func(ctx context.Context, d time.Duration) error {
			mu.Lock()
			*sleeps = append(*sleeps, d)
			mu.Unlock()
			return nil
		},
	}, nil)
	return svc, sleeps
}

// TestRefreshReplacesWholesale verifies refresh replaces wholesale behavior.
func TestRefreshReplacesWholesale(t *testing.T) {
	fc := &fakeChain{queryFn: func(call int) (chain.QueryResult, error) {
		if call == 1 {
			return collection(meetupJSON(1), meetupJSON(2)), nil
		}
		return collection(meetupJSON(3)), nil
	}}
	svc, _ := newTestService(fc)

	if err := svc.Refresh(context.Background(), "test"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	records, fetchedAt := svc.Snapshot()
	if len(records) != 2 || fetchedAt.IsZero() {
		t.Fatalf("snapshot = %d records, fetchedAt %v", len(records), fetchedAt)
	}

	if err := svc.Refresh(context.Background(), "test"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	records, _ = svc.Snapshot()
	if len(records) != 1 || records[0].ID != 3 {
		t.Fatalf("snapshot not replaced wholesale: %v", records)
	}
}

// TestRefreshErrorResetsSnapshot verifies refresh error resets snapshot behavior.
func TestRefreshErrorResetsSnapshot(t *testing.T) {
	fc := &fakeChain{queryFn: func(call int) (chain.QueryResult, error) {
		if call == 1 {
			return collection(meetupJSON(1)), nil
		}
		return chain.QueryResult{IsError: true, ErrorDetail: "ContractTrapped"}, nil
	}}
	svc, _ := newTestService(fc)

	if err := svc.Refresh(context.Background(), "test"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	err := svc.Refresh(context.Background(), "test")
	var qerr *chain.QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("error = %v, want *chain.QueryError", err)
	}
	records, _ := svc.Snapshot()
	if len(records) != 0 {
		t.Fatalf("snapshot left stale after query error: %v", records)
	}
}

// TestRegisterAttachesPriceAndSettles verifies register attaches price and settles behavior.
func TestRegisterAttachesPriceAndSettles(t *testing.T) {
	fc := &fakeChain{queryFn: func(call int) (chain.QueryResult, error) {
		return collection(meetupJSON(1)), nil
	}}
	svc, sleeps := newTestService(fc)
	if err := svc.Refresh(context.Background(), "test"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	viewer := identity.MustParse(viewerHex)
	if err := svc.Register(context.Background(), 1, viewer); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if len(fc.executes) != 1 {
		t.Fatalf("executes = %d, want 1", len(fc.executes))
	}
	call := fc.executes[0]
	if call.Endpoint != chain.EndpointRegisterForMeetup {
		t.Fatalf("endpoint = %q", call.Endpoint)
	}
	if call.Value != 2500 {
		t.Fatalf("attached value = %d, want decoded price 2500", call.Value)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != 7*time.Millisecond {
		t.Fatalf("settle sleeps = %v", *sleeps)
	}
	if fc.queryCalls != 2 {
		t.Fatalf("query calls = %d, want initial + settle refetch", fc.queryCalls)
	}
}

// TestSettleRefetchRetriesOnce verifies settle refetch retries once behavior.
func TestSettleRefetchRetriesOnce(t *testing.T) {
	fc := &fakeChain{queryFn: func(call int) (chain.QueryResult, error) {
		switch call {
		case 1:
			return collection(meetupJSON(1)), nil
		case 2:
			return chain.QueryResult{}, errors.New("node hiccup")
		default:
			return collection(meetupJSON(1), meetupJSON(2)), nil
		}
	}}
	svc, sleeps := newTestService(fc)
	if err := svc.Refresh(context.Background(), "test"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	viewer := identity.MustParse(viewerHex)
	if err := svc.Register(context.Background(), 1, viewer); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if len(*sleeps) != 2 {
		t.Fatalf("sleeps = %v, want settle delay twice (single retry)", *sleeps)
	}
	records, _ := svc.Snapshot()
	if len(records) != 2 {
		t.Fatalf("snapshot after retry = %d records, want 2", len(records))
	}
}

// TestRegisterEligibilityGates verifies register eligibility gates behavior.
func TestRegisterEligibilityGates(t *testing.T) {
	fc := &fakeChain{queryFn: func(call int) (chain.QueryResult, error) {
		return collection(meetupJSON(1, viewerHex)), nil
	}}
	svc, _ := newTestService(fc)
	if err := svc.Refresh(context.Background(), "test"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if err := svc.Register(context.Background(), 42, identity.MustParse(viewerHex)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing record error = %v, want ErrNotFound", err)
	}
	if err := svc.Register(context.Background(), 1, identity.MustParse(hostHex)); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("host register error = %v, want ErrNotEligible", err)
	}
	if err := svc.Register(context.Background(), 1, identity.MustParse(viewerHex)); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("repeat register error = %v, want ErrNotEligible", err)
	}
	if len(fc.executes) != 0 {
		t.Fatalf("ineligible actions reached the contract: %v", fc.executes)
	}
}

// TestUnregisterAndCancelGates verifies unregister and cancel gates behavior.
func TestUnregisterAndCancelGates(t *testing.T) {
	fc := &fakeChain{queryFn: func(call int) (chain.QueryResult, error) {
		return collection(meetupJSON(1, viewerHex)), nil
	}}
	svc, _ := newTestService(fc)
	if err := svc.Refresh(context.Background(), "test"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	other := identity.MustParse("c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5")
	if err := svc.Unregister(context.Background(), 1, other); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("unregister non-attendee error = %v, want ErrNotEligible", err)
	}
	if err := svc.CancelMeetup(context.Background(), 1, other); !errors.Is(err, ErrNotHost) {
		t.Fatalf("cancel by non-host error = %v, want ErrNotHost", err)
	}
	if err := svc.Unregister(context.Background(), 1, identity.MustParse(viewerHex)); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if err := svc.CancelMeetup(context.Background(), 1, identity.MustParse(hostHex)); err != nil {
		t.Fatalf("CancelMeetup() error = %v", err)
	}
}

// TestFetchBypassesSnapshot verifies fetch bypasses snapshot behavior.
func TestFetchBypassesSnapshot(t *testing.T) {
	fc := &fakeChain{queryFn: func(call int) (chain.QueryResult, error) {
		return chain.QueryResult{Output: json.RawMessage(meetupJSON(5))}, nil
	}}
	svc, _ := newTestService(fc)

	rec, err := svc.Fetch(context.Background(), 5)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if rec.ID != 5 || rec.Title != "Meetup 5" {
		t.Fatalf("Fetch() = %+v", rec)
	}

	fc.mu.Lock()
	fc.queryFn = func(call int) (chain.QueryResult, error) {
		return chain.QueryResult{Output: json.RawMessage("null")}, nil
	}
	fc.mu.Unlock()
	if _, err := svc.Fetch(context.Background(), 6); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing record error = %v, want ErrNotFound", err)
	}
}

// TestActionGuardRejectsDuplicate verifies action guard rejects duplicate behavior.
func TestActionGuardRejectsDuplicate(t *testing.T) {
	fc := &fakeChain{
		queryFn: func(call int) (chain.QueryResult, error) {
			return collection(meetupJSON(1)), nil
		},
		execStart: make(chan struct{}, 1),
		execBlock: make(chan struct{}),
	}
	svc, _ := newTestService(fc)
	if err := svc.Refresh(context.Background(), "test"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	viewer := identity.MustParse(viewerHex)
	done := make(chan error, 1)
	go func() {
		done <- svc.Register(context.Background(), 1, viewer)
	}()
	<-fc.execStart

	// Same viewer, same meetup, first call still outstanding.
	if err := svc.Register(context.Background(), 1, viewer); !errors.Is(err, ErrActionInFlight) {
		t.Fatalf("duplicate action error = %v, want ErrActionInFlight", err)
	}

	close(fc.execBlock)
	if err := <-done; err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
}
