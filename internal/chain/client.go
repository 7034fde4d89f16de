package chain

import (
	"context"
	"encoding/json"
	"fmt"
)

// Contract entry points used by the gateway.
const (
	EndpointGetAllMeetups      = "get_all_meetups"
	EndpointGetMeetup          = "get_meetup"
	EndpointCreateMeetup       = "create_meetup"
	EndpointRegisterForMeetup  = "register_for_meetup"
	EndpointCancelRegistration = "cancel_registration"
	EndpointCancelMeetup       = "cancel_meetup"
)

// QueryResult is the decoded-or-error envelope a contract read returns.
// Output may be null for an empty collection; callers must tolerate that.
type QueryResult struct {
	Output      json.RawMessage `json:"output"`
	IsError     bool            `json:"isError"`
	ErrorDetail string          `json:"errorDetail,omitempty"`
}

// TxResult describes a submitted state-changing call.
type TxResult struct {
	Hash     string `json:"hash"`
	Finished bool   `json:"finished"`
}

// Client queries and executes named contract entry points. It is supplied
// by an external chain collaborator; the gateway never reimplements the
// contract itself.
type Client interface {
	// Query performs a read-only contract call.
	Query(ctx context.Context, endpoint string, args []any) (QueryResult, error)
	// Execute submits a state-changing call with an attached value in the
	// chain's smallest currency unit.
	Execute(ctx context.Context, endpoint string, args []any, valueToAttach int64) (TxResult, error)
}

// QueryError reports a contract read the collaborator flagged as failed.
type QueryError struct {
	Endpoint string
	Detail   string
}

func (e *QueryError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("contract query %s failed", e.Endpoint)
	}
	return fmt.Sprintf("contract query %s failed: %s", e.Endpoint, e.Detail)
}
