package pipeline

import "time"

// State is the lifecycle stage of a feed session.
type State int

const (
	StateAwaitingFirstSnapshot State = iota
	StateStreaming
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateStreaming:
		return "STREAMING"
	case StateClosed:
		return "CLOSED"
	default:
		return "AWAITING_FIRST_SNAPSHOT"
	}
}

// MarshalText renders the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Closure records why a session reached StateClosed.
type Closure string

const (
	ClosureServerUnreachable Closure = "server_unreachable"
	ClosureStreamClosed      Closure = "stream_closed"
	ClosureStalled           Closure = "stalled"
	ClosureStreamError       Closure = "stream_error"
	ClosureCanceled          Closure = "canceled"
)

// Notice is a transient report of a discarded feed message.
type Notice struct {
	Reason  string    `json:"reason"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Status describes the session for the presentation layer.
type Status struct {
	SessionID         string    `json:"session_id"`
	State             State     `json:"state"`
	Closure           Closure   `json:"closure,omitempty"`
	ClosureError      string    `json:"closure_error,omitempty"`
	SnapshotsAccepted int64     `json:"snapshots_accepted"`
	MessagesDiscarded int64     `json:"messages_discarded"`
	LastSnapshotAt    time.Time `json:"last_snapshot_at,omitzero"`
	LastNotice        *Notice   `json:"last_notice,omitempty"`
}
