package audit

import "context"

// Auditor is the interface for audit logging. Implementations handle events
// asynchronously and degrade gracefully when the audit backend is
// unavailable.
type Auditor interface {
	// LogEvent records an audit event. Implementations must not block the
	// caller; failures are logged and swallowed.
	LogEvent(ctx context.Context, event *Event)

	// IsEnabled reports whether audit logging is active. Callers can skip
	// event preparation when disabled.
	IsEnabled() bool
}

// Event is one audit record published to the audit stream
type Event struct {
	Timestamp  string  `json:"timestamp"`
	Action     string  `json:"action"` // CREATE, UPDATE, DELETE
	Status     string  `json:"status"` // success or failure
	ActorID    *string `json:"actorId,omitempty"`
	Resource   string  `json:"resource"`
	ResourceID *string `json:"resourceId,omitempty"`
	RequestIP  string  `json:"requestIp,omitempty"`
}
