// Package queue defines message payloads exchanged over the message broker.
package queue

// Actions carried by a TableEvent.
const (
	ActionReserved     = "reserved"
	ActionCleared      = "cleared"
	ActionAutoReleased = "auto_released"
)

// TableEvent is published whenever a table changes reservation state:
// an explicit reserve or clear by a user, or an automatic release when
// the countdown runs out. It carries enough for downstream consumers
// to log or notify without querying the primary database.
type TableEvent struct {
	Action     string `json:"action"`
	TableID    uint64 `json:"table_id"`
	UserName   string `json:"user_name,omitempty"` // empty for auto releases
	OccurredAt string `json:"occurred_at"`
}
