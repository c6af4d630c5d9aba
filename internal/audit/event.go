// Package audit records entity mutations. Handlers hand events to an Emitter,
// which publishes them in the background so a slow or failing sink never
// changes an HTTP result.
package audit

import (
	"strconv"
	"time"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event describes one successful write.
type Event struct {
	ID        string    `json:"id"`
	Entity    string    `json:"entity"`
	EntityID  int       `json:"entity_id"`
	Action    Action    `json:"action"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Key partitions events so every change to one row lands in order.
func (e Event) Key() string {
	return e.Entity + ":" + strconv.Itoa(e.EntityID)
}
