package domain

import "time"

// Audited administrative actions.
const (
	ActionAccountCreate = "Account Create"
	ActionAccountDelete = "Account Delete"
)

// AuditEntry is an append-only record of an administrative action.
type AuditEntry struct {
	ID        int64     `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
