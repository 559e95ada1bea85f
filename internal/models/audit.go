package models

import (
	"time"

	"github.com/gocql/gocql"
)

// AuditLog trace une mutation sensible (commande, envoi, paiement) dans ScyllaDB.
type AuditLog struct {
	ID         gocql.UUID `json:"id"`
	UserID     string     `json:"user_id"`
	Action     string     `json:"action"`
	Resource   string     `json:"resource"`
	ResourceID string     `json:"resource_id,omitempty"`
	OldValue   string     `json:"old_value,omitempty"`
	NewValue   string     `json:"new_value,omitempty"`
	IPAddress  string     `json:"ip_address"`
	UserAgent  string     `json:"user_agent"`
	Success    bool       `json:"success"`
	ErrorMsg   string     `json:"error_msg,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
