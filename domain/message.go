// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScopeAll is the journal scope for messages addressed to every
// connected session, as opposed to a group name.
const ScopeAll = "all"

// Message represents an immutable chat event.
type Message struct {
	ID        uuid.UUID // unique identifier
	Scope     string    // ScopeAll or a group name
	SenderID  string
	Content   string
	CreatedAt time.Time
}
