package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditRecord keeps the raw input next to what was done with it.
type AuditRecord struct {
	ID             uuid.UUID `json:"id"`
	ClientID       string    `json:"clientId"`
	Raw            string    `json:"raw"`
	Clean          string    `json:"clean,omitempty"`
	DeclaredLength int       `json:"declaredLength"`
	Reason         string    `json:"reason"`           // safety reason or pipeline outcome
	Intent         string    `json:"intent,omitempty"` // empty when rejected before classification
	Status         int       `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}
