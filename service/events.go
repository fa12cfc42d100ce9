package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/egor/vicai/intent"
)

// Outcome is how a request ended.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeInvalid        Outcome = "invalid"
	OutcomeRateLimited    Outcome = "rate_limited"
	OutcomeRejected       Outcome = "rejected"
	OutcomeGeneratorError Outcome = "generator_error"
	OutcomeStoreError     Outcome = "store_error"
)

// Event describes one finished request. It carries no message text.
type Event struct {
	ID       uuid.UUID     `json:"id"`
	ClientID string        `json:"clientId"`
	Outcome  Outcome       `json:"outcome"`
	Reason   string        `json:"reason,omitempty"`
	Intent   intent.Label  `json:"intent,omitempty"`
	Status   int           `json:"status"`
	Latency  time.Duration `json:"latencyNs"`
	At       time.Time     `json:"at"`
}

// Observer is told about every finished request. Observe is called on the
// request path and must not block.
type Observer interface {
	Observe(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }
