package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/egor/vicai/safety"
)

// InputError is a malformed, empty or oversized message.
type InputError struct {
	Status  int
	Message string
}

func (e *InputError) Error() string { return e.Message }

var (
	errMessageRequired = &InputError{Status: http.StatusBadRequest, Message: "Message required"}
	// ErrInvalidJSON is used by transports that decode the body themselves.
	ErrInvalidJSON = &InputError{Status: http.StatusBadRequest, Message: "Invalid JSON"}
)

func tooLong(max int) *InputError {
	return &InputError{
		Status:  http.StatusRequestEntityTooLarge,
		Message: fmt.Sprintf("Message too long. Max %d chars.", max),
	}
}

// SafetyRejection is a message that hit one of the keyword lists. Matched
// never leaves the process.
type SafetyRejection struct {
	Reason  safety.Reason
	Matched string
}

func (e *SafetyRejection) Error() string { return e.Reason.Message() }

// RateLimited is a request inside the client's cooldown.
type RateLimited struct {
	Window time.Duration
}

func (e *RateLimited) Error() string {
	n := int(e.Window.Round(time.Second) / time.Second)
	if n < 1 {
		n = 1
	}
	unit := "seconds"
	if n == 1 {
		unit = "second"
	}
	return fmt.Sprintf("Slow down! You can do 1 request per %d %s.", n, unit)
}

// Dependencies that can fail.
const (
	DepGenerator = "generator"
	DepRateStore = "rate_store"
)

// DependencyError wraps a failure of the generator or the rate store.
type DependencyError struct {
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return e.Dependency + ": " + e.Err.Error()
}

func (e *DependencyError) Unwrap() error { return e.Err }

// Status is the HTTP status for the failed dependency.
func (e *DependencyError) Status() int {
	if e.Dependency == DepRateStore {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
