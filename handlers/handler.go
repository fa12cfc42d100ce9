// Package handlers adapts the gateway to HTTP and WebSocket.
package handlers

import (
	"context"
	"errors"

	"github.com/egor/vicai/logging"
	"github.com/egor/vicai/metrics"
	"github.com/egor/vicai/middleware"
	"github.com/egor/vicai/models"
	"github.com/egor/vicai/service"
	"github.com/egor/vicai/websocket"
)

// Handler holds what the routes need. Auth, Hub, Metrics and Ping are
// optional.
type Handler struct {
	Gateway        *service.Gateway
	ClientIPHeader string
	KeywordsFile   string

	Auth    *middleware.Auth
	Hub     *websocket.Hub
	Metrics *metrics.Collector
	Ping    func(ctx context.Context) error
	Log     *logging.Logger
}

// errorBody is what clients see for a gateway error. Dependency details
// stay in the logs.
func errorBody(err error) models.ErrorResponse {
	var (
		sr *service.SafetyRejection
		de *service.DependencyError
	)
	switch {
	case errors.As(err, &sr):
		return models.ErrorResponse{Error: sr.Error(), Reason: string(sr.Reason)}
	case errors.As(err, &de) && de.Dependency == service.DepRateStore:
		return models.ErrorResponse{Error: "Service unavailable"}
	case errors.As(err, &de):
		detail := "Upstream model error"
		if errors.Is(err, context.DeadlineExceeded) {
			detail = "Upstream model timed out"
		}
		return models.ErrorResponse{Error: "AI error", Detail: detail}
	default:
		return models.ErrorResponse{Error: err.Error()}
	}
}
