package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/egor/vicai/models"
	"github.com/egor/vicai/ratelimit"
	"github.com/egor/vicai/service"
)

// maxBodyBytes bounds the JSON body; the message limit itself is checked in
// runes by the gateway.
const maxBodyBytes = 64 << 10

// Chat handles POST / and POST /api/chat.
func (h *Handler) Chat(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: "Message too long."})
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: service.ErrInvalidJSON.Message})
		return
	}

	clientID := ratelimit.ClientID(c.Request.Header, h.ClientIPHeader)
	res, err := h.Gateway.Handle(c.Request.Context(), service.Request{
		ClientID: clientID,
		Text:     req.Text(),
	})
	if err != nil {
		c.JSON(service.StatusOf(err), errorBody(err))
		return
	}

	c.JSON(http.StatusOK, models.ChatResponse{
		Success: true,
		Output:  res.Output,
		Intent:  string(res.Intent),
	})
}

// chatCORS puts the open CORS headers on every chat response, errors
// included, whether or not the request carried an Origin.
func chatCORS(c *gin.Context) {
	setChatCORS(c)
	c.Next()
}

func setChatCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
}

// Options answers preflights without an Origin header; the CORS middleware
// answers the others before routing.
func (h *Handler) Options(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h *Handler) NoMethod(c *gin.Context) {
	switch c.Request.URL.Path {
	case "/", "/api/chat":
		setChatCORS(c)
		c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{Error: "POST only"})
	default:
		c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{Error: "Method not allowed"})
	}
}

// Health reports liveness and, when a database is used, its reachability.
func (h *Handler) Health(c *gin.Context) {
	body := gin.H{"status": "ok", "db": "disabled"}
	status := http.StatusOK

	if h.Ping != nil {
		if err := h.Ping(c.Request.Context()); err != nil {
			h.Log.Warn("health: database unreachable", err.Error())
			body["status"], body["db"] = "degraded", "down"
			status = http.StatusServiceUnavailable
		} else {
			body["db"] = "ok"
		}
	}
	if h.Hub != nil {
		body["wsClients"] = h.Hub.Connected()
	}
	c.JSON(status, body)
}
