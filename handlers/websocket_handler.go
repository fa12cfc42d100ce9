package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/egor/vicai/models"
	"github.com/egor/vicai/ratelimit"
	"github.com/egor/vicai/service"
	"github.com/egor/vicai/websocket"
)

// ChatWS serves GET /ws: each {message} frame goes through the same
// pipeline as POST / and gets a result or error frame back.
func (h *Handler) ChatWS(c *gin.Context) {
	clientID := ratelimit.ClientID(c.Request.Header, h.ClientIPHeader)
	conn, err := websocket.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn("ws upgrade failed", err.Error())
		return
	}

	ctx := c.Request.Context()
	client := websocket.NewClient(h.Hub, conn, websocket.KindChat, clientID)
	h.Hub.Register(client)
	go client.WritePump()

	client.ReadPump(func(cl *websocket.Client, frame []byte) {
		var req models.ChatRequest
		if err := json.Unmarshal(frame, &req); err != nil {
			h.sendFrame(cl, errorFrame(http.StatusBadRequest, models.ErrorResponse{Error: service.ErrInvalidJSON.Message}))
			return
		}

		res, err := h.Gateway.Handle(ctx, service.Request{ClientID: cl.ID, Text: req.Text()})
		if err != nil {
			h.sendFrame(cl, errorFrame(service.StatusOf(err), errorBody(err)))
			return
		}
		h.sendFrame(cl, resultFrame(models.ChatResponse{Success: true, Output: res.Output, Intent: string(res.Intent)}))
	})
}

// AdminEvents serves GET /api/admin/events: a read-only feed of request
// events.
func (h *Handler) AdminEvents(c *gin.Context) {
	conn, err := websocket.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn("ws upgrade failed", err.Error())
		return
	}
	client := websocket.NewClient(h.Hub, conn, websocket.KindAdmin, c.GetString("adminEmail"))
	h.Hub.Register(client)
	go client.WritePump()
	client.ReadPump(nil)
}

func (h *Handler) sendFrame(c *websocket.Client, data []byte) {
	if data == nil || !c.Send(data) {
		h.Log.Warn("ws frame dropped", map[string]string{"client": c.ID})
	}
}

func resultFrame(res models.ChatResponse) []byte {
	data, _ := websocket.NewResultMessage(res)
	return data
}

func errorFrame(status int, body models.ErrorResponse) []byte {
	data, _ := websocket.NewErrorMessage(status, body)
	return data
}
