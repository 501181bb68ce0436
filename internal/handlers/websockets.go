package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/1gassner/energy-management-mvp-sub002/internal/notify"
)

// Upgrader for HTTP -> WebSocket. Consider tightening CheckOrigin in production.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConnect upgrades the request and subscribes the client to alert events.
// An optional ?buildingId limits the subscription to one building.
func (h *Handler) wsConnect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}

	client := notify.NewClient(h.hub, conn, c.Query("buildingId"))
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
