package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/dbis-ilm/poseidon-go/internal/telemetry"
)

// wsHandler upgrades GET /api/v1/ws into a telemetry WebSocket connection,
// adapted from persistor/internal/api/router_helpers.go's wsHandler with
// the tenant lookup dropped: every client joins the same event stream.
func wsHandler(log *logrus.Logger, hub *telemetry.Hub, corsOrigins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, o := range corsOrigins {
				if o == origin {
					return true
				}
			}
			return false
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.WithError(err).Error("telemetry websocket upgrade failed")
			return
		}

		client := telemetry.NewClient(hub, conn)
		hub.Register(client)

		go client.WritePump()
		client.ReadPump()
	}
}
