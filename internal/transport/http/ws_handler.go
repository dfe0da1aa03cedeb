package http

import (
	"net/http"

	"github.com/gorilla/websocket"

	"health-checkin-service/internal/app"
	"health-checkin-service/internal/platform/logger"
)

// WSHandler streams a user's submission results over a websocket so that
// companion clients see the score the moment the check-in lands.
type WSHandler struct {
	registry *app.Registry
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(registry *app.Registry, log *logger.Logger) *WSHandler {
	return &WSHandler{
		registry: registry,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type connectedPayload struct {
	UserID string `json:"userId"`
}

// ServeWS upgrades the request and forwards the user's score results until
// the client hangs up or the registry shuts down.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = r.URL.Query().Get("userId")
	}
	if userID == "" {
		http.Error(w, "missing user identity", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.registry.Subscribe(userID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", "err", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case result, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "scoreResult", Payload: result}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "connected", Payload: connectedPayload{UserID: userID}}

	// Drain the read side so close frames are processed; inbound
	// messages carry no meaning on this feed.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
