package realtimeimpl

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sadaqat12/snapconnect/internal/realtime"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SubscribeFunc registers a handler for the events a connection should see.
type SubscribeFunc func(handler realtime.Handler) (unsubscribe func(), err error)

// ServeScope streams the events of scopeID straight from the hub. Callers
// authorize the request before handing it over.
func (h *Hub) ServeScope(w http.ResponseWriter, r *http.Request, scopeID string) error {
	return h.Serve(w, r, func(handler realtime.Handler) (func(), error) {
		return h.Subscribe(scopeID, handler), nil
	})
}

// Serve upgrades the request and writes every event delivered through
// subscribe to the connection as a JSON text frame until the peer goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, subscribe SubscribeFunc) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	send := make(chan realtime.Event, sendBuffer)
	overflow := make(chan struct{})
	overflowed := false

	// A hub drop and a full send buffer both mean events were lost, so the
	// connection is closed and the client reconnects and reloads.
	unsubscribe, err := subscribe(func(event realtime.Event) {
		if overflowed {
			return
		}
		if event.Kind == realtime.KindDropped {
			overflowed = true
			close(overflow)
			return
		}
		select {
		case send <- event:
		default:
			overflowed = true
			close(overflow)
		}
	})
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "subscription refused"),
			time.Now().Add(writeWait))
		conn.Close()
		return err
	}

	closed := make(chan struct{})
	go h.writePump(conn, send, overflow, closed)
	h.readPump(conn)

	unsubscribe()
	close(closed)
	return nil
}

// readPump only services control frames; clients never send data on the
// events socket.
func (h *Hub) readPump(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Websocket read error", "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, send <-chan realtime.Event, overflow, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("Websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-overflow:
			h.logger.Warn("Websocket client too slow, closing")
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too slow"),
				time.Now().Add(writeWait))
			return
		case <-closed:
			return
		}
	}
}
