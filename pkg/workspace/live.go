package workspace

import (
	"net/http"
	"time"

	"github.com/boredapes/ctaplanner/pkg/event"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Live streams the grouped schedule over a WebSocket: once on connect and again after
// every change, until the client leaves or the session ends.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("WebSocket upgrade error: %v", err)
		return
	}

	changed := make(chan struct{}, 1)
	unsubscribe := ws.Subscribe(func([]event.EventRecord) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	closed := make(chan struct{})
	go readPump(conn, closed)
	writePump(conn, ws, changed, closed)
	unsubscribe()
}

func writePump(conn *websocket.Conn, ws *Workspace, changed <-chan struct{}, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	if err := push(conn, ws); err != nil {
		return
	}
	for {
		select {
		case <-changed:
			if err := push(conn, ws); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ws.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
			return
		case <-closed:
			return
		}
	}
}

func push(conn *websocket.Conn, ws *Workspace) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(scheduleToDTO(ws)); err != nil {
		log.Debugf("live schedule push failed: %v", err)
		return err
	}
	return nil
}

// readPump discards client messages and keeps the read deadline alive with pongs.
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debugf("WebSocket read error: %v", err)
			}
			return
		}
	}
}
