package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"bite/internal/session"
	"bite/internal/system"
)

// wsUpgrader upgrades HTTP connections to WebSocket.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type controlMsg struct {
	Type string `json:"type"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
	Data string `json:"data"`
}

// terminalWSHandler bridges one Interaction's raw output stream and stdin
// over WebSocket, adapted from the teacher's PTY-over-WebSocket bridge to
// attach to a Job the Session already owns rather than spawning an ad hoc
// shell per connection (spec.md §5: the Session is the single shared
// state root).
//
// Client protocol (unchanged from the teacher's):
// - Plain text/binary messages are input to the interaction.
// - Control messages are JSON: {"type":"resize","cols":<int>,"rows":<int>}.
// - Server sends the interaction's raw output bytes as text messages.
func terminalWSHandler(sess *session.Session, w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Query().Get("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid id", http.StatusBadRequest)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, fmt.Sprintf("upgrade failed: %v", err), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	raw, cancel := sess.SubscribeRaw(id)
	defer cancel()

	if cols, _ := strconv.Atoi(r.URL.Query().Get("cols")); cols > 0 {
		if rows, _ := strconv.Atoi(r.URL.Query().Get("rows")); rows > 0 {
			sess.Resize(rows, cols)
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for chunk := range raw {
			if err := conn.WriteMessage(websocket.TextMessage, chunk); err != nil {
				return
			}
		}
	}()

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		switch mt {
		case websocket.TextMessage, websocket.BinaryMessage:
			var cm controlMsg
			if json.Unmarshal(data, &cm) == nil && cm.Type != "" {
				switch cm.Type {
				case "resize":
					if cm.Cols > 0 && cm.Rows > 0 {
						sess.Resize(cm.Rows, cm.Cols)
					}
				case "input":
					if cm.Data != "" {
						if err := sess.SendStdin(id, []byte(cm.Data)); err != nil {
							system.Logger.Debug("webui stdin write failed", "id", id, "err", err)
						}
					}
				}
				continue
			}
			if len(data) > 0 {
				if err := sess.SendStdin(id, data); err != nil {
					system.Logger.Debug("webui stdin write failed", "id", id, "err", err)
				}
			}
		case websocket.CloseMessage:
			return
		}
	}
	<-done
}
