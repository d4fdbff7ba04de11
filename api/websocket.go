package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"bpvote/bpvote"
	"bpvote/voting/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

//handleWebsocket streams state snapshots to a connected frontend. The first
//message is the current snapshot, then one message per published mutation.
func handleWebsocket(votingSession *session.Session) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			bpvote.LogCLI("failed to upgrade websocket", 3)
			return
		}
		//snapshots pile up here so the subscriber callback never blocks the
		//session; a slow consumer loses intermediate states, not the latest
		snapshots := make(chan session.State, 16)
		id := votingSession.Subscribe(func(state session.State) {
			select {
			case snapshots <- state:
			default:
			}
		})
		snapshots <- votingSession.Current()

		go func() {
			ticker := time.NewTicker(pingPeriod)
			defer func() {
				ticker.Stop()
				votingSession.Unsubscribe(id)
				conn.Close()
			}()
			for {
				select {
				case state := <-snapshots:
					conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteJSON(state); err != nil {
						return
					}
				case <-ticker.C:
					conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()

		// reader: we never expect frontend messages, but the read pump notices
		// the close handshake
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(
						err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
						bpvote.LogCLI("unexpected close of websocket", 3)
					}
					return
				}
			}
		}()
	}
}
