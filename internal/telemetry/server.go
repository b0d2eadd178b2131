package telemetry

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/elektrokombinacija/crowd-sfm/internal/sim"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait        = 2 * time.Second
	closeGracePeriod = 2 * time.Second
)

// Server streams Snapshot updates over a websocket at /ws.
type Server struct {
	addr string
	sim  *sim.Simulator
}

// NewServer constructs a telemetry server for s, listening on addr
// (e.g. ":8090").
func NewServer(addr string, s *sim.Simulator) *Server {
	return &Server{addr: addr, sim: s}
}

// Serve blocks, serving the websocket endpoint until the listener fails.
func (server *Server) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", server.serveWebsocket)

	if err := http.ListenAndServe(server.addr, mux); err != nil {
		return fmt.Errorf("telemetry serve: %w", err)
	}
	return nil
}

func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("telemetry upgrade:", err)
		return
	}
	defer server.closeWebsocket(ws)
	server.publishSnapshots(ws)
}

// publishSnapshots pushes one Snapshot every tickResolution until the
// write fails (client disconnected).
func (server *Server) publishSnapshots(ws *websocket.Conn) {
	ticker := time.NewTicker(tickResolution)
	defer ticker.Stop()

	for range ticker.C {
		snap := Capture(server.sim)
		if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Println("telemetry write deadline:", err)
			return
		}
		if err := ws.WriteJSON(snap); err != nil {
			log.Println("telemetry write:", err)
			return
		}
	}
}

func (server *Server) closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	ws.Close()
}
