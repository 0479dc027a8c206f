// Command server is the Curvytron-style arena authority: it accepts
// WebSocket sessions, routes them into RoomsController, and lets each
// Room's own reactor goroutine run its Game loop (spec §2, §6).
// Grounded on the teacher's main.go (single ListenAndServe call,
// stdlib log, WEB_DIR-style static dir override), adapted to route
// through internal/httpapi's chi mux instead of the default
// http.ServeMux and net/http directly.
package main

import (
	"log"
	"net/http"

	"github.com/curvytron/server/internal/config"
	"github.com/curvytron/server/internal/httpapi"
	"github.com/curvytron/server/internal/room"
	"github.com/curvytron/server/internal/session"
)

func main() {
	cfg := config.FromEnv()

	sessions := session.NewManager()
	rooms := room.NewController()
	defer rooms.Stop()

	router := httpapi.NewRouter(httpapi.Config{
		StaticDir: cfg.StaticDir,
		Sessions:  sessions,
		Rooms:     rooms,
	})

	log.Printf("curvytron server listening on %s (static dir %s)", cfg.ServerAddr, cfg.StaticDir)
	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
