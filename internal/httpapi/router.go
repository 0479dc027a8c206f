// Package httpapi wires the process's HTTP surface: the WebSocket
// upgrade route (which shares its path with static client serving,
// spec.md §6), a Prometheus `/metrics` endpoint, and a `/healthz`
// liveness probe, atop go-chi/chi (SPEC_FULL §A, §B). Grounded on
// iamvalenciia-kick-game-stream/fight-club-go/internal/api's
// router.go (chi + middleware.Recoverer + go-chi/cors composition) and
// observability.go (promhttp.Handler mount), generalized from that
// repo's REST admin API to this server's single WebSocket+static
// route plus process endpoints.
package httpapi

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/curvytron/server/internal/config"
	"github.com/curvytron/server/internal/metrics"
	"github.com/curvytron/server/internal/room"
	"github.com/curvytron/server/internal/session"
)

var upgrader = websocket.Upgrader{
	// Curvytron clients run from an arbitrary origin during
	// development and from the bundled static client in production;
	// the session protocol carries no cookies or ambient authority for
	// CSRF to exploit (spec.md's Non-goals: no cryptographic auth).
	CheckOrigin:     func(*http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Config bundles NewRouter's dependencies.
type Config struct {
	StaticDir string
	Sessions  *session.Manager
	Rooms     *room.Controller
}

// NewRouter builds the process's HTTP mux (spec.md §6, SPEC_FULL §2).
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	limiter := newIPRateLimiter(config.IPConnectRatePerSec, config.IPConnectBurst)
	fileServer := http.FileServer(http.Dir(cfg.StaticDir))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	// spec.md §6: "WebSocket at path / (any path accepted)... HTTP GET
	// on any non-WebSocket path serves the bundled web client" — both
	// share the same catch-all route, split by the Upgrade header.
	r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !websocket.IsWebSocketUpgrade(req) {
			fileServer.ServeHTTP(w, req)
			return
		}
		ip := clientIP(req)
		if !limiter.allow(ip) {
			http.Error(w, "too many connections", http.StatusTooManyRequests)
			return
		}
		handleUpgrade(w, req, cfg.Sessions, cfg.Rooms)
	}))

	return r
}

func handleUpgrade(w http.ResponseWriter, r *http.Request, sessions *session.Manager, rooms *room.Controller) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("httpapi: upgrade error: %v", err)
		return
	}

	s := session.New(ws)
	sessions.Add(s)
	metrics.SetWSConnections(sessions.Count())
	log.Printf("httpapi: session %s connected", s.ID)

	room.Bind(rooms, s)
	s.StartPing()
	s.OnClose(func() {
		sessions.Remove(s.ID)
		metrics.SetWSConnections(sessions.Count())
		log.Printf("httpapi: session %s closed", s.ID)
	})

	go s.ReadLoop()
}
