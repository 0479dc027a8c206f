// Package metrics exposes the process's Prometheus instrumentation:
// tick timing, room/player/avatar gauges, and bonus/collision counters
// (SPEC_FULL §A, §B). Grounded on
// iamvalenciia-kick-game-stream/fight-club-go/internal/api/observability.go's
// promauto package-level collectors, generalized from that repo's
// fight-loop/render metrics to this server's tick/room/avatar surface.
// Every collector here carries no per-player or per-room label, per
// that file's "bounded cardinality" rule — room and session ids are
// server-assigned opaque strings with no natural upper bound.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TickDuration times one Room's Game.Tick call (spec §4.6: fixed
	// Δt=1/60s; this measures how much of that budget simulation work
	// actually consumes).
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "curvytron_tick_duration_seconds",
		Help:    "Wall time spent advancing one room's game by one tick.",
		Buckets: []float64{0.0002, 0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.033},
	})

	roomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "curvytron_rooms_active",
		Help: "Number of open rooms.",
	})
	playersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "curvytron_players_active",
		Help: "Number of players currently seated in a room (across all rooms).",
	})
	avatarsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "curvytron_avatars_active",
		Help: "Number of avatars currently simulated across all running games.",
	})
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "curvytron_websocket_connections_active",
		Help: "Currently open WebSocket sessions.",
	})

	bonusesSpawnedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "curvytron_bonuses_spawned_total",
		Help: "Total bonuses spawned onto the board.",
	})
	bonusesCollectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "curvytron_bonuses_collected_total",
		Help: "Total bonuses picked up by an avatar.",
	})
	bonusesExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "curvytron_bonuses_expired_total",
		Help: "Total bonuses that expired uncollected.",
	})
	collisionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "curvytron_collisions_total",
		Help: "Total lethal avatar-body contacts (walls excluded), counted once per overlapping body.",
	})
)

func RecordTick(d time.Duration)  { TickDuration.Observe(d.Seconds()) }
func SetRooms(n int)              { roomsActive.Set(float64(n)) }
func SetPlayers(n int)            { playersActive.Set(float64(n)) }
func SetAvatars(n int)            { avatarsActive.Set(float64(n)) }
func SetWSConnections(n int)      { wsConnectionsActive.Set(float64(n)) }
func IncBonusSpawned()            { bonusesSpawnedTotal.Inc() }
func IncBonusCollected()          { bonusesCollectedTotal.Inc() }
func IncBonusExpired()            { bonusesExpiredTotal.Inc() }
func IncCollision()               { collisionsTotal.Inc() }
