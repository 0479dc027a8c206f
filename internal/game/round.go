package game

import (
	"math"
	"time"

	"github.com/curvytron/server/internal/avatar"
	"github.com/curvytron/server/internal/bonus"
	"github.com/curvytron/server/internal/config"
)

// RoundEndSummary is the `round:end` payload: every avatar's score
// delta for the round just concluded (spec §4.6, §4.8).
type RoundEndSummary struct {
	AvatarID   string `json:"avatar"`
	RoundScore int    `json:"roundScore"`
	Score      int    `json:"score"`
}

// MatchEndSummary is the `end` payload announcing the match winner.
type MatchEndSummary struct {
	WinnerAvatarID string `json:"winner"`
	Reason         string `json:"reason"`
}

// RoundNewSummary is the `round:new` payload, emitted once Warmup
// completes into Running for every round including the first (spec
// §4.6, §4.8, §8's room:start e2e: "game:start then after 3s
// round:new").
type RoundNewSummary struct {
	Round int `json:"round"`
}

func (g *Game) endRound() {
	g.computeRoundScores()

	summaries := make([]RoundEndSummary, 0, g.Avatars.Len())
	for _, a := range g.Avatars.Items() {
		summaries = append(summaries, RoundEndSummary{
			AvatarID:   a.ID,
			RoundScore: a.RoundScore,
			Score:      a.Score,
		})
	}
	g.sink.Emit("round:end", summaries)

	g.state = StateRoundEnd
	g.roundEndRemaining = config.RoundEndDuration
}

// computeRoundScores applies spec §4.6's scoring rule: every avatar
// earns 1 point per opponent whose death-time is strictly earlier than
// its own (alive counts as +Inf), so two avatars dying in the same
// tick credit each other with 0 (spec §8 boundary scenario 1).
func (g *Game) computeRoundScores() {
	effectiveTick := func(a *avatar.Avatar) float64 {
		if a.Alive {
			return math.Inf(1)
		}
		return float64(a.DeathTick)
	}

	avatars := g.Avatars.Items()
	for _, a := range avatars {
		own := effectiveTick(a)
		score := 0
		for _, other := range avatars {
			if other.ID == a.ID || other.Alive {
				continue
			}
			if float64(other.DeathTick) < own {
				score++
			}
		}
		a.RoundScore = score
		a.Score += score
	}
}

func (g *Game) tickRoundEnd(dt float64) {
	g.roundEndRemaining -= time.Duration(dt * float64(time.Second))
	if g.roundEndRemaining <= 0 {
		g.startNewRound()
	}
}

// startNewRound implements spec §4.6's NewRound transition: reset
// avatars to fresh spawns, clear trails and bonuses, re-seed print
// timers, then either end the match or begin the next Warmup.
func (g *Game) startNewRound() {
	for _, a := range g.Avatars.Items() {
		if a.Score >= g.MaxRoundScore {
			g.endMatch(a.ID, "score")
			return
		}
	}

	g.round++
	for _, b := range g.Bonuses.All() {
		g.World.Remove(b.ID)
	}
	g.Bonuses = bonus.New(g.World, g.rng, g.nextID)
	g.angles = make(map[string]float64)
	g.ticksSincePosition = 0

	for _, a := range g.Avatars.Items() {
		if g.leftMidGame[a.ID] {
			continue
		}
		x, y, angle := g.randomSpawn()
		a.Respawn(g.World, x, y, angle)
	}

	g.state = StateWarmup
	g.warmupRemaining = config.WarmupDuration
}

func (g *Game) endMatch(winnerAvatarID, reason string) {
	g.state = StateMatchEnd
	g.Done = true
	g.sink.Emit("end", MatchEndSummary{WinnerAvatarID: winnerAvatarID, Reason: reason})
}
