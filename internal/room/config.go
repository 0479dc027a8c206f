package room

import "github.com/curvytron/server/internal/config"

// Config is a Room's mutable game configuration, changeable by the
// leader via room:config before the Game starts (spec §3, §4.7).
type Config struct {
	MaxPlayers     int  `json:"maxPlayers"`
	BonusesEnabled bool `json:"bonusesEnabled"`
	MaxRoundScore  int  `json:"maxRoundScore"`
	BotsEnabled    bool `json:"botsEnabled"`
}

// DefaultConfig matches the process-level defaults in internal/config.
func DefaultConfig() Config {
	return Config{
		MaxPlayers:     config.DefaultMaxPlayers,
		BonusesEnabled: true,
		MaxRoundScore:  config.DefaultMaxRoundScore,
		BotsEnabled:    config.DefaultBotsEnabled,
	}
}
