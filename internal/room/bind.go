package room

import (
	"encoding/json"
	"time"

	"github.com/curvytron/server/internal/session"
)

type createRequest struct {
	Name       string         `json:"name"`
	PlayerName string         `json:"playerName"`
	Color      string         `json:"color"`
	Config     map[string]any `json:"config"`
}

type joinRequest struct {
	Name       string `json:"name"`
	PlayerName string `json:"playerName"`
	Color      string `json:"color"`
	Spectate   bool   `json:"spectate"`
}

type configRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type moveRequest struct {
	Move int `json:"move"`
}

// Bind wires the lobby protocol table (spec §4.7) onto s, dispatching
// every inbound event to c. Call once per session right after it
// connects.
func Bind(c *Controller, s *session.Session) {
	s.On("whoami", func(json.RawMessage) (any, error) {
		return s.ID, nil
	})

	s.On("room:fetch", func(json.RawMessage) (any, error) {
		return c.Summaries(), nil
	})

	s.On("room:create", func(data json.RawMessage) (any, error) {
		var req createRequest
		if err := json.Unmarshal(data, &req); err != nil || req.Name == "" {
			return nil, ErrBadInput
		}
		name := req.PlayerName
		if name == "" {
			name = "Player"
		}
		color := req.Color
		if color == "" {
			color = "#ffffff"
		}
		leader := &Player{ID: s.ID, Session: s, Name: name, Color: color}
		summary, err := c.Create(req.Name, leader)
		if err != nil {
			return nil, err
		}
		for key, value := range req.Config {
			_ = c.Configure(s.ID, key, value)
		}
		return summary, nil
	})

	s.On("room:join", func(data json.RawMessage) (any, error) {
		var req joinRequest
		if err := json.Unmarshal(data, &req); err != nil || req.Name == "" {
			return nil, ErrBadInput
		}
		spectate := req.Spectate || req.PlayerName == ""
		name := req.PlayerName
		if name == "" {
			name = "Spectator"
		}
		color := req.Color
		if color == "" {
			color = "#ffffff"
		}
		p := &Player{ID: s.ID, Session: s, Name: name, Color: color, Spectator: spectate}
		return c.Join(req.Name, p)
	})

	s.On("room:leave", func(json.RawMessage) (any, error) {
		c.Leave(s.ID)
		return "ok", nil
	})

	s.On("player:ready", func(data json.RawMessage) (any, error) {
		var ready bool
		if err := json.Unmarshal(data, &ready); err != nil {
			return nil, ErrBadInput
		}
		if err := c.SetReady(s.ID, ready); err != nil {
			return nil, err
		}
		return "ok", nil
	})

	s.On("room:config", func(data json.RawMessage) (any, error) {
		var req configRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, ErrBadInput
		}
		if err := c.Configure(s.ID, req.Key, req.Value); err != nil {
			return nil, err
		}
		return "ok", nil
	})

	s.On("room:start", func(json.RawMessage) (any, error) {
		if err := c.Start(s.ID, time.Now().UnixNano()); err != nil {
			return nil, err
		}
		return "ok", nil
	})

	s.On("player:move", func(data json.RawMessage) (any, error) {
		var req moveRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, ErrBadInput
		}
		return nil, c.Move(s.ID, req.Move)
	})

	s.OnClose(func() {
		c.Leave(s.ID)
	})
}
