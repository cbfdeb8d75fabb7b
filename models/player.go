package models

// Player is one roster entry. Name is the durable identity used for
// answers and rejoins; SessionID is the transient delivery key and
// changes across reconnects.
type Player struct {
	SessionID      string
	Name           string
	Score          int
	CorrectAnswers int
	IsHost         bool
	Connected      bool
	HasAnswered    bool // reset at the start of every round
}

// PlayerView is the wire shape of a player, matching what the clients
// render in rosters and leaderboards.
type PlayerView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correctAnswers"`
	IsHost         bool   `json:"isHost"`
	Connected      bool   `json:"connected"`
}

func (p *Player) View() PlayerView {
	return PlayerView{
		ID:             p.SessionID,
		Name:           p.Name,
		Score:          p.Score,
		CorrectAnswers: p.CorrectAnswers,
		IsHost:         p.IsHost,
		Connected:      p.Connected,
	}
}
