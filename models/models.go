package models

import (
	"time"
)

// GameRecord is one finished playthrough as reported by a game_over
// message, enriched with the last snapshot the peer sent.
type GameRecord struct {
	PlayerID     string    `json:"player_id"`
	PlayerName   string    `json:"player_name"`
	Score        int       `json:"score"`
	LinesCleared int       `json:"lines_cleared"`
	Level        int       `json:"level"`
	CreatedAt    time.Time `json:"created_at"`
}
