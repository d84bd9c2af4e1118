package services

import (
	"github.com/wfunc/tetris/game"
	"github.com/wfunc/tetris/models"
	"github.com/wfunc/tetris/persistence"
	"github.com/wfunc/tetris/session"
)

// ScoreService records final scores and answers leaderboard queries.
type ScoreService struct {
	db persistence.Store
}

func NewScoreService(db persistence.Store) *ScoreService {
	return &ScoreService{db: db}
}

// RecordFinalScore persists one finished playthrough. lastState may be
// nil when the peer never sent a snapshot; the record then carries the
// score alone.
func (s *ScoreService) RecordFinalScore(sess *session.Session, score int, lastState *game.Snapshot) error {
	record := &models.GameRecord{
		PlayerID:   sess.PlayerID,
		PlayerName: sess.Name,
		Score:      score,
		Level:      1,
	}
	if lastState != nil {
		record.LinesCleared = lastState.LinesCleared
		record.Level = lastState.Level
	}
	return s.db.SaveGameRecord(record)
}

// TopScores returns the best recorded games, highest score first.
func (s *ScoreService) TopScores(limit int) ([]models.GameRecord, error) {
	return s.db.TopScores(limit)
}
