package persistence

import (
	"errors"

	"github.com/wfunc/tetris/models"
)

// Store persists finished-game records. Two implementations exist: a GORM
// one and a raw lib/pq one; config picks the driver.
type Store interface {
	SaveGameRecord(record *models.GameRecord) error
	TopScores(limit int) ([]models.GameRecord, error)
	Close() error
}

var (
	ErrRecordNotFound = errors.New("record not found")
)
