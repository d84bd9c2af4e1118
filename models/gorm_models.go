package models

import (
	"gorm.io/gorm"
)

// GormGameRecord is the persisted form of GameRecord.
type GormGameRecord struct {
	gorm.Model
	PlayerID     string `gorm:"index;not null"`
	PlayerName   string `gorm:"not null"`
	Score        int    `gorm:"index;default:0"`
	LinesCleared int    `gorm:"default:0"`
	Level        int    `gorm:"default:1"`
}

// TableName keeps the table shared with the raw-SQL store.
func (GormGameRecord) TableName() string {
	return "game_records"
}
