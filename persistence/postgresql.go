package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/wfunc/tetris/models"
)

// PostgreSQL is the raw database/sql implementation of Store.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            player_id VARCHAR(255) NOT NULL,
            player_name VARCHAR(255) NOT NULL,
            score INT NOT NULL DEFAULT 0,
            lines_cleared INT NOT NULL DEFAULT 0,
            level INT NOT NULL DEFAULT 1,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            deleted_at TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_game_records_player_id ON game_records(player_id);
        CREATE INDEX IF NOT EXISTS idx_game_records_score ON game_records(score);
    `)

	return err
}

func (p *PostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO game_records (player_id, player_name, score, lines_cleared, level)
        VALUES ($1, $2, $3, $4, $5)
    `

	_, err := p.db.ExecContext(ctx, query,
		record.PlayerID,
		record.PlayerName,
		record.Score,
		record.LinesCleared,
		record.Level)

	return err
}

func (p *PostgreSQL) TopScores(limit int) ([]models.GameRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        SELECT player_id, player_name, score, lines_cleared, level, created_at
        FROM game_records
        WHERE deleted_at IS NULL
        ORDER BY score DESC
        LIMIT $1
    `

	rows, err := p.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.GameRecord
	for rows.Next() {
		var r models.GameRecord
		if err := rows.Scan(&r.PlayerID, &r.PlayerName, &r.Score, &r.LinesCleared, &r.Level, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
