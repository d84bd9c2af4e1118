package services

import (
	"errors"
	"sort"
	"testing"

	"github.com/wfunc/tetris/game"
	"github.com/wfunc/tetris/models"
	"github.com/wfunc/tetris/session"
)

// MockStore keeps records in memory.
type MockStore struct {
	records []models.GameRecord
	saveErr error
}

func (m *MockStore) SaveGameRecord(record *models.GameRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records = append(m.records, *record)
	return nil
}

func (m *MockStore) TopScores(limit int) ([]models.GameRecord, error) {
	sorted := make([]models.GameRecord, len(m.records))
	copy(sorted, m.records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (m *MockStore) Close() error { return nil }

func TestRecordFinalScore(t *testing.T) {
	store := &MockStore{}
	svc := NewScoreService(store)

	sess := session.NewSession("player_1", "Alice", nil)
	state := game.NewEngineWithSeed(1).Snapshot()
	state.LinesCleared = 12
	state.Level = 2

	if err := svc.RecordFinalScore(sess, 3400, &state); err != nil {
		t.Fatalf("recording: %v", err)
	}

	if len(store.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(store.records))
	}
	rec := store.records[0]
	if rec.PlayerID != "player_1" || rec.PlayerName != "Alice" {
		t.Errorf("unexpected identity %q/%q", rec.PlayerID, rec.PlayerName)
	}
	if rec.Score != 3400 || rec.LinesCleared != 12 || rec.Level != 2 {
		t.Errorf("unexpected counters score=%d lines=%d level=%d",
			rec.Score, rec.LinesCleared, rec.Level)
	}
}

func TestRecordFinalScore_WithoutSnapshot(t *testing.T) {
	store := &MockStore{}
	svc := NewScoreService(store)

	sess := session.NewSession("player_2", "Bob", nil)
	if err := svc.RecordFinalScore(sess, 500, nil); err != nil {
		t.Fatalf("recording: %v", err)
	}

	rec := store.records[0]
	if rec.Score != 500 || rec.LinesCleared != 0 || rec.Level != 1 {
		t.Errorf("a snapshot-less record carries the score alone, got %+v", rec)
	}
}

func TestRecordFinalScore_PropagatesStoreError(t *testing.T) {
	store := &MockStore{saveErr: errors.New("database down")}
	svc := NewScoreService(store)

	sess := session.NewSession("player_1", "Alice", nil)
	if err := svc.RecordFinalScore(sess, 100, nil); err == nil {
		t.Fatal("expected the store error to surface")
	}
}

func TestTopScores(t *testing.T) {
	store := &MockStore{records: []models.GameRecord{
		{PlayerID: "player_1", Score: 100},
		{PlayerID: "player_2", Score: 900},
		{PlayerID: "player_3", Score: 400},
	}}
	svc := NewScoreService(store)

	top, err := svc.TopScores(2)
	if err != nil {
		t.Fatalf("querying: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 records, got %d", len(top))
	}
	if top[0].Score != 900 || top[1].Score != 400 {
		t.Errorf("expected highest scores first, got %d then %d", top[0].Score, top[1].Score)
	}
}
