package storage

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/vovakirdan/arena/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	tmpDir := t.TempDir()
	store, err := Open(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenCreatesDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "dir", "arena.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	matches, err := store.RecentMatches(10)
	if err != nil {
		t.Fatalf("Failed to query fresh store: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Expected empty history, got %d", len(matches))
	}
}

func TestSessionIDIsStable(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	first, err := store.SessionID()
	if err != nil {
		t.Fatalf("SessionID() error: %v", err)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Errorf("SessionID() = %q is not a UUID: %v", first, err)
	}
	again, _ := store.SessionID()
	if again != first {
		t.Errorf("SessionID() changed within a store: %q != %q", again, first)
	}
	store.Close()

	// Survives reopening
	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer store.Close()
	reopened, err := store.SessionID()
	if err != nil {
		t.Fatalf("SessionID() error: %v", err)
	}
	if reopened != first {
		t.Errorf("SessionID() after reopen = %q, expected %q", reopened, first)
	}
}

func TestResetSessionID(t *testing.T) {
	store := openTestStore(t)

	first, _ := store.SessionID()
	if err := store.ResetSessionID(); err != nil {
		t.Fatalf("ResetSessionID() error: %v", err)
	}
	second, err := store.SessionID()
	if err != nil {
		t.Fatalf("SessionID() error: %v", err)
	}
	if second == first {
		t.Error("Expected a fresh session id after reset")
	}
}

func TestSaveAndRecentMatches(t *testing.T) {
	store := openTestStore(t)

	records := []MatchRecord{
		{RoomCode: "AAAA", SessionID: "s", LocalSeat: 0, Winner: 0, Scores: [4]int{5, 1, 2, 0}, Reason: "score limit"},
		{RoomCode: "BBBB", SessionID: "s", LocalSeat: 2, Winner: 1, Scores: [4]int{0, 7, 3, 1}},
		{RoomCode: "CCCC", SessionID: "s", LocalSeat: 1, Winner: core.NoSeat, Scores: [4]int{4, 4, 0, 0}, Reason: "time up"},
	}
	for _, r := range records {
		id, err := store.SaveMatch(r)
		if err != nil {
			t.Fatalf("SaveMatch() error: %v", err)
		}
		if id <= 0 {
			t.Errorf("Expected positive ID, got %d", id)
		}
	}

	got, err := store.RecentMatches(10)
	if err != nil {
		t.Fatalf("RecentMatches() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 matches, got %d", len(got))
	}

	// Same timestamp resolution: newest insert first by id
	if got[0].RoomCode != "CCCC" {
		t.Errorf("Expected newest match first, got %s", got[0].RoomCode)
	}
	if got[0].Winner != core.NoSeat {
		t.Errorf("Expected tie to round-trip as NoSeat, got %v", got[0].Winner)
	}
	if got[2].Scores != [4]int{5, 1, 2, 0} {
		t.Errorf("Scores = %v", got[2].Scores)
	}
	if got[2].Reason != "score limit" {
		t.Errorf("Reason = %q", got[2].Reason)
	}
	if got[2].CreatedAt.IsZero() {
		t.Error("Expected created_at to be parsed")
	}

	limited, err := store.RecentMatches(2)
	if err != nil {
		t.Fatalf("RecentMatches() error: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected limit to apply, got %d", len(limited))
	}
}

func TestMatchRecordHelpers(t *testing.T) {
	tests := []struct {
		name      string
		rec       MatchRecord
		wantWon   bool
		wantScore int
	}{
		{"won", MatchRecord{LocalSeat: 1, Winner: 1, Scores: [4]int{0, 9, 0, 0}}, true, 9},
		{"lost", MatchRecord{LocalSeat: 3, Winner: 0, Scores: [4]int{5, 0, 0, 2}}, false, 2},
		{"tie", MatchRecord{LocalSeat: 0, Winner: core.NoSeat, Scores: [4]int{3, 3, 0, 0}}, false, 3},
		{"spectator", MatchRecord{LocalSeat: core.NoSeat, Winner: core.NoSeat}, false, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rec.Won(); got != tc.wantWon {
				t.Errorf("Won() = %v, expected %v", got, tc.wantWon)
			}
			if got := tc.rec.LocalScore(); got != tc.wantScore {
				t.Errorf("LocalScore() = %d, expected %d", got, tc.wantScore)
			}
		})
	}
}

func TestMatchStats(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.MatchStats()
	if err != nil {
		t.Fatalf("MatchStats() error: %v", err)
	}
	if stats.Played != 0 || !stats.LastMatch.IsZero() {
		t.Errorf("Expected empty stats, got %+v", stats)
	}

	store.SaveMatch(MatchRecord{SessionID: "s", LocalSeat: 0, Winner: 0, Scores: [4]int{6, 0, 0, 0}})
	store.SaveMatch(MatchRecord{SessionID: "s", LocalSeat: 2, Winner: 1, Scores: [4]int{0, 5, 8, 0}})
	store.SaveMatch(MatchRecord{SessionID: "s", LocalSeat: 1, Winner: core.NoSeat, Scores: [4]int{2, 2, 0, 0}})

	stats, err = store.MatchStats()
	if err != nil {
		t.Fatalf("MatchStats() error: %v", err)
	}
	if stats.Played != 3 {
		t.Errorf("Played = %d, expected 3", stats.Played)
	}
	if stats.Wins != 1 {
		t.Errorf("Wins = %d, expected 1", stats.Wins)
	}
	if stats.Ties != 1 {
		t.Errorf("Ties = %d, expected 1", stats.Ties)
	}
	if stats.BestScore != 8 {
		t.Errorf("BestScore = %d, expected 8", stats.BestScore)
	}
	if stats.LastMatch.IsZero() {
		t.Error("Expected LastMatch to be set")
	}
}

func TestClearMatches(t *testing.T) {
	store := openTestStore(t)
	store.SaveMatch(MatchRecord{SessionID: "s", LocalSeat: 0, Winner: 0})

	if err := store.ClearMatches(); err != nil {
		t.Fatalf("ClearMatches() error: %v", err)
	}
	got, _ := store.RecentMatches(10)
	if len(got) != 0 {
		t.Errorf("Expected empty history after clear, got %d", len(got))
	}
}
