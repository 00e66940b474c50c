package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/netsnake/internal/games/netsnake"
	"github.com/vovakirdan/netsnake/internal/netsim"
)

func openTestStore(t *testing.T, capacity int) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), capacity)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func result(name string, mode netsim.Mode, score int) netsnake.Result {
	return netsnake.Result{
		SessionID: name + "-session",
		Name:      name,
		Mode:      mode,
		Score:     score,
		AvgMs:     60,
		JitterMs:  12,
		LossPct:   3,
		Reason:    netsnake.ReasonCollision,
		Duration:  42 * time.Second,
		EndedAt:   time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	store, err := Open(dbPath, 0)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if store.Capacity() != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", store.Capacity(), DefaultCapacity)
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t, 20)

	for _, r := range []netsnake.Result{
		result("ana", netsim.ModePing, 100),
		result("bo", netsim.ModeJitter, 50),
		result("cy", netsim.ModeNormal, 200),
	} {
		if _, err := store.SaveResult(r); err != nil {
			t.Fatalf("SaveResult() failed: %v", err)
		}
	}

	entries, err := store.TopResults(0)
	if err != nil {
		t.Fatalf("TopResults() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Score != 200 || entries[1].Score != 100 || entries[2].Score != 50 {
		t.Errorf("Not sorted descending: %d, %d, %d", entries[0].Score, entries[1].Score, entries[2].Score)
	}

	top := entries[0]
	if top.Name != "cy" || top.Mode != netsim.ModeNormal || top.SessionID != "cy-session" {
		t.Errorf("identity not round-tripped: %+v", top)
	}
	if top.AvgMs != 60 || top.JitterMs != 12 || top.LossPct != 3 {
		t.Errorf("network stats not round-tripped: %+v", top)
	}
	if top.Reason != "collision" || top.DurationSecs != 42 {
		t.Errorf("reason/duration = %q/%d", top.Reason, top.DurationSecs)
	}
	if !top.CreatedAt.Equal(time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("created at = %v", top.CreatedAt)
	}
}

func TestStoreTiesKeepInsertionOrder(t *testing.T) {
	store := openTestStore(t, 20)

	for _, name := range []string{"first", "second", "third"} {
		if _, err := store.SaveResult(result(name, netsim.ModePing, 70)); err != nil {
			t.Fatalf("SaveResult() failed: %v", err)
		}
	}

	entries, err := store.TopResults(0)
	if err != nil {
		t.Fatalf("TopResults() failed: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if entries[i].Name != want {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].Name, want)
		}
	}
}

func TestStoreCapacity(t *testing.T) {
	store := openTestStore(t, 5)

	for i := 0; i < 8; i++ {
		if _, err := store.SaveResult(result("p", netsim.ModePing, i*10)); err != nil {
			t.Fatalf("SaveResult() failed: %v", err)
		}
	}

	entries, err := store.TopResults(100)
	if err != nil {
		t.Fatalf("TopResults() failed: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("Expected 5 entries after pruning, got %d", len(entries))
	}
	if entries[0].Score != 70 || entries[4].Score != 30 {
		t.Errorf("wrong entries kept: top %d, bottom %d", entries[0].Score, entries[4].Score)
	}

	// A worse score than the whole board is pruned immediately
	if _, err := store.SaveResult(result("late", netsim.ModePing, 0)); err != nil {
		t.Fatalf("SaveResult() failed: %v", err)
	}
	entries, _ = store.TopResults(0)
	for _, e := range entries {
		if e.Name == "late" {
			t.Error("score below the board was kept")
		}
	}
}

func TestStoreHighScoreAndClear(t *testing.T) {
	store := openTestStore(t, 20)

	if hs, err := store.HighScore(); err != nil || hs != 0 {
		t.Errorf("empty HighScore() = %d, %v", hs, err)
	}

	store.SaveResult(result("a", netsim.ModePing, 30))
	store.SaveResult(result("b", netsim.ModePing, 90))

	if hs, err := store.HighScore(); err != nil || hs != 90 {
		t.Errorf("HighScore() = %d, %v; want 90", hs, err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	entries, err := store.TopResults(0)
	if err != nil {
		t.Fatalf("TopResults() failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty board after Clear, got %d", len(entries))
	}
}

func TestStoreStatsByMode(t *testing.T) {
	store := openTestStore(t, 20)

	store.SaveResult(result("a", netsim.ModePing, 40))
	store.SaveResult(result("b", netsim.ModePing, 60))
	store.SaveResult(result("c", netsim.ModeJitter, 10))

	stats, err := store.StatsByMode()
	if err != nil {
		t.Fatalf("StatsByMode() failed: %v", err)
	}

	ping := stats[netsim.ModePing]
	if ping.Games != 2 || ping.HighScore != 60 || ping.AvgScore != 50 {
		t.Errorf("ping stats = %+v", ping)
	}
	if jitter := stats[netsim.ModeJitter]; jitter.Games != 1 || jitter.HighScore != 10 {
		t.Errorf("jitter stats = %+v", jitter)
	}
	if _, ok := stats[netsim.ModeNormal]; ok {
		t.Error("unexpected normal-mode stats")
	}
}

func TestStorePersistsAcrossOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath, 20)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	store.SaveResult(result("keep", netsim.ModeNormal, 120))
	store.Close()

	reopened, err := Open(dbPath, 20)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	entries, err := reopened.TopResults(0)
	if err != nil {
		t.Fatalf("TopResults() failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "keep" {
		t.Errorf("entries after reopen = %+v", entries)
	}
}
