package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"game-forge/models"
	"game-forge/tests" // Test helpers

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testGamesDir string
var tempStorageCleanup func()

// TestMain sets up a temporary games directory for file storage tests.
func TestMain(m *testing.M) {
	var err error
	testGamesDir, tempStorageCleanup, err = tests.EnsureTestStorageDirs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up temporary test storage dirs: %v\n", err)
		os.Exit(1)
	}

	exitCode := m.Run()

	tempStorageCleanup()
	os.Exit(exitCode)
}

// newTestStore returns a Store over an empty directory inside the temp dir.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := filepath.Join(testGamesDir, strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, os.RemoveAll(root))
	t.Cleanup(func() { os.RemoveAll(root) })
	store := NewStore(root)
	require.NoError(t, store.EnsureStorageDirs())
	return store
}

func TestValidateGameID(t *testing.T) {
	valid := []string{
		"123e4567-e89b-12d3-a456-426614174000",
		NewGameID(),
		"------------------------------------",
		"abcdefabcdefabcdefabcdefabcdefabcdef",
	}
	for _, id := range valid {
		assert.NoError(t, ValidateGameID(id), "expected %q to be accepted", id)
	}

	invalid := []string{
		"",
		"../../etc/passwd",
		"../123e4567-e89b-12d3-a456-4266141740",
		"123e4567-e89b-12d3-a456-42661417400",   // 35 chars
		"123e4567-e89b-12d3-a456-4266141740000", // 37 chars
		"123E4567-E89B-12D3-A456-426614174000",  // uppercase
		"123e4567-e89b-12d3-a456-42661417400g",
		"123e4567/e89b-12d3-a456-426614174000",
		"123e4567-e89b-12d3-a456-426614174000\n",
		" 123e4567-e89b-12d3-a456-42661417400",
		"..",
	}
	for _, id := range invalid {
		err := ValidateGameID(id)
		assert.ErrorIs(t, err, ErrInvalidGameID, "expected %q to be rejected", id)
	}
}

func TestNewGameIDIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewGameID()
		require.NoError(t, ValidateGameID(id))
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

// TestEnsureStorageDirsFunctionality checks root creation and idempotency.
func TestEnsureStorageDirsFunctionality(t *testing.T) {
	root := filepath.Join(testGamesDir, "ensure", "nested")
	t.Cleanup(func() { os.RemoveAll(filepath.Join(testGamesDir, "ensure")) })
	store := NewStore(root)

	require.NoError(t, store.EnsureStorageDirs(), "EnsureStorageDirs should not return an error on first run")
	assert.DirExists(t, root)

	require.NoError(t, store.EnsureStorageDirs(), "EnsureStorageDirs should be idempotent")
	assert.DirExists(t, root)
}

func TestCreate(t *testing.T) {
	store := newTestStore(t)

	t.Run("Writes document and metadata", func(t *testing.T) {
		id := NewGameID()
		html := "<!DOCTYPE html><html><body>game</body></html>"
		input := models.GameRecord{
			Title:       "Space Dodger",
			Description: "Dodge asteroids",
			Genre:       "Arcade",
			CreatedAt:   models.FormatCreatedAt(time.Now()),
		}

		record, err := store.Create(id, html, input)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, id, record.ID)
		assert.Equal(t, filepath.Join(store.Root(), id, "index.html"), record.FilePath)

		content, err := os.ReadFile(record.FilePath)
		require.NoError(t, err)
		assert.Equal(t, html, string(content))

		raw, err := os.ReadFile(filepath.Join(store.Root(), id, "metadata.json"))
		require.NoError(t, err)
		var onDisk map[string]string
		require.NoError(t, json.Unmarshal(raw, &onDisk))
		assert.Equal(t, map[string]string{
			"id":          id,
			"title":       "Space Dodger",
			"description": "Dodge asteroids",
			"created_at":  input.CreatedAt,
			"genre":       "Arcade",
			"file_path":   record.FilePath,
		}, onDisk)
	})

	t.Run("Existing directory is tolerated", func(t *testing.T) {
		id := NewGameID()
		require.NoError(t, os.MkdirAll(filepath.Join(store.Root(), id), 0755))

		_, err := store.Create(id, "<html></html>", models.GameRecord{Title: "Again"})
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(store.Root(), id, "index.html"))
	})

	t.Run("Invalid id is rejected before touching disk", func(t *testing.T) {
		_, err := store.Create("../escape", "<html></html>", models.GameRecord{})
		assert.ErrorIs(t, err, ErrInvalidGameID)
		assert.NoDirExists(t, filepath.Join(filepath.Dir(store.Root()), "escape"))
	})
}

func TestRead(t *testing.T) {
	store := newTestStore(t)

	t.Run("Document and metadata", func(t *testing.T) {
		id := NewGameID()
		created, err := store.Create(id, "<html>read</html>", models.GameRecord{Title: "Reader", Genre: "Puzzle"})
		require.NoError(t, err)

		html, record, err := store.Read(id)
		require.NoError(t, err)
		assert.Equal(t, "<html>read</html>", html)
		if diff := cmp.Diff(*created, record); diff != "" {
			t.Errorf("Read metadata mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Missing metadata yields empty record", func(t *testing.T) {
		id := NewGameID()
		require.NoError(t, tests.WriteGameFixture(store.Root(), id, "<html>bare</html>", nil, ""))

		html, record, err := store.Read(id)
		require.NoError(t, err)
		assert.Equal(t, "<html>bare</html>", html)
		assert.Equal(t, models.GameRecord{}, record)
	})

	t.Run("Malformed metadata yields empty record", func(t *testing.T) {
		id := NewGameID()
		require.NoError(t, tests.WriteGameFixture(store.Root(), id, "<html>broken</html>", nil, "{not json"))

		html, record, err := store.Read(id)
		require.NoError(t, err)
		assert.Equal(t, "<html>broken</html>", html)
		assert.Equal(t, models.GameRecord{}, record)
	})

	t.Run("Unknown metadata fields are dropped", func(t *testing.T) {
		id := NewGameID()
		raw := fmt.Sprintf(`{"id": %q, "title": "Extra", "genre": "Puzzle", "author": "someone", "plays": 3}`, id)
		require.NoError(t, tests.WriteGameFixture(store.Root(), id, "<html>extra</html>", nil, raw))

		_, record, err := store.Read(id)
		require.NoError(t, err)
		assert.Equal(t, models.GameRecord{ID: id, Title: "Extra", Genre: "Puzzle"}, record)
	})

	t.Run("Unknown id is not found", func(t *testing.T) {
		_, _, err := store.Read(NewGameID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Directory without document is not found", func(t *testing.T) {
		id := NewGameID()
		require.NoError(t, os.MkdirAll(filepath.Join(store.Root(), id), 0755))
		_, err := store.ReadDocument(id)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Invalid id", func(t *testing.T) {
		_, _, err := store.Read("../../etc/passwd")
		assert.ErrorIs(t, err, ErrInvalidGameID)
	})
}

func TestUpdate(t *testing.T) {
	store := newTestStore(t)

	t.Run("Overwrites document and keeps metadata", func(t *testing.T) {
		id := NewGameID()
		created, err := store.Create(id, "<html>v1</html>", models.GameRecord{Title: "Versioned", CreatedAt: "2024-01-01T00:00:00.000000Z"})
		require.NoError(t, err)

		persisted, err := store.Update(id, "<html>v2</html>")
		require.NoError(t, err)
		assert.True(t, persisted)

		html, record, err := store.Read(id)
		require.NoError(t, err)
		assert.Equal(t, "<html>v2</html>", html)
		assert.Equal(t, *created, record)
	})

	t.Run("Unknown game is a silent no-op", func(t *testing.T) {
		id := NewGameID()
		persisted, err := store.Update(id, "<html>ghost</html>")
		require.NoError(t, err)
		assert.False(t, persisted)
		assert.NoDirExists(t, filepath.Join(store.Root(), id))
	})

	t.Run("Invalid id", func(t *testing.T) {
		persisted, err := store.Update("not-a-game", "<html></html>")
		assert.ErrorIs(t, err, ErrInvalidGameID)
		assert.False(t, persisted)
	})
}

func TestList(t *testing.T) {
	t.Run("Sorted newest first, bad entries skipped", func(t *testing.T) {
		store := newTestStore(t)
		now := time.Now()

		oldID, newID, undatedID := NewGameID(), NewGameID(), NewGameID()
		require.NoError(t, tests.WriteGameFixture(store.Root(), oldID, "<html>old</html>",
			&models.GameRecord{ID: oldID, Title: "Old", CreatedAt: models.FormatCreatedAt(now.Add(-time.Hour))}, ""))
		require.NoError(t, tests.WriteGameFixture(store.Root(), newID, "<html>new</html>",
			&models.GameRecord{ID: newID, Title: "New", CreatedAt: models.FormatCreatedAt(now)}, ""))
		require.NoError(t, tests.WriteGameFixture(store.Root(), undatedID, "<html>undated</html>",
			&models.GameRecord{ID: undatedID, Title: "Undated"}, ""))

		// Entries that must not appear.
		require.NoError(t, tests.WriteGameFixture(store.Root(), NewGameID(), "<html>corrupt</html>", nil, "{\"id\": "))
		require.NoError(t, tests.WriteGameFixture(store.Root(), NewGameID(), "<html>no metadata</html>", nil, ""))
		require.NoError(t, tests.WriteGameFixture(store.Root(), "not-a-game-id", "<html>x</html>",
			&models.GameRecord{Title: "Intruder"}, ""))
		require.NoError(t, os.WriteFile(filepath.Join(store.Root(), NewGameID()), []byte("file, not dir"), 0644))

		games, err := store.List()
		require.NoError(t, err)
		require.Len(t, games, 3)
		assert.Equal(t, []string{"New", "Old", "Undated"}, []string{games[0].Title, games[1].Title, games[2].Title})
	})

	t.Run("Empty store", func(t *testing.T) {
		store := newTestStore(t)
		games, err := store.List()
		require.NoError(t, err)
		assert.NotNil(t, games)
		assert.Empty(t, games)
	})

	t.Run("Missing root", func(t *testing.T) {
		store := NewStore(filepath.Join(testGamesDir, "does-not-exist"))
		games, err := store.List()
		require.NoError(t, err)
		assert.Empty(t, games)
	})
}
