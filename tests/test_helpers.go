package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"game-forge/models"
	"game-forge/providers"
)

// EnsureTestStorageDirs creates a temporary games directory for tests.
func EnsureTestStorageDirs() (gamesDir string, cleanup func(), err error) {
	tempDir, err := os.MkdirTemp("", "game_forge_test_*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir for tests: %w", err)
	}

	testGamesDir := filepath.Join(tempDir, "games")
	if err := os.MkdirAll(testGamesDir, 0755); err != nil {
		os.RemoveAll(tempDir)
		return "", nil, fmt.Errorf("failed to create directory %s: %w", testGamesDir, err)
	}

	cleanupFunc := func() {
		os.RemoveAll(tempDir)
	}
	return testGamesDir, cleanupFunc, nil
}

// WriteGameFixture lays out a game directory the way the store does, without
// going through it. A nil record skips metadata.json; rawMetadata, when set,
// is written verbatim instead of the encoded record.
func WriteGameFixture(gamesDir, id, html string, record *models.GameRecord, rawMetadata string) error {
	dir := filepath.Join(gamesDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(html), 0644); err != nil {
		return err
	}

	switch {
	case rawMetadata != "":
		return os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(rawMetadata), 0644)
	case record != nil:
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dir, "metadata.json"), data, 0644)
	}
	return nil
}

// FakeGenerator is a scripted providers.TextGenerator that records requests.
type FakeGenerator struct {
	mu       sync.Mutex
	Response string
	Err      error
	Requests []providers.Request
}

// GenerateText implements providers.TextGenerator.
func (f *FakeGenerator) GenerateText(_ context.Context, req providers.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}

// LastRequest returns the most recent request, or the zero value.
func (f *FakeGenerator) LastRequest() providers.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Requests) == 0 {
		return providers.Request{}
	}
	return f.Requests[len(f.Requests)-1]
}

// Calls returns how many requests were made.
func (f *FakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

// Reset clears recorded requests and scripted results.
func (f *FakeGenerator) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = nil
	f.Response = ""
	f.Err = nil
}
