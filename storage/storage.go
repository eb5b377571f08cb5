package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"game-forge/models"
)

const (
	documentFileName = "index.html"
	metadataFileName = "metadata.json"
)

// ErrNotFound is returned when a game has no stored document.
var ErrNotFound = errors.New("game not found")

// Store keeps one directory per game under Root, holding the HTML document
// and a JSON metadata sidecar.
type Store struct {
	root string
}

// NewStore returns a Store rooted at root. The directory is not created.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the directory the store writes into.
func (s *Store) Root() string {
	return s.root
}

// EnsureStorageDirs creates the store root if it doesn't exist.
func (s *Store) EnsureStorageDirs() error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", s.root, err)
	}
	return nil
}

func (s *Store) gameDir(id string) string {
	return filepath.Join(s.root, id)
}

// DocumentPath returns the HTML document path for a validated id.
func (s *Store) DocumentPath(id string) (string, error) {
	if err := ValidateGameID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.gameDir(id), documentFileName), nil
}

// Create writes the document and metadata for a new game. An existing
// directory is reused. The returned record carries the document path.
func (s *Store) Create(id, html string, record models.GameRecord) (*models.GameRecord, error) {
	if err := ValidateGameID(id); err != nil {
		return nil, err
	}

	dir := s.gameDir(id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create game directory '%s': %w", dir, err)
	}

	documentPath := filepath.Join(dir, documentFileName)
	if err := os.WriteFile(documentPath, []byte(html), 0644); err != nil {
		return nil, fmt.Errorf("failed to write game HTML to '%s': %w", documentPath, err)
	}

	record.ID = id
	record.FilePath = documentPath
	metadata, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata for game '%s': %w", id, err)
	}

	metadataPath := filepath.Join(dir, metadataFileName)
	if err := os.WriteFile(metadataPath, metadata, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata to '%s': %w", metadataPath, err)
	}
	return &record, nil
}

// ReadDocument returns the stored HTML document, read fresh from disk.
func (s *Store) ReadDocument(id string) (string, error) {
	documentPath, err := s.DocumentPath(id)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(documentPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read game HTML from '%s': %w", documentPath, err)
	}
	return string(content), nil
}

// Read returns the stored document and its metadata. Missing or malformed
// metadata yields an empty record rather than an error.
func (s *Store) Read(id string) (string, models.GameRecord, error) {
	html, err := s.ReadDocument(id)
	if err != nil {
		return "", models.GameRecord{}, err
	}

	record, err := s.readMetadata(id)
	if err != nil {
		record = models.GameRecord{}
	}
	return html, record, nil
}

// Update overwrites the document of an existing game. It reports false,
// without error, when the game directory does not exist.
func (s *Store) Update(id, html string) (bool, error) {
	documentPath, err := s.DocumentPath(id)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(s.gameDir(id))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat game directory for '%s': %w", id, err)
	}
	if !info.IsDir() {
		return false, nil
	}

	if err := os.WriteFile(documentPath, []byte(html), 0644); err != nil {
		return false, fmt.Errorf("failed to write game HTML to '%s': %w", documentPath, err)
	}
	return true, nil
}

// List returns the metadata of every readable game, newest first. Entries
// that are not valid game directories or lack usable metadata are skipped.
func (s *Store) List() ([]models.GameRecord, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.GameRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read games directory '%s': %w", s.root, err)
	}

	games := make([]models.GameRecord, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || ValidateGameID(entry.Name()) != nil {
			continue
		}
		record, err := s.readMetadata(entry.Name())
		if err != nil {
			continue
		}
		games = append(games, record)
	}

	// Empty timestamps sort last.
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].CreatedAt > games[j].CreatedAt
	})
	return games, nil
}

func (s *Store) readMetadata(id string) (models.GameRecord, error) {
	var record models.GameRecord
	content, err := os.ReadFile(filepath.Join(s.gameDir(id), metadataFileName))
	if err != nil {
		return record, err
	}
	if err := json.Unmarshal(content, &record); err != nil {
		return models.GameRecord{}, err
	}
	return record, nil
}
