// Package storage provides the durable seen-set backends: a JSON file for
// single-host deployments and PostgreSQL for anything shared. One logical
// set per GEO region; no TTL — replace mode self-prunes, additive mode grows
// until pruned externally.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/deusflow/trends/internal/diff"
)

// FileStore keeps every region's seen keys in a single JSON file, a map of
// region to sorted key list.
type FileStore struct {
	filePath string
	mu       sync.Mutex
}

// NewFileStore creates a file-backed seen store. The file is created lazily
// on first write.
func NewFileStore(filePath string) *FileStore {
	return &FileStore{filePath: filePath}
}

// Read returns the seen-key set for a region. A missing file or missing
// region is an empty set, not an error.
func (fs *FileStore) Read(region string) (map[string]bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	regions, err := fs.load()
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(regions[region]))
	for _, key := range regions[region] {
		set[key] = true
	}
	return set, nil
}

// Write persists the run's keys for a region. Additive mode unions them into
// the stored set; replace mode rewrites the region's set to exactly keys.
func (fs *FileStore) Write(region string, keys []string, mode diff.Mode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	regions, err := fs.load()
	if err != nil {
		return err
	}

	switch mode {
	case diff.Additive:
		merged := make(map[string]bool, len(regions[region])+len(keys))
		for _, key := range regions[region] {
			merged[key] = true
		}
		for _, key := range keys {
			merged[key] = true
		}
		regions[region] = setToSorted(merged)
	case diff.Replace:
		replaced := make(map[string]bool, len(keys))
		for _, key := range keys {
			replaced[key] = true
		}
		regions[region] = setToSorted(replaced)
	default:
		return fmt.Errorf("unknown store mode %q", mode)
	}

	return fs.save(regions)
}

// Close is a no-op; the file handle is not held between calls.
func (fs *FileStore) Close() error { return nil }

func (fs *FileStore) load() (map[string][]string, error) {
	regions := make(map[string][]string)

	data, err := os.ReadFile(fs.filePath)
	if os.IsNotExist(err) {
		return regions, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read seen file: %w", err)
	}
	if len(data) == 0 {
		return regions, nil
	}

	if err := json.Unmarshal(data, &regions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seen file: %w", err)
	}
	return regions, nil
}

func (fs *FileStore) save(regions map[string][]string) error {
	data, err := json.MarshalIndent(regions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal seen file: %w", err)
	}
	if err := os.WriteFile(fs.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write seen file: %w", err)
	}
	return nil
}

// setToSorted keeps the file diff-friendly between runs.
func setToSorted(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
