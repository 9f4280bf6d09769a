package memberstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-process Store. With Dir set, each set is persisted to a
// JSON file after every mutation, which is the file-backed deployment mode.
type MemStore struct {
	Dir string

	mu   sync.Mutex
	sets map[string]map[string]Entry
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{sets: make(map[string]map[string]Entry)}
}

// NewFileStore loads any existing JSON state from dir, creating it if needed.
func NewFileStore(dir string) (*MemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	s := NewMemStore()
	s.Dir = dir
	for set := range setFiles {
		if err := s.loadSet(set); err != nil {
			return nil, err
		}
	}
	return s, nil
}

var setFiles = map[string]string{
	SetProcessed: "processed-addresses.json",
	SetAlpha:     "alpha-list.json",
	SetBlacklist: "twitter-blacklist.json",
}

type fileEntry struct {
	Username string `json:"username"`
	Note     string `json:"description,omitempty"`
	AddedAt  string `json:"addedAt"`
}

func (s *MemStore) setMap(set string) map[string]Entry {
	m, ok := s.sets[set]
	if !ok {
		m = make(map[string]Entry)
		s.sets[set] = m
	}
	return m
}

func (s *MemStore) Contains(ctx context.Context, set, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sets[set][key]
	return ok, nil
}

func (s *MemStore) Add(ctx context.Context, set string, keys ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.setMap(set)
	added := 0
	for _, key := range keys {
		if _, ok := m[key]; ok {
			continue
		}
		m[key] = Entry{Name: key, AddedAt: time.Now().UTC()}
		added++
	}
	if added == 0 {
		return 0, nil
	}
	return added, s.saveSet(set)
}

func (s *MemStore) AddWithNote(ctx context.Context, set, key, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setMap(set)[key] = Entry{Name: key, Note: note, AddedAt: time.Now().UTC()}
	return s.saveSet(set)
}

func (s *MemStore) Remove(ctx context.Context, set, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.sets[set]
	if _, ok := m[key]; !ok {
		return false, nil
	}
	delete(m, key)
	return true, s.saveSet(set)
}

func (s *MemStore) Count(ctx context.Context, set string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.sets[set])), nil
}

func (s *MemStore) List(ctx context.Context, set string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, 0, len(s.sets[set]))
	for _, e := range s.sets[set] {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (s *MemStore) Note(ctx context.Context, set, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets[set][key].Note, nil
}

// caller must hold mu
func (s *MemStore) saveSet(set string) error {
	if s.Dir == "" {
		return nil
	}
	name, ok := setFiles[set]
	if !ok {
		return fmt.Errorf("no file mapping for set %q", set)
	}
	entries := make([]fileEntry, 0, len(s.sets[set]))
	for _, e := range s.sets[set] {
		entries = append(entries, fileEntry{
			Username: e.Name,
			Note:     e.Note,
			AddedAt:  e.AddedAt.Format(time.RFC3339),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Username < entries[j].Username })
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Dir, name), raw, 0o644)
}

func (s *MemStore) loadSet(set string) error {
	raw, err := os.ReadFile(filepath.Join(s.Dir, setFiles[set]))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var entries []fileEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("parsing %s: %w", setFiles[set], err)
	}
	m := make(map[string]Entry, len(entries))
	for _, fe := range entries {
		e := Entry{Name: fe.Username, Note: fe.Note}
		if t, err := time.Parse(time.RFC3339, fe.AddedAt); err == nil {
			e.AddedAt = t
		}
		m[fe.Username] = e
	}
	s.sets[set] = m
	return nil
}
