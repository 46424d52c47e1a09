package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"studytracker/internal/modules/session/domain"
	sessionout "studytracker/internal/modules/session/port/out"
)

// FileLastStartStore keeps the repeat state in a small JSON file so separate
// CLI invocations and the TUI share it.
type FileLastStartStore struct {
	path string
}

func NewFileLastStartStore(dataDir string) sessionout.LastStartStore {
	return &FileLastStartStore{path: filepath.Join(dataDir, "last-start.json")}
}

func (s *FileLastStartStore) SaveLast(_ context.Context, last domain.LastStart) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create last start dir: %w", err)
	}
	payload, err := json.MarshalIndent(last, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal last start: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write last start: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace last start: %w", err)
	}
	return nil
}

func (s *FileLastStartStore) LoadLast(_ context.Context) (domain.LastStart, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.LastStart{}, nil
		}
		return domain.LastStart{}, fmt.Errorf("read last start: %w", err)
	}
	last := domain.LastStart{}
	if err := json.Unmarshal(payload, &last); err != nil {
		return domain.LastStart{}, fmt.Errorf("decode last start: %w", err)
	}
	return last, nil
}

// MemoryLastStartStore holds the repeat state in memory only.
type MemoryLastStartStore struct {
	last domain.LastStart
}

func NewMemoryLastStartStore() *MemoryLastStartStore {
	return &MemoryLastStartStore{}
}

func (s *MemoryLastStartStore) SaveLast(_ context.Context, last domain.LastStart) error {
	s.last = last
	return nil
}

func (s *MemoryLastStartStore) LoadLast(context.Context) (domain.LastStart, error) {
	return s.last, nil
}
