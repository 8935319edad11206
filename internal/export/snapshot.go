package export

import (
	"encoding/json"
	"fmt"
	"os"

	"curricula/internal/domain"
)

// WriteSnapshot stores the build summary together with the full concept
// list as indented JSON.
func WriteSnapshot(path string, mc *domain.MasterCurriculum) error {
	data, err := json.MarshalIndent(mc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (*domain.MasterCurriculum, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var mc domain.MasterCurriculum
	if err := json.Unmarshal(data, &mc); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &mc, nil
}
