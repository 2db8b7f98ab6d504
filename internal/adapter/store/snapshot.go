package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/soria/relaypool/internal/core/domain"
)

// LoadSnapshot reads a pool snapshot from disk. A missing file is not an
// error: the pool simply starts empty.
func LoadSnapshot(path string) ([]*domain.Endpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	var endpoints []*domain.Endpoint
	if err := json.Unmarshal(data, &endpoints); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return endpoints, nil
}

// SaveSnapshot writes every record in the store to disk so counters
// survive a restart. The write goes through a temp file and rename so a
// crash mid-write never corrupts the previous snapshot.
func SaveSnapshot(ctx context.Context, path string, endpointStore domain.EndpointStore) error {
	endpoints, err := endpointStore.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("listing endpoints for snapshot: %w", err)
	}

	sort.Slice(endpoints, func(i, j int) bool {
		return endpoints[i].ID < endpoints[j].ID
	})

	data, err := json.MarshalIndent(endpoints, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// RestoreSnapshot loads the snapshot at path into the store, preserving
// the persisted statistics and active flags.
func RestoreSnapshot(ctx context.Context, path string, memory *Memory) (int, error) {
	endpoints, err := LoadSnapshot(path)
	if err != nil {
		return 0, err
	}
	for _, endpoint := range endpoints {
		record := *endpoint
		memory.records.Store(record.ID, &record)
	}
	return len(endpoints), nil
}
