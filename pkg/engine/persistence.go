package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// SaveFile writes the table to path as JSON. The snapshot is written to a
// temporary file in the same directory and renamed into place, so a crash
// mid-write never corrupts an existing table.
func (t *QTable) SaveFile(path string) error {
	entries := t.Entries()
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode q-table: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp q-table file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write q-table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close q-table file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace q-table file: %w", err)
	}

	log.Info().Int("states", len(entries)).Str("path", path).Msg("q-table saved")
	return nil
}

// LoadQTable restores a table from path. A missing file is a cold start and
// yields an empty table; a corrupt or unreadable file is logged and likewise
// yields an empty table. Learning must never fail because the store did.
func LoadQTable(path string) *QTable {
	table := NewQTable()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", path).Msg("no saved q-table, starting fresh")
		} else {
			log.Error().Err(err).Str("path", path).Msg("failed to read q-table, starting fresh")
		}
		return table
	}

	var entries map[string]map[string]float64
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to decode q-table, starting fresh")
		return table
	}

	table.Merge(entries)
	log.Info().Int("states", table.Len()).Str("path", path).Msg("q-table loaded")
	return table
}
