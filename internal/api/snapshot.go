package api

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/jasminevsadler/Ramp-Tracker/internal/models"
)

// ReadSnapshot parses the JSON blob at path without any fallback. Callers
// that need lenient semantics use LoadDataset instead.
func ReadSnapshot(path string) (*models.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ds models.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, err
	}
	fillForward(&ds)
	return &ds, nil
}

// LoadDataset reads the single serialized blob at path. A missing file,
// unreadable file, or unparseable content yields the built-in default
// dataset; load problems are logged, never surfaced.
func LoadDataset(path string) *models.Dataset {
	ds, err := ReadSnapshot(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("snapshot: load %s: %v (using defaults)", path, err)
		}
		return models.DefaultDataset()
	}
	return ds
}

// fillForward upgrades older blobs in place. Version 0 snapshots were
// written before the schemaVersion field existed and carry every field
// this code reads, so only missing collections need defaults; the current
// version is stamped on the next save.
func fillForward(ds *models.Dataset) {
	if ds.SchemaVersion >= models.SchemaVersion {
		return
	}
	ds.SchemaVersion = models.SchemaVersion
	if ds.Students == nil {
		ds.Students = []*models.Student{}
	}
	if ds.Skills == nil {
		ds.Skills = []*models.Skill{}
	}
	if ds.Reinforcers == nil {
		ds.Reinforcers = []*models.Reinforcer{}
	}
	if ds.Entries == nil {
		ds.Entries = []*models.Entry{}
	}
}

// NewSnapshotStore hydrates a memory store from the blob at path and
// rewrites the whole blob synchronously after every mutation (last writer
// wins). Write failures are logged and swallowed; the in-memory dataset
// stays authoritative for the process lifetime.
func NewSnapshotStore(path string) Store {
	st := newMemoryStore(LoadDataset(path))
	st.persist = func(ds *models.Dataset) { writeSnapshot(path, ds) }
	return st
}

func writeSnapshot(path string, ds *models.Dataset) {
	b, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		log.Printf("snapshot: encode: %v", err)
		return
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("snapshot: create dir %s: %v", dir, err)
			return
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		log.Printf("snapshot: write %s: %v", path, err)
	}
}
