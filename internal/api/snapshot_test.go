package api

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jasminevsadler/Ramp-Tracker/internal/models"
)

func TestLoadDatasetMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")
	ds := LoadDataset(path)
	if len(ds.Students) != 4 {
		t.Fatalf("students = %d, want 4 defaults", len(ds.Students))
	}
	if ds.SchemaVersion != models.SchemaVersion {
		t.Fatalf("schemaVersion = %d, want %d", ds.SchemaVersion, models.SchemaVersion)
	}
}

func TestLoadDatasetCorruptBlobUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	ds := LoadDataset(path)
	if len(ds.Students) != 4 || len(ds.Reinforcers) != 10 {
		t.Fatalf("expected default dataset, got %d students / %d reinforcers", len(ds.Students), len(ds.Reinforcers))
	}
}

func TestReadSnapshotFillsForwardVersionZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	legacy := `{"students":[{"id":"s1","name":"Jasmine"}],"skills":[],"reinforcers":[]}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}
	ds, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot returned error: %v", err)
	}
	if ds.SchemaVersion != models.SchemaVersion {
		t.Fatalf("schemaVersion = %d, want filled-forward %d", ds.SchemaVersion, models.SchemaVersion)
	}
	if ds.Entries == nil {
		t.Fatal("entries should be non-nil after fill-forward")
	}
	if len(ds.Students) != 1 || ds.Students[0].Name != "Jasmine" {
		t.Fatalf("unexpected students: %+v", ds.Students)
	}
}

func TestSnapshotStorePersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "tracker.json")

	st := NewSnapshotStore(path)
	st.AddStudent(&models.Student{ID: "s9", Name: "Theo"})
	st.UpsertEntry(&models.Entry{ID: "e1", Timestamp: 1700000000000, StudentID: "s9", SkillID: "k1", Rating: 2})
	st.SetOrg(models.Org{TeamName: "Room 12"})

	reloaded := NewSnapshotStore(path)
	if got := reloaded.GetStudent("s9"); got == nil || got.Name != "Theo" {
		t.Fatalf("student s9 not persisted: %+v", got)
	}
	entries := reloaded.ListEntries()
	if len(entries) != 1 || entries[0].ID != "e1" {
		t.Fatalf("entries not persisted: %+v", entries)
	}
	if reloaded.Org().TeamName != "Room 12" {
		t.Fatalf("org not persisted: %+v", reloaded.Org())
	}
}

func TestUpsertEntryReplaceInPlaceElsePrepend(t *testing.T) {
	st := newMemoryStore(&models.Dataset{})
	st.UpsertEntry(&models.Entry{ID: "a", Rating: 0})
	st.UpsertEntry(&models.Entry{ID: "b", Rating: 0})
	entries := st.ListEntries()
	if len(entries) != 2 || entries[0].ID != "b" {
		t.Fatalf("new entries should prepend, got %+v", entries)
	}

	st.UpsertEntry(&models.Entry{ID: "a", Rating: 2})
	entries = st.ListEntries()
	if len(entries) != 2 {
		t.Fatalf("upsert with existing id should replace, got %d entries", len(entries))
	}
	if entries[1].ID != "a" || entries[1].Rating != 2 {
		t.Fatalf("entry a should be replaced in place: %+v", entries)
	}
}

func TestDeleteEntryUnknownID(t *testing.T) {
	st := newMemoryStore(&models.Dataset{})
	st.UpsertEntry(&models.Entry{ID: "a"})
	if !st.DeleteEntry("a") {
		t.Fatal("delete of existing entry should report true")
	}
	if st.DeleteEntry("a") {
		t.Fatal("delete of unknown entry should report false")
	}
}

func TestFindUserByEmailCaseInsensitive(t *testing.T) {
	st := newMemoryStore(&models.Dataset{})
	st.AddUser(&models.User{ID: "u1", Email: "Staff@Example.com"})
	if got := st.FindUserByEmail("staff@example.com"); got == nil || got.ID != "u1" {
		t.Fatalf("lookup should be case-insensitive, got %+v", got)
	}
	if got := st.FindUserByEmail("other@example.com"); got != nil {
		t.Fatalf("unknown email should return nil, got %+v", got)
	}
}
