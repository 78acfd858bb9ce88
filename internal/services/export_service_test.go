package services

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/jasminevsadler/Ramp-Tracker/internal/models"
)

func TestExportServiceFilenameAndContent(t *testing.T) {
	store := newTestViewStore()
	store.entries = []*models.Entry{{
		ID:            "e1",
		Timestamp:     ms(16, 9),
		StudentID:     "s1",
		SkillID:       "k1",
		Rating:        1,
		PromptDetails: "verbal cue",
	}}

	svc := NewExportService(NewViewService(store))
	svc.now = func() time.Time { return time.Date(2025, 9, 18, 3, 0, 0, 0, time.UTC) }

	res := svc.ExportCSV(Filter{})
	if res.Filename != "ramp-it-up-data-2025-09-18.csv" {
		t.Fatalf("filename = %q", res.Filename)
	}
	if res.ContentType != "text/csv; charset=utf-8" {
		t.Fatalf("content type = %q", res.ContentType)
	}

	records, err := csv.NewReader(strings.NewReader(string(res.Data))).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want header + 1 row", len(records))
	}
	row := records[1]
	if row[col("rating")] != "1" {
		t.Fatalf("rating = %q, want 1", row[col("rating")])
	}
	if row[col("prompt_details")] != "verbal cue" {
		t.Fatalf("prompt_details = %q", row[col("prompt_details")])
	}
	if row[col("student")] != "Jasmine" {
		t.Fatalf("student = %q", row[col("student")])
	}
}

func TestExportServiceAppliesFilter(t *testing.T) {
	store := newTestViewStore()
	svc := NewExportService(NewViewService(store))

	res := svc.ExportCSV(Filter{StudentID: "s2"})
	records, err := csv.NewReader(strings.NewReader(string(res.Data))).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want header + 1 filtered row", len(records))
	}
	if records[1][col("student_id")] != "s2" {
		t.Fatalf("student_id = %q, want s2", records[1][col("student_id")])
	}
}
