package services

import (
	"errors"
	"testing"
	"time"

	"github.com/jasminevsadler/Ramp-Tracker/internal/models"
)

type stubEntryStore struct {
	entries []*models.Entry
}

func (s *stubEntryStore) UpsertEntry(e *models.Entry) {
	for i, existing := range s.entries {
		if existing.ID == e.ID {
			s.entries[i] = e
			return
		}
	}
	s.entries = append([]*models.Entry{e}, s.entries...)
}

func (s *stubEntryStore) DeleteEntry(id string) bool {
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

func newTestEntryService(store *stubEntryStore) *EntryService {
	svc := NewEntryService(store)
	svc.now = func() time.Time { return time.Date(2025, 9, 17, 10, 30, 0, 0, time.Local) }
	svc.idGenerator = func() string { return "E1" }
	return svc
}

func TestSaveRejectsMissingPromptDetails(t *testing.T) {
	store := &stubEntryStore{}
	svc := newTestEntryService(store)

	_, err := svc.Save(EntryDraft{Rating: 1, PromptDetails: "   "})
	if !errors.Is(err, ErrMissingPromptDetails) {
		t.Fatalf("err = %v, want ErrMissingPromptDetails", err)
	}
	if len(store.entries) != 0 {
		t.Fatalf("store has %d entries, want 0", len(store.entries))
	}
}

func TestSaveRejectsOutOfRangeRating(t *testing.T) {
	svc := newTestEntryService(&stubEntryStore{})
	for _, rating := range []int{-1, 3, 42} {
		if _, err := svc.Save(EntryDraft{Rating: rating}); !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("rating %d: err = %v, want ErrInvalidRating", rating, err)
		}
	}
}

func TestSaveNormalizesPromptDetails(t *testing.T) {
	store := &stubEntryStore{}
	svc := newTestEntryService(store)

	e, err := svc.Save(EntryDraft{Rating: 2, PromptDetails: "left over from an edit"})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if e.PromptDetails != "" {
		t.Fatalf("promptDetails = %q, want empty for rating != 1", e.PromptDetails)
	}

	e, err = svc.Save(EntryDraft{Rating: 1, PromptDetails: "  verbal cue  "})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if e.PromptDetails != "verbal cue" {
		t.Fatalf("promptDetails = %q, want trimmed %q", e.PromptDetails, "verbal cue")
	}
}

func TestSaveClearsReinforcerOtherUnlessSentinel(t *testing.T) {
	store := &stubEntryStore{}
	svc := newTestEntryService(store)

	e, err := svc.Save(EntryDraft{ID: "X", Rating: 0, Reinforcer: models.ReinforcerOtherID, ReinforcerOther: "movie time"})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if e.ReinforcerOther != "movie time" {
		t.Fatalf("reinforcerOther = %q, want retained value", e.ReinforcerOther)
	}

	// Editing the same entry to a regular reinforcer must clear the
	// companion text.
	e, err = svc.Save(EntryDraft{ID: "X", Rating: 0, Reinforcer: "r2", ReinforcerOther: "movie time"})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if e.ReinforcerOther != "" {
		t.Fatalf("reinforcerOther = %q, want cleared on edit", e.ReinforcerOther)
	}
	if len(store.entries) != 1 {
		t.Fatalf("store has %d entries, want 1 after upsert of same id", len(store.entries))
	}
}

func TestSaveClearsGoalTripletWhenExcluded(t *testing.T) {
	svc := newTestEntryService(&stubEntryStore{})

	e, err := svc.Save(EntryDraft{Rating: 0, GoalBaseline: "40%", GoalTarget: "80%", GoalMastery: "2 weeks"})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if e.GoalBaseline != "" || e.GoalTarget != "" || e.GoalMastery != "" {
		t.Fatalf("goal triplet = %q/%q/%q, want all empty without include flag", e.GoalBaseline, e.GoalTarget, e.GoalMastery)
	}

	e, err = svc.Save(EntryDraft{Rating: 0, IncludeGoal: true, GoalBaseline: "40%", GoalTarget: "80%", GoalMastery: "2 weeks"})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if e.GoalBaseline != "40%" || e.GoalTarget != "80%" || e.GoalMastery != "2 weeks" {
		t.Fatalf("goal triplet = %q/%q/%q, want retained", e.GoalBaseline, e.GoalTarget, e.GoalMastery)
	}
}

func TestSaveNormalizesNegativeDuration(t *testing.T) {
	svc := newTestEntryService(&stubEntryStore{})
	neg := -5
	e, err := svc.Save(EntryDraft{Rating: 0, DurationMin: &neg})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if e.DurationMin != nil {
		t.Fatalf("durationMin = %v, want absent", *e.DurationMin)
	}
}

func TestSaveResolvesTimestampFromDateTime(t *testing.T) {
	svc := newTestEntryService(&stubEntryStore{})
	e, err := svc.Save(EntryDraft{Rating: 0, Date: "2025-09-16", Time: "14:05"})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	want := time.Date(2025, 9, 16, 14, 5, 0, 0, time.Local).UnixMilli()
	if e.Timestamp != want {
		t.Fatalf("timestamp = %d, want %d", e.Timestamp, want)
	}
}

func TestSaveFallsBackToClockOnBadDate(t *testing.T) {
	svc := newTestEntryService(&stubEntryStore{})
	e, err := svc.Save(EntryDraft{Rating: 0, Date: "not-a-date", Time: "99:99"})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	want := time.Date(2025, 9, 17, 10, 30, 0, 0, time.Local).UnixMilli()
	if e.Timestamp != want {
		t.Fatalf("timestamp = %d, want clock fallback %d", e.Timestamp, want)
	}
}

func TestSaveGeneratesIDWhenAbsent(t *testing.T) {
	store := &stubEntryStore{}
	svc := newTestEntryService(store)
	e, err := svc.Save(EntryDraft{Rating: 0})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if e.ID != "E1" {
		t.Fatalf("id = %q, want generated id", e.ID)
	}
}

func TestSaveIsIdempotentForIdenticalInput(t *testing.T) {
	store := &stubEntryStore{}
	svc := newTestEntryService(store)
	draft := EntryDraft{ID: "same", Rating: 2, Date: "2025-09-16", Time: "09:00", Notes: "n"}
	if _, err := svc.Save(draft); err != nil {
		t.Fatalf("first Save returned error: %v", err)
	}
	if _, err := svc.Save(draft); err != nil {
		t.Fatalf("second Save returned error: %v", err)
	}
	if len(store.entries) != 1 {
		t.Fatalf("store has %d entries, want 1", len(store.entries))
	}
}

func TestDelete(t *testing.T) {
	store := &stubEntryStore{}
	svc := newTestEntryService(store)
	if _, err := svc.Save(EntryDraft{ID: "gone", Rating: 0}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if !svc.Delete("gone") {
		t.Fatalf("Delete(gone) = false, want true")
	}
	if svc.Delete("gone") {
		t.Fatalf("Delete of unknown id = true, want false")
	}
}
