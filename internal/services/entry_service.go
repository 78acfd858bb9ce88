package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jasminevsadler/Ramp-Tracker/internal/models"
)

// EntryStore abstracts the persistence operations required by EntryService.
type EntryStore interface {
	UpsertEntry(e *models.Entry)
	DeleteEntry(id string) bool
}

// EntryDraft mirrors the inbound form payload for one observation. Date and
// Time carry the combined clock input; Timestamp is honored only when both
// are empty (e.g. programmatic callers).
type EntryDraft struct {
	ID              string `json:"id"`
	Date            string `json:"date"` // YYYY-MM-DD
	Time            string `json:"time"` // HH:MM, 24-hour
	Timestamp       int64  `json:"timestamp"`
	StudentID       string `json:"studentId"`
	SkillID         string `json:"skillId"`
	Rating          int    `json:"rating"`
	PromptDetails   string `json:"promptDetails"`
	DurationMin     *int   `json:"durationMin"`
	PromptLevel     string `json:"promptLevel"`
	Reinforcer      string `json:"reinforcer"`
	ReinforcerOther string `json:"reinforcerOther"`
	Setting         string `json:"setting"`
	Notes           string `json:"notes"`
	AbcA            string `json:"abcA"`
	AbcB            string `json:"abcB"`
	AbcC            string `json:"abcC"`
	Func            string `json:"func"`
	Tokens          int    `json:"tokens"`
	Delivered       bool   `json:"delivered"`
	IncludeGoal     bool   `json:"includeGoal"`
	GoalBaseline    string `json:"goalBaseline"`
	GoalTarget      string `json:"goalTarget"`
	GoalMastery     string `json:"goalMastery"`
}

var (
	// ErrInvalidRating is returned when the rating falls outside 0..2.
	ErrInvalidRating = errors.New("rating must be 0, 1, or 2")
	// ErrMissingPromptDetails is returned when the rating is 1 (requires
	// prompts) and no prompt description was supplied. This is the one
	// hard business rule; it blocks the save.
	ErrMissingPromptDetails = errors.New("prompt details are required when rating is 1")
)

// EntryService validates and normalizes entry drafts before handing the
// resulting record to the store.
type EntryService struct {
	store       EntryStore
	now         func() time.Time
	idGenerator func() string
}

func NewEntryService(store EntryStore) *EntryService {
	return &EntryService{
		store:       store,
		now:         time.Now,
		idGenerator: uuid.NewString,
	}
}

// Save gates the one hard rule, silently normalizes every other field, and
// upserts the complete record. An existing id replaces that entry in place;
// a missing id creates a new one.
func (s *EntryService) Save(d EntryDraft) (*models.Entry, error) {
	if d.Rating < 0 || d.Rating > 2 {
		return nil, ErrInvalidRating
	}
	details := strings.TrimSpace(d.PromptDetails)
	if d.Rating == 1 && details == "" {
		return nil, ErrMissingPromptDetails
	}
	if d.Rating != 1 {
		details = ""
	}

	other := d.ReinforcerOther
	if d.Reinforcer != models.ReinforcerOtherID {
		other = ""
	}

	baseline, target, mastery := d.GoalBaseline, d.GoalTarget, d.GoalMastery
	if !d.IncludeGoal {
		baseline, target, mastery = "", "", ""
	}

	// durationMin is "integer >= 0 or absent"; anything negative is absent.
	dur := d.DurationMin
	if dur != nil && *dur < 0 {
		dur = nil
	}

	id := d.ID
	if id == "" {
		id = s.idGenerator()
	}

	e := &models.Entry{
		ID:              id,
		Timestamp:       s.resolveTimestamp(d),
		StudentID:       d.StudentID,
		SkillID:         d.SkillID,
		Rating:          d.Rating,
		PromptDetails:   details,
		DurationMin:     dur,
		PromptLevel:     d.PromptLevel,
		Reinforcer:      d.Reinforcer,
		ReinforcerOther: other,
		Setting:         d.Setting,
		Notes:           d.Notes,
		AbcA:            d.AbcA,
		AbcB:            d.AbcB,
		AbcC:            d.AbcC,
		Func:            d.Func,
		Tokens:          d.Tokens,
		Delivered:       d.Delivered,
		GoalBaseline:    baseline,
		GoalTarget:      target,
		GoalMastery:     mastery,
	}
	s.store.UpsertEntry(e)
	return e, nil
}

// Delete removes the entry with the given id; deleting an unknown id is a
// no-op and reports false.
func (s *EntryService) Delete(id string) bool {
	return s.store.DeleteEntry(id)
}

// resolveTimestamp derives epoch milliseconds from the date+time inputs.
// A parse failure falls back to the current time by policy: a malformed
// clock field never blocks a save.
func (s *EntryService) resolveTimestamp(d EntryDraft) int64 {
	if d.Date == "" && d.Time == "" {
		if d.Timestamp > 0 {
			return d.Timestamp
		}
		return s.now().UnixMilli()
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", d.Date+" "+d.Time, time.Local)
	if err != nil {
		return s.now().UnixMilli()
	}
	return t.UnixMilli()
}
