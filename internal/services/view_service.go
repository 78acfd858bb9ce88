package services

import (
	"math"
	"sort"
	"time"

	"github.com/jasminevsadler/Ramp-Tracker/internal/models"
)

// ViewStore abstracts the lookups required to project display rows.
type ViewStore interface {
	ListEntries() []*models.Entry
	ListStudents() []*models.Student
	GetStudent(id string) *models.Student
	GetSkill(id string) *models.Skill
}

// Filter narrows projections. Zero values pass everything through; From and
// To bound the range inclusively at 00:00 and 23:59 of the named days.
// Unparseable dates are treated as unset.
type Filter struct {
	StudentID string
	SkillID   string
	From      string // YYYY-MM-DD
	To        string // YYYY-MM-DD
}

// DisplayRow is an Entry joined with registry names for display and export.
// Dangling references resolve to empty strings.
type DisplayRow struct {
	models.Entry
	StudentName string `json:"studentName"`
	SkillShort  string `json:"skillShort"`
	SkillLabel  string `json:"skillLabel"`
}

// SkillAverage is the mean rating for one skill across the projected rows.
type SkillAverage struct {
	SkillID string  `json:"skillId"`
	Skill   string  `json:"skill"`
	Avg     float64 `json:"avg"`
}

// DayCount is the number of entries logged on one calendar day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Summary aggregates the filtered rows for the dashboard.
type Summary struct {
	Entries     int            `json:"entries"`
	AvgRating   float64        `json:"avg_rating"`
	TotalTokens int            `json:"total_tokens"`
	Students    int            `json:"students"`
	BySkill     []SkillAverage `json:"by_skill"`
	Timeseries  []DayCount     `json:"timeseries"`
}

type ViewService struct {
	store ViewStore
}

func NewViewService(store ViewStore) *ViewService {
	return &ViewService{store: store}
}

// Project returns the filtered, denormalized rows sorted by timestamp
// descending. Rows with equal timestamps carry no guaranteed sub-order.
func (s *ViewService) Project(f Filter) []DisplayRow {
	from, to := f.bounds()
	entries := s.store.ListEntries()
	rows := make([]DisplayRow, 0, len(entries))
	for _, e := range entries {
		if f.StudentID != "" && e.StudentID != f.StudentID {
			continue
		}
		if f.SkillID != "" && e.SkillID != f.SkillID {
			continue
		}
		if e.Timestamp < from || e.Timestamp > to {
			continue
		}
		row := DisplayRow{Entry: *e}
		if st := s.store.GetStudent(e.StudentID); st != nil {
			row.StudentName = st.Name
		}
		if sk := s.store.GetSkill(e.SkillID); sk != nil {
			row.SkillLabel = sk.Label
			row.SkillShort = sk.Short
			if row.SkillShort == "" {
				row.SkillShort = sk.Label
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Timestamp > rows[j].Timestamp })
	return rows
}

// Summary computes the dashboard aggregates over the filtered rows.
func (s *ViewService) Summary(f Filter) *Summary {
	rows := s.Project(f)
	sum := &Summary{
		Entries:  len(rows),
		Students: len(s.store.ListStudents()),
	}
	total := 0
	countsByDay := map[string]int{}
	for _, r := range rows {
		total += r.Rating
		sum.TotalTokens += r.Tokens
		day := time.UnixMilli(r.Timestamp).Format("2006-01-02")
		countsByDay[day]++
	}
	if len(rows) > 0 {
		sum.AvgRating = float64(total) / float64(len(rows))
	}
	sum.BySkill = AverageRatingBySkill(rows)
	sum.Timeseries = buildTimeseries(countsByDay)
	return sum
}

// AverageRatingBySkill groups rows by skill and computes the arithmetic
// mean rating per group. Groups appear in first-seen order, so the most
// recently logged skill leads.
func AverageRatingBySkill(rows []DisplayRow) []SkillAverage {
	index := map[string]int{}
	out := []SkillAverage{}
	counts := []int{}
	for _, r := range rows {
		i, ok := index[r.SkillID]
		if !ok {
			i = len(out)
			index[r.SkillID] = i
			name := r.SkillShort
			if name == "" {
				name = r.SkillLabel
			}
			out = append(out, SkillAverage{SkillID: r.SkillID, Skill: name})
			counts = append(counts, 0)
		}
		out[i].Avg += float64(r.Rating)
		counts[i]++
	}
	for i := range out {
		if counts[i] > 0 {
			out[i].Avg /= float64(counts[i])
		}
	}
	return out
}

func buildTimeseries(counts map[string]int) []DayCount {
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]DayCount, 0, len(days))
	for _, d := range days {
		out = append(out, DayCount{Date: d, Count: counts[d]})
	}
	return out
}

func (f Filter) bounds() (int64, int64) {
	from := int64(math.MinInt64)
	to := int64(math.MaxInt64)
	if f.From != "" {
		if t, err := time.ParseInLocation("2006-01-02", f.From, time.Local); err == nil {
			from = t.UnixMilli()
		}
	}
	if f.To != "" {
		if t, err := time.ParseInLocation("2006-01-02", f.To, time.Local); err == nil {
			to = t.Add(23*time.Hour + 59*time.Minute).UnixMilli()
		}
	}
	return from, to
}
