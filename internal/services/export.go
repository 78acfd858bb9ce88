package services

import (
	"strconv"
	"strings"
	"time"
)

// csvHeader is the fixed export column order. date and time are derived
// from the entry timestamp, never independently stored.
var csvHeader = []string{
	"id", "timestamp", "date", "time",
	"student", "student_id",
	"skill_short", "skill_full", "skill_id",
	"rating", "prompt_details",
	"duration_min",
	"prompt_level",
	"reinforcer", "reinforcer_other",
	"setting", "function",
	"tokens", "delivered",
	"antecedent", "behavior_event", "consequence",
	"goal_baseline", "goal_target", "goal_mastery",
	"notes",
}

// RowsToCSV renders display rows into the export wire format. Every data
// field is double-quoted; embedded quotes are doubled and each raw CR or LF
// becomes a single space, so values never span lines. Absent optionals
// render as an empty quoted string. Export is one-directional; there is no
// CSV import path.
func RowsToCSV(rows []DisplayRow) []byte {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(csvHeader, ","))
	for _, r := range rows {
		ts := time.UnixMilli(r.Timestamp)
		duration := ""
		if r.DurationMin != nil {
			duration = strconv.Itoa(*r.DurationMin)
		}
		delivered := "no"
		if r.Delivered {
			delivered = "yes"
		}
		fields := []string{
			r.ID,
			strconv.FormatInt(r.Timestamp, 10),
			ts.Format("1/2/2006"),
			ts.Format("03:04 PM"),
			r.StudentName,
			r.StudentID,
			r.SkillShort,
			r.SkillLabel,
			r.SkillID,
			strconv.Itoa(r.Rating),
			r.PromptDetails,
			duration,
			r.PromptLevel,
			r.Reinforcer,
			r.ReinforcerOther,
			r.Setting,
			r.Func,
			strconv.Itoa(r.Tokens),
			delivered,
			r.AbcA,
			r.AbcB,
			r.AbcC,
			r.GoalBaseline,
			r.GoalTarget,
			r.GoalMastery,
			r.Notes,
		}
		for i, f := range fields {
			fields[i] = csvEscape(f)
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return []byte(strings.Join(lines, "\n"))
}

func csvEscape(v string) string {
	v = strings.ReplaceAll(v, `"`, `""`)
	v = strings.ReplaceAll(v, "\n", " ")
	v = strings.ReplaceAll(v, "\r", " ")
	return `"` + v + `"`
}
