package models

import "time"

// Student is a learner tracked by the program. Entries reference students
// by id; removing a student does not cascade to entries.
type Student struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Skill is a trackable goal. Short is the dropdown/table name; Label keeps
// the full goal text for records and CSV.
type Skill struct {
	ID    string `json:"id"`
	Short string `json:"short"`
	Label string `json:"label"`
}

// Reinforcer is a reward option offered during logging.
type Reinforcer struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ReinforcerOtherID is the reserved reinforcer id meaning "other". It is
// the only reinforcer for which an entry may carry a free-text
// ReinforcerOther value.
const ReinforcerOtherID = "r_other"

// Entry is one logged behavioral observation. Entries are validated before
// storage and edited only by full replacement.
type Entry struct {
	ID              string `json:"id"`
	Timestamp       int64  `json:"timestamp"` // epoch milliseconds
	StudentID       string `json:"studentId"`
	SkillID         string `json:"skillId"`
	Rating          int    `json:"rating"` // 0 not demonstrating, 1 requires prompts, 2 independent
	PromptDetails   string `json:"promptDetails"`
	DurationMin     *int   `json:"durationMin"`
	PromptLevel     string `json:"promptLevel"`
	Reinforcer      string `json:"reinforcer"`
	ReinforcerOther string `json:"reinforcerOther"`
	Setting         string `json:"setting"`
	Notes           string `json:"notes"`
	AbcA            string `json:"abcA"` // antecedent
	AbcB            string `json:"abcB"` // behavior (event)
	AbcC            string `json:"abcC"` // consequence
	Func            string `json:"func"` // hypothesized function
	Tokens          int    `json:"tokens"`
	Delivered       bool   `json:"delivered"`
	GoalBaseline    string `json:"goalBaseline"`
	GoalTarget      string `json:"goalTarget"`
	GoalMastery     string `json:"goalMastery"`
}

// Org holds optional organization settings from Setup. SheetsWebhook is
// stored for a future sync backend and never called by this core.
type Org struct {
	TeamName      string `json:"teamName"`
	UserName      string `json:"userName"`
	SheetsWebhook string `json:"sheetsWebhook"`
}

// User is a staff account used to protect mutating endpoints when auth is
// enabled.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	PassHash  []byte    `json:"passHash"`
	CreatedAt time.Time `json:"createdAt"`
}

// SchemaVersion is the current snapshot schema version. Blobs written
// before versioning decode as version 0 and are filled forward on load.
const SchemaVersion = 1

// Dataset is the process-wide root object: hydrated at startup, held in
// memory, and rewritten as a whole after every mutation.
type Dataset struct {
	SchemaVersion int           `json:"schemaVersion"`
	Students      []*Student    `json:"students"`
	Skills        []*Skill      `json:"skills"`
	Reinforcers   []*Reinforcer `json:"reinforcers"`
	Entries       []*Entry      `json:"entries"`
	Org           Org           `json:"org"`
	Users         []*User       `json:"users,omitempty"`
}

// PromptLevels lists the assistance categories offered on the entry form.
var PromptLevels = []string{"Independent", "Gestural", "Verbal", "Model", "Partial Physical", "Full Physical"}

// SettingOptions is the open list of locations offered on the entry form.
var SettingOptions = []string{"Classroom", "Hallway", "Lunchroom", "Bathroom", "Recess", "PE", "Playground", "Home"}

// FunctionOptions lists the hypothesized behavioral functions.
var FunctionOptions = []string{"Attention", "Escape", "Tangible", "Sensory/Automatic"}

// DefaultDataset returns the seeded dataset used when no snapshot exists or
// the stored blob cannot be parsed.
func DefaultDataset() *Dataset {
	return &Dataset{
		SchemaVersion: SchemaVersion,
		Students: []*Student{
			{ID: "s1", Name: "Jasmine"},
			{ID: "s2", Name: "Sarah"},
			{ID: "s3", Name: "Abby"},
			{ID: "s4", Name: "Donovan"},
		},
		Skills: []*Skill{
			{
				ID:    "k1",
				Short: "Start & Sustain Work",
				Label: "When given a task or assignment, STUDENT will begin the task/assignment within 1 minute and continue for a minimum of 10 minutes with no more than 2 prompts on 8 out of 10 opportunities, as measured by staff data and observation.",
			},
			{
				ID:    "k2",
				Short: "No Physical Aggression",
				Label: "During each segment of the school day, STUDENT will refrain from physical aggression (i.e. kicking, hitting, pushing, tripping) with all adults and children on 8 out of 10 opportunities, as measured by staff data and observation.",
			},
			{
				ID:    "k3",
				Short: "Cooperative Play",
				Label: "During unstructured time, STUDENT will cooperatively play (participate, share, follow directions, take turns) on 8 out of 10 opportunities, as measured by staff data and observation.",
			},
			{
				ID:    "k4",
				Short: "Follow Directions",
				Label: "When given a direction, STUDENT will respond appropriately (\"yes, okay\") and initiate the direction without arguing on 8 out of 10 opportunities, as measured by staff data and observation.",
			},
		},
		Reinforcers: []*Reinforcer{
			{ID: "r1", Label: "PBIS point"},
			{ID: "r2", Label: "Break"},
			{ID: "r3", Label: "Praise"},
			{ID: "r4", Label: "Sticker"},
			{ID: "r5", Label: "Snack"},
			{ID: "r6", Label: "Computer time"},
			{ID: "r7", Label: "Sensory break"},
			{ID: "r8", Label: "Call home (positive)"},
			{ID: "r9", Label: "Tangible"},
			{ID: ReinforcerOtherID, Label: "Other"},
		},
		Entries: []*Entry{},
	}
}
