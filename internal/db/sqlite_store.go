package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jasminevsadler/Ramp-Tracker/internal/api"
	"github.com/jasminevsadler/Ramp-Tracker/internal/models"
)

// SQLiteStore implements api.Store on a SQLite database. The Store surface
// is error-less to match the snapshot store; query failures are logged and
// reads degrade to empty results.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

var _ api.Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("sqlite store: %s: %v", prefix, err)
	}
}

func (s *SQLiteStore) nextPos(table string) int64 {
	var pos sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(pos) FROM " + table).Scan(&pos)
	if err != nil {
		s.logErr("next pos "+table, err)
		return 0
	}
	return pos.Int64 + 1
}

func (s *SQLiteStore) ListStudents() []*models.Student {
	rows, err := s.db.Query(`SELECT id, name FROM students ORDER BY pos, rowid`)
	if err != nil {
		s.logErr("list students", err)
		return []*models.Student{}
	}
	defer rows.Close()
	out := []*models.Student{}
	for rows.Next() {
		var st models.Student
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			s.logErr("scan student", err)
			continue
		}
		out = append(out, &st)
	}
	s.logErr("list students", rows.Err())
	return out
}

func (s *SQLiteStore) GetStudent(id string) *models.Student {
	var st models.Student
	err := s.db.QueryRow(`SELECT id, name FROM students WHERE id = ?`, id).Scan(&st.ID, &st.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get student", err)
		return nil
	}
	return &st
}

func (s *SQLiteStore) AddStudent(st *models.Student) {
	_, err := s.db.Exec(`INSERT INTO students (id, name, pos) VALUES (?, ?, ?)`, st.ID, st.Name, s.nextPos("students"))
	s.logErr("add student", err)
}

func (s *SQLiteStore) RemoveStudent(id string) bool {
	res, err := s.db.Exec(`DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		s.logErr("remove student", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) ListSkills() []*models.Skill {
	rows, err := s.db.Query(`SELECT id, short, label FROM skills ORDER BY pos, rowid`)
	if err != nil {
		s.logErr("list skills", err)
		return []*models.Skill{}
	}
	defer rows.Close()
	out := []*models.Skill{}
	for rows.Next() {
		var k models.Skill
		if err := rows.Scan(&k.ID, &k.Short, &k.Label); err != nil {
			s.logErr("scan skill", err)
			continue
		}
		out = append(out, &k)
	}
	s.logErr("list skills", rows.Err())
	return out
}

func (s *SQLiteStore) GetSkill(id string) *models.Skill {
	var k models.Skill
	err := s.db.QueryRow(`SELECT id, short, label FROM skills WHERE id = ?`, id).Scan(&k.ID, &k.Short, &k.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get skill", err)
		return nil
	}
	return &k
}

func (s *SQLiteStore) AddSkill(k *models.Skill) {
	_, err := s.db.Exec(`INSERT INTO skills (id, short, label, pos) VALUES (?, ?, ?, ?)`, k.ID, k.Short, k.Label, s.nextPos("skills"))
	s.logErr("add skill", err)
}

func (s *SQLiteStore) RemoveSkill(id string) bool {
	res, err := s.db.Exec(`DELETE FROM skills WHERE id = ?`, id)
	if err != nil {
		s.logErr("remove skill", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) ListReinforcers() []*models.Reinforcer {
	rows, err := s.db.Query(`SELECT id, label FROM reinforcers ORDER BY pos, rowid`)
	if err != nil {
		s.logErr("list reinforcers", err)
		return []*models.Reinforcer{}
	}
	defer rows.Close()
	out := []*models.Reinforcer{}
	for rows.Next() {
		var r models.Reinforcer
		if err := rows.Scan(&r.ID, &r.Label); err != nil {
			s.logErr("scan reinforcer", err)
			continue
		}
		out = append(out, &r)
	}
	s.logErr("list reinforcers", rows.Err())
	return out
}

func (s *SQLiteStore) GetReinforcer(id string) *models.Reinforcer {
	var r models.Reinforcer
	err := s.db.QueryRow(`SELECT id, label FROM reinforcers WHERE id = ?`, id).Scan(&r.ID, &r.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get reinforcer", err)
		return nil
	}
	return &r
}

func (s *SQLiteStore) AddReinforcer(r *models.Reinforcer) {
	_, err := s.db.Exec(`INSERT INTO reinforcers (id, label, pos) VALUES (?, ?, ?)`, r.ID, r.Label, s.nextPos("reinforcers"))
	s.logErr("add reinforcer", err)
}

func (s *SQLiteStore) RemoveReinforcer(id string) bool {
	res, err := s.db.Exec(`DELETE FROM reinforcers WHERE id = ?`, id)
	if err != nil {
		s.logErr("remove reinforcer", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

const entryColumns = `id, timestamp, student_id, skill_id, rating, prompt_details,
	duration_min, prompt_level, reinforcer, reinforcer_other, setting, notes,
	abc_a, abc_b, abc_c, func, tokens, delivered, goal_baseline, goal_target, goal_mastery`

func scanEntry(rows interface{ Scan(...any) error }) (*models.Entry, error) {
	var e models.Entry
	var duration sql.NullInt64
	var delivered int64
	err := rows.Scan(&e.ID, &e.Timestamp, &e.StudentID, &e.SkillID, &e.Rating, &e.PromptDetails,
		&duration, &e.PromptLevel, &e.Reinforcer, &e.ReinforcerOther, &e.Setting, &e.Notes,
		&e.AbcA, &e.AbcB, &e.AbcC, &e.Func, &e.Tokens, &delivered, &e.GoalBaseline, &e.GoalTarget, &e.GoalMastery)
	if err != nil {
		return nil, err
	}
	if duration.Valid {
		d := int(duration.Int64)
		e.DurationMin = &d
	}
	e.Delivered = delivered != 0
	return &e, nil
}

func (s *SQLiteStore) UpsertEntry(e *models.Entry) {
	var duration sql.NullInt64
	if e.DurationMin != nil {
		duration = sql.NullInt64{Int64: int64(*e.DurationMin), Valid: true}
	}
	delivered := int64(0)
	if e.Delivered {
		delivered = 1
	}
	_, err := s.db.Exec(`INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			timestamp = excluded.timestamp,
			student_id = excluded.student_id,
			skill_id = excluded.skill_id,
			rating = excluded.rating,
			prompt_details = excluded.prompt_details,
			duration_min = excluded.duration_min,
			prompt_level = excluded.prompt_level,
			reinforcer = excluded.reinforcer,
			reinforcer_other = excluded.reinforcer_other,
			setting = excluded.setting,
			notes = excluded.notes,
			abc_a = excluded.abc_a,
			abc_b = excluded.abc_b,
			abc_c = excluded.abc_c,
			func = excluded.func,
			tokens = excluded.tokens,
			delivered = excluded.delivered,
			goal_baseline = excluded.goal_baseline,
			goal_target = excluded.goal_target,
			goal_mastery = excluded.goal_mastery`,
		e.ID, e.Timestamp, e.StudentID, e.SkillID, e.Rating, e.PromptDetails,
		duration, e.PromptLevel, e.Reinforcer, e.ReinforcerOther, e.Setting, e.Notes,
		e.AbcA, e.AbcB, e.AbcC, e.Func, e.Tokens, delivered, e.GoalBaseline, e.GoalTarget, e.GoalMastery)
	s.logErr("upsert entry", err)
}

func (s *SQLiteStore) DeleteEntry(id string) bool {
	res, err := s.db.Exec(`DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		s.logErr("delete entry", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) ListEntries() []*models.Entry {
	rows, err := s.db.Query(`SELECT ` + entryColumns + ` FROM entries ORDER BY timestamp DESC`)
	if err != nil {
		s.logErr("list entries", err)
		return []*models.Entry{}
	}
	defer rows.Close()
	out := []*models.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			s.logErr("scan entry", err)
			continue
		}
		out = append(out, e)
	}
	s.logErr("list entries", rows.Err())
	return out
}

func (s *SQLiteStore) Org() models.Org {
	var o models.Org
	err := s.db.QueryRow(`SELECT team_name, user_name, sheets_webhook FROM org WHERE id = 1`).
		Scan(&o.TeamName, &o.UserName, &o.SheetsWebhook)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logErr("get org", err)
	}
	return o
}

func (s *SQLiteStore) SetOrg(o models.Org) {
	_, err := s.db.Exec(`INSERT INTO org (id, team_name, user_name, sheets_webhook) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			team_name = excluded.team_name,
			user_name = excluded.user_name,
			sheets_webhook = excluded.sheets_webhook`,
		o.TeamName, o.UserName, o.SheetsWebhook)
	s.logErr("set org", err)
}

func (s *SQLiteStore) AddUser(u *models.User) {
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO users (id, email, pass_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PassHash, created.Unix())
	s.logErr("add user", err)
}

func (s *SQLiteStore) FindUserByEmail(email string) *models.User {
	var u models.User
	var created int64
	err := s.db.QueryRow(`SELECT id, email, pass_hash, created_at FROM users WHERE email = ? COLLATE NOCASE`, email).
		Scan(&u.ID, &u.Email, &u.PassHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("find user", err)
		return nil
	}
	u.CreatedAt = time.Unix(created, 0)
	return &u
}

// Empty reports whether the database holds no registry rows yet, used to
// decide whether first-run seeding applies.
func (s *SQLiteStore) Empty() bool {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM students`).Scan(&n); err != nil {
		s.logErr("count students", err)
		return false
	}
	if n > 0 {
		return false
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		s.logErr("count entries", err)
		return false
	}
	return n == 0
}

// ImportDataset loads a full dataset in one transaction, used by the
// snapshot-to-SQLite migration and first-run seeding.
func (s *SQLiteStore) ImportDataset(ds *models.Dataset) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i, st := range ds.Students {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO students (id, name, pos) VALUES (?, ?, ?)`, st.ID, st.Name, i); err != nil {
			return fmt.Errorf("import student %s: %w", st.ID, err)
		}
	}
	for i, k := range ds.Skills {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO skills (id, short, label, pos) VALUES (?, ?, ?, ?)`, k.ID, k.Short, k.Label, i); err != nil {
			return fmt.Errorf("import skill %s: %w", k.ID, err)
		}
	}
	for i, r := range ds.Reinforcers {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO reinforcers (id, label, pos) VALUES (?, ?, ?)`, r.ID, r.Label, i); err != nil {
			return fmt.Errorf("import reinforcer %s: %w", r.ID, err)
		}
	}
	for _, e := range ds.Entries {
		var duration sql.NullInt64
		if e.DurationMin != nil {
			duration = sql.NullInt64{Int64: int64(*e.DurationMin), Valid: true}
		}
		delivered := int64(0)
		if e.Delivered {
			delivered = 1
		}
		if _, err := tx.Exec(`INSERT OR REPLACE INTO entries (`+entryColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Timestamp, e.StudentID, e.SkillID, e.Rating, e.PromptDetails,
			duration, e.PromptLevel, e.Reinforcer, e.ReinforcerOther, e.Setting, e.Notes,
			e.AbcA, e.AbcB, e.AbcC, e.Func, e.Tokens, delivered, e.GoalBaseline, e.GoalTarget, e.GoalMastery); err != nil {
			return fmt.Errorf("import entry %s: %w", e.ID, err)
		}
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO org (id, team_name, user_name, sheets_webhook) VALUES (1, ?, ?, ?)`,
		ds.Org.TeamName, ds.Org.UserName, ds.Org.SheetsWebhook); err != nil {
		return fmt.Errorf("import org: %w", err)
	}
	for _, u := range ds.Users {
		created := u.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		if _, err := tx.Exec(`INSERT OR REPLACE INTO users (id, email, pass_hash, created_at) VALUES (?, ?, ?, ?)`,
			u.ID, u.Email, u.PassHash, created.Unix()); err != nil {
			return fmt.Errorf("import user %s: %w", u.ID, err)
		}
	}
	return tx.Commit()
}

// SeedIfEmpty populates a fresh database with the built-in default
// dataset, mirroring the snapshot store's first-run behavior.
func (s *SQLiteStore) SeedIfEmpty() error {
	if !s.Empty() {
		return nil
	}
	return s.ImportDataset(models.DefaultDataset())
}
