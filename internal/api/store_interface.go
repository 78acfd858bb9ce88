package api

import "github.com/jasminevsadler/Ramp-Tracker/internal/models"

// Store is the persistence surface consumed by the router and the service
// layer. Two implementations exist: the snapshot-backed memory store and
// the SQLite store. Registry removals never cascade to entries; dangling
// references are resolved to empty strings at projection time.
type Store interface {
	ListStudents() []*models.Student
	GetStudent(id string) *models.Student
	AddStudent(s *models.Student)
	RemoveStudent(id string) bool

	ListSkills() []*models.Skill
	GetSkill(id string) *models.Skill
	AddSkill(k *models.Skill)
	RemoveSkill(id string) bool

	ListReinforcers() []*models.Reinforcer
	GetReinforcer(id string) *models.Reinforcer
	AddReinforcer(r *models.Reinforcer)
	RemoveReinforcer(id string) bool

	UpsertEntry(e *models.Entry)
	DeleteEntry(id string) bool
	ListEntries() []*models.Entry

	Org() models.Org
	SetOrg(o models.Org)

	AddUser(u *models.User)
	FindUserByEmail(email string) *models.User
}

var _ Store = (*memoryStore)(nil)
