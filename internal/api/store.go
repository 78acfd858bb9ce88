package api

import (
	"strings"
	"sync"

	"github.com/jasminevsadler/Ramp-Tracker/internal/models"
)

// memoryStore owns the dataset root for the process. Every mutation runs
// the persist hook before releasing the write lock, so the stored blob
// always reflects the latest state.
type memoryStore struct {
	mu      sync.RWMutex
	data    *models.Dataset
	persist func(*models.Dataset)
}

func newMemoryStore(data *models.Dataset) *memoryStore {
	if data == nil {
		data = models.DefaultDataset()
	}
	return &memoryStore{data: data, persist: func(*models.Dataset) {}}
}

// NewMemoryStore returns a store with no durable backing, used by tests
// and the snapshot import.
func NewMemoryStore(data *models.Dataset) Store {
	return newMemoryStore(data)
}

// Snapshot returns a shallow copy of the dataset root for export or
// migration.
func (s *memoryStore) Snapshot() *models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := *s.data
	cp.Students = append([]*models.Student(nil), s.data.Students...)
	cp.Skills = append([]*models.Skill(nil), s.data.Skills...)
	cp.Reinforcers = append([]*models.Reinforcer(nil), s.data.Reinforcers...)
	cp.Entries = append([]*models.Entry(nil), s.data.Entries...)
	cp.Users = append([]*models.User(nil), s.data.Users...)
	return &cp
}

func (s *memoryStore) ListStudents() []*models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.Student(nil), s.data.Students...)
}

func (s *memoryStore) GetStudent(id string) *models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.data.Students {
		if st.ID == id {
			return st
		}
	}
	return nil
}

func (s *memoryStore) AddStudent(st *models.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Students = append(s.data.Students, st)
	s.persist(s.data)
}

func (s *memoryStore) RemoveStudent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, st := range s.data.Students {
		if st.ID == id {
			s.data.Students = append(s.data.Students[:i], s.data.Students[i+1:]...)
			s.persist(s.data)
			return true
		}
	}
	return false
}

func (s *memoryStore) ListSkills() []*models.Skill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.Skill(nil), s.data.Skills...)
}

func (s *memoryStore) GetSkill(id string) *models.Skill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range s.data.Skills {
		if k.ID == id {
			return k
		}
	}
	return nil
}

func (s *memoryStore) AddSkill(k *models.Skill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Skills = append(s.data.Skills, k)
	s.persist(s.data)
}

func (s *memoryStore) RemoveSkill(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, k := range s.data.Skills {
		if k.ID == id {
			s.data.Skills = append(s.data.Skills[:i], s.data.Skills[i+1:]...)
			s.persist(s.data)
			return true
		}
	}
	return false
}

func (s *memoryStore) ListReinforcers() []*models.Reinforcer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.Reinforcer(nil), s.data.Reinforcers...)
}

func (s *memoryStore) GetReinforcer(id string) *models.Reinforcer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.data.Reinforcers {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (s *memoryStore) AddReinforcer(r *models.Reinforcer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Reinforcers = append(s.data.Reinforcers, r)
	s.persist(s.data)
}

func (s *memoryStore) RemoveReinforcer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.data.Reinforcers {
		if r.ID == id {
			s.data.Reinforcers = append(s.data.Reinforcers[:i], s.data.Reinforcers[i+1:]...)
			s.persist(s.data)
			return true
		}
	}
	return false
}

// UpsertEntry replaces the entry with a matching id in place, otherwise
// prepends so the newest entry leads the raw list. Insertion order carries
// no meaning; consumers sort explicitly.
func (s *memoryStore) UpsertEntry(e *models.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.data.Entries {
		if existing.ID == e.ID {
			s.data.Entries[i] = e
			s.persist(s.data)
			return
		}
	}
	s.data.Entries = append([]*models.Entry{e}, s.data.Entries...)
	s.persist(s.data)
}

func (s *memoryStore) DeleteEntry(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.data.Entries {
		if e.ID == id {
			s.data.Entries = append(s.data.Entries[:i], s.data.Entries[i+1:]...)
			s.persist(s.data)
			return true
		}
	}
	return false
}

func (s *memoryStore) ListEntries() []*models.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.Entry(nil), s.data.Entries...)
}

func (s *memoryStore) Org() models.Org {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Org
}

func (s *memoryStore) SetOrg(o models.Org) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Org = o
	s.persist(s.data)
}

func (s *memoryStore) AddUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Users = append(s.data.Users, u)
	s.persist(s.data)
}

func (s *memoryStore) FindUserByEmail(email string) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.data.Users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}
