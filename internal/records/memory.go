package records

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryStore implements Store in memory for tests
type MemoryStore struct {
	mu       sync.RWMutex
	students map[bson.ObjectID]Student
	now      func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		students: make(map[bson.ObjectID]Student),
		now:      time.Now,
	}
}

func (s *MemoryStore) emailTaken(email string, except bson.ObjectID) bool {
	for id, existing := range s.students {
		if id != except && strings.EqualFold(existing.Email, email) {
			return true
		}
	}
	return false
}

// List implements Store
func (s *MemoryStore) List(_ context.Context) ([]*Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	students := make([]*Student, 0, len(s.students))
	for _, student := range s.students {
		copied := student
		students = append(students, &copied)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].CreatedAt.Equal(students[j].CreatedAt) {
			return students[i].ID.Hex() > students[j].ID.Hex()
		}
		return students[i].CreatedAt.After(students[j].CreatedAt)
	})
	return students, nil
}

// Get implements Store
func (s *MemoryStore) Get(_ context.Context, id bson.ObjectID) (*Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	student, ok := s.students[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &student, nil
}

// Create implements Store
func (s *MemoryStore) Create(_ context.Context, student *Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(student.Email, bson.ObjectID{}) {
		return ErrDuplicateEmail
	}
	now := s.now().UTC()
	student.ID = bson.NewObjectID()
	student.CreatedAt = now
	student.UpdatedAt = now
	s.students[student.ID] = *student
	return nil
}

// Replace implements Store
func (s *MemoryStore) Replace(_ context.Context, student *Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[student.ID]; !ok {
		return ErrNotFound
	}
	if s.emailTaken(student.Email, student.ID) {
		return ErrDuplicateEmail
	}
	student.UpdatedAt = s.now().UTC()
	s.students[student.ID] = *student
	return nil
}

// Delete implements Store
func (s *MemoryStore) Delete(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[id]; !ok {
		return ErrNotFound
	}
	delete(s.students, id)
	return nil
}
