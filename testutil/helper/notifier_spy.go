package helper

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

// NotifierSpy records the assignments it is notified about. It fails with Err if set.
type NotifierSpy struct {
	mu          sync.Mutex
	assignments []core.Assignment
	calls       int
	Err         error
}

// NewNotifierSpy creates a NotifierSpy that accepts every notification.
func NewNotifierSpy() *NotifierSpy {
	return &NotifierSpy{}
}

// NotifyAssigned implements the Notifier interface.
func (s *NotifierSpy) NotifyAssigned(_ context.Context, assignments []core.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.Err != nil {
		return s.Err
	}

	s.assignments = append(s.assignments, assignments...)

	return nil
}

// Assignments returns a copy of all recorded assignments.
func (s *NotifierSpy) Assignments() []core.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]core.Assignment(nil), s.assignments...)
}

// Calls returns how often the spy was called.
func (s *NotifierSpy) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}
