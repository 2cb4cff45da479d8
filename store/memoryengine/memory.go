package memoryengine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/store"
)

const (
	logMsgChangesSaved        = "memory store: changes saved"
	logMsgConcurrencyConflict = "memory store: concurrency conflict detected"
	logAttrBookID             = "book_id"
	logAttrExpectedVersion    = "expected_version"
	logAttrActualVersion      = "actual_version"
	logAttrInserted           = "inserted"
	logAttrTransitions        = "transitions"
)

// Store is a mutex-guarded in-memory store.Store.
type Store struct {
	mu           sync.RWMutex
	users        map[core.UserID]core.User
	books        map[core.BookID]core.Book
	reservations map[core.ReservationID]core.Reservation
	sequence     map[core.ReservationID]int
	nextSequence int
	logger       store.Logger
}

// Option defines a functional option for configuring the Store.
type Option func(*Store) error

// WithLogger sets the logger for the Store. Saves are logged at debug level, conflicts at info level.
func WithLogger(logger store.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// NewStore creates an empty Store.
func NewStore(options ...Option) (*Store, error) {
	s := &Store{}
	s.reset()

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Reset drops all data.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
}

func (s *Store) reset() {
	s.users = make(map[core.UserID]core.User)
	s.books = make(map[core.BookID]core.Book)
	s.reservations = make(map[core.ReservationID]core.Reservation)
	s.sequence = make(map[core.ReservationID]int)
	s.nextSequence = 0
}

// FindUser returns the user or store.ErrNotFound.
func (s *Store) FindUser(_ context.Context, userID core.UserID) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return core.User{}, fmt.Errorf("%w: user %s", store.ErrNotFound, userID)
	}

	return user, nil
}

// FindBook returns the book or store.ErrNotFound.
func (s *Store) FindBook(_ context.Context, bookID core.BookID) (core.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[bookID]
	if !ok {
		return core.Book{}, fmt.Errorf("%w: book %s", store.ErrNotFound, bookID)
	}

	return book, nil
}

// RegisterUser adds a user.
func (s *Store) RegisterUser(_ context.Context, user core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("%w: user %s", store.ErrAlreadyExists, user.ID)
	}

	s.users[user.ID] = user

	return nil
}

// RegisterBook adds a book. Its version starts at zero.
func (s *Store) RegisterBook(_ context.Context, book core.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[book.ID]; ok {
		return fmt.Errorf("%w: book %s", store.ErrAlreadyExists, book.ID)
	}

	book.Version = 0
	book.LastReservedAt = core.ToOccurredAt(book.LastReservedAt)
	s.books[book.ID] = book

	return nil
}

// FindReservation returns the reservation or store.ErrNotFound.
func (s *Store) FindReservation(_ context.Context, reservationID core.ReservationID) (core.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservation, ok := s.reservations[reservationID]
	if !ok {
		return core.Reservation{}, fmt.Errorf("%w: reservation %s", store.ErrNotFound, reservationID)
	}

	return reservation, nil
}

// QueryByBookAndStatus returns the book's reservations in the given status, oldest first.
func (s *Store) QueryByBookAndStatus(_ context.Context, bookID core.BookID, status core.Status) ([]core.Reservation, error) {
	return s.collect(func(r core.Reservation) bool {
		return r.BookID == bookID && r.Status == status
	}, false), nil
}

// QueryByStatus returns all reservations matching the filter, oldest first.
func (s *Store) QueryByStatus(_ context.Context, filter store.StatusFilter) ([]core.Reservation, error) {
	return s.collect(filter.Matches, false), nil
}

// QueryByUser returns the user's reservations, newest first.
func (s *Store) QueryByUser(_ context.Context, userID core.UserID) ([]core.Reservation, error) {
	return s.collect(func(r core.Reservation) bool {
		return r.UserID == userID
	}, true), nil
}

func (s *Store) collect(match func(core.Reservation) bool, newestFirst bool) []core.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]core.Reservation, 0)
	for _, r := range s.reservations {
		if match(r) {
			result = append(result, r)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.CreateDate.Equal(b.CreateDate) {
			if newestFirst {
				return a.CreateDate.After(b.CreateDate)
			}
			return a.CreateDate.Before(b.CreateDate)
		}

		if newestFirst {
			return s.sequence[a.ID] > s.sequence[b.ID]
		}
		return s.sequence[a.ID] < s.sequence[b.ID]
	})

	return result
}

// Save applies the changes atomically if the book still has the expected version
// and every transitioned reservation still has its previous status.
func (s *Store) Save(_ context.Context, changes core.Changes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPreconditions(changes); err != nil {
		return err
	}

	book := changes.Book
	book.Version++
	s.books[book.ID] = book

	for _, r := range changes.Inserted {
		s.reservations[r.ID] = r
		s.sequence[r.ID] = s.nextSequence
		s.nextSequence++
	}

	for _, t := range changes.Transitions {
		s.reservations[t.Reservation.ID] = t.Reservation
	}

	if s.logger != nil {
		s.logger.Debug(logMsgChangesSaved,
			logAttrBookID, book.ID.String(),
			logAttrInserted, len(changes.Inserted),
			logAttrTransitions, len(changes.Transitions))
	}

	return nil
}

func (s *Store) checkPreconditions(changes core.Changes) error {
	persisted, ok := s.books[changes.Book.ID]
	if !ok {
		return fmt.Errorf("%w: book %s", store.ErrNotFound, changes.Book.ID)
	}

	if persisted.Version != changes.Book.Version {
		if s.logger != nil {
			s.logger.Info(logMsgConcurrencyConflict,
				logAttrBookID, changes.Book.ID.String(),
				logAttrExpectedVersion, changes.Book.Version,
				logAttrActualVersion, persisted.Version)
		}

		return store.ErrConcurrencyConflict
	}

	for _, r := range changes.Inserted {
		if _, exists := s.reservations[r.ID]; exists {
			return fmt.Errorf("%w: reservation %s", store.ErrAlreadyExists, r.ID)
		}
	}

	for _, t := range changes.Transitions {
		current, exists := s.reservations[t.Reservation.ID]
		if !exists {
			return fmt.Errorf("%w: reservation %s", store.ErrNotFound, t.Reservation.ID)
		}

		if current.Status != t.From {
			return store.ErrConcurrencyConflict
		}
	}

	return nil
}
