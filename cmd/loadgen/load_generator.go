package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/features/query/allreservations"
	"github.com/AntonStoeckl/library-reservations-go/store"
)

const (
	scenarioReserve = "reserve"
	scenarioPickUp  = "pickup"
	scenarioReturn  = "return"
	scenarioCancel  = "cancel"

	operationTimeout = 5 * time.Second
	reportInterval   = 10 * time.Second
)

var scenarios = []string{scenarioReserve, scenarioPickUp, scenarioReturn, scenarioCancel}

// ErrInvariantViolated is returned by Verify when the persisted state is inconsistent.
var ErrInvariantViolated = errors.New("invariant violated")

// Engine is the part of the reservation engine the load generator drives.
type Engine interface {
	Reserve(ctx context.Context, userID core.UserID, bookID core.BookID) (core.Outcome, error)
	PickUp(ctx context.Context, reservationID core.ReservationID) (core.Outcome, error)
	Cancel(ctx context.Context, userID core.UserID, reservationID core.ReservationID) (core.Outcome, error)
	ReturnBook(ctx context.Context, reservationID core.ReservationID) (core.Outcome, error)
	GetAllReservations(ctx context.Context, filter store.StatusFilter) (allreservations.Reservations, error)
}

// BookFinder reads the persisted stock of a book.
type BookFinder interface {
	FindBook(ctx context.Context, bookID core.BookID) (core.Book, error)
}

type reservationRef struct {
	id     core.ReservationID
	userID core.UserID
}

// LoadGenerator fires randomly chosen reservation scenarios at a fixed rate.
type LoadGenerator struct {
	engine  Engine
	books   BookFinder
	config  Config
	logger  *slog.Logger
	random  *rand.Rand
	randMu  sync.Mutex
	bookIDs []core.BookID
	userIDs []core.UserID
	copies  map[core.BookID]int

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu           sync.RWMutex
	reservations []reservationRef
	requestCount int64
	acceptCount  int64
	rejectCount  int64
	errorCount   int64
	startTime    time.Time
}

// NewLoadGenerator creates a load generator for a catalog that was seeded with the given books and users.
// copies holds the initial stock per book, Verify checks the persisted state against it.
func NewLoadGenerator(
	engine Engine,
	books BookFinder,
	config Config,
	logger *slog.Logger,
	copies map[core.BookID]int,
	userIDs []core.UserID,
) *LoadGenerator {
	bookIDs := make([]core.BookID, 0, len(copies))
	for bookID := range copies {
		bookIDs = append(bookIDs, bookID)
	}

	return &LoadGenerator{
		engine:   engine,
		books:    books,
		config:   config,
		logger:   logger,
		random:   rand.New(rand.NewSource(config.RandomSeed)), //nolint:gosec // load generation only
		bookIDs:  bookIDs,
		userIDs:  userIDs,
		copies:   copies,
		stopChan: make(chan struct{}),
	}
}

// Start fires scenarios at the configured rate until ctx is done or Stop is called.
func (lg *LoadGenerator) Start(ctx context.Context) error {
	lg.mu.Lock()
	lg.startTime = time.Now()
	lg.mu.Unlock()

	interval := time.Second / time.Duration(lg.config.Rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lg.logger.Info("load generator starting", "rate", lg.config.Rate, "interval", interval.String())

	lg.wg.Add(1)
	go lg.statsReporter(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-lg.stopChan:
			return nil
		case <-ticker.C:
			lg.wg.Add(1)
			go lg.executeScenario(ctx)
		}
	}
}

// Stop waits for the scenarios in flight.
func (lg *LoadGenerator) Stop(ctx context.Context) error {
	lg.stopOnce.Do(func() { close(lg.stopChan) })

	done := make(chan struct{})
	go func() {
		lg.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		lg.logStats("load generator stopped")
		return nil
	case <-ctx.Done():
		lg.logStats("load generator stopped")
		return fmt.Errorf("shutdown timeout exceeded: %w", ctx.Err())
	}
}

// RunScenarios executes n scenarios one after another, without rate limiting.
func (lg *LoadGenerator) RunScenarios(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		lg.wg.Add(1)
		lg.executeScenario(ctx)
	}
}

// Verify checks that every book's stock matches its initial copies minus the copies that are out,
// and that no reservation queues for a book with stock left. A copy is out while its reservation is
// Assigned or PickedUp, and also after a PickedUp reservation was cancelled, as that does not bring
// the copy back.
func (lg *LoadGenerator) Verify(ctx context.Context) error {
	all, err := lg.engine.GetAllReservations(store.WithStrongConsistency(ctx), store.AnyStatus())
	if err != nil {
		return err
	}

	held := make(map[core.BookID]int)
	queued := make(map[core.BookID]int)

	for _, r := range all.Reservations {
		switch r.Status {
		case core.StatusAssigned, core.StatusPickedUp:
			held[r.BookID]++
		case core.StatusQueuing:
			queued[r.BookID]++
		case core.StatusCancelled:
			if r.TakeDate != nil {
				held[r.BookID]++
			}
		default:
		}
	}

	var violations []error

	for bookID, initial := range lg.copies {
		book, findErr := lg.books.FindBook(ctx, bookID)
		if findErr != nil {
			return findErr
		}

		if book.Quantity+held[bookID] != initial {
			violations = append(violations, fmt.Errorf("%w: book %s has %d on the shelf and %d held, expected %d copies",
				ErrInvariantViolated, bookID, book.Quantity, held[bookID], initial))
		}

		if book.Quantity > 0 && queued[bookID] > 0 {
			violations = append(violations, fmt.Errorf("%w: book %s has %d copies on the shelf and %d queued reservations",
				ErrInvariantViolated, bookID, book.Quantity, queued[bookID]))
		}
	}

	return errors.Join(violations...)
}

// Stats returns the number of executed, accepted, rejected and failed scenarios.
func (lg *LoadGenerator) Stats() (requests, accepted, rejected, failed int64) {
	lg.mu.RLock()
	defer lg.mu.RUnlock()

	return lg.requestCount, lg.acceptCount, lg.rejectCount, lg.errorCount
}

func (lg *LoadGenerator) executeScenario(ctx context.Context) {
	defer lg.wg.Done()

	opCtx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	scenario := lg.selectScenario()

	var outcome core.Outcome
	var err error

	switch scenario {
	case scenarioReserve:
		outcome, err = lg.runReserve(opCtx)
	case scenarioPickUp:
		ref, ok := lg.randomReservation()
		if !ok {
			outcome, err = lg.runReserve(opCtx)
			break
		}
		outcome, err = lg.engine.PickUp(opCtx, ref.id)
	case scenarioReturn:
		ref, ok := lg.randomReservation()
		if !ok {
			outcome, err = lg.runReserve(opCtx)
			break
		}
		outcome, err = lg.engine.ReturnBook(opCtx, ref.id)
	default:
		ref, ok := lg.randomReservation()
		if !ok {
			outcome, err = lg.runReserve(opCtx)
			break
		}
		outcome, err = lg.engine.Cancel(opCtx, ref.userID, ref.id)
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()

	lg.requestCount++

	switch {
	case err != nil:
		lg.errorCount++
		lg.logger.Warn("scenario failed", "scenario", scenario, "error", err)
	case outcome.IsRejected():
		lg.rejectCount++
	default:
		lg.acceptCount++
	}
}

func (lg *LoadGenerator) runReserve(ctx context.Context) (core.Outcome, error) {
	userID := lg.userIDs[lg.intn(len(lg.userIDs))]
	bookID := lg.bookIDs[lg.intn(len(lg.bookIDs))]

	outcome, err := lg.engine.Reserve(ctx, userID, bookID)
	if err == nil && !outcome.IsRejected() {
		lg.mu.Lock()
		lg.reservations = append(lg.reservations, reservationRef{id: outcome.ReservationID, userID: userID})
		lg.mu.Unlock()
	}

	return outcome, err
}

// selectScenario picks a scenario according to the configured weights, which sum up to 100.
func (lg *LoadGenerator) selectScenario() string {
	r := lg.intn(100)

	for i, weight := range lg.config.ScenarioWeights {
		if r < weight {
			return scenarios[i]
		}
		r -= weight
	}

	return scenarioReserve
}

func (lg *LoadGenerator) randomReservation() (reservationRef, bool) {
	lg.mu.RLock()
	n := len(lg.reservations)
	lg.mu.RUnlock()

	if n == 0 {
		return reservationRef{}, false
	}

	i := lg.intn(n)

	lg.mu.RLock()
	defer lg.mu.RUnlock()

	return lg.reservations[i], true
}

func (lg *LoadGenerator) intn(n int) int {
	lg.randMu.Lock()
	defer lg.randMu.Unlock()

	return lg.random.Intn(n)
}

func (lg *LoadGenerator) statsReporter(ctx context.Context) {
	defer lg.wg.Done()

	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-lg.stopChan:
			return
		case <-ticker.C:
			lg.logStats("load generator stats")
		}
	}
}

func (lg *LoadGenerator) logStats(msg string) {
	lg.mu.RLock()
	duration := time.Since(lg.startTime)
	requests, accepted, rejected, failed := lg.requestCount, lg.acceptCount, lg.rejectCount, lg.errorCount
	lg.mu.RUnlock()

	if duration <= 0 || requests == 0 {
		return
	}

	lg.logger.Info(msg,
		"requests", requests,
		"accepted", accepted,
		"rejected", rejected,
		"failed", failed,
		"requests_per_second", float64(requests)/duration.Seconds(),
		"goroutines", runtime.NumGoroutine(),
	)
}
