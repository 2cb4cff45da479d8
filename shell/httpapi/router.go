package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/features/query/allreservations"
	"github.com/AntonStoeckl/library-reservations-go/features/query/userreservations"
	"github.com/AntonStoeckl/library-reservations-go/shell"
	"github.com/AntonStoeckl/library-reservations-go/store"
)

const (
	msgInvalidID     = "invalid id"
	msgInvalidBody   = "invalid request body"
	msgInvalidStatus = "invalid status filter"
	msgInternal      = "internal error"

	logMsgRequestFailed = "http api: request failed"
	logAttrPath         = "path"
	logAttrError        = "error"
)

// Engine is the part of allocation.Engine the routes call.
type Engine interface {
	Reserve(ctx context.Context, userID core.UserID, bookID core.BookID) (core.Outcome, error)
	PickUp(ctx context.Context, reservationID core.ReservationID) (core.Outcome, error)
	ApproveTakeBook(ctx context.Context, reservationID core.ReservationID) (core.Outcome, error)
	Cancel(ctx context.Context, userID core.UserID, reservationID core.ReservationID) (core.Outcome, error)
	ReturnBook(ctx context.Context, reservationID core.ReservationID) (core.Outcome, error)
	AutoAssignNextUser(ctx context.Context, bookID core.BookID) (core.Outcome, error)
	AddBookCopies(ctx context.Context, bookID core.BookID, count int) (core.Outcome, error)
	GetAllReservations(ctx context.Context, filter store.StatusFilter) (allreservations.Reservations, error)
	GetUserReservations(ctx context.Context, userID core.UserID) (userreservations.UserReservations, error)
}

type api struct {
	engine Engine
	logger shell.Logger
}

// Option configures the router.
type Option func(*api)

// WithLogger sets the logger for failed requests.
func WithLogger(logger shell.Logger) Option {
	return func(a *api) {
		a.logger = logger
	}
}

// NewRouter registers all routes on a new gin engine.
func NewRouter(engine Engine, opts ...Option) *gin.Engine {
	a := &api{engine: engine}
	for _, opt := range opts {
		opt(a)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/reservations", a.reserve)
	router.GET("/reservations", a.allReservations)
	router.POST("/reservations/:id/pickup", a.pickUp)
	router.POST("/reservations/:id/approve-take", a.approveTake)
	router.POST("/reservations/:id/cancel", a.cancel)
	router.POST("/reservations/:id/return", a.returnBook)
	router.POST("/books/:id/auto-assign", a.autoAssign)
	router.POST("/books/:id/copies", a.addCopies)
	router.GET("/users/:id/reservations", a.userReservations)

	return router
}

type reserveRequest struct {
	UserID string `json:"userId" binding:"required"`
	BookID string `json:"bookId" binding:"required"`
}

type cancelRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type addCopiesRequest struct {
	Count int `json:"count" binding:"required"`
}

func (a *api) reserve(c *gin.Context) {
	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, msgInvalidBody)
		return
	}

	userID, userErr := uuid.Parse(req.UserID)
	bookID, bookErr := uuid.Parse(req.BookID)
	if userErr != nil || bookErr != nil {
		a.badRequest(c, msgInvalidID)
		return
	}

	outcome, err := a.engine.Reserve(c.Request.Context(), userID, bookID)
	a.respond(c, outcome, err)
}

func (a *api) pickUp(c *gin.Context) {
	a.withIDParam(c, a.engine.PickUp)
}

func (a *api) approveTake(c *gin.Context) {
	a.withIDParam(c, a.engine.ApproveTakeBook)
}

func (a *api) returnBook(c *gin.Context) {
	a.withIDParam(c, a.engine.ReturnBook)
}

func (a *api) autoAssign(c *gin.Context) {
	a.withIDParam(c, a.engine.AutoAssignNextUser)
}

func (a *api) cancel(c *gin.Context) {
	reservationID, ok := a.idParam(c)
	if !ok {
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, msgInvalidBody)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		a.badRequest(c, msgInvalidID)
		return
	}

	outcome, err := a.engine.Cancel(c.Request.Context(), userID, reservationID)
	a.respond(c, outcome, err)
}

func (a *api) addCopies(c *gin.Context) {
	bookID, ok := a.idParam(c)
	if !ok {
		return
	}

	var req addCopiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, msgInvalidBody)
		return
	}

	outcome, err := a.engine.AddBookCopies(c.Request.Context(), bookID, req.Count)
	a.respond(c, outcome, err)
}

func (a *api) allReservations(c *gin.Context) {
	filter := store.AnyStatus()

	if raw, present := c.GetQuery("status"); present {
		code, err := strconv.Atoi(raw)
		if err != nil {
			a.badRequest(c, msgInvalidStatus)
			return
		}

		status, err := core.ParseStatusCode(code)
		if err != nil {
			a.badRequest(c, msgInvalidStatus)
			return
		}

		filter = store.OnlyStatus(status)
	}

	result, err := a.engine.GetAllReservations(c.Request.Context(), filter)
	if err != nil {
		a.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, allReservationsResponseFrom(result))
}

func (a *api) userReservations(c *gin.Context) {
	userID, ok := a.idParam(c)
	if !ok {
		return
	}

	result, err := a.engine.GetUserReservations(c.Request.Context(), userID)
	if err != nil {
		a.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, userReservationsResponseFrom(result))
}

func (a *api) withIDParam(c *gin.Context, operation func(context.Context, uuid.UUID) (core.Outcome, error)) {
	id, ok := a.idParam(c)
	if !ok {
		return
	}

	outcome, err := operation(c.Request.Context(), id)
	a.respond(c, outcome, err)
}

func (a *api) idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		a.badRequest(c, msgInvalidID)
		return uuid.UUID{}, false
	}

	return id, true
}

func (a *api) respond(c *gin.Context, outcome core.Outcome, err error) {
	if err != nil {
		a.internalError(c, err)
		return
	}

	c.JSON(HTTPStatusOf(outcome), outcomeResponseFrom(outcome))
}

func (a *api) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, outcomeResponse{Message: message, Status: core.NoStatusCode})
}

func (a *api) internalError(c *gin.Context, err error) {
	if a.logger != nil {
		a.logger.Error(logMsgRequestFailed, logAttrPath, c.FullPath(), logAttrError, err.Error())
	}

	c.JSON(http.StatusInternalServerError, outcomeResponse{Message: msgInternal, Status: core.NoStatusCode})
}

// HTTPStatusOf maps an Outcome to the HTTP status of its response.
func HTTPStatusOf(outcome core.Outcome) int {
	switch err := outcome.Err; {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrInvalidCopyCount):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrInvalidState),
		errors.Is(err, core.ErrInsufficientStock),
		errors.Is(err, core.ErrEmptyQueue):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
