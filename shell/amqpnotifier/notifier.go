package amqpnotifier

import (
	"context"
	"errors"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/shell"
)

const (
	// RoutingKeyAssigned is the routing key of AssignedMessage.
	RoutingKeyAssigned = "reservation.assigned"

	exchangeKindTopic = "topic"
	contentTypeJSON   = "application/json"
)

const (
	logMsgPublished     = "amqp notifier: assignment published"
	logMsgPublishFailed = "amqp notifier: publishing assignment failed"

	logAttrReservationID = "reservation_id"
	logAttrExchange      = "exchange"
	logAttrError         = "error"
)

var (
	// ErrEmptyExchangeName is returned when no exchange name is configured.
	ErrEmptyExchangeName = errors.New("exchange name must not be empty")

	// ErrNilChannel is returned when the notifier is created without a channel.
	ErrNilChannel = errors.New("amqp channel must not be nil")

	// ErrDeclaringExchangeFailed is returned when the exchange could not be declared.
	ErrDeclaringExchangeFailed = errors.New("declaring exchange failed")

	// ErrPublishingFailed is returned when a message could not be published.
	ErrPublishingFailed = errors.New("publishing message failed")

	// ErrEncodingFailed is returned when a message could not be encoded.
	ErrEncodingFailed = errors.New("encoding message failed")
)

// AssignedMessage is the body of a reservation.assigned message.
type AssignedMessage struct {
	ReservationID string    `json:"reservationId"`
	UserID        string    `json:"userId"`
	BookID        string    `json:"bookId"`
	AssignedAt    time.Time `json:"assignedAt"`
}

// Channel is the part of *amqp.Channel the Notifier uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Notifier implements shell.Notifier on top of an AMQP channel.
type Notifier struct {
	mu       sync.Mutex
	ch       Channel
	conn     *amqp.Connection
	exchange string
	logger   shell.Logger
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLogger sets a logger for published and failed messages.
func WithLogger(logger shell.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// Dial connects to the broker, opens a channel, and declares the exchange.
func Dial(url string, exchange string, opts ...Option) (*Notifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	n, err := NewNotifier(ch, exchange, opts...)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return nil, err
	}

	n.conn = conn

	return n, nil
}

// NewNotifier declares the exchange on an open channel.
func NewNotifier(ch Channel, exchange string, opts ...Option) (*Notifier, error) {
	if ch == nil {
		return nil, ErrNilChannel
	}

	if exchange == "" {
		return nil, ErrEmptyExchangeName
	}

	if err := ch.ExchangeDeclare(exchange, exchangeKindTopic, true, false, false, false, nil); err != nil {
		return nil, errors.Join(ErrDeclaringExchangeFailed, err)
	}

	n := &Notifier{ch: ch, exchange: exchange}
	for _, opt := range opts {
		opt(n)
	}

	return n, nil
}

// NotifyAssigned publishes one message per assignment. Failed messages do not stop the others.
func (n *Notifier) NotifyAssigned(ctx context.Context, assignments []core.Assignment) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var errs []error

	for _, a := range assignments {
		if err := n.publish(ctx, a); err != nil {
			n.logFailure(a, err)
			errs = append(errs, err)

			continue
		}

		if n.logger != nil {
			n.logger.Debug(logMsgPublished, logAttrReservationID, a.ReservationID.String(), logAttrExchange, n.exchange)
		}
	}

	return errors.Join(errs...)
}

func (n *Notifier) publish(ctx context.Context, a core.Assignment) error {
	body, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(AssignedMessage{
		ReservationID: a.ReservationID.String(),
		UserID:        a.UserID.String(),
		BookID:        a.BookID.String(),
		AssignedAt:    a.AssignedAt,
	})
	if err != nil {
		return errors.Join(ErrEncodingFailed, err)
	}

	err = n.ch.PublishWithContext(ctx, n.exchange, RoutingKeyAssigned, false, false, amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    a.ReservationID.String(),
		Timestamp:    a.AssignedAt,
		Body:         body,
	})
	if err != nil {
		return errors.Join(ErrPublishingFailed, err)
	}

	return nil
}

func (n *Notifier) logFailure(a core.Assignment, err error) {
	if n.logger == nil {
		return
	}

	n.logger.Error(logMsgPublishFailed,
		logAttrReservationID, a.ReservationID.String(),
		logAttrExchange, n.exchange,
		logAttrError, err.Error())
}

// Close closes the channel and, if the Notifier dialed it, the connection.
func (n *Notifier) Close() error {
	err := n.ch.Close()

	if n.conn != nil {
		err = errors.Join(err, n.conn.Close())
	}

	return err
}
