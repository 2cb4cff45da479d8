package amqpnotifier_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/shell/amqpnotifier"
	"github.com/AntonStoeckl/library-reservations-go/testutil/helper"
	"github.com/AntonStoeckl/library-reservations-go/testutil/observability/testdoubles"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type channelSpy struct {
	declared   []string
	published  []published
	declareErr error
	publishErr error
	closed     bool
}

func (c *channelSpy) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	c.declared = append(c.declared, name+":"+kind)
	return c.declareErr
}

func (c *channelSpy) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}

	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})

	return nil
}

func (c *channelSpy) Close() error {
	c.closed = true
	return nil
}

func givenAssignment(t *testing.T) core.Assignment {
	t.Helper()

	return core.Assignment{
		ReservationID: helper.GivenUniqueID(t),
		UserID:        helper.GivenUniqueID(t),
		BookID:        helper.GivenUniqueID(t),
		AssignedAt:    helper.FakeClock,
	}
}

func Test_NewNotifier_DeclaresATopicExchange(t *testing.T) {
	// arrange
	ch := &channelSpy{}

	// act
	_, err := amqpnotifier.NewNotifier(ch, "library")

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"library:topic"}, ch.declared)
}

func Test_NewNotifier_Errors(t *testing.T) {
	_, nilErr := amqpnotifier.NewNotifier(nil, "library")
	_, emptyErr := amqpnotifier.NewNotifier(&channelSpy{}, "")
	_, declareErr := amqpnotifier.NewNotifier(&channelSpy{declareErr: errors.New("access refused")}, "library")

	assert.ErrorIs(t, nilErr, amqpnotifier.ErrNilChannel)
	assert.ErrorIs(t, emptyErr, amqpnotifier.ErrEmptyExchangeName)
	assert.ErrorIs(t, declareErr, amqpnotifier.ErrDeclaringExchangeFailed)
}

func Test_NotifyAssigned_PublishesOneMessagePerAssignment(t *testing.T) {
	// arrange
	ch := &channelSpy{}
	notifier, err := amqpnotifier.NewNotifier(ch, "library")
	require.NoError(t, err)
	first, second := givenAssignment(t), givenAssignment(t)

	// act
	err = notifier.NotifyAssigned(context.Background(), []core.Assignment{first, second})

	// assert
	require.NoError(t, err)
	require.Len(t, ch.published, 2)
	assert.Equal(t, "library", ch.published[0].exchange)
	assert.Equal(t, amqpnotifier.RoutingKeyAssigned, ch.published[0].key)
	assert.Equal(t, "application/json", ch.published[0].msg.ContentType)
	assert.Equal(t, first.ReservationID.String(), ch.published[0].msg.MessageId)

	var body amqpnotifier.AssignedMessage
	require.NoError(t, jsoniter.Unmarshal(ch.published[1].msg.Body, &body))
	assert.Equal(t, second.ReservationID.String(), body.ReservationID)
	assert.Equal(t, second.UserID.String(), body.UserID)
	assert.True(t, helper.FakeClock.Equal(body.AssignedAt))
}

func Test_NotifyAssigned_ReportsAndLogsFailures(t *testing.T) {
	// arrange
	ch := &channelSpy{}
	logHandler := testdoubles.NewLogHandlerSpy(false)
	notifier, err := amqpnotifier.NewNotifier(ch, "library", amqpnotifier.WithLogger(slog.New(logHandler)))
	require.NoError(t, err)
	ch.publishErr = amqp.ErrClosed

	// act
	err = notifier.NotifyAssigned(context.Background(), []core.Assignment{givenAssignment(t)})

	// assert
	assert.ErrorIs(t, err, amqpnotifier.ErrPublishingFailed)
	assert.ErrorIs(t, err, amqp.ErrClosed)
	assert.True(t, logHandler.HasLogWithMessage(slog.LevelError, "amqp notifier: publishing assignment failed").Assert())
}

func Test_Close_ClosesTheChannel(t *testing.T) {
	// arrange
	ch := &channelSpy{}
	notifier, err := amqpnotifier.NewNotifier(ch, "library")
	require.NoError(t, err)

	// act
	err = notifier.Close()

	// assert
	require.NoError(t, err)
	assert.True(t, ch.closed)
}
