// Package amqpnotifier publishes a message for every reservation that gets a copy assigned.
//
// Messages go to a durable topic exchange with the routing key "reservation.assigned",
// the body is the JSON encoded AssignedMessage. Mail delivery and other consumers bind their own queues.
package amqpnotifier
