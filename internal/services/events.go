package services

import (
	"github.com/sirupsen/logrus"
)

const (
	EventUserRegistered = "user.registered"
	EventPostCreated    = "post.created"
	EventPostUpdated    = "post.updated"
	EventPostDeleted    = "post.deleted"
	EventCommentCreated = "comment.created"
)

// EventPublisher publishes domain events. The RabbitMQ client implements it.
type EventPublisher interface {
	PublishEvent(name string, data map[string]interface{}) error
}

// publishEvent sends an event when a publisher is configured. Failures are
// logged and never fail the request.
func publishEvent(pub EventPublisher, log logrus.FieldLogger, name string, data map[string]interface{}) {
	if pub == nil {
		return
	}
	if err := pub.PublishEvent(name, data); err != nil {
		log.WithError(err).WithField("event", name).Warn("failed to publish event")
	}
}
