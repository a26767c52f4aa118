package kafka

import (
	"encoding/json"
	"fmt"

	"event-hub/internal/config"
	"event-hub/internal/models"
)

// Notifier streams engagement changes to their Kafka topics. A nil
// Notifier is a no-op, so services work unchanged when Kafka is disabled.
type Notifier struct {
	Producer *Producer
	Topics   config.TopicConfig
}

func NewNotifier(producer *Producer, topics config.TopicConfig) *Notifier {
	return &Notifier{Producer: producer, Topics: topics}
}

func (n *Notifier) publish(topic, key string, payload any) error {
	if n == nil || n.Producer == nil {
		return nil
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [%s]: %s\n", topic, string(value))
	return n.Producer.Publish(topic, key, value)
}

func (n *Notifier) PublishEventCreated(event models.Event) error {
	return n.publish(n.topics().EventCreated, event.ID, event)
}

func (n *Notifier) PublishEventUpdated(event models.Event) error {
	return n.publish(n.topics().EventUpdated, event.ID, event)
}

func (n *Notifier) PublishEventDeleted(event models.Event) error {
	return n.publish(n.topics().EventDeleted, event.ID, event)
}

func (n *Notifier) PublishRSVPUpdated(rsvp models.RSVP) error {
	return n.publish(n.topics().RSVPUpdated, rsvp.EventID, rsvp)
}

func (n *Notifier) PublishReviewCreated(review models.Review) error {
	return n.publish(n.topics().ReviewCreated, review.EventID, review)
}

func (n *Notifier) topics() config.TopicConfig {
	if n == nil {
		return config.TopicConfig{}
	}
	return n.Topics
}
