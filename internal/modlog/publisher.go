package modlog

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/PancyStudios/PancyModGo/pkg/mqtt"
	"github.com/goccy/go-json"
)

// Sender is the part of the broker client the publisher needs
type Sender interface {
	Topic(name string) string
	Publish(topic string, payload interface{}) error
}

// Publisher announces action changes
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Notifier wraps a Publisher with the per-event helpers used by commands and
// the moderation pipeline
type Notifier struct {
	Publisher Publisher
}

// PublishCreate announces a freshly stored record
func (n *Notifier) PublishCreate(ctx context.Context, rec *models.ActionRecord) error {
	return n.Publisher.Publish(ctx, NewEvent(EventCreate, rec.ID, rec.GuildID))
}

// PublishRevoked announces a change of the revoked or hidden flag
func (n *Notifier) PublishRevoked(ctx context.Context, rec *models.ActionRecord) error {
	return n.Publisher.Publish(ctx, NewEvent(EventRevoked, rec.ID, rec.GuildID))
}

// PublishAttachments announces new images on a record
func (n *Notifier) PublishAttachments(ctx context.Context, rec *models.ActionRecord) error {
	return n.Publisher.Publish(ctx, NewEvent(EventAttachments, rec.ID, rec.GuildID))
}

// BrokerPublisher publishes events to the message broker; every bot instance
// subscribed with Subscribe handles them
type BrokerPublisher struct {
	sender Sender
}

// NewBrokerPublisher creates a publisher on top of the broker client
func NewBrokerPublisher(sender Sender) *BrokerPublisher {
	return &BrokerPublisher{sender: sender}
}

// Publish sends ev to its topic
func (p *BrokerPublisher) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.sender.Publish(p.sender.Topic(topicName(ev.Type)), ev); err != nil {
		return fmt.Errorf("publish %s for action %d: %w", ev.Type, ev.ActionID, err)
	}
	return nil
}

// LocalPublisher hands events straight to a consumer in the same process.
// It is used when no broker is configured.
type LocalPublisher struct {
	consumer *Consumer
}

// NewLocalPublisher creates an in-process publisher
func NewLocalPublisher(c *Consumer) *LocalPublisher {
	return &LocalPublisher{consumer: c}
}

// Publish handles ev synchronously
func (p *LocalPublisher) Publish(ctx context.Context, ev Event) error {
	return p.consumer.Handle(ctx, ev)
}

// Subscribe feeds every modlog topic of the broker into the consumer
func Subscribe(mc *mqtt.MqttCommunicator, c *Consumer) error {
	return mc.Subscribe(mc.Topic(topicName("+")), func(topic string, payload []byte) {
		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			logger.Warn(fmt.Sprintf("Evento inválido en %s: %v", topic, err), "Fanout")
			return
		}
		if err := c.Handle(context.Background(), ev); err != nil {
			logger.Error(fmt.Sprintf("Error procesando %s del caso #%d: %v", ev.Type, ev.ActionID, err), "Fanout")
		}
	})
}
