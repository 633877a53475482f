// Package outbox is a transactional outbox for integration events.
//
// Events are written to a database table, optionally within the same
// transaction as the application's own changes, and later relayed to a
// message broker by a [Dispatcher].
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/saastack/eventing/broker"
	"github.com/saastack/eventing/notification"
	"gorm.io/gorm"
)

// Message is a row in the outbox table.
type Message struct {
	ID        uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	EventID   string     `gorm:"column:event_id;type:varchar(255);not null;uniqueIndex"`
	Topic     string     `gorm:"column:topic;type:varchar(255);not null"`
	Key       string     `gorm:"column:message_key;type:varchar(255)"`
	Body      []byte     `gorm:"column:body;not null"`
	Headers   string     `gorm:"column:headers;type:text"`
	Attempts  int        `gorm:"column:attempts;not null;default:0"`
	LastError string     `gorm:"column:last_error;type:text"`
	CreatedAt time.Time  `gorm:"column:created_at;not null"`
	SentAt    *time.Time `gorm:"column:sent_at;index"`
}

// TableName returns the name of the outbox table.
func (Message) TableName() string { return "eventing_outbox" }

// Migrate creates or updates the outbox table.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(&Message{})
}

// Broker is a [notification.MessageBroker] that writes integration events to
// the outbox table.
type Broker struct {
	DB *gorm.DB
}

var (
	_ notification.MessageBroker = (*Broker)(nil)
	_ broker.Sender              = (*Broker)(nil)
)

// Publish writes ev to the outbox.
func (b *Broker) Publish(ctx context.Context, ev notification.IntegrationEvent) error {
	return b.PublishInTx(ctx, b.DB, ev)
}

// PublishInTx writes ev to the outbox using tx, which may be a transaction
// that also contains the application's own changes.
func (b *Broker) PublishInTx(ctx context.Context, tx *gorm.DB, ev notification.IntegrationEvent) error {
	m, err := broker.Encode(ev)
	if err != nil {
		return fmt.Errorf("outbox publish: %w", err)
	}

	return b.sendInTx(ctx, tx, m)
}

// Send writes an encoded message to the outbox.
func (b *Broker) Send(ctx context.Context, m broker.Message) error {
	return b.sendInTx(ctx, b.DB, m)
}

func (b *Broker) sendInTx(ctx context.Context, tx *gorm.DB, m broker.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if tx == nil {
		return fmt.Errorf("outbox publish: %w", broker.ErrPublishFailed)
	}

	row, err := newMessage(m)
	if err != nil {
		return err
	}

	return broker.WrapPublishError(
		"outbox",
		m.Topic,
		tx.WithContext(ctx).Create(&row).Error,
	)
}

func newMessage(m broker.Message) (Message, error) {
	headers, err := json.Marshal(m.Headers)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %w", broker.ErrSerializationFailed, err)
	}

	return Message{
		EventID:   m.Headers[broker.EventIDHeader],
		Topic:     m.Topic,
		Key:       m.Key,
		Body:      m.Body,
		Headers:   string(headers),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// message converts the row back to the message that was written.
func (r Message) message() (broker.Message, error) {
	m := broker.Message{
		Topic: r.Topic,
		Key:   r.Key,
		Body:  r.Body,
	}

	if r.Headers != "" {
		if err := json.Unmarshal([]byte(r.Headers), &m.Headers); err != nil {
			return broker.Message{}, fmt.Errorf("outbox message %d is corrupt: %w", r.ID, err)
		}
	}

	return m, nil
}
