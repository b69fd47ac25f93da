package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is where operation events are published unless overridden.
const DefaultSubject = "funds.operations.completed"

var _ Publisher = (*NATSPublisher)(nil)

type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher wraps an established NATS connection. An empty subject
// selects DefaultSubject.
func NewNATSPublisher(conn *nats.Conn, subject string) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}

	return &NATSPublisher{conn: conn, subject: subject}
}

func (p *NATSPublisher) PublishOperationCompleted(_ context.Context, ev OperationCompleted) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal operation event: %w", err)
	}

	err = p.conn.Publish(p.subject, data)
	if err != nil {
		return fmt.Errorf("publish operation event: %w", err)
	}

	return nil
}
