// Package mail defines the outgoing report email and the transports that
// deliver it.
package mail

import (
	"context"
	"errors"
	"sync"
)

// Attachment is a file attached to a message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is one outgoing email.
type Message struct {
	FromName    string
	From        string
	To          []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Validate checks that the message can be handed to a transport.
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return errors.New("message has no recipients")
	}
	if m.Subject == "" {
		return errors.New("message has no subject")
	}
	return nil
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Recorder is a Sender that keeps messages in memory. It is used by the
// preview command and in tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
	// Err, when set, is returned from Send and the message is not recorded.
	Err error
}

// Send records msg, or returns r.Err when set.
func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns the recorded messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.sent))
	copy(out, r.sent)
	return out
}
