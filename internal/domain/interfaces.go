package domain

import (
	"context"
	"time"
)

// DecisionSource produces a decision set for one cycle from a snapshot of
// the record store. Implementations must not crash on upstream garbage: an
// unusable response becomes a fallback or empty decision set, never a panic.
type DecisionSource interface {
	Propose(ctx context.Context, snap Snapshot) (*DecisionSet, error)
}

// EmailTransport delivers a customer response. Failures here are opaque to
// the executor beyond the synchronous error return.
type EmailTransport interface {
	Send(to, subject, body string) (*EmailReceipt, error)
}

// SocialPublisher publishes a post to a platform.
type SocialPublisher interface {
	Publish(platform, content, vehicleVIN string) (*PostReceipt, error)
}

// EmailReceipt is the delivery acknowledgment returned by a transport.
type EmailReceipt struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Sent      bool      `json:"sent"`
	Method    string    `json:"method"`
	Timestamp time.Time `json:"timestamp"`
}

// PostReceipt is the acknowledgment returned by a social publisher.
type PostReceipt struct {
	ID        string    `json:"id"`
	Platform  string    `json:"platform"`
	Path      string    `json:"path,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
