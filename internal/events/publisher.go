package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher delivers domain events after the state change they describe has committed
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
	Close() error
}

// BidPlaced is published after a bid commits
type BidPlaced struct {
	AuctionID     int64     `json:"auction_id"`
	BidID         int64     `json:"bid_id"`
	UserID        string    `json:"user_id"`
	Amount        string    `json:"amount"`
	PreviousPrice string    `json:"previous_price"`
	RefundedUser  string    `json:"refunded_user,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// AuctionEnded is published after an auction reaches its terminal state
type AuctionEnded struct {
	AuctionID     int64     `json:"auction_id"`
	Path          string    `json:"path"`
	Sold          bool      `json:"sold"`
	WinnerID      string    `json:"winner_id,omitempty"`
	FinalPrice    string    `json:"final_price,omitempty"`
	EndedManually bool      `json:"ended_manually"`
	Timestamp     time.Time `json:"timestamp"`
}

// BidSubject is the subject bid events for an auction are published on
func BidSubject(auctionID int64) string {
	return fmt.Sprintf("auction.%d.bid", auctionID)
}

// EndedSubject is the subject termination events for an auction are published on
func EndedSubject(auctionID int64) string {
	return fmt.Sprintf("auction.%d.ended", auctionID)
}

// NATSPublisher publishes JSON-encoded events on a NATS connection
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the NATS server at url
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("auction-engine"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("events: failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// Publish marshals event and publishes it on subject
func (p *NATSPublisher) Publish(ctx context.Context, subject string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("events: failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Close drains pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// NopPublisher discards every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close() error                               { return nil }

// Message is an event captured by MemoryPublisher
type Message struct {
	Subject string
	Event   any
}

// MemoryPublisher keeps published events in memory
type MemoryPublisher struct {
	mu       sync.Mutex
	messages []Message
}

// Publish records the event
func (p *MemoryPublisher) Publish(_ context.Context, subject string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, Message{Subject: subject, Event: event})
	return nil
}

// Messages returns a copy of everything published so far
func (p *MemoryPublisher) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Message(nil), p.messages...)
}

func (p *MemoryPublisher) Close() error { return nil }
