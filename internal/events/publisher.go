package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/technosupport/live-urlgen/internal/urlgen"
)

// Generated is published once per successful form submission.
// Validation keys are never included.
type Generated struct {
	ID           string    `json:"id"`
	OccurredAt   time.Time `json:"occurred_at"`
	AppName      string    `json:"app_name"`
	StreamName   string    `json:"stream_name"`
	IngestDomain string    `json:"ingest_domain"`
	StreamDomain string    `json:"stream_domain"`
	Templates    []string  `json:"templates"`
	URLCount     int       `json:"url_count"`
	IngestSigned bool      `json:"ingest_signed"`
	StreamSigned bool      `json:"stream_signed"`
}

func NewGenerated(in urlgen.FormInput, res *urlgen.Result) *Generated {
	return &Generated{
		ID:           res.ID,
		OccurredAt:   time.Now().UTC(),
		AppName:      in.AppName,
		StreamName:   in.StreamName,
		IngestDomain: in.IngestDomain,
		StreamDomain: in.StreamDomain,
		Templates:    urlgen.ParseTemplates(in.TranscodingTemplates)[1:],
		URLCount:     len(res.URLs()),
		IngestSigned: in.IngestValidationKey != "",
		StreamSigned: in.StreamValidationKey != "",
	}
}

type Publisher interface {
	Publish(evt *Generated) error
}

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

var _ Conn = (*nats.Conn)(nil)

type NATSPublisher struct {
	conn       Conn
	subject    string
	maxRetries int
	backoff    time.Duration
}

func NewNATSPublisher(conn Conn, subject string, maxRetries int) *NATSPublisher {
	return &NATSPublisher{
		conn:       conn,
		subject:    subject,
		maxRetries: maxRetries,
		backoff:    100 * time.Millisecond,
	}
}

// Connect dials url and returns a publisher on subject.
func Connect(url, subject string, maxRetries int) (*NATSPublisher, *nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("live-urlgen"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}
	return NewNATSPublisher(nc, subject, maxRetries), nc, nil
}

func (p *NATSPublisher) Publish(evt *Generated) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	for i := 0; i <= p.maxRetries; i++ {
		err = p.conn.Publish(p.subject, data)
		if err == nil {
			return nil
		}
		if i < p.maxRetries {
			time.Sleep(time.Duration(i+1) * p.backoff)
		}
	}

	return fmt.Errorf("publish failed after %d retries: %w", p.maxRetries, err)
}

// Noop discards events; used when no NATS URL is configured.
type Noop struct{}

func (Noop) Publish(*Generated) error { return nil }
