package notify

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects for published events
const (
	SubjectResults  = "taskrunner.results"
	SubjectSessions = "taskrunner.sessions"
)

// TaskEvent is published after a task finishes all its attempts
type TaskEvent struct {
	SessionID string    `json:"session_id"`
	Name      string    `json:"name"`
	Success   bool      `json:"success"`
	Attempts  int       `json:"attempts"`
	Duration  float64   `json:"duration"` // seconds, last attempt
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionEvent is published after a session ends
type SessionEvent struct {
	SessionID  string    `json:"session_id"`
	Request    string    `json:"request"`
	HadFailure bool      `json:"had_failure"`
	Tasks      int       `json:"tasks"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher emits task and session events. Publishing never affects the
// run outcome; failures are logged and dropped.
type Publisher interface {
	PublishTask(ev TaskEvent)
	PublishSession(ev SessionEvent)
	Close()
}

// Noop discards all events. Used when NATS_URL is not configured.
type Noop struct{}

func (Noop) PublishTask(TaskEvent)       {}
func (Noop) PublishSession(SessionEvent) {}
func (Noop) Close()                      {}

// NATSPublisher publishes events to a NATS server
type NATSPublisher struct {
	nc     *nats.Conn
	logger *log.Logger
}

// Connect establishes a NATS connection for event publishing
func Connect(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("taskrunner"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{
		nc:     nc,
		logger: log.New(log.Writer(), "[NOTIFY] ", log.LstdFlags),
	}, nil
}

// NewFromConfig returns a NATS publisher when url is set, otherwise Noop.
// A failed connection degrades to Noop with a logged warning.
func NewFromConfig(url string) Publisher {
	if url == "" {
		return Noop{}
	}

	pub, err := Connect(url)
	if err != nil {
		log.Printf("[NOTIFY] disabled: %v", err)
		return Noop{}
	}
	return pub
}

func (p *NATSPublisher) publish(subject string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		p.logger.Printf("Error marshaling event: %v", err)
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Printf("Error publishing to %s: %v", subject, err)
	}
}

func (p *NATSPublisher) PublishTask(ev TaskEvent) {
	p.publish(SubjectResults, ev)
}

func (p *NATSPublisher) PublishSession(ev SessionEvent) {
	p.publish(SubjectSessions, ev)
}

func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}
