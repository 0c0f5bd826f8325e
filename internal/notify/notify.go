// Package notify is the toast channel: every validation failure and every
// success produces exactly one message with text specific to its cause.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Level represents the kind of toast
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Message is a single user-visible notification
type Message struct {
	Level     Level     `json:"level"`
	Cause     string    `json:"cause"`
	Text      string    `json:"text"`
	SessionID string    `json:"session_id,omitempty"`
	Time      time.Time `json:"time"`
}

// Notifier delivers messages. Delivery is fire-and-forget.
type Notifier interface {
	Notify(msg Message)
}

// Func adapts a function to the Notifier interface
type Func func(msg Message)

func (f Func) Notify(msg Message) { f(msg) }

// Multi fans a message out to several notifiers
type Multi []Notifier

func (m Multi) Notify(msg Message) {
	if msg.Time.IsZero() {
		msg.Time = time.Now()
	}
	for _, n := range m {
		if n != nil {
			n.Notify(msg)
		}
	}
}

// Logger writes messages to a zap logger
type Logger struct {
	log *zap.Logger
}

// NewLogger creates a notifier logging through log
func NewLogger(log *zap.Logger) *Logger {
	return &Logger{log: log}
}

func (l *Logger) Notify(msg Message) {
	fields := []zap.Field{
		zap.String("level", string(msg.Level)),
		zap.String("cause", msg.Cause),
		zap.String("session_id", msg.SessionID),
	}
	if msg.Level == LevelError || msg.Level == LevelWarning {
		l.log.Warn(msg.Text, fields...)
		return
	}
	l.log.Info(msg.Text, fields...)
}

// Channel is the redis pub/sub channel carrying notifications
const Channel = "festival:notifications"

// Publisher pushes messages onto a redis channel for other instances and
// dashboards to consume
type Publisher struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
	timeout time.Duration
}

// NewPublisher creates a redis-backed notifier
func NewPublisher(client *redis.Client, log *zap.Logger) *Publisher {
	return &Publisher{client: client, channel: Channel, log: log, timeout: 2 * time.Second}
}

func (p *Publisher) Notify(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		p.log.Error("failed to marshal notification", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.log.Warn("failed to publish notification", zap.String("channel", p.channel), zap.Error(err))
	}
}

// Recorder keeps every message it receives. Useful in tests and for replaying
// the last messages of a session.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Notify(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Messages returns a copy of the recorded messages
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Reset drops the recorded messages
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
