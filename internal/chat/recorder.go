package chat

import (
	"context"
	"sync"
)

// Notice is a recorded notification.
type Notice struct {
	Level Level
	Text  string
}

// Recorder is a Sink and Notifier that keeps everything it receives.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	notices  []Notice
}

// Send records msg.
func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

// Notify records the notice.
func (r *Recorder) Notify(_ context.Context, level Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Level: level, Text: text})
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
	r.notices = nil
}

// Fanout is a Sink that forwards to every wrapped sink, returning the first error.
type Fanout []Sink

// Send forwards msg to each sink in order.
func (f Fanout) Send(ctx context.Context, msg Message) error {
	var first error
	for _, s := range f {
		if err := s.Send(ctx, msg); err != nil && first == nil {
			first = err
		}
	}
	return first
}
