package mailer

import (
	"context"
	"sync"
)

// Mock records every email instead of sending it.
type Mock struct {
	mu        sync.Mutex
	Sent      []Email
	MessageID string
	Err       error
}

func (m *Mock) Send(_ context.Context, e Email) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, e)
	if m.Err != nil {
		return "", m.Err
	}
	return m.MessageID, nil
}

func (m *Mock) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
