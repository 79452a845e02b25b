package llm

import (
	"context"
	"sync"

	"github.com/askksa/askksa/internal/models"
)

// MockGenerator is a scriptable Generator for tests and offline runs.
type MockGenerator struct {
	mu       sync.Mutex
	Response string
	Err      error
	Calls    [][]models.Message
}

// NewMockGenerator returns a generator that always answers with response.
func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

// Generate records the messages and returns the scripted response or error.
func (m *MockGenerator) Generate(ctx context.Context, messages []models.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := make([]models.Message, len(messages))
	copy(msgs, messages)
	m.Calls = append(m.Calls, msgs)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Close is a no-op.
func (m *MockGenerator) Close() error {
	return nil
}
