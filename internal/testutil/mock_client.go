// Package testutil provides shared test helpers and mock objects.
package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/j2y-cmd/touch-race/internal/protocol"
)

// SimpleClient is a lightweight in-memory client for tests that only
// need to capture outgoing messages.
type SimpleClient struct {
	ID   string
	Name string
	Char string

	mu       sync.Mutex
	messages []*protocol.Message
	closed   bool
}

func NewSimpleClient(id, name, char string) *SimpleClient {
	return &SimpleClient{ID: id, Name: name, Char: char}
}

func (c *SimpleClient) GetID() string   { return c.ID }
func (c *SimpleClient) GetName() string { return c.Name }
func (c *SimpleClient) GetChar() string { return c.Char }

func (c *SimpleClient) SetProfile(name, char string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Name = name
	c.Char = char
}

func (c *SimpleClient) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *SimpleClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Messages returns a copy of all messages sent so far.
func (c *SimpleClient) Messages() []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*protocol.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// LastMessage returns the most recent message, or nil if none.
func (c *SimpleClient) LastMessage() *protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return nil
	}
	return c.messages[len(c.messages)-1]
}

// MessagesOfType filters captured messages by type.
func (c *SimpleClient) MessagesOfType(t protocol.MessageType) []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*protocol.Message
	for _, m := range c.messages {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

func (c *SimpleClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// MockClient is a testify mock for expectation-style tests.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	return m.Called().String(0)
}

func (m *MockClient) GetName() string {
	return m.Called().String(0)
}

func (m *MockClient) GetChar() string {
	return m.Called().String(0)
}

func (m *MockClient) SetProfile(name, char string) {
	m.Called(name, char)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}
