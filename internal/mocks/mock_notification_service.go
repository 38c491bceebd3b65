package mocks

import (
	"sync"

	"github.com/you/fintrack/domain"
)

// SentMessage is one message captured by MockNotificationService
type SentMessage struct {
	Channel domain.Channel
	To      string
	Subject string
	Body    string
}

// MockNotificationService implements domain.NotificationService interface
// for testing and records every delivered message
type MockNotificationService struct {
	SendSMSFunc   func(to, message string) error
	SendEmailFunc func(to, subject, body string) error

	mu   sync.Mutex
	sent []SentMessage
}

// NewMockNotificationService creates a new MockNotificationService with default behaviors
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// SendSMS implements domain.NotificationService
func (m *MockNotificationService) SendSMS(to, message string) error {
	if m.SendSMSFunc != nil {
		if err := m.SendSMSFunc(to, message); err != nil {
			return err
		}
	}
	m.record(SentMessage{Channel: domain.ChannelSMS, To: to, Body: message})
	return nil
}

// SendEmail implements domain.NotificationService
func (m *MockNotificationService) SendEmail(to, subject, body string) error {
	if m.SendEmailFunc != nil {
		if err := m.SendEmailFunc(to, subject, body); err != nil {
			return err
		}
	}
	m.record(SentMessage{Channel: domain.ChannelEmail, To: to, Subject: subject, Body: body})
	return nil
}

func (m *MockNotificationService) record(msg SentMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

// Sent returns a copy of every message delivered so far
func (m *MockNotificationService) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.sent...)
}

// Last returns the most recent message, or false when nothing was sent
func (m *MockNotificationService) Last() (SentMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return SentMessage{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// Compile-time interface compliance verification
var _ domain.NotificationService = (*MockNotificationService)(nil)
