package domain

import (
	"context"
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Account verification events
	UserRegistrationEvent  AuditEventType = "USER_REGISTERED"
	OTPIssuedEvent         AuditEventType = "OTP_ISSUED"
	OTPVerifiedEvent       AuditEventType = "OTP_VERIFIED"
	OTPFailureEvent        AuditEventType = "OTP_VERIFICATION_FAILED"
	OTPResendIgnored       AuditEventType = "OTP_RESEND_IGNORED"
	PasswordResetRequest   AuditEventType = "PASSWORD_RESET_REQUESTED"
	PasswordResetIgnored   AuditEventType = "PASSWORD_RESET_IGNORED"
	PasswordResetCompleted AuditEventType = "PASSWORD_RESET_COMPLETED"
	PasswordChangedEvent   AuditEventType = "PASSWORD_CHANGED"

	// Authentication events
	UserLoginEvent        AuditEventType = "USER_LOGIN"
	UserLoginFailureEvent AuditEventType = "USER_LOGIN_FAILED"

	// Management events
	PermissionsChangedEvent AuditEventType = "PERMISSIONS_CHANGED"
	RoleChangedEvent        AuditEventType = "ROLE_CHANGED"
	ManagedUserCreatedEvent AuditEventType = "MANAGED_USER_CREATED"
	UserDeletedEvent        AuditEventType = "USER_DELETED"
	AccessDeniedEvent       AuditEventType = "ACCESS_DENIED"
)

// AuditEvent represents a business event that occurred in the system
type AuditEvent struct {
	EventType AuditEventType         `json:"event_type"`
	UserID    uint                   `json:"user_id"`
	ActorID   uint                   `json:"actor_id,omitempty"`
	Email     string                 `json:"email,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	ErrorMsg  string                 `json:"error_msg,omitempty"`
	Success   bool                   `json:"success"`
}

// AuditLogger records audit events
type AuditLogger interface {
	LogEvent(ctx context.Context, event *AuditEvent) error
}

// NewAuditEvent creates a new audit event with common fields populated
func NewAuditEvent(eventType AuditEventType, userID uint) *AuditEvent {
	return &AuditEvent{
		EventType: eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]interface{}),
		Success:   true,
	}
}

// WithError sets error information on the audit event
func (e *AuditEvent) WithError(err error) *AuditEvent {
	e.Success = false
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

// WithEmail sets the email field
func (e *AuditEvent) WithEmail(email string) *AuditEvent {
	e.Email = email
	return e
}

// WithActor records who performed the action
func (e *AuditEvent) WithActor(actorID uint) *AuditEvent {
	e.ActorID = actorID
	return e
}

// WithMetadata adds metadata to the event
func (e *AuditEvent) WithMetadata(key string, value interface{}) *AuditEvent {
	e.Metadata[key] = value
	return e
}
