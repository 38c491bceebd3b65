package notifications

import (
	"fmt"
	"log"
	"regexp"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/you/fintrack/domain"
)

// EmailSender delivers a single plain text message
type EmailSender interface {
	Send(to, subject, body string) error
}

// messageCreator is the slice of the Twilio REST API used for SMS
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// codePattern matches the numeric codes carried by OTP messages
var codePattern = regexp.MustCompile(`\d{4,}`)

// NotifierImpl implements domain.NotificationService with Twilio for SMS
// and an EmailSender for email. Channels without credentials are logged.
type NotifierImpl struct {
	sms        messageCreator
	fromNumber string
	mailer     EmailSender
	logCodes   bool
}

// NotifierOption configures a NotifierImpl
type NotifierOption func(*NotifierImpl)

// LogCodes keeps codes readable in the fallback log lines. Only local
// development should enable it.
func LogCodes(enabled bool) NotifierOption {
	return func(n *NotifierImpl) { n.logCodes = enabled }
}

// NewNotifier creates a new notification service. mailer may be nil.
func NewNotifier(accountSID, authToken, fromNumber string, mailer EmailSender, opts ...NotifierOption) domain.NotificationService {
	n := &NotifierImpl{fromNumber: fromNumber, mailer: mailer}
	for _, opt := range opts {
		opt(n)
	}
	if accountSID != "" && authToken != "" && fromNumber != "" {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		})
		n.sms = client.Api
	}
	return n
}

// SendSMS implements domain.NotificationService. Mobiles are stored as 10
// local digits and sent as given.
func (n *NotifierImpl) SendSMS(to, message string) error {
	if n.sms == nil {
		log.Printf("[MOCK SMS] to=%s message=%q", to, n.loggable(message))
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(n.fromNumber)
	params.SetBody(message)

	if _, err := n.sms.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}

// SendEmail implements domain.NotificationService
func (n *NotifierImpl) SendEmail(to, subject, body string) error {
	if n.mailer == nil {
		log.Printf("[MOCK EMAIL] to=%s subject=%q body=%q", to, subject, n.loggable(body))
		return nil
	}
	if err := n.mailer.Send(to, subject, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (n *NotifierImpl) loggable(message string) string {
	if n.logCodes {
		return message
	}
	return codePattern.ReplaceAllString(message, "******")
}
