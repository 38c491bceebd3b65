package audit

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/you/fintrack/domain"
)

// LogAuditLogger writes audit events as single key=value log lines
type LogAuditLogger struct {
	logger *log.Logger
}

// NewLogAuditLogger creates an audit logger. A nil logger uses the standard one.
func NewLogAuditLogger(logger *log.Logger) domain.AuditLogger {
	if logger == nil {
		logger = log.Default()
	}
	return &LogAuditLogger{logger: logger}
}

// LogEvent implements domain.AuditLogger
func (l *LogAuditLogger) LogEvent(_ context.Context, event *domain.AuditEvent) error {
	if event == nil {
		return fmt.Errorf("nil audit event")
	}
	l.logger.Print(Format(event))
	return nil
}

// Format renders event as "EVENT: TYPE user_id=... key=value ...".
// Metadata keys are sorted so identical events produce identical lines.
func Format(event *domain.AuditEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "EVENT: %s user_id=%d", event.EventType, event.UserID)
	if event.ActorID != 0 {
		fmt.Fprintf(&b, " actor_id=%d", event.ActorID)
	}
	if event.Email != "" {
		fmt.Fprintf(&b, " email=%s", event.Email)
	}
	fmt.Fprintf(&b, " success=%t", event.Success)

	keys := make([]string, 0, len(event.Metadata))
	for k := range event.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, event.Metadata[k])
	}

	if event.ErrorMsg != "" {
		fmt.Fprintf(&b, " error=%q", event.ErrorMsg)
	}
	return b.String()
}
