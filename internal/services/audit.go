package services

import (
	"context"
	"log"

	"github.com/you/fintrack/domain"
)

// recordAudit logs event, never failing the business operation
func recordAudit(ctx context.Context, logger domain.AuditLogger, event *domain.AuditEvent) {
	if logger == nil {
		return
	}
	if err := logger.LogEvent(ctx, event); err != nil {
		log.Printf("audit: failed to log %s: %v", event.EventType, err)
	}
}
