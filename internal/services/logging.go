package services

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ServiceLogger writes operation, audit and security records for one service
type ServiceLogger struct {
	logger *slog.Logger
}

type LogConfig struct {
	Service   string
	Component string
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
	}
}

// outcome classifies an operation error into a log level and a status label.
// Client mistakes are warnings; only unclassified errors are logged as errors.
func outcome(err error) (slog.Level, string) {
	switch {
	case err == nil:
		return slog.LevelInfo, "success"
	case IsNotFound(err):
		return slog.LevelInfo, "not_found"
	case IsValidation(err), IsInvalidState(err), IsBusinessRule(err):
		return slog.LevelWarn, "rejected"
	case IsUnauthorized(err), IsForbidden(err):
		return slog.LevelWarn, "denied"
	case IsConflict(err):
		return slog.LevelWarn, "conflict"
	default:
		return slog.LevelError, "error"
	}
}

// ===== OPERATION LOGGING =====

func (l *ServiceLogger) logOperation(ctx context.Context, operation string, userID uint, resourceType, resourceID string, duration time.Duration, err error) {
	level, status := outcome(err)

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("resource_type", resourceType),
		slog.String("resource_id", resourceID),
		slog.String("status", status),
		slog.Int64("duration_ms", duration.Milliseconds()),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var validationErrs ValidationErrors
		var permErr *PermissionError
		switch {
		case errors.As(err, &validationErrs):
			attrs = append(attrs, slog.Any("invalid_fields", validationErrs.Fields()))
		case errors.As(err, &permErr):
			attrs = append(attrs,
				slog.String("denied_action", permErr.Action),
				slog.String("denied_reason", permErr.Reason))
		}
	}

	l.logger.LogAttrs(ctx, level, operation+" "+status, attrs...)
}

// ===== AUDIT & SECURITY =====

type AuditEventType string

const (
	AuditEventCreate AuditEventType = "create"
	AuditEventUpdate AuditEventType = "update"
	AuditEventDelete AuditEventType = "delete"
)

type SecurityEventType string
type SecuritySeverity string

const (
	SecurityEventUnauthorizedAccess SecurityEventType = "unauthorized_access"
	SecurityEventSuspiciousActivity SecurityEventType = "suspicious_activity"
	SecurityEventInvalidToken       SecurityEventType = "invalid_token"

	SecuritySeverityLow    SecuritySeverity = "low"
	SecuritySeverityMedium SecuritySeverity = "medium"
	SecuritySeverityHigh   SecuritySeverity = "high"
)

type SecurityEvent struct {
	Type        SecurityEventType
	Severity    SecuritySeverity
	UserID      uint
	Description string
	Metadata    map[string]interface{}
}

func (l *ServiceLogger) LogSecurityEvent(ctx context.Context, event SecurityEvent) {
	level := slog.LevelWarn
	if event.Severity == SecuritySeverityHigh {
		level = slog.LevelError
	}

	attrs := []slog.Attr{
		slog.String("security_event", string(event.Type)),
		slog.String("severity", string(event.Severity)),
		slog.Uint64("user_id", uint64(event.UserID)),
		slog.String("description", event.Description),
	}
	if len(event.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", event.Metadata))
	}

	l.logger.LogAttrs(ctx, level, "security: "+string(event.Type), attrs...)
}

// ===== OPERATION SCOPE =====

// OperationLogger times one service call and tags every record with it
type OperationLogger struct {
	logger    *ServiceLogger
	ctx       context.Context
	operation string
	userID    uint
	startTime time.Time
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation string, userID uint) *OperationLogger {
	return &OperationLogger{
		logger:    l,
		ctx:       ctx,
		operation: operation,
		userID:    userID,
		startTime: time.Now(),
	}
}

// LogResult records the outcome of the operation
func (ol *OperationLogger) LogResult(resourceID, resourceType string, err error) {
	ol.logger.logOperation(ol.ctx, ol.operation, ol.userID, resourceType, resourceID, time.Since(ol.startTime), err)
}

// LogAudit records a state change made by the operation
func (ol *OperationLogger) LogAudit(eventType AuditEventType, resourceID, resourceType string, oldValue, newValue interface{}) {
	attrs := []slog.Attr{
		slog.String("audit_event", string(eventType)),
		slog.String("operation", ol.operation),
		slog.Uint64("user_id", uint64(ol.userID)),
		slog.String("resource_type", resourceType),
		slog.String("resource_id", resourceID),
	}
	if oldValue != nil {
		attrs = append(attrs, slog.Any("old_value", oldValue))
	}
	if newValue != nil {
		attrs = append(attrs, slog.Any("new_value", newValue))
	}

	ol.logger.logger.LogAttrs(ol.ctx, slog.LevelInfo, "audit: "+string(eventType)+" "+resourceType, attrs...)
}

func (ol *OperationLogger) LogSecurity(eventType SecurityEventType, severity SecuritySeverity, description string, metadata map[string]interface{}) {
	ol.logger.LogSecurityEvent(ol.ctx, SecurityEvent{
		Type:        eventType,
		Severity:    severity,
		UserID:      ol.userID,
		Description: description,
		Metadata:    metadata,
	})
}
